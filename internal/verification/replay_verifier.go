package verification

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"token-pulse/internal/market"
	"token-pulse/internal/simulation"
)

// Report contains the result of a determinism check.
type Report struct {
	Seed           int64
	Universe       int
	Ticks          int    // ticks requested
	TicksCompared  int    // ticks whose post-state was compared
	ExpectedDigest string // universe digest of the reference run
	ActualDigest   string // universe digest of the replayed run
	Match          bool
	Divergences    []FieldDivergence // divergences at the first mismatching tick
}

// Options contains configuration for creating a Verifier.
type Options struct {
	Universe  int                                // Default: 30
	Ticks     int                                // Default: 10
	Seed      int64                              // simulator seed shared by both runs
	Config    simulation.Config                  // Default: simulation.DefaultConfig()
	NewSource func(seed int64) simulation.Source // Default: math/rand seeded with seed
	Logger    *log.Logger
}

// Verifier builds two markets from the same seed and steps them in lockstep.
type Verifier struct {
	universe  int
	ticks     int
	seed      int64
	cfg       simulation.Config
	newSource func(seed int64) simulation.Source
	logger    *log.Logger
}

// NewVerifier creates a new Verifier.
func NewVerifier(opts Options) *Verifier {
	universe := opts.Universe
	if universe == 0 {
		universe = 30
	}
	ticks := opts.Ticks
	if ticks == 0 {
		ticks = 10
	}
	cfg := opts.Config
	if cfg == (simulation.Config{}) {
		cfg = simulation.DefaultConfig()
	}
	newSource := opts.NewSource
	if newSource == nil {
		newSource = func(seed int64) simulation.Source {
			return rand.New(rand.NewSource(seed))
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Verifier{
		universe:  universe,
		ticks:     ticks,
		seed:      opts.Seed,
		cfg:       cfg,
		newSource: newSource,
		logger:    logger,
	}
}

// Run replays both markets and stops at the first tick whose state differs.
func (v *Verifier) Run(ctx context.Context) (*Report, error) {
	expected, err := v.newMarket()
	if err != nil {
		return nil, fmt.Errorf("reference market: %w", err)
	}
	actual, err := v.newMarket()
	if err != nil {
		return nil, fmt.Errorf("replayed market: %w", err)
	}

	report := &Report{
		Seed:           v.seed,
		Universe:       v.universe,
		Ticks:          v.ticks,
		ExpectedDigest: expected.Digest(),
		ActualDigest:   actual.Digest(),
	}

	if divs := CompareSnapshots(expected.Snapshot(), actual.Snapshot()); len(divs) > 0 {
		report.Divergences = divs
		return report, nil
	}

	for tick := 1; tick <= v.ticks; tick++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := expected.Tick(); err != nil {
			return nil, fmt.Errorf("reference tick %d: %w", tick, err)
		}
		if _, err := actual.Tick(); err != nil {
			return nil, fmt.Errorf("replayed tick %d: %w", tick, err)
		}
		report.TicksCompared = tick

		divs := CompareSnapshots(expected.Snapshot(), actual.Snapshot())
		if len(divs) > 0 {
			for i := range divs {
				divs[i].Tick = uint64(tick)
			}
			report.Divergences = divs
			v.logger.Printf("Replay diverged at tick %d: %d fields", tick, len(divs))
			return report, nil
		}
	}

	report.Match = report.ExpectedDigest == report.ActualDigest
	return report, nil
}

func (v *Verifier) newMarket() (*market.Store, error) {
	sim, err := simulation.New(v.cfg, v.newSource(v.seed))
	if err != nil {
		return nil, err
	}
	store := market.NewStore(market.Options{Simulator: sim, Logger: v.logger})
	if err := store.Init(v.universe); err != nil {
		return nil, err
	}
	return store, nil
}
