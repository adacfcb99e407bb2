// Package reporting builds session reports from the market and the sample archive.
package reporting

import (
	"context"
	"errors"
	"time"

	"token-pulse/internal/domain"
	"token-pulse/internal/lookup"
	"token-pulse/internal/market"
	"token-pulse/internal/storage"
	"token-pulse/internal/verification"
)

// DefaultTopMovers is the number of mover rows kept when none is configured.
const DefaultTopMovers = 10

// Generator produces reports from the live store and archived samples.
type Generator struct {
	store     *market.Store
	samples   storage.PriceSampleStore
	runID     string
	topMovers int
	now       func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. samples may be nil, in which
// case the report has no movers.
func NewGenerator(store *market.Store, samples storage.PriceSampleStore, runID string) *Generator {
	return &Generator{
		store:     store,
		samples:   samples,
		runID:     runID,
		topMovers: DefaultTopMovers,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithTopMovers limits the mover table; n <= 0 keeps every token with samples.
func (g *Generator) WithTopMovers(n int) *Generator {
	g.topMovers = n
	return g
}

// Generate produces a complete report.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	snapshot := g.store.Snapshot()
	if len(snapshot) == 0 {
		return nil, market.ErrNotInitialized
	}

	report := &Report{
		GeneratedAt: g.now(),
		RunID:       g.runID,
		Universe:    len(snapshot),
		Ticks:       g.store.Ticks(),
		Digest:      g.store.Digest(),
	}

	report.Categories = g.generateCategories(snapshot)

	movers, err := g.generateMovers(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	report.Movers = movers

	return report, nil
}

func (g *Generator) generateCategories(snapshot []domain.TokenRecord) []CategoryRow {
	byStatus := make(map[domain.Status][]domain.TokenRecord, len(domain.Statuses))
	for _, r := range snapshot {
		byStatus[r.Status] = append(byStatus[r.Status], r)
	}

	summaries := g.store.Categories()
	rows := make([]CategoryRow, 0, len(summaries))
	for _, s := range summaries {
		row := CategoryRow{
			Status:        s.Status,
			Title:         s.Title,
			Visible:       s.Count,
			ActiveFilters: s.ActiveFilters,
		}
		computeCategory(&row, byStatus[s.Status])
		rows = append(rows, row)
	}
	return rows
}

func (g *Generator) generateMovers(ctx context.Context, snapshot []domain.TokenRecord) ([]MoverRow, error) {
	if g.samples == nil {
		return nil, nil
	}

	var rows []MoverRow
	for _, r := range snapshot {
		samples, err := g.samples.GetByTokenID(ctx, g.runID, r.ID)
		if err != nil {
			return nil, err
		}

		first, err := lookup.SampleAt(0, samples)
		if errors.Is(err, lookup.ErrNoPriceData) {
			continue
		}
		if err != nil {
			return nil, err
		}
		last := samples[len(samples)-1]
		change, err := lookup.ChangeBetween(first.Tick, last.Tick, samples)
		if err != nil {
			return nil, err
		}

		rows = append(rows, MoverRow{
			TokenID:     r.ID,
			Symbol:      r.Symbol,
			Status:      r.Status,
			Samples:     len(samples),
			FirstPrice:  first.Price,
			LastPrice:   last.Price,
			Change:      change,
			MaxDrawdown: computeMaxDrawdown(r.History),
		})
	}

	sortMovers(rows)
	if g.topMovers > 0 && len(rows) > g.topMovers {
		rows = rows[:g.topMovers]
	}
	return rows, nil
}

// NewVerificationSection summarizes a replay report.
func NewVerificationSection(r *verification.Report) *VerificationSection {
	if r == nil {
		return nil
	}
	return &VerificationSection{
		Match:         r.Match,
		TicksCompared: r.TicksCompared,
		Divergences:   len(r.Divergences),
	}
}
