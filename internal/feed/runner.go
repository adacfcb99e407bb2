// Package feed drives the market clock and archives what each tick changed.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"token-pulse/internal/domain"
	"token-pulse/internal/market"
	"token-pulse/internal/observability"
	"token-pulse/internal/storage"
)

// Runner owns the tick clock of a market.Store.
type Runner struct {
	store    *market.Store
	samples  storage.PriceSampleStore
	catalog  storage.TokenCatalogStore
	archive  string
	interval time.Duration
	runID    string
	verbose  bool
	now      func() time.Time
	logger   *log.Logger

	mu    sync.Mutex
	stats RunnerStats
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Store       *market.Store             // Required
	Samples     storage.PriceSampleStore  // Optional: per-tick sample archive
	Catalog     storage.TokenCatalogStore // Optional: universe listing
	ArchiveName string                    // Label for db metrics. Default: "memory"
	Interval    time.Duration             // Default: 800ms
	RunID       string                    // Default: random uuid
	Verbose     bool                      // Log every tick
	Now         func() time.Time          // Default: time.Now
	Logger      *log.Logger
}

// RunnerStats counts what a Runner has done since it was created.
type RunnerStats struct {
	RunID           string
	Ticks           int64
	Overruns        int64
	SamplesArchived int64
	ArchiveErrors   int64
	LastTickAt      time.Time
}

// NewRunner creates a new feed runner.
func NewRunner(opts RunnerOptions) *Runner {
	interval := opts.Interval
	if interval <= 0 {
		interval = 800 * time.Millisecond
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	archive := opts.ArchiveName
	if archive == "" {
		archive = "memory"
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Runner{
		store:    opts.Store,
		samples:  opts.Samples,
		catalog:  opts.Catalog,
		archive:  archive,
		interval: interval,
		runID:    runID,
		verbose:  opts.Verbose,
		now:      now,
		logger:   logger,
		stats:    RunnerStats{RunID: runID},
	}
}

// RunID returns the identifier samples of this runner are archived under.
func (r *Runner) RunID() string {
	return r.runID
}

// Stats returns a copy of the runner counters.
func (r *Runner) Stats() RunnerStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Run writes the catalog and then ticks the store every interval.
// It blocks until context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if r.store == nil {
		return errors.New("feed: no store configured")
	}

	r.writeCatalog(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Printf("Feed started: run %s, interval %v", r.runID, r.interval)

	for {
		select {
		case <-ctx.Done():
			stats := r.Stats()
			r.logger.Printf("Feed stopping after %d ticks (%d overruns, %d samples archived)",
				stats.Ticks, stats.Overruns, stats.SamplesArchived)
			return ctx.Err()

		case <-ticker.C:
			if err := r.step(ctx); err != nil {
				return err
			}
		}
	}
}

// RunTicks writes the catalog and applies n ticks back to back.
func (r *Runner) RunTicks(ctx context.Context, n int) error {
	if r.store == nil {
		return errors.New("feed: no store configured")
	}
	if n < 0 {
		return fmt.Errorf("feed: negative tick count %d", n)
	}

	r.writeCatalog(ctx)

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// step applies one tick and archives its samples.
func (r *Runner) step(ctx context.Context) error {
	start := r.now()

	report, err := r.store.Tick()
	if err != nil {
		return fmt.Errorf("feed tick: %w", err)
	}

	archived, archiveErr := r.archiveSamples(ctx, report, start)

	elapsed := r.now().Sub(start)
	overrun := elapsed > r.interval
	if overrun {
		observability.RecordTickOverrun()
		r.logger.Printf("Tick %d overran interval: took %v", report.Tick, elapsed)
	}

	r.mu.Lock()
	r.stats.Ticks++
	r.stats.SamplesArchived += int64(archived)
	r.stats.LastTickAt = start
	if overrun {
		r.stats.Overruns++
	}
	if archiveErr != nil {
		r.stats.ArchiveErrors++
	}
	r.mu.Unlock()

	if r.verbose {
		r.logger.Printf("Tick %d: %d updated, %d trades, %d spikes",
			report.Tick, len(report.Updated), report.Trades, report.Spikes)
	}
	return nil
}

// archiveSamples stores one sample per updated record. Failures are logged and
// counted; the market keeps ticking without its archive.
func (r *Runner) archiveSamples(ctx context.Context, report market.TickReport, at time.Time) (int, error) {
	if r.samples == nil || len(report.Updated) == 0 {
		return 0, nil
	}

	tsMs := at.UnixMilli()
	samples := make([]*domain.PriceSample, len(report.Updated))
	for i := range report.Updated {
		samples[i] = domain.NewPriceSample(r.runID, int64(report.Tick), tsMs, &report.Updated[i])
	}

	start := time.Now()
	err := r.samples.InsertBulk(ctx, samples)
	observability.RecordDBQuery(r.archive, "insert_price_samples", time.Since(start).Seconds(), err)
	if err != nil {
		observability.RecordArchiveError("price_samples")
		r.logger.Printf("Error archiving %d samples for tick %d: %v", len(samples), report.Tick, err)
		return 0, err
	}

	observability.RecordSamplesArchived(len(samples))
	return len(samples), nil
}

// writeCatalog lists the current universe. A catalog left by an earlier run
// with the same universe is expected and not an error.
func (r *Runner) writeCatalog(ctx context.Context) {
	if r.catalog == nil {
		return
	}

	records := r.store.Snapshot()
	if len(records) == 0 {
		return
	}

	digest := r.store.Digest()
	createdAt := r.now().UnixMilli()
	entries := make([]*domain.CatalogEntry, len(records))
	for i := range records {
		entries[i] = domain.NewCatalogEntry(&records[i], digest)
		entries[i].CreatedAt = createdAt
	}

	start := time.Now()
	err := r.catalog.InsertBulk(ctx, entries)
	observability.RecordDBQuery(r.archive, "insert_token_catalog", time.Since(start).Seconds(), err)

	switch {
	case err == nil:
		r.logger.Printf("Catalog written: %d tokens", len(entries))
	case errors.Is(err, storage.ErrDuplicateKey):
		r.logger.Printf("Catalog already present for digest %s", digest[:12])
	default:
		observability.RecordArchiveError("token_catalog")
		r.logger.Printf("Error writing catalog: %v", err)
	}
}
