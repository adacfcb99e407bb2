// Package market owns the authoritative token universe and its category views.
package market

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"token-pulse/internal/domain"
	"token-pulse/internal/filter"
	"token-pulse/internal/generator"
	"token-pulse/internal/idhash"
	"token-pulse/internal/observability"
	"token-pulse/internal/simulation"
)

// Store errors
var (
	ErrNotInitialized = errors.New("market not initialized")
	ErrTokenNotFound  = errors.New("token not found")
)

// Store owns a market State. Tick and SetFilter are the only mutation points
// and run under the write lock; reads return copies under the read lock.
// Changes are published while the write lock is held, so subscribers
// receive them in version order.
type Store struct {
	generator *generator.Generator
	simulator *simulation.Simulator
	logger    *log.Logger

	mu      sync.RWMutex
	state   *State
	digest  string
	version uint64
	ticks   uint64

	subsMu  sync.Mutex
	subs    map[int]chan Change
	nextSub int
}

// Options contains configuration for creating a Store.
type Options struct {
	Generator *generator.Generator  // Default: generator.New(nil)
	Simulator *simulation.Simulator // Required for Tick
	Logger    *log.Logger
}

// NewStore creates an empty store. Call Init before ticking.
func NewStore(opts Options) *Store {
	gen := opts.Generator
	if gen == nil {
		gen = generator.New(nil)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Store{
		generator: gen,
		simulator: opts.Simulator,
		logger:    logger,
		state:     newState(nil),
		subs:      make(map[int]chan Change),
	}
}

// Init replaces the universe with count freshly generated tokens and resets
// every filter. Intended to be called once at startup.
func (s *Store) Init(count int) error {
	records, err := s.generator.Generate(count)
	if err != nil {
		return fmt.Errorf("init market: %w", err)
	}
	digest := idhash.UniverseDigest(records)

	s.mu.Lock()
	s.state = newState(records)
	s.digest = digest
	s.ticks = 0
	s.version++
	s.notify(Change{Version: s.version, Kind: ChangeInit})
	s.mu.Unlock()

	observability.SetUniverseSize(len(records))
	s.logger.Printf("Market initialized: %d tokens, digest %s", len(records), digest[:12])
	return nil
}

// Tick advances the simulation once. Draws and the trailing re-sort happen
// under one write lock, so readers see either the pre- or post-tick state.
func (s *Store) Tick() (TickReport, error) {
	if s.simulator == nil {
		return TickReport{}, fmt.Errorf("tick: %w: no simulator configured", ErrNotInitialized)
	}

	start := time.Now()

	s.mu.Lock()
	if s.state.Records == nil {
		s.mu.Unlock()
		return TickReport{}, fmt.Errorf("tick: %w", ErrNotInitialized)
	}

	res := s.simulator.Step(s.state.Records)
	s.ticks++
	s.version++

	report := TickReport{
		Version:    s.version,
		Tick:       s.ticks,
		Trades:     res.Trades,
		Spikes:     res.Spikes,
		Degenerate: res.Degenerate,
	}
	if len(res.Updated) > 0 {
		updated := make(map[string]struct{}, len(res.Updated))
		for _, id := range res.Updated {
			updated[id] = struct{}{}
		}
		report.Updated = make([]domain.TokenRecord, 0, len(res.Updated))
		for _, r := range s.state.Records {
			if _, ok := updated[r.ID]; ok {
				report.Updated = append(report.Updated, r.Clone())
			}
		}
	}
	s.notify(Change{Version: report.Version, Kind: ChangeTick})
	s.mu.Unlock()

	observability.RecordTick(len(report.Updated), report.Trades, report.Degenerate, time.Since(start).Seconds())
	if report.Degenerate > 0 {
		s.logger.Printf("Tick %d: skipped %d degenerate records", report.Tick, report.Degenerate)
	}

	return report, nil
}

// SetFilter replaces the filter for one category wholesale and returns the
// new version. Other categories are untouched.
func (s *Store) SetFilter(status domain.Status, spec domain.FilterSpec) (uint64, error) {
	if !status.IsValid() {
		return 0, fmt.Errorf("set filter %q: %w", status, domain.ErrUnknownStatus)
	}
	normalized := spec.Normalized()

	s.mu.Lock()
	s.state.Filters[status] = normalized
	s.version++
	version := s.version
	s.notify(Change{Version: version, Kind: ChangeFilter, Status: status})
	s.mu.Unlock()

	observability.RecordFilterChange(status.String(), normalized.ActiveCount())
	return version, nil
}

// Filter returns a copy of the current filter for a category.
func (s *Store) Filter(status domain.Status) (domain.FilterSpec, error) {
	if !status.IsValid() {
		return domain.FilterSpec{}, fmt.Errorf("get filter %q: %w", status, domain.ErrUnknownStatus)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Filters[status].Normalized(), nil
}

// SelectCategory returns the filtered records of one category in ranking
// order. Computed from the current state on every call.
func (s *Store) SelectCategory(status domain.Status) ([]domain.TokenRecord, error) {
	return s.View(status, domain.SortTrending)
}

// View is SelectCategory with a display ordering applied to the result.
func (s *Store) View(status domain.Status, opt domain.SortOption) ([]domain.TokenRecord, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("select category %q: %w", status, domain.ErrUnknownStatus)
	}
	if !opt.IsValid() {
		opt = domain.SortTrending
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	selected := filter.Apply(filter.ByStatus(s.state.Records, status), s.state.Filters[status])
	selected = filter.Sort(selected, opt)
	return cloneAll(selected), nil
}

// CategoryState is a consistent read of one category: the sorted view, the
// filter that produced it and the unfiltered total, all from one version.
type CategoryState struct {
	Version uint64
	Records []domain.TokenRecord
	Filter  domain.FilterSpec
	Total   int
}

// Category returns the view, filter and total of a category under one read
// lock, so a concurrent SetFilter cannot split them across versions.
func (s *Store) Category(status domain.Status, opt domain.SortOption) (CategoryState, error) {
	if !status.IsValid() {
		return CategoryState{}, fmt.Errorf("category %q: %w", status, domain.ErrUnknownStatus)
	}
	if !opt.IsValid() {
		opt = domain.SortTrending
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	spec := s.state.Filters[status]
	selected := filter.Apply(filter.ByStatus(s.state.Records, status), spec)
	selected = filter.Sort(selected, opt)
	return CategoryState{
		Version: s.version,
		Records: cloneAll(selected),
		Filter:  spec.Normalized(),
		Total:   s.countLocked(status),
	}, nil
}

// CountCategory returns the number of records in a category, ignoring filters.
func (s *Store) CountCategory(status domain.Status) (int, error) {
	if !status.IsValid() {
		return 0, fmt.Errorf("count category %q: %w", status, domain.ErrUnknownStatus)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.countLocked(status), nil
}

// Categories summarizes every category in domain.Statuses order.
func (s *Store) Categories() []CategorySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]CategorySummary, 0, len(domain.Statuses))
	for _, status := range domain.Statuses {
		spec := s.state.Filters[status]
		result = append(result, CategorySummary{
			Status:        status,
			Title:         status.DisplayName(),
			Count:         len(filter.Apply(filter.ByStatus(s.state.Records, status), spec)),
			Total:         s.countLocked(status),
			ActiveFilters: spec.ActiveCount(),
		})
	}
	return result
}

// Token returns a copy of the record with the given ID.
func (s *Store) Token(id string) (domain.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.state.Records {
		if r.ID == id {
			return r.Clone(), nil
		}
	}
	return domain.TokenRecord{}, ErrTokenNotFound
}

// Snapshot returns copies of every record in ranking order.
func (s *Store) Snapshot() []domain.TokenRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneAll(s.state.Records)
}

// Version increases on every Init, Tick and SetFilter.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Ticks returns the number of ticks applied since Init.
func (s *Store) Ticks() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticks
}

// Digest returns the fingerprint of the universe generated by Init.
func (s *Store) Digest() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.digest
}

func (s *Store) countLocked(status domain.Status) int {
	n := 0
	for _, r := range s.state.Records {
		if r.Status == status {
			n++
		}
	}
	return n
}

func cloneAll(records []*domain.TokenRecord) []domain.TokenRecord {
	out := make([]domain.TokenRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
