package memory

import (
	"context"
	"sort"
	"sync"

	"token-pulse/internal/domain"
	"token-pulse/internal/storage"
)

// DefaultSampleLimit is the number of samples retained per (run, token)
// series when no limit is given.
const DefaultSampleLimit = 1000

// seriesKey identifies the samples of one token within one run.
type seriesKey struct {
	runID   string
	tokenID string
}

// PriceSampleStore is an in-memory implementation of storage.PriceSampleStore.
// Each series is kept in tick order and holds at most limit samples; the
// oldest ticks are evicted first.
type PriceSampleStore struct {
	mu     sync.RWMutex
	series map[seriesKey][]*domain.PriceSample
	limit  int
	count  int
}

// NewPriceSampleStore creates a store retaining DefaultSampleLimit samples per series.
func NewPriceSampleStore() *PriceSampleStore {
	return NewPriceSampleStoreWithLimit(DefaultSampleLimit)
}

// NewPriceSampleStoreWithLimit creates a store retaining limit samples per
// series. A non-positive limit uses DefaultSampleLimit.
func NewPriceSampleStoreWithLimit(limit int) *PriceSampleStore {
	if limit <= 0 {
		limit = DefaultSampleLimit
	}
	return &PriceSampleStore{
		series: make(map[seriesKey][]*domain.PriceSample),
		limit:  limit,
	}
}

// InsertBulk adds multiple samples. Fails entire batch on duplicate.
func (s *PriceSampleStore) InsertBulk(_ context.Context, samples []*domain.PriceSample) error {
	if len(samples) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type batchKey struct {
		seriesKey
		tick int64
	}
	batchKeys := make(map[batchKey]struct{}, len(samples))

	// First pass: check for duplicates (existing + intra-batch)
	for _, p := range samples {
		if p == nil || p.RunID == "" || p.TokenID == "" {
			return storage.ErrInvalidInput
		}
		key := seriesKey{p.RunID, p.TokenID}

		if _, exists := search(s.series[key], p.Tick); exists {
			return storage.ErrDuplicateKey
		}
		bk := batchKey{key, p.Tick}
		if _, exists := batchKeys[bk]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[bk] = struct{}{}
	}

	// Second pass: insert all
	for _, p := range samples {
		sampleCopy := *p
		s.insert(seriesKey{p.RunID, p.TokenID}, &sampleCopy)
	}

	return nil
}

// insert places p in tick order and evicts the oldest samples beyond limit.
func (s *PriceSampleStore) insert(key seriesKey, p *domain.PriceSample) {
	list := s.series[key]
	i, _ := search(list, p.Tick)
	if i == len(list) {
		list = append(list, p)
	} else {
		list = append(list, nil)
		copy(list[i+1:], list[i:])
		list[i] = p
	}
	s.count++

	if over := len(list) - s.limit; over > 0 {
		// shift in place so the backing array does not grow unbounded
		copy(list, list[over:])
		clear(list[len(list)-over:])
		list = list[:s.limit]
		s.count -= over
	}
	s.series[key] = list
}

// GetByTokenID retrieves all samples of a token within a run, ordered by tick ASC.
func (s *PriceSampleStore) GetByTokenID(_ context.Context, runID, tokenID string) ([]*domain.PriceSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copySamples(s.series[seriesKey{runID, tokenID}]), nil
}

// GetByTickRange retrieves samples for ticks within [from, to] (inclusive).
func (s *PriceSampleStore) GetByTickRange(_ context.Context, runID, tokenID string, from, to int64) ([]*domain.PriceSample, error) {
	if from > to {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.series[seriesKey{runID, tokenID}]
	start, _ := search(list, from)
	end := sort.Search(len(list), func(i int) bool { return list[i].Tick > to })
	if start >= end {
		return nil, nil
	}
	return copySamples(list[start:end]), nil
}

// Len returns the number of stored samples.
func (s *PriceSampleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// search returns the index of the first sample with Tick >= tick and whether
// that sample has exactly tick.
func search(list []*domain.PriceSample, tick int64) (int, bool) {
	i := sort.Search(len(list), func(i int) bool { return list[i].Tick >= tick })
	return i, i < len(list) && list[i].Tick == tick
}

func copySamples(list []*domain.PriceSample) []*domain.PriceSample {
	if len(list) == 0 {
		return nil
	}
	result := make([]*domain.PriceSample, len(list))
	for i, p := range list {
		sampleCopy := *p
		result[i] = &sampleCopy
	}
	return result
}

var _ storage.PriceSampleStore = (*PriceSampleStore)(nil)
