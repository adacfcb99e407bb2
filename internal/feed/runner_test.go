package feed

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-pulse/internal/domain"
	"token-pulse/internal/market"
	"token-pulse/internal/simulation"
	"token-pulse/internal/storage"
	"token-pulse/internal/storage/memory"
)

// constSource makes every record take part in every tick.
type constSource struct{}

func (constSource) Float64() float64 { return 0 }

var discard = log.New(io.Discard, "", 0)

func newStore(t *testing.T, count int) *market.Store {
	t.Helper()
	sim, err := simulation.New(simulation.DefaultConfig(), constSource{})
	require.NoError(t, err)

	s := market.NewStore(market.Options{Simulator: sim, Logger: discard})
	if count > 0 {
		require.NoError(t, s.Init(count))
	}
	return s
}

// failingSampleStore rejects every write.
type failingSampleStore struct{}

func (failingSampleStore) InsertBulk(context.Context, []*domain.PriceSample) error {
	return errors.New("archive offline")
}

func (failingSampleStore) GetByTokenID(context.Context, string, string) ([]*domain.PriceSample, error) {
	return nil, nil
}

func (failingSampleStore) GetByTickRange(context.Context, string, string, int64, int64) ([]*domain.PriceSample, error) {
	return nil, nil
}

func TestRunner_RunTicksArchivesSamples(t *testing.T) {
	store := newStore(t, 6)
	samples := memory.NewPriceSampleStore()
	catalog := memory.NewTokenCatalogStore()

	r := NewRunner(RunnerOptions{
		Store:   store,
		Samples: samples,
		Catalog: catalog,
		RunID:   "run-test",
		Logger:  discard,
	})

	require.NoError(t, r.RunTicks(context.Background(), 3))

	stats := r.Stats()
	assert.Equal(t, "run-test", stats.RunID)
	assert.Equal(t, int64(3), stats.Ticks)
	assert.Equal(t, int64(18), stats.SamplesArchived)
	assert.Zero(t, stats.ArchiveErrors)
	assert.Equal(t, 18, samples.Len())

	got, err := samples.GetByTokenID(context.Background(), "run-test", "token-0")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, s := range got {
		assert.Equal(t, int64(i+1), s.Tick)
	}

	tok, err := store.Token("token-0")
	require.NoError(t, err)
	assert.Equal(t, tok.Price, got[2].Price, "last sample is the current price")

	entries, err := catalog.GetByStatus(context.Background(), domain.StatusNewPairs)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, store.Digest(), entries[0].Digest)
}

func TestRunner_CatalogRewriteTolerated(t *testing.T) {
	store := newStore(t, 3)
	catalog := memory.NewTokenCatalogStore()

	first := NewRunner(RunnerOptions{Store: store, Catalog: catalog, Logger: discard})
	require.NoError(t, first.RunTicks(context.Background(), 1))

	second := NewRunner(RunnerOptions{Store: store, Catalog: catalog, Logger: discard})
	require.NoError(t, second.RunTicks(context.Background(), 1))

	assert.NotEqual(t, first.RunID(), second.RunID())
	assert.Zero(t, second.Stats().ArchiveErrors)
}

func TestRunner_ArchiveFailureKeepsTicking(t *testing.T) {
	store := newStore(t, 3)

	r := NewRunner(RunnerOptions{
		Store:   store,
		Samples: failingSampleStore{},
		Logger:  discard,
	})

	require.NoError(t, r.RunTicks(context.Background(), 4))

	stats := r.Stats()
	assert.Equal(t, int64(4), stats.Ticks)
	assert.Equal(t, int64(4), stats.ArchiveErrors)
	assert.Zero(t, stats.SamplesArchived)
	assert.Equal(t, uint64(4), store.Ticks())
}

func TestRunner_CountsOverruns(t *testing.T) {
	store := newStore(t, 3)

	var mu sync.Mutex
	clock := time.Unix(1700000000, 0)
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}

	r := NewRunner(RunnerOptions{
		Store:    store,
		Interval: 500 * time.Millisecond,
		Now:      now,
		Logger:   discard,
	})

	require.NoError(t, r.RunTicks(context.Background(), 2))
	assert.Equal(t, int64(2), r.Stats().Overruns)
}

func TestRunner_TickBeforeInit(t *testing.T) {
	r := NewRunner(RunnerOptions{Store: newStore(t, 0), Logger: discard})

	err := r.RunTicks(context.Background(), 1)
	assert.ErrorIs(t, err, market.ErrNotInitialized)
}

func TestRunner_RunStopsOnCancel(t *testing.T) {
	store := newStore(t, 3)
	samples := memory.NewPriceSampleStore()

	r := NewRunner(RunnerOptions{
		Store:    store,
		Samples:  samples,
		Interval: 5 * time.Millisecond,
		Logger:   discard,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := r.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, r.Stats().Ticks)
	assert.Equal(t, uint64(r.Stats().Ticks), store.Ticks())
}

func TestRunner_NoStore(t *testing.T) {
	r := NewRunner(RunnerOptions{Logger: discard})
	assert.Error(t, r.Run(context.Background()))
	assert.Error(t, r.RunTicks(context.Background(), 1))
}

var _ storage.PriceSampleStore = failingSampleStore{}

func TestRunner_LongRunSampleRetentionBounded(t *testing.T) {
	const tokens, limit, ticks = 30, 50, 500

	store := newStore(t, tokens)
	samples := memory.NewPriceSampleStoreWithLimit(limit)
	r := NewRunner(RunnerOptions{
		Store:   store,
		Samples: samples,
		RunID:   "run-long",
		Logger:  discard,
	})

	require.NoError(t, r.RunTicks(context.Background(), ticks))

	assert.Equal(t, int64(tokens*ticks), r.Stats().SamplesArchived)
	assert.LessOrEqual(t, samples.Len(), tokens*limit)

	got, err := samples.GetByTokenID(context.Background(), "run-long", "token-0")
	require.NoError(t, err)
	require.Len(t, got, limit)
	assert.Equal(t, int64(ticks-limit+1), got[0].Tick)
	assert.Equal(t, int64(ticks), got[len(got)-1].Tick)
}
