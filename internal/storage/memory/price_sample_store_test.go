package memory

import (
	"context"
	"errors"
	"testing"

	"token-pulse/internal/domain"
	"token-pulse/internal/storage"
)

func TestPriceSampleStore_InsertBulkAndGet(t *testing.T) {
	store := NewPriceSampleStore()
	ctx := context.Background()

	samples := []*domain.PriceSample{
		{RunID: "r1", TokenID: "token-0", Tick: 2, Price: 1.1},
		{RunID: "r1", TokenID: "token-0", Tick: 1, Price: 1.0},
		{RunID: "r1", TokenID: "token-1", Tick: 1, Price: 7.0},
	}

	if err := store.InsertBulk(ctx, samples); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByTokenID(ctx, "r1", "token-0")
	if err != nil {
		t.Fatalf("GetByTokenID failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 samples, got %d", len(result))
	}
	if result[0].Tick != 1 || result[1].Tick != 2 {
		t.Errorf("Expected ticks ordered ASC, got %d, %d", result[0].Tick, result[1].Tick)
	}
	if store.Len() != 3 {
		t.Errorf("Expected Len 3, got %d", store.Len())
	}
}

func TestPriceSampleStore_DuplicateKey(t *testing.T) {
	store := NewPriceSampleStore()
	ctx := context.Background()

	samples := []*domain.PriceSample{{RunID: "r1", TokenID: "token-0", Tick: 1, Price: 1.0}}

	if err := store.InsertBulk(ctx, samples); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, samples)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Same tick under another run is allowed.
	other := []*domain.PriceSample{{RunID: "r2", TokenID: "token-0", Tick: 1, Price: 1.0}}
	if err := store.InsertBulk(ctx, other); err != nil {
		t.Errorf("Insert into another run failed: %v", err)
	}
}

func TestPriceSampleStore_IntraBatchDuplicate(t *testing.T) {
	store := NewPriceSampleStore()
	ctx := context.Background()

	samples := []*domain.PriceSample{
		{RunID: "r1", TokenID: "token-0", Tick: 1, Price: 1.0},
		{RunID: "r1", TokenID: "token-0", Tick: 1, Price: 1.1},
	}

	err := store.InsertBulk(ctx, samples)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey for intra-batch duplicate, got %v", err)
	}

	if store.Len() != 0 {
		t.Errorf("Expected 0 samples (rollback), got %d", store.Len())
	}
}

func TestPriceSampleStore_InvalidInput(t *testing.T) {
	store := NewPriceSampleStore()

	err := store.InsertBulk(context.Background(), []*domain.PriceSample{{TokenID: "token-0", Tick: 1}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestPriceSampleStore_GetByTickRange(t *testing.T) {
	store := NewPriceSampleStore()
	ctx := context.Background()

	var samples []*domain.PriceSample
	for tick := int64(1); tick <= 5; tick++ {
		samples = append(samples, &domain.PriceSample{RunID: "r1", TokenID: "token-0", Tick: tick})
	}
	if err := store.InsertBulk(ctx, samples); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByTickRange(ctx, "r1", "token-0", 2, 4)
	if err != nil {
		t.Fatalf("GetByTickRange failed: %v", err)
	}

	if len(result) != 3 {
		t.Fatalf("Expected 3 samples, got %d", len(result))
	}
	for i, want := range []int64{2, 3, 4} {
		if result[i].Tick != want {
			t.Errorf("result[%d].Tick = %d, want %d", i, result[i].Tick, want)
		}
	}
}

func TestPriceSampleStore_ReturnsCopies(t *testing.T) {
	store := NewPriceSampleStore()
	ctx := context.Background()

	in := &domain.PriceSample{RunID: "r1", TokenID: "token-0", Tick: 1, Price: 1.0}
	if err := store.InsertBulk(ctx, []*domain.PriceSample{in}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	in.Price = 99

	result, _ := store.GetByTokenID(ctx, "r1", "token-0")
	result[0].Price = 42

	again, _ := store.GetByTokenID(ctx, "r1", "token-0")
	if again[0].Price != 1.0 {
		t.Errorf("Stored sample was mutated: price %v", again[0].Price)
	}
}

func TestPriceSampleStore_EvictsOldestBeyondLimit(t *testing.T) {
	store := NewPriceSampleStoreWithLimit(3)
	ctx := context.Background()

	for tick := int64(1); tick <= 10; tick++ {
		batch := []*domain.PriceSample{
			{RunID: "r1", TokenID: "token-0", Tick: tick, Price: float64(tick)},
			{RunID: "r1", TokenID: "token-1", Tick: tick, Price: float64(tick)},
		}
		if err := store.InsertBulk(ctx, batch); err != nil {
			t.Fatalf("InsertBulk tick %d failed: %v", tick, err)
		}
		if store.Len() > 6 {
			t.Fatalf("Len %d exceeds limit after tick %d", store.Len(), tick)
		}
	}

	if store.Len() != 6 {
		t.Errorf("Expected Len 6, got %d", store.Len())
	}

	result, _ := store.GetByTokenID(ctx, "r1", "token-0")
	if len(result) != 3 {
		t.Fatalf("Expected 3 retained samples, got %d", len(result))
	}
	for i, want := range []int64{8, 9, 10} {
		if result[i].Tick != want {
			t.Errorf("result[%d].Tick = %d, want %d", i, result[i].Tick, want)
		}
	}

	// Evicted ticks are gone from range reads.
	old, _ := store.GetByTickRange(ctx, "r1", "token-0", 1, 7)
	if len(old) != 0 {
		t.Errorf("Expected evicted range to be empty, got %d", len(old))
	}
}

func TestPriceSampleStore_OutOfOrderInsertKeepsTickOrder(t *testing.T) {
	store := NewPriceSampleStoreWithLimit(10)
	ctx := context.Background()

	for _, tick := range []int64{5, 1, 3, 4, 2} {
		if err := store.InsertBulk(ctx, []*domain.PriceSample{{RunID: "r1", TokenID: "token-0", Tick: tick}}); err != nil {
			t.Fatalf("InsertBulk tick %d failed: %v", tick, err)
		}
	}

	result, _ := store.GetByTokenID(ctx, "r1", "token-0")
	for i, p := range result {
		if p.Tick != int64(i+1) {
			t.Errorf("result[%d].Tick = %d, want %d", i, p.Tick, i+1)
		}
	}

	if err := store.InsertBulk(ctx, []*domain.PriceSample{{RunID: "r1", TokenID: "token-0", Tick: 3}}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestPriceSampleStore_EmptyRange(t *testing.T) {
	store := NewPriceSampleStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.PriceSample{{RunID: "r1", TokenID: "token-0", Tick: 5}}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	for _, r := range [][2]int64{{6, 9}, {1, 4}, {7, 3}} {
		result, err := store.GetByTickRange(ctx, "r1", "token-0", r[0], r[1])
		if err != nil {
			t.Fatalf("GetByTickRange failed: %v", err)
		}
		if len(result) != 0 {
			t.Errorf("range %v: expected no samples, got %d", r, len(result))
		}
	}
}

func TestNewPriceSampleStoreWithLimit_DefaultsNonPositive(t *testing.T) {
	if got := NewPriceSampleStoreWithLimit(0).limit; got != DefaultSampleLimit {
		t.Errorf("Expected default limit %d, got %d", DefaultSampleLimit, got)
	}
}
