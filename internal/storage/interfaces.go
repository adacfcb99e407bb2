package storage

import (
	"context"

	"token-pulse/internal/domain"
)

// TokenCatalogStore provides access to token_catalog storage.
// The catalog lists the generated universe; it is never read back into the market.
type TokenCatalogStore interface {
	// Insert adds a new entry. Returns ErrDuplicateKey if token_id or contract_address exists.
	Insert(ctx context.Context, e *domain.CatalogEntry) error

	// InsertBulk adds multiple entries atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, entries []*domain.CatalogEntry) error

	// GetByID retrieves an entry by token ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tokenID string) (*domain.CatalogEntry, error)

	// GetByAddress retrieves an entry by contract address. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, contractAddress string) (*domain.CatalogEntry, error)

	// GetByStatus retrieves all entries of a category, ordered by token_id ASC.
	GetByStatus(ctx context.Context, status domain.Status) ([]*domain.CatalogEntry, error)
}

// PriceSampleStore provides access to price_samples storage.
type PriceSampleStore interface {
	// InsertBulk adds multiple samples. Fails entire batch on duplicate (run_id, token_id, tick).
	InsertBulk(ctx context.Context, samples []*domain.PriceSample) error

	// GetByTokenID retrieves all samples of a token within a run, ordered by tick ASC.
	GetByTokenID(ctx context.Context, runID, tokenID string) ([]*domain.PriceSample, error)

	// GetByTickRange retrieves samples of a token within a run for ticks in [from, to] (inclusive).
	GetByTickRange(ctx context.Context, runID, tokenID string, from, to int64) ([]*domain.PriceSample, error)
}
