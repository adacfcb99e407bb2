package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"token-pulse/internal/domain"
	"token-pulse/internal/storage"
)

// TokenCatalogStore implements storage.TokenCatalogStore using PostgreSQL.
type TokenCatalogStore struct {
	pool *Pool
}

// NewTokenCatalogStore creates a new TokenCatalogStore.
func NewTokenCatalogStore(pool *Pool) *TokenCatalogStore {
	return &TokenCatalogStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenCatalogStore = (*TokenCatalogStore)(nil)

const insertCatalogQuery = `
	INSERT INTO token_catalog (
		token_id, contract_address, name, symbol, protocol, status, digest
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
`

const selectCatalogColumns = `
	SELECT token_id, contract_address, name, symbol, protocol, status, digest, created_at
	FROM token_catalog
`

// Insert adds a new entry. Returns ErrDuplicateKey if token_id or contract_address exists.
func (s *TokenCatalogStore) Insert(ctx context.Context, e *domain.CatalogEntry) error {
	_, err := s.pool.Exec(ctx, insertCatalogQuery, catalogArgs(e)...)
	return classify("insert token catalog entry", err)
}

// InsertBulk adds multiple entries in a single transaction.
// The whole batch is rolled back on the first duplicate.
func (s *TokenCatalogStore) InsertBulk(ctx context.Context, entries []*domain.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(insertCatalogQuery, catalogArgs(e)...)
	}

	results := tx.SendBatch(ctx, batch)
	for range entries {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return classify("insert token catalog batch", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves an entry by token ID. Returns ErrNotFound if not exists.
func (s *TokenCatalogStore) GetByID(ctx context.Context, tokenID string) (*domain.CatalogEntry, error) {
	row := s.pool.QueryRow(ctx, selectCatalogColumns+` WHERE token_id = $1`, tokenID)
	e, err := scanCatalogEntry(row)
	if err != nil {
		return nil, classify("get token catalog entry by id", err)
	}
	return e, nil
}

// GetByAddress retrieves an entry by contract address. Returns ErrNotFound if not exists.
func (s *TokenCatalogStore) GetByAddress(ctx context.Context, contractAddress string) (*domain.CatalogEntry, error) {
	row := s.pool.QueryRow(ctx, selectCatalogColumns+` WHERE contract_address = $1`, contractAddress)
	e, err := scanCatalogEntry(row)
	if err != nil {
		return nil, classify("get token catalog entry by address", err)
	}
	return e, nil
}

// GetByStatus retrieves all entries of a category, ordered by token_id ASC.
func (s *TokenCatalogStore) GetByStatus(ctx context.Context, status domain.Status) ([]*domain.CatalogEntry, error) {
	rows, err := s.pool.Query(ctx, selectCatalogColumns+` WHERE status = $1 ORDER BY token_id ASC`, string(status))
	if err != nil {
		return nil, fmt.Errorf("query token catalog by status: %w", err)
	}
	defer rows.Close()

	var result []*domain.CatalogEntry
	for rows.Next() {
		e, err := scanCatalogEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token catalog row: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token catalog rows: %w", err)
	}
	return result, nil
}

func catalogArgs(e *domain.CatalogEntry) []any {
	return []any{
		e.TokenID,
		e.ContractAddress,
		e.Name,
		e.Symbol,
		e.Protocol,
		string(e.Status),
		e.Digest,
	}
}

// scanCatalogEntry scans a single row into CatalogEntry.
func scanCatalogEntry(row pgx.Row) (*domain.CatalogEntry, error) {
	var e domain.CatalogEntry
	var status string

	err := row.Scan(
		&e.TokenID,
		&e.ContractAddress,
		&e.Name,
		&e.Symbol,
		&e.Protocol,
		&status,
		&e.Digest,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Status = domain.Status(status)
	return &e, nil
}
