package clickhouse

import (
	"context"
	"fmt"

	"token-pulse/internal/domain"
	"token-pulse/internal/storage"
)

// PriceSampleStore implements storage.PriceSampleStore using ClickHouse.
type PriceSampleStore struct {
	conn *Conn
}

// NewPriceSampleStore creates a new PriceSampleStore.
func NewPriceSampleStore(conn *Conn) *PriceSampleStore {
	return &PriceSampleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceSampleStore = (*PriceSampleStore)(nil)

// chRows abstracts driver.Rows for scanning.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

type sampleKey struct {
	runID   string
	tokenID string
	tick    int64
}

// InsertBulk adds multiple samples. Fails entire batch on duplicate (run_id, token_id, tick).
// MergeTree does not enforce uniqueness, so duplicates are checked before the insert.
func (s *PriceSampleStore) InsertBulk(ctx context.Context, samples []*domain.PriceSample) error {
	if len(samples) == 0 {
		return nil
	}

	seen := make(map[sampleKey]struct{}, len(samples))
	ticks := make(map[string][]uint64)
	for _, p := range samples {
		if p == nil || p.RunID == "" || p.TokenID == "" {
			return storage.ErrInvalidInput
		}
		k := sampleKey{p.RunID, p.TokenID, p.Tick}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
		ticks[p.RunID] = append(ticks[p.RunID], uint64(p.Tick))
	}

	// A run only ever appends new ticks, so one query per run covers the batch.
	for runID, runTicks := range ticks {
		exists, err := s.exists(ctx, runID, runTicks, seen)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_samples (
			run_id, token_id, tick, timestamp_ms, price, market_cap, volume_24h, transactions
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range samples {
		err = batch.Append(
			p.RunID, p.TokenID, uint64(p.Tick), uint64(p.TimestampMs),
			p.Price, p.MarketCap, p.Volume24h, uint64(p.Transactions),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTokenID retrieves all samples of a token within a run, ordered by tick ASC.
func (s *PriceSampleStore) GetByTokenID(ctx context.Context, runID, tokenID string) ([]*domain.PriceSample, error) {
	query := `
		SELECT run_id, token_id, tick, timestamp_ms, price, market_cap, volume_24h, transactions
		FROM price_samples
		WHERE run_id = ? AND token_id = ?
		ORDER BY tick ASC
	`

	rows, err := s.conn.Query(ctx, query, runID, tokenID)
	if err != nil {
		return nil, fmt.Errorf("query by token id: %w", err)
	}
	defer rows.Close()

	return scanPriceSamples(rows)
}

// GetByTickRange retrieves samples for ticks within [from, to] (inclusive).
func (s *PriceSampleStore) GetByTickRange(ctx context.Context, runID, tokenID string, from, to int64) ([]*domain.PriceSample, error) {
	query := `
		SELECT run_id, token_id, tick, timestamp_ms, price, market_cap, volume_24h, transactions
		FROM price_samples
		WHERE run_id = ? AND token_id = ? AND tick >= ? AND tick <= ?
		ORDER BY tick ASC
	`

	rows, err := s.conn.Query(ctx, query, runID, tokenID, uint64(from), uint64(to))
	if err != nil {
		return nil, fmt.Errorf("query by tick range: %w", err)
	}
	defer rows.Close()

	return scanPriceSamples(rows)
}

// exists reports whether any (token_id, tick) pair of the batch is already stored for the run.
func (s *PriceSampleStore) exists(ctx context.Context, runID string, ticks []uint64, batch map[sampleKey]struct{}) (bool, error) {
	query := `
		SELECT token_id, tick FROM price_samples
		WHERE run_id = ? AND tick IN (?)
	`

	rows, err := s.conn.Query(ctx, query, runID, ticks)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var tokenID string
		var tick uint64
		if err := rows.Scan(&tokenID, &tick); err != nil {
			return false, err
		}
		if _, dup := batch[sampleKey{runID, tokenID, int64(tick)}]; dup {
			return true, nil
		}
	}
	return false, rows.Err()
}

// scanPriceSamples scans multiple rows.
func scanPriceSamples(rows chRows) ([]*domain.PriceSample, error) {
	var samples []*domain.PriceSample

	for rows.Next() {
		var p domain.PriceSample
		var tick, timestampMs, transactions uint64

		err := rows.Scan(
			&p.RunID, &p.TokenID, &tick, &timestampMs,
			&p.Price, &p.MarketCap, &p.Volume24h, &transactions,
		)
		if err != nil {
			return nil, fmt.Errorf("scan price sample row: %w", err)
		}

		p.Tick = int64(tick)
		p.TimestampMs = int64(timestampMs)
		p.Transactions = int64(transactions)
		samples = append(samples, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price sample rows: %w", err)
	}

	return samples, nil
}
