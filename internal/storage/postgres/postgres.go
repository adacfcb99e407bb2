// Package postgres archives the generated token catalog in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"token-pulse/internal/storage"
)

const (
	applicationName = "token-pulse"

	// The catalog is written once per start, so a handful of connections
	// is plenty unless the DSN asks for more.
	defaultMaxConns = 4

	pgErrUniqueViolation = "23505"
)

// Pool is the connection pool shared by the catalog store and the migrations.
type Pool struct {
	*pgxpool.Pool
}

// NewPool connects to the archive database and pings it once.
// Connections report application_name unless the DSN sets one.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if !strings.Contains(dsn, "pool_max_conns") {
		cfg.MaxConns = defaultMaxConns
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// classify maps driver errors onto the storage sentinels, wrapped with op.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	case errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation:
		return fmt.Errorf("%s: %w", op, storage.ErrDuplicateKey)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
