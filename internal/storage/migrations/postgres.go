package migrations

import (
	"context"
	"fmt"

	"token-pulse/internal/storage/postgres"
)

// RunPostgresMigrations creates the token catalog schema. Every file uses
// IF NOT EXISTS, so a restart against an existing archive is a no-op.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	migrations, err := load("postgres")
	if err != nil {
		return err
	}

	// pgx runs a multi-statement file in one simple-protocol Exec.
	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}
	return nil
}
