package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/raoabdulhannan/College-Data-Pipeline/pkg/collegedata"
)

// SchemaReady verifies the target database has been migrated before any
// load work touches it. It reads the migration bookkeeping table, so the
// check costs one round trip on the existing connection.
func SchemaReady(ctx context.Context, conn collegedata.DBConnection) error {
	var version int64
	var dirty bool
	err := conn.QueryRow(ctx,
		"SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1",
	).Scan(&version, &dirty)

	var pgErr *pgconn.PgError
	switch {
	case err == nil:
	case errors.Is(err, pgx.ErrNoRows),
		errors.As(err, &pgErr) && pgErr.Code == "42P01":
		return fmt.Errorf("database schema is not initialized; run 'collegeload migrate' first: %w",
			collegedata.ErrMigrationFailed)
	default:
		return fmt.Errorf("failed to check schema version: %w", err)
	}

	if dirty {
		return fmt.Errorf("schema migration %d is dirty; run 'collegeload migrate' to repair it before loading: %w",
			version, collegedata.ErrMigrationFailed)
	}
	return nil
}
