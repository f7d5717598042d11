package collegedata

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

// DBConnection abstracts the database operations the loading pipeline needs.
// This interface decouples the public API from pgx-specific types and lets
// the batch manager be unit-tested against an in-memory fake.
//
// Thread-Safety: Implementations should follow their underlying connection's
// thread-safety guarantees. Connection pool implementations are typically safe
// for concurrent use, though the loading pipeline itself is sequential.
type DBConnection interface {
	// Exec executes a statement without returning any rows.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// QueryRow executes a query that is expected to return at most one row.
	// Always returns a non-nil Row. Errors are deferred until Row's Scan method is called.
	QueryRow(ctx context.Context, sql string, args ...any) Row

	// Begin opens a transaction. The caller must Commit or Rollback it.
	Begin(ctx context.Context) (Tx, error)
}

// Tx represents one open transaction: the unit of batch atomicity.
type Tx interface {
	// Exec executes a statement inside the transaction.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// Commit makes the transaction's changes durable.
	Commit(ctx context.Context) error

	// Rollback discards the transaction. Safe to call after Commit;
	// the error is ignored in that case by convention (defer tx.Rollback).
	Rollback(ctx context.Context) error
}

// Row represents a single row returned by QueryRow.
// This interface decouples from pgx.Row.
type Row interface {
	// Scan reads the values from the row into dest values.
	// Returns an error if no row was found or if the scan fails.
	Scan(dest ...any) error
}
