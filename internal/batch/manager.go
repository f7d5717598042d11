// Package batch commits loader rows to the database in fixed-size
// transactional batches.
//
// A batch either commits whole or rolls back whole: one bad row cannot
// leave a partial batch behind. Constraint violations are data-quality
// defects, never retried; the violation is attributed to its source line
// and reported. Batches are independent: a later rollback does not undo
// earlier commits, and an operator re-runs after fixing input data (the
// pre-load clear statements make the re-run safe).
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/raoabdulhannan/College-Data-Pipeline/internal/dataset"
	"github.com/raoabdulhannan/College-Data-Pipeline/internal/loader"
	"github.com/raoabdulhannan/College-Data-Pipeline/pkg/collegedata"
)

// Progress receives load progress once per batch. Implementations render
// a terminal progress bar or plain log lines.
type Progress interface {
	// Begin announces a table load. total is an estimate of data rows
	// in the source (upper bound); 0 means unknown.
	Begin(table string, total int64)

	// Advance reports rows processed since the last call.
	Advance(rows int64)

	// End closes out the table's progress display.
	End()
}

// Options tune one load run.
type Options struct {
	// RunID identifies the run in summaries and audit output.
	// A zero value gets a fresh identifier.
	RunID uuid.UUID

	// BatchSize is the number of rows per transaction.
	// Zero means collegedata.DefaultBatchSize.
	BatchSize int

	// OnViolation decides whether a rolled-back batch halts the table
	// load or the run continues with the next batch.
	OnViolation collegedata.ViolationPolicy
}

// Manager owns the transactional loading protocol. The database handle
// and options are injected at construction; there is no ambient state.
type Manager struct {
	db     collegedata.DBConnection
	logger collegedata.Logger
	opts   Options
}

// New creates a Manager. Panics if db or logger is nil: that is a
// dependency injection bug, not a runtime condition.
func New(db collegedata.DBConnection, logger collegedata.Logger, opts Options) *Manager {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = collegedata.DefaultBatchSize
	}
	if opts.RunID == uuid.Nil {
		opts.RunID = uuid.New()
	}
	return &Manager{db: db, logger: logger, opts: opts}
}

// RunID returns the identifier stamped on this manager's summaries.
func (m *Manager) RunID() uuid.UUID {
	return m.opts.RunID
}

// Clear removes a prior run's rows for the dataset inside a single
// transaction, so a re-run replaces data instead of colliding with it.
func (m *Manager) Clear(ctx context.Context, ds *dataset.Dataset) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin clear transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, stmt := range ds.ClearSQL {
		var args []any
		if stmt.NeedsYear {
			args = append(args, ds.Year)
		}
		if _, err := tx.Exec(ctx, stmt.SQL, args...); err != nil {
			return fmt.Errorf("failed to clear existing %s data: %w", ds.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit clear transaction: %w", err)
	}
	m.logger.Verbose("Cleared existing %s data (year %d)", ds.Name, ds.Year)
	return nil
}

// LoadTable drains the reader into the table in batches and returns the
// final accounting. The returned error is non-nil only for infrastructure
// failures (connection loss, context cancellation); constraint violations
// are recorded in the summary, and the caller inspects summary.Failed().
func (m *Manager) LoadTable(ctx context.Context, table *dataset.Table, rows *loader.Reader, progress Progress) (*collegedata.LoadSummary, error) {
	summary := &collegedata.LoadSummary{
		RunID: m.opts.RunID,
		Table: table.Name,
	}
	start := time.Now()
	defer func() {
		summary.RowsRead = rows.RowsRead()
		summary.Elapsed = time.Since(start)
	}()

	insertSQL := table.InsertSQL()
	pending := make([]*loader.Row, 0, m.opts.BatchSize)
	eof := false

	for !eof {
		pending = pending[:0]
		for len(pending) < m.opts.BatchSize {
			row, err := rows.Next()
			if err != nil {
				if errors.Is(err, io.EOF) {
					eof = true
					break
				}
				return summary, err
			}
			for _, w := range row.Warnings {
				m.logger.Verbose("coercion: %s", w)
			}
			summary.Warnings = append(summary.Warnings, row.Warnings...)
			pending = append(pending, row)
		}
		if len(pending) == 0 {
			break
		}

		violation, err := m.commitBatch(ctx, table, insertSQL, pending, summary)
		if err != nil {
			return summary, err
		}
		if progress != nil {
			progress.Advance(int64(len(pending)))
		}
		if violation != nil {
			summary.Violations = append(summary.Violations, *violation)
			m.logger.Error("%s", violation)
			if m.opts.OnViolation == collegedata.ViolationHalt {
				break
			}
		}
	}

	return summary, nil
}

// commitBatch inserts every pending row in one transaction. On a
// constraint violation the whole transaction is rolled back and the
// violation is attributed to the failing row; any other error aborts
// the run.
func (m *Manager) commitBatch(ctx context.Context, table *dataset.Table, insertSQL string, pending []*loader.Row, summary *collegedata.LoadSummary) (*collegedata.ConstraintViolation, error) {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin batch transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	first := pending[0].Line
	last := pending[len(pending)-1].Line

	for _, row := range pending {
		summary.RowsAttempted++
		if _, err := tx.Exec(ctx, insertSQL, row.Values...); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
				v := describeViolation(pgErr, table, row)
				v.BatchFirst = first
				v.BatchLast = last
				return &v, nil // rollback via defer
			}
			return nil, fmt.Errorf("insert into %s failed at line %d: %w", table.Name, row.Line, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit batch (lines %d-%d): %w", first, last, err)
	}
	summary.RowsCommitted += int64(len(pending))
	summary.BatchesCommitted++
	m.logger.Verbose("Committed batch of %d rows into %s (lines %d-%d)", len(pending), table.Name, first, last)
	return nil, nil
}

// describeViolation decodes a class-23 integrity error into the report
// the operator sees: source line, implicated column and value, and the
// constraint's name and kind.
func describeViolation(pgErr *pgconn.PgError, table *dataset.Table, row *loader.Row) collegedata.ConstraintViolation {
	v := collegedata.ConstraintViolation{
		Line:       row.Line,
		Table:      table.Name,
		Column:     pgErr.ColumnName,
		Constraint: pgErr.ConstraintName,
		Kind:       constraintKind(pgErr),
		Detail:     pgErr.Detail,
	}

	// Check constraints do not carry a column name; Postgres names them
	// <table>_<column>_check by default, so recover the column from there.
	if v.Column == "" && v.Kind == collegedata.ConstraintCheck {
		name := strings.TrimSuffix(pgErr.ConstraintName, "_check")
		v.Column = strings.TrimPrefix(name, table.Name+"_")
	}

	if v.Column != "" {
		for i, target := range table.Targets() {
			if target == v.Column && i < len(row.Values) && row.Values[i] != nil {
				v.Value = fmt.Sprintf("%v", row.Values[i])
			}
		}
	}
	return v
}

func constraintKind(pgErr *pgconn.PgError) collegedata.ConstraintKind {
	switch pgErr.Code {
	case "23505":
		return collegedata.ConstraintPrimaryKey
	case "23503":
		return collegedata.ConstraintForeignKey
	case "23514":
		return collegedata.ConstraintCheck
	case "23502":
		return collegedata.ConstraintNotNull
	default:
		return collegedata.ConstraintUnknown
	}
}
