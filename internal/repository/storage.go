package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/social-media-api/internal/logging"
)

// DBTX is the subset of database/sql used by the repositories. Both *sql.DB
// and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// fail logs a store failure with its statement and cause, then returns it
// wrapped as a *StorageError.
func fail(ctx context.Context, log logging.Logger, op, query string, err error) error {
	log.Error(ctx, "storage failure", "op", op, "sql", query, "err", err)
	return &StorageError{Op: op, Query: query, Err: err}
}

// affectedOne reports whether exactly one row was touched by res.
func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
