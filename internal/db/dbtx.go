package db

import (
	"context"
	"database/sql"
)

// DBTX is what repositories need from either *sql.DB or *sql.Tx, so the
// same repository works inside and outside a UnitOfWork.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// ExecMatched runs a statement that targets one row by id (and owner) and
// reports whether any row matched. Deletes and updates use it to tell
// "not found" apart from success.
func ExecMatched(ctx context.Context, conn DBTX, query string, args ...any) (bool, error) {
	res, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
