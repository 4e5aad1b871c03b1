package testutil

import (
	"context"
	"database/sql"
	"strings"

	"github.com/alexanderramin/studyplan/internal/db"
)

// FailingUoW runs work in a real SQLite transaction but fails every write
// that touches Table with Err. Reads pass through, so a repository can load
// a plan or task and then fail while storing it back.
type FailingUoW struct {
	DB    *sql.DB
	Table string
	Err   error
}

func (u *FailingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return db.NewSQLiteUnitOfWork(u.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &failingWrites{DBTX: tx, table: u.Table, err: u.Err})
	})
}

type failingWrites struct {
	db.DBTX
	table string
	err   error
}

func (f *failingWrites) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if strings.Contains(query, f.table) {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
