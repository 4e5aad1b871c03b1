package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/studyplan/internal/db"
)

// NewTestDB opens an in-memory studyplan database with the schema applied.
// It is closed on test cleanup.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

// CountRows returns the number of rows in table, read outside any
// transaction.
func CountRows(t testing.TB, conn db.DBTX, table string) int {
	t.Helper()
	var n int
	if err := conn.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return n
}
