package store

import (
	"context"
	"database/sql"
)

// DBTX abstracts the database access layer. It is implemented by both *sql.DB
// and *sql.Tx, allowing stores to run standalone or inside a caller-managed
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
