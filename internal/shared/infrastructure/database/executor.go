package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
)

// Row is a single result row. *sql.Row and pgx.Row satisfy it.
type Row interface {
	Scan(dest ...any) error
}

// Rows iterates a result set. *sql.Rows satisfies it directly.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// Result reports what a write touched. sql.Result satisfies it directly.
type Result interface {
	RowsAffected() (int64, error)
}

// Executor runs SQL with ordinal ($1, $2, ...) placeholders. Repositories
// write one query text for both drivers against it.
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}

// Transaction is an Executor that must be committed or rolled back.
type Transaction interface {
	Executor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Connection is an open database handle for one driver.
type Connection interface {
	Executor
	BeginTx(ctx context.Context) (Transaction, error)
	Ping(ctx context.Context) error
	Driver() Driver
	Close() error
}

// IsNoRows reports whether err means a single-row query matched nothing,
// whichever driver produced it.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}
