// Package sqlite opens the local single-file store with the pure Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/database"
)

func init() {
	database.Register(database.DriverSQLite, NewConnection)
}

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// queryRunner is the part of *sql.DB and *sql.Tx the executor needs.
type queryRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// executor adapts a queryRunner to database.Executor. SQLite binds $N by
// position, so the shared query texts run unchanged.
type executor struct {
	runner queryRunner
}

func (e executor) Exec(ctx context.Context, query string, args ...any) (database.Result, error) {
	res, err := e.runner.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (e executor) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return e.runner.QueryRowContext(ctx, query, args...)
}

func (e executor) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := e.runner.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Connection is a database.Connection over one SQLite file.
type Connection struct {
	executor
	db *sql.DB
}

// NewConnection opens the SQLite database at cfg.SQLitePath, falling back to
// a sqlite:// or file: URL and then to the default path.
func NewConnection(ctx context.Context, cfg database.Config) (database.Connection, error) {
	path := resolvePath(cfg)

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite has a single writer, and an in-memory database lives only as
	// long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &Connection{executor: executor{runner: db}, db: db}, nil
}

func resolvePath(cfg database.Config) string {
	if cfg.SQLitePath != "" {
		return cfg.SQLitePath
	}
	if driver, err := database.DetectDriver(cfg.URL); err == nil && driver == database.DriverSQLite && cfg.URL != "" {
		return strings.TrimPrefix(strings.TrimPrefix(cfg.URL, "sqlite://"), "file:")
	}
	return database.DefaultSQLitePath()
}

// buildDSN appends the connection pragmas. WAL is skipped for in-memory databases.
func buildDSN(path string) string {
	pragmas := []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)"}
	if path != MemoryPath {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)", "_pragma=synchronous(NORMAL)")
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(pragmas, "&")
}

func (c *Connection) Driver() database.Driver {
	return database.DriverSQLite
}

func (c *Connection) Close() error {
	return c.db.Close()
}

func (c *Connection) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Connection) BeginTx(ctx context.Context) (database.Transaction, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &transaction{executor: executor{runner: tx}, tx: tx}, nil
}

type transaction struct {
	executor
	tx *sql.Tx
}

func (t *transaction) Commit(context.Context) error {
	return t.tx.Commit()
}

func (t *transaction) Rollback(context.Context) error {
	return t.tx.Rollback()
}
