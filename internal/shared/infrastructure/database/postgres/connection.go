// Package postgres opens a shared PostgreSQL store through a pgx pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/database"
)

func init() {
	database.Register(database.DriverPostgres, NewConnection)
}

// applicationName tags slotwise sessions in pg_stat_activity.
const applicationName = "slotwise"

// queryRunner is the part of *pgxpool.Pool and pgx.Tx the executor needs.
type queryRunner interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type executor struct {
	runner queryRunner
}

func (e executor) Exec(ctx context.Context, query string, args ...any) (database.Result, error) {
	tag, err := e.runner.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return commandResult{tag: tag}, nil
}

func (e executor) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return e.runner.QueryRow(ctx, query, args...)
}

func (e executor) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := e.runner.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return resultRows{Rows: rows}, nil
}

// Connection is a database.Connection over a pgx pool.
type Connection struct {
	executor
	pool *pgxpool.Pool
}

// NewConnection creates a pool for cfg.URL and verifies it with a ping.
func NewConnection(ctx context.Context, cfg database.Config) (database.Connection, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required for PostgreSQL")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if _, ok := poolConfig.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	return &Connection{executor: executor{runner: pool}, pool: pool}, nil
}

func (c *Connection) Driver() database.Driver {
	return database.DriverPostgres
}

func (c *Connection) Close() error {
	c.pool.Close()
	return nil
}

func (c *Connection) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *Connection) BeginTx(ctx context.Context) (database.Transaction, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &transaction{executor: executor{runner: tx}, tx: tx}, nil
}

type transaction struct {
	executor
	tx pgx.Tx
}

func (t *transaction) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *transaction) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

type commandResult struct {
	tag pgconn.CommandTag
}

func (r commandResult) RowsAffected() (int64, error) {
	return r.tag.RowsAffected(), nil
}

// resultRows gives pgx.Rows the error-returning Close of database.Rows.
type resultRows struct {
	pgx.Rows
}

func (r resultRows) Close() error {
	r.Rows.Close()
	return nil
}
