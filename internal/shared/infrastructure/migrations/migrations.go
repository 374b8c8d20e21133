// Package migrations applies the embedded schema for each database driver.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationsFS embed.FS

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL
)`

// Versions lists the migrations shipped for driver, in apply order.
func Versions(driver database.Driver) ([]string, error) {
	entries, err := migrationsFS.ReadDir(driver.String())
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations for %s: %w", driver, err)
	}

	var versions []string
	for _, entry := range entries {
		if name, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			versions = append(versions, name)
		}
	}
	sort.Strings(versions)
	return versions, nil
}

// Run applies every pending migration for the connection's driver. Each
// migration runs in its own transaction and is recorded in schema_migrations.
// It returns the versions applied by this call.
func Run(ctx context.Context, conn database.Connection) ([]string, error) {
	driver := conn.Driver()
	versions, err := Versions(driver)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(ctx, createVersionTable); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	uow := database.NewUnitOfWork(conn)
	var applied []string
	for _, version := range versions {
		var count int
		if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = $1`, version).Scan(&count); err != nil {
			return applied, fmt.Errorf("failed to check migration %s: %w", version, err)
		}
		if count > 0 {
			continue
		}

		script, err := migrationsFS.ReadFile(driver.String() + "/" + version + ".up.sql")
		if err != nil {
			return applied, fmt.Errorf("failed to read migration %s: %w", version, err)
		}

		err = uow.Run(ctx, func(ctx context.Context) error {
			exec := database.ExecutorFromContext(ctx, conn)
			if _, err := exec.Exec(ctx, string(script)); err != nil {
				return err
			}
			_, err := exec.Exec(ctx,
				`INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)`,
				version, time.Now().UTC().Format(time.RFC3339),
			)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("failed to apply migration %s: %w", version, err)
		}
		applied = append(applied, version)
	}

	return applied, nil
}
