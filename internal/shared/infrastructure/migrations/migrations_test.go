package migrations

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersions(t *testing.T) {
	for _, driver := range []database.Driver{database.DriverSQLite, database.DriverPostgres} {
		versions, err := Versions(driver)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_initial_schema"}, versions, driver.String())
	}

	_, err := Versions(database.Driver("mysql"))
	assert.Error(t, err)
}

func TestRun_SQLite(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: sqlite.MemoryPath})
	require.NoError(t, err)
	defer conn.Close()

	applied, err := Run(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_initial_schema"}, applied)

	for _, table := range []string{"tasks", "todos", "subtasks", "user_preferences"} {
		var count int
		err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, table)
	}

	applied, err = Run(ctx, conn)
	require.NoError(t, err)
	assert.Empty(t, applied, "already applied migrations are skipped")
}
