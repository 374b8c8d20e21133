package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	prefsDomain "github.com/felixgeelhaar/slotwise/internal/preferences/domain"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/slotwise/pkg/config"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:                  "test",
		UserID:                  "00000000-0000-0000-0000-000000000001",
		SQLitePath:              filepath.Join(t.TempDir(), "slotwise.db"),
		SlotCacheTTL:            time.Minute,
		RankCacheTTL:            time.Minute,
		PreferencesCacheTTL:     time.Minute,
		CacheSize:               16,
		LookaheadDays:           7,
		Timezone:                "UTC",
		BreakerEnabled:          true,
		BreakerFailureThreshold: 3,
		BreakerTimeout:          time.Second,
	}
}

func TestNewContainer_SQLite(t *testing.T) {
	ctx := context.Background()

	c, err := NewContainer(ctx, testConfig(t), nil)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, database.DriverSQLite, c.DBDriver)
	assert.Equal(t, time.UTC, c.Location)
	assert.Nil(t, c.RedisClient)
	assert.NotNil(t, c.FindBestSlotHandler)
	assert.NotNil(t, c.RankDaysHandler)
	assert.NotNil(t, c.AddTaskHandler)
	assert.NotNil(t, c.AddTodoHandler)

	health := c.Health.GetOverallHealth(ctx)
	assert.Equal(t, observability.HealthStatusHealthy, health.Status)
	assert.Contains(t, health.Checks, "database")
	assert.Contains(t, health.Checks, "tasks_source")
}

func TestNewContainer_EndToEnd(t *testing.T) {
	ctx := context.Background()

	c, err := NewContainer(ctx, testConfig(t), nil)
	require.NoError(t, err)
	defer c.Close()

	userID, err := c.UserID()
	require.NoError(t, err)

	today := time.Now().UTC()
	_, err = c.AddTaskHandler.Handle(ctx, commands.AddTaskCommand{
		UserID:          userID,
		Title:           "Deep work",
		Date:            today,
		DurationMinutes: 120,
		Difficulty:      5,
	})
	require.NoError(t, err)

	days, err := c.RankDaysHandler.Handle(ctx, queries.RankDaysQuery{
		UserID:    userID,
		StartDate: today,
		EndDate:   today.AddDate(0, 0, 2),
	})
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, 1, days[0].TaskCount)

	suggestion, err := c.FindBestSlotHandler.Handle(ctx, queries.FindBestSlotQuery{UserID: userID, DurationMinutes: 30})
	require.NoError(t, err)
	require.NotNil(t, suggestion.BestSlot)
	assert.False(t, suggestion.IsFallback)

	prefs, err := c.PreferencesService.GetPreferences(ctx, uuid.MustParse(c.Config.UserID))
	require.NoError(t, err)
	assert.NotEmpty(t, prefs.WorkDays)
}

func TestNewContainer_WritesRefreshCachedResults(t *testing.T) {
	ctx := context.Background()

	c, err := NewContainer(ctx, testConfig(t), nil)
	require.NoError(t, err)
	defer c.Close()

	userID, err := c.UserID()
	require.NoError(t, err)

	today := time.Now().UTC()
	query := queries.RankDaysQuery{UserID: userID, StartDate: today, EndDate: today}
	addTask := func() {
		_, err := c.AddTaskHandler.Handle(ctx, commands.AddTaskCommand{UserID: userID, Title: "Focus", Date: today})
		require.NoError(t, err)
	}

	addTask()
	days, err := c.RankDaysHandler.Handle(ctx, query)
	require.NoError(t, err)
	require.Equal(t, 1, days[0].TaskCount)

	addTask()
	days, err = c.RankDaysHandler.Handle(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 2, days[0].TaskCount, "a new task drops the cached ranking")

	_, err = c.FindBestSlotHandler.Handle(ctx, queries.FindBestSlotQuery{UserID: userID})
	require.NoError(t, err)
	duration := 25
	_, err = c.PreferencesService.UpdatePreferences(ctx, userID, prefsDomain.Patch{
		TaskPreferences: &prefsDomain.TaskPreferencesPatch{PreferredDuration: &duration},
	})
	require.NoError(t, err)

	suggestion, err := c.FindBestSlotHandler.Handle(ctx, queries.FindBestSlotQuery{UserID: userID})
	require.NoError(t, err)
	start, err := time.Parse("15:04", suggestion.BestSlot.StartTime)
	require.NoError(t, err)
	end, err := time.Parse("15:04", suggestion.BestSlot.EndTime)
	require.NoError(t, err)
	assert.Equal(t, 25*time.Minute, end.Sub(start), "a preference update drops the cached suggestion")
}

func TestContainer_UserID(t *testing.T) {
	c := &Container{Config: &config.Config{UserID: "not-a-uuid"}}
	_, err := c.UserID()
	assert.ErrorContains(t, err, "SLOTWISE_USER_ID")
}
