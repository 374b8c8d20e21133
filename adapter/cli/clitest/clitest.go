// Package clitest builds a CLI application on a throwaway SQLite database
// for command tests.
package clitest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/slotwise/adapter/cli"
	internalApp "github.com/felixgeelhaar/slotwise/internal/app"
	"github.com/felixgeelhaar/slotwise/pkg/config"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// UserID is the user every test app runs as.
var UserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// NewApp creates a CLI app backed by a fresh SQLite file, installs it with
// cli.SetApp and removes it again when the test ends.
func NewApp(t *testing.T) (*cli.App, *internalApp.Container) {
	t.Helper()

	cfg := &config.Config{
		AppEnv:                  "test",
		LogLevel:                "error",
		UserID:                  UserID.String(),
		SQLitePath:              filepath.Join(t.TempDir(), "slotwise.db"),
		SlotCacheTTL:            time.Minute,
		RankCacheTTL:            time.Minute,
		PreferencesCacheTTL:     time.Minute,
		CacheSize:               16,
		LookaheadDays:           7,
		Timezone:                "UTC",
		BreakerEnabled:          true,
		BreakerFailureThreshold: 5,
		BreakerTimeout:          time.Second,
	}
	logger := observability.NewLogger(observability.LogConfig{Level: slog.LevelError, Output: io.Discard})

	container, err := internalApp.NewContainer(context.Background(), cfg, logger)
	require.NoError(t, err)

	app := cli.NewApp(
		container.FindBestSlotHandler,
		container.RankDaysHandler,
		container.AddTaskHandler,
		container.AddTodoHandler,
		container.PreferencesService,
	)
	app.SetCurrentUserID(UserID)
	app.SetHealth(container.Health)
	app.SetLocation(container.Location)

	cli.SetApp(app)
	t.Cleanup(func() {
		cli.SetApp(nil)
		container.Close()
	})
	return app, container
}

// Run executes cmd with flags applied and returns what it wrote. Flags of
// cmd are reset to their defaults first so package-level flag variables do
// not leak between tests.
func Run(t *testing.T, cmd *cobra.Command, args []string, flags map[string]string) (string, error) {
	t.Helper()

	ResetFlags(cmd)
	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value), "flag %s", name)
	}

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	defer cmd.SetOut(nil)

	err := cmd.RunE(cmd, args)
	return out.String(), err
}

// ResetFlags restores every flag of cmd to its default and clears Changed.
func ResetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
}
