package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/felixgeelhaar/slotwise/adapter/cli"
	"github.com/felixgeelhaar/slotwise/adapter/cli/clitest"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, t.Context(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := cli.RootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	defer root.SetArgs(nil)
	err := cli.ExecuteContext(ctx)
	return out.String(), err
}

func TestRequireUser(t *testing.T) {
	cli.SetApp(nil)
	_, err := cli.RequireUser()
	assert.ErrorIs(t, err, cli.ErrNotConfigured)

	app := cli.NewApp(nil, nil, nil, nil, nil)
	cli.SetApp(app)
	defer cli.SetApp(nil)

	_, err = cli.RequireUser()
	assert.ErrorIs(t, err, cli.ErrNoCurrentUser)

	app.SetCurrentUserID(uuid.New())
	got, err := cli.RequireUser()
	require.NoError(t, err)
	assert.Same(t, app, got)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version", "--json=false")
	require.NoError(t, err)
	assert.Contains(t, out, "slotwise dev (go")

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var info cli.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Commit)
}

func TestHealthCmd_ReportsChecks(t *testing.T) {
	clitest.NewApp(t)

	out, err := execute(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "status: healthy")
	assert.Contains(t, out, "database")
	assert.Contains(t, out, "tasks_source")
}

func TestHealthCmd_JSON(t *testing.T) {
	clitest.NewApp(t)

	out, err := execute(t, "health", "--json")
	require.NoError(t, err)

	var overall observability.OverallHealth
	require.NoError(t, json.Unmarshal([]byte(out), &overall))
	assert.Equal(t, observability.HealthStatusHealthy, overall.Status)
	assert.Contains(t, overall.Checks, "todos_source")
}

func TestHealthCmd_NotConfigured(t *testing.T) {
	cli.SetApp(nil)

	_, err := execute(t, "health")
	assert.ErrorIs(t, err, cli.ErrNotConfigured)
}

func TestExecuteContext_EachRunUsesItsOwnContext(t *testing.T) {
	clitest.NewApp(t)

	var logs bytes.Buffer
	cli.SetLogger(observability.NewLogger(observability.LogConfig{Level: slog.LevelDebug, JSON: true, Output: &logs}))
	defer cli.SetLogger(nil)

	cancelled, cancel := context.WithCancel(t.Context())
	cancel()
	_, _ = executeContext(t, cancelled, "health", "--json=false")

	out, err := execute(t, "health", "--json=false")
	require.NoError(t, err)
	assert.Contains(t, out, "status: healthy", "a cancelled earlier run does not leak into the next")

	var ids []string
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["msg"] == "command start" {
			ids = append(ids, entry["correlation_id"].(string))
		}
	}
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
}
