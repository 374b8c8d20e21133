package todo

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/slotwise/adapter/cli/clitest"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCmd_CreatesTodoWithSubtasks(t *testing.T) {
	app, container := clitest.NewApp(t)

	out, err := clitest.Run(t, addCmd, []string{"Plan offsite"}, map[string]string{
		"due":      "2025-06-05",
		"subtasks": "3",
		"json":     "true",
	})
	require.NoError(t, err)

	var result struct {
		ID       string   `json:"id"`
		Subtasks []string `json:"subtasks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Subtasks, 3)

	due := time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)
	todos, err := container.TodoRepo.FetchTodos(t.Context(), app.CurrentUserID, domain.NewDateRange(due, due))
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, result.ID, todos[0].ID.String())
	assert.Equal(t, "Plan offsite", todos[0].Title)
	assert.Len(t, todos[0].Subtasks, 3)
	assert.Zero(t, todos[0].CompletedSubtasks())
}

func TestAddCmd_TextOutput(t *testing.T) {
	clitest.NewApp(t)

	out, err := clitest.Run(t, addCmd, nil, map[string]string{"title": "Pay rent"})
	require.NoError(t, err)
	assert.Contains(t, out, "Todo added:")
	assert.NotContains(t, out, "subtasks")
}

func TestAddCmd_Validation(t *testing.T) {
	clitest.NewApp(t)

	_, err := clitest.Run(t, addCmd, nil, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)

	_, err = clitest.Run(t, addCmd, []string{"Pay rent"}, map[string]string{"due": "05.06.2025"})
	assert.ErrorContains(t, err, "invalid --due")
}
