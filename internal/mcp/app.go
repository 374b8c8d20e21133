package mcp

import (
	"github.com/felixgeelhaar/slotwise/adapter/cli"
	"github.com/felixgeelhaar/slotwise/internal/app"
	"github.com/google/uuid"
)

// NewCLIApp creates a CLI application instance backed by the provided container.
func NewCLIApp(container *app.Container, currentUser uuid.UUID) *cli.App {
	cliApp := cli.NewApp(
		container.FindBestSlotHandler,
		container.RankDaysHandler,
		container.AddTaskHandler,
		container.AddTodoHandler,
		container.PreferencesService,
	)

	cliApp.SetCurrentUserID(currentUser)
	cliApp.SetHealth(container.Health)
	cliApp.SetLocation(container.Location)

	return cliApp
}
