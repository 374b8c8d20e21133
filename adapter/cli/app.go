package cli

import (
	"errors"
	"time"

	prefsApp "github.com/felixgeelhaar/slotwise/internal/preferences/application"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/google/uuid"
)

// ErrNotConfigured is returned by commands run before SetApp.
var ErrNotConfigured = errors.New("app not initialized")

// App holds the CLI application dependencies.
type App struct {
	// Query Handlers
	FindBestSlotHandler *queries.FindBestSlotHandler
	RankDaysHandler     *queries.RankDaysHandler

	// Command Handlers
	AddTaskHandler *commands.AddTaskHandler
	AddTodoHandler *commands.AddTodoHandler

	// Preferences
	PreferencesService *prefsApp.Service

	// Health checks, nil skips the registry report
	Health *observability.HealthRegistry

	// Location dates given on the command line are parsed in
	Location *time.Location

	// Current user (configured per environment)
	CurrentUserID uuid.UUID
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	findBestSlotHandler *queries.FindBestSlotHandler,
	rankDaysHandler *queries.RankDaysHandler,
	addTaskHandler *commands.AddTaskHandler,
	addTodoHandler *commands.AddTodoHandler,
	preferencesService *prefsApp.Service,
) *App {
	return &App{
		FindBestSlotHandler: findBestSlotHandler,
		RankDaysHandler:     rankDaysHandler,
		AddTaskHandler:      addTaskHandler,
		AddTodoHandler:      addTodoHandler,
		PreferencesService:  preferencesService,
		Location:            time.Local,
		CurrentUserID:       uuid.Nil,
	}
}

// SetCurrentUserID updates the current user ID.
func (a *App) SetCurrentUserID(id uuid.UUID) {
	a.CurrentUserID = id
}

// SetHealth updates the health registry.
func (a *App) SetHealth(health *observability.HealthRegistry) {
	a.Health = health
}

// SetLocation updates the location command line dates are parsed in.
func (a *App) SetLocation(loc *time.Location) {
	if loc != nil {
		a.Location = loc
	}
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// ErrNoCurrentUser is returned when no user is configured for the CLI.
var ErrNoCurrentUser = errors.New("current user not configured")

// RequireUser returns the app when it is initialized and has a current user.
func RequireUser() (*App, error) {
	a := GetApp()
	if a == nil {
		return nil, ErrNotConfigured
	}
	if a.CurrentUserID == uuid.Nil {
		return nil, ErrNoCurrentUser
	}
	return a, nil
}
