package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/slotwise/adapter/cli"
	"github.com/felixgeelhaar/slotwise/adapter/cli/days"
	"github.com/felixgeelhaar/slotwise/adapter/cli/prefs"
	"github.com/felixgeelhaar/slotwise/adapter/cli/slot"
	"github.com/felixgeelhaar/slotwise/adapter/cli/task"
	"github.com/felixgeelhaar/slotwise/adapter/cli/todo"
	"github.com/felixgeelhaar/slotwise/internal/app"
	"github.com/felixgeelhaar/slotwise/pkg/config"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
)

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		observability.LoggerFor("development", "info", "", "dev").Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// CLI output goes to stdout, so logs stay quiet unless asked for
	level := cfg.LogLevel
	if os.Getenv("LOG_LEVEL") == "" {
		level = "warn"
	}
	logger := observability.LoggerFor(cfg.AppEnv, level, cfg.LogFormat, cfg.Version)
	cli.SetLogger(logger)
	if cli.Version == "dev" {
		cli.Version = cfg.Version
	}

	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		// Commands report "app not initialized"; version still works
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()

		cliApp = cli.NewApp(
			container.FindBestSlotHandler,
			container.RankDaysHandler,
			container.AddTaskHandler,
			container.AddTodoHandler,
			container.PreferencesService,
		)

		userID, err := container.UserID()
		if err != nil {
			logger.Error("invalid SLOTWISE_USER_ID", "error", err)
			os.Exit(1)
		}
		cliApp.SetCurrentUserID(userID)
		cliApp.SetHealth(container.Health)
		cliApp.SetLocation(container.Location)
	}

	cli.SetApp(cliApp)

	// Register commands
	cli.AddCommand(slot.Cmd)
	cli.AddCommand(days.Cmd)
	cli.AddCommand(prefs.Cmd)
	cli.AddCommand(task.Cmd)
	cli.AddCommand(todo.Cmd)

	if err := cli.ExecuteContext(ctx); err != nil {
		if container != nil {
			container.Close()
		}
		os.Exit(1)
	}
}
