package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/slotwise/adapter/api"
	"github.com/felixgeelhaar/slotwise/internal/app"
	mcpinternal "github.com/felixgeelhaar/slotwise/internal/mcp"
	"github.com/felixgeelhaar/slotwise/pkg/config"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		observability.LoggerFor("development", "info", "", "dev").Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.LoggerFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat, cfg.Version)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	userID, err := container.UserID()
	if err != nil {
		logger.Error("invalid SLOTWISE_USER_ID", "error", err)
		os.Exit(1)
	}

	if cfg.MetricsAddr != "" {
		handler := api.NewSchedulingHandler(api.SchedulingHandlerConfig{
			FindBestSlot: container.FindBestSlotHandler,
			RankDays:     container.RankDaysHandler,
			Preferences:  container.PreferencesService,
			UserID:       userID,
			Location:     container.Location,
			Logger:       logger,
		})
		serverCfg := api.DefaultServerConfig()
		serverCfg.Addr = cfg.MetricsAddr
		apiServer := api.NewServer(serverCfg, handler, container.Health, container.MetricsRegistry, logger)

		go func() {
			if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("api server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			_ = apiServer.Shutdown(shutdownCtx)
		}()
	}

	cliApp := mcpinternal.NewCLIApp(container, userID)

	if err := mcpinternal.Serve(ctx, cfg, cliApp, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
