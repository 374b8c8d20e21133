package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/slotwise/adapter/cli"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
)

func registerCoreTools(srv *mcp.Server, deps ToolDependencies) {
	srv.Tool("slotwise.health").
		Description("Check database, cache and task source health").
		Handler(healthTool(deps.App))
}

func healthTool(app *cli.App) func(context.Context, struct{}) (*observability.OverallHealth, error) {
	return func(ctx context.Context, _ struct{}) (*observability.OverallHealth, error) {
		if app == nil {
			return nil, cli.ErrNotConfigured
		}
		if app.Health == nil {
			return &observability.OverallHealth{Status: observability.HealthStatusHealthy}, nil
		}
		overall := app.Health.GetOverallHealth(ctx)
		return &overall, nil
	}
}
