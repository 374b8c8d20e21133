package mcp

import (
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/slotwise/adapter/cli"
	"github.com/google/uuid"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	registerCoreTools(srv, deps)
	registerSlotTools(srv, deps)
	registerPreferenceTools(srv, deps)
	registerTaskTools(srv, deps)

	return nil
}

func requireUser(app *cli.App) error {
	if app == nil {
		return cli.ErrNotConfigured
	}
	if app.CurrentUserID == uuid.Nil {
		return cli.ErrNoCurrentUser
	}
	return nil
}
