package mcp

import (
	"context"
	"errors"
	"log/slog"

	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/middleware"
	"github.com/felixgeelhaar/slotwise/adapter/cli"
	mcplocal "github.com/felixgeelhaar/slotwise/adapter/mcp"
	"github.com/felixgeelhaar/slotwise/pkg/config"
)

// NewServer creates an MCP server with the scheduling tools, resources and
// prompts registered against cliApp.
func NewServer(version string, cliApp *cli.App, logger *slog.Logger) (*mcpgo.Server, error) {
	if cliApp == nil {
		return nil, errors.New("CLI app is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if version == "" {
		version = "dev"
	}

	srv := mcpgo.NewServer(mcpgo.ServerInfo{
		Name:    "slotwise-mcp",
		Version: version,
		Capabilities: mcpgo.Capabilities{
			Tools:     true,
			Resources: true,
			Prompts:   true,
		},
	})

	deps := mcplocal.ToolDependencies{App: cliApp}

	// Register CLI tools
	if err := mcplocal.RegisterCLITools(srv, deps); err != nil {
		return nil, err
	}

	// Resources and prompts are optional enhancements
	if err := mcplocal.RegisterResources(srv, deps); err != nil {
		logger.Warn("failed to register MCP resources", "error", err)
	}
	if err := mcplocal.RegisterPrompts(srv, deps); err != nil {
		logger.Warn("failed to register MCP prompts", "error", err)
	}

	return srv, nil
}

// Middleware returns the request middleware stack. A configured auth token
// puts bearer authentication in front of it.
func Middleware(cfg *config.Config, logger *slog.Logger) []middleware.Middleware {
	adapter := mcpLogger{logger: logger}
	stack := middleware.DefaultStack(adapter)

	if cfg.MCPAuthToken != "" {
		authenticator := middleware.BearerTokenAuthenticator(middleware.StaticTokens(map[string]*middleware.Identity{
			cfg.MCPAuthToken: {ID: "mcp", Name: "mcp"},
		}))
		stack = append([]middleware.Middleware{middleware.Auth(authenticator, middleware.WithAuthLogger(adapter))}, stack...)
	} else {
		logger.Warn("MCP auth token not set; requests will be unauthenticated")
	}
	return stack
}

// Serve starts an MCP server that mirrors CLI behavior and blocks until the context is canceled.
func Serve(ctx context.Context, cfg *config.Config, cliApp *cli.App, logger *slog.Logger) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv, err := NewServer(cfg.Version, cliApp, logger)
	if err != nil {
		return err
	}

	logger.Info("mcp server listening", "addr", cfg.MCPAddr)
	return mcpgo.ServeHTTPWithMiddleware(ctx, srv, cfg.MCPAddr, nil, mcpgo.WithMiddleware(Middleware(cfg, logger)...))
}

type mcpLogger struct {
	logger *slog.Logger
}

func (l mcpLogger) Info(msg string, fields ...middleware.Field) {
	l.logger.Info(msg, fieldsToArgs(fields)...)
}

func (l mcpLogger) Error(msg string, fields ...middleware.Field) {
	l.logger.Error(msg, fieldsToArgs(fields)...)
}

func (l mcpLogger) Debug(msg string, fields ...middleware.Field) {
	l.logger.Debug(msg, fieldsToArgs(fields)...)
}

func (l mcpLogger) Warn(msg string, fields ...middleware.Field) {
	l.logger.Warn(msg, fieldsToArgs(fields)...)
}

func fieldsToArgs(fields []middleware.Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		args = append(args, field.Key, field.Value)
	}
	return args
}
