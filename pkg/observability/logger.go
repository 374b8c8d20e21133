// Package observability provides structured logging, metrics, operation
// timing and health checks for slotwise.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogConfig configures NewLogger.
type LogConfig struct {
	Level     slog.Level
	JSON      bool
	AddSource bool
	// Output defaults to os.Stderr.
	Output io.Writer
	// Service and Version are attached to every record when set.
	Service string
	Version string
}

// NewLogger builds a logger whose records carry the service, its version
// and the correlation id, request id, user id and operation of their context.
func NewLogger(cfg LogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}

	var base slog.Handler
	if cfg.JSON {
		base = slog.NewJSONHandler(out, opts)
	} else {
		base = slog.NewTextHandler(out, opts)
	}

	var attrs []slog.Attr
	if cfg.Service != "" {
		attrs = append(attrs, slog.String("service", cfg.Service))
	}
	if cfg.Version != "" {
		attrs = append(attrs, slog.String("version", cfg.Version))
	}
	if len(attrs) > 0 {
		base = base.WithAttrs(attrs)
	}

	return slog.New(contextHandler{Handler: base})
}

// LoggerFor builds the slotwise logger for an environment. Production logs
// JSON with source locations; level ("debug", "info", "warn", "error") and
// format ("json", "text") override the environment when set.
func LoggerFor(appEnv, level, format, version string) *slog.Logger {
	production := appEnv == "production"
	cfg := LogConfig{
		Level:     parseLevel(level, slog.LevelInfo),
		JSON:      production,
		AddSource: production,
		Service:   "slotwise",
		Version:   version,
	}
	switch strings.ToLower(format) {
	case "json":
		cfg.JSON = true
	case "text":
		cfg.JSON = false
	}
	return NewLogger(cfg)
}

func parseLevel(s string, fallback slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return fallback
	}
	return level
}

// contextHandler adds the context fields to each record unless the record
// already sets that key.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, attr := range contextAttrs(ctx) {
		if !hasAttr(r, attr.Key) {
			r.AddAttrs(attr)
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{Handler: h.Handler.WithGroup(name)}
}

func hasAttr(r slog.Record, key string) bool {
	found := false
	r.Attrs(func(a slog.Attr) bool {
		found = a.Key == key
		return !found
	})
	return found
}
