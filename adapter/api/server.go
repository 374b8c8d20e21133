// Package api provides the HTTP API for slot suggestions, day rankings,
// health and metrics.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP API server.
type Server struct {
	mux      *http.ServeMux
	server   *http.Server
	logger   *slog.Logger
	handler  *SchedulingHandler
	health   *observability.HealthRegistry
	gatherer prometheus.Gatherer
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:9090",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates a new API server. A nil health registry reports healthy
// and a nil gatherer leaves /metrics unregistered.
func NewServer(cfg ServerConfig, handler *SchedulingHandler, health *observability.HealthRegistry, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	s := &Server{
		mux:      mux,
		logger:   logger,
		handler:  handler,
		health:   health,
		gatherer: gatherer,
	}

	// Register routes
	s.registerRoutes()

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	if s.gatherer != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	if s.handler == nil {
		return
	}
	s.mux.HandleFunc("GET /api/v1/slots/best", s.handler.FindBestSlot)
	s.mux.HandleFunc("GET /api/v1/days/rank", s.handler.RankDays)
	s.mux.HandleFunc("GET /api/v1/preferences", s.handler.GetPreferences)
}

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.mux)
}

// withRequestID tags each request context with the caller's X-Request-ID, or
// a generated one, and echoes it on the response.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.WithRequestID(r.Context(), r.Header.Get(RequestIDHeader))
		w.Header().Set(RequestIDHeader, observability.RequestIDFromContext(ctx))

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		s.logger.DebugContext(ctx, "request served",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// handleHealth runs the registered checks. Unhealthy answers 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": string(observability.HealthStatusHealthy),
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	overall := s.health.GetOverallHealth(r.Context())
	status := http.StatusOK
	if overall.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, overall)
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server",
		"addr", s.server.Addr,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Log error but can't do much at this point
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}

// APIError represents an API error.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common API errors
var (
	ErrBadRequest = &APIError{
		Status:  http.StatusBadRequest,
		Code:    "bad_request",
		Message: "Invalid request",
	}
	ErrUnauthorized = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    "unauthorized",
		Message: "No user configured",
	}
	ErrInternalServer = &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "Internal server error",
	}
)

// writeAPIError writes e with its status.
func writeAPIError(w http.ResponseWriter, e *APIError) {
	writeJSON(w, e.Status, e)
}
