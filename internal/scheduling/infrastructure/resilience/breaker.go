// Package resilience guards the scheduling data sources with circuit breakers.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the source circuit breakers.
type BreakerConfig struct {
	// Enabled turns the breakers on. When false sources are called directly.
	Enabled bool

	// MaxRequests is the maximum number of requests allowed in half-open state.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state.
	Interval time.Duration

	// Timeout is the period of the open state.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that trips the breaker.
	FailureThreshold uint32
}

// DefaultBreakerConfig returns a sensible default configuration.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

func newBreaker[T any](name string, config BreakerConfig, logger *slog.Logger, metrics observability.Metrics) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not a source failure.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"source", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.Counter(observability.MetricBreakerStateChanges, 1,
				observability.T("source", name),
				observability.T("state", to.String()),
			)
			isOpen := 0.0
			if to == gobreaker.StateOpen {
				isOpen = 1
			}
			metrics.Gauge(observability.MetricBreakerOpen, isOpen, observability.T("source", name))
		},
	})
}

// execute runs fn through the breaker, translating fail-fast rejections
// into domain.ErrSourceUnavailable.
func execute[T any](cb *gobreaker.CircuitBreaker[T], metrics observability.Metrics, fn func() (T, error)) (T, error) {
	result, err := cb.Execute(fn)
	if err == nil {
		return result, nil
	}
	metrics.Counter(observability.MetricSourceErrors, 1, observability.T("source", cb.Name()))
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return result, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, cb.Name(), err)
	}
	return result, err
}

// TaskSource wraps a domain.TaskSource with a circuit breaker.
type TaskSource struct {
	next    domain.TaskSource
	breaker *gobreaker.CircuitBreaker[[]domain.Task]
	metrics observability.Metrics
}

// NewTaskSource guards next. It returns next unchanged when breakers are disabled.
func NewTaskSource(next domain.TaskSource, config BreakerConfig, logger *slog.Logger, metrics observability.Metrics) domain.TaskSource {
	if !config.Enabled {
		return next
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &TaskSource{
		next:    next,
		breaker: newBreaker[[]domain.Task]("tasks", config, logger, metrics),
		metrics: metrics,
	}
}

// FetchTasks implements domain.TaskSource.
func (s *TaskSource) FetchTasks(ctx context.Context, userID uuid.UUID, dates domain.DateRange) ([]domain.Task, error) {
	return execute(s.breaker, s.metrics, func() ([]domain.Task, error) {
		return s.next.FetchTasks(ctx, userID, dates)
	})
}

// State reports the breaker state.
func (s *TaskSource) State() gobreaker.State {
	return s.breaker.State()
}

// TodoSource wraps a domain.TodoSource with a circuit breaker.
type TodoSource struct {
	next    domain.TodoSource
	breaker *gobreaker.CircuitBreaker[[]domain.Todo]
	metrics observability.Metrics
}

// NewTodoSource guards next. It returns next unchanged when breakers are disabled.
func NewTodoSource(next domain.TodoSource, config BreakerConfig, logger *slog.Logger, metrics observability.Metrics) domain.TodoSource {
	if !config.Enabled {
		return next
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &TodoSource{
		next:    next,
		breaker: newBreaker[[]domain.Todo]("todos", config, logger, metrics),
		metrics: metrics,
	}
}

// FetchTodos implements domain.TodoSource.
func (s *TodoSource) FetchTodos(ctx context.Context, userID uuid.UUID, dates domain.DateRange) ([]domain.Todo, error) {
	return execute(s.breaker, s.metrics, func() ([]domain.Todo, error) {
		return s.next.FetchTodos(ctx, userID, dates)
	})
}

// State reports the breaker state.
func (s *TodoSource) State() gobreaker.State {
	return s.breaker.State()
}
