package observability

import (
	"context"
	"sync"
	"time"
)

// HealthStatus is the state of one component or of the whole service.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// severity orders statuses so the worst one wins.
func (s HealthStatus) severity() int {
	switch s {
	case HealthStatusUnhealthy:
		return 2
	case HealthStatusDegraded:
		return 1
	default:
		return 0
	}
}

// DefaultCheckTimeout bounds a single health check.
const DefaultCheckTimeout = 2 * time.Second

// HealthCheckResult is the outcome of one check.
type HealthCheckResult struct {
	Status   HealthStatus   `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration time.Duration  `json:"duration_ns"`
	Details  map[string]any `json:"details,omitempty"`
}

// HealthChecker probes one component.
type HealthChecker func(ctx context.Context) HealthCheckResult

// OverallHealth is the service status, the worst of its checks.
type OverallHealth struct {
	Status    HealthStatus                 `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Checks    map[string]HealthCheckResult `json:"checks"`
}

// HealthRegistry runs the registered checks on demand.
type HealthRegistry struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
	timeout  time.Duration
}

// NewHealthRegistry creates a registry whose checks time out after DefaultCheckTimeout.
func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{
		checkers: make(map[string]HealthChecker),
		timeout:  DefaultCheckTimeout,
	}
}

// Register adds or replaces the checker for a component.
func (r *HealthRegistry) Register(name string, checker HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// GetOverallHealth runs every check concurrently and folds the results. A
// registry without checks is healthy.
func (r *HealthRegistry) GetOverallHealth(ctx context.Context) OverallHealth {
	r.mu.RLock()
	checkers := make(map[string]HealthChecker, len(r.checkers))
	for name, checker := range r.checkers {
		checkers[name] = checker
	}
	r.mu.RUnlock()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]HealthCheckResult, len(checkers))
	)
	for name, checker := range checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := r.run(ctx, checker)
			mu.Lock()
			results[name] = result
			mu.Unlock()
		}()
	}
	wg.Wait()

	status := HealthStatusHealthy
	for _, result := range results {
		if result.Status.severity() > status.severity() {
			status = result.Status
		}
	}

	return OverallHealth{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    results,
	}
}

func (r *HealthRegistry) run(ctx context.Context, checker HealthChecker) HealthCheckResult {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	result := checker(ctx)
	result.Duration = time.Since(start)
	return result
}

// pingChecker reports failStatus with the ping error, healthy otherwise.
func pingChecker(component string, failStatus HealthStatus, ping func(ctx context.Context) error) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		if err := ping(ctx); err != nil {
			return HealthCheckResult{Status: failStatus, Message: component + " connection failed: " + err.Error()}
		}
		return HealthCheckResult{Status: HealthStatusHealthy, Message: component + " connection healthy"}
	}
}

// DatabaseHealthChecker makes the service unhealthy when the store is unreachable.
func DatabaseHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return pingChecker("database", HealthStatusUnhealthy, ping)
}

// RedisHealthChecker only degrades the service: caching is optional.
func RedisHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return pingChecker("redis", HealthStatusDegraded, ping)
}

// CircuitHealthChecker reports a data source as degraded while its circuit
// breaker is not closed.
func CircuitHealthChecker(state func() string) HealthChecker {
	return func(context.Context) HealthCheckResult {
		s := state()
		result := HealthCheckResult{
			Status:  HealthStatusHealthy,
			Message: "circuit breaker " + s,
			Details: map[string]any{"state": s},
		}
		if s != "closed" {
			result.Status = HealthStatusDegraded
		}
		return result
	}
}
