package observability

import (
	"context"
	"log/slog"
	"time"
)

// Timer measures one operation. Stopping it records the duration and count
// under the operation tag and logs the outcome: debug on success, warn on
// failure.
type Timer struct {
	ctx       context.Context
	operation string
	start     time.Time
	logger    *slog.Logger
	metrics   Metrics
}

// StartTimer starts timing operation. ctx supplies the log fields of the
// completion record.
func StartTimer(ctx context.Context, operation string) *Timer {
	return &Timer{
		ctx:       ctx,
		operation: operation,
		start:     time.Now(),
	}
}

// WithLogger logs the outcome to logger when the timer stops.
func (t *Timer) WithLogger(logger *slog.Logger) *Timer {
	t.logger = logger
	return t
}

// WithMetrics records the outcome in metrics when the timer stops.
func (t *Timer) WithMetrics(metrics Metrics) *Timer {
	t.metrics = metrics
	return t
}

// Stop records a successful operation.
func (t *Timer) Stop() time.Duration {
	return t.StopWithError(nil)
}

// StopWithError records the operation, counting it as failed when err is non-nil.
func (t *Timer) StopWithError(err error) time.Duration {
	duration := time.Since(t.start)

	if t.metrics != nil {
		tag := T("operation", t.operation)
		t.metrics.Timing(MetricOperationDuration, duration, tag)
		t.metrics.Counter(MetricOperationTotal, 1, tag)
		if err != nil {
			t.metrics.Counter(MetricOperationErrors, 1, tag)
		}
	}

	if t.logger != nil {
		if err != nil {
			t.logger.WarnContext(t.ctx, "operation failed",
				"operation", t.operation,
				"duration_ms", duration.Milliseconds(),
				"error", err,
			)
		} else {
			t.logger.DebugContext(t.ctx, "operation completed",
				"operation", t.operation,
				"duration_ms", duration.Milliseconds(),
			)
		}
	}

	return duration
}
