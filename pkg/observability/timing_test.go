package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer_Stop(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: slog.LevelDebug, Output: &buf})
	metrics := NewInMemoryMetrics()
	ctx := WithUserID(context.Background(), "user-1")

	d := StartTimer(ctx, "slots.find").WithLogger(logger).WithMetrics(metrics).Stop()

	assert.GreaterOrEqual(t, d, time.Duration(0))
	tag := T("operation", "slots.find")
	assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationTotal, tag))
	assert.Zero(t, metrics.GetCounter(MetricOperationErrors, tag))
	assert.Len(t, metrics.Observations(MetricOperationDuration, tag), 1)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, `msg="operation completed"`)
	assert.Contains(t, out, "operation=slots.find")
	assert.Contains(t, out, "user_id=user-1")
}

func TestTimer_StopWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: slog.LevelWarn, Output: &buf})
	metrics := NewInMemoryMetrics()

	StartTimer(context.Background(), "days.rank").WithLogger(logger).WithMetrics(metrics).StopWithError(errors.New("source down"))

	tag := T("operation", "days.rank")
	assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationTotal, tag))
	assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationErrors, tag))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), `error="source down"`)
}

func TestTimer_WithoutSinks(t *testing.T) {
	assert.NotPanics(t, func() {
		StartTimer(context.Background(), "prefs.get").StopWithError(errors.New("x"))
	})
}
