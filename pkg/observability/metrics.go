package observability

import (
	"strings"
	"sync"
	"time"
)

// Metrics provides an interface for recording application metrics.
type Metrics interface {
	// Counter increments a counter metric.
	Counter(name string, value int64, tags ...Tag)

	// Gauge sets a gauge metric to the given value.
	Gauge(name string, value float64, tags ...Tag)

	// Histogram records a value in a histogram.
	Histogram(name string, value float64, tags ...Tag)

	// Timing records a duration.
	Timing(name string, duration time.Duration, tags ...Tag)
}

// Tag represents a key-value pair for metric labeling.
type Tag struct {
	Key   string
	Value string
}

// T creates a new Tag.
func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// NoopMetrics is a no-op implementation of Metrics.
type NoopMetrics struct{}

func (NoopMetrics) Counter(name string, value int64, tags ...Tag)          {}
func (NoopMetrics) Gauge(name string, value float64, tags ...Tag)          {}
func (NoopMetrics) Histogram(name string, value float64, tags ...Tag)      {}
func (NoopMetrics) Timing(name string, duration time.Duration, tags ...Tag) {}

// InMemoryMetrics records metrics in maps for tests. Series are keyed by
// name plus tags in the order given.
type InMemoryMetrics struct {
	mu           sync.RWMutex
	counters     map[string]int64
	observations map[string][]float64
}

// NewInMemoryMetrics creates an empty InMemoryMetrics.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		counters:     make(map[string]int64),
		observations: make(map[string][]float64),
	}
}

func (m *InMemoryMetrics) Counter(name string, value int64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[seriesKey(name, tags)] += value
}

// Gauge keeps only the latest value as the single observation.
func (m *InMemoryMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observations[seriesKey(name, tags)] = []float64{value}
}

func (m *InMemoryMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.observe(name, value, tags)
}

// Timing observes the duration in seconds.
func (m *InMemoryMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.observe(name, duration.Seconds(), tags)
}

func (m *InMemoryMetrics) observe(name string, value float64, tags []Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := seriesKey(name, tags)
	m.observations[key] = append(m.observations[key], value)
}

// GetCounter returns the total of a counter series.
func (m *InMemoryMetrics) GetCounter(name string, tags ...Tag) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[seriesKey(name, tags)]
}

// Observations returns a copy of the values recorded for a gauge, histogram
// or timing series.
func (m *InMemoryMetrics) Observations(name string, tags ...Tag) []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]float64(nil), m.observations[seriesKey(name, tags)]...)
}

func seriesKey(name string, tags []Tag) string {
	var b strings.Builder
	b.WriteString(name)
	for _, t := range tags {
		b.WriteString(":" + t.Key + "=" + t.Value)
	}
	return b.String()
}

// Standard metric names used throughout slotwise.
const (
	// Operation metrics
	MetricOperationTotal    = "slotwise.operation.total"
	MetricOperationDuration = "slotwise.operation.duration"
	MetricOperationErrors   = "slotwise.operation.errors"

	// Slot selection metrics
	MetricSlotSearches   = "slotwise.slots.searches"
	MetricSlotFallbacks  = "slotwise.slots.fallbacks"
	MetricSlotCandidates = "slotwise.slots.candidates"

	// Day ranking metrics
	MetricDayRankings = "slotwise.days.rankings"
	MetricDaysRanked  = "slotwise.days.ranked"

	// Cache metrics
	MetricCacheHits   = "slotwise.cache.hits"
	MetricCacheMisses = "slotwise.cache.misses"

	// Data source metrics
	MetricSourceErrors         = "slotwise.source.errors"
	MetricBreakerStateChanges  = "slotwise.breaker.state_changes"
	MetricBreakerOpen          = "slotwise.breaker.open"
	MetricPreferencesFallbacks = "slotwise.preferences.fallbacks"

	// Record metrics
	MetricTasksCreated       = "slotwise.tasks.created"
	MetricTodosCreated       = "slotwise.todos.created"
	MetricPreferencesUpdated = "slotwise.preferences.updated"
)
