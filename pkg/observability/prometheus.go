package observability

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics implements Metrics on a Prometheus registry. Collectors
// are created on first use; a metric keeps the label names of its first
// observation and later observations with other labels are dropped.
type PrometheusMetrics struct {
	factory promauto.Factory

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusMetrics creates a Metrics that registers its collectors with registry.
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	return &PrometheusMetrics{
		factory:    promauto.With(registry),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func (m *PrometheusMetrics) Counter(name string, value int64, tags ...Tag) {
	labels, names := splitTags(tags)

	m.mu.Lock()
	vec, ok := m.counters[name]
	if !ok {
		vec = m.factory.NewCounterVec(prometheus.CounterOpts{
			Name: PrometheusName(name, "_total"),
			Help: "Total of " + name,
		}, names)
		m.counters[name] = vec
	}
	m.mu.Unlock()

	if c, err := vec.GetMetricWith(labels); err == nil {
		c.Add(float64(value))
	}
}

func (m *PrometheusMetrics) Gauge(name string, value float64, tags ...Tag) {
	labels, names := splitTags(tags)

	m.mu.Lock()
	vec, ok := m.gauges[name]
	if !ok {
		vec = m.factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: PrometheusName(name, ""),
			Help: "Current value of " + name,
		}, names)
		m.gauges[name] = vec
	}
	m.mu.Unlock()

	if g, err := vec.GetMetricWith(labels); err == nil {
		g.Set(value)
	}
}

func (m *PrometheusMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.observe(name, "", prometheus.DefBuckets, value, tags)
}

// Timing records the duration in seconds.
func (m *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.observe(name, "_seconds", []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}, duration.Seconds(), tags)
}

func (m *PrometheusMetrics) observe(name, suffix string, buckets []float64, value float64, tags []Tag) {
	labels, names := splitTags(tags)
	key := name + suffix

	m.mu.Lock()
	vec, ok := m.histograms[key]
	if !ok {
		vec = m.factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    PrometheusName(name, suffix),
			Help:    "Distribution of " + name,
			Buckets: buckets,
		}, names)
		m.histograms[key] = vec
	}
	m.mu.Unlock()

	if h, err := vec.GetMetricWith(labels); err == nil {
		h.Observe(value)
	}
}

// PrometheusName converts a dotted metric name to Prometheus form and
// appends suffix unless the name already ends with it.
func PrometheusName(name, suffix string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if suffix != "" && !strings.HasSuffix(out, suffix) {
		out += suffix
	}
	return out
}

func splitTags(tags []Tag) (prometheus.Labels, []string) {
	labels := make(prometheus.Labels, len(tags))
	for _, t := range tags {
		labels[PrometheusName(t.Key, "")] = t.Value
	}
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	slices.Sort(names)
	return labels, names
}
