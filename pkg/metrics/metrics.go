// Package metrics defines the Prometheus collectors for engine activity and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors and implements engine.Observer.
type Metrics struct {
	EvaluationsTotal    *prometheus.CounterVec
	RendersTotal        *prometheus.CounterVec
	CacheHitsTotal      *prometheus.CounterVec
	CacheEvictionsTotal *prometheus.CounterVec
	EvaluationSegments  prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates the collectors and registers them with reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		EvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regexrender_evaluations_total",
				Help: "Total number of completed evaluations by nesting depth.",
			},
			[]string{"depth"},
		),
		RendersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regexrender_renders_total",
				Help: "Total renderer invocations caused by cache misses, by pattern.",
			},
			[]string{"pattern"},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regexrender_cache_hits_total",
				Help: "Total cached nodes reused, by pattern.",
			},
			[]string{"pattern"},
		),
		CacheEvictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regexrender_cache_evictions_total",
				Help: "Total stale cache entries dropped after a pattern matched fewer times, by pattern.",
			},
			[]string{"pattern"},
		),
		EvaluationSegments: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "regexrender_evaluation_segments",
				Help:    "Number of segments produced per evaluation.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.EvaluationsTotal,
		m.RendersTotal,
		m.CacheHitsTotal,
		m.CacheEvictionsTotal,
		m.EvaluationSegments,
	)

	return m
}

// Evaluated implements engine.Observer
func (m *Metrics) Evaluated(depth, segments int) {
	m.EvaluationsTotal.WithLabelValues(depthLabel(depth)).Inc()
	m.EvaluationSegments.Observe(float64(segments))
}

// Rendered implements engine.Observer
func (m *Metrics) Rendered(pattern string) {
	m.RendersTotal.WithLabelValues(pattern).Inc()
}

// Reused implements engine.Observer
func (m *Metrics) Reused(pattern string) {
	m.CacheHitsTotal.WithLabelValues(pattern).Inc()
}

// Evicted implements engine.Observer
func (m *Metrics) Evicted(pattern string, n int) {
	m.CacheEvictionsTotal.WithLabelValues(pattern).Add(float64(n))
}

// Handler returns the Prometheus scrape HTTP handler for these metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// depthLabel keeps the depth label bounded
func depthLabel(depth int) string {
	switch {
	case depth <= 0:
		return "0"
	case depth == 1:
		return "1"
	case depth == 2:
		return "2"
	default:
		return "3+"
	}
}
