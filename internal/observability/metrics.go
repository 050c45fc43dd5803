package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup results used as label values
const (
	ResultFound       = "found"
	ResultNotFound    = "not_found"
	ResultCountFailed = "count_failed"
	ResultError       = "error"
)

// Metrics holds all Prometheus metrics for one service container.
// Every instance owns its registry so parallel tests never collide.
type Metrics struct {
	registry *prometheus.Registry

	// Lookup metrics
	ElementLookupsTotal    *prometheus.CounterVec
	ElementLookupDuration  *prometheus.HistogramVec
	CollectionLookupsTotal *prometheus.CounterVec

	// Action metrics
	ElementActionsTotal *prometheus.CounterVec
	ActionRetriesTotal  *prometheus.CounterVec

	// Application metrics
	ApplicationsStarted prometheus.Counter
	ApplicationsActive  prometheus.Gauge
	ArtifactsUploaded   *prometheus.CounterVec
}

// NewMetrics creates a new metrics instance with all Prometheus metrics registered
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "uicore"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ElementLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "element_lookups_total",
				Help:      "Total number of single-element lookups",
			},
			[]string{"state", "result"},
		),
		ElementLookupDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "element_lookup_duration_seconds",
				Help:      "Time spent waiting for elements to reach the requested state",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"state"},
		),
		CollectionLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "collection_lookups_total",
				Help:      "Total number of multi-element lookups",
			},
			[]string{"count", "result"},
		),
		ElementActionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "element_actions_total",
				Help:      "Total number of actions performed on elements",
			},
			[]string{"kind", "action"},
		),
		ActionRetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "action_retries_total",
				Help:      "Total number of element actions repeated after a stale node",
			},
			[]string{"kind"},
		),
		ApplicationsStarted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "applications_started_total",
				Help:      "Total number of applications started",
			},
		),
		ApplicationsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "applications_active",
				Help:      "Number of applications currently running",
			},
		),
		ArtifactsUploaded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "artifacts_uploaded_total",
				Help:      "Total number of artifacts stored",
			},
			[]string{"type", "status"},
		),
	}
}

// Registry exposes the underlying registry (for tests and custom collectors)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus HTTP handler for this instance
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// The Record methods are safe on a nil *Metrics so callers may run without metrics.

// RecordLookup records a single-element lookup
func (m *Metrics) RecordLookup(state, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ElementLookupsTotal.WithLabelValues(state, result).Inc()
	m.ElementLookupDuration.WithLabelValues(state).Observe(duration.Seconds())
}

// RecordCollectionLookup records a multi-element lookup
func (m *Metrics) RecordCollectionLookup(count, result string) {
	if m == nil {
		return
	}
	m.CollectionLookupsTotal.WithLabelValues(count, result).Inc()
}

// RecordElementAction records an action performed on an element
func (m *Metrics) RecordElementAction(kind, action string) {
	if m == nil {
		return
	}
	m.ElementActionsTotal.WithLabelValues(kind, action).Inc()
}

// RecordActionRetry records a retried action
func (m *Metrics) RecordActionRetry(kind string) {
	if m == nil {
		return
	}
	m.ActionRetriesTotal.WithLabelValues(kind).Inc()
}

// RecordApplicationStart records a started application
func (m *Metrics) RecordApplicationStart() {
	if m == nil {
		return
	}
	m.ApplicationsStarted.Inc()
	m.ApplicationsActive.Inc()
}

// RecordApplicationQuit records a stopped application
func (m *Metrics) RecordApplicationQuit() {
	if m == nil {
		return
	}
	m.ApplicationsActive.Dec()
}

// RecordArtifact records an artifact upload
func (m *Metrics) RecordArtifact(artifactType, status string) {
	if m == nil {
		return
	}
	m.ArtifactsUploaded.WithLabelValues(artifactType, status).Inc()
}
