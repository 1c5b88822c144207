// Package metrics exposes Prometheus instrumentation for the ingestion
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// OutcomeCreated labels facts that opened a new downtime event.
	OutcomeCreated = "created"
	// OutcomeMerged labels facts deduplicated into an existing event.
	OutcomeMerged = "merged"
	// OutcomeRejected labels facts that failed validation.
	OutcomeRejected = "rejected"
)

type Metrics struct {
	registry *prometheus.Registry

	factsTotal        *prometheus.CounterVec
	eventsResolved    prometheus.Counter
	notificationsOpen prometheus.Gauge
	pipelineSeconds   prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		factsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "noticehub",
				Name:      "facts_total",
				Help:      "Total number of downtime facts processed, partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		eventsResolved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "noticehub",
				Name:      "events_resolved_total",
				Help:      "Total number of downtime events resolved.",
			},
		),
		notificationsOpen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "noticehub",
				Name:      "notifications_open",
				Help:      "Number of currently open notifications.",
			},
		),
		pipelineSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "noticehub",
				Name:      "pipeline_seconds",
				Help:      "Fact pipeline latency in seconds.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
	}

	m.registry.MustRegister(
		m.factsTotal,
		m.eventsResolved,
		m.notificationsOpen,
		m.pipelineSeconds,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) ObserveFact(outcome string, seconds float64) {
	m.factsTotal.WithLabelValues(outcome).Inc()
	m.pipelineSeconds.Observe(seconds)
}

func (m *Metrics) EventResolved() {
	m.eventsResolved.Inc()
}

// SetNotificationsOpen primes the gauge from persisted state, so restarts do
// not start counting from zero while open notifications survive in the store.
func (m *Metrics) SetNotificationsOpen(n int) {
	m.notificationsOpen.Set(float64(n))
}

func (m *Metrics) NotificationsOpened(n int) {
	m.notificationsOpen.Add(float64(n))
}

func (m *Metrics) NotificationsResolved(n int) {
	m.notificationsOpen.Sub(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
