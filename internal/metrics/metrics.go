// Package metrics exposes import pipeline counters over Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the import pipeline.
type Metrics struct {
	registry *prometheus.Registry

	sourcesProcessed *prometheus.CounterVec
	eventsCreated    prometheus.Counter
	eventsUpdated    prometheus.Counter
	eventFailures    prometheus.Counter
	lastRunTimestamp prometheus.Gauge
}

// New creates a Metrics instance backed by its own registry so tests can
// create instances without collector name collisions.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		sourcesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventscrape",
			Name:      "sources_processed_total",
			Help:      "Number of source sites processed, by run status.",
		}, []string{"status"}),
		eventsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "eventscrape",
			Name:      "events_created_total",
			Help:      "Number of new events created by imports.",
		}),
		eventsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "eventscrape",
			Name:      "events_updated_total",
			Help:      "Number of existing events updated by imports.",
		}),
		eventFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "eventscrape",
			Name:      "event_failures_total",
			Help:      "Number of extracted events that failed to import.",
		}),
		lastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventscrape",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the most recent completed import run.",
		}),
	}
}

// Handler returns an HTTP handler serving this instance's metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SourceProcessed records one completed source with its run status.
func (m *Metrics) SourceProcessed(status string) {
	m.sourcesProcessed.WithLabelValues(status).Inc()
}

// EventsCreated adds to the created-events counter.
func (m *Metrics) EventsCreated(n int) {
	m.eventsCreated.Add(float64(n))
}

// EventsUpdated adds to the updated-events counter.
func (m *Metrics) EventsUpdated(n int) {
	m.eventsUpdated.Add(float64(n))
}

// EventFailures adds to the failed-events counter.
func (m *Metrics) EventFailures(n int) {
	m.eventFailures.Add(float64(n))
}

// ObserveRun marks the completion time of an import run.
func (m *Metrics) ObserveRun(at time.Time) {
	m.lastRunTimestamp.Set(float64(at.Unix()))
}
