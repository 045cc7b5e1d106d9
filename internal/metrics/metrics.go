// Package metrics holds the gateway's Prometheus instruments. They are
// constructed against an explicit registry and injected into the publisher
// and HTTP layer rather than registered as process globals, so tests can
// build a fresh set per case.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the set of counters and histograms shared by all
// concurrently-served requests.
type Metrics struct {
	EventsReceived  *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
	Errors          *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates the gateway's instruments on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		EventsReceived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "health_events_received_total",
				Help: "Total number of health events received",
			},
			[]string{"event_type", "source"},
		),
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "health_events_published_total",
				Help: "Total number of health events published to Kafka",
			},
			[]string{"topic", "event_type"},
		),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "health_events_errors_total",
				Help: "Total number of errors processing health events",
			},
			[]string{"error_type"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),
		registry: registry,
	}
}

// Handler serves the text exposition of this metric set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
