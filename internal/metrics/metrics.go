// Package metrics exposes Prometheus instrumentation for GreenTracker.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Analysis outcome labels.
const (
	OutcomeOK               = "ok"
	OutcomeRejected         = "rejected"
	OutcomeExtractionFailed = "extraction_failed"
	OutcomeCallFailed       = "call_failed"
	OutcomeError            = "error"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	// Registrations counts successful user registrations.
	Registrations prometheus.Counter

	// Logins counts successful logins.
	Logins prometheus.Counter

	// Analyses counts analyze requests by outcome.
	Analyses *prometheus.CounterVec

	// HTTPDuration observes request latency by route and status.
	HTTPDuration *prometheus.HistogramVec
}

// New creates a Metrics with its own registry (also carrying the Go
// and process collectors).
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,
		Registrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "greentracker_registrations_total",
			Help: "Number of successful user registrations.",
		}),
		Logins: factory.NewCounter(prometheus.CounterOpts{
			Name: "greentracker_logins_total",
			Help: "Number of successful logins.",
		}),
		Analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "greentracker_analyses_total",
			Help: "Number of analyze requests by outcome.",
		}, []string{"outcome"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "greentracker_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
