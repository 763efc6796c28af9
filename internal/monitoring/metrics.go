// Package monitoring exposes prometheus metrics for the serve command.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup outcomes used as metric label values.
const (
	OutcomeOpen    = "open"
	OutcomeClosed  = "closed"
	OutcomeUnknown = "unknown"
	OutcomeError   = "error"
)

// Metrics holds the serve-mode collectors on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	lookupsTotal   *prometheus.CounterVec
	lookupDuration prometheus.Histogram
}

// New creates and registers the serve-mode collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brugstatus",
			Name:      "lookups_total",
			Help:      "Status lookups by outcome",
		}, []string{"outcome"}),
		lookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "brugstatus",
			Name:      "lookup_duration_seconds",
			Help:      "Time spent on one fetch-and-interpret cycle",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(
		m.lookupsTotal,
		m.lookupDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveLookup records one completed lookup.
func (m *Metrics) ObserveLookup(outcome string, d time.Duration) {
	m.lookupsTotal.WithLabelValues(outcome).Inc()
	m.lookupDuration.Observe(d.Seconds())
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
