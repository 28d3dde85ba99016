// Package metrics exposes Prometheus metrics for the rate limit decision
// service: per-scope decision counts and latency, store and catalog error
// counts, and contention on the sliding-window counter.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every metric registered for one running service instance.
type Collector struct {
	registry *prometheus.Registry

	decisionsTotal   *prometheus.CounterVec
	decisionDuration *prometheus.HistogramVec
	storeErrors      *prometheus.CounterVec
	storeContention  *prometheus.CounterVec
	catalogErrors    *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with registry.
// If registry is nil, a fresh prometheus.Registry is used.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		decisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "throttlegate",
			Name:      "decisions_total",
			Help:      "Total number of rate limit decisions by outcome and deciding scope.",
		}, []string{"outcome", "scope"}),
		decisionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "throttlegate",
			Name:      "decision_duration_seconds",
			Help:      "End-to-end duration of a rate limit decision.",
			Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"outcome"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "throttlegate",
			Name:      "store_errors_total",
			Help:      "Total number of counting store errors, excluding contention.",
		}, []string{"backend"}),
		storeContention: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "throttlegate",
			Name:      "store_contention_total",
			Help:      "Total number of counter keys that exhausted their retry budget.",
		}, []string{"backend"}),
		catalogErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "throttlegate",
			Name:      "catalog_errors_total",
			Help:      "Total number of catalog adapter errors.",
		}, []string{"backend"}),
	}

	registry.MustRegister(
		c.decisionsTotal,
		c.decisionDuration,
		c.storeErrors,
		c.storeContention,
		c.catalogErrors,
	)

	return c
}

// Registry returns the underlying Prometheus registry, for wiring into the
// /metrics HTTP handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordDecision records one completed Decide call. The server passes outcome
// "allowed" or "denied" and, as scope, the label of the effective limit that
// decided it (for example "GLOBAL" or "PREMIUM_TIER"), or "unknown". Failed
// Decide calls are not recorded here.
func (c *Collector) RecordDecision(outcome, scope string, duration time.Duration) {
	c.decisionsTotal.WithLabelValues(outcome, scope).Inc()
	c.decisionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordStoreError records a non-conflict counting store failure.
func (c *Collector) RecordStoreError(backend string) {
	c.storeErrors.WithLabelValues(backend).Inc()
}

// RecordStoreContention records a counter key that exhausted its retry budget.
func (c *Collector) RecordStoreContention(backend string) {
	c.storeContention.WithLabelValues(backend).Inc()
}

// RecordCatalogError records a catalog adapter failure.
func (c *Collector) RecordCatalogError(backend string) {
	c.catalogErrors.WithLabelValues(backend).Inc()
}
