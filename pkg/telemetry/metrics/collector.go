package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"auriga-hq/tracewire/pkg/config"
)

const (
	namespace = "tracewire"
)

// Collector owns the Prometheus metrics describing the tracing
// pipeline itself.
//
// Metrics:
//   - tracewire_requests_traced_total: Requests that passed through the
//     tracing middleware, by method and correlation ID source
//   - tracewire_request_duration_seconds: Request processing time
//   - tracewire_enrichment_failures_total: Span enrichment attempts
//     that degraded
//   - tracewire_ids_generated_total: Correlation IDs minted locally
//   - tracewire_tracing_ready: Whether the export pipeline is installed
//     (1=ready, 0=disabled)
type Collector struct {
	cfg      config.MetricsConfig
	registry *prometheus.Registry

	requests           *prometheus.CounterVec
	duration           *prometheus.HistogramVec
	enrichmentFailures prometheus.Counter
	idsGenerated       prometheus.Counter
	tracingReady       prometheus.Gauge
}

// NewCollector creates a collector and registers its metrics with the
// given registry. A nil registry gets a fresh private one.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		cfg:      cfg,
		registry: registry,

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_traced_total",
				Help:      "Requests that passed through the tracing middleware",
			},
			[]string{"method", "id_source"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Request processing time in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method"},
		),

		enrichmentFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "enrichment_failures_total",
				Help:      "Span enrichment attempts that failed and degraded",
			},
		),

		idsGenerated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ids_generated_total",
				Help:      "Correlation IDs generated because no inbound header carried one",
			},
		),

		tracingReady: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tracing_ready",
				Help:      "Whether the trace export pipeline is installed (1=ready, 0=disabled)",
			},
		),
	}

	registry.MustRegister(
		c.requests,
		c.duration,
		c.enrichmentFailures,
		c.idsGenerated,
		c.tracingReady,
	)

	return c
}

// RecordRequest records a request that passed through the middleware.
// idSource is "inbound" when the correlation ID arrived on a header,
// "generated" when it was minted locally.
func (c *Collector) RecordRequest(method, idSource string, duration time.Duration) {
	if !c.cfg.MetricsEnabled() {
		return
	}
	c.requests.WithLabelValues(method, idSource).Inc()
	c.duration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordEnrichmentFailure records a span enrichment attempt that failed.
func (c *Collector) RecordEnrichmentFailure() {
	if !c.cfg.MetricsEnabled() {
		return
	}
	c.enrichmentFailures.Inc()
}

// RecordIDGenerated records a locally minted correlation ID.
func (c *Collector) RecordIDGenerated() {
	if !c.cfg.MetricsEnabled() {
		return
	}
	c.idsGenerated.Inc()
}

// SetTracingReady updates the export pipeline state gauge.
func (c *Collector) SetTracingReady(ready bool) {
	if !c.cfg.MetricsEnabled() {
		return
	}
	value := 0.0
	if ready {
		value = 1.0
	}
	c.tracingReady.Set(value)
}

// Registry returns the Prometheus registry backing this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
