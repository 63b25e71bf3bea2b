package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agbru/orbitcalc/internal/orbit"
	"github.com/agbru/orbitcalc/internal/orchestration"
)

const metricsNamespace = "orbitcalc"

// Metrics holds the server's Prometheus collectors. Each instance owns its
// registry, so several servers (or tests) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestsTotal    prometheus.Counter
	requestErrors    prometheus.Counter
	activeRequests   prometheus.Gauge
	requestDuration  prometheus.Histogram
	classifications  *prometheus.CounterVec
	classifyDuration prometheus.Histogram
	sweepDuration    prometheus.Histogram
	fitDuration      prometheus.Histogram
}

var _ orchestration.ClassificationObserver = (*Metrics)(nil)

// NewMetrics creates and registers the collectors, including the Go runtime
// and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests served.",
		}),
		requestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "request_errors_total",
			Help:      "Number of HTTP requests answered with a 4xx or 5xx status.",
		}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_requests",
			Help:      "Number of HTTP requests in flight.",
		}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "classifications_total",
			Help:      "Number of classified parameters by orbit kind.",
		}, []string{"kind"}),
		classifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "classification_duration_seconds",
			Help:      "Time spent classifying a single parameter.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "sweep_duration_seconds",
			Help:      "Time spent classifying a sweep grid.",
			Buckets:   prometheus.ExponentialBuckets(1e-3, 4, 10),
		}),
		fitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "fit_duration_seconds",
			Help:      "Time spent fitting the viewport.",
			Buckets:   prometheus.ExponentialBuckets(1e-3, 4, 10),
		}),
	}

	// Export every kind from the start, even before the first request.
	for _, k := range orbit.Kinds {
		m.classifications.WithLabelValues(kindLabel(k))
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestErrors,
		m.activeRequests,
		m.requestDuration,
		m.classifications,
		m.classifyDuration,
		m.sweepDuration,
		m.fitDuration,
	)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return m
}

// kindLabel turns a kind into a label value ("chaotic_or_undetermined").
func kindLabel(k orbit.Kind) string {
	return strings.ReplaceAll(k.String(), " ", "_")
}

// IncrementActiveRequests marks a request as started.
func (m *Metrics) IncrementActiveRequests() {
	m.activeRequests.Inc()
	m.requestsTotal.Inc()
}

// DecrementActiveRequests marks a request as finished.
func (m *Metrics) DecrementActiveRequests() {
	m.activeRequests.Dec()
}

// ObserveRequest records the latency and status of a finished request.
func (m *Metrics) ObserveRequest(status int, d time.Duration) {
	m.requestDuration.Observe(d.Seconds())
	if status >= http.StatusBadRequest {
		m.requestErrors.Inc()
	}
}

// ObserveClassification counts a classified parameter by kind.
func (m *Metrics) ObserveClassification(_ complex128, result orbit.Classification) {
	m.classifications.WithLabelValues(kindLabel(result.Kind)).Inc()
}

// ObserveClassifyDuration records the time spent on one classification.
func (m *Metrics) ObserveClassifyDuration(d time.Duration) {
	m.classifyDuration.Observe(d.Seconds())
}

// ObserveSweep records the duration of a finished sweep.
func (m *Metrics) ObserveSweep(d time.Duration) {
	m.sweepDuration.Observe(d.Seconds())
}

// ObserveFit records the duration of a viewport fit.
func (m *Metrics) ObserveFit(d time.Duration) {
	m.fitDuration.Observe(d.Seconds())
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WritePrometheus writes the metrics in the Prometheus exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
