package telemetry

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricAPIRequestsTotal          = "storefront_api_requests_total"
	MetricAPIRequestDurationSeconds = "storefront_api_request_duration_seconds"
	MetricCartMirrorTotal           = "storefront_cart_mirror_total"
)

// Mirror results.
const (
	MirrorOK      = "ok"
	MirrorFailed  = "failed"
	MirrorSkipped = "skipped"
)

// Metrics records client-side counters on a private registry. A nil
// *Metrics is valid and records nothing, so components can take it as an
// optional dependency.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	mirrorTotal     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricAPIRequestsTotal,
			Help: "API requests sent, by method and HTTP status (0 for transport errors).",
		}, []string{"method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricAPIRequestDurationSeconds,
			Help:    "API request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		mirrorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricCartMirrorTotal,
			Help: "Cart mutations mirrored to the server, by operation and result.",
		}, []string{"op", "result"}),
	}
	m.registry.MustRegister(m.requestsTotal, m.requestDuration, m.mirrorTotal)
	return m
}

// ObserveRequest records one finished API request.
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveMirror records the outcome of one cart mirror call.
func (m *Metrics) ObserveMirror(op, result string) {
	if m == nil {
		return
	}
	m.mirrorTotal.WithLabelValues(op, result).Inc()
}

// MirrorCounter exposes the cart mirror counter for inspection.
func (m *Metrics) MirrorCounter() *prometheus.CounterVec {
	if m == nil {
		return nil
	}
	return m.mirrorTotal
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteTextfile dumps all metrics in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
