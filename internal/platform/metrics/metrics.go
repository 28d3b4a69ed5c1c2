// Package metrics holds all Prometheus instruments for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	LoginsTotal             *prometheus.CounterVec
	TelemetryWritesTotal    *prometheus.CounterVec
	SnapshotDuration        prometheus.Histogram
	SnapshotReadLatency     *prometheus.HistogramVec
	RememberedTokensEvicted prometheus.Counter
	RequestDuration         *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		LoginsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "carelink_logins_total",
			Help: "Login attempts by outcome (success, failure).",
		}, []string{"outcome"}),
		TelemetryWritesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "carelink_telemetry_writes_total",
			Help: "Telemetry records written by kind.",
		}, []string{"kind"}),
		SnapshotDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "carelink_snapshot_duration_seconds",
			Help:    "End-to-end latency of adult snapshot assembly.",
			Buckets: prometheus.DefBuckets,
		}),
		SnapshotReadLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carelink_snapshot_read_latency_seconds",
			Help:    "Latency of each fan-out read inside snapshot assembly.",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"collection"}),
		RememberedTokensEvicted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "carelink_remembered_tokens_evicted_total",
			Help: "Remembered device tokens evicted by the per-account cap.",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carelink_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveLogin records one login attempt.
func (m *Metrics) ObserveLogin(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}

// ObserveTelemetryWrite records one persisted telemetry row.
func (m *Metrics) ObserveTelemetryWrite(kind string) {
	m.TelemetryWritesTotal.WithLabelValues(kind).Inc()
}

// ObserveSnapshot records the total snapshot latency.
func (m *Metrics) ObserveSnapshot(d time.Duration) {
	m.SnapshotDuration.Observe(d.Seconds())
}

// ObserveSnapshotRead records one fan-out read latency.
func (m *Metrics) ObserveSnapshotRead(collection string, d time.Duration) {
	m.SnapshotReadLatency.WithLabelValues(collection).Observe(d.Seconds())
}
