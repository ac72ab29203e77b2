// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "compliance_review"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Analysis metrics
	AnalysesTotal    *prometheus.CounterVec
	AnalysesFailed   *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec

	// Alert metrics
	AlertsByLevel      *prometheus.CounterVec
	ViolationsDetected prometheus.Counter

	// Provider call metrics
	ProviderCalls   *prometheus.CounterVec
	ProviderErrors  *prometheus.CounterVec
	ProviderLatency *prometheus.HistogramVec

	// Degraded-feature metrics
	FingerprintSkipped *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		AnalysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of analyses started",
		}, []string{"source"}),
		AnalysesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_failed_total",
			Help:      "Total number of failed analyses",
		}, []string{"source", "kind"}),
		AnalysisDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"source"}),

		AlertsByLevel: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Total number of alerts produced, by level",
		}, []string{"level"}),
		ViolationsDetected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violations_detected_total",
			Help:      "Total number of violations detected",
		}),

		ProviderCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Total number of external provider calls",
		}, []string{"provider"}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Total number of external provider call failures",
		}, []string{"provider"}),
		ProviderLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_latency_seconds",
			Help:      "External provider call latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"provider"}),

		FingerprintSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fingerprint_skipped_total",
			Help:      "Total number of analyses where fingerprinting was skipped",
		}, []string{"reason"}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordAnalysisStart records an analysis starting for a source.
func (m *Metrics) RecordAnalysisStart(source string) {
	m.AnalysesTotal.WithLabelValues(source).Inc()
}

// RecordAnalysisEnd records an analysis finishing.
func (m *Metrics) RecordAnalysisEnd(source string, durationSeconds float64) {
	m.AnalysisDuration.WithLabelValues(source).Observe(durationSeconds)
}

// RecordAnalysisFailed records an analysis failing with an error kind.
func (m *Metrics) RecordAnalysisFailed(source, kind string) {
	m.AnalysesFailed.WithLabelValues(source, kind).Inc()
}

// RecordAlert records a produced alert by level.
func (m *Metrics) RecordAlert(level string) {
	m.AlertsByLevel.WithLabelValues(level).Inc()
}

// RecordViolations records the number of violations one detection produced.
func (m *Metrics) RecordViolations(n int) {
	m.ViolationsDetected.Add(float64(n))
}

// RecordProviderCall records one provider call with its outcome and latency.
func (m *Metrics) RecordProviderCall(provider string, err error, latencySeconds float64) {
	m.ProviderCalls.WithLabelValues(provider).Inc()
	m.ProviderLatency.WithLabelValues(provider).Observe(latencySeconds)
	if err != nil {
		m.ProviderErrors.WithLabelValues(provider).Inc()
	}
}

// RecordFingerprintSkipped records fingerprinting being skipped.
func (m *Metrics) RecordFingerprintSkipped(reason string) {
	m.FingerprintSkipped.WithLabelValues(reason).Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic).Inc()
	}
}
