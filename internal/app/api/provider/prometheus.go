package provider

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "media_transcriber"

// PrometheusMetrics exports manager outcomes as Prometheus collectors.
type PrometheusMetrics struct {
	attempts   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	confidence *prometheus.HistogramVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "provider_attempts_total",
			Help:      "Transcription attempts per provider and outcome.",
		}, []string{"provider", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "provider_latency_seconds",
			Help:      "Processing time of accepted transcriptions.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14), // 50ms → ~7min
		}, []string{"provider"}),
		confidence: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "provider_confidence",
			Help:      "Confidence of accepted transcriptions.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}, []string{"provider"}),
	}
	if reg != nil {
		reg.MustRegister(m.attempts, m.latency, m.confidence)
	}
	return m
}

// RecordSuccess implements ProviderMetrics.
func (m *PrometheusMetrics) RecordSuccess(provider string, latencyMs int64, confidence float64) {
	m.attempts.WithLabelValues(provider, "accepted").Inc()
	m.latency.WithLabelValues(provider).Observe(float64(latencyMs) / 1000)
	m.confidence.WithLabelValues(provider).Observe(confidence)
}

// RecordFailure implements ProviderMetrics.
func (m *PrometheusMetrics) RecordFailure(provider string, failureType string) {
	m.attempts.WithLabelValues(provider, failureType).Inc()
}
