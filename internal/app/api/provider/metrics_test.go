package provider

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestProviderMetricsRecordsOutcomes(t *testing.T) {
	m := NewProviderMetrics()

	m.RecordSuccess("faster-whisper", 1000, 0.8)
	m.RecordSuccess("faster-whisper", 2000, 0.6)
	m.RecordFailure("faster-whisper", FailureLowConfidence)

	stats := m.GetProviderMetrics("faster-whisper")
	assert.Equal(t, int64(3), stats.TotalAttempts)
	assert.Equal(t, int64(2), stats.Accepted)
	assert.Equal(t, int64(1), stats.Skipped)
	assert.InDelta(t, 2.0/3.0, stats.AcceptRate, 1e-9)
	assert.InDelta(t, 1200, stats.AverageLatencyMs, 1e-9)
	assert.InDelta(t, 0.7, stats.AverageConfidence, 1e-9)
	assert.Equal(t, int64(1), stats.FailureBreakdown[FailureLowConfidence])
}

func TestProviderMetricsUnhealthyAfterRepeatedSkips(t *testing.T) {
	m := NewProviderMetrics()
	for i := 0; i < 10; i++ {
		m.RecordFailure("gemini-hybrid", FailureTranscription)
	}
	assert.False(t, m.GetProviderMetrics("gemini-hybrid").IsHealthy)
	assert.True(t, m.GetProviderMetrics("never-seen").IsHealthy)
}

func TestProviderMetricsOverall(t *testing.T) {
	m := NewProviderMetrics()
	for i := 0; i < 5; i++ {
		m.RecordSuccess("fast", 100, 0.9)
		m.RecordSuccess("slow", 5000, 0.9)
	}
	m.RecordFailure("slow", FailureTranscription)

	overall := m.GetOverallMetrics()
	assert.Equal(t, 2, overall.TotalProviders)
	assert.Equal(t, int64(11), overall.TotalAttempts)
	assert.Equal(t, "fast", overall.FastestProvider)
	assert.Equal(t, "fast", overall.MostReliableProvider)
	assert.Equal(t, []string{"fast", "slow"}, m.GetProviderNames())

	m.ResetStats()
	assert.Empty(t, m.GetProviderNames())
}

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.RecordSuccess("distil-whisper-pt", 250, 0.87)
	m.RecordFailure("faster-whisper", FailureInitialization)
	m.RecordFailure("faster-whisper", FailureInitialization)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("distil-whisper-pt", "accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.attempts.WithLabelValues("faster-whisper", FailureInitialization)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.attempts))
}
