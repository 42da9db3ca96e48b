package provider

import (
	"sort"
	"sync"
	"time"
)

// ProviderStats holds the outcomes recorded for one provider.
type ProviderStats struct {
	Provider          string           `json:"provider"`
	TotalAttempts     int64            `json:"total_attempts"`
	Accepted          int64            `json:"accepted"`
	Skipped           int64            `json:"skipped"`
	AcceptRate        float64          `json:"accept_rate"`
	AverageLatencyMs  float64          `json:"average_latency_ms"`
	AverageConfidence float64          `json:"average_confidence"`
	LastUsed          int64            `json:"last_used_timestamp"`
	IsHealthy         bool             `json:"is_healthy"`
	FailureBreakdown  map[string]int64 `json:"failure_breakdown"`
}

// OverallStats aggregates ProviderStats across providers.
type OverallStats struct {
	TotalProviders       int                      `json:"total_providers"`
	TotalAttempts        int64                    `json:"total_attempts"`
	Accepted             int64                    `json:"accepted"`
	OverallAcceptRate    float64                  `json:"overall_accept_rate"`
	FastestProvider      string                   `json:"fastest_provider"`
	MostReliableProvider string                   `json:"most_reliable_provider"`
	ProviderStats        map[string]ProviderStats `json:"provider_stats"`
}

// DefaultProviderMetrics keeps ProviderStats in memory.
type DefaultProviderMetrics struct {
	mu            sync.RWMutex
	providerStats map[string]*ProviderStats
}

// NewProviderMetrics creates a new provider metrics instance
func NewProviderMetrics() *DefaultProviderMetrics {
	return &DefaultProviderMetrics{
		providerStats: make(map[string]*ProviderStats),
	}
}

// RecordSuccess records an accepted result.
func (m *DefaultProviderMetrics) RecordSuccess(provider string, latencyMs int64, confidence float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.getOrCreateStats(provider)
	stats.TotalAttempts++
	stats.Accepted++
	stats.LastUsed = time.Now().Unix()
	stats.IsHealthy = true

	// Weighted average favoring recent results
	if stats.Accepted == 1 {
		stats.AverageLatencyMs = float64(latencyMs)
	} else {
		stats.AverageLatencyMs = (stats.AverageLatencyMs * 0.8) + (float64(latencyMs) * 0.2)
	}
	stats.AverageConfidence += (confidence - stats.AverageConfidence) / float64(stats.Accepted)

	stats.AcceptRate = float64(stats.Accepted) / float64(stats.TotalAttempts)
}

// RecordFailure records a skipped candidate.
func (m *DefaultProviderMetrics) RecordFailure(provider string, failureType string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.getOrCreateStats(provider)
	stats.TotalAttempts++
	stats.Skipped++
	stats.LastUsed = time.Now().Unix()
	stats.FailureBreakdown[failureType]++

	stats.AcceptRate = float64(stats.Accepted) / float64(stats.TotalAttempts)

	if stats.TotalAttempts >= 10 && stats.AcceptRate < 0.5 {
		stats.IsHealthy = false
	}
}

// GetProviderMetrics returns a copy of the stats for provider.
func (m *DefaultProviderMetrics) GetProviderMetrics(provider string) ProviderStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats, ok := m.providerStats[provider]
	if !ok {
		return ProviderStats{Provider: provider, IsHealthy: true, FailureBreakdown: map[string]int64{}}
	}
	return copyStats(stats)
}

// GetOverallMetrics returns overall metrics across all providers
func (m *DefaultProviderMetrics) GetOverallMetrics() OverallStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	overall := OverallStats{
		TotalProviders: len(m.providerStats),
		ProviderStats:  make(map[string]ProviderStats, len(m.providerStats)),
	}

	var fastestLatency, highestReliability float64
	for name, stats := range m.providerStats {
		overall.TotalAttempts += stats.TotalAttempts
		overall.Accepted += stats.Accepted
		overall.ProviderStats[name] = copyStats(stats)

		if stats.AverageLatencyMs > 0 && (fastestLatency == 0 || stats.AverageLatencyMs < fastestLatency) {
			fastestLatency = stats.AverageLatencyMs
			overall.FastestProvider = name
		}
		// Only providers with meaningful volume compete on reliability
		if stats.TotalAttempts >= 5 && stats.AcceptRate > highestReliability {
			highestReliability = stats.AcceptRate
			overall.MostReliableProvider = name
		}
	}

	if overall.TotalAttempts > 0 {
		overall.OverallAcceptRate = float64(overall.Accepted) / float64(overall.TotalAttempts)
	}
	return overall
}

// GetProviderNames returns the providers with recorded metrics, sorted.
func (m *DefaultProviderMetrics) GetProviderNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.providerStats))
	for name := range m.providerStats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResetStats drops all recorded stats.
func (m *DefaultProviderMetrics) ResetStats() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.providerStats = make(map[string]*ProviderStats)
}

// getOrCreateStats must be called with the write lock held.
func (m *DefaultProviderMetrics) getOrCreateStats(provider string) *ProviderStats {
	stats, exists := m.providerStats[provider]
	if !exists {
		stats = &ProviderStats{
			Provider:         provider,
			IsHealthy:        true,
			FailureBreakdown: make(map[string]int64),
		}
		m.providerStats[provider] = stats
	}
	return stats
}

func copyStats(stats *ProviderStats) ProviderStats {
	c := *stats
	c.FailureBreakdown = make(map[string]int64, len(stats.FailureBreakdown))
	for k, v := range stats.FailureBreakdown {
		c.FailureBreakdown[k] = v
	}
	return c
}
