package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"media-transcriber/internal/app/common"
)

// registration is one registry entry. A hot swap replaces the whole entry so
// an initialization still running against the old instance cannot mark the
// new one.
type registration struct {
	provider Provider

	initMu      sync.Mutex
	initialized bool
}

func (r *registration) isInitialized() bool {
	r.initMu.Lock()
	defer r.initMu.Unlock()
	return r.initialized
}

// ManagerStats summarizes the requests seen by a Manager.
type ManagerStats struct {
	TotalRequests      int64            `json:"total_requests"`
	SuccessfulRequests int64            `json:"successful_requests"`
	FailedRequests     int64            `json:"failed_requests"`
	FallbacksUsed      int64            `json:"fallbacks_used"`
	ProviderUsage      map[string]int64 `json:"provider_usage"`
	SkipsByProvider    map[string]int64 `json:"skips_by_provider"`
}

// Manager holds named providers and routes requests through the configured
// fallback chain. The first result without an error and with confidence at or
// above the threshold is returned.
type Manager struct {
	mu      sync.RWMutex
	entries map[string]*registration
	order   []string

	routing RoutingSource
	logger  *zap.Logger
	metrics []ProviderMetrics

	statsMu sync.Mutex
	stats   ManagerStats
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) { m.logger = common.OrNop(logger) }
}

// WithMetrics adds metrics sinks notified about every attempt.
func WithMetrics(metrics ...ProviderMetrics) ManagerOption {
	return func(m *Manager) { m.metrics = append(m.metrics, metrics...) }
}

// NewManager creates a manager that reads its chain from routing.
func NewManager(routing RoutingSource, opts ...ManagerOption) *Manager {
	m := &Manager{
		entries: make(map[string]*registration),
		routing: routing,
		logger:  zap.NewNop(),
		stats: ManagerStats{
			ProviderUsage:   make(map[string]int64),
			SkipsByProvider: make(map[string]int64),
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds p under name. Registering an existing name replaces the
// instance, keeps its position and resets its initialized flag.
func (m *Manager) Register(name string, p Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[name]; exists {
		m.logger.Warn("Provider already registered, overwriting", zap.String("provider", name))
	} else {
		m.order = append(m.order, name)
	}
	m.entries[name] = &registration{provider: p}
	m.logger.Info("Provider registered", zap.String("provider", name))
}

func (m *Manager) entry(name string) (*registration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[name]
	return e, ok
}

// Names returns registered names in registration order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// Provider returns the registered instance for name.
func (m *Manager) Provider(name string) (Provider, bool) {
	e, ok := m.entry(name)
	if !ok {
		return nil, false
	}
	return e.provider, true
}

// EnsureInitialized initializes the named provider once. A failed attempt is
// not remembered and will be retried on the next call.
func (m *Manager) EnsureInitialized(ctx context.Context, name string) bool {
	e, ok := m.entry(name)
	if !ok {
		m.logger.Error("Provider not registered", zap.String("provider", name))
		return false
	}

	return m.initialize(ctx, name, e)
}

func (m *Manager) initialize(ctx context.Context, name string, e *registration) bool {
	e.initMu.Lock()
	defer e.initMu.Unlock()
	if e.initialized {
		return true
	}

	m.logger.Info("Initializing provider", zap.String("provider", name))
	if err := e.provider.Initialize(ctx); err != nil {
		m.logger.Error("Failed to initialize provider", zap.String("provider", name), zap.Error(err))
		return false
	}
	e.initialized = true
	m.logger.Info("Provider initialized", zap.String("provider", name))
	return true
}

// ready returns the current entry for name once it is initialized. A hot swap
// that lands while an older instance initializes restarts the check against
// the new entry.
func (m *Manager) ready(ctx context.Context, name string) (*registration, string) {
	e, ok := m.entry(name)
	for ok {
		if !m.initialize(ctx, name, e) {
			return nil, FailureInitialization
		}
		current, still := m.entry(name)
		if !still {
			break
		}
		if current == e {
			return e, ""
		}
		m.logger.Debug("Provider replaced during initialization, retrying", zap.String("provider", name))
		e = current
	}
	return nil, FailureNotRegistered
}

// Transcribe walks [primary] ++ fallbacks and returns the first acceptable
// result. When every candidate is skipped it returns ExhaustedResult.
func (m *Manager) Transcribe(ctx context.Context, filePath string, language string) *TranscriptionResult {
	routing := m.routing.Routing()
	chain := routing.Chain()

	m.statsMu.Lock()
	m.stats.TotalRequests++
	m.statsMu.Unlock()

	for i, name := range chain {
		if err := ctx.Err(); err != nil {
			m.logger.Warn("Transcription cancelled", zap.String("file", filePath), zap.Error(err))
			m.recordExhausted()
			result := ExhaustedResult(language)
			result.Error = fmt.Sprintf("%s (%v)", ExhaustedMessage, err)
			return result
		}

		e, failure := m.ready(ctx, name)
		switch failure {
		case FailureNotRegistered:
			m.logger.Warn("Provider not registered, skipping", zap.String("provider", name))
			m.recordSkip(name, failure)
			continue
		case FailureInitialization:
			m.logger.Warn("Provider unavailable, skipping", zap.String("provider", name))
			m.recordSkip(name, failure)
			continue
		}

		m.logger.Info("Attempting transcription", zap.String("provider", name), zap.String("file", filePath))
		result := e.provider.Transcribe(ctx, filePath, language)
		if result == nil {
			m.logger.Error("Provider returned no result", zap.String("provider", name))
			m.recordSkip(name, FailureTranscription)
			continue
		}

		if result.Failed() {
			m.logger.Warn("Provider failed",
				zap.String("provider", name),
				zap.String("error", result.Error))
			m.recordSkip(name, FailureTranscription)
			continue
		}

		if !routing.Accepts(result.Confidence) {
			m.logger.Warn("Provider confidence below threshold",
				zap.String("provider", name),
				zap.Float64("confidence", result.Confidence),
				zap.Float64("threshold", routing.ConfidenceThreshold))
			m.recordSkip(name, FailureLowConfidence)
			continue
		}

		m.logger.Info("Transcription accepted",
			zap.String("provider", name),
			zap.String("model", result.ModelUsed),
			zap.Float64("confidence", result.Confidence),
			zap.Duration("processing_time", result.ProcessingTime),
			zap.Bool("from_cache", result.FromCache))
		m.recordAccepted(name, i > 0, result)
		return result
	}

	m.logger.Error("All transcription providers failed or had low confidence",
		zap.String("file", filePath),
		zap.Strings("chain", chain))
	m.recordExhausted()
	return ExhaustedResult(language)
}

// GetStatus returns the status map of one provider.
func (m *Manager) GetStatus(name string) (map[string]interface{}, bool) {
	e, ok := m.entry(name)
	if !ok {
		m.logger.Warn("Status requested for unregistered provider", zap.String("provider", name))
		return nil, false
	}
	return e.provider.Status(), true
}

// GetAllStatus returns the status map of every registered provider.
func (m *Manager) GetAllStatus() map[string]map[string]interface{} {
	m.mu.RLock()
	entries := make(map[string]*registration, len(m.entries))
	for name, e := range m.entries {
		entries[name] = e
	}
	m.mu.RUnlock()

	all := make(map[string]map[string]interface{}, len(entries))
	for name, e := range entries {
		all[name] = e.provider.Status()
	}
	return all
}

// IsInitialized reports whether the manager has initialized name.
func (m *Manager) IsInitialized(name string) bool {
	e, ok := m.entry(name)
	return ok && e.isInitialized()
}

// ClearAllCaches clears the cache of every registered provider, initialized
// or not.
func (m *Manager) ClearAllCaches() {
	m.mu.RLock()
	providers := make([]Provider, 0, len(m.entries))
	for _, name := range m.order {
		providers = append(providers, m.entries[name].provider)
	}
	m.mu.RUnlock()

	for _, p := range providers {
		p.ClearCache()
	}
	m.logger.Info("All provider caches cleared", zap.Int("providers", len(providers)))
}

// Shutdown clears all caches. Registrations and initialization state are kept.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Shutting down transcription manager")
	m.ClearAllCaches()
	return ctx.Err()
}

// GetStats returns a copy of the request counters.
func (m *Manager) GetStats() ManagerStats {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()

	stats := m.stats
	stats.ProviderUsage = make(map[string]int64, len(m.stats.ProviderUsage))
	for k, v := range m.stats.ProviderUsage {
		stats.ProviderUsage[k] = v
	}
	stats.SkipsByProvider = make(map[string]int64, len(m.stats.SkipsByProvider))
	for k, v := range m.stats.SkipsByProvider {
		stats.SkipsByProvider[k] = v
	}
	return stats
}

func (m *Manager) recordSkip(name, failureType string) {
	m.statsMu.Lock()
	m.stats.SkipsByProvider[name]++
	m.statsMu.Unlock()

	for _, metrics := range m.metrics {
		metrics.RecordFailure(name, failureType)
	}
}

func (m *Manager) recordAccepted(name string, fallback bool, result *TranscriptionResult) {
	m.statsMu.Lock()
	m.stats.SuccessfulRequests++
	m.stats.ProviderUsage[name]++
	if fallback {
		m.stats.FallbacksUsed++
	}
	m.statsMu.Unlock()

	latency := result.ProcessingTime.Round(time.Millisecond).Milliseconds()
	for _, metrics := range m.metrics {
		metrics.RecordSuccess(name, latency, result.Confidence)
	}
}

func (m *Manager) recordExhausted() {
	m.statsMu.Lock()
	m.stats.FailedRequests++
	m.statsMu.Unlock()
}
