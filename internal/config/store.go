package config

import (
	"strings"
	"sync"

	"media-transcriber/internal/app/api/provider"
	"media-transcriber/internal/app/errors"
)

// Store holds the live settings. It implements provider.RoutingSource, so
// routing changes apply to the next transcription.
type Store struct {
	mu       sync.RWMutex
	settings *Settings
}

// NewStore wraps settings. The store keeps its own copy.
func NewStore(settings *Settings) *Store {
	if settings == nil {
		settings = Default()
	}
	return &Store{settings: settings.Clone()}
}

// Routing implements provider.RoutingSource.
func (s *Store) Routing() provider.RoutingConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Routing()
}

// Settings returns a deep copy of the current settings.
func (s *Store) Settings() *Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

// SetRouting replaces the whole routing configuration.
func (s *Store) SetRouting(routing provider.RoutingConfig) error {
	_, err := s.UpdateRouting(func(provider.RoutingConfig) provider.RoutingConfig {
		return routing
	})
	return err
}

// UpdateRouting applies fn to the current routing and stores the result
// under one lock, so concurrent partial updates do not overwrite each other.
// An invalid result leaves the store unchanged.
func (s *Store) UpdateRouting(fn func(provider.RoutingConfig) provider.RoutingConfig) (provider.RoutingConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.settings.Routing())
	primary := strings.TrimSpace(next.Primary)
	if primary == "" {
		return s.settings.Routing(), errors.RequiredField("primary_provider")
	}
	if err := checkThreshold(next.ConfidenceThreshold); err != nil {
		return s.settings.Routing(), err
	}

	s.settings.PrimaryProvider = primary
	s.settings.FallbackProviders = ParseProviderList(strings.Join(next.Fallbacks, ","))
	s.settings.ConfidenceThreshold = next.ConfidenceThreshold
	return s.settings.Routing(), nil
}

// SetPrimaryProvider changes the first provider of the chain.
func (s *Store) SetPrimaryProvider(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.RequiredField("primary_provider")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.PrimaryProvider = name
	return nil
}

// SetFallbackProviders replaces the fallback list. Blank names are dropped.
func (s *Store) SetFallbackProviders(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.FallbackProviders = ParseProviderList(strings.Join(names, ","))
}

// SetConfidenceThreshold changes the acceptance threshold.
func (s *Store) SetConfidenceThreshold(threshold float64) error {
	if err := checkThreshold(threshold); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.ConfidenceThreshold = threshold
	return nil
}

func checkThreshold(threshold float64) error {
	if threshold < 0 || threshold > 1 {
		return errors.OutOfRange("confidence_threshold", 0, 1)
	}
	return nil
}
