package services

import (
	"context"

	"media-transcriber/internal/api/v1/dto"
	"media-transcriber/internal/app/api/provider"
	"media-transcriber/internal/app/errors"
)

// ProviderServiceImpl implements ProviderService
type ProviderServiceImpl struct {
	registry ProviderRegistry
	routing  provider.RoutingSource
	types    map[string]string
}

// NewProviderService creates a provider service. types maps provider names
// to their configured type and may be nil.
func NewProviderService(registry ProviderRegistry, routing provider.RoutingSource, types map[string]string) ProviderService {
	return &ProviderServiceImpl{
		registry: registry,
		routing:  routing,
		types:    types,
	}
}

func (s *ProviderServiceImpl) ListProviders(ctx context.Context) (*dto.ProviderListResponse, error) {
	routing := s.routing.Routing()
	names := s.registry.Names()

	providers := make([]dto.ProviderResponse, 0, len(names))
	for _, name := range names {
		if resp, ok := s.describe(name, routing); ok {
			providers = append(providers, *resp)
		}
	}
	return &dto.ProviderListResponse{Providers: providers, Routing: routing}, nil
}

func (s *ProviderServiceImpl) GetProvider(ctx context.Context, name string) (*dto.ProviderResponse, error) {
	resp, ok := s.describe(name, s.routing.Routing())
	if !ok {
		return nil, errors.Wrapf(errors.ErrProviderNotFound, "%s", name)
	}
	return resp, nil
}

// InitializeProvider runs initialization through the manager so the result
// is tracked like a chain attempt.
func (s *ProviderServiceImpl) InitializeProvider(ctx context.Context, name string) (*dto.InitializeProviderResponse, error) {
	if _, ok := s.registry.GetStatus(name); !ok {
		return nil, errors.Wrapf(errors.ErrProviderNotFound, "%s", name)
	}
	return &dto.InitializeProviderResponse{
		Name:        name,
		Initialized: s.registry.EnsureInitialized(ctx, name),
	}, nil
}

func (s *ProviderServiceImpl) ClearCaches(ctx context.Context) (*dto.ClearCacheResponse, error) {
	s.registry.ClearAllCaches()
	return &dto.ClearCacheResponse{Cleared: s.registry.Names()}, nil
}

func (s *ProviderServiceImpl) describe(name string, routing provider.RoutingConfig) (*dto.ProviderResponse, bool) {
	status, ok := s.registry.GetStatus(name)
	if !ok {
		return nil, false
	}
	return &dto.ProviderResponse{
		Name:        name,
		Type:        s.types[name],
		Role:        dto.RoleOf(name, routing),
		Initialized: s.registry.IsInitialized(name),
		CacheSize:   dto.CacheSizeOf(status),
		Status:      status,
	}, true
}
