package services

import (
	"context"
	"io"

	"media-transcriber/internal/api/v1/dto"
	"media-transcriber/internal/app/api/provider"
)

// TranscriptionService runs files through the transcription manager.
type TranscriptionService interface {
	Transcribe(ctx context.Context, filePath string, language string) (*dto.TranscriptionResponse, error)
}

// ProviderService exposes the provider registry.
type ProviderService interface {
	ListProviders(ctx context.Context) (*dto.ProviderListResponse, error)
	GetProvider(ctx context.Context, name string) (*dto.ProviderResponse, error)
	InitializeProvider(ctx context.Context, name string) (*dto.InitializeProviderResponse, error)
	ClearCaches(ctx context.Context) (*dto.ClearCacheResponse, error)
}

// RoutingService reads and changes the fallback chain.
type RoutingService interface {
	GetRouting(ctx context.Context) (*dto.RoutingResponse, error)
	UpdateRouting(ctx context.Context, req *dto.UpdateRoutingRequest) (*dto.RoutingResponse, error)
}

// StatsService reports request counters.
type StatsService interface {
	GetStats(ctx context.Context) (*dto.StatsResponse, error)
}

// HistoryService reads the transcription history.
type HistoryService interface {
	ListHistory(ctx context.Context, limit int) (*dto.HistoryResponse, error)
	ExportHistory(ctx context.Context, limit int, w io.Writer) error
}

// ProviderRegistry is the part of *provider.Manager the services use.
type ProviderRegistry interface {
	Names() []string
	GetStatus(name string) (map[string]interface{}, bool)
	IsInitialized(name string) bool
	EnsureInitialized(ctx context.Context, name string) bool
	ClearAllCaches()
	GetStats() provider.ManagerStats
}

// RoutingStore is satisfied by *config.Store.
type RoutingStore interface {
	provider.RoutingSource
	UpdateRouting(fn func(provider.RoutingConfig) provider.RoutingConfig) (provider.RoutingConfig, error)
}

// MetricsSource is satisfied by *provider.DefaultProviderMetrics.
type MetricsSource interface {
	GetOverallMetrics() provider.OverallStats
}
