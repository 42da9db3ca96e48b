package services

import (
	"context"

	"media-transcriber/internal/api/v1/dto"
	"media-transcriber/internal/app/api/provider"
)

// StatsServiceImpl implements the StatsService interface
type StatsServiceImpl struct {
	registry ProviderRegistry
	metrics  MetricsSource
}

// NewStatsService creates a stats service. metrics may be nil.
func NewStatsService(registry ProviderRegistry, metrics MetricsSource) StatsService {
	return &StatsServiceImpl{registry: registry, metrics: metrics}
}

func (s *StatsServiceImpl) GetStats(ctx context.Context) (*dto.StatsResponse, error) {
	resp := &dto.StatsResponse{Manager: s.registry.GetStats()}
	if s.metrics != nil {
		resp.Providers = s.metrics.GetOverallMetrics()
	} else {
		resp.Providers = provider.OverallStats{ProviderStats: map[string]provider.ProviderStats{}}
	}
	return resp, nil
}
