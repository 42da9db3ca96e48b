package services

import (
	"context"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"media-transcriber/internal/api/v1/dto"
	"media-transcriber/internal/app/api/provider"
	"media-transcriber/internal/app/common"
)

// RoutingServiceImpl implements RoutingService
type RoutingServiceImpl struct {
	store    RoutingStore
	registry ProviderRegistry
	logger   *zap.Logger
}

// NewRoutingService creates a routing service
func NewRoutingService(store RoutingStore, registry ProviderRegistry, logger *zap.Logger) RoutingService {
	return &RoutingServiceImpl{
		store:    store,
		registry: registry,
		logger:   common.OrNop(logger),
	}
}

func (s *RoutingServiceImpl) GetRouting(ctx context.Context) (*dto.RoutingResponse, error) {
	return s.response(s.store.Routing()), nil
}

// UpdateRouting applies the change. Names that are not registered are
// accepted; the manager skips them at request time.
func (s *RoutingServiceImpl) UpdateRouting(ctx context.Context, req *dto.UpdateRoutingRequest) (*dto.RoutingResponse, error) {
	updated, err := s.store.UpdateRouting(req.Apply)
	if err != nil {
		return nil, err
	}

	resp := s.response(updated)
	s.logger.Info("Routing updated",
		zap.String("primary", resp.Primary),
		zap.Strings("fallbacks", resp.Fallbacks),
		zap.Float64("threshold", resp.ConfidenceThreshold),
		zap.Strings("unregistered", resp.Unregistered))
	return resp, nil
}

func (s *RoutingServiceImpl) response(routing provider.RoutingConfig) *dto.RoutingResponse {
	chain := routing.Chain()
	registered := s.registry.Names()
	return &dto.RoutingResponse{
		RoutingConfig: routing,
		Chain:         chain,
		Unregistered:  lo.Uniq(lo.Without(chain, registered...)),
	}
}
