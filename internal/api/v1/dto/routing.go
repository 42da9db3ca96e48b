package dto

import (
	"strings"

	"github.com/samber/lo"

	"media-transcriber/internal/api/errors"
	"media-transcriber/internal/app/api/provider"
)

// UpdateRoutingRequest replaces the routing configuration. Omitted fields
// keep their current value.
type UpdateRoutingRequest struct {
	PrimaryProvider     *string   `json:"primary_provider"`
	FallbackProviders   *[]string `json:"fallback_providers"`
	ConfidenceThreshold *float64  `json:"confidence_threshold" binding:"omitempty,gte=0,lte=1"`
}

// Validate rejects a blank primary provider.
func (r *UpdateRoutingRequest) Validate() error {
	if r.PrimaryProvider != nil && strings.TrimSpace(*r.PrimaryProvider) == "" {
		return errors.NewValidationError("Invalid routing request", map[string]string{
			"primary_provider": "must not be blank",
		})
	}
	return nil
}

// Apply merges the request into current.
func (r *UpdateRoutingRequest) Apply(current provider.RoutingConfig) provider.RoutingConfig {
	next := current
	if r.PrimaryProvider != nil {
		next.Primary = strings.TrimSpace(*r.PrimaryProvider)
	}
	if r.FallbackProviders != nil {
		next.Fallbacks = lo.Compact(lo.Map(*r.FallbackProviders, func(s string, _ int) string {
			return strings.TrimSpace(s)
		}))
	}
	if r.ConfidenceThreshold != nil {
		next.ConfidenceThreshold = *r.ConfidenceThreshold
	}
	return next
}

// RoutingResponse reports the routing configuration and any chain entries
// that name no registered provider.
type RoutingResponse struct {
	provider.RoutingConfig
	Chain        []string `json:"chain"`
	Unregistered []string `json:"unregistered,omitempty"`
}
