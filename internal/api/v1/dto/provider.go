package dto

import "media-transcriber/internal/app/api/provider"

// Chain roles reported for a provider.
const (
	RolePrimary  = "primary"
	RoleFallback = "fallback"
	RoleNone     = "unused"
)

// ProviderResponse represents a provider in API responses
type ProviderResponse struct {
	Name        string                 `json:"name"`
	Type        string                 `json:"type,omitempty"`
	Role        string                 `json:"role"`
	Initialized bool                   `json:"initialized"`
	CacheSize   int                    `json:"cache_size"`
	Status      map[string]interface{} `json:"status"`
}

// ProviderListResponse lists the registered providers in registration order.
type ProviderListResponse struct {
	Providers []ProviderResponse     `json:"providers"`
	Routing   provider.RoutingConfig `json:"routing"`
}

// InitializeProviderResponse reports an explicit initialization attempt.
type InitializeProviderResponse struct {
	Name        string `json:"name"`
	Initialized bool   `json:"initialized"`
}

// ClearCacheResponse reports a cache flush.
type ClearCacheResponse struct {
	Cleared []string `json:"cleared"`
}

// RoleOf places name in the routing chain.
func RoleOf(name string, routing provider.RoutingConfig) string {
	if name == routing.Primary {
		return RolePrimary
	}
	for _, f := range routing.Fallbacks {
		if f == name {
			return RoleFallback
		}
	}
	return RoleNone
}

// CacheSizeOf reads the cache_size status key, which providers report as int.
func CacheSizeOf(status map[string]interface{}) int {
	switch v := status[provider.StatusCacheSize].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
