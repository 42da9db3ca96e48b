package provider

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// AuthConfig holds credentials and endpoint overrides for a provider.
type AuthConfig struct {
	APIKey  string            `yaml:"api_key,omitempty" json:"-"`
	BaseURL string            `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty" json:"-"`
}

// ProviderSpec is the configuration block of one named provider.
type ProviderSpec struct {
	Type     string                 `yaml:"type" json:"type" validate:"required"`
	Enabled  bool                   `yaml:"enabled" json:"enabled"`
	Settings map[string]interface{} `yaml:"settings,omitempty" json:"settings,omitempty"`
	Auth     AuthConfig             `yaml:"auth,omitempty" json:"auth,omitempty"`
}

// ProviderCreator builds a provider instance from its configuration block.
type ProviderCreator func(name string, spec ProviderSpec, logger *zap.Logger) (Provider, error)

var (
	providerCreators = make(map[string]ProviderCreator)
	registryMutex    sync.RWMutex
)

// RegisterProvider registers a creator for a provider type. Provider packages
// call it from init.
func RegisterProvider(providerType string, creator ProviderCreator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	providerCreators[providerType] = creator
}

// GetProviderCreator returns the creator function for a provider type
func GetProviderCreator(providerType string) (ProviderCreator, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	creator, ok := providerCreators[providerType]
	if !ok {
		return nil, fmt.Errorf("provider type %s not registered", providerType)
	}
	return creator, nil
}

// ListRegisteredProviders returns all registered provider types, sorted.
func ListRegisteredProviders() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	types := make([]string, 0, len(providerCreators))
	for providerType := range providerCreators {
		types = append(types, providerType)
	}
	sort.Strings(types)
	return types
}
