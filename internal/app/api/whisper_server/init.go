package whisper_server

import (
	"go.uber.org/zap"

	"media-transcriber/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider("whisper_server", createProvider)
}

func createProvider(name string, spec provider.ProviderSpec, logger *zap.Logger) (provider.Provider, error) {
	s := provider.Settings(spec.Settings)

	config := Config{
		Name:          name,
		BaseURL:       s.String("base_url", spec.Auth.BaseURL),
		InferencePath: s.String("inference_path", ""),
		Language:      s.String("language", ""),
		Prompt:        s.String("prompt", ""),
		CustomHeaders: spec.Auth.Headers,
	}
	var err error
	if config.Timeout, err = s.Duration("timeout", 0); err != nil {
		return nil, err
	}
	if config.Temperature, err = s.Float("temperature", 0); err != nil {
		return nil, err
	}
	if config.Translate, err = s.Bool("translate", false); err != nil {
		return nil, err
	}
	if config.MaxLength, err = s.Int("max_length", 0); err != nil {
		return nil, err
	}
	if config.DefaultConfidence, err = s.Float("default_confidence", 0); err != nil {
		return nil, err
	}
	if config.HealthCheck, err = s.Bool("health_check", false); err != nil {
		return nil, err
	}
	return NewProvider(config, logger), nil
}
