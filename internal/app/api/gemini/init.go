package gemini

import (
	"go.uber.org/zap"

	"media-transcriber/internal/app/api/provider"
)

func init() {
	provider.RegisterProvider("gemini", createProvider)
}

func createProvider(name string, spec provider.ProviderSpec, logger *zap.Logger) (provider.Provider, error) {
	s := provider.Settings(spec.Settings)

	config := Config{
		Name:        name,
		APIKey:      spec.Auth.APIKey,
		Model:       s.String("model", ""),
		AudioPrompt: s.String("audio_prompt", ""),
		VideoPrompt: s.String("video_prompt", ""),
	}

	var err error
	if config.VideoTimeout, err = s.Duration("video_timeout", 0); err != nil {
		return nil, err
	}
	if config.MaxVideoSizeMB, err = s.Int("max_video_size_mb", 0); err != nil {
		return nil, err
	}
	if config.PollInterval, err = s.Duration("poll_interval", 0); err != nil {
		return nil, err
	}

	return NewProvider(config, logger), nil
}
