package whisper

import (
	"fmt"

	"go.uber.org/zap"

	"media-transcriber/internal/app/api/provider"
)

// Presets for the local engines the manager routes between.
const (
	PresetDistil = "distil"
	PresetFaster = "faster"
	PresetCloud  = "cloud"
)

func init() {
	provider.RegisterProvider("openai_compatible", createProvider)
}

// ApplyPreset fills engine defaults for a preset without overriding values
// already set.
func ApplyPreset(preset string, config *Config) error {
	switch preset {
	case PresetDistil:
		// Distil-Whisper PT: Portuguese forced, results reported as pt-BR.
		setDefault(&config.ForceLanguage, "pt")
		setDefault(&config.ReportLanguage, "pt-BR")
		setDefaultFloat(&config.DefaultConfidence, 0.87)
		setDefaultFloat(&config.SegmentConfidence, 0.85)
	case PresetFaster:
		setDefaultFloat(&config.DefaultConfidence, 0.8)
		setDefaultFloat(&config.SegmentConfidence, 0.8)
	case PresetCloud:
		config.RequireAPIKey = true
		setDefault(&config.Model, "whisper-1")
	case "":
	default:
		return fmt.Errorf("unknown openai_compatible preset %q", preset)
	}
	return nil
}

func createProvider(name string, spec provider.ProviderSpec, logger *zap.Logger) (provider.Provider, error) {
	s := provider.Settings(spec.Settings)

	config := Config{
		Name:           name,
		APIKey:         spec.Auth.APIKey,
		BaseURL:        s.String("base_url", spec.Auth.BaseURL),
		Model:          s.String("model", ""),
		ForceLanguage:  s.String("force_language", ""),
		ReportLanguage: s.String("report_language", ""),
		Prompt:         s.String("prompt", ""),
	}

	var err error
	if config.DefaultConfidence, err = s.Float("default_confidence", 0); err != nil {
		return nil, err
	}
	if config.SegmentConfidence, err = s.Float("segment_confidence", 0); err != nil {
		return nil, err
	}
	temperature, err := s.Float("temperature", 0)
	if err != nil {
		return nil, err
	}
	config.Temperature = float32(temperature)
	if config.Timeout, err = s.Duration("timeout", 0); err != nil {
		return nil, err
	}
	if config.RequireAPIKey, err = s.Bool("require_api_key", false); err != nil {
		return nil, err
	}
	if config.Handshake, err = s.Bool("handshake", true); err != nil {
		return nil, err
	}
	if err := ApplyPreset(s.String("preset", ""), &config); err != nil {
		return nil, err
	}

	return NewProvider(config, logger), nil
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func setDefaultFloat(field *float64, value float64) {
	if *field == 0 {
		*field = value
	}
}
