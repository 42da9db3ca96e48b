package whisper_cpp

import (
	"go.uber.org/zap"

	"media-transcriber/internal/app/api/provider"
	"media-transcriber/internal/app/audio"
)

func init() {
	provider.RegisterProvider("whisper_cpp", createProvider)
}

func createProvider(name string, spec provider.ProviderSpec, logger *zap.Logger) (provider.Provider, error) {
	s := provider.Settings(spec.Settings)

	config := Config{
		Name:       name,
		BinaryPath: s.String("binary_path", ""),
		ModelPath:  s.String("model_path", ""),
		Language:   s.String("language", ""),
		Prompt:     s.String("prompt", ""),
		TempDir:    s.String("temp_dir", ""),
	}
	var err error
	if config.Threads, err = s.Int("threads", 0); err != nil {
		return nil, err
	}
	if config.DefaultConfidence, err = s.Float("default_confidence", 0); err != nil {
		return nil, err
	}
	if config.Timeout, err = s.Duration("timeout", 0); err != nil {
		return nil, err
	}

	prober := audio.NewProber(s.String("ffprobe_path", ""), logger,
		audio.WithFFmpegPath(s.String("ffmpeg_path", "")),
		audio.WithTempDir(config.TempDir))
	return NewProvider(config, logger, WithPrepare(prober.PrepareWav)), nil
}
