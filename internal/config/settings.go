package config

import (
	"time"

	"media-transcriber/internal/app/api/provider"
)

// Provider names used by the default configuration.
const (
	DistilWhisperProvider = "distil-whisper-pt"
	FasterWhisperProvider = "faster-whisper"
	GeminiProvider        = "gemini-hybrid"
	OpenAIWhisperProvider = "openai-whisper"
	WhisperCppProvider    = "whisper-cpp"
	WhisperServerProvider = "whisper-server"
)

const (
	DefaultConfidenceThreshold = 0.6
	DefaultGeminiVideoTimeout  = 300 * time.Second
	DefaultMaxVideoSizeMB      = 200
	DefaultServerAddr          = ":8090"
	DefaultHistoryDBPath       = "./data/transcriptions.db"
)

// Settings is the complete application configuration.
type Settings struct {
	PrimaryProvider     string   `yaml:"primary_provider" json:"primary_provider" validate:"required"`
	FallbackProviders   []string `yaml:"fallback_providers" json:"fallback_providers"`
	ConfidenceThreshold float64  `yaml:"confidence_threshold" json:"confidence_threshold" validate:"gte=0,lte=1"`
	FFprobePath         string   `yaml:"ffprobe_path,omitempty" json:"ffprobe_path,omitempty"`
	FFmpegPath          string   `yaml:"ffmpeg_path,omitempty" json:"ffmpeg_path,omitempty"`

	Providers map[string]provider.ProviderSpec `yaml:"providers" json:"providers" validate:"dive"`

	Logging LoggingConfig `yaml:"logging" json:"logging"`
	History HistoryConfig `yaml:"history" json:"history"`
	Server  ServerConfig  `yaml:"server" json:"server"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development" json:"development"`
}

// HistoryConfig configures the transcription history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	DBPath  string `yaml:"db_path" json:"db_path" validate:"required_if=Enabled true"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	MaxUploadMB     int64         `yaml:"max_upload_mb" json:"max_upload_mb" validate:"gte=0"`
}

// Routing returns the routing part of the settings.
func (s *Settings) Routing() provider.RoutingConfig {
	return provider.RoutingConfig{
		Primary:             s.PrimaryProvider,
		Fallbacks:           append([]string(nil), s.FallbackProviders...),
		ConfidenceThreshold: s.ConfidenceThreshold,
	}
}

// Default returns the built-in configuration: Distil-Whisper PT first, then
// Faster-Whisper, then Gemini.
func Default() *Settings {
	return &Settings{
		PrimaryProvider:     DistilWhisperProvider,
		FallbackProviders:   []string{FasterWhisperProvider, GeminiProvider},
		ConfidenceThreshold: DefaultConfidenceThreshold,
		Providers:           DefaultProviders(),
		Logging: LoggingConfig{
			Level: "info",
		},
		History: HistoryConfig{
			DBPath: DefaultHistoryDBPath,
		},
		Server: ServerConfig{
			Addr:            DefaultServerAddr,
			ReadTimeout:     30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadMB:     DefaultMaxVideoSizeMB,
		},
	}
}

// DefaultProviders returns the provider blocks of the default configuration.
// Values use ${VAR:-default} references resolved at load time.
func DefaultProviders() map[string]provider.ProviderSpec {
	return map[string]provider.ProviderSpec{
		DistilWhisperProvider: {
			Type:    "openai_compatible",
			Enabled: true,
			Settings: map[string]interface{}{
				"preset":   "distil",
				"base_url": "${DISTIL_WHISPER_URL:-http://localhost:8000/v1}",
				"model":    "${DISTIL_WHISPER_MODEL_ID:-freds0/distil-whisper-large-v3-ptbr}",
			},
		},
		FasterWhisperProvider: {
			Type:    "openai_compatible",
			Enabled: true,
			Settings: map[string]interface{}{
				"preset":   "faster",
				"base_url": "${FASTER_WHISPER_URL:-http://localhost:8001/v1}",
				"model":    "${FASTER_WHISPER_MODEL:-Systran/faster-whisper-medium}",
			},
		},
		GeminiProvider: {
			Type:    "gemini",
			Enabled: true,
			Auth: provider.AuthConfig{
				APIKey: "${GEMINI_API_KEY}",
			},
			Settings: map[string]interface{}{
				"model":             "${GEMINI_MODEL_NAME:-gemini-2.0-flash}",
				"video_timeout":     "${GEMINI_VIDEO_TIMEOUT:-300}",
				"max_video_size_mb": "${MAX_VIDEO_SIZE_MB:-200}",
			},
		},
		OpenAIWhisperProvider: {
			Type:    "openai_compatible",
			Enabled: false,
			Auth: provider.AuthConfig{
				APIKey: "${OPENAI_API_KEY}",
			},
			Settings: map[string]interface{}{
				"preset": "cloud",
			},
		},
		WhisperCppProvider: {
			Type:    "whisper_cpp",
			Enabled: false,
			Settings: map[string]interface{}{
				"binary_path": "${WHISPER_CPP_BINARY:-whisper-cli}",
				"model_path":  "${WHISPER_CPP_MODEL:-./models/ggml-large-v3.bin}",
				"language":    "pt",
				"timeout":     "${WHISPER_CPP_TIMEOUT:-300}",
			},
		},
		WhisperServerProvider: {
			Type:    "whisper_server",
			Enabled: false,
			Settings: map[string]interface{}{
				"base_url": "${WHISPER_SERVER_URL:-http://localhost:8080}",
				"timeout":  "${WHISPER_SERVER_TIMEOUT:-120}",
			},
		},
	}
}

// Clone returns a deep copy.
func (s *Settings) Clone() *Settings {
	out := *s
	out.FallbackProviders = append([]string(nil), s.FallbackProviders...)
	if s.Providers != nil {
		out.Providers = make(map[string]provider.ProviderSpec, len(s.Providers))
		for name, spec := range s.Providers {
			out.Providers[name] = cloneSpec(spec)
		}
	}
	return &out
}

func cloneSpec(spec provider.ProviderSpec) provider.ProviderSpec {
	out := spec
	if spec.Settings != nil {
		out.Settings = make(map[string]interface{}, len(spec.Settings))
		for k, v := range spec.Settings {
			out.Settings[k] = v
		}
	}
	if spec.Auth.Headers != nil {
		out.Auth.Headers = make(map[string]string, len(spec.Auth.Headers))
		for k, v := range spec.Auth.Headers {
			out.Auth.Headers[k] = v
		}
	}
	return out
}
