package app

import (
	"context"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	// Provider packages register their types with the factory from init.
	_ "media-transcriber/internal/app/api/gemini"
	_ "media-transcriber/internal/app/api/openai/whisper"
	_ "media-transcriber/internal/app/api/whisper_cpp"
	_ "media-transcriber/internal/app/api/whisper_server"

	"media-transcriber/internal/app/api/provider"
	"media-transcriber/internal/app/audio"
	"media-transcriber/internal/app/common"
	"media-transcriber/internal/app/converter"
	"media-transcriber/internal/app/repository"
	"media-transcriber/internal/app/repository/sqlite"
	"media-transcriber/internal/config"
)

// ConfigPath is the YAML configuration file. Empty means built-in defaults.
type ConfigPath string

// Application is the assembled object graph shared by the CLI commands and
// the HTTP server.
type Application struct {
	Settings  *config.Settings
	Store     *config.Store
	Logger    *zap.Logger
	Prober    *audio.Prober
	Manager   *provider.Manager
	Metrics   *provider.DefaultProviderMetrics
	Registry  *prometheus.Registry
	History   repository.TranscriptionDAO
	Converter *converter.Converter
}

// ProviderTypes maps each configured provider name to its type.
func (a *Application) ProviderTypes() map[string]string {
	types := make(map[string]string, len(a.Settings.Providers))
	for name, spec := range a.Settings.Providers {
		types[name] = spec.Type
	}
	return types
}

// Close clears the provider caches and closes the history database.
func (a *Application) Close(ctx context.Context) error {
	if err := a.Manager.Shutdown(ctx); err != nil {
		a.Logger.Warn("Manager shutdown interrupted", zap.Error(err))
	}
	err := a.Converter.Close()
	_ = a.Logger.Sync()
	return err
}

func provideSettings(path ConfigPath) (*config.Settings, error) {
	return config.Load(string(path))
}

func provideLogger(settings *config.Settings) (*zap.Logger, error) {
	return common.NewLogger(settings.Logging.Level, settings.Logging.Development)
}

func provideStore(settings *config.Settings) *config.Store {
	return config.NewStore(settings)
}

func provideProber(settings *config.Settings, logger *zap.Logger) *audio.Prober {
	return audio.NewProber(settings.FFprobePath, logger, audio.WithFFmpegPath(settings.FFmpegPath))
}

func providePrometheusRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideMetrics() *provider.DefaultProviderMetrics {
	return provider.NewProviderMetrics()
}

// provideManager builds the manager over the live store and registers every
// enabled provider from the configuration.
func provideManager(store *config.Store, settings *config.Settings, metrics *provider.DefaultProviderMetrics, reg *prometheus.Registry, logger *zap.Logger) *provider.Manager {
	manager := provider.NewManager(store,
		provider.WithLogger(logger),
		provider.WithMetrics(metrics, provider.NewPrometheusMetrics(reg)))

	registered := provider.RegisterConfigured(manager, store.Routing(), settings.Providers, logger)
	logger.Info("Transcription manager ready",
		zap.Strings("providers", registered),
		zap.Strings("chain", store.Routing().Chain()),
		zap.Float64("threshold", store.Routing().ConfidenceThreshold))
	return manager
}

// provideHistory opens the history database, or returns nil when history is
// disabled.
func provideHistory(settings *config.Settings, logger *zap.Logger) (repository.TranscriptionDAO, error) {
	if !settings.History.Enabled {
		return nil, nil
	}
	path := settings.History.DBPath
	if !filepath.IsAbs(path) {
		if root, err := config.GetProjectRoot(); err == nil {
			path = filepath.Join(root, path)
		}
	}
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	logger.Info("Transcription history enabled", zap.String("db_path", path))
	return db, nil
}
