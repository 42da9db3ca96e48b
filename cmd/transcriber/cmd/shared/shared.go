// Package shared holds the state and helpers common to the CLI subcommands.
package shared

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	v1routes "media-transcriber/internal/api/v1/routes"
	"media-transcriber/internal/api/v1/services"
	"media-transcriber/internal/app"
	"media-transcriber/internal/config"
)

// Persistent root flags.
var (
	ConfigFile string
	Verbose    bool
)

const closeTimeout = 10 * time.Second

// LoadApplication builds the application from ConfigFile. --verbose forces
// debug logging.
func LoadApplication() (*app.Application, error) {
	if Verbose {
		if err := os.Setenv("LOG_LEVEL", "debug"); err != nil {
			return nil, err
		}
	}

	a, err := app.InitializeApplication(app.ConfigPath(ConfigFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	apiKeys, err := config.GetAPIKeys()
	if err != nil {
		a.Logger.Warn("Invalid API key configuration", zap.Error(err))
	} else {
		config.ReportAPIKeys(apiKeys, a.Logger)
	}
	return a, nil
}

// CloseApplication shuts the manager down and closes the history database.
func CloseApplication(a *app.Application) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
	}
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Services builds the API services over the application graph.
func Services(a *app.Application) *v1routes.ServiceContainer {
	return &v1routes.ServiceContainer{
		TranscriptionService: services.NewTranscriptionService(a.Converter),
		ProviderService:      services.NewProviderService(a.Manager, a.Store, a.ProviderTypes()),
		RoutingService:       services.NewRoutingService(a.Store, a.Manager, a.Logger),
		StatsService:         services.NewStatsService(a.Manager, a.Metrics),
		HistoryService:       services.NewHistoryService(a.History),
		MaxUploadBytes:       a.Settings.Server.MaxUploadMB << 20,
	}
}
