//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"media-transcriber/internal/app/api/provider"
	"media-transcriber/internal/app/audio"
	"media-transcriber/internal/app/converter"
)

var applicationSet = wire.NewSet(
	provideSettings,
	provideLogger,
	provideStore,
	provideProber,
	providePrometheusRegistry,
	provideMetrics,
	provideManager,
	provideHistory,
	converter.NewConverter,
	wire.Bind(new(converter.Transcriber), new(*provider.Manager)),
	wire.Bind(new(converter.DurationProber), new(*audio.Prober)),
	wire.Struct(new(Application), "*"),
)

// InitializeApplication loads the configuration at path and assembles the
// manager, history database and converter.
func InitializeApplication(path ConfigPath) (*Application, error) {
	wire.Build(applicationSet)
	return &Application{}, nil
}
