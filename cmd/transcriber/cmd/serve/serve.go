package serve

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"media-transcriber/cmd/transcriber/cmd/shared"
	"media-transcriber/internal/api/server"
	"media-transcriber/internal/app"
)

var addr string

func init() {
	Cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address, overrides server.addr from the configuration")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the transcription API over HTTP",
	Long: `Serve the transcription API over HTTP

- POST /api/v1/transcriptions transcribes a file on the server's disk
- POST /api/v1/transcriptions/upload transcribes an uploaded file
- GET|PUT /api/v1/routing reads or changes the fallback chain without a restart
- GET /metrics exposes Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := shared.LoadApplication()
		if err != nil {
			return err
		}
		defer shared.CloseApplication(a)

		ctx, cancel := shared.SignalContext()
		defer cancel()
		return NewServer(a, addr).Run(ctx)
	},
}

// NewServer builds the HTTP server from the application. An empty addr uses
// the configured address.
func NewServer(a *app.Application, addr string) *server.Server {
	cfg := a.Settings.Server
	if addr == "" {
		addr = cfg.Addr
	}
	environment := "production"
	if a.Settings.Logging.Development {
		environment = "development"
	}

	a.Logger.Info("Configuring API server",
		zap.String("addr", addr),
		zap.Int64("max_upload_mb", cfg.MaxUploadMB),
		zap.Bool("history", a.History != nil))

	return server.NewServer(server.Config{
		Addr:            addr,
		ReadTimeout:     cfg.ReadTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Environment:     environment,
	}, shared.Services(a), a.Registry, a.Logger)
}
