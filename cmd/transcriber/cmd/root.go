package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"media-transcriber/cmd/transcriber/cmd/history"
	"media-transcriber/cmd/transcriber/cmd/serve"
	"media-transcriber/cmd/transcriber/cmd/shared"
	"media-transcriber/cmd/transcriber/cmd/status"
	"media-transcriber/cmd/transcriber/cmd/transcribe"
	"media-transcriber/cmd/transcriber/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "transcriber",
	Short: "Transcribe audio and video with a chain of pluggable speech-to-text providers",
	Long: `Transcribe audio and video with a chain of pluggable speech-to-text providers.

- The primary provider is tried first, then each fallback in order
- A result is accepted when it has no error and its confidence reaches the threshold
- Providers cache successful results by file content`,
	SilenceUsage:     true,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(status.Cmd)
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(history.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().StringVarP(&shared.ConfigFile, "config", "c", "",
		"YAML configuration file (default: built-in providers and environment variables)")
	rootCmd.PersistentFlags().BoolVarP(&shared.Verbose, "verbose", "V", false, "verbose output")
}
