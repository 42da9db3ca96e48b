package transcribe

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"media-transcriber/cmd/transcriber/cmd/shared"
	"media-transcriber/internal/app"
	"media-transcriber/internal/app/api/provider"
	"media-transcriber/internal/app/converter"
	"media-transcriber/internal/app/errors"
	"media-transcriber/internal/config"
)

// Options are the transcribe flags.
type Options struct {
	Path          string
	Language      string
	Primary       string
	Fallbacks     []string
	Threshold     float64
	JSON          bool
	Count         int
	SkipProcessed bool
	Progress      bool
}

var (
	opts   Options
	record bool
)

func init() {
	Cmd.Flags().StringVarP(&opts.Path, "file", "f", "", "media file or directory to transcribe")
	Cmd.Flags().StringVarP(&opts.Language, "language", "l", provider.DefaultLanguage, "language of the speech, e.g. pt, pt-BR, en")
	Cmd.Flags().StringVar(&opts.Primary, "primary", "", "primary provider for this run")
	Cmd.Flags().StringSliceVar(&opts.Fallbacks, "fallback", nil, "fallback providers for this run, comma separated")
	Cmd.Flags().Float64Var(&opts.Threshold, "threshold", -1, "minimum confidence for accepting a result (0-1)")
	Cmd.Flags().BoolVar(&opts.JSON, "json", false, "print results as JSON")
	Cmd.Flags().IntVarP(&opts.Count, "count", "n", 0, "maximum number of files to transcribe from a directory, 0 for all")
	Cmd.Flags().BoolVar(&opts.SkipProcessed, "skip-processed", false, "skip files with a successful history record")
	Cmd.Flags().BoolVar(&opts.Progress, "progress", false, "show the progress bar even when stderr is not a terminal")
	Cmd.Flags().BoolVar(&record, "record", false, "record results in the history database")

	Cmd.MarkFlagRequired("file")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe a media file or every media file in a directory",
	Long: `Transcribe a media file or every media file in a directory

- Providers are tried in chain order: primary first, then the fallbacks
- --primary, --fallback and --threshold override the configuration for this run
- Directories are processed one file at a time, oldest first`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if record {
			if err := os.Setenv("HISTORY_ENABLED", "true"); err != nil {
				return err
			}
		}
		a, err := shared.LoadApplication()
		if err != nil {
			return err
		}
		defer shared.CloseApplication(a)

		ctx, cancel := shared.SignalContext()
		defer cancel()
		return Run(ctx, a, opts, cmd.OutOrStdout())
	},
}

// Run applies the routing overrides and transcribes opts.Path. A file whose
// chain is exhausted is printed and reported as an error.
func Run(ctx context.Context, a *app.Application, opts Options, out io.Writer) error {
	if err := ApplyRouting(a.Store, opts); err != nil {
		return err
	}

	info, err := os.Stat(opts.Path)
	if err != nil {
		return errors.Wrapf(errors.ErrFileNotFound, "%s", opts.Path)
	}

	if info.IsDir() {
		results, err := a.Converter.ConvertDirectory(ctx, opts.Path, converter.DirectoryOptions{
			Language:      opts.Language,
			ConvertCount:  opts.Count,
			SkipProcessed: opts.SkipProcessed,
			Progress: converter.ProgressConfig{
				Enabled: !opts.JSON && converter.ShouldShowProgress(opts.Progress),
			},
		})
		if printErr := printDirectory(out, results, opts.JSON); printErr != nil {
			return printErr
		}
		return err
	}

	result, err := a.Converter.ConvertFile(ctx, opts.Path, opts.Language)
	if err != nil {
		return err
	}
	if err := printResult(out, opts.Path, result, opts.JSON); err != nil {
		return err
	}
	if result.Failed() {
		return errors.Wrapf(errors.ErrAllProvidersFailed, "%s", filepath.Base(opts.Path))
	}
	return nil
}

// ApplyRouting writes the routing flags into the store. Unset flags keep the
// configured values.
func ApplyRouting(store *config.Store, opts Options) error {
	if opts.Primary != "" {
		if err := store.SetPrimaryProvider(opts.Primary); err != nil {
			return err
		}
	}
	if len(opts.Fallbacks) > 0 {
		store.SetFallbackProviders(opts.Fallbacks)
	}
	if opts.Threshold >= 0 {
		if err := store.SetConfidenceThreshold(opts.Threshold); err != nil {
			return err
		}
	}
	return nil
}

func printResult(out io.Writer, path string, result *provider.TranscriptionResult, asJSON bool) error {
	if asJSON {
		return shared.PrintJSON(out, converter.FileResult{FilePath: path, Result: result})
	}

	fmt.Fprintf(out, "File:            %s\n", filepath.Base(path))
	fmt.Fprintf(out, "Model:           %s\n", result.ModelUsed)
	fmt.Fprintf(out, "Language:        %s\n", result.Language)
	fmt.Fprintf(out, "Confidence:      %.2f\n", result.Confidence)
	fmt.Fprintf(out, "Processing time: %.2fs\n", result.ProcessingTime.Seconds())
	if result.FromCache {
		fmt.Fprintln(out, "From cache:      yes")
	}
	if result.Failed() {
		fmt.Fprintf(out, "Error:           %s\n", result.Error)
		return nil
	}
	fmt.Fprintf(out, "\n%s\n", result.Text)
	return nil
}

func printDirectory(out io.Writer, results []converter.FileResult, asJSON bool) error {
	if asJSON {
		if results == nil {
			results = []converter.FileResult{}
		}
		return shared.PrintJSON(out, results)
	}

	var ok, failed, skipped int
	for _, r := range results {
		name := filepath.Base(r.FilePath)
		switch {
		case r.Skipped:
			skipped++
			fmt.Fprintf(out, "[skip] %s\n", name)
		case r.Err != "":
			failed++
			fmt.Fprintf(out, "[fail] %s: %s\n", name, r.Err)
		case r.Result.Failed():
			failed++
			fmt.Fprintf(out, "[fail] %s: %s\n", name, r.Result.Error)
		default:
			ok++
			fmt.Fprintf(out, "[ok]   %s (%s, %.2f)\n", name, r.Result.ModelUsed, r.Result.Confidence)
		}
	}
	fmt.Fprintf(out, "\n%d transcribed, %d failed, %d skipped\n", ok, failed, skipped)
	return nil
}
