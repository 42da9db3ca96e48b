package history

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"media-transcriber/cmd/transcriber/cmd/shared"
	"media-transcriber/internal/app/converter/export"
	"media-transcriber/internal/app/errors"
	"media-transcriber/internal/app/model"
	"media-transcriber/internal/app/repository"
)

// Options are the history flags.
type Options struct {
	Limit  int
	Output string
	JSON   bool
}

var opts Options

const previewLength = 60

func init() {
	Cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "number of records to show, newest first")
	Cmd.Flags().StringVarP(&opts.Output, "outputFilePath", "o", "", "export the records to this xlsx file instead of printing them")
	Cmd.Flags().BoolVar(&opts.JSON, "json", false, "print records as JSON")
}

// Cmd represents the history command
var Cmd = &cobra.Command{
	Use:   "history",
	Short: "Show or export the transcription history",
	Long: `Show or export the transcription history

- Reads the database at history.db_path, or HISTORY_DB_PATH when set
- Every recorded manager call is listed, including exhausted chains
- -o exports the records to an Excel workbook`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.Setenv("HISTORY_ENABLED", "true"); err != nil {
			return err
		}
		a, err := shared.LoadApplication()
		if err != nil {
			return err
		}
		defer shared.CloseApplication(a)
		return Run(cmd.Context(), a.History, opts, cmd.OutOrStdout())
	},
}

// Run lists the newest records of repo, or exports them when opts.Output is
// set.
func Run(ctx context.Context, repo repository.TranscriptionDAO, opts Options, out io.Writer) error {
	if repo == nil {
		return errors.Wrap(errors.ErrInvalidConfig, "transcription history is disabled")
	}

	records, err := repo.List(ctx, opts.Limit)
	if err != nil {
		return err
	}

	switch {
	case opts.Output != "":
		if err := export.ToExcel(records, opts.Output); err != nil {
			return err
		}
		fmt.Fprintf(out, "export finished, %d records, exported file path: %v\n", len(records), opts.Output)
		return nil
	case opts.JSON:
		if records == nil {
			records = []model.TranscriptionRecord{}
		}
		return shared.PrintJSON(out, records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No transcriptions recorded.")
		return nil
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		text := preview(r.Transcription)
		if r.HasError {
			text = "error: " + preview(r.ErrorMessage)
		}
		rows = append(rows, []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.FileName,
			r.ModelUsed,
			r.Language,
			strconv.FormatFloat(r.Confidence, 'f', 2, 64),
			text,
		})
	}
	_, err = fmt.Fprintln(out, shared.RenderTable(
		[]string{"Created", "File", "Model", "Lang", "Confidence", "Text"},
		rows,
		[]shared.ColumnAlignment{shared.AlignLeft, shared.AlignLeft, shared.AlignLeft, shared.AlignLeft, shared.AlignRight, shared.AlignLeft}))
	return err
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLength {
		return s
	}
	return string([]rune(s)[:previewLength]) + "..."
}
