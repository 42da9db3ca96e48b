package converter

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"
)

type ProgressConfig struct {
	Enabled bool
	Writer  io.Writer
}

type ProgressManager struct {
	container *mpb.Progress
	enabled   bool
	mu        sync.Mutex
}

type ProgressBar struct {
	bar     *mpb.Bar
	enabled bool
}

func NewProgressManager(config ProgressConfig) *ProgressManager {
	if !config.Enabled {
		return &ProgressManager{enabled: false}
	}

	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}

	container := mpb.New(
		mpb.WithOutput(writer),
		mpb.WithRefreshRate(120*time.Millisecond),
	)

	return &ProgressManager{
		container: container,
		enabled:   true,
	}
}

func (pm *ProgressManager) CreateBar(total int, description string) *ProgressBar {
	if pm == nil || !pm.enabled || pm.container == nil {
		return &ProgressBar{enabled: false}
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	bar := pm.container.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(description+" ", decor.WC{W: len(description) + 1, C: decor.DindentRight}),
			decor.CountersNoUnit("(%d/%d)", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.NewPercentage("%.1f", decor.WCSyncSpace),
			decor.OnComplete(
				decor.EwmaETA(decor.ET_STYLE_GO, 30, decor.WCSyncWidth), " ✓ ",
			),
		),
	)

	return &ProgressBar{
		bar:     bar,
		enabled: true,
	}
}

// Increment advances the bar. elapsed feeds the EWMA based ETA.
func (pb *ProgressBar) Increment(elapsed time.Duration) {
	if pb.enabled && pb.bar != nil {
		pb.bar.EwmaIncrement(elapsed)
	}
}

// Abort removes an unfinished bar, used on cancellation.
func (pb *ProgressBar) Abort() {
	if pb.enabled && pb.bar != nil {
		pb.bar.Abort(false)
	}
}

func (pm *ProgressManager) Wait() {
	if pm != nil && pm.enabled && pm.container != nil {
		pm.container.Wait()
	}
}

func IsTTY(writer io.Writer) bool {
	if writer == nil {
		return false
	}

	if file, ok := writer.(*os.File); ok {
		stat, err := file.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

func ShouldShowProgress(forced bool) bool {
	if forced {
		return true
	}
	return IsTTY(os.Stderr)
}

// DirectoryOptions controls ConvertDirectory.
type DirectoryOptions struct {
	Language string
	// ConvertCount limits the number of files transcribed; 0 means all.
	ConvertCount int
	// SkipProcessed skips files that already have a successful history record.
	SkipProcessed bool
	Progress      ProgressConfig
}

// ConvertDirectory transcribes the media files in dir one at a time,
// oldest first. Cancelling ctx stops before the next file.
func (c *Converter) ConvertDirectory(ctx context.Context, dir string, opts DirectoryOptions) ([]FileResult, error) {
	files, err := ListMediaFiles(dir)
	if err != nil {
		return nil, err
	}

	var skipped []string
	if opts.SkipProcessed {
		files, skipped = c.filterUnProcessedFiles(ctx, files, opts.ConvertCount)
	} else if opts.ConvertCount > 0 && len(files) > opts.ConvertCount {
		files = files[:opts.ConvertCount]
	}

	c.logger.Info("Starting directory transcription",
		zap.String("dir", dir),
		zap.Int("files", len(files)),
		zap.Int("skipped", len(skipped)))

	results := make([]FileResult, 0, len(files)+len(skipped))
	for _, path := range skipped {
		results = append(results, FileResult{FilePath: path, Skipped: true})
	}
	if len(files) == 0 {
		return results, nil
	}

	pm := NewProgressManager(opts.Progress)
	bar := pm.CreateBar(len(files), "Transcribing "+filepath.Base(dir))
	defer pm.Wait()

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			bar.Abort()
			return results, err
		}

		start := time.Now()
		result, err := c.ConvertFile(ctx, path, opts.Language)
		fr := FileResult{FilePath: path, Result: result}
		if err != nil {
			fr.Err = err.Error()
			c.logger.Error("Error converting file", zap.String("file", path), zap.Error(err))
		}
		results = append(results, fr)
		bar.Increment(time.Since(start))
	}
	return results, nil
}
