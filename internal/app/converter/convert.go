package converter

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"media-transcriber/internal/app/api/provider"
	"media-transcriber/internal/app/audio"
	"media-transcriber/internal/app/common"
	"media-transcriber/internal/app/errors"
	"media-transcriber/internal/app/repository"
	"media-transcriber/internal/app/utils"
)

// Transcriber is satisfied by *provider.Manager.
type Transcriber interface {
	Transcribe(ctx context.Context, filePath string, language string) *provider.TranscriptionResult
}

// DurationProber is satisfied by *audio.Prober.
type DurationProber interface {
	Duration(ctx context.Context, filePath string) float64
}

// FileResult pairs an input file with its outcome.
type FileResult struct {
	FilePath string                        `json:"file_path"`
	Result   *provider.TranscriptionResult `json:"result,omitempty"`
	Skipped  bool                          `json:"skipped,omitempty"`
	Err      string                        `json:"err,omitempty"`
}

// Converter runs files through the transcription manager and records the
// outcome in the history database when one is configured.
type Converter struct {
	transcriber Transcriber
	db          repository.TranscriptionDAO
	prober      DurationProber
	logger      *zap.Logger
}

// NewConverter creates a converter. db and prober may be nil.
func NewConverter(transcriber Transcriber, transcriptionDAO repository.TranscriptionDAO, prober DurationProber, logger *zap.Logger) *Converter {
	return &Converter{
		transcriber: transcriber,
		db:          transcriptionDAO,
		prober:      prober,
		logger:      common.OrNop(logger),
	}
}

// Close closes the history database.
func (c *Converter) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// ConvertFile transcribes one file. A failed transcription is returned as a
// result, not an error; errors are reserved for unreadable input.
func (c *Converter) ConvertFile(ctx context.Context, filePath string, language string) (*provider.TranscriptionResult, error) {
	if !utils.IsRegularFile(filePath) {
		return nil, errors.Wrapf(errors.ErrFileNotFound, "%s", filePath)
	}

	c.logger.Info("Processing file", zap.String("file", filepath.Base(filePath)), zap.String("language", language))
	result := c.transcriber.Transcribe(ctx, filePath, language)

	if c.db != nil {
		if err := c.record(ctx, filePath, result); err != nil {
			c.logger.Error("Failed to record transcription", zap.String("file", filePath), zap.Error(err))
		}
	}
	return result, nil
}

func (c *Converter) record(ctx context.Context, filePath string, result *provider.TranscriptionResult) error {
	hash, err := utils.CalculateFileHash(filePath)
	if err != nil {
		return err
	}
	size, err := utils.GetFileSize(filePath)
	if err != nil {
		return err
	}
	var duration float64
	if c.prober != nil {
		duration = c.prober.Duration(ctx, filePath)
	}
	return c.db.Record(ctx, repository.NewRecord(filePath, hash, size, duration, result))
}

// ListMediaFiles returns the audio and video files directly inside dir,
// sorted by modification time, oldest first.
func ListMediaFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrFileNotFound, "%s: %v", dir, err)
	}

	type media struct {
		path    string
		modTime time.Time
	}
	var found []media
	for _, entry := range entries {
		if entry.IsDir() || !audio.IsMediaFile(filepath.Join(dir, entry.Name())) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, media{path: filepath.Join(dir, entry.Name()), modTime: info.ModTime()})
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].modTime.Equal(found[j].modTime) {
			return found[i].path < found[j].path
		}
		return found[i].modTime.Before(found[j].modTime)
	})

	paths := make([]string, len(found))
	for i, m := range found {
		paths[i] = m.path
	}
	return paths, nil
}

// filterUnProcessedFiles drops files whose content already has a successful
// history record. Without a database every file is kept.
func (c *Converter) filterUnProcessedFiles(ctx context.Context, filePaths []string, convertCount int) ([]string, []string) {
	toProcess := make([]string, 0, len(filePaths))
	var skipped []string
	for _, path := range filePaths {
		if convertCount > 0 && len(toProcess) >= convertCount {
			break
		}
		if c.db != nil {
			hash, err := utils.CalculateFileHash(path)
			if err == nil {
				if existing, err := c.db.GetByFileHash(ctx, hash); err == nil && existing != nil {
					c.logger.Info("File has already been processed, skipping",
						zap.String("file", filepath.Base(path)),
						zap.String("record", existing.ID))
					skipped = append(skipped, path)
					continue
				}
			}
		}
		toProcess = append(toProcess, path)
	}
	return toProcess, skipped
}
