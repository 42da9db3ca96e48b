package repository

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"media-transcriber/internal/app/api/provider"
	"media-transcriber/internal/app/model"
)

// TranscriptionDAO stores transcription history.
type TranscriptionDAO interface {
	Close() error

	// Record inserts r, assigning ID and CreatedAt when empty.
	Record(ctx context.Context, r *model.TranscriptionRecord) error

	// GetByFileHash returns the latest successful record for a content hash,
	// or nil when there is none.
	GetByFileHash(ctx context.Context, fileHash string) (*model.TranscriptionRecord, error)

	// List returns the newest records first.
	List(ctx context.Context, limit int) ([]model.TranscriptionRecord, error)
}

// NewRecord builds a history record from a manager result.
func NewRecord(filePath, fileHash string, fileSize int64, duration float64, result *provider.TranscriptionResult) *model.TranscriptionRecord {
	return &model.TranscriptionRecord{
		ID:               uuid.NewString(),
		FileName:         filepath.Base(filePath),
		FilePath:         filePath,
		FileHash:         fileHash,
		FileSize:         fileSize,
		AudioDuration:    duration,
		ModelUsed:        result.ModelUsed,
		Language:         result.Language,
		Transcription:    result.Text,
		Confidence:       result.Confidence,
		ProcessingTimeMs: result.ProcessingTime.Milliseconds(),
		FromCache:        result.FromCache,
		HasError:         result.Failed(),
		ErrorMessage:     result.Error,
		CreatedAt:        time.Now().UTC(),
	}
}
