package services

import (
	"context"
	"io"

	"media-transcriber/internal/api/errors"
	"media-transcriber/internal/api/v1/dto"
	"media-transcriber/internal/app/converter/export"
	"media-transcriber/internal/app/repository"
)

const (
	defaultHistoryLimit = 50
	maxExportLimit      = 10000
)

// HistoryServiceImpl implements HistoryService
type HistoryServiceImpl struct {
	repo repository.TranscriptionDAO
}

// NewHistoryService creates a history service. repo is nil when history is
// disabled; every call then fails with service unavailable.
func NewHistoryService(repo repository.TranscriptionDAO) HistoryService {
	return &HistoryServiceImpl{repo: repo}
}

func (s *HistoryServiceImpl) ListHistory(ctx context.Context, limit int) (*dto.HistoryResponse, error) {
	if s.repo == nil {
		return nil, errors.NewServiceUnavailableError("transcription history is disabled")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	records, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &dto.HistoryResponse{Records: records, Count: len(records)}, nil
}

// ExportHistory writes the newest records as an xlsx workbook.
func (s *HistoryServiceImpl) ExportHistory(ctx context.Context, limit int, w io.Writer) error {
	if s.repo == nil {
		return errors.NewServiceUnavailableError("transcription history is disabled")
	}
	if limit <= 0 || limit > maxExportLimit {
		limit = maxExportLimit
	}
	records, err := s.repo.List(ctx, limit)
	if err != nil {
		return err
	}
	return export.WriteExcel(records, w)
}
