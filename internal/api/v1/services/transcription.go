package services

import (
	"context"
	"path/filepath"

	"media-transcriber/internal/api/v1/dto"
	"media-transcriber/internal/app/api/provider"
)

// FileConverter is satisfied by *converter.Converter.
type FileConverter interface {
	ConvertFile(ctx context.Context, filePath string, language string) (*provider.TranscriptionResult, error)
}

// TranscriptionServiceImpl implements TranscriptionService
type TranscriptionServiceImpl struct {
	converter FileConverter
}

// NewTranscriptionService creates a new transcription service
func NewTranscriptionService(converter FileConverter) TranscriptionService {
	return &TranscriptionServiceImpl{converter: converter}
}

// Transcribe converts one file. An exhausted chain is a successful call with
// Success set to false.
func (s *TranscriptionServiceImpl) Transcribe(ctx context.Context, filePath string, language string) (*dto.TranscriptionResponse, error) {
	if language == "" {
		language = provider.DefaultLanguage
	}
	result, err := s.converter.ConvertFile(ctx, filePath, language)
	if err != nil {
		return nil, err
	}
	return dto.ToTranscriptionResponse(filepath.Base(filePath), result), nil
}
