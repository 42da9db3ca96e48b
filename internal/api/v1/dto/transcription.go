package dto

import (
	"strings"

	"media-transcriber/internal/api/errors"
	"media-transcriber/internal/app/api/provider"
)

// CreateTranscriptionRequest transcribes a file already present on the
// server's filesystem.
type CreateTranscriptionRequest struct {
	FilePath string `json:"file_path" binding:"required"`
	Language string `json:"language,omitempty"`
}

// Validate performs domain-specific validation
func (r *CreateTranscriptionRequest) Validate() error {
	if strings.TrimSpace(r.FilePath) == "" {
		return errors.NewValidationError("Invalid transcription request", map[string]string{
			"file_path": "file path is required",
		})
	}
	if r.Language == "" {
		r.Language = provider.DefaultLanguage
	}
	return nil
}

// UploadTranscriptionRequest carries the form fields sent with an upload.
type UploadTranscriptionRequest struct {
	Language string `form:"language"`
}

// Validate fills the default language.
func (r *UploadTranscriptionRequest) Validate() error {
	if r.Language == "" {
		r.Language = provider.DefaultLanguage
	}
	return nil
}

// TranscriptionResponse wraps the manager result. Success is false when the
// whole chain was exhausted; the result then carries the error.
type TranscriptionResponse struct {
	FileName string                        `json:"file_name"`
	Success  bool                          `json:"success"`
	Result   *provider.TranscriptionResult `json:"result"`
}

// ToTranscriptionResponse converts a manager result.
func ToTranscriptionResponse(fileName string, result *provider.TranscriptionResult) *TranscriptionResponse {
	return &TranscriptionResponse{
		FileName: fileName,
		Success:  !result.Failed(),
		Result:   result,
	}
}
