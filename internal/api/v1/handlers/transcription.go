package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"media-transcriber/internal/api/errors"
	"media-transcriber/internal/api/middleware"
	"media-transcriber/internal/api/v1/dto"
	"media-transcriber/internal/api/v1/services"
)

// TranscriptionHandler handles transcription-related API endpoints
type TranscriptionHandler struct {
	service        services.TranscriptionService
	maxUploadBytes int64
}

// NewTranscriptionHandler creates a new transcription handler. A
// maxUploadBytes of 0 disables the upload size check.
func NewTranscriptionHandler(service services.TranscriptionService, maxUploadBytes int64) *TranscriptionHandler {
	return &TranscriptionHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// Create handles POST /api/v1/transcriptions
// Transcribes a file that already exists on the server.
func (h *TranscriptionHandler) Create(c *gin.Context) {
	var req dto.CreateTranscriptionRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.Transcribe(c.Request.Context(), req.FilePath, req.Language)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Upload handles POST /api/v1/transcriptions/upload
// Accepts a multipart "file" field and an optional "language" field. The
// upload keeps its original name so media type detection sees the extension.
func (h *TranscriptionHandler) Upload(c *gin.Context) {
	var req dto.UploadTranscriptionRequest
	if err := middleware.ValidateForm(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("file is required"))
		return
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		middleware.HandleError(c, errors.NewTooLargeError(
			fmt.Sprintf("upload too large: %d bytes > %d bytes", header.Size, h.maxUploadBytes)))
		return
	}

	dir, err := os.MkdirTemp("", "transcriber-upload-*")
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, filepath.Base(header.Filename))
	if err := c.SaveUploadedFile(header, path); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.Transcribe(c.Request.Context(), path, req.Language)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
