package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"media-transcriber/internal/api/middleware"
	"media-transcriber/internal/api/v1/dto"
	"media-transcriber/internal/api/v1/services"
	"media-transcriber/internal/app/converter/export"
)

// HistoryHandler serves the transcription history.
type HistoryHandler struct {
	service services.HistoryService
}

func NewHistoryHandler(service services.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// List handles GET /api/v1/history?limit=N
func (h *HistoryHandler) List(c *gin.Context) {
	var query dto.ListHistoryQuery
	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}

	history, err := h.service.ListHistory(c.Request.Context(), query.Limit)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// Export handles GET /api/v1/history/export and returns an xlsx workbook.
func (h *HistoryHandler) Export(c *gin.Context) {
	var query dto.ExportHistoryQuery
	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}

	// Buffer the workbook so a failure can still produce an error status.
	var buf bytes.Buffer
	if err := h.service.ExportHistory(c.Request.Context(), query.Limit, &buf); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="transcriptions.xlsx"`)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
