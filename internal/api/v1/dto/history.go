package dto

import "media-transcriber/internal/app/model"

// ListHistoryQuery pages through the transcription history.
type ListHistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,gte=1,lte=500"`
}

// ExportHistoryQuery limits an export. Zero exports up to 10000 records.
type ExportHistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,gte=1,lte=10000"`
}

// HistoryResponse lists history records, newest first.
type HistoryResponse struct {
	Records []model.TranscriptionRecord `json:"records"`
	Count   int                         `json:"count"`
}
