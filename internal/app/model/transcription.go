package model

import "time"

// TranscriptionRecord is one row of the transcription history: the outcome
// of a single manager call for a file.
type TranscriptionRecord struct {
	ID               string    `json:"id"`
	FileName         string    `json:"file_name"`
	FilePath         string    `json:"file_path"`
	FileHash         string    `json:"file_hash"`
	FileSize         int64     `json:"file_size"`
	AudioDuration    float64   `json:"audio_duration"`
	ModelUsed        string    `json:"model_used"`
	Language         string    `json:"language"`
	Transcription    string    `json:"transcription"`
	Confidence       float64   `json:"confidence"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	FromCache        bool      `json:"from_cache"`
	HasError         bool      `json:"has_error"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
