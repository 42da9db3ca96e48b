package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"media-transcriber/internal/app/api/provider"
)

func TestNewRecord(t *testing.T) {
	result := &provider.TranscriptionResult{
		Text:           "Olá",
		Confidence:     0.9,
		ProcessingTime: 1500 * time.Millisecond,
		ModelUsed:      "faster-whisper",
		Language:       "pt",
		FromCache:      true,
	}

	r := NewRecord("/media/in/voice.mp3", "abc", 2048, 3.5, result)

	assert.Len(t, r.ID, 36)
	assert.Equal(t, "voice.mp3", r.FileName)
	assert.Equal(t, "/media/in/voice.mp3", r.FilePath)
	assert.Equal(t, int64(1500), r.ProcessingTimeMs)
	assert.True(t, r.FromCache)
	assert.False(t, r.HasError)
	assert.Equal(t, "Olá", r.Transcription)
}

func TestNewRecordFailure(t *testing.T) {
	r := NewRecord("clip.mp4", "abc", 10, 0, provider.ExhaustedResult("pt"))

	assert.True(t, r.HasError)
	assert.Equal(t, provider.ModelUsedNone, r.ModelUsed)
	assert.Equal(t, provider.ExhaustedMessage, r.ErrorMessage)
	assert.Empty(t, r.Transcription)
}
