package provider

import (
	"encoding/json"
	"time"
)

// Status map keys every provider reports.
const (
	StatusInitialized = "initialized"
	StatusCacheSize   = "cache_size"
)

// ModelUsedNone marks the synthetic result returned when no provider produced
// an acceptable transcription.
const ModelUsedNone = "None"

// DefaultLanguage is used by the CLI and HTTP API when no language is given.
const DefaultLanguage = "pt"

// ExhaustedMessage is the error text of the synthetic exhaustion result.
const ExhaustedMessage = "All transcription providers failed or had low confidence."

// Segment is a time-aligned piece of a transcription. Times are in seconds.
type Segment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// TranscriptionResult describes one transcription attempt. A result is never
// modified after a provider returns it; cache hits hand out clones.
type TranscriptionResult struct {
	Text           string        `json:"text"`
	Confidence     float64       `json:"confidence"`
	ProcessingTime time.Duration `json:"-"`
	ModelUsed      string        `json:"model_used"`
	Language       string        `json:"language"`
	Segments       []Segment     `json:"segments,omitempty"`
	Error          string        `json:"error,omitempty"`
	FromCache      bool          `json:"from_cache,omitempty"`
}

// Failed reports whether the attempt carries an error.
func (r *TranscriptionResult) Failed() bool {
	return r.Error != ""
}

// Clone returns a deep copy.
func (r *TranscriptionResult) Clone() *TranscriptionResult {
	c := *r
	if r.Segments != nil {
		c.Segments = append([]Segment(nil), r.Segments...)
	}
	return &c
}

// MarshalJSON renders the processing time in seconds.
func (r TranscriptionResult) MarshalJSON() ([]byte, error) {
	type alias TranscriptionResult
	return json.Marshal(struct {
		alias
		ProcessingTime float64 `json:"processing_time"`
	}{
		alias:          alias(r),
		ProcessingTime: r.ProcessingTime.Seconds(),
	})
}

// NewFailedResult builds a failure result. Text is empty and confidence is 0.
func NewFailedResult(modelUsed, language string, elapsed time.Duration, err error) *TranscriptionResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &TranscriptionResult{
		ProcessingTime: elapsed,
		ModelUsed:      modelUsed,
		Language:       language,
		Error:          msg,
	}
}

// ExhaustedResult is returned by the manager when every candidate in the
// fallback chain was skipped. The language is the caller's, verbatim.
func ExhaustedResult(language string) *TranscriptionResult {
	return &TranscriptionResult{
		ModelUsed: ModelUsedNone,
		Language:  language,
		Error:     ExhaustedMessage,
	}
}

// NormalizeSegments drops empty segments and swaps inverted bounds so that
// Start <= End holds for every entry.
func NormalizeSegments(segments []Segment) []Segment {
	if len(segments) == 0 {
		return nil
	}
	out := make([]Segment, 0, len(segments))
	for _, s := range segments {
		if s.Text == "" {
			continue
		}
		if s.End < s.Start {
			s.Start, s.End = s.End, s.Start
		}
		out = append(out, s)
	}
	return out
}

// ClampConfidence limits c to [0, 1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
