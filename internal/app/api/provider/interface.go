package provider

import (
	"context"
)

// Provider is a transcription engine behind a uniform contract.
//
// Implementations never panic out of Transcribe and never return nil: every
// failure, including a missing credential or an unsupported format, is
// reported through TranscriptionResult.Error. Each provider owns a private
// cache keyed by the content hash of the input file and only stores
// successful results in it.
type Provider interface {
	// Initialize prepares the engine. It is idempotent once it succeeds and
	// may be retried after a failure.
	Initialize(ctx context.Context) error

	// Transcribe converts the media file to text.
	Transcribe(ctx context.Context, filePath string, language string) *TranscriptionResult

	// Name is the stable registry key and default ModelUsed value.
	Name() string

	// Status returns diagnostic fields. StatusInitialized and StatusCacheSize
	// are always present.
	Status() map[string]interface{}

	// ClearCache empties the result cache. Safe before initialization.
	ClearCache()
}

// RoutingSource supplies the fallback chain and threshold. The manager reads
// it once at the start of every Transcribe call.
type RoutingSource interface {
	Routing() RoutingConfig
}

// ProviderMetrics records per-provider outcomes observed by the manager.
type ProviderMetrics interface {
	RecordSuccess(provider string, latencyMs int64, confidence float64)
	RecordFailure(provider string, failureType string)
}

// Failure types passed to ProviderMetrics.RecordFailure.
const (
	FailureNotRegistered  = "provider_not_registered"
	FailureInitialization = "initialization_failed"
	FailureTranscription  = "transcription_failed"
	FailureLowConfidence  = "low_confidence"
)
