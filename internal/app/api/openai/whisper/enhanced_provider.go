package whisper

import (
	"context"
	stderrors "errors"
	"math"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"media-transcriber/internal/app/api/provider"
	"media-transcriber/internal/app/common"
	"media-transcriber/internal/app/errors"
)

// Config describes one OpenAI-compatible transcription endpoint. The same
// implementation serves the OpenAI cloud and local servers exposing
// /v1/audio/transcriptions (faster-whisper-server, speaches, distil models).
type Config struct {
	Name    string
	APIKey  string
	BaseURL string
	Model   string

	// RequireAPIKey makes Initialize fail without a key.
	RequireAPIKey bool
	// ForceLanguage is sent to the engine instead of the request language.
	ForceLanguage string
	// ReportLanguage overrides the language stored in results.
	ReportLanguage string

	DefaultConfidence float64
	SegmentConfidence float64

	Prompt      string
	Temperature float32
	Timeout     time.Duration
	// Handshake lists models during Initialize to verify the endpoint.
	Handshake bool
}

// Provider transcribes through the OpenAI audio API.
type Provider struct {
	config Config
	client *openai.Client
	logger *zap.Logger

	guard provider.InitGuard
	cache *provider.ResultCache
}

// NewProvider creates a provider. Defaults: model whisper-1, confidence 0.8.
func NewProvider(config Config, logger *zap.Logger) *Provider {
	if config.Model == "" {
		config.Model = openai.Whisper1
	}
	if config.DefaultConfidence == 0 {
		config.DefaultConfidence = 0.8
	}
	if config.SegmentConfidence == 0 {
		config.SegmentConfidence = config.DefaultConfidence
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(config.BaseURL, "/")
	}

	return &Provider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
		logger: common.OrNop(logger),
		cache:  provider.NewResultCache(),
	}
}

func (p *Provider) Name() string {
	return p.config.Name
}

// Initialize checks credentials and, when Handshake is set, that the
// endpoint answers a model listing.
func (p *Provider) Initialize(ctx context.Context) error {
	return p.guard.Do(func() error {
		if p.config.RequireAPIKey && p.config.APIKey == "" {
			return errors.Wrapf(errors.ErrMissingAPIKey, "%s", p.config.Name)
		}
		if !p.config.Handshake {
			p.logger.Info("OpenAI-compatible provider ready", zap.String("model", p.config.Model))
			return nil
		}

		start := time.Now()
		models, err := p.client.ListModels(ctx)
		if err != nil {
			return p.handleAPIError(err)
		}
		found := false
		for _, m := range models.Models {
			if m.ID == p.config.Model {
				found = true
				break
			}
		}
		if !found {
			// Local servers download models on first use and may not list them yet.
			p.logger.Warn("Model not listed by endpoint", zap.String("model", p.config.Model))
		}
		p.logger.Info("OpenAI-compatible provider initialized",
			zap.String("model", p.config.Model),
			zap.String("base_url", p.config.BaseURL),
			zap.Duration("load_time", time.Since(start)))
		return nil
	})
}

// Transcribe implements provider.Provider.
func (p *Provider) Transcribe(ctx context.Context, filePath string, language string) *provider.TranscriptionResult {
	if err := p.Initialize(ctx); err != nil {
		p.logger.Error("Provider not initialized", zap.Error(err))
		return provider.NewFailedResult(p.config.Name, p.resultLanguage(language, ""), 0,
			errors.Wrap(errors.ErrNotInitialized, err.Error()))
	}

	return p.cache.Transcribe(filePath, p.config.Name, p.resultLanguage(language, ""), func() *provider.TranscriptionResult {
		return p.transcribe(ctx, filePath, language)
	})
}

func (p *Provider) transcribe(ctx context.Context, filePath, language string) *provider.TranscriptionResult {
	start := time.Now()
	name := filepath.Base(filePath)
	p.logger.Info("Starting transcription", zap.String("file", name))

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	req := openai.AudioRequest{
		Model:       p.config.Model,
		FilePath:    filePath,
		Prompt:      p.config.Prompt,
		Temperature: p.config.Temperature,
		Language:    p.engineLanguage(language),
		Format:      openai.AudioResponseFormatVerboseJSON,
	}

	resp, err := p.client.CreateTranscription(ctx, req)
	if err != nil {
		err = p.handleAPIError(err)
		p.logger.Error("Transcription failed", zap.String("file", name), zap.Error(err))
		return provider.NewFailedResult(p.config.Name, p.resultLanguage(language, ""), time.Since(start),
			errors.Wrapf(err, "%s transcription failed for %s", p.config.Name, name))
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return provider.NewFailedResult(p.config.Name, p.resultLanguage(language, ""), time.Since(start),
			errors.Wrapf(errors.ErrEmptyTranscription, "%s", name))
	}

	scores := make([]SegmentScore, 0, len(resp.Segments))
	segments := make([]provider.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		score := SegmentScore{AvgLogprob: s.AvgLogprob, NoSpeechProb: s.NoSpeechProb}
		scores = append(scores, score)
		segments = append(segments, provider.Segment{
			Start:      roundTo(s.Start, 2),
			End:        roundTo(s.End, 2),
			Text:       strings.TrimSpace(s.Text),
			Confidence: score.Confidence(p.config.SegmentConfidence),
		})
	}

	confidence := EstimateConfidence(scores, p.config.DefaultConfidence)
	result := &provider.TranscriptionResult{
		Text:           text,
		Confidence:     confidence,
		ProcessingTime: time.Since(start),
		ModelUsed:      p.config.Name,
		Language:       p.resultLanguage(language, resp.Language),
		Segments:       provider.NormalizeSegments(segments),
	}

	p.logger.Info("Transcription completed",
		zap.String("file", name),
		zap.Int("chars", len(text)),
		zap.Duration("processing_time", result.ProcessingTime),
		zap.Float64("confidence", confidence))
	return result
}

// Status implements provider.Provider.
func (p *Provider) Status() map[string]interface{} {
	return map[string]interface{}{
		"model":                    p.config.Model,
		"base_url":                 p.config.BaseURL,
		"api_key_configured":       p.config.APIKey != "",
		"force_language":           p.config.ForceLanguage,
		provider.StatusInitialized: p.guard.Done(),
		provider.StatusCacheSize:   p.cache.Len(),
	}
}

// ClearCache implements provider.Provider.
func (p *Provider) ClearCache() {
	p.cache.Clear()
	p.logger.Info("Cache cleared")
}

func (p *Provider) engineLanguage(language string) string {
	if p.config.ForceLanguage != "" {
		return p.config.ForceLanguage
	}
	return BaseLanguage(language)
}

func (p *Provider) resultLanguage(requested, detected string) string {
	if p.config.ReportLanguage != "" {
		return p.config.ReportLanguage
	}
	if code := NormalizeLanguage(detected); code != "" {
		return code
	}
	return requested
}

// handleAPIError maps API failures onto error sentinels.
func (p *Provider) handleAPIError(err error) error {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return errors.Wrap(errors.ErrInvalidAPIKey, apiErr.Message)
		case http.StatusRequestEntityTooLarge:
			return errors.Wrap(errors.ErrFileTooLarge, apiErr.Message)
		case http.StatusBadRequest:
			return errors.Wrap(errors.ErrUnsupportedFormat, apiErr.Message)
		default:
			return errors.Wrapf(errors.ErrRequestFailed, "status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
	}
	var reqErr *openai.RequestError
	if stderrors.As(err, &reqErr) {
		return errors.Wrapf(errors.ErrRequestFailed, "status %d: %v", reqErr.HTTPStatusCode, reqErr.Err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrProviderTimeout, err.Error())
	}
	return errors.Wrap(errors.ErrRequestFailed, err.Error())
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
