package gemini

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"media-transcriber/internal/app/api/provider"
	"media-transcriber/internal/app/audio"
	"media-transcriber/internal/app/common"
	"media-transcriber/internal/app/errors"
)

// DefaultName is the registry name used by the default configuration.
const DefaultName = "gemini-hybrid"

// ContentGenerator is the subset of *genai.Models used here.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// FileService is the subset of *genai.Files used for video uploads.
type FileService interface {
	UploadFromPath(ctx context.Context, path string, config *genai.UploadFileConfig) (*genai.File, error)
	Get(ctx context.Context, name string, config *genai.GetFileConfig) (*genai.File, error)
}

// ClientFactory builds the API handles during Initialize.
type ClientFactory func(ctx context.Context, apiKey string) (ContentGenerator, FileService, error)

// Config configures the Gemini provider.
type Config struct {
	Name           string
	APIKey         string
	Model          string
	VideoTimeout   time.Duration
	MaxVideoSizeMB int
	PollInterval   time.Duration
	AudioPrompt    string
	VideoPrompt    string
}

// Provider transcribes audio inline and video through the Files API.
type Provider struct {
	config    Config
	newClient ClientFactory
	logger    *zap.Logger

	models ContentGenerator
	files  FileService

	guard provider.InitGuard
	cache *provider.ResultCache
}

// Option customizes a Provider.
type Option func(*Provider)

// WithClientFactory replaces the genai client constructor, used by tests.
func WithClientFactory(f ClientFactory) Option {
	return func(p *Provider) { p.newClient = f }
}

// NewProvider creates a Gemini provider. The API client is built lazily.
func NewProvider(config Config, logger *zap.Logger, opts ...Option) *Provider {
	if config.Name == "" {
		config.Name = DefaultName
	}
	if config.Model == "" {
		config.Model = "gemini-2.0-flash"
	}
	if config.VideoTimeout <= 0 {
		config.VideoTimeout = 300 * time.Second
	}
	if config.MaxVideoSizeMB <= 0 {
		config.MaxVideoSizeMB = 200
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 2 * time.Second
	}
	if config.AudioPrompt == "" {
		config.AudioPrompt = DefaultAudioPrompt
	}
	if config.VideoPrompt == "" {
		config.VideoPrompt = DefaultVideoPrompt
	}

	logger = common.OrNop(logger)
	if config.APIKey == "" {
		logger.Warn("Gemini API key is not configured, provider will not function")
	}

	p := &Provider{
		config:    config,
		newClient: newGenAIClient,
		logger:    logger,
		cache:     provider.NewResultCache(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func newGenAIClient(ctx context.Context, apiKey string) (ContentGenerator, FileService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, nil, err
	}
	return client.Models, client.Files, nil
}

func (p *Provider) Name() string {
	return p.config.Name
}

// Initialize builds the API client. It fails without an API key.
func (p *Provider) Initialize(ctx context.Context) error {
	return p.guard.Do(func() error {
		if p.config.APIKey == "" {
			return errors.Wrap(errors.ErrMissingAPIKey, "gemini")
		}
		models, files, err := p.newClient(ctx, p.config.APIKey)
		if err != nil {
			return errors.Wrap(err, "failed to create gemini client")
		}
		p.models, p.files = models, files
		p.logger.Info("Gemini provider initialized", zap.String("model", p.config.Model))
		return nil
	})
}

// Transcribe routes audio files to inline generation and video files to the
// upload flow. Other media types fail.
func (p *Provider) Transcribe(ctx context.Context, filePath string, language string) *provider.TranscriptionResult {
	if err := p.Initialize(ctx); err != nil {
		p.logger.Error("Gemini provider not initialized", zap.Error(err))
		return provider.NewFailedResult(p.config.Name, language, 0,
			errors.Wrap(errors.ErrNotInitialized, "gemini provider not initialized due to missing API key or error"))
	}

	return p.cache.Transcribe(filePath, p.config.Name, language, func() *provider.TranscriptionResult {
		mediaType := audio.DetectMIME(filePath)
		switch {
		case audio.IsAudioMIME(mediaType):
			return p.transcribeAudio(ctx, filePath, mediaType, language)
		case audio.IsVideoMIME(mediaType):
			return p.transcribeVideo(ctx, filePath, mediaType, language)
		default:
			err := errors.Wrapf(errors.ErrUnsupportedFormat, "unsupported file type for gemini transcription: %s", filepath.Ext(filePath))
			p.logger.Error("Unsupported file type", zap.String("file", filePath), zap.String("mime", mediaType))
			return provider.NewFailedResult(p.config.Name, language, 0, err)
		}
	})
}

func (p *Provider) transcribeAudio(ctx context.Context, filePath, mediaType, language string) *provider.TranscriptionResult {
	start := time.Now()
	modelUsed := p.config.Name + "-audio"
	name := filepath.Base(filePath)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return p.fail(modelUsed, language, start, errors.Wrap(errors.ErrFileReadFailed, err.Error()), name)
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.VideoTimeout)
	defer cancel()

	parts := []*genai.Part{
		genai.NewPartFromText(p.config.AudioPrompt),
		genai.NewPartFromBytes(data, mediaType),
	}
	text, err := p.generate(ctx, parts)
	if err != nil {
		return p.fail(modelUsed, language, start, err, name)
	}
	return p.succeed(modelUsed, language, start, text, name)
}

func (p *Provider) transcribeVideo(ctx context.Context, filePath, mediaType, language string) *provider.TranscriptionResult {
	start := time.Now()
	modelUsed := p.config.Name + "-video"
	name := filepath.Base(filePath)

	if err := p.validateVideo(filePath); err != nil {
		return p.fail(modelUsed, language, start, err, name)
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.VideoTimeout)
	defer cancel()

	file, err := p.uploadVideo(ctx, filePath, mediaType)
	if err != nil {
		return p.fail(modelUsed, language, start, err, name)
	}

	fileMIME := file.MIMEType
	if fileMIME == "" {
		fileMIME = mediaType
	}
	parts := []*genai.Part{
		genai.NewPartFromText(p.config.VideoPrompt),
		genai.NewPartFromURI(file.URI, fileMIME),
	}
	text, err := p.generate(ctx, parts)
	if err != nil {
		return p.fail(modelUsed, language, start, err, name)
	}
	return p.succeed(modelUsed, language, start, text, name)
}

func (p *Provider) generate(ctx context.Context, parts []*genai.Part) (string, error) {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := p.models.GenerateContent(ctx, p.config.Model, contents, nil)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", errors.Timeout("gemini transcription", p.config.VideoTimeout.String())
		}
		return "", errors.Wrap(errors.ErrRequestFailed, err.Error())
	}
	if resp == nil {
		return "", errors.Wrap(errors.ErrResponseInvalid, "no response from gemini")
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.Wrap(errors.ErrEmptyTranscription, "no text response from gemini")
	}
	return text, nil
}

// validateVideo checks existence, size and container format.
func (p *Provider) validateVideo(filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return errors.Wrapf(errors.ErrFileNotFound, "video file does not exist: %s", filePath)
	}
	sizeMB := float64(info.Size()) / (1024 * 1024)
	if sizeMB > float64(p.config.MaxVideoSizeMB) {
		return errors.Wrapf(errors.ErrFileTooLarge, "video file too large: %.1fMB > %dMB", sizeMB, p.config.MaxVideoSizeMB)
	}
	if !audio.IsSupportedVideo(filePath) {
		return errors.Wrapf(errors.ErrUnsupportedFormat, "unsupported video format: %s", filepath.Ext(filePath))
	}
	return nil
}

// uploadVideo uploads the file and polls until Gemini finishes processing it.
func (p *Provider) uploadVideo(ctx context.Context, filePath, mediaType string) (*genai.File, error) {
	file, err := p.files.UploadFromPath(ctx, filePath, &genai.UploadFileConfig{MIMEType: mediaType})
	if err != nil {
		return nil, errors.Wrap(errors.ErrRequestFailed, fmt.Sprintf("failed to upload video to gemini: %v", err))
	}

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()
	for file.State == genai.FileStateProcessing {
		p.logger.Info("Waiting for video processing by Gemini", zap.String("file", file.Name))
		select {
		case <-ctx.Done():
			return nil, errors.Timeout("gemini video processing", p.config.VideoTimeout.String())
		case <-ticker.C:
		}
		file, err = p.files.Get(ctx, file.Name, nil)
		if err != nil {
			return nil, errors.Wrap(errors.ErrRequestFailed, fmt.Sprintf("failed to poll video state: %v", err))
		}
	}

	if file.State == genai.FileStateFailed {
		return nil, errors.Wrapf(errors.ErrMediaProcessFailed, "video processing failed: %s", file.State)
	}
	return file, nil
}

func (p *Provider) succeed(modelUsed, language string, start time.Time, text, name string) *provider.TranscriptionResult {
	confidence := EstimateConfidence(text)
	result := &provider.TranscriptionResult{
		Text:           text,
		Confidence:     confidence,
		ProcessingTime: time.Since(start),
		ModelUsed:      modelUsed,
		Language:       language,
	}
	p.logger.Info("Gemini transcription completed",
		zap.String("file", name),
		zap.String("model", modelUsed),
		zap.Float64("confidence", confidence))
	return result
}

func (p *Provider) fail(modelUsed, language string, start time.Time, err error, name string) *provider.TranscriptionResult {
	err = errors.Wrapf(err, "gemini transcription failed for %s", name)
	p.logger.Error("Gemini transcription failed", zap.String("model", modelUsed), zap.Error(err))
	return provider.NewFailedResult(modelUsed, language, time.Since(start), err)
}

// Status implements provider.Provider.
func (p *Provider) Status() map[string]interface{} {
	return map[string]interface{}{
		"model_name":               p.config.Model,
		"api_key_configured":       p.config.APIKey != "",
		"video_timeout":            p.config.VideoTimeout.Seconds(),
		"max_video_size_mb":        p.config.MaxVideoSizeMB,
		provider.StatusInitialized: p.guard.Done(),
		provider.StatusCacheSize:   p.cache.Len(),
	}
}

// ClearCache implements provider.Provider.
func (p *Provider) ClearCache() {
	p.cache.Clear()
	p.logger.Info("Gemini cache cleared")
}
