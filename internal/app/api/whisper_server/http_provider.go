package whisper_server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"media-transcriber/internal/app/api/openai/whisper"
	"media-transcriber/internal/app/api/provider"
	"media-transcriber/internal/app/common"
	"media-transcriber/internal/app/errors"
)

// DefaultName is the registry name used by the default configuration.
const DefaultName = "whisper-server"

// Config configures a whisper.cpp server (examples/server) endpoint.
type Config struct {
	Name          string
	BaseURL       string
	InferencePath string
	Timeout       time.Duration
	// Language overrides the request language when set.
	Language      string
	Prompt        string
	Temperature   float64
	Translate     bool
	MaxLength     int
	CustomHeaders map[string]string
	// DefaultConfidence is used when the server returns no scores.
	DefaultConfidence float64
	// HealthCheck probes the base URL during Initialize.
	HealthCheck bool
}

// Response is the verbose_json body returned by /inference.
type Response struct {
	Text     string    `json:"text"`
	Task     string    `json:"task,omitempty"`
	Language string    `json:"language,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
}

// Segment is one entry of Response.Segments.
type Segment struct {
	ID           int     `json:"id"`
	Text         string  `json:"text"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Words        []Word  `json:"words,omitempty"`
	AvgLogprob   float64 `json:"avg_logprob,omitempty"`
	NoSpeechProb float64 `json:"no_speech_prob,omitempty"`
}

// Word is a word-level timestamp with its probability.
type Word struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability,omitempty"`
}

// Provider posts media files to a remote whisper server.
type Provider struct {
	config Config
	client *http.Client
	logger *zap.Logger

	guard provider.InitGuard
	cache *provider.ResultCache
}

// NewProvider creates a whisper server provider.
func NewProvider(config Config, logger *zap.Logger) *Provider {
	if config.Name == "" {
		config.Name = DefaultName
	}
	if config.InferencePath == "" {
		config.InferencePath = "/inference"
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Minute
	}
	if config.DefaultConfidence == 0 {
		config.DefaultConfidence = 0.8
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Provider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: common.OrNop(logger),
		cache:  provider.NewResultCache(),
	}
}

func (p *Provider) Name() string {
	return p.config.Name
}

// Initialize requires a base URL and optionally checks the server answers.
func (p *Provider) Initialize(ctx context.Context) error {
	return p.guard.Do(func() error {
		if p.config.BaseURL == "" {
			return errors.RequiredField("base_url")
		}
		if p.config.HealthCheck {
			if err := p.healthCheck(ctx); err != nil {
				return err
			}
		}
		p.logger.Info("Whisper server provider initialized", zap.String("base_url", p.config.BaseURL))
		return nil
	})
}

func (p *Provider) healthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.BaseURL+"/", nil)
	if err != nil {
		return err
	}
	p.setHeaders(req)
	resp, err := p.client.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrRequestFailed, err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(errors.ErrRequestFailed, "health check failed with status %d", resp.StatusCode)
	}
	return nil
}

// Transcribe implements provider.Provider.
func (p *Provider) Transcribe(ctx context.Context, filePath string, language string) *provider.TranscriptionResult {
	if err := p.Initialize(ctx); err != nil {
		p.logger.Error("Whisper server provider not initialized", zap.Error(err))
		return provider.NewFailedResult(p.config.Name, language, 0, errors.Wrap(errors.ErrNotInitialized, err.Error()))
	}
	return p.cache.Transcribe(filePath, p.config.Name, language, func() *provider.TranscriptionResult {
		return p.transcribe(ctx, filePath, language)
	})
}

func (p *Provider) transcribe(ctx context.Context, filePath, language string) *provider.TranscriptionResult {
	start := time.Now()
	name := filepath.Base(filePath)
	fail := func(err error) *provider.TranscriptionResult {
		err = errors.Wrapf(err, "whisper server transcription failed for %s", name)
		p.logger.Error("Whisper server transcription failed", zap.Error(err))
		return provider.NewFailedResult(p.config.Name, language, time.Since(start), err)
	}

	body, contentType, err := p.createMultipartForm(filePath, language)
	if err != nil {
		return fail(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+p.config.InferencePath, body)
	if err != nil {
		return fail(err)
	}
	req.Header.Set("Content-Type", contentType)
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			return fail(errors.Timeout("whisper server", p.config.Timeout.String()))
		}
		return fail(errors.Wrap(errors.ErrRequestFailed, err.Error()))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(errors.Wrap(errors.ErrResponseInvalid, err.Error()))
	}
	if resp.StatusCode != http.StatusOK {
		return fail(errors.Wrapf(errors.ErrRequestFailed, "server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}

	var parsed Response
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fail(errors.Wrap(errors.ErrResponseInvalid, err.Error()))
	}
	text := strings.TrimSpace(parsed.Text)
	if text == "" {
		return fail(errors.ErrEmptyTranscription)
	}

	segments := make([]provider.Segment, 0, len(parsed.Segments))
	for _, s := range parsed.Segments {
		segments = append(segments, provider.Segment{
			Start:      s.Start,
			End:        s.End,
			Text:       strings.TrimSpace(s.Text),
			Confidence: SegmentConfidence(s, p.config.DefaultConfidence),
		})
	}

	resultLanguage := language
	if resultLanguage == "" {
		resultLanguage = whisper.NormalizeLanguage(parsed.Language)
	}
	result := &provider.TranscriptionResult{
		Text:           text,
		Confidence:     EstimateConfidence(parsed.Segments, p.config.DefaultConfidence),
		ProcessingTime: time.Since(start),
		ModelUsed:      p.config.Name,
		Language:       resultLanguage,
		Segments:       provider.NormalizeSegments(segments),
	}
	p.logger.Info("Whisper server transcription completed",
		zap.String("file", name),
		zap.Duration("processing_time", result.ProcessingTime),
		zap.Float64("confidence", result.Confidence))
	return result
}

func (p *Provider) createMultipartForm(filePath, language string) (*bytes.Buffer, string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, "", errors.Wrapf(errors.ErrFileNotFound, "%s", filePath)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", errors.Wrap(errors.ErrFileReadFailed, err.Error())
	}

	fields := [][2]string{
		{"response_format", "verbose_json"},
		{"temperature", fmt.Sprintf("%.2f", p.config.Temperature)},
	}
	lang := p.config.Language
	if lang == "" {
		lang = whisper.BaseLanguage(language)
	}
	if lang != "" {
		fields = append(fields, [2]string{"language", lang})
	}
	if p.config.Prompt != "" {
		fields = append(fields, [2]string{"prompt", p.config.Prompt})
	}
	if p.config.Translate {
		fields = append(fields, [2]string{"translate", "true"})
	}
	if p.config.MaxLength > 0 {
		fields = append(fields, [2]string{"max_len", strconv.Itoa(p.config.MaxLength)})
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func (p *Provider) setHeaders(req *http.Request) {
	for k, v := range p.config.CustomHeaders {
		req.Header.Set(k, v)
	}
}

// Status implements provider.Provider.
func (p *Provider) Status() map[string]interface{} {
	return map[string]interface{}{
		"base_url":                 p.config.BaseURL,
		"language":                 p.config.Language,
		"timeout":                  p.config.Timeout.Seconds(),
		provider.StatusInitialized: p.guard.Done(),
		provider.StatusCacheSize:   p.cache.Len(),
	}
}

// ClearCache implements provider.Provider.
func (p *Provider) ClearCache() {
	p.cache.Clear()
	p.logger.Info("Whisper server cache cleared")
}

// SegmentConfidence prefers word probabilities, then the segment log
// probability, then def.
func SegmentConfidence(s Segment, def float64) float64 {
	if len(s.Words) > 0 {
		var sum float64
		var n int
		for _, w := range s.Words {
			if w.Probability > 0 {
				sum += w.Probability
				n++
			}
		}
		if n > 0 {
			return provider.ClampConfidence(sum / float64(n))
		}
	}
	return whisper.SegmentScore{AvgLogprob: s.AvgLogprob, NoSpeechProb: s.NoSpeechProb}.Confidence(def)
}

// EstimateConfidence averages segment confidences, or returns def when the
// response has no segments.
func EstimateConfidence(segments []Segment, def float64) float64 {
	if len(segments) == 0 {
		return def
	}
	var sum float64
	for _, s := range segments {
		sum += SegmentConfidence(s, def)
	}
	return sum / float64(len(segments))
}
