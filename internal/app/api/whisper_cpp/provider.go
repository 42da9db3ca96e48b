package whisper_cpp

import (
	"context"
	stderrors "errors"
	"os"
	"os/exec"
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
const DefaultName = "whisper-cpp"

// PrepareFunc turns an input file into something whisper.cpp can read,
// normally a 16kHz mono wav. The returned cleanup releases any file it
// created and runs once the transcription finishes.
type PrepareFunc func(ctx context.Context, inputPath string) (string, func(), error)

// Config configures a local whisper.cpp binary.
type Config struct {
	Name       string
	BinaryPath string
	ModelPath  string
	// Language is passed with -l. Empty means the request language.
	Language string
	Prompt   string
	Threads  int
	// DefaultConfidence is used when the output has no token probabilities.
	DefaultConfidence float64
	Timeout           time.Duration
	// TempDir holds the JSON output files and converted WAVs.
	TempDir string
}

// Provider runs the whisper.cpp CLI and reads its JSON output.
type Provider struct {
	config  Config
	prepare PrepareFunc
	logger  *zap.Logger

	guard provider.InitGuard
	cache *provider.ResultCache
}

// Option customizes a Provider.
type Option func(*Provider)

// WithPrepare sets the audio preparation step.
func WithPrepare(fn PrepareFunc) Option {
	return func(p *Provider) { p.prepare = fn }
}

// NewProvider creates a whisper.cpp provider. Without WithPrepare the input
// file is passed to the binary unchanged.
func NewProvider(config Config, logger *zap.Logger, opts ...Option) *Provider {
	if config.Name == "" {
		config.Name = DefaultName
	}
	if config.DefaultConfidence == 0 {
		config.DefaultConfidence = 0.75
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Minute
	}

	p := &Provider{
		config: config,
		prepare: func(_ context.Context, inputPath string) (string, func(), error) {
			return inputPath, func() {}, nil
		},
		logger: common.OrNop(logger),
		cache:  provider.NewResultCache(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return p.config.Name
}

// Initialize verifies the binary and the model file exist.
func (p *Provider) Initialize(ctx context.Context) error {
	return p.guard.Do(func() error {
		if p.config.BinaryPath == "" {
			return errors.RequiredField("binary_path")
		}
		if p.config.ModelPath == "" {
			return errors.RequiredField("model_path")
		}
		if _, err := exec.LookPath(p.config.BinaryPath); err != nil {
			return errors.Wrapf(errors.ErrFileNotFound, "whisper.cpp binary not found: %s", p.config.BinaryPath)
		}
		if _, err := os.Stat(p.config.ModelPath); err != nil {
			return errors.Wrapf(errors.ErrFileNotFound, "whisper.cpp model not found: %s", p.config.ModelPath)
		}
		p.logger.Info("whisper.cpp provider initialized",
			zap.String("binary", p.config.BinaryPath),
			zap.String("model", filepath.Base(p.config.ModelPath)))
		return nil
	})
}

// Transcribe implements provider.Provider.
func (p *Provider) Transcribe(ctx context.Context, filePath string, language string) *provider.TranscriptionResult {
	if err := p.Initialize(ctx); err != nil {
		p.logger.Error("whisper.cpp provider not initialized", zap.Error(err))
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
		err = errors.Wrapf(err, "whisper.cpp transcription failed for %s", name)
		p.logger.Error("whisper.cpp transcription failed", zap.Error(err))
		return provider.NewFailedResult(p.config.Name, language, time.Since(start), err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	input, release, err := p.prepare(ctx, filePath)
	if err != nil {
		return fail(errors.Wrap(errors.ErrMediaProcessFailed, err.Error()))
	}
	if release != nil {
		defer release()
	}

	outDir, err := os.MkdirTemp(p.config.TempDir, "whisper-cpp-")
	if err != nil {
		return fail(err)
	}
	defer os.RemoveAll(outDir)
	outBase := filepath.Join(outDir, "out")

	cmd := exec.CommandContext(ctx, p.config.BinaryPath, p.args(input, outBase, language)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fail(errors.Timeout("whisper.cpp", p.config.Timeout.String()))
		}
		return fail(errors.Wrapf(errors.ErrRequestFailed, "whisper.cpp exited: %v: %s", err, lastLine(output)))
	}

	out, err := readOutput(outBase + ".json")
	if err != nil {
		return fail(errors.Wrap(errors.ErrResponseInvalid, err.Error()))
	}
	text := out.text()
	if text == "" {
		return fail(errors.ErrEmptyTranscription)
	}

	segments, probs := out.segments(p.config.DefaultConfidence)
	resultLanguage := language
	if out.Result.Language != "" && language == "" {
		resultLanguage = out.Result.Language
	}

	result := &provider.TranscriptionResult{
		Text:           text,
		Confidence:     EstimateConfidence(probs, p.config.DefaultConfidence),
		ProcessingTime: time.Since(start),
		ModelUsed:      p.config.Name,
		Language:       resultLanguage,
		Segments:       provider.NormalizeSegments(segments),
	}
	p.logger.Info("whisper.cpp transcription completed",
		zap.String("file", name),
		zap.Int("segments", len(segments)),
		zap.Duration("processing_time", result.ProcessingTime),
		zap.Float64("confidence", result.Confidence))
	return result
}

func (p *Provider) args(input, outBase, language string) []string {
	lang := p.config.Language
	if lang == "" {
		lang = whisper.BaseLanguage(language)
	}
	if lang == "" {
		lang = "auto"
	}

	args := []string{
		"-m", p.config.ModelPath,
		"-l", lang,
		"-f", input,
		"-ojf",
		"-of", outBase,
		"-np",
	}
	if p.config.Prompt != "" {
		args = append(args, "--prompt", p.config.Prompt)
	}
	if p.config.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(p.config.Threads))
	}
	return args
}

// Status implements provider.Provider.
func (p *Provider) Status() map[string]interface{} {
	return map[string]interface{}{
		"binary_path":              p.config.BinaryPath,
		"model_path":               p.config.ModelPath,
		"language":                 p.config.Language,
		provider.StatusInitialized: p.guard.Done(),
		provider.StatusCacheSize:   p.cache.Len(),
	}
}

// ClearCache implements provider.Provider.
func (p *Provider) ClearCache() {
	p.cache.Clear()
	p.logger.Info("whisper.cpp cache cleared")
}

func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	return lines[len(lines)-1]
}
