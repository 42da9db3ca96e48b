package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"media-transcriber/internal/app/common"
)

// CommandRunner executes an external tool and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s error: %v, stderr: %s", filepath.Base(name), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// probeOutput is the subset of `ffprobe -print_format json` we read.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Duration   string `json:"duration"`
	} `json:"streams"`
}

// Prober wraps ffprobe/ffmpeg.
type Prober struct {
	ffprobePath string
	ffmpegPath  string
	tempDir     string
	run         CommandRunner
	logger      *zap.Logger
}

// ProberOption customizes a Prober.
type ProberOption func(*Prober)

// WithRunner replaces the process runner, used by tests.
func WithRunner(run CommandRunner) ProberOption {
	return func(p *Prober) { p.run = run }
}

// WithFFmpegPath sets the ffmpeg executable used for conversions.
func WithFFmpegPath(path string) ProberOption {
	return func(p *Prober) {
		if path != "" {
			p.ffmpegPath = path
		}
	}
}

// WithTempDir sets the parent directory for converted files. Empty means the
// system temp directory.
func WithTempDir(dir string) ProberOption {
	return func(p *Prober) { p.tempDir = dir }
}

// NewProber creates a prober. An empty ffprobePath means "ffprobe" on PATH.
func NewProber(ffprobePath string, logger *zap.Logger, opts ...ProberOption) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	p := &Prober{
		ffprobePath: ffprobePath,
		ffmpegPath:  "ffmpeg",
		run:         execRunner,
		logger:      common.OrNop(logger),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Prober) probe(ctx context.Context, filePath string) (*probeOutput, error) {
	out, err := p.run(ctx, p.ffprobePath, "-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", filePath)
	if err != nil {
		return nil, err
	}
	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &parsed, nil
}

// Duration returns the media duration in seconds. It reads the container
// duration first and falls back to the first audio stream. Any failure is
// logged and reported as 0.
func (p *Prober) Duration(ctx context.Context, filePath string) float64 {
	parsed, err := p.probe(ctx, filePath)
	if err != nil {
		p.logger.Error("Error getting audio duration", zap.String("file", filePath), zap.Error(err))
		return 0
	}

	if d, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
		return d
	}
	for _, stream := range parsed.Streams {
		if stream.CodecType != "audio" {
			continue
		}
		if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
			return d
		}
	}

	p.logger.Warn("Could not get audio duration", zap.String("file", filePath))
	return 0
}

// Is16kHzWavFile reports whether the file already has a 16 kHz PCM stream.
func (p *Prober) Is16kHzWavFile(ctx context.Context, filePath string) (bool, error) {
	parsed, err := p.probe(ctx, filePath)
	if err != nil {
		return false, err
	}
	for _, stream := range parsed.Streams {
		if stream.CodecType == "audio" && stream.CodecName == "pcm_s16le" && stream.SampleRate == "16000" {
			return true, nil
		}
	}
	return false, nil
}

// ConvertTo16kHzWav converts the input into a fresh temporary directory and
// returns the WAV path with a cleanup func that removes the directory.
func (p *Prober) ConvertTo16kHzWav(ctx context.Context, inputPath string) (string, func(), error) {
	dir, err := os.MkdirTemp(p.tempDir, "wav16k-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create conversion directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	base := filepath.Base(inputPath)
	outputPath := filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+"_16khz.wav")

	p.logger.Info("Converting to 16kHz wav", zap.String("file", inputPath))
	if _, err := p.run(ctx, p.ffmpegPath, "-y", "-i", inputPath, "-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1", outputPath); err != nil {
		cleanup()
		return "", nil, err
	}
	return outputPath, cleanup, nil
}

// PrepareWav returns a path whisper.cpp can read: the input itself when it is
// already 16 kHz PCM, otherwise a converted copy. The cleanup func is never
// nil and must be called once the path is no longer needed.
func (p *Prober) PrepareWav(ctx context.Context, inputPath string) (string, func(), error) {
	ok, err := p.Is16kHzWavFile(ctx, inputPath)
	if err == nil && ok {
		return inputPath, func() {}, nil
	}
	return p.ConvertTo16kHzWav(ctx, inputPath)
}
