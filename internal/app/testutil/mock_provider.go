package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"media-transcriber/internal/app/api/provider"
)

// MockProvider is a testify mock of provider.Provider.
type MockProvider struct {
	mock.Mock
	ProviderName string
}

// NewMockProvider creates a MockProvider whose Name returns name.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{ProviderName: name}
}

func (m *MockProvider) Initialize(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockProvider) Transcribe(ctx context.Context, filePath string, language string) *provider.TranscriptionResult {
	args := m.Called(ctx, filePath, language)
	if r, ok := args.Get(0).(*provider.TranscriptionResult); ok {
		return r
	}
	return nil
}

func (m *MockProvider) Name() string {
	return m.ProviderName
}

func (m *MockProvider) Status() map[string]interface{} {
	args := m.Called()
	if s, ok := args.Get(0).(map[string]interface{}); ok {
		return s
	}
	return nil
}

func (m *MockProvider) ClearCache() {
	m.Called()
}

// FakeProvider is a scripted provider with a real ResultCache. Each call to
// Transcribe that misses the cache invokes Respond.
type FakeProvider struct {
	ProviderName string
	Respond      func(filePath, language string) *provider.TranscriptionResult
	InitErr      error

	mu          sync.Mutex
	initCalls   int
	engineCalls int
	guard       provider.InitGuard
	cache       *provider.ResultCache
}

// NewFakeProvider returns a provider that always produces text at confidence.
func NewFakeProvider(name, text string, confidence float64) *FakeProvider {
	return &FakeProvider{
		ProviderName: name,
		Respond: func(filePath, language string) *provider.TranscriptionResult {
			return &provider.TranscriptionResult{
				Text:       text,
				Confidence: confidence,
				ModelUsed:  name,
				Language:   language,
			}
		},
		cache: provider.NewResultCache(),
	}
}

// NewFailingFakeProvider returns a provider whose attempts always fail.
func NewFailingFakeProvider(name, message string) *FakeProvider {
	p := NewFakeProvider(name, "", 0)
	p.Respond = func(filePath, language string) *provider.TranscriptionResult {
		return &provider.TranscriptionResult{ModelUsed: name, Language: language, Error: message}
	}
	return p
}

func (p *FakeProvider) Initialize(ctx context.Context) error {
	return p.guard.Do(func() error {
		p.mu.Lock()
		p.initCalls++
		err := p.InitErr
		p.mu.Unlock()
		return err
	})
}

func (p *FakeProvider) Transcribe(ctx context.Context, filePath string, language string) *provider.TranscriptionResult {
	return p.cache.Transcribe(filePath, p.ProviderName, language, func() *provider.TranscriptionResult {
		p.mu.Lock()
		p.engineCalls++
		p.mu.Unlock()
		return p.Respond(filePath, language)
	})
}

func (p *FakeProvider) Name() string {
	return p.ProviderName
}

func (p *FakeProvider) Status() map[string]interface{} {
	return map[string]interface{}{
		provider.StatusInitialized: p.guard.Done(),
		provider.StatusCacheSize:   p.cache.Len(),
	}
}

func (p *FakeProvider) ClearCache() {
	p.cache.Clear()
}

// SetInitErr changes the error returned by the next initialization attempt.
func (p *FakeProvider) SetInitErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.InitErr = err
}

// InitCalls returns how many times initialization actually ran.
func (p *FakeProvider) InitCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initCalls
}

// EngineCalls returns how many transcriptions missed the cache.
func (p *FakeProvider) EngineCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engineCalls
}

// WriteMediaFile writes content to name inside a test temp dir.
func WriteMediaFile(t testing.TB, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}
