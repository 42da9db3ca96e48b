package provider_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"media-transcriber/internal/app/api/provider"
	"media-transcriber/internal/app/testutil"
)

func newManager(primary string, threshold float64, fallbacks ...string) *provider.Manager {
	return provider.NewManager(provider.StaticRouting{
		Primary:             primary,
		Fallbacks:           fallbacks,
		ConfidenceThreshold: threshold,
	})
}

func TestManagerFirstAcceptableWins(t *testing.T) {
	file := testutil.WriteMediaFile(t, "clip.wav", []byte("audio-1"))
	m := newManager("a", 0.6, "b", "c")

	a := testutil.NewFakeProvider("a", "low", 0.5)
	b := testutil.NewFakeProvider("b", "good", 0.7)
	c := testutil.NewFakeProvider("c", "better", 0.99)
	m.Register("a", a)
	m.Register("b", b)
	m.Register("c", c)

	result := m.Transcribe(context.Background(), file, "pt")

	require.NotNil(t, result)
	assert.Equal(t, "good", result.Text)
	assert.Equal(t, "b", result.ModelUsed)
	assert.Equal(t, 1, a.EngineCalls())
	assert.Equal(t, 1, b.EngineCalls())
	assert.Equal(t, 0, c.EngineCalls(), "providers after the accepted one must not run")
}

func TestManagerThresholdBoundaryIsInclusive(t *testing.T) {
	file := testutil.WriteMediaFile(t, "clip.wav", []byte("audio-2"))
	m := newManager("a", 0.6, "b")

	a := testutil.NewFakeProvider("a", "exact", 0.6)
	b := testutil.NewFakeProvider("b", "unused", 0.9)
	m.Register("a", a)
	m.Register("b", b)

	result := m.Transcribe(context.Background(), file, "pt")

	assert.Equal(t, "exact", result.Text)
	assert.Equal(t, 0, b.EngineCalls())
}

func TestManagerExhaustionShape(t *testing.T) {
	file := testutil.WriteMediaFile(t, "clip.wav", []byte("audio-3"))
	m := newManager("ghost", 0.6, "broken", "weak")

	m.Register("broken", testutil.NewFailingFakeProvider("broken", "engine crashed"))
	m.Register("weak", testutil.NewFakeProvider("weak", "meh", 0.2))

	result := m.Transcribe(context.Background(), file, "xx-unusual")

	require.NotNil(t, result)
	assert.Equal(t, "", result.Text)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Zero(t, result.ProcessingTime)
	assert.Equal(t, provider.ModelUsedNone, result.ModelUsed)
	assert.Equal(t, "xx-unusual", result.Language)
	assert.Equal(t, provider.ExhaustedMessage, result.Error)
	assert.True(t, result.Failed())
}

func TestManagerEmptyRegistryExhausts(t *testing.T) {
	m := newManager("distil-whisper-pt", 0.6, "faster-whisper", "gemini-hybrid")

	result := m.Transcribe(context.Background(), "/nonexistent.wav", "pt")

	assert.Equal(t, provider.ModelUsedNone, result.ModelUsed)
	assert.Equal(t, "pt", result.Language)
	assert.NotEmpty(t, result.Error)
}

func TestManagerSkipsFailedInitialization(t *testing.T) {
	file := testutil.WriteMediaFile(t, "clip.wav", []byte("audio-4"))
	m := newManager("a", 0.6, "b")

	a := testutil.NewFakeProvider("a", "never", 0.9)
	a.InitErr = errors.New("model missing")
	b := testutil.NewFakeProvider("b", "fallback", 0.8)
	m.Register("a", a)
	m.Register("b", b)

	result := m.Transcribe(context.Background(), file, "pt")

	assert.Equal(t, "fallback", result.Text)
	assert.Equal(t, 0, a.EngineCalls())
	assert.False(t, m.IsInitialized("a"))
	assert.True(t, m.IsInitialized("b"))
}

func TestManagerInitializationRetry(t *testing.T) {
	m := newManager("a", 0.6)
	a := testutil.NewFakeProvider("a", "text", 0.9)
	a.InitErr = errors.New("server not up yet")
	m.Register("a", a)

	assert.False(t, m.EnsureInitialized(context.Background(), "a"))
	assert.Equal(t, 1, a.InitCalls())

	a.SetInitErr(nil)
	assert.True(t, m.EnsureInitialized(context.Background(), "a"))
	assert.Equal(t, 2, a.InitCalls())

	assert.True(t, m.EnsureInitialized(context.Background(), "a"))
	assert.Equal(t, 2, a.InitCalls(), "initialized providers are not initialized again")
}

func TestManagerEnsureInitializedUnregistered(t *testing.T) {
	m := newManager("a", 0.6)
	assert.False(t, m.EnsureInitialized(context.Background(), "missing"))
}

func TestManagerEnsureInitializedSkipsProviderCallWhenMarked(t *testing.T) {
	m := newManager("a", 0.6)
	p := testutil.NewMockProvider("a")
	p.On("Initialize", mock.Anything).Return(nil).Once()
	m.Register("a", p)

	assert.True(t, m.EnsureInitialized(context.Background(), "a"))
	assert.True(t, m.EnsureInitialized(context.Background(), "a"))
	p.AssertNumberOfCalls(t, "Initialize", 1)
}

func TestManagerHotSwapResetsInitialization(t *testing.T) {
	file := testutil.WriteMediaFile(t, "clip.wav", []byte("audio-5"))
	m := newManager("x", 0.6)

	first := testutil.NewFakeProvider("x", "old engine", 0.9)
	m.Register("x", first)
	require.True(t, m.EnsureInitialized(context.Background(), "x"))

	second := testutil.NewFakeProvider("x", "new engine", 0.9)
	m.Register("x", second)
	assert.False(t, m.IsInitialized("x"))

	result := m.Transcribe(context.Background(), file, "pt")
	assert.Equal(t, "new engine", result.Text)
	assert.Equal(t, 1, second.InitCalls())
	assert.Equal(t, 0, first.EngineCalls())
	assert.Equal(t, []string{"x"}, m.Names())
}

func TestManagerSwapDuringInitializationUsesInitializedReplacement(t *testing.T) {
	file := testutil.WriteMediaFile(t, "clip.wav", []byte("audio-swap"))
	m := newManager("x", 0.6)

	replacement := testutil.NewFakeProvider("x", "replacement", 0.9)
	original := testutil.NewMockProvider("x")
	original.On("Initialize", mock.Anything).Run(func(mock.Arguments) {
		m.Register("x", replacement)
	}).Return(nil).Once()
	m.Register("x", original)

	result := m.Transcribe(context.Background(), file, "pt")

	require.False(t, result.Failed(), result.Error)
	assert.Equal(t, "replacement", result.Text)
	assert.Equal(t, 1, replacement.InitCalls())
	assert.True(t, m.IsInitialized("x"))
	original.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything, mock.Anything)
	original.AssertExpectations(t)
}

func TestManagerNamesKeepRegistrationOrder(t *testing.T) {
	m := newManager("a", 0.6)
	m.Register("c", testutil.NewFakeProvider("c", "", 0))
	m.Register("a", testutil.NewFakeProvider("a", "", 0))
	m.Register("b", testutil.NewFakeProvider("b", "", 0))
	m.Register("c", testutil.NewFakeProvider("c", "", 0))

	assert.Equal(t, []string{"c", "a", "b"}, m.Names())
}

func TestManagerCachedResultAccepted(t *testing.T) {
	file := testutil.WriteMediaFile(t, "clip.wav", []byte("audio-6"))
	m := newManager("a", 0.6)
	a := testutil.NewFakeProvider("a", "cached text", 0.9)
	m.Register("a", a)

	first := m.Transcribe(context.Background(), file, "pt")
	second := m.Transcribe(context.Background(), file, "pt")

	assert.False(t, first.FromCache)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, a.EngineCalls())
}

func TestManagerClearAllCachesIsTotal(t *testing.T) {
	file := testutil.WriteMediaFile(t, "clip.wav", []byte("audio-7"))
	m := newManager("a", 0.6, "b")

	a := testutil.NewFakeProvider("a", "a text", 0.9)
	b := testutil.NewFakeProvider("b", "b text", 0.9)
	never := testutil.NewMockProvider("never")
	never.On("ClearCache").Return().Once()
	m.Register("a", a)
	m.Register("b", b)
	m.Register("never", never)

	m.Transcribe(context.Background(), file, "pt")
	require.NoError(t, b.Initialize(context.Background()))
	b.Transcribe(context.Background(), file, "pt")
	assert.Equal(t, 1, a.Status()[provider.StatusCacheSize])
	assert.Equal(t, 1, b.Status()[provider.StatusCacheSize])

	m.ClearAllCaches()

	assert.Equal(t, 0, a.Status()[provider.StatusCacheSize])
	assert.Equal(t, 0, b.Status()[provider.StatusCacheSize])
	never.AssertExpectations(t)
}

func TestManagerShutdownKeepsRegistrations(t *testing.T) {
	m := newManager("a", 0.6)
	a := testutil.NewFakeProvider("a", "x", 0.9)
	m.Register("a", a)
	require.True(t, m.EnsureInitialized(context.Background(), "a"))

	require.NoError(t, m.Shutdown(context.Background()))

	assert.Equal(t, []string{"a"}, m.Names())
	assert.True(t, m.IsInitialized("a"))
}

func TestManagerGetStatus(t *testing.T) {
	m := newManager("a", 0.6)
	m.Register("a", testutil.NewFakeProvider("a", "x", 0.9))

	status, ok := m.GetStatus("a")
	require.True(t, ok)
	assert.Contains(t, status, provider.StatusCacheSize)
	assert.Contains(t, status, provider.StatusInitialized)

	_, ok = m.GetStatus("missing")
	assert.False(t, ok)

	all := m.GetAllStatus()
	assert.Len(t, all, 1)
	assert.Contains(t, all["a"], provider.StatusCacheSize)
}

func TestManagerReadsRoutingPerCall(t *testing.T) {
	file := testutil.WriteMediaFile(t, "clip.wav", []byte("audio-8"))
	routing := &mutableRouting{cfg: provider.RoutingConfig{Primary: "a", ConfidenceThreshold: 0.6}}
	m := provider.NewManager(routing)
	m.Register("a", testutil.NewFakeProvider("a", "from a", 0.9))
	m.Register("b", testutil.NewFakeProvider("b", "from b", 0.9))

	assert.Equal(t, "from a", m.Transcribe(context.Background(), file, "pt").Text)

	routing.set(provider.RoutingConfig{Primary: "b", ConfidenceThreshold: 0.6})
	assert.Equal(t, "from b", m.Transcribe(context.Background(), file, "pt").Text)
}

func TestManagerCancelledContext(t *testing.T) {
	file := testutil.WriteMediaFile(t, "clip.wav", []byte("audio-9"))
	m := newManager("a", 0.6)
	a := testutil.NewFakeProvider("a", "x", 0.9)
	m.Register("a", a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := m.Transcribe(ctx, file, "pt")
	assert.Equal(t, provider.ModelUsedNone, result.ModelUsed)
	assert.Contains(t, result.Error, context.Canceled.Error())
	assert.Equal(t, 0, a.EngineCalls())
}

func TestManagerStatsAndMetrics(t *testing.T) {
	file := testutil.WriteMediaFile(t, "clip.wav", []byte("audio-10"))
	metrics := provider.NewProviderMetrics()
	m := provider.NewManager(provider.StaticRouting{
		Primary:             "ghost",
		Fallbacks:           []string{"weak", "good"},
		ConfidenceThreshold: 0.6,
	}, provider.WithMetrics(metrics))
	m.Register("weak", testutil.NewFakeProvider("weak", "w", 0.1))
	m.Register("good", testutil.NewFakeProvider("good", "g", 0.9))

	m.Transcribe(context.Background(), file, "pt")

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats.TotalRequests)
	assert.Equal(t, int64(1), stats.SuccessfulRequests)
	assert.Equal(t, int64(1), stats.FallbacksUsed)
	assert.Equal(t, int64(1), stats.ProviderUsage["good"])
	assert.Equal(t, int64(1), stats.SkipsByProvider["ghost"])

	assert.Equal(t, int64(1), metrics.GetProviderMetrics("ghost").FailureBreakdown[provider.FailureNotRegistered])
	assert.Equal(t, int64(1), metrics.GetProviderMetrics("weak").FailureBreakdown[provider.FailureLowConfidence])
	assert.Equal(t, int64(1), metrics.GetProviderMetrics("good").Accepted)
}

func TestManagerConcurrentTranscribe(t *testing.T) {
	file := testutil.WriteMediaFile(t, "clip.wav", []byte("audio-11"))
	m := newManager("a", 0.6)
	a := testutil.NewFakeProvider("a", "shared", 0.9)
	m.Register("a", a)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "shared", m.Transcribe(context.Background(), file, "pt").Text)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, a.EngineCalls())
	assert.Equal(t, 1, a.InitCalls())
}

type mutableRouting struct {
	mu  sync.Mutex
	cfg provider.RoutingConfig
}

func (r *mutableRouting) Routing() provider.RoutingConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

func (r *mutableRouting) set(cfg provider.RoutingConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
}
