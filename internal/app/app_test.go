package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-transcriber/internal/config"
)

const testConfig = `
primary_provider: server-a
fallback_providers: [cpp, missing]
confidence_threshold: 0.5
logging:
  level: error
history:
  enabled: false
providers:
  server-a:
    type: whisper_server
    enabled: true
    auth:
      base_url: http://127.0.0.1:1
  cpp:
    type: whisper_cpp
    enabled: true
    settings:
      binary_path: /nonexistent/whisper-cli
      model_path: /nonexistent/model.bin
  cloud:
    type: openai_compatible
    enabled: true
    settings:
      preset: cloud
  off:
    type: gemini
    enabled: false
  broken:
    type: no_such_type
    enabled: true
`

func writeConfig(t *testing.T, content string) ConfigPath {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcriber.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return ConfigPath(path)
}

func clearRoutingEnv(t *testing.T) {
	for _, key := range []string{"PRIMARY_PROVIDER", "FALLBACK_PROVIDERS", "CONFIDENCE_THRESHOLD", "LOG_LEVEL", "HISTORY_ENABLED"} {
		if _, ok := os.LookupEnv(key); ok {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func TestInitializeApplication(t *testing.T) {
	clearRoutingEnv(t)
	a, err := InitializeApplication(writeConfig(t, testConfig))
	require.NoError(t, err)
	defer a.Close(context.Background())

	assert.Equal(t, []string{"server-a", "cpp", "cloud"}, a.Manager.Names())
	assert.Nil(t, a.History)
	assert.Equal(t, "server-a", a.Store.Routing().Primary)
	assert.Equal(t, 0.5, a.Store.Routing().ConfidenceThreshold)
	assert.Equal(t, "whisper_cpp", a.ProviderTypes()["cpp"])

	// Neither engine is reachable, so the chain is exhausted.
	file := filepath.Join(t.TempDir(), "voice.wav")
	require.NoError(t, os.WriteFile(file, []byte("RIFF"), 0o644))
	result, err := a.Converter.ConvertFile(context.Background(), file, "pt")
	require.NoError(t, err)
	assert.True(t, result.Failed())
	assert.Equal(t, "None", result.ModelUsed)

	stats := a.Manager.GetStats()
	assert.Equal(t, int64(1), stats.FailedRequests)
	assert.Equal(t, int64(1), stats.SkipsByProvider["missing"])
}

func TestInitializeApplicationDefaults(t *testing.T) {
	clearRoutingEnv(t)
	a, err := InitializeApplication("")
	require.NoError(t, err)
	defer a.Close(context.Background())

	assert.Equal(t, config.DistilWhisperProvider, a.Store.Routing().Primary)
	assert.Contains(t, a.Manager.Names(), config.GeminiProvider)
	assert.Contains(t, a.Manager.Names(), config.FasterWhisperProvider)
}

func TestInitializeApplicationInvalidConfig(t *testing.T) {
	clearRoutingEnv(t)
	_, err := InitializeApplication(writeConfig(t, "confidence_threshold: 3\n"))
	assert.Error(t, err)

	_, err = InitializeApplication(ConfigPath(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestProvideHistoryDisabled(t *testing.T) {
	settings := config.Default()
	settings.History.Enabled = false
	dao, err := provideHistory(settings, nil)
	require.NoError(t, err)
	assert.Nil(t, dao)
}
