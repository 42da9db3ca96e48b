package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-transcriber/internal/app/api/provider"
)

func lookupFrom(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	s := Default()
	require.NoError(t, Finalize(s, lookupFrom(nil)))

	assert.Equal(t, "distil-whisper-pt", s.PrimaryProvider)
	assert.Equal(t, []string{"faster-whisper", "gemini-hybrid"}, s.FallbackProviders)
	assert.Equal(t, 0.6, s.ConfidenceThreshold)

	gemini := s.Providers[GeminiProvider]
	assert.Equal(t, "gemini", gemini.Type)
	assert.Equal(t, "", gemini.Auth.APIKey)
	assert.Equal(t, "300", gemini.Settings["video_timeout"])
	assert.Equal(t, "200", gemini.Settings["max_video_size_mb"])
	assert.Equal(t, "gemini-2.0-flash", gemini.Settings["model"])
}

func TestEnvironmentOverrides(t *testing.T) {
	s := Default()
	err := Finalize(s, lookupFrom(map[string]string{
		"PRIMARY_PROVIDER":     "gemini-hybrid",
		"FALLBACK_PROVIDERS":   " faster-whisper , ,distil-whisper-pt ",
		"CONFIDENCE_THRESHOLD": "0.75",
		"FFPROBE_PATH":         "/opt/bin/ffprobe",
		"GEMINI_API_KEY":       "AIza-from-env",
		"GEMINI_VIDEO_TIMEOUT": "120",
	}))
	require.NoError(t, err)

	routing := s.Routing()
	assert.Equal(t, "gemini-hybrid", routing.Primary)
	assert.Equal(t, []string{"faster-whisper", "distil-whisper-pt"}, routing.Fallbacks)
	assert.Equal(t, 0.75, routing.ConfidenceThreshold)
	assert.Equal(t, "/opt/bin/ffprobe", s.FFprobePath)
	assert.Equal(t, "AIza-from-env", s.Providers[GeminiProvider].Auth.APIKey)
	assert.Equal(t, "120", s.Providers[GeminiProvider].Settings["video_timeout"])
}

func TestHistoryEnvironment(t *testing.T) {
	s := Default()
	require.NoError(t, Finalize(s, lookupFrom(map[string]string{
		"HISTORY_ENABLED": "true",
		"HISTORY_DB_PATH": "/tmp/history.db",
	})))
	assert.True(t, s.History.Enabled)
	assert.Equal(t, "/tmp/history.db", s.History.DBPath)
}

func TestMalformedEnvironment(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"threshold not a number", map[string]string{"CONFIDENCE_THRESHOLD": "high"}},
		{"threshold out of range", map[string]string{"CONFIDENCE_THRESHOLD": "1.5"}},
		{"numeric setting", map[string]string{"MAX_VIDEO_SIZE_MB": "lots"}},
		{"log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"history flag", map[string]string{"HISTORY_ENABLED": "sometimes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Finalize(Default(), lookupFrom(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestExpand(t *testing.T) {
	lookup := lookupFrom(map[string]string{"HOST": "gpu-box", "EMPTY": ""})

	assert.Equal(t, "http://gpu-box:8000", expand("http://${HOST}:8000", lookup))
	assert.Equal(t, "http://gpu-box", expand("http://$HOST", lookup))
	assert.Equal(t, "fallback", expand("${EMPTY:-fallback}", lookup))
	assert.Equal(t, "fallback", expand("${MISSING:-fallback}", lookup))
	assert.Equal(t, "", expand("${MISSING}", lookup))
	assert.Equal(t, "plain", expand("plain", lookup))
}

func TestLoadFile(t *testing.T) {
	t.Setenv("WHISPER_SERVER_URL", "http://10.0.0.5:8080")
	t.Setenv("PRIMARY_PROVIDER", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
primary_provider: whisper-server
fallback_providers: [gemini-hybrid]
confidence_threshold: 0
providers:
  whisper-server:
    type: whisper_server
    enabled: true
    settings:
      base_url: ${WHISPER_SERVER_URL:-http://localhost:8080}
      timeout: 60
  gemini-hybrid:
    type: gemini
    enabled: true
server:
  addr: "127.0.0.1:9000"
  read_timeout: 5s
`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "whisper-server", s.PrimaryProvider)
	assert.Equal(t, []string{"gemini-hybrid"}, s.FallbackProviders)
	assert.Equal(t, 0.0, s.ConfidenceThreshold)
	assert.Len(t, s.Providers, 2)
	assert.Equal(t, "http://10.0.0.5:8080", s.Providers[WhisperServerProvider].Settings["base_url"])
	assert.Equal(t, 60, s.Providers[WhisperServerProvider].Settings["timeout"])
	assert.Equal(t, "127.0.0.1:9000", s.Server.Addr)
	assert.Equal(t, 5*time.Second, s.Server.ReadTimeout)
	assert.Equal(t, "info", s.Logging.Level)
	assert.Equal(t, DefaultHistoryDBPath, s.History.DBPath)
}

func TestLoadBundledConfig(t *testing.T) {
	root, err := GetProjectRoot()
	require.NoError(t, err)

	s, err := Load(filepath.Join(root, "configs", "transcriber.yaml"))
	require.NoError(t, err)
	assert.Len(t, s.Providers, len(DefaultProviders()))
	assert.Equal(t, Default().Routing(), s.Routing())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("providers:\n  broken:\n    enabled: true\n"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Type")
}

func TestStore(t *testing.T) {
	store := NewStore(Default())

	require.NoError(t, store.SetPrimaryProvider("gemini-hybrid"))
	store.SetFallbackProviders([]string{"faster-whisper", " "})
	require.NoError(t, store.SetConfidenceThreshold(0.9))

	routing := store.Routing()
	assert.Equal(t, provider.RoutingConfig{
		Primary:             "gemini-hybrid",
		Fallbacks:           []string{"faster-whisper"},
		ConfidenceThreshold: 0.9,
	}, routing)

	assert.Error(t, store.SetPrimaryProvider(" "))
	assert.Error(t, store.SetConfidenceThreshold(-0.1))
	assert.Error(t, store.SetRouting(provider.RoutingConfig{Primary: "x", ConfidenceThreshold: 2}))
	assert.Equal(t, routing, store.Routing())

	require.NoError(t, store.SetRouting(provider.RoutingConfig{Primary: "whisper-cpp", ConfidenceThreshold: 0.5}))
	assert.Equal(t, "whisper-cpp", store.Routing().Primary)
	assert.Empty(t, store.Routing().Fallbacks)
}

func TestStoreSettingsIsCopy(t *testing.T) {
	store := NewStore(Default())

	snapshot := store.Settings()
	snapshot.FallbackProviders[0] = "mutated"
	snapshot.Providers[GeminiProvider].Settings["model"] = "mutated"

	fresh := store.Settings()
	assert.Equal(t, FasterWhisperProvider, fresh.FallbackProviders[0])
	assert.NotEqual(t, "mutated", fresh.Providers[GeminiProvider].Settings["model"])

	routing := store.Routing()
	routing.Fallbacks[0] = "mutated"
	assert.Equal(t, FasterWhisperProvider, store.Routing().Fallbacks[0])
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = store.SetConfidenceThreshold(float64(i%10) / 10)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.Routing()
		}()
	}
	wg.Wait()

	threshold := store.Routing().ConfidenceThreshold
	assert.True(t, threshold >= 0 && threshold <= 0.9)
}

func TestStoreUpdateRouting(t *testing.T) {
	store := NewStore(Default())
	before := store.Routing()

	updated, err := store.UpdateRouting(func(current provider.RoutingConfig) provider.RoutingConfig {
		current.ConfidenceThreshold = 0.4
		return current
	})
	require.NoError(t, err)
	assert.Equal(t, before.Primary, updated.Primary)
	assert.Equal(t, before.Fallbacks, updated.Fallbacks)
	assert.Equal(t, 0.4, updated.ConfidenceThreshold)
	assert.Equal(t, updated, store.Routing())

	_, err = store.UpdateRouting(func(current provider.RoutingConfig) provider.RoutingConfig {
		current.Primary = " "
		return current
	})
	assert.Error(t, err)
	assert.Equal(t, updated, store.Routing())
}

func TestStoreConcurrentPartialUpdates(t *testing.T) {
	store := NewStore(&Settings{PrimaryProvider: "base", ConfidenceThreshold: 0.7})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("fallback-%02d", i)
			_, err := store.UpdateRouting(func(current provider.RoutingConfig) provider.RoutingConfig {
				current.Fallbacks = append(current.Fallbacks, name)
				return current
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	routing := store.Routing()
	assert.Equal(t, "base", routing.Primary)
	assert.Len(t, routing.Fallbacks, 50)
	assert.Equal(t, 0.7, routing.ConfidenceThreshold)
}
