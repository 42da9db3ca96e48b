package provider_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"media-transcriber/internal/app/api/provider"
	"media-transcriber/internal/app/testutil"
)

func init() {
	provider.RegisterProvider("test_fake", func(name string, spec provider.ProviderSpec, logger *zap.Logger) (provider.Provider, error) {
		if provider.Settings(spec.Settings).String("fail", "") == "yes" {
			return nil, errors.New("bad settings")
		}
		return testutil.NewFakeProvider(name, "from "+name, 0.9), nil
	})
}

func TestCreateProviderUnknownType(t *testing.T) {
	_, err := provider.CreateProvider("x", provider.ProviderSpec{Type: "does_not_exist"}, nil)
	assert.Error(t, err)
}

func TestRegisterConfiguredOrdersChainFirst(t *testing.T) {
	routing := provider.RoutingConfig{Primary: "primary", Fallbacks: []string{"second", "missing"}, ConfidenceThreshold: 0.6}
	m := provider.NewManager(provider.StaticRouting(routing))

	specs := map[string]provider.ProviderSpec{
		"alpha":    {Type: "test_fake", Enabled: true},
		"second":   {Type: "test_fake", Enabled: true},
		"primary":  {Type: "test_fake", Enabled: true},
		"disabled": {Type: "test_fake", Enabled: false},
		"broken":   {Type: "test_fake", Enabled: true, Settings: map[string]interface{}{"fail": "yes"}},
	}

	registered := provider.RegisterConfigured(m, routing, specs, nil)

	assert.Equal(t, []string{"primary", "second", "alpha"}, registered)
	assert.Equal(t, registered, m.Names())

	file := testutil.WriteMediaFile(t, "clip.wav", []byte("factory"))
	assert.Equal(t, "from primary", m.Transcribe(context.Background(), file, "pt").Text)
}

func TestListRegisteredProviders(t *testing.T) {
	assert.Contains(t, provider.ListRegisteredProviders(), "test_fake")
}

func TestSettings(t *testing.T) {
	s := provider.Settings{
		"model":        "large-v3",
		"empty":        "",
		"timeout":      "90s",
		"timeout_secs": "300",
		"timeout_num":  45,
		"size_mb":      "200",
		"threshold":    0.75,
		"force":        "true",
		"bad_float":    "abc",
		"native_bool":  false,
		"unsupported":  []string{"x"},
	}

	assert.Equal(t, "large-v3", s.String("model", "small"))
	assert.Equal(t, "small", s.String("empty", "small"))
	assert.Equal(t, "small", s.String("absent", "small"))

	d, err := s.Duration("timeout", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)
	d, err = s.Duration("timeout_secs", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 300*time.Second, d)
	d, err = s.Duration("timeout_num", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, d)
	d, err = s.Duration("absent", 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, d)

	n, err := s.Int("size_mb", 0)
	require.NoError(t, err)
	assert.Equal(t, 200, n)

	f, err := s.Float("threshold", 0)
	require.NoError(t, err)
	assert.Equal(t, 0.75, f)
	_, err = s.Float("bad_float", 0)
	assert.Error(t, err)
	_, err = s.Float("unsupported", 0)
	assert.Error(t, err)

	b, err := s.Bool("force", false)
	require.NoError(t, err)
	assert.True(t, b)
	b, err = s.Bool("native_bool", true)
	require.NoError(t, err)
	assert.False(t, b)
}
