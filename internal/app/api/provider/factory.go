package provider

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"media-transcriber/internal/app/common"
)

// CreateProvider builds one provider from its configuration block using the
// creator registered for spec.Type.
func CreateProvider(name string, spec ProviderSpec, logger *zap.Logger) (Provider, error) {
	creator, err := GetProviderCreator(spec.Type)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", name, err)
	}
	p, err := creator(name, spec, common.OrNop(logger).With(zap.String("provider", name)))
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %s: %w", name, err)
	}
	return p, nil
}

// RegisterConfigured creates every enabled provider in specs and registers it
// with m. Providers named in the routing chain are registered first, in chain
// order, followed by the rest sorted by name. A provider that cannot be
// created is logged and left out.
func RegisterConfigured(m *Manager, routing RoutingConfig, specs map[string]ProviderSpec, logger *zap.Logger) []string {
	logger = common.OrNop(logger)

	names := lo.Keys(specs)
	sort.Strings(names)
	chain := lo.Filter(lo.Uniq(routing.Chain()), func(name string, _ int) bool {
		_, ok := specs[name]
		return ok
	})
	ordered := append(chain, lo.Without(names, chain...)...)

	registered := make([]string, 0, len(ordered))
	for _, name := range ordered {
		spec := specs[name]
		if !spec.Enabled {
			logger.Info("Provider disabled, not registering", zap.String("provider", name))
			continue
		}
		p, err := CreateProvider(name, spec, logger)
		if err != nil {
			logger.Error("Failed to create provider", zap.String("provider", name), zap.Error(err))
			continue
		}
		m.Register(name, p)
		registered = append(registered, name)
	}
	return registered
}

// Settings reads typed values out of a provider settings map. Values coming
// from environment expansion arrive as strings and are parsed.
type Settings map[string]interface{}

// String returns the setting as a string, or def when absent or empty.
func (s Settings) String(key, def string) string {
	v, ok := s[key]
	if !ok || v == nil {
		return def
	}
	str := strings.TrimSpace(fmt.Sprint(v))
	if str == "" {
		return def
	}
	return str
}

// Float returns the setting as a float64.
func (s Settings) Float(key string, def float64) (float64, error) {
	switch v := s[key].(type) {
	case nil:
		return def, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return def, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("setting %s: %w", key, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("setting %s: unsupported type %T", key, v)
	}
}

// Int returns the setting as an int.
func (s Settings) Int(key string, def int) (int, error) {
	f, err := s.Float(key, float64(def))
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// Bool returns the setting as a bool.
func (s Settings) Bool(key string, def bool) (bool, error) {
	switch v := s[key].(type) {
	case nil:
		return def, nil
	case bool:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return def, nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("setting %s: %w", key, err)
		}
		return b, nil
	default:
		return false, fmt.Errorf("setting %s: unsupported type %T", key, v)
	}
}

// Duration accepts Go duration strings ("90s") or a plain number of seconds.
func (s Settings) Duration(key string, def time.Duration) (time.Duration, error) {
	if str, ok := s[key].(string); ok {
		str = strings.TrimSpace(str)
		if str == "" {
			return def, nil
		}
		if d, err := time.ParseDuration(str); err == nil {
			return d, nil
		}
	}
	secs, err := s.Float(key, def.Seconds())
	if err != nil {
		return 0, err
	}
	return time.Duration(secs * float64(time.Second)), nil
}
