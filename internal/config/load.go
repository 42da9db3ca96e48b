package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"media-transcriber/internal/app/api/provider"
	"media-transcriber/internal/app/errors"
)

// LookupFunc resolves environment variables. os.LookupEnv in production.
type LookupFunc func(key string) (string, bool)

var (
	validate = validator.New()

	// singleRef matches a value that is exactly one ${VAR:-default} reference.
	singleRef = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*):-([^}]*)\}$`)
)

// Load reads the YAML file at path on top of Default, applies environment
// overrides, expands ${VAR} references in provider blocks and validates the
// result. An empty path loads the defaults.
func Load(path string) (*Settings, error) {
	settings := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "failed to read config file %s: %v", path, err)
		}
		if err := Parse(data, settings); err != nil {
			return nil, err
		}
	}
	if err := Finalize(settings, os.LookupEnv); err != nil {
		return nil, err
	}
	return settings, nil
}

// Parse decodes YAML into settings. Scalars absent from the document keep
// their current values; a providers block replaces the existing one.
func Parse(data []byte, settings *Settings) error {
	current := settings.Providers
	settings.Providers = nil
	if err := yaml.Unmarshal(data, settings); err != nil {
		settings.Providers = current
		return errors.Wrapf(errors.ErrInvalidConfig, "failed to parse config YAML: %v", err)
	}
	if settings.Providers == nil {
		settings.Providers = current
	}
	return nil
}

// Finalize applies environment overrides, expands references and validates.
func Finalize(settings *Settings, lookup LookupFunc) error {
	if err := applyEnv(settings, lookup); err != nil {
		return err
	}
	for name, spec := range settings.Providers {
		expanded, err := expandSpec(name, spec, lookup)
		if err != nil {
			return err
		}
		settings.Providers[name] = expanded
	}
	return Validate(settings)
}

// Validate checks struct tags.
func Validate(settings *Settings) error {
	if err := validate.Struct(settings); err != nil {
		return errors.Wrap(errors.ErrInvalidConfig, err.Error())
	}
	return nil
}

func applyEnv(s *Settings, lookup LookupFunc) error {
	env := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := env("PRIMARY_PROVIDER"); ok {
		s.PrimaryProvider = v
	}
	if v, ok := env("FALLBACK_PROVIDERS"); ok {
		s.FallbackProviders = ParseProviderList(v)
	}
	if v, ok := env("CONFIDENCE_THRESHOLD"); ok {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(errors.ErrInvalidConfig, "CONFIDENCE_THRESHOLD %q is not a number", v)
		}
		s.ConfidenceThreshold = threshold
	}
	if v, ok := env("FFPROBE_PATH"); ok {
		s.FFprobePath = v
	}
	if v, ok := env("FFMPEG_PATH"); ok {
		s.FFmpegPath = v
	}
	if v, ok := env("LOG_LEVEL"); ok {
		s.Logging.Level = strings.ToLower(v)
	}
	if v, ok := env("HISTORY_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(errors.ErrInvalidConfig, "HISTORY_ENABLED %q is not a boolean", v)
		}
		s.History.Enabled = enabled
	}
	if v, ok := env("HISTORY_DB_PATH"); ok {
		s.History.DBPath = v
	}
	return nil
}

// ParseProviderList splits a comma separated list, trimming blanks.
func ParseProviderList(v string) []string {
	names := lo.Map(strings.Split(v, ","), func(name string, _ int) string {
		return strings.TrimSpace(name)
	})
	return lo.Compact(names)
}

func expandSpec(name string, spec provider.ProviderSpec, lookup LookupFunc) (provider.ProviderSpec, error) {
	out := cloneSpec(spec)
	out.Auth.APIKey = expand(spec.Auth.APIKey, lookup)
	out.Auth.BaseURL = expand(spec.Auth.BaseURL, lookup)
	for k, v := range out.Auth.Headers {
		out.Auth.Headers[k] = expand(v, lookup)
	}
	for k, v := range out.Settings {
		expanded, err := expandValue(v, lookup)
		if err != nil {
			return out, errors.Wrapf(errors.ErrInvalidConfig, "provider %s setting %s: %v", name, k, err)
		}
		out.Settings[k] = expanded
	}
	return out, nil
}

func expandValue(v interface{}, lookup LookupFunc) (interface{}, error) {
	switch val := v.(type) {
	case string:
		expanded := expand(val, lookup)
		// A reference with a numeric default must resolve to a number.
		if m := singleRef.FindStringSubmatch(val); m != nil && isNumber(m[2]) && !isNumber(expanded) {
			return nil, errors.Newf("%s=%q is not a number", m[1], expanded)
		}
		return expanded, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			expanded, err := expandValue(item, lookup)
			if err != nil {
				return nil, err
			}
			out[k] = expanded
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			expanded, err := expandValue(item, lookup)
			if err != nil {
				return nil, err
			}
			out[i] = expanded
		}
		return out, nil
	default:
		return v, nil
	}
}

// expand resolves $VAR, ${VAR} and ${VAR:-default}. Unset or empty
// variables use the default, or the empty string without one.
func expand(s string, lookup LookupFunc) string {
	if !strings.Contains(s, "$") {
		return s
	}
	return os.Expand(s, func(ref string) string {
		name, def, _ := strings.Cut(ref, ":-")
		if v, ok := lookup(name); ok && v != "" {
			return v
		}
		return def
	})
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}
