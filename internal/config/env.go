package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"media-transcriber/internal/app/common"
)

// APIKeys holds the cloud API keys loaded from the environment.
type APIKeys struct {
	OpenAI string
	Gemini string
}

// envPaths are searched in order; the first existing file wins.
var envPaths = []string{
	".env",
	".env.local",
	"../.env",
	"../../.env",
}

// LoadEnv loads variables from the first .env file found. A missing file is
// not an error since variables may be set system-wide. Variables already in
// the environment are not overridden.
func LoadEnv(logger *zap.Logger) error {
	logger = common.OrNop(logger)
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("error loading %s file: %w", envPath, err)
		}
		logger.Info("Loaded environment variables", zap.String("path", envPath))
		break
	}
	return nil
}

// GetAPIKeys reads the API keys and rejects malformed values. Empty keys are
// allowed; the providers that need them fail to initialize instead.
func GetAPIKeys() (*APIKeys, error) {
	apiKeys := &APIKeys{
		OpenAI: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Gemini: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
	}

	if apiKeys.OpenAI != "" {
		if !strings.HasPrefix(apiKeys.OpenAI, "sk-") {
			return nil, fmt.Errorf("invalid OPENAI_API_KEY format: must start with 'sk-'")
		}
		if len(apiKeys.OpenAI) < 20 {
			return nil, fmt.Errorf("invalid OPENAI_API_KEY format: too short")
		}
	}

	if apiKeys.Gemini != "" {
		if !strings.HasPrefix(apiKeys.Gemini, "AIza") {
			return nil, fmt.Errorf("invalid GEMINI_API_KEY format: must start with 'AIza'")
		}
		if len(apiKeys.Gemini) < 30 {
			return nil, fmt.Errorf("invalid GEMINI_API_KEY format: too short")
		}
	}

	return apiKeys, nil
}

// ReportAPIKeys logs which cloud providers have credentials.
func ReportAPIKeys(apiKeys *APIKeys, logger *zap.Logger) {
	logger = common.OrNop(logger)
	var available []string
	if apiKeys.OpenAI != "" {
		available = append(available, "OpenAI")
	}
	if apiKeys.Gemini != "" {
		available = append(available, "Gemini")
	}
	if len(available) == 0 {
		logger.Info("No cloud API keys configured, cloud providers will be skipped")
		return
	}
	logger.Info("API keys available", zap.Strings("providers", available))
}

// GetProjectRoot finds the nearest parent directory containing go.mod.
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("could not find project root (go.mod not found)")
}
