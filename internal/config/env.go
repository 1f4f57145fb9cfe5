package config

import (
	"os"
	"strings"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"

	apperrors "whisper-transcribe/internal/app/errors"
)

// envPaths are tried in order; the first existing file wins.
var envPaths = []string{
	".env",
	".env.local",
}

// LoadEnv loads environment variables from the first .env file found.
// Variables already present in the process environment are not overridden.
// It returns the path that was loaded, or "" when none exists.
func LoadEnv() (string, error) {
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return "", apperrors.Wrapf(err, "error loading %s file", envPath)
			}
			return envPath, nil
		}
	}

	return "", nil
}

// GetAPIKeys reads remote engine credentials from the environment
func GetAPIKeys() (APIKeys, error) {
	var keys APIKeys
	if err := env.Parse(&keys); err != nil {
		return APIKeys{}, apperrors.Wrap(err, "parse API keys")
	}

	keys.OpenAI = strings.TrimSpace(keys.OpenAI)
	keys.Gemini = strings.TrimSpace(keys.Gemini)
	keys.ElevenLabs = strings.TrimSpace(keys.ElevenLabs)
	return keys, nil
}

// LoadOptions controls where Load reads from.
type LoadOptions struct {
	// ConfigFile is an explicit YAML path; a missing file is an error.
	ConfigFile string
	// SkipDotEnv disables .env loading.
	SkipDotEnv bool
}

// LoadResult reports what Load read, for logging once a logger exists.
type LoadResult struct {
	DotEnvFile string
	ConfigFile string
}

// Load merges defaults < YAML file < environment. CLI flags are applied by
// the caller afterwards, followed by Validate.
func Load(opts LoadOptions) (*Config, LoadResult, error) {
	var result LoadResult

	if !opts.SkipDotEnv {
		loaded, err := LoadEnv()
		if err != nil {
			return nil, result, apperrors.Wrap(err, "failed to load environment")
		}
		result.DotEnvFile = loaded
	}

	cfg := &Config{}

	path := opts.ConfigFile
	required := path != "" || os.Getenv(ConfigPathEnv) != ""
	if path == "" {
		path = GetDefaultConfigPath()
	}
	if path != "" {
		settings, err := LoadFile(path)
		switch {
		case err == nil:
			cfg.Settings = *settings
			result.ConfigFile = path
		case required || !isNotFound(err):
			return nil, result, err
		}
	}

	if err := env.ParseWithOptions(&cfg.Settings, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, result, apperrors.Mark(err, apperrors.ErrInvalidConfig)
	}

	keys, err := GetAPIKeys()
	if err != nil {
		return nil, result, err
	}
	cfg.APIKeys = keys

	cfg.Settings.setDefaults()
	return cfg, result, nil
}
