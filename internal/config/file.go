package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "whisper-transcribe/internal/app/errors"
)

// ConfigPathEnv overrides the default config file location.
const ConfigPathEnv = EnvPrefix + "CONFIG"

// LoadFile loads settings from a YAML file. Unknown keys are rejected.
func LoadFile(configPath string) (*Settings, error) {
	configPath = os.ExpandEnv(configPath)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrapf(apperrors.ErrFileNotFound, "config file %s", configPath)
		}
		return nil, apperrors.Wrap(err, "failed to read config file")
	}

	var settings Settings
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&settings); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.Mark(apperrors.Wrapf(err, "failed to parse %s", configPath), apperrors.ErrInvalidConfig)
	}

	settings.expandEnvironmentVariables()
	return &settings, nil
}

// SaveFile writes settings as YAML, creating the parent directory.
func SaveFile(settings *Settings, configPath string) error {
	configPath = os.ExpandEnv(configPath)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return apperrors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal config to YAML")
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return apperrors.Mark(err, apperrors.ErrFileWriteFailed)
	}
	return nil
}

// expandEnvironmentVariables resolves "${VAR}" values in string settings
func (s *Settings) expandEnvironmentVariables() {
	for _, field := range []*string{
		&s.Engine,
		&s.Model,
		&s.Language,
		&s.Prompt,
		&s.ModelsDir,
		&s.WhisperCppBinary,
		&s.ServerURL,
		&s.SSHHost,
		&s.SSHRemoteDir,
		&s.LogLevel,
	} {
		value := *field
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			*field = os.Getenv(strings.TrimSuffix(strings.TrimPrefix(value, "${"), "}"))
		}
	}
}

// GetDefaultConfigPath returns the config file consulted when none is given.
// The file is optional at that location.
func GetDefaultConfigPath() string {
	if path := os.Getenv(ConfigPathEnv); path != "" {
		return path
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "whisper-transcribe", "config.yaml")
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrFileNotFound)
}
