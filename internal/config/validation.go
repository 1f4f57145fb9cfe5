package config

import (
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "whisper-transcribe/internal/app/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the merged settings. Field errors are reported by yaml key.
func (s *Settings) Validate() error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return apperrors.Mark(err, apperrors.ErrInvalidConfig)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return apperrors.Wrap(apperrors.ErrInvalidConfig, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	name := yamlKey(fe.StructField())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", name, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", name, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a URL, got %q", name, fe.Value())
	case "min", "max":
		return fmt.Sprintf("%s has invalid length (%s=%s)", name, fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}

func yamlKey(structField string) string {
	switch structField {
	case "ModelsDir":
		return "models_dir"
	case "WhisperCppBinary":
		return "whisper_cpp_binary"
	case "LogLevel":
		return "log_level"
	case "ServerURL":
		return "server_url"
	case "SSHHost":
		return "ssh_host"
	case "SSHRemoteDir":
		return "ssh_remote_dir"
	default:
		return strings.ToLower(structField)
	}
}

// ValidateAPIKey validates API key presence and format
func ValidateAPIKey(apiKey string, keyType string) error {
	if apiKey == "" {
		return apperrors.Wrapf(apperrors.ErrMissingAPIKey, "%s", keyType)
	}

	switch keyType {
	case "OpenAI":
		if !strings.HasPrefix(apiKey, "sk-") {
			return apperrors.Wrap(apperrors.ErrInvalidAPIKey, "OpenAI key must start with 'sk-'")
		}
		if len(apiKey) < 20 {
			return apperrors.Wrap(apperrors.ErrInvalidAPIKey, "OpenAI key too short")
		}
	case "Gemini":
		if !strings.HasPrefix(apiKey, "AIza") {
			return apperrors.Wrap(apperrors.ErrInvalidAPIKey, "Gemini key must start with 'AIza'")
		}
		if len(apiKey) < 30 {
			return apperrors.Wrap(apperrors.ErrInvalidAPIKey, "Gemini key too short")
		}
	case "ElevenLabs":
		if len(apiKey) < 32 {
			return apperrors.Wrap(apperrors.ErrInvalidAPIKey, "ElevenLabs key too short")
		}
	}

	return nil
}

// ValidateURL validates URL format
func ValidateURL(url string, name string) error {
	if url == "" {
		return apperrors.RequiredField(name + " URL")
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return apperrors.InvalidField(name+" URL", "must start with http:// or https://")
	}

	return nil
}

