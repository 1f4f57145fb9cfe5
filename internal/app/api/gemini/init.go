package gemini

import (
	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api"
	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/config"
)

func init() {
	provider.RegisterProvider(providerName, newBase(config.GetProviderDefaults(providerName).Model).Info(), createGeminiProvider)
}

func createGeminiProvider(cfg *config.Config, logger *zap.Logger) (api.Engine, error) {
	keys := cfg.APIKeys
	if err := config.ValidateAPIKey(keys.Gemini, "Gemini"); err != nil {
		return nil, err
	}

	defaults := config.GetProviderDefaults(providerName)
	timeout := cfg.Settings.Timeout
	if timeout == 0 {
		timeout = defaults.Timeout
	}

	return NewGeminiProvider(GeminiConfig{
		APIKey:       keys.Gemini,
		BaseURL:      keys.GeminiBaseURL,
		DefaultModel: defaults.Model,
		Language:     cfg.Settings.Language,
		Prompt:       cfg.Settings.Prompt,
		Timeout:      timeout,
	}, logger), nil
}
