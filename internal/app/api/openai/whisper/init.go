package whisper

import (
	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api"
	openaiclient "whisper-transcribe/internal/app/api/openai"
	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/config"
)

func init() {
	provider.RegisterProvider(providerName, newBase().Info(), createOpenAIProvider)
}

// createOpenAIProvider creates an OpenAI Whisper provider from configuration
func createOpenAIProvider(cfg *config.Config, logger *zap.Logger) (api.Engine, error) {
	keys := cfg.APIKeys
	// Compatible servers behind a base URL use their own key formats.
	if keys.OpenAIBaseURL == "" {
		if err := config.ValidateAPIKey(keys.OpenAI, "OpenAI"); err != nil {
			return nil, err
		}
	} else if keys.OpenAI == "" {
		return nil, config.ValidateAPIKey(keys.OpenAI, "OpenAI")
	}

	timeout := cfg.Settings.Timeout
	if timeout == 0 {
		timeout = config.GetProviderDefaults(providerName).Timeout
	}

	client := openaiclient.NewClient(keys.OpenAI, keys.OpenAIBaseURL, timeout)
	return NewRemoteTranscriber(client, OpenAIProviderConfig{
		Language: cfg.Settings.Language,
		Prompt:   cfg.Settings.Prompt,
	}, logger), nil
}
