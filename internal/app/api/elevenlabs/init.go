package elevenlabs

import (
	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api"
	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/config"
)

func init() {
	provider.RegisterProvider(providerName, newBase().Info(), createElevenLabsProvider)
}

func createElevenLabsProvider(cfg *config.Config, logger *zap.Logger) (api.Engine, error) {
	keys := cfg.APIKeys
	if err := config.ValidateAPIKey(keys.ElevenLabs, "ElevenLabs"); err != nil {
		return nil, err
	}
	if keys.ElevenLabsBaseURL != "" {
		if err := config.ValidateURL(keys.ElevenLabsBaseURL, "ElevenLabs"); err != nil {
			return nil, err
		}
	}

	timeout := cfg.Settings.Timeout
	if timeout == 0 {
		timeout = config.GetProviderDefaults(providerName).Timeout
	}

	return NewElevenLabsSTTProvider(ElevenLabsConfig{
		APIKey:   keys.ElevenLabs,
		BaseURL:  keys.ElevenLabsBaseURL,
		Language: cfg.Settings.Language,
		Timeout:  timeout,
	}, logger), nil
}
