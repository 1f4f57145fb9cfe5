package whisper_server

import (
	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api"
	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/config"
)

func init() {
	provider.RegisterProvider(providerName, newBase().Info(), createWhisperServerProvider)
}

func createWhisperServerProvider(cfg *config.Config, logger *zap.Logger) (api.Engine, error) {
	s := cfg.Settings
	if err := config.ValidateURL(s.ServerURL, "whisper server"); err != nil {
		return nil, err
	}

	timeout := s.Timeout
	if timeout == 0 {
		timeout = config.GetProviderDefaults(providerName).Timeout
	}

	return NewWhisperServerProvider(WhisperServerConfig{
		BaseURL:  s.ServerURL,
		Timeout:  timeout,
		Language: s.Language,
		Prompt:   s.Prompt,
		Threads:  s.Threads,
	}, logger), nil
}
