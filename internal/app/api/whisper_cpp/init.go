package whisper_cpp

import (
	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api"
	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/config"
)

func init() {
	provider.RegisterProvider(providerName, newBase().Info(), createWhisperCppProvider)
}

// createWhisperCppProvider creates a whisper.cpp provider from configuration
func createWhisperCppProvider(cfg *config.Config, logger *zap.Logger) (api.Engine, error) {
	s := cfg.Settings
	return NewLocalTranscriber(LocalProviderConfig{
		BinaryPath: s.WhisperCppBinary,
		ModelsDir:  s.ModelsDir,
		Language:   s.Language,
		Prompt:     s.Prompt,
		Threads:    s.Threads,
	}, logger), nil
}
