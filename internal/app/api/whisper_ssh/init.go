package whisper_ssh

import (
	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api"
	"whisper-transcribe/internal/app/api/provider"
	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/config"
)

func init() {
	provider.RegisterProvider(providerName, newBase().Info(), createSSHWhisperProvider)
}

func createSSHWhisperProvider(cfg *config.Config, logger *zap.Logger) (api.Engine, error) {
	s := cfg.Settings
	if s.SSHHost == "" {
		return nil, apperrors.RequiredField("ssh_host")
	}

	return NewSSHWhisperProvider(SSHWhisperConfig{
		Host:      s.SSHHost,
		RemoteDir: s.SSHRemoteDir,
		Language:  s.Language,
		Prompt:    s.Prompt,
		Threads:   s.Threads,
	}, logger), nil
}
