package whisper_binding

import (
	"go.uber.org/zap"

	"whisper-transcribe/internal/app/api"
	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/app/common"
	"whisper-transcribe/internal/app/model"
	"whisper-transcribe/internal/config"
)

const (
	providerName = "whisper"
	buildTag     = "whisper"
)

// BindingConfig configures the in-process whisper.cpp engine
type BindingConfig struct {
	ModelsDir string
	Language  string
	Prompt    string
	Threads   int
}

// BindingTranscriber runs whisper.cpp in process through its Go bindings.
// Without the "whisper" build tag LoadModel always fails.
type BindingTranscriber struct {
	common.BaseProvider
	config BindingConfig
	logger *zap.Logger
}

// NewBindingTranscriber creates the in-process engine
func NewBindingTranscriber(cfg BindingConfig, logger *zap.Logger) *BindingTranscriber {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BindingTranscriber{BaseProvider: newBase(), config: cfg, logger: logger}
}

func newBase() common.BaseProvider {
	base := common.NewBaseProvider(providerName, "whisper.cpp (in process)", common.ProviderTypeLocal)
	base.RequiresBuildTag = buildTag
	base.DefaultModel = "base"
	base.AvailableModels = model.WhisperModels
	if !Available {
		base.Unavailable = "needs -tags " + buildTag
	}
	return base
}

func init() {
	provider.RegisterProvider(providerName, newBase().Info(), func(cfg *config.Config, logger *zap.Logger) (api.Engine, error) {
		s := cfg.Settings
		return NewBindingTranscriber(BindingConfig{
			ModelsDir: s.ModelsDir,
			Language:  s.Language,
			Prompt:    s.Prompt,
			Threads:   s.Threads,
		}, logger), nil
	})
}
