package config

import "time"

// EnvPrefix is prepended to every Settings environment variable.
const EnvPrefix = "TRANSCRIBE_"

// Defaults applied after the file and environment have been merged
const (
	DefaultEngine           = "whisper_cpp"
	DefaultModel            = "base"
	DefaultModelsDir        = "~/.cache/whisper.cpp"
	DefaultWhisperCppBinary = "whisper-cli"
	DefaultLogLevel         = "info"

	// Remote engines
	DefaultOpenAIModel     = "whisper-1"
	DefaultGeminiModel     = "gemini-2.5-flash"
	DefaultElevenLabsModel = "scribe_v1"

	DefaultOpenAITimeout     = 300 * time.Second
	DefaultGeminiTimeout     = 300 * time.Second
	DefaultElevenLabsTimeout = 300 * time.Second

	// whisper.cpp server; decoding happens on the other side, so allow longer
	DefaultWhisperServerTimeout = 600 * time.Second
)

// ProviderDefaults holds per-engine defaults for remote engines.
type ProviderDefaults struct {
	Model   string
	Timeout time.Duration
}

// GetProviderDefaults returns default configuration for a given engine name
func GetProviderDefaults(engine string) ProviderDefaults {
	switch engine {
	case "openai":
		return ProviderDefaults{Model: DefaultOpenAIModel, Timeout: DefaultOpenAITimeout}
	case "gemini":
		return ProviderDefaults{Model: DefaultGeminiModel, Timeout: DefaultGeminiTimeout}
	case "elevenlabs":
		return ProviderDefaults{Model: DefaultElevenLabsModel, Timeout: DefaultElevenLabsTimeout}
	case "whisper_server":
		return ProviderDefaults{Model: DefaultModel, Timeout: DefaultWhisperServerTimeout}
	default:
		return ProviderDefaults{Timeout: 120 * time.Second}
	}
}
