package config

import "time"

// Settings is the merged run configuration. Field tags cover the three
// sources: yaml for the config file, env (with EnvPrefix) for the
// environment, validate for the final check.
type Settings struct {
	Engine           string        `yaml:"engine" env:"ENGINE" validate:"required"`
	Model            string        `yaml:"model" env:"MODEL" validate:"required"`
	Language         string        `yaml:"language" env:"LANGUAGE" validate:"omitempty,min=2,max=16"`
	Prompt           string        `yaml:"prompt" env:"PROMPT"`
	ModelsDir        string        `yaml:"models_dir" env:"MODELS_DIR" validate:"required"`
	WhisperCppBinary string        `yaml:"whisper_cpp_binary" env:"WHISPER_CPP_BINARY" validate:"required"`
	ServerURL        string        `yaml:"server_url,omitempty" env:"SERVER_URL" validate:"omitempty,url"`
	SSHHost          string        `yaml:"ssh_host,omitempty" env:"SSH_HOST"`
	SSHRemoteDir     string        `yaml:"ssh_remote_dir,omitempty" env:"SSH_REMOTE_DIR"`
	Threads          int           `yaml:"threads" env:"THREADS" validate:"gte=0,lte=256"`
	Timeout          time.Duration `yaml:"timeout" env:"TIMEOUT" validate:"gte=0"`
	LogLevel         string        `yaml:"log_level" env:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
	Progress         bool          `yaml:"progress" env:"PROGRESS"`
}

// APIKeys holds credentials and endpoint overrides for remote engines.
// They are read from the environment without EnvPrefix.
type APIKeys struct {
	OpenAI            string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL     string `env:"OPENAI_BASE_URL"`
	Gemini            string `env:"GEMINI_API_KEY"`
	GeminiBaseURL     string `env:"GEMINI_BASE_URL"`
	ElevenLabs        string `env:"ELEVENLABS_API_KEY"`
	ElevenLabsBaseURL string `env:"ELEVENLABS_BASE_URL"`
}

// Config is everything an engine may need to build itself.
type Config struct {
	Settings Settings
	APIKeys  APIKeys
}

// setDefaults fills zero-valued fields
func (s *Settings) setDefaults() {
	if s.Engine == "" {
		s.Engine = DefaultEngine
	}
	if s.Model == "" {
		s.Model = DefaultModel
	}
	if s.ModelsDir == "" {
		s.ModelsDir = DefaultModelsDir
	}
	if s.WhisperCppBinary == "" {
		s.WhisperCppBinary = DefaultWhisperCppBinary
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
}

// DefaultSettings returns the settings used when nothing is configured
func DefaultSettings() Settings {
	var s Settings
	s.setDefaults()
	return s
}
