// Package cmdutil holds the flag, config and logger plumbing shared by the
// transcribe commands.
package cmdutil

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"whisper-transcribe/internal/app/common"
	"whisper-transcribe/internal/config"
)

// Persistent flag names
const (
	FlagConfig   = "config"
	FlagLogLevel = "log-level"
	FlagVerbose  = "verbose"
)

// NewLogger builds the process logger. Tests replace it.
var NewLogger = func(verbose bool, level string) (*zap.Logger, error) {
	return common.NewLogger(verbose, level)
}

// AddPersistentFlags registers the flags every subcommand understands.
func AddPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP(FlagConfig, "c", "", "YAML config file (default: user config dir, optional)")
	cmd.PersistentFlags().String(FlagLogLevel, "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolP(FlagVerbose, "V", false, "verbose output")
}

// LoadConfig reads defaults, the YAML file and the environment, then applies
// apply (flag overrides) and validates the result.
func LoadConfig(cmd *cobra.Command, apply func(*config.Settings) error) (*config.Config, config.LoadResult, error) {
	configFile, _ := cmd.Flags().GetString(FlagConfig)

	cfg, res, err := config.Load(config.LoadOptions{ConfigFile: configFile})
	if err != nil {
		return nil, res, err
	}

	if f := cmd.Flags().Lookup(FlagLogLevel); f != nil && f.Changed {
		cfg.Settings.LogLevel = f.Value.String()
	}
	if apply != nil {
		if err := apply(&cfg.Settings); err != nil {
			return nil, res, err
		}
	}

	if err := cfg.Settings.Validate(); err != nil {
		return nil, res, err
	}
	return cfg, res, nil
}

// Logger builds a logger from the flags and, when available, the settings.
// It never fails: a broken configuration still needs somewhere to report to.
func Logger(cmd *cobra.Command, settings *config.Settings) *zap.Logger {
	verbose, _ := cmd.Flags().GetBool(FlagVerbose)
	level, _ := cmd.Flags().GetString(FlagLogLevel)
	if level == "" && settings != nil {
		level = settings.LogLevel
	}

	logger, err := NewLogger(verbose, level)
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

// LogLoadResult reports which files fed the configuration.
func LogLoadResult(logger *zap.Logger, res config.LoadResult) {
	if res.DotEnvFile != "" {
		logger.Debug("loaded environment file", zap.String("path", res.DotEnvFile))
	}
	if res.ConfigFile != "" {
		logger.Debug("loaded config file", zap.String("path", res.ConfigFile))
	}
}
