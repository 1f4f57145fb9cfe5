package common

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerName is the root logger name; components use Named children.
const LoggerName = "transcribe"

// NewLogger creates a console zap logger writing to stderr.
// development switches to the colored development encoder and debug level.
// An unparsable level falls back to info and is reported by the returned
// logger.
func NewLogger(development bool, level string) (*zap.Logger, error) {
	var config zap.Config

	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.Encoding = "console"
		config.Sampling = nil
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		config.EncoderConfig.CallerKey = ""
		config.EncoderConfig.StacktraceKey = ""
	}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	var levelErr error
	if level != "" && !development {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			levelErr = err
			lvl = zapcore.InfoLevel
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	logger = logger.Named(LoggerName)

	if levelErr != nil {
		logger.Warn("unable to parse log level, using INFO", zap.String("log_level", level))
	}

	return logger, nil
}

// IsTerminal reports whether f is attached to a character device.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
