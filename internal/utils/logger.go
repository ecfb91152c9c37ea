package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogLevel is used when no level is configured.
const DefaultLogLevel = "info"

// NewApplicationLogger constructs a zap logger configured for human-readable console output
// at the named level ("debug", "info", "warn", "error").
func NewApplicationLogger(levelName string) (*zap.Logger, error) {
	if levelName == EmptyString {
		levelName = DefaultLogLevel
	}
	level, parseError := zapcore.ParseLevel(levelName)
	if parseError != nil {
		return nil, fmt.Errorf("parse log level %q: %w", levelName, parseError)
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.Encoding = "console"
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.TimeKey = ""
	config.EncoderConfig.NameKey = ""
	config.EncoderConfig.CallerKey = ""
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.StacktraceKey = ""
	return config.Build()
}
