package log

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel is the severity threshold of a logger.
type LogLevel string

const (
	// LogDebug logs registrations, boot steps and cache rebuilds.
	LogDebug LogLevel = "debug"

	// LogInfo is used for general informational messages.
	LogInfo LogLevel = "info"

	// LogWarn is used for potentially harmful situations.
	LogWarn LogLevel = "warn"

	// LogError is used for errors the caller may still recover from.
	LogError LogLevel = "error"
)

// ParseLevel maps a configured level name to a zap level. The empty string
// means info.
func ParseLevel(level string) (zapcore.Level, error) {
	switch LogLevel(strings.ToLower(level)) {
	case LogDebug:
		return zap.DebugLevel, nil
	case LogInfo, "":
		return zap.InfoLevel, nil
	case LogWarn:
		return zap.WarnLevel, nil
	case LogError:
		return zap.ErrorLevel, nil
	default:
		return zap.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// NewZapLogger builds a production JSON logger at the given level.
func NewZapLogger(level string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// NewTestLogger returns a debug-level console logger writing to stdout.
func NewTestLogger() *zap.Logger {
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stdout),
		zap.DebugLevel,
	)
	return zap.New(consoleCore)
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Sync flushes logger, reporting failures through the logger itself.
func Sync(logger *zap.Logger) {
	if err := logger.Sync(); err != nil {
		logger.Warn("failed to sync logger", zap.Error(err))
	}
}
