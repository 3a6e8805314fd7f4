// Package logger provides the process-wide zap logger for reposcan.
//
// Commands log through the package-level helpers (Debug, Info, Warn, Error);
// services take the *zap.Logger returned by L so they can attach structured
// fields. When verbose mode is enabled via the --verbose flag, debug messages
// are emitted as well.
package logger

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.RWMutex
	level = zap.NewAtomicLevelAt(zap.InfoLevel)
	base  = zap.NewNop()
)

// New builds a zap.Logger configured for development or production.
// The returned logger shares the package level, so SetVerbose affects it.
func New(development bool) (*zap.Logger, error) {
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = level
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build dev logger: %w", err)
		}
		return logger, nil
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.DisableStacktrace = false
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build prod logger: %w", err)
	}
	return logger, nil
}

// Init builds the process logger and installs it as the package and zap global logger.
func Init(development bool) error {
	logger, err := New(development)
	if err != nil {
		return err
	}
	Set(logger)
	return nil
}

// Set replaces the package logger.
func Set(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mu.Lock()
	base = logger
	mu.Unlock()
	zap.ReplaceGlobals(logger)
}

// L returns the package logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// SetVerbose enables or disables debug logging.
func SetVerbose(v bool) {
	if v {
		level.SetLevel(zap.DebugLevel)
		return
	}
	level.SetLevel(zap.InfoLevel)
}

// IsVerbose returns true if debug logging is enabled.
func IsVerbose() bool {
	return level.Enabled(zap.DebugLevel)
}

// SetOutput routes logs to w with a plain console encoder.
// Useful for testing.
func SetOutput(w io.Writer) {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	Set(zap.New(core))
}

// Sync flushes buffered log entries.
func Sync() {
	_ = L().Sync() //nolint:errcheck // stderr sync fails on some platforms
}

// Debug logs a formatted message at debug level.
func Debug(format string, args ...any) {
	L().Sugar().Debugf(format, args...)
}

// Section logs a section header at debug level.
func Section(name string) {
	L().Sugar().Debugf("=== %s ===", name)
}

// Info logs a formatted message at info level.
func Info(format string, args ...any) {
	L().Sugar().Infof(format, args...)
}

// Warn logs a formatted message at warn level.
func Warn(format string, args ...any) {
	L().Sugar().Warnf(format, args...)
}

// Error logs a formatted message at error level.
func Error(format string, args ...any) {
	L().Sugar().Errorf(format, args...)
}
