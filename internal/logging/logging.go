// Package logging owns the process-wide zap logger. Initialization is an
// explicit call from the entry point rather than a hidden package-level
// guard, so callers can observe whether it already happened.
package logging

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	global *zap.Logger
)

// Init builds the process logger at the level named by LOG_LEVEL (default
// info). It is safe to call more than once; later calls return the existing
// logger and report true.
func Init() (*zap.Logger, bool) {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return global, true
	}

	level := zapcore.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := zapcore.ParseLevel(raw); err == nil {
			level = parsed
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		// Production config with stock encoders cannot fail to build; fall
		// back to a no-op logger rather than aborting the process over it.
		logger = zap.NewNop()
	}

	global = logger
	return global, false
}

// L returns the process logger, initializing it on first use.
func L() *zap.Logger {
	logger, _ := Init()
	return logger
}
