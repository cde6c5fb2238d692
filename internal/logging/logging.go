// Package logging builds the module's zap loggers from configuration.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger. level is a zap level name ("debug", "info", "warn",
// "error"); format is "console" or "json". Console output goes to stderr so
// report markdown piped from stdout stays clean.
func New(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: parse level %q: %w", level, err)
	}

	switch format {
	case "json":
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		log, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("logging: build json logger: %w", err)
		}
		return log, nil

	case "console", "":
		enc := zap.NewDevelopmentEncoderConfig()
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(enc),
			zapcore.Lock(os.Stderr),
			zap.NewAtomicLevelAt(lvl),
		)
		return zap.New(core), nil

	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}
}
