// Package logging builds the zap loggers used across tool-hub-search.
//
// Logs always go to stderr: in serve mode stdout carries MCP frames.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Levels lists the accepted level names.
var Levels = []string{"debug", "info", "warn", "error"}

// Encodings lists the accepted encoder names.
var Encodings = []string{"console", "json"}

// ParseLevel maps a level name to a zapcore.Level. Unknown names fall back
// to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a logger writing to stderr with the given level and encoding
// ("console" or "json").
func New(level, encoding string) (*zap.Logger, error) {
	var encoderCfg zapcore.EncoderConfig
	switch encoding {
	case "", "console":
		encoding = "console"
		encoderCfg = zap.NewDevelopmentEncoderConfig()
	case "json":
		encoderCfg = zap.NewProductionEncoderConfig()
	default:
		return nil, fmt.Errorf("unknown log encoding %q", encoding)
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(level)),
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// Must is New that panics on error.
func Must(level, encoding string) *zap.Logger {
	logger, err := New(level, encoding)
	if err != nil {
		panic(err)
	}
	return logger
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
