// Package logging builds the structured logger used by the pipeline.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json" or "console"

	// OutputPaths defaults to stderr so stdout stays free for the run report.
	OutputPaths []string
}

// New creates a zap logger from the configuration. An unknown level falls
// back to info.
func New(cfg Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if strings.EqualFold(cfg.Format, "json") {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapConfig.DisableStacktrace = true
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	zapConfig.OutputPaths = []string{"stderr"}
	if len(cfg.OutputPaths) > 0 {
		zapConfig.OutputPaths = cfg.OutputPaths
	}

	return zapConfig.Build()
}
