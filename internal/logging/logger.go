// Package logging builds the zap logger for a feedviz run and hands out
// category-named child loggers so every entry says which stage produced it.
package logging

import (
	"fmt"
	"strings"

	"feedviz/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a pipeline stage.
type Category string

const (
	CategoryBoot     Category = "boot"     // startup, config
	CategoryFonts    Category = "fonts"    // font resolution
	CategoryInput    Category = "input"    // spreadsheet loading
	CategoryClassify Category = "classify" // column detection
	CategoryCompose  Category = "compose"  // card layout and rasterizing
	CategoryOutput   Category = "output"   // file writing
	CategoryPipeline Category = "pipeline" // per-record orchestration
)

// New builds a logger from the logging config. verbose forces debug level.
// Every entry carries a run_id so the lines of one run can be grouped.
func New(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	}

	level, err := zapcore.ParseLevel(levelOrDefault(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	if cfg.File != "" {
		zc.OutputPaths = []string{cfg.File}
		zc.ErrorOutputPaths = []string{cfg.File}
		// Colors only make sense on a terminal.
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		zc.OutputPaths = []string{"stderr"}
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.With(zap.String("run_id", NewRunID())), nil
}

// Get returns the child logger for a category. A nil parent yields a no-op logger.
func Get(parent *zap.Logger, category Category) *zap.Logger {
	if parent == nil {
		return zap.NewNop()
	}
	return parent.Named(string(category))
}

// NewRunID returns a short identifier for one run.
func NewRunID() string {
	return uuid.New().String()[:8]
}

func levelOrDefault(level string) string {
	level = strings.TrimSpace(strings.ToLower(level))
	if level == "" {
		return "info"
	}
	return level
}
