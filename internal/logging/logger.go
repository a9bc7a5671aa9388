// Package logging builds the zap loggers used by toongen. Each subsystem logs
// through a named child logger for its Category; categories can be switched
// off individually from the config file.
package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryConfig   Category = "config"   // Config loading and validation
	CategoryGenerate Category = "generate" // Property merge and shader rendering
	CategoryCheck    Category = "check"    // Drift checks against files on disk
	CategoryWatch    Category = "watch"    // File watcher events
)

// Options mirrors config.LoggingConfig to avoid an import cycle.
type Options struct {
	Level      string          // debug, info, warn, error
	Format     string          // console, json
	File       string          // optional extra output path
	Categories map[string]bool // category -> enabled; missing means enabled
}

var (
	disabledMu sync.RWMutex
	disabled   = make(map[Category]bool)
)

// ValidFormats lists the supported encodings.
var ValidFormats = []string{"console", "json"}

// ParseLevel converts a level name to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// New builds a logger from opts. verbose forces debug level.
func New(opts Options, verbose bool) (*zap.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	var cfg zap.Config
	switch opts.Format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "", "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	default:
		return nil, fmt.Errorf("unknown log format %q (valid: %v)", opts.Format, ValidFormats)
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	if opts.File != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, opts.File)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	SetCategories(opts.Categories)
	logger.Named(string(CategoryConfig)).Debug("Logger initialized",
		zap.String("level", level.String()),
		zap.String("format", cfg.Encoding))
	return logger, nil
}

// SetCategories replaces the set of disabled categories.
func SetCategories(categories map[string]bool) {
	disabledMu.Lock()
	defer disabledMu.Unlock()
	disabled = make(map[Category]bool)
	for name, enabled := range categories {
		if !enabled {
			disabled[Category(name)] = true
		}
	}
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	disabledMu.RLock()
	defer disabledMu.RUnlock()
	return !disabled[category]
}

// For returns the child logger for category. A nil logger or a disabled
// category yields a no-op logger.
func For(logger *zap.Logger, category Category) *zap.Logger {
	if logger == nil || !IsCategoryEnabled(category) {
		return zap.NewNop()
	}
	return logger.Named(string(category))
}
