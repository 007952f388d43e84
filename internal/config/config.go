package config

import (
	"fmt"
	"log/slog"
	"strings"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration and returns an error describing the
// first invalid field. Output/batch formats and the server port are
// validated by the commands that own those flags, so a value rejected
// there reports through the command's own error path.
func (c *Config) Validate() error {
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level %q (want one of %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if c.Server.TimeoutSec < 0 {
		return fmt.Errorf("server.timeout_sec must not be negative, got %d", c.Server.TimeoutSec)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers must not be negative, got %d", c.Batch.Workers)
	}
	if c.Pipeline.PoolSize < 0 {
		return fmt.Errorf("pipeline.pool_size must not be negative, got %d", c.Pipeline.PoolSize)
	}
	if c.Pipeline.Calibration.SqmPerPixel < 0 {
		return fmt.Errorf("pipeline.calibration.sqm_per_pixel must not be negative, got %g", c.Pipeline.Calibration.SqmPerPixel)
	}
	if c.Pipeline.OCR.Language == "" {
		return fmt.Errorf("pipeline.ocr.language must not be empty")
	}
	return nil
}

// SlogLevel translates the configured log level for slog. Verbose forces
// debug.
func (c *Config) SlogLevel() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
