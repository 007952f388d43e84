// Package config loads floorscan configuration from files, environment
// variables, and defaults, and validates the result before any command
// runs with it.
package config

import (
	"github.com/MeKo-Tech/floorscan/internal/pipeline"
)

// Config is the complete configuration tree for the floorscan
// application, shared by the analyze, batch, and serve commands.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose"   yaml:"verbose"   json:"verbose"`

	// RoomsConfig points at an optional YAML file overriding the room
	// taxonomy and inventory templates.
	RoomsConfig string `mapstructure:"rooms_config" yaml:"rooms_config" json:"rooms_config"`

	// Pipeline holds the analysis pipeline settings, including the
	// recognition engine and calibration.
	Pipeline pipeline.Config `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`

	// Output configuration for the analyze command.
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration for the serve command.
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch processing configuration.
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format     string `mapstructure:"format"      yaml:"format"      json:"format"`
	File       string `mapstructure:"file"        yaml:"file"        json:"file"`
	OverlayDir string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host               string `mapstructure:"host"                 yaml:"host"                 json:"host"`
	Port               int    `mapstructure:"port"                 yaml:"port"                 json:"port"`
	CORSOrigins        string `mapstructure:"cors_origins"         yaml:"cors_origins"         json:"cors_origins"`
	TimeoutSec         int    `mapstructure:"timeout_sec"          yaml:"timeout_sec"          json:"timeout_sec"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec" json:"shutdown_timeout_sec"`

	RateLimitEnabled   bool `mapstructure:"rate_limit_enabled"    yaml:"rate_limit_enabled"    json:"rate_limit_enabled"`
	RateLimitPerMinute int  `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute" json:"rate_limit_per_minute"`
	RateLimitBurst     int  `mapstructure:"rate_limit_burst"      yaml:"rate_limit_burst"      json:"rate_limit_burst"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int    `mapstructure:"workers"           yaml:"workers"           json:"workers"`
	Format          string `mapstructure:"format"            yaml:"format"            json:"format"`
	OutputFile      string `mapstructure:"output_file"       yaml:"output_file"       json:"output_file"`
	Recursive       bool   `mapstructure:"recursive"         yaml:"recursive"         json:"recursive"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Pipeline: pipeline.DefaultConfig(),
		Output: OutputConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			CORSOrigins:        "*",
			TimeoutSec:         120,
			ShutdownTimeoutSec: 10,
			RateLimitEnabled:   true,
			RateLimitPerMinute: 30,
			RateLimitBurst:     10,
		},
		Batch: BatchConfig{
			Workers:         0, // one per CPU
			Format:          "json",
			ContinueOnError: true,
		},
	}
}
