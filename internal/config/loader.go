package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without
	// extension).
	ConfigFileName = "floorscan"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "FLOORSCAN"
)

// Loader resolves configuration from files, environment variables, and
// defaults through viper.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on the global viper instance so cobra flag
// bindings participate in resolution.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// NewLoaderWith creates a loader on a private viper instance, used by
// tests and embedding callers.
func NewLoaderWith(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load resolves configuration from the search paths, environment, and
// defaults, then validates it.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return l.unmarshalAndValidate()
}

// LoadWithFile resolves configuration from a specific file path. An
// empty path falls back to the standard search.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", configFile, err)
	}
	return l.unmarshalAndValidate()
}

func (l *Loader) unmarshalAndValidate() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// ConfigFileUsed returns the path of the config file that was read, if
// any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Viper exposes the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}
	l.v.AddConfigPath("/etc/floorscan")
	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "floorscan"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "floorscan"))
	}
}

func (l *Loader) setupEnvironment() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)
	l.v.SetDefault("rooms_config", defaults.RoomsConfig)

	l.v.SetDefault("pipeline.max_image_dim", defaults.Pipeline.MaxImageDim)
	l.v.SetDefault("pipeline.pool_size", defaults.Pipeline.PoolSize)
	l.v.SetDefault("pipeline.calibration.sqm_per_pixel", defaults.Pipeline.Calibration.SqmPerPixel)
	l.v.SetDefault("pipeline.ocr.language", defaults.Pipeline.OCR.Language)
	l.v.SetDefault("pipeline.ocr.tessdata_prefix", defaults.Pipeline.OCR.TessdataPrefix)
	l.v.SetDefault("pipeline.ocr.dpi", defaults.Pipeline.OCR.DPI)
	l.v.SetDefault("pipeline.ocr.min_word_confidence", defaults.Pipeline.OCR.MinWordConfidence)
	l.v.SetDefault("pipeline.extract.max_workers", defaults.Pipeline.Extract.MaxWorkers)
	l.v.SetDefault("pipeline.extract.iou_threshold", defaults.Pipeline.Extract.IoUThreshold)
	l.v.SetDefault("pipeline.extract.similarity_threshold", defaults.Pipeline.Extract.SimilarityThreshold)
	l.v.SetDefault("pipeline.rooms.min_anchor_confidence", defaults.Pipeline.Rooms.MinAnchorConfidence)
	l.v.SetDefault("pipeline.rooms.base_radius_px", defaults.Pipeline.Rooms.BaseRadiusPx)
	l.v.SetDefault("pipeline.rooms.radius_image_frac", defaults.Pipeline.Rooms.RadiusImageFrac)

	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.file", defaults.Output.File)
	l.v.SetDefault("output.overlay_dir", defaults.Output.OverlayDir)

	l.v.SetDefault("server.host", defaults.Server.Host)
	l.v.SetDefault("server.port", defaults.Server.Port)
	l.v.SetDefault("server.cors_origins", defaults.Server.CORSOrigins)
	l.v.SetDefault("server.timeout_sec", defaults.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout_sec", defaults.Server.ShutdownTimeoutSec)
	l.v.SetDefault("server.rate_limit_enabled", defaults.Server.RateLimitEnabled)
	l.v.SetDefault("server.rate_limit_per_minute", defaults.Server.RateLimitPerMinute)
	l.v.SetDefault("server.rate_limit_burst", defaults.Server.RateLimitBurst)

	l.v.SetDefault("batch.workers", defaults.Batch.Workers)
	l.v.SetDefault("batch.format", defaults.Batch.Format)
	l.v.SetDefault("batch.output_file", defaults.Batch.OutputFile)
	l.v.SetDefault("batch.recursive", defaults.Batch.Recursive)
	l.v.SetDefault("batch.continue_on_error", defaults.Batch.ContinueOnError)
}

// WriteDefaultConfigFile writes a config file populated with defaults,
// for `floorscan config init` style bootstrapping.
func WriteDefaultConfigFile(filename string) error {
	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}
	l := NewLoaderWith(viper.New())
	l.setDefaults()
	return l.v.WriteConfigAs(filename)
}
