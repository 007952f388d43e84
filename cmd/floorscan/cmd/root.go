// Package cmd implements the floorscan command line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/floorscan/internal/config"
	"github.com/MeKo-Tech/floorscan/internal/floorplan"
	"github.com/MeKo-Tech/floorscan/internal/pipeline"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration.
	globalConfig *config.Config
	// Error from the most recent configuration load.
	configErr error
	// Configuration file path.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "floorscan",
	Short: "Floor-plan analysis for storage capacity and moving estimates",
	Long: `Analyze residential floor-plan images: detect room labels and
measurements with OCR, group rooms into floors, classify them, and
estimate storage capacity and packing inventory.

This tool provides:
- Single-image and batch analysis with JSON, CSV, or XLSX output
- An HTTP server with REST and WebSocket endpoints
- Configurable room taxonomy and inventory templates

Examples:
  floorscan analyze plan.png
  floorscan batch ./plans --format xlsx --output report.xlsx
  floorscan serve --port 8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes. This
// allows tests to execute commands without calling os.Exit().
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags that apply to all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/floorscan, /etc/floorscan)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("tessdata", "",
		"tessdata directory for the recognition engine (can also be set via TESSDATA_PREFIX)")
	rootCmd.PersistentFlags().StringP("language", "l", "eng", "recognition language")
	rootCmd.PersistentFlags().String("rooms-config", "",
		"YAML file overriding the room taxonomy and inventory templates")

	// Bind flags to viper so config resolution sees them.
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("pipeline.ocr.tessdata_prefix", rootCmd.PersistentFlags().Lookup("tessdata"))
	_ = viper.BindPFlag("pipeline.ocr.language", rootCmd.PersistentFlags().Lookup("language"))
	_ = viper.BindPFlag("rooms_config", rootCmd.PersistentFlags().Lookup("rooms-config"))

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if configLoader == nil {
			initConfig()
		}
		if configErr != nil {
			return fmt.Errorf("failed to load configuration: %w", configErr)
		}

		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: globalConfig.SlogLevel(),
		}))
		slog.SetDefault(logger)
		return nil
	}
}

// initConfig reads in the config file and ENV variables if set. Load
// errors are recorded in configErr and surfaced by PersistentPreRunE so
// a bad value fails the command instead of the process.
func initConfig() {
	configLoader = config.NewLoader()

	if cfgFile != "" {
		globalConfig, configErr = configLoader.LoadWithFile(cfgFile)
	} else {
		globalConfig, configErr = configLoader.Load()
	}
}

// GetConfig returns the global configuration, re-resolved so that flag
// values bound after the initial load are included.
func GetConfig() *config.Config {
	if globalConfig == nil {
		initConfig()
	}

	var cfg config.Config
	if err := configLoader.Viper().Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling updated configuration: %v\n", err)
		return globalConfig
	}
	return &cfg
}

// buildPipeline constructs the analysis pipeline from the resolved
// configuration, applying any rooms-config override. The caller owns
// the pipeline and must Close it.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	b := pipeline.NewBuilder().
		WithConfig(cfg.Pipeline).
		WithLogger(slog.Default())

	if cfg.RoomsConfig != "" {
		rc, err := floorplan.LoadRoomsConfig(cfg.RoomsConfig)
		if err != nil {
			return nil, err
		}
		b = b.WithRoomsConfig(rc)
	}

	p, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis pipeline: %w", err)
	}
	return p, nil
}
