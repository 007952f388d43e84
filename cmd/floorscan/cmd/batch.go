package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/floorscan/internal/batch"
)

// batchCmd represents the batch command.
var batchCmd = &cobra.Command{
	Use:   "batch [flags] <dir|glob> [more...]",
	Short: "Analyze directories of floor-plan images",
	Long: `Discover floor-plan images under directories or glob patterns and
analyze them in parallel on one shared pipeline.

Examples:
  floorscan batch ./plans
  floorscan batch ./plans --recursive --format csv --output results.csv
  floorscan batch "scans/*.png" --format xlsx --output report.xlsx`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input paths provided")
		}

		cfg := GetConfig()

		bcfg := batch.DefaultConfig()
		bcfg.Workers = cfg.Batch.Workers
		bcfg.ContinueOnError = cfg.Batch.ContinueOnError
		bcfg.Recursive = cfg.Batch.Recursive
		bcfg.Format = cfg.Batch.Format
		bcfg.OutputFile = cfg.Batch.OutputFile
		bcfg.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
		bcfg.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")
		if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
			bcfg.Quiet = true
		}
		if err := bcfg.Validate(); err != nil {
			return err
		}

		p, err := buildPipeline(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := p.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Error closing pipeline: %v\n", err)
			}
		}()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		res, err := batch.Run(ctx, p, args, bcfg, slog.Default())
		if err != nil {
			return err
		}

		if err := batch.WriteOutput(res, bcfg, cmd.OutOrStdout()); err != nil {
			return err
		}
		if bcfg.OutputFile != "" {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", bcfg.OutputFile); err != nil {
				return err
			}
		}
		if !bcfg.Quiet {
			if _, err := fmt.Fprintln(cmd.ErrOrStderr(), res.Summary()); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("format", "f", "json", "output format (json, csv, xlsx)")
	batchCmd.Flags().StringP("output", "o", "", "output file (default: stdout; required for xlsx)")
	batchCmd.Flags().BoolP("recursive", "r", false, "descend into subdirectories")
	batchCmd.Flags().Int("workers", 0, "parallel files in flight (0 = one per CPU)")
	batchCmd.Flags().Bool("continue-on-error", true, "keep going when one file fails")
	batchCmd.Flags().StringSlice("include", nil, "only analyze files whose base name matches a pattern")
	batchCmd.Flags().StringSlice("exclude", nil, "skip files whose base name matches a pattern")
	batchCmd.Flags().BoolP("quiet", "q", false, "suppress progress and the summary line")

	bindings := []struct {
		key  string
		flag string
	}{
		{"batch.format", "format"},
		{"batch.output_file", "output"},
		{"batch.recursive", "recursive"},
		{"batch.workers", "workers"},
		{"batch.continue_on_error", "continue-on-error"},
	}
	for _, b := range bindings {
		if err := viper.BindPFlag(b.key, batchCmd.Flags().Lookup(b.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", b.flag, err))
		}
	}
}

// GetBatchCommand returns the batch command for testing purposes.
func GetBatchCommand() *cobra.Command {
	return batchCmd
}
