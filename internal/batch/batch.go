package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/MeKo-Tech/floorscan/internal/pipeline"
)

// Result is the outcome of one batch run.
type Result struct {
	Files     []pipeline.FileResult
	Duration  time.Duration
	Succeeded int
	Failed    int
}

// Run discovers floor-plan images under the given paths and analyzes
// them on the shared pipeline. The pipeline stays open; the caller owns
// it.
func Run(ctx context.Context, p *pipeline.Pipeline, args []string, cfg *Config, logger *slog.Logger) (*Result, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	files, err := DiscoverFiles(args, cfg)
	if err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("batch: no floor-plan images found")
	}
	logger.Info("batch discovered files", "count", len(files))

	progress := buildProgress(cfg, logger)
	start := time.Now()
	results, err := p.AnalyzeFilesParallel(ctx, files, pipeline.ParallelConfig{
		MaxWorkers:      cfg.Workers,
		ContinueOnError: cfg.ContinueOnError,
	}, progress)
	if err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}

	out := &Result{Files: results, Duration: time.Since(start)}
	for _, fr := range results {
		if fr.Err == nil {
			out.Succeeded++
		} else {
			out.Failed++
		}
	}
	return out, nil
}

func buildProgress(cfg *Config, logger *slog.Logger) pipeline.ProgressCallback {
	if cfg.Quiet || !cfg.ShowProgress {
		return pipeline.NewLogProgressCallback(logger, 10)
	}
	console := pipeline.NewConsoleProgressCallback(os.Stderr, "Analyzing: ")
	return pipeline.NewMultiProgressCallback(console, pipeline.NewLogProgressCallback(logger, 10))
}

// Summary renders a one-line human summary of a batch run.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d plans analyzed (%d succeeded, %d failed) in %v",
		len(r.Files), r.Succeeded, r.Failed, r.Duration.Round(time.Millisecond))
}
