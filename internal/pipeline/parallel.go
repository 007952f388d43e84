package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// ParallelConfig tunes multi-file analysis.
type ParallelConfig struct {
	// MaxWorkers bounds concurrent analyses; 0 means one per CPU.
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers" json:"max_workers"`

	// ContinueOnError keeps the batch running past per-file failures.
	// When false the first failure cancels the remaining files.
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}

// DefaultParallelConfig returns defaults for batch analysis.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		MaxWorkers:      runtime.NumCPU(),
		ContinueOnError: true,
	}
}

// FileResult pairs one input file with its outcome. Err is non-nil for
// validation and infrastructure failures; a no-text failure carries both
// an error wrapping floorplan.ErrNoTextDetected and the structured
// failure payload in Result.
type FileResult struct {
	Path     string
	Result   Result
	Err      error
	Duration time.Duration
}

type fileJob struct {
	index int
	path  string
}

type fileDone struct {
	index int
	out   FileResult
}

// AnalyzeFilesParallel analyzes files on a bounded worker pool, sharing
// the pipeline's engine pool across workers. Results come back in input
// order regardless of completion order. With cfg.ContinueOnError set the
// returned error is nil and per-file failures live in the results;
// otherwise the first failure cancels outstanding work and is returned.
func (p *Pipeline) AnalyzeFilesParallel(ctx context.Context, paths []string, cfg ParallelConfig, progress ProgressCallback) ([]FileResult, error) {
	if len(paths) == 0 {
		return nil, errors.New("no input files")
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}
	if cfg.MaxWorkers > len(paths) {
		cfg.MaxWorkers = len(paths)
	}
	if progress == nil {
		progress = NoOpProgressCallback{}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress.OnStart(len(paths))
	defer progress.OnComplete()

	jobs := make(chan fileJob, len(paths))
	done := make(chan fileDone, len(paths))

	var wg sync.WaitGroup
	for range cfg.MaxWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				done <- fileDone{index: job.index, out: p.analyzeOne(ctx, job.path)}
			}
		}()
	}

	for i, path := range paths {
		jobs <- fileJob{index: i, path: path}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(done)
	}()

	results := make([]FileResult, len(paths))
	completed := 0
	var firstErr error
	for d := range done {
		results[d.index] = d.out
		completed++
		if d.out.Err != nil {
			progress.OnError(d.out.Path, d.out.Err)
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", d.out.Path, d.out.Err)
			}
			if !cfg.ContinueOnError {
				cancel()
			}
		}
		progress.OnProgress(completed, len(paths), d.out.Path)
	}

	if !cfg.ContinueOnError && firstErr != nil {
		return results, firstErr
	}
	return results, nil
}

func (p *Pipeline) analyzeOne(ctx context.Context, path string) FileResult {
	if err := ctx.Err(); err != nil {
		return FileResult{Path: path, Err: err}
	}
	start := time.Now()
	res, err := p.AnalyzeFile(ctx, path)
	return FileResult{
		Path:     path,
		Result:   res,
		Err:      err,
		Duration: time.Since(start),
	}
}
