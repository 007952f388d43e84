// Package extract runs text recognition across all preprocessing variants
// and merges the per-method candidates into one deduplicated element set.
package extract

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sort"
	"sync"

	"github.com/MeKo-Tech/floorscan/internal/ocr"
	"github.com/MeKo-Tech/floorscan/internal/preprocess"
	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// TextElement is one recognized label candidate in pixel space, tagged
// with the preprocessing method that produced it. Immutable once merged.
type TextElement struct {
	Text       string
	Confidence float64
	Box        utils.Box
	Method     string
}

// MethodError records a non-fatal per-method recognition failure.
type MethodError struct {
	Method string
	Err    error
}

func (e MethodError) Error() string {
	return fmt.Sprintf("method %s: %v", e.Method, e.Err)
}

// Result is the joined output of multi-method recognition.
type Result struct {
	// Elements is the merged, confidence-ranked element set.
	Elements []TextElement
	// MethodCounts holds raw (pre-merge) element counts per method.
	MethodCounts map[string]int
	// MethodErrors lists methods that failed; failures yield zero
	// elements for that method and are not fatal on their own.
	MethodErrors []MethodError
}

// Config tunes multi-method extraction.
type Config struct {
	// MaxWorkers bounds the parallel per-variant recognitions.
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers" json:"max_workers"`

	// IoUThreshold is the bounding-box overlap above which two elements
	// are duplicate candidates.
	IoUThreshold float64 `mapstructure:"iou_threshold" yaml:"iou_threshold" json:"iou_threshold"`

	// SimilarityThreshold is the normalized text similarity two
	// overlapping elements must reach to be merged.
	SimilarityThreshold float64 `mapstructure:"similarity_threshold" yaml:"similarity_threshold" json:"similarity_threshold"`
}

// DefaultConfig returns extraction defaults.
func DefaultConfig() Config {
	return Config{
		MaxWorkers:          4,
		IoUThreshold:        0.3,
		SimilarityThreshold: 0.8,
	}
}

// Extractor coordinates variant generation, pooled recognition, and the
// merge join. Safe for concurrent use.
type Extractor struct {
	gen    *preprocess.Generator
	pool   *ocr.Pool
	cfg    Config
	logger *slog.Logger
}

// NewExtractor wires an extractor. A nil logger disables logging.
func NewExtractor(gen *preprocess.Generator, pool *ocr.Pool, cfg Config, logger *slog.Logger) *Extractor {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultConfig().MaxWorkers
	}
	if cfg.IoUThreshold <= 0 {
		cfg.IoUThreshold = DefaultConfig().IoUThreshold
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultConfig().SimilarityThreshold
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{gen: gen, pool: pool, cfg: cfg, logger: logger}
}

type methodJob struct {
	index  int
	method string
}

type methodResult struct {
	index    int
	method   string
	elements []TextElement
	err      error
}

// Extract runs recognition once per enabled variant and joins the results
// at the merge barrier. Per-method failures are recorded, not returned;
// the error is non-nil only for context cancellation.
func (e *Extractor) Extract(ctx context.Context, img image.Image) (Result, error) {
	methods := e.gen.Methods()

	workers := e.cfg.MaxWorkers
	if workers > len(methods) {
		workers = len(methods)
	}

	jobs := make(chan methodJob, len(methods))
	results := make(chan methodResult, len(methods))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- e.runMethod(ctx, job, img)
			}
		}()
	}

	for i, m := range methods {
		jobs <- methodJob{index: i, method: m}
	}
	close(jobs)
	wg.Wait()
	close(results)

	// Collect in method order so merging is deterministic.
	ordered := make([]methodResult, len(methods))
	for r := range results {
		ordered[r.index] = r
	}

	out := Result{MethodCounts: make(map[string]int, len(methods))}
	var all []TextElement
	for _, r := range ordered {
		if r.err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			e.logger.Warn("recognition method failed", "method", r.method, "error", r.err)
			out.MethodErrors = append(out.MethodErrors, MethodError{Method: r.method, Err: r.err})
			out.MethodCounts[r.method] = 0
			continue
		}
		out.MethodCounts[r.method] = len(r.elements)
		all = append(all, r.elements...)
	}

	out.Elements = Merge(all, e.cfg.IoUThreshold, e.cfg.SimilarityThreshold)
	return out, nil
}

func (e *Extractor) runMethod(ctx context.Context, job methodJob, img image.Image) methodResult {
	variant, err := e.gen.Apply(job.method, img)
	if err != nil {
		return methodResult{index: job.index, method: job.method, err: err}
	}
	words, err := e.pool.Recognize(ctx, variant)
	if err != nil {
		return methodResult{index: job.index, method: job.method, err: err}
	}
	elements := GroupWords(words, job.method)
	return methodResult{index: job.index, method: job.method, elements: elements}
}

// GroupWords joins word-level recognition output into label-level elements.
// Words on the same baseline whose horizontal gap stays within 1.5x the
// median word height become one element ("GROUND" + "FLOOR" -> "GROUND
// FLOOR"); the element box is the union and the confidence the mean.
func GroupWords(words []ocr.Word, method string) []TextElement {
	if len(words) == 0 {
		return nil
	}

	medianH := medianHeight(words)
	maxGap := 1.5 * medianH
	maxSkew := 0.5 * medianH

	// Stable order: top-to-bottom, then left-to-right.
	sorted := make([]ocr.Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := sorted[i].Box.Center(), sorted[j].Box.Center()
		if ci.Y != cj.Y {
			return ci.Y < cj.Y
		}
		return ci.X < cj.X
	})

	// Assign words to baselines.
	type line struct {
		words   []ocr.Word
		centerY float64
	}
	var lines []*line
	for _, w := range sorted {
		cy := w.Box.Center().Y
		var target *line
		for _, ln := range lines {
			if absFloat(cy-ln.centerY) <= maxSkew {
				target = ln
				break
			}
		}
		if target == nil {
			target = &line{centerY: cy}
			lines = append(lines, target)
		}
		target.words = append(target.words, w)
		target.centerY = lineCenter(target.words)
	}

	var out []TextElement
	for _, ln := range lines {
		sort.SliceStable(ln.words, func(i, j int) bool {
			return ln.words[i].Box.MinX < ln.words[j].Box.MinX
		})
		run := []ocr.Word{ln.words[0]}
		for _, w := range ln.words[1:] {
			gap := w.Box.MinX - run[len(run)-1].Box.MaxX
			if gap > maxGap {
				out = append(out, joinRun(run, method))
				run = run[:0]
			}
			run = append(run, w)
		}
		out = append(out, joinRun(run, method))
	}
	return out
}

func joinRun(run []ocr.Word, method string) TextElement {
	text := run[0].Text
	box := run[0].Box
	conf := run[0].Confidence
	for _, w := range run[1:] {
		text += " " + w.Text
		box = box.Union(w.Box)
		conf += w.Confidence
	}
	return TextElement{
		Text:       text,
		Confidence: conf / float64(len(run)),
		Box:        box,
		Method:     method,
	}
}

func medianHeight(words []ocr.Word) float64 {
	heights := make([]float64, len(words))
	for i, w := range words {
		heights[i] = w.Box.Height()
	}
	sort.Float64s(heights)
	m := heights[len(heights)/2]
	if m <= 0 {
		m = 1
	}
	return m
}

func lineCenter(words []ocr.Word) float64 {
	sum := 0.0
	for _, w := range words {
		sum += w.Box.Center().Y
	}
	return sum / float64(len(words))
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
