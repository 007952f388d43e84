package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
)

// Pool owns a fixed set of engine instances and hands them out one at a
// time, serializing access to engines that are not concurrency-safe.
// Acquire blocks until an engine is free or the context is done.
type Pool struct {
	engines chan Engine
	all     []Engine
}

// DefaultPoolSize returns the default number of pooled engines: one per
// CPU, capped at four (each Tesseract instance holds model memory).
func DefaultPoolSize() int {
	n := runtime.NumCPU()
	if n > 4 {
		n = 4
	}
	if n < 1 {
		n = 1
	}
	return n
}

// NewPool constructs size engines via factory. On any failure the already
// constructed engines are closed and the error returned.
func NewPool(size int, factory func() (Engine, error)) (*Pool, error) {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		engines: make(chan Engine, size),
		all:     make([]Engine, 0, size),
	}
	for i := range size {
		e, err := factory()
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("ocr pool: engine %d: %w", i, err)
		}
		p.all = append(p.all, e)
		p.engines <- e
	}
	return p, nil
}

// NewStaticPool wraps pre-built engines, taking ownership of them.
func NewStaticPool(engines ...Engine) (*Pool, error) {
	if len(engines) == 0 {
		return nil, errors.New("ocr pool: no engines")
	}
	p := &Pool{
		engines: make(chan Engine, len(engines)),
		all:     make([]Engine, 0, len(engines)),
	}
	for _, e := range engines {
		p.all = append(p.all, e)
		p.engines <- e
	}
	return p, nil
}

// Acquire returns a free engine, blocking until one is available.
// The caller must Release it.
func (p *Pool) Acquire(ctx context.Context) (Engine, error) {
	select {
	case e := <-p.engines:
		return e, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns an engine to the pool.
func (p *Pool) Release(e Engine) {
	if e == nil {
		return
	}
	p.engines <- e
}

// Recognize acquires an engine, runs recognition, and releases it.
func (p *Pool) Recognize(ctx context.Context, img image.Image) ([]Word, error) {
	e, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(e)
	return e.Recognize(ctx, img)
}

// Size returns the number of pooled engines.
func (p *Pool) Size() int { return len(p.all) }

// Name returns the underlying engine name, or "none" for an empty pool.
func (p *Pool) Name() string {
	if len(p.all) == 0 {
		return "none"
	}
	return p.all[0].Name()
}

// Close closes every pooled engine, returning the first error seen.
func (p *Pool) Close() error {
	var firstErr error
	for _, e := range p.all {
		if err := e.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.all = nil
	return firstErr
}
