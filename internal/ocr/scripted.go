package ocr

import (
	"context"
	"image"
	"sync"
)

// ScriptedEngine returns predefined words, standing in for Tesseract in
// tests and offline development. Queued responses are consumed first, one
// per call; once drained every call returns the fixed word set.
type ScriptedEngine struct {
	mu        sync.Mutex
	fixed     []Word
	queue     [][]Word
	err       error
	calls     int
	closed    bool
	CloseFunc func() error
}

// NewScriptedEngine builds an engine that always returns the given words.
func NewScriptedEngine(words ...Word) *ScriptedEngine {
	return &ScriptedEngine{fixed: words}
}

// Queue appends per-call responses consumed before the fixed set.
func (e *ScriptedEngine) Queue(responses ...[]Word) *ScriptedEngine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = append(e.queue, responses...)
	return e
}

// Fail makes every subsequent call return err.
func (e *ScriptedEngine) Fail(err error) *ScriptedEngine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
	return e
}

// Name implements Engine.
func (e *ScriptedEngine) Name() string { return "scripted" }

// Recognize implements Engine.
func (e *ScriptedEngine) Recognize(ctx context.Context, _ image.Image) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	if len(e.queue) > 0 {
		words := e.queue[0]
		e.queue = e.queue[1:]
		return cloneWords(words), nil
	}
	return cloneWords(e.fixed), nil
}

// Calls reports how many times Recognize ran.
func (e *ScriptedEngine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// Close implements Engine.
func (e *ScriptedEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if e.CloseFunc != nil {
		return e.CloseFunc()
	}
	return nil
}

// Closed reports whether Close was called.
func (e *ScriptedEngine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func cloneWords(words []Word) []Word {
	out := make([]Word, len(words))
	copy(out, words)
	return out
}
