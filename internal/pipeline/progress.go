package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressCallback observes multi-file analysis. OnProgress fires once
// per finished file with the cumulative count and the file that just
// finished; files finish in worker order, not input order.
type ProgressCallback interface {
	OnStart(total int)
	OnProgress(current, total int, path string)
	OnComplete()
	OnError(path string, err error)
}

// NoOpProgressCallback discards all progress events.
type NoOpProgressCallback struct{}

func (NoOpProgressCallback) OnStart(total int)                          {}
func (NoOpProgressCallback) OnProgress(current, total int, path string) {}
func (NoOpProgressCallback) OnComplete()                                {}
func (NoOpProgressCallback) OnError(path string, err error)             {}

// ConsoleProgressCallback draws a single-line progress bar, typically on
// stderr so result output stays clean.
type ConsoleProgressCallback struct {
	writer         io.Writer
	prefix         string
	width          int
	updateInterval time.Duration

	mu         sync.Mutex
	startTime  time.Time
	lastUpdate time.Time
}

// NewConsoleProgressCallback creates a console progress reporter. A nil
// writer defaults to stderr.
func NewConsoleProgressCallback(writer io.Writer, prefix string) *ConsoleProgressCallback {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleProgressCallback{
		writer:         writer,
		prefix:         prefix,
		width:          40,
		updateInterval: 100 * time.Millisecond,
	}
}

func (c *ConsoleProgressCallback) OnStart(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
	c.lastUpdate = time.Time{}
	_, _ = fmt.Fprintf(c.writer, "%s0/%d plans\n", c.prefix, total)
}

func (c *ConsoleProgressCallback) OnProgress(current, total int, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if now.Sub(c.lastUpdate) < c.updateInterval && current < total {
		return
	}
	c.lastUpdate = now

	if total == 0 {
		return
	}
	filled := c.width * current / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", c.width-filled)
	line := fmt.Sprintf("\r%s[%s] %d/%d", c.prefix, bar, current, total)
	if elapsed := now.Sub(c.startTime); elapsed > 0 && current > 0 && current < total {
		perFile := elapsed / time.Duration(current)
		eta := perFile * time.Duration(total-current)
		line += fmt.Sprintf(" ETA %v", eta.Round(time.Second))
	}
	_, _ = fmt.Fprint(c.writer, line)
}

func (c *ConsoleProgressCallback) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.writer, "\n%sdone in %v\n", c.prefix, time.Since(c.startTime).Round(time.Millisecond))
}

func (c *ConsoleProgressCallback) OnError(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.writer, "\n%s%s: %v\n", c.prefix, path, err)
}

// LogProgressCallback reports progress through slog, logging every
// interval files rather than every file.
type LogProgressCallback struct {
	logger    *slog.Logger
	interval  int
	lastLog   int
	startTime time.Time
}

// NewLogProgressCallback creates a log-based progress reporter. A nil
// logger defaults to slog.Default.
func NewLogProgressCallback(logger *slog.Logger, interval int) *LogProgressCallback {
	if logger == nil {
		logger = slog.Default()
	}
	if interval < 1 {
		interval = 10
	}
	return &LogProgressCallback{logger: logger, interval: interval}
}

func (l *LogProgressCallback) OnStart(total int) {
	l.startTime = time.Now()
	l.lastLog = 0
	l.logger.Info("batch started", "total", total)
}

func (l *LogProgressCallback) OnProgress(current, total int, path string) {
	if current-l.lastLog < l.interval && current != total {
		return
	}
	l.lastLog = current
	l.logger.Info("batch progress",
		"current", current,
		"total", total,
		"last", path,
		"elapsed", time.Since(l.startTime).Round(time.Millisecond))
}

func (l *LogProgressCallback) OnComplete() {
	l.logger.Info("batch complete", "elapsed", time.Since(l.startTime).Round(time.Millisecond))
}

func (l *LogProgressCallback) OnError(path string, err error) {
	l.logger.Error("batch file failed", "path", path, "error", err)
}

// MultiProgressCallback fans events out to several callbacks, letting a
// batch report to the console and the log at once.
type MultiProgressCallback struct {
	callbacks []ProgressCallback
}

// NewMultiProgressCallback combines the given callbacks.
func NewMultiProgressCallback(callbacks ...ProgressCallback) *MultiProgressCallback {
	return &MultiProgressCallback{callbacks: callbacks}
}

func (m *MultiProgressCallback) OnStart(total int) {
	for _, cb := range m.callbacks {
		cb.OnStart(total)
	}
}

func (m *MultiProgressCallback) OnProgress(current, total int, path string) {
	for _, cb := range m.callbacks {
		cb.OnProgress(current, total, path)
	}
}

func (m *MultiProgressCallback) OnComplete() {
	for _, cb := range m.callbacks {
		cb.OnComplete()
	}
}

func (m *MultiProgressCallback) OnError(path string, err error) {
	for _, cb := range m.callbacks {
		cb.OnError(path, err)
	}
}
