package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/floorscan/internal/utils"
)

type recordingProgress struct {
	mu       sync.Mutex
	total    int
	progress int
	errors   []string
	complete bool
}

func (r *recordingProgress) OnStart(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = total
}

func (r *recordingProgress) OnProgress(current, total int, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = current
}

func (r *recordingProgress) OnComplete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.complete = true
}

func (r *recordingProgress) OnError(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, path)
}

func writePlan(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, pngBytes(t, testImage(400, 300)), 0o644))
	return path
}

func TestAnalyzeFilesParallel(t *testing.T) {
	p := newTestPipeline(t, scenarioWords()...)
	dir := t.TempDir()

	good1 := writePlan(t, dir, "a.png")
	bad := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(bad, []byte("not a plan"), 0o644))
	good2 := writePlan(t, dir, "b.png")

	paths := []string{good1, bad, good2}
	progress := &recordingProgress{}
	results, err := p.AnalyzeFilesParallel(context.Background(), paths,
		ParallelConfig{MaxWorkers: 2, ContinueOnError: true}, progress)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, res := range results {
		assert.Equal(t, paths[i], res.Path)
	}
	require.NoError(t, results[0].Err)
	assert.True(t, results[0].Result.Analysis.Success)
	require.ErrorIs(t, results[1].Err, utils.ErrInvalidFileType)
	require.NoError(t, results[2].Err)
	assert.Greater(t, results[0].Duration, time.Duration(0))

	assert.Equal(t, 3, progress.total)
	assert.Equal(t, 3, progress.progress)
	assert.Equal(t, []string{bad}, progress.errors)
	assert.True(t, progress.complete)
}

func TestAnalyzeFilesParallelStopsOnError(t *testing.T) {
	p := newTestPipeline(t, scenarioWords()...)
	dir := t.TempDir()

	bad := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(bad, []byte("not a plan"), 0o644))
	good := writePlan(t, dir, "a.png")

	results, err := p.AnalyzeFilesParallel(context.Background(), []string{bad, good},
		ParallelConfig{MaxWorkers: 1, ContinueOnError: false}, nil)
	require.ErrorIs(t, err, utils.ErrInvalidFileType)
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
}

func TestAnalyzeFilesParallelEmptyInput(t *testing.T) {
	p := newTestPipeline(t)
	_, err := p.AnalyzeFilesParallel(context.Background(), nil, DefaultParallelConfig(), nil)
	require.Error(t, err)
}
