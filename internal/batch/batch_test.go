package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MeKo-Tech/floorscan/internal/ocr"
	"github.com/MeKo-Tech/floorscan/internal/pipeline"
	"github.com/MeKo-Tech/floorscan/internal/utils"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	for y := range 300 {
		for x := range 400 {
			img.Set(x, y, color.White)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	require.NoError(t, png.Encode(f, img))
}

func planWords() []ocr.Word {
	return []ocr.Word{
		{Text: "GROUND FLOOR", Confidence: 0.95, Box: utils.NewBoxFromSize(50, 30, 200, 24)},
		{Text: "KITCHEN", Confidence: 0.88, Box: utils.NewBoxFromSize(120, 150, 100, 22)},
		{Text: "3.2 x 3.0m", Confidence: 0.6, Box: utils.NewBoxFromSize(120, 185, 90, 18)},
	}
}

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.NewBuilder().WithEngine(ocr.NewScriptedEngine(planWords()...)).Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func runBatch(t *testing.T, args []string, cfg *Config) *Result {
	t.Helper()
	cfg.Quiet = true
	res, err := Run(context.Background(), newTestPipeline(t), args, cfg, nil)
	require.NoError(t, err)
	return res
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"csv", func(c *Config) { c.Format = "csv" }, ""},
		{"unknown format", func(c *Config) { c.Format = "pdf" }, "unsupported output format"},
		{"xlsx without file", func(c *Config) { c.Format = "xlsx" }, "requires an output file"},
		{"xlsx with file", func(c *Config) { c.Format = "xlsx"; c.OutputFile = "out.xlsx" }, ""},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestDiscoverFiles(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"))
	writePNG(t, filepath.Join(dir, "b.jpg"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o750))
	writePNG(t, filepath.Join(sub, "c.png"))

	t.Run("flat directory skips unsupported and subdirs", func(t *testing.T) {
		files, err := DiscoverFiles([]string{dir}, DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.jpg")}, files)
	})

	t.Run("recursive", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Recursive = true
		files, err := DiscoverFiles([]string{dir}, cfg)
		require.NoError(t, err)
		assert.Len(t, files, 3)
	})

	t.Run("include pattern", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.IncludePatterns = []string{"*.jpg"}
		files, err := DiscoverFiles([]string{dir}, cfg)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "b.jpg")}, files)
	})

	t.Run("exclude pattern", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ExcludePatterns = []string{"a.*"}
		files, err := DiscoverFiles([]string{dir}, cfg)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "b.jpg")}, files)
	})

	t.Run("glob argument", func(t *testing.T) {
		files, err := DiscoverFiles([]string{filepath.Join(dir, "*.png")}, DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "a.png")}, files)
	})

	t.Run("duplicate args deduplicated", func(t *testing.T) {
		target := filepath.Join(dir, "a.png")
		files, err := DiscoverFiles([]string{target, target}, DefaultConfig())
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := DiscoverFiles([]string{filepath.Join(dir, "nope.png")}, DefaultConfig())
		require.Error(t, err)
	})
}

func TestRunAnalyzesDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "one.png"))
	writePNG(t, filepath.Join(dir, "two.png"))

	res := runBatch(t, []string{dir}, DefaultConfig())
	assert.Len(t, res.Files, 2)
	assert.Equal(t, 2, res.Succeeded)
	assert.Zero(t, res.Failed)
	for _, fr := range res.Files {
		require.NoError(t, fr.Err)
		require.NotNil(t, fr.Result.Analysis)
		assert.True(t, fr.Result.Analysis.Success)
	}
	assert.Contains(t, res.Summary(), "2 plans analyzed")
}

func TestRunNoFiles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quiet = true
	_, err := Run(context.Background(), newTestPipeline(t), []string{t.TempDir()}, cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no floor-plan images")
}

func TestRunContinuesOnError(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "good.png"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.png"), []byte("not an image"), 0o600))

	res := runBatch(t, []string{dir}, DefaultConfig())
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "one.png"))
	res := runBatch(t, []string{dir}, DefaultConfig())

	var buf bytes.Buffer
	cfg := DefaultConfig()
	require.NoError(t, WriteOutput(res, cfg, &buf))

	var reports []fileReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &reports))
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Success)
	require.NotNil(t, reports[0].Analysis)
	assert.Equal(t, 1, reports[0].Analysis.PropertyInfo.TotalRooms)
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "one.png"))
	res := runBatch(t, []string{dir}, DefaultConfig())

	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Format = FormatCSV
	require.NoError(t, WriteOutput(res, cfg, &buf))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "area_sqm")
	assert.Contains(t, string(lines[1]), "Kitchen")
	assert.Contains(t, string(lines[1]), "9.60")
}

func TestWriteXLSX(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "one.png"))
	res := runBatch(t, []string{dir}, DefaultConfig())

	out := filepath.Join(t.TempDir(), "report.xlsx")
	cfg := DefaultConfig()
	cfg.Format = FormatXLSX
	cfg.OutputFile = out
	require.NoError(t, WriteOutput(res, cfg, nil))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ElementsMatch(t, []string{"Summary", "Rooms", "Storage"}, f.GetSheetList())

	rows, err := f.GetRows("Rooms")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Kitchen", rows[1][2])
	assert.Equal(t, "kitchen", rows[1][3])
}
