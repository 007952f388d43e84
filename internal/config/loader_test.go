package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader() *Loader {
	return NewLoaderWith(viper.New())
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no config file in reach

	cfg, err := newTestLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "eng", cfg.Pipeline.OCR.Language)
	assert.InDelta(t, 0.005, cfg.Pipeline.Calibration.SqmPerPixel, 1e-9)
}

func TestLoadWithFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "floorscan.yaml")
	content := `
log_level: debug
server:
  port: 9090
  cors_origins: "http://app.example"
pipeline:
  ocr:
    language: deu
  calibration:
    sqm_per_pixel: 0.01
batch:
  format: csv
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := newTestLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://app.example", cfg.Server.CORSOrigins)
	assert.Equal(t, "deu", cfg.Pipeline.OCR.Language)
	assert.InDelta(t, 0.01, cfg.Pipeline.Calibration.SqmPerPixel, 1e-9)
	assert.Equal(t, "csv", cfg.Batch.Format)

	// Unset keys keep defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 300, cfg.Pipeline.OCR.DPI)
}

func TestLoadWithFileMissing(t *testing.T) {
	_, err := newTestLoader().LoadWithFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadWithFileInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "floorscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: trace\n"), 0o600))

	_, err := newTestLoader().LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FLOORSCAN_LOG_LEVEL", "warn")
	t.Setenv("FLOORSCAN_SERVER_PORT", "9191")

	cfg, err := newTestLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 9191, cfg.Server.Port)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "floorscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: [unclosed"), 0o600))

	_, err := newTestLoader().LoadWithFile(path)
	require.Error(t, err)
}

func TestWriteDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floorscan.yaml")
	require.NoError(t, WriteDefaultConfigFile(path))

	cfg, err := newTestLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Server.Port)
}
