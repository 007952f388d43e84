// Package support holds the godog step definitions and the shared
// scenario state. Scenarios run the real pipeline, batch runner, and
// HTTP server in-process, with a scripted recognition engine standing
// in for Tesseract so results are deterministic.
package support

import (
	"fmt"
	"net/http/httptest"
	"os"

	"github.com/MeKo-Tech/floorscan/internal/batch"
	"github.com/MeKo-Tech/floorscan/internal/floorplan"
	"github.com/MeKo-Tech/floorscan/internal/ocr"
	"github.com/MeKo-Tech/floorscan/internal/pipeline"
	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// TestContext carries state across the steps of one scenario.
type TestContext struct {
	TempDir string

	// Recognition script for the scenario's pipeline.
	Words       []ocr.Word
	RoomsConfig *floorplan.RoomsConfig

	// Analysis state
	ImagePath  string
	LastResult pipeline.Result
	LastErr    error

	// Batch state
	BatchDir    string
	BatchResult *batch.Result
	OutputFile  string

	// HTTP state
	HTTPServer     *httptest.Server
	AnalysisServer interface{ Close() error }
	LastStatusCode int
	LastBody       []byte

	pipe *pipeline.Pipeline
}

// NewTestContext creates a scenario context with a default two-room
// recognition script.
func NewTestContext() (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "floorscan-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &TestContext{
		TempDir: tempDir,
		Words:   TwoRoomWords(),
	}, nil
}

// TwoRoomWords is the recognition script for the standard two-room,
// one-floor plan.
func TwoRoomWords() []ocr.Word {
	return []ocr.Word{
		{Text: "GROUND FLOOR", Confidence: 0.95, Box: utils.NewBoxFromSize(50, 30, 200, 24)},
		{Text: "LIVING", Confidence: 0.9, Box: utils.NewBoxFromSize(100, 150, 90, 22)},
		{Text: "8.6 x 7.4m", Confidence: 0.6, Box: utils.NewBoxFromSize(100, 185, 90, 18)},
		{Text: "KITCHEN", Confidence: 0.88, Box: utils.NewBoxFromSize(420, 150, 100, 22)},
		{Text: "3.2 x 3.0m", Confidence: 0.6, Box: utils.NewBoxFromSize(420, 185, 90, 18)},
	}
}

// Pipeline lazily builds the scenario's pipeline on the scripted engine.
func (testCtx *TestContext) Pipeline() (*pipeline.Pipeline, error) {
	if testCtx.pipe != nil {
		return testCtx.pipe, nil
	}
	b := pipeline.NewBuilder().WithEngine(ocr.NewScriptedEngine(testCtx.Words...))
	if testCtx.RoomsConfig != nil {
		b = b.WithRoomsConfig(testCtx.RoomsConfig)
	}
	p, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	testCtx.pipe = p
	return p, nil
}

// ResetPipeline drops the cached pipeline so a later step can rebuild
// it with a different script or override.
func (testCtx *TestContext) ResetPipeline() {
	if testCtx.pipe != nil {
		_ = testCtx.pipe.Close()
		testCtx.pipe = nil
	}
}

// Cleanup releases everything the scenario created.
func (testCtx *TestContext) Cleanup() error {
	var errs []error

	if testCtx.HTTPServer != nil {
		testCtx.HTTPServer.Close()
		testCtx.HTTPServer = nil
	}
	if testCtx.AnalysisServer != nil {
		if err := testCtx.AnalysisServer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close analysis server: %w", err))
		}
		testCtx.AnalysisServer = nil
	}
	testCtx.ResetPipeline()

	if err := os.RemoveAll(testCtx.TempDir); err != nil && !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("failed to remove temp directory: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}
