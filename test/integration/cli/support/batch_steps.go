package support

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/floorscan/internal/batch"
	"github.com/MeKo-Tech/floorscan/internal/testutil"
)

// RegisterBatchSteps wires the directory-batch steps.
func (testCtx *TestContext) RegisterBatchSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a directory with (\d+) floor plan images$`, testCtx.aDirectoryWithPlans)

	sc.Step(`^I run a batch analysis with format "([^"]*)"$`, testCtx.iRunBatchWithFormat)
	sc.Step(`^I run a batch analysis with format "([^"]*)" writing to "([^"]*)"$`, testCtx.iRunBatchWritingTo)

	sc.Step(`^(\d+) files are analyzed successfully$`, testCtx.filesAnalyzedSuccessfully)
	sc.Step(`^the batch report lists (\d+) entries$`, testCtx.batchReportListsEntries)
	sc.Step(`^the output file contains "([^"]*)"$`, testCtx.outputFileContains)
	sc.Step(`^the output file is not empty$`, testCtx.outputFileNotEmpty)
}

func (testCtx *TestContext) aDirectoryWithPlans(count int) error {
	dir := filepath.Join(testCtx.TempDir, "plans")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	img := testutil.DrawPlan(testutil.TwoRoomPlan())
	for i := range count {
		path := filepath.Join(dir, fmt.Sprintf("plan_%d.png", i+1))
		f, err := os.Create(path) //nolint:gosec // scenario temp file
		if err != nil {
			return err
		}
		if err := encodePNG(f, img); err != nil {
			return err
		}
	}
	testCtx.BatchDir = dir
	return nil
}

func encodePNG(f *os.File, img image.Image) error {
	defer func() { _ = f.Close() }()
	return png.Encode(f, img)
}

func (testCtx *TestContext) runBatch(format, outputFile string) error {
	p, err := testCtx.Pipeline()
	if err != nil {
		return err
	}

	cfg := batch.DefaultConfig()
	cfg.Format = format
	cfg.Quiet = true
	if outputFile != "" {
		cfg.OutputFile = filepath.Join(testCtx.TempDir, outputFile)
		testCtx.OutputFile = cfg.OutputFile
	}

	res, err := batch.Run(context.Background(), p, []string{testCtx.BatchDir}, cfg, nil)
	if err != nil {
		return err
	}
	testCtx.BatchResult = res

	var buf bytes.Buffer
	if err := batch.WriteOutput(res, cfg, &buf); err != nil {
		return err
	}
	testCtx.LastBody = buf.Bytes()
	return nil
}

func (testCtx *TestContext) iRunBatchWithFormat(format string) error {
	return testCtx.runBatch(format, "")
}

func (testCtx *TestContext) iRunBatchWritingTo(format, outputFile string) error {
	return testCtx.runBatch(format, outputFile)
}

func (testCtx *TestContext) filesAnalyzedSuccessfully(count int) error {
	if testCtx.BatchResult == nil {
		return fmt.Errorf("no batch result available")
	}
	if testCtx.BatchResult.Succeeded != count {
		return fmt.Errorf("expected %d successful files, got %d (failed: %d)",
			count, testCtx.BatchResult.Succeeded, testCtx.BatchResult.Failed)
	}
	return nil
}

func (testCtx *TestContext) batchReportListsEntries(count int) error {
	var entries []map[string]any
	if err := json.Unmarshal(testCtx.LastBody, &entries); err != nil {
		return fmt.Errorf("batch report is not a JSON array: %w", err)
	}
	if len(entries) != count {
		return fmt.Errorf("expected %d report entries, got %d", count, len(entries))
	}
	return nil
}

func (testCtx *TestContext) outputFileContains(substr string) error {
	data, err := os.ReadFile(testCtx.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to read output file: %w", err)
	}
	if !strings.Contains(string(data), substr) {
		return fmt.Errorf("output file does not contain %q", substr)
	}
	return nil
}

func (testCtx *TestContext) outputFileNotEmpty() error {
	info, err := os.Stat(testCtx.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to stat output file: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("output file %s is empty", testCtx.OutputFile)
	}
	return nil
}
