package support

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/floorscan/internal/ocr"
	"github.com/MeKo-Tech/floorscan/internal/pipeline"
	"github.com/MeKo-Tech/floorscan/internal/server"
)

// RegisterServerSteps wires the HTTP server steps.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the analysis server is running$`, testCtx.theServerIsRunning)
	sc.Step(`^the analysis server is running with an empty recognition script$`, testCtx.theServerIsRunningEmptyScript)

	sc.Step(`^I upload the floor plan to "([^"]*)"$`, testCtx.iUploadTheFloorPlan)
	sc.Step(`^I post to "([^"]*)" without a file$`, testCtx.iPostWithoutFile)
	sc.Step(`^I request "([^"]*)"$`, testCtx.iRequestPath)

	sc.Step(`^the response status is (\d+)$`, testCtx.theResponseStatusIs)
	sc.Step(`^the response message contains "([^"]*)"$`, testCtx.theResponseMessageContains)
	sc.Step(`^the response body contains "([^"]*)"$`, testCtx.theResponseBodyContains)
	sc.Step(`^the response reports a successful analysis with (\d+) rooms$`, testCtx.responseReportsSuccessfulAnalysis)
}

func (testCtx *TestContext) startServer() error {
	p, err := pipeline.NewBuilder().
		WithEngine(ocr.NewScriptedEngine(testCtx.Words...)).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	cfg := server.DefaultConfig()
	cfg.RateLimit.Enabled = false
	srv := server.NewServerWithPipeline(cfg, p, nil)

	testCtx.AnalysisServer = srv
	testCtx.HTTPServer = httptest.NewServer(srv.Handler())
	return nil
}

func (testCtx *TestContext) theServerIsRunning() error {
	testCtx.Words = TwoRoomWords()
	return testCtx.startServer()
}

func (testCtx *TestContext) theServerIsRunningEmptyScript() error {
	testCtx.Words = nil
	return testCtx.startServer()
}

func (testCtx *TestContext) iUploadTheFloorPlan(path string) error {
	if testCtx.ImagePath == "" {
		if err := testCtx.aTwoRoomFloorPlan(); err != nil {
			return err
		}
	}
	data, err := os.ReadFile(testCtx.ImagePath)
	if err != nil {
		return fmt.Errorf("failed to read plan image: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("floor_plan", "plan.png")
	if err != nil {
		return err
	}
	if _, err := fw.Write(data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	resp, err := http.Post(testCtx.HTTPServer.URL+path, mw.FormDataContentType(), &body)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	return testCtx.captureResponse(resp)
}

func (testCtx *TestContext) iPostWithoutFile(path string) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.Close(); err != nil {
		return err
	}

	resp, err := http.Post(testCtx.HTTPServer.URL+path, mw.FormDataContentType(), &body)
	if err != nil {
		return fmt.Errorf("post failed: %w", err)
	}
	return testCtx.captureResponse(resp)
}

func (testCtx *TestContext) iRequestPath(path string) error {
	resp, err := http.Get(testCtx.HTTPServer.URL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return testCtx.captureResponse(resp)
}

func (testCtx *TestContext) captureResponse(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	testCtx.LastStatusCode = resp.StatusCode
	testCtx.LastBody = body
	return nil
}

func (testCtx *TestContext) theResponseStatusIs(status int) error {
	if testCtx.LastStatusCode != status {
		return fmt.Errorf("expected status %d, got %d (body: %s)",
			status, testCtx.LastStatusCode, string(testCtx.LastBody))
	}
	return nil
}

func (testCtx *TestContext) envelope() (map[string]any, error) {
	var env map[string]any
	if err := json.Unmarshal(testCtx.LastBody, &env); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	return env, nil
}

func (testCtx *TestContext) theResponseMessageContains(substr string) error {
	env, err := testCtx.envelope()
	if err != nil {
		return err
	}
	message, _ := env["message"].(string)
	if !strings.Contains(message, substr) {
		return fmt.Errorf("message %q does not contain %q", message, substr)
	}
	return nil
}

func (testCtx *TestContext) theResponseBodyContains(substr string) error {
	if !strings.Contains(string(testCtx.LastBody), substr) {
		return fmt.Errorf("response body does not contain %q", substr)
	}
	return nil
}

func (testCtx *TestContext) responseReportsSuccessfulAnalysis(rooms int) error {
	env, err := testCtx.envelope()
	if err != nil {
		return err
	}
	if success, _ := env["success"].(bool); !success {
		return fmt.Errorf("expected success envelope, got: %s", string(testCtx.LastBody))
	}
	data, _ := env["data"].(map[string]any)
	if data == nil {
		return fmt.Errorf("envelope has no data object")
	}
	if ok, _ := data["analysis_successful"].(bool); !ok {
		return fmt.Errorf("analysis_successful is not true")
	}
	detected, _ := data["rooms_detected"].(float64)
	if int(detected) != rooms {
		return fmt.Errorf("expected %d rooms detected, got %d", rooms, int(detected))
	}
	return nil
}
