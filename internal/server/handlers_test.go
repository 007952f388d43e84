package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/floorscan/internal/ocr"
	"github.com/MeKo-Tech/floorscan/internal/pipeline"
	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// stubAnalyzer satisfies the analyzer interface with canned responses.
type stubAnalyzer struct {
	res   pipeline.Result
	err   error
	ready bool
	calls int
}

func (s *stubAnalyzer) AnalyzeWithProgress(ctx context.Context, data []byte, filename string, onStage pipeline.StageFunc) (pipeline.Result, error) {
	s.calls++
	return s.res, s.err
}

func (s *stubAnalyzer) EngineName() string { return "stub" }
func (s *stubAnalyzer) EngineReady() bool  { return s.ready }
func (s *stubAnalyzer) Close() error       { return nil }

func newStubServer(t *testing.T, stub *stubAnalyzer) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RateLimit.Enabled = false
	s := newServer(cfg, stub, nil)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// newScriptedServer backs the server with a real pipeline and a scripted
// recognition engine.
func newScriptedServer(t *testing.T, words ...ocr.Word) *Server {
	t.Helper()
	p, err := pipeline.NewBuilder().WithEngine(ocr.NewScriptedEngine(words...)).Build()
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.RateLimit.Enabled = false
	s := NewServerWithPipeline(cfg, p, nil)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func planWords() []ocr.Word {
	return []ocr.Word{
		{Text: "GROUND FLOOR", Confidence: 0.95, Box: utils.NewBoxFromSize(50, 30, 200, 24)},
		{Text: "LIVING", Confidence: 0.9, Box: utils.NewBoxFromSize(100, 150, 90, 22)},
		{Text: "8.6 x 7.4m", Confidence: 0.6, Box: utils.NewBoxFromSize(100, 185, 90, 18)},
		{Text: "KITCHEN", Confidence: 0.88, Box: utils.NewBoxFromSize(420, 150, 100, 22)},
		{Text: "3.2 x 3.0m", Confidence: 0.6, Box: utils.NewBoxFromSize(420, 185, 90, 18)},
	}
}

func planPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
	for y := range 600 {
		for x := range 800 {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartUpload(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHealthHandler(t *testing.T) {
	s := newStubServer(t, &stubAnalyzer{ready: true})
	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "stub", health.Engine.Name)
	assert.True(t, health.Engine.Ready)
}

func TestHealthHandlerDegraded(t *testing.T) {
	s := newStubServer(t, &stubAnalyzer{ready: false})
	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "degraded", health.Status)
}

func TestServiceInfoHandler(t *testing.T) {
	s := newStubServer(t, &stubAnalyzer{ready: true})
	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/service-info", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)

	data, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var info ServiceInfo
	require.NoError(t, json.Unmarshal(data, &info))
	assert.Equal(t, "Floor Plan Analysis Service", info.ServiceName)
	assert.Equal(t, []string{".jpg", ".jpeg", ".png", ".gif", ".bmp"}, info.SupportedFormats)
	assert.Equal(t, "10MB", info.MaxFileSize)
	assert.Equal(t, "/analyze", info.Usage.Endpoint)
	assert.Equal(t, "floor_plan", info.Usage.RequiredField)
}

func TestAnalyzeHandlerSuccess(t *testing.T) {
	s := newScriptedServer(t, planWords()...)
	body, contentType := multipartUpload(t, uploadField, "plan.png", planPNG(t))

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := doRequest(s, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)
	assert.Equal(t, http.StatusOK, env.Status)

	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var data AnalyzeData
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.True(t, data.AnalysisSuccessful)
	assert.Equal(t, "plan.png", data.FileInfo.Filename)
	assert.Equal(t, ".png", data.FileInfo.FileType)
	assert.Equal(t, 2, data.RoomsDetected)
	require.Len(t, data.DetailedRooms, 2)
	assert.Equal(t, "Living Room", data.DetailedRooms[0].RoomName)
	assert.Equal(t, "living_room", data.DetailedRooms[0].RoomType)
	assert.InDelta(t, 63.64, data.DetailedRooms[0].AreaSqm, 1e-9)
	assert.Equal(t, "Ground Floor", data.DetailedRooms[0].Floor)
	assert.Equal(t, len(data.DetailedRooms[0].Boxes), data.DetailedRooms[0].ItemCounts.Boxes)
	require.NotNil(t, data.PropertyAnalysis)
	assert.True(t, data.PropertyAnalysis.Success)
}

func TestAnalyzeHandlerNoText(t *testing.T) {
	s := newScriptedServer(t)
	body, contentType := multipartUpload(t, uploadField, "blank.png", planPNG(t))

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := doRequest(s, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "OCR failed to extract room information from floor plan", env.Message)
	require.Contains(t, env.Errors, uploadField)
}

func TestAnalyzeHandlerValidation(t *testing.T) {
	s := newScriptedServer(t, planWords()...)

	t.Run("wrong extension", func(t *testing.T) {
		body, contentType := multipartUpload(t, uploadField, "plan.txt", planPNG(t))
		req := httptest.NewRequest(http.MethodPost, "/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := doRequest(s, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.False(t, env.Success)
		require.Contains(t, env.Errors, uploadField)
	})

	t.Run("corrupt image with valid extension", func(t *testing.T) {
		body, contentType := multipartUpload(t, uploadField, "plan.jpg", []byte("not an image"))
		req := httptest.NewRequest(http.MethodPost, "/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := doRequest(s, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.False(t, env.Success)
		assert.Contains(t, env.Errors[uploadField][0], "decoded")
	})

	t.Run("missing file field", func(t *testing.T) {
		body, contentType := multipartUpload(t, "wrong_field", "plan.png", planPNG(t))
		req := httptest.NewRequest(http.MethodPost, "/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := doRequest(s, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeEnvelope(t, rec)
		require.Contains(t, env.Errors, uploadField)
		assert.Equal(t, "No file provided", env.Errors[uploadField][0])
	})

	t.Run("oversized upload", func(t *testing.T) {
		big := make([]byte, utils.MaxUploadBytes+formSlackBytes+1)
		body, contentType := multipartUpload(t, uploadField, "plan.png", big)
		req := httptest.NewRequest(http.MethodPost, "/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := doRequest(s, req)

		require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "File too large", env.Message)
	})
}

func TestAnalyzeHandlerEngineUnavailable(t *testing.T) {
	s := newStubServer(t, &stubAnalyzer{ready: false})
	body, contentType := multipartUpload(t, uploadField, "plan.png", planPNG(t))

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := doRequest(s, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "Analysis engine unavailable", env.Message)
}

func TestAnalyzeHandlerTimeout(t *testing.T) {
	stub := &stubAnalyzer{ready: true, err: context.DeadlineExceeded}
	s := newStubServer(t, stub)
	body, contentType := multipartUpload(t, uploadField, "plan.png", planPNG(t))

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := doRequest(s, req)

	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, 1, stub.calls)
}

func TestAnalyzeHandlerMethodNotAllowed(t *testing.T) {
	s := newStubServer(t, &stubAnalyzer{ready: true})
	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/analyze", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMaxFileSizeLabel(t *testing.T) {
	assert.Equal(t, "10MB", maxFileSizeLabel())
}

func TestRecordStageMetricsDoesNotPanic(t *testing.T) {
	recordStageMetrics(pipeline.StageValidate, 1, len(pipeline.Stages), time.Millisecond)
}
