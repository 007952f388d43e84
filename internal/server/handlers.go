package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/MeKo-Tech/floorscan/internal/floorplan"
	"github.com/MeKo-Tech/floorscan/internal/pipeline"
	"github.com/MeKo-Tech/floorscan/internal/utils"
	"github.com/MeKo-Tech/floorscan/internal/version"
)

// uploadField is the multipart form field carrying the floor-plan image.
const uploadField = "floor_plan"

// multipart encoding overhead allowed on top of the image size cap.
const formSlackBytes = 1 << 20

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	s.writeJSON(w, status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
		Status:  status,
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string, errs map[string][]string) {
	s.writeJSON(w, status, Envelope{
		Success: false,
		Message: message,
		Errors:  errs,
		Status:  status,
	})
}

func fieldErrors(field string, messages ...string) map[string][]string {
	return map[string][]string{field: messages}
}

// healthHandler reports liveness and engine readiness.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	status := "healthy"
	engine := EngineStatus{Name: "none"}
	if s.pipeline != nil {
		engine = EngineStatus{Name: s.pipeline.EngineName(), Ready: s.pipeline.EngineReady()}
	}
	if !engine.Ready {
		status = "degraded"
	}

	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  status,
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: version.Version,
		Engine:  engine,
	})
}

// serviceInfoHandler describes capabilities and the upload contract.
func (s *Server) serviceInfoHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	info := ServiceInfo{
		ServiceName: "Floor Plan Analysis Service",
		Version:     version.Version,
		Description: "Analyzes floor plan images to extract rooms, dimensions, storage capacity, and moving inventory estimates.",
		Capabilities: []string{
			"Room detection and classification",
			"Dimension parsing and area calculation",
			"Multi-floor segmentation",
			"Storage capacity analysis",
			"Moving inventory estimation",
			"Multi-variant OCR with result merging",
		},
		SupportedFormats: utils.SupportedImageExtensions,
		MaxFileSize:      maxFileSizeLabel(),
		Usage: ServiceUsage{
			Endpoint:      "/analyze",
			Method:        http.MethodPost,
			ContentType:   "multipart/form-data",
			RequiredField: uploadField,
		},
	}
	s.writeSuccess(w, http.StatusOK, "Service information", info)
}

// analyzeHandler runs the pipeline on an uploaded floor plan.
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}
	if s.pipeline == nil || !s.pipeline.EngineReady() {
		analyzeRequestsTotal.WithLabelValues("unavailable").Inc()
		s.writeError(w, http.StatusServiceUnavailable, "Analysis engine unavailable",
			fieldErrors(uploadField, "The recognition engine is not initialized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, utils.MaxUploadBytes+formSlackBytes)
	if err := r.ParseMultipartForm(utils.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			analyzeRequestsTotal.WithLabelValues("validation_failed").Inc()
			s.writeError(w, http.StatusRequestEntityTooLarge, "File too large",
				fieldErrors(uploadField, "File exceeds the "+maxFileSizeLabel()+" limit"))
			return
		}
		analyzeRequestsTotal.WithLabelValues("validation_failed").Inc()
		s.writeError(w, http.StatusBadRequest, "Invalid form data",
			fieldErrors(uploadField, "Request must be multipart/form-data"))
		return
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		analyzeRequestsTotal.WithLabelValues("validation_failed").Inc()
		s.writeError(w, http.StatusBadRequest, "Validation failed",
			fieldErrors(uploadField, "No file provided"))
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		analyzeRequestsTotal.WithLabelValues("error").Inc()
		s.writeError(w, http.StatusInternalServerError, "Failed to read upload", nil)
		return
	}
	uploadSizeBytes.Observe(float64(len(data)))

	ctx := r.Context()
	if s.timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.timeoutSec)*time.Second)
		defer cancel()
	}

	start := time.Now()
	res, err := s.pipeline.AnalyzeWithProgress(ctx, data, header.Filename, recordStageMetrics)
	analyzeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.writeAnalyzeError(w, res, err)
		return
	}

	analyzeRequestsTotal.WithLabelValues("success").Inc()
	if res.Analysis != nil && res.Analysis.PropertyInfo != nil {
		roomsDetected.Observe(float64(res.Analysis.PropertyInfo.TotalRooms))
	}
	s.writeSuccess(w, http.StatusOK, "Floor plan analyzed successfully",
		buildAnalyzeData(header.Filename, int64(len(data)), res.Analysis))
}

// analyzeFailure maps a pipeline error onto the envelope response and
// the outcome label recorded in metrics. Shared by the HTTP and
// WebSocket analyze paths.
type analyzeFailure struct {
	Status  int
	Message string
	Errors  map[string][]string
	Outcome string
}

func classifyAnalyzeError(res pipeline.Result, err error) analyzeFailure {
	switch {
	case errors.Is(err, floorplan.ErrNoTextDetected):
		message := "OCR failed to extract room information from floor plan"
		detail := "No room text could be detected in the floor plan image"
		if res.Analysis != nil {
			if res.Analysis.Error != "" {
				message = res.Analysis.Error
			}
			if res.Analysis.DebugInfo.Message != "" {
				detail = res.Analysis.DebugInfo.Message
			}
		}
		return analyzeFailure{http.StatusUnprocessableEntity, message, fieldErrors(uploadField, detail), "no_text"}
	case errors.Is(err, utils.ErrInvalidFileType):
		return analyzeFailure{http.StatusBadRequest, "Validation failed",
			fieldErrors(uploadField, "Unsupported file type; allowed: .jpg, .jpeg, .png, .gif, .bmp"), "validation_failed"}
	case errors.Is(err, utils.ErrFileTooLarge):
		return analyzeFailure{http.StatusRequestEntityTooLarge, "File too large",
			fieldErrors(uploadField, "File exceeds the "+maxFileSizeLabel()+" limit"), "validation_failed"}
	case errors.Is(err, utils.ErrImageLoad):
		return analyzeFailure{http.StatusBadRequest, "Validation failed",
			fieldErrors(uploadField, "File could not be decoded as an image"), "validation_failed"}
	case errors.Is(err, floorplan.ErrEngineUnavailable):
		return analyzeFailure{http.StatusServiceUnavailable, "Analysis engine unavailable", nil, "unavailable"}
	case errors.Is(err, context.DeadlineExceeded):
		return analyzeFailure{http.StatusGatewayTimeout, "Analysis timed out", nil, "timeout"}
	default:
		return analyzeFailure{http.StatusInternalServerError, "Analysis failed", nil, "error"}
	}
}

// writeAnalyzeError maps pipeline failures onto envelope responses.
func (s *Server) writeAnalyzeError(w http.ResponseWriter, res pipeline.Result, err error) {
	failure := classifyAnalyzeError(res, err)
	analyzeRequestsTotal.WithLabelValues(failure.Outcome).Inc()
	if failure.Outcome == "error" {
		s.logger.Error("analysis failed", "error", err)
	}
	s.writeError(w, failure.Status, failure.Message, failure.Errors)
}

// recordStageMetrics feeds per-stage durations into Prometheus.
func recordStageMetrics(stage string, completed, total int, elapsed time.Duration) {
	analyzeStageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}
