// Package server exposes the analysis pipeline over HTTP: a multipart
// analyze endpoint, a WebSocket variant streaming per-stage progress,
// service discovery and health endpoints, and Prometheus metrics. Every
// JSON response except /health and /metrics uses the envelope shape.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/floorscan/internal/floorplan"
	"github.com/MeKo-Tech/floorscan/internal/pipeline"
	"github.com/MeKo-Tech/floorscan/internal/utils"
)

// analyzer is the slice of pipeline.Pipeline the handlers depend on,
// substituted by a stub in handler tests.
type analyzer interface {
	AnalyzeWithProgress(ctx context.Context, data []byte, filename string, onStage pipeline.StageFunc) (pipeline.Result, error)
	EngineName() string
	EngineReady() bool
	Close() error
}

// RateLimitConfig tunes the per-client token bucket.
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"             yaml:"enabled"             json:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"               yaml:"burst"               json:"burst"`
}

// Config holds server configuration.
type Config struct {
	Host            string          `mapstructure:"host"         yaml:"host"         json:"host"`
	Port            int             `mapstructure:"port"         yaml:"port"         json:"port"`
	CORSOrigins     string          `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
	TimeoutSec      int             `mapstructure:"timeout_sec"  yaml:"timeout_sec"  json:"timeout_sec"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"   yaml:"rate_limit"   json:"rate_limit"`
	Pipeline        pipeline.Config `mapstructure:"pipeline"     yaml:"pipeline"     json:"pipeline"`
	RoomsConfigPath string          `mapstructure:"rooms_config" yaml:"rooms_config" json:"rooms_config"`
}

// DefaultConfig returns server defaults.
func DefaultConfig() Config {
	return Config{
		Host:        "0.0.0.0",
		Port:        8080,
		CORSOrigins: "*",
		TimeoutSec:  120,
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 30,
			Burst:             10,
		},
		Pipeline: pipeline.DefaultConfig(),
	}
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline    analyzer
	corsOrigins string
	timeoutSec  int
	rateLimiter *RateLimiter
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// NewServer builds the analysis pipeline and the server around it.
// Engine construction requires a usable tessdata installation; callers
// that already own a pipeline can pass it via NewServerWithPipeline.
func NewServer(cfg Config, logger *slog.Logger) (*Server, error) {
	b := pipeline.NewBuilder().WithConfig(cfg.Pipeline).WithLogger(logger)
	if cfg.RoomsConfigPath != "" {
		rc, err := floorplan.LoadRoomsConfig(cfg.RoomsConfigPath)
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		b = b.WithRoomsConfig(rc)
	}
	p, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	return NewServerWithPipeline(cfg, p, logger), nil
}

// NewServerWithPipeline wraps an existing pipeline. The server takes
// ownership and closes it on Close.
func NewServerWithPipeline(cfg Config, p *pipeline.Pipeline, logger *slog.Logger) *Server {
	return newServer(cfg, p, logger)
}

func newServer(cfg Config, p analyzer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		pipeline:    p,
		corsOrigins: cfg.CORSOrigins,
		timeoutSec:  cfg.TimeoutSec,
		logger:      logger.With("component", "server"),
	}
	if cfg.RateLimit.Enabled {
		s.rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return s.originAllowed(r.Header.Get("Origin")) },
	}
	return s
}

// Close releases server resources.
func (s *Server) Close() error {
	if s.pipeline != nil {
		return s.pipeline.Close()
	}
	return nil
}

// SetupRoutes configures the HTTP routes. The WebSocket route skips the
// status-capturing middleware so the connection can be hijacked.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.wrap(s.healthHandler))
	mux.HandleFunc("/service-info", s.wrap(s.serviceInfoHandler))
	mux.HandleFunc("/analyze", s.wrap(s.rateLimited(s.analyzeHandler)))
	mux.HandleFunc("/ws/analyze", s.analyzeWSHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// Handler returns a fully routed handler for this server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}

// Envelope is the uniform response wrapper for JSON endpoints.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    any                 `json:"data"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Status  int                 `json:"status"`
}

// HealthResponse reports liveness and engine readiness; not enveloped.
type HealthResponse struct {
	Status  string       `json:"status"`
	Time    string       `json:"time"`
	Version string       `json:"version"`
	Engine  EngineStatus `json:"engine"`
}

// EngineStatus describes the recognition backend.
type EngineStatus struct {
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
}

// ServiceInfo describes the service for API discovery.
type ServiceInfo struct {
	ServiceName      string       `json:"service_name"`
	Version          string       `json:"version"`
	Description      string       `json:"description"`
	Capabilities     []string     `json:"capabilities"`
	SupportedFormats []string     `json:"supported_formats"`
	MaxFileSize      string       `json:"max_file_size"`
	Usage            ServiceUsage `json:"usage"`
}

// ServiceUsage documents how to call the analyze endpoint.
type ServiceUsage struct {
	Endpoint      string `json:"endpoint"`
	Method        string `json:"method"`
	ContentType   string `json:"content_type"`
	RequiredField string `json:"required_field"`
}

// FileInfo echoes upload metadata back to the client.
type FileInfo struct {
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	FileType  string `json:"file_type"`
}

// ItemCounts summarizes one room's inventory sizes.
type ItemCounts struct {
	Regular int `json:"regular"`
	Boxes   int `json:"boxes"`
	Heavy   int `json:"heavy"`
}

// DetailedRoom is one flattened room row in the analyze response,
// carrying the floor name alongside the room for table-style consumers.
type DetailedRoom struct {
	RoomName     string     `json:"room_name"`
	RoomType     string     `json:"room_type"`
	AreaSqm      float64    `json:"area_sqm"`
	Floor        string     `json:"floor"`
	RegularItems []string   `json:"regular_items"`
	Boxes        []string   `json:"boxes"`
	HeavyItems   []string   `json:"heavy_items"`
	ItemCounts   ItemCounts `json:"item_counts"`
}

// AnalyzeData is the data section of a successful analyze response.
type AnalyzeData struct {
	AnalysisSuccessful bool                        `json:"analysis_successful"`
	FileInfo           FileInfo                    `json:"file_info"`
	RoomsDetected      int                         `json:"rooms_detected"`
	PropertyAnalysis   *floorplan.Analysis         `json:"property_analysis"`
	InventorySummary   *floorplan.InventorySummary `json:"inventory_summary"`
	DetailedRooms      []DetailedRoom              `json:"detailed_rooms"`
}

// buildAnalyzeData flattens a pipeline result into the HTTP data shape.
func buildAnalyzeData(filename string, sizeBytes int64, analysis *floorplan.Analysis) AnalyzeData {
	data := AnalyzeData{
		AnalysisSuccessful: analysis != nil && analysis.Success,
		FileInfo: FileInfo{
			Filename:  filepath.Base(filename),
			SizeBytes: sizeBytes,
			FileType:  strings.ToLower(filepath.Ext(filename)),
		},
		PropertyAnalysis: analysis,
		DetailedRooms:    []DetailedRoom{},
	}
	if analysis == nil {
		return data
	}
	if analysis.PropertyInfo != nil {
		data.RoomsDetected = analysis.PropertyInfo.TotalRooms
	}
	data.InventorySummary = analysis.InventorySummary
	for _, floor := range analysis.Floors {
		for _, room := range floor.Rooms {
			data.DetailedRooms = append(data.DetailedRooms, DetailedRoom{
				RoomName:     room.Name,
				RoomType:     room.Type,
				AreaSqm:      room.AreaSqm,
				Floor:        floor.Name,
				RegularItems: room.Inventory.RegularItems,
				Boxes:        room.Inventory.Boxes,
				HeavyItems:   room.Inventory.HeavyItems,
				ItemCounts: ItemCounts{
					Regular: len(room.Inventory.RegularItems),
					Boxes:   len(room.Inventory.Boxes),
					Heavy:   len(room.Inventory.HeavyItems),
				},
			})
		}
	}
	return data
}

// maxFileSizeLabel renders the upload cap the way clients expect it.
func maxFileSizeLabel() string {
	return fmt.Sprintf("%dMB", utils.MaxUploadBytes/(1024*1024))
}
