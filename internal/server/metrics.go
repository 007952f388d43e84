package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "floorscan_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "floorscan_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// analyzeRequestsTotal counts analyses by outcome: success, no_text,
	// validation_failed, unavailable, timeout, error.
	analyzeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "floorscan_analyze_requests_total",
			Help: "Total number of floor-plan analysis requests",
		},
		[]string{"status"},
	)

	analyzeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "floorscan_analyze_duration_seconds",
			Help:    "End-to-end floor-plan analysis duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50, 100},
		},
	)

	analyzeStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "floorscan_analyze_stage_duration_seconds",
			Help:    "Per-stage floor-plan analysis duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	roomsDetected = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "floorscan_rooms_detected",
			Help:    "Number of rooms detected per analysis",
			Buckets: []float64{0, 1, 2, 4, 6, 8, 12, 16, 24, 32},
		},
	)

	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "floorscan_upload_size_bytes",
			Help:    "Size of uploaded floor-plan files in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 5 * 1024 * 1024, 10 * 1024 * 1024},
		},
	)

	rateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "floorscan_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "floorscan_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "floorscan_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"},
	)
)
