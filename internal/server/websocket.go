package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// wsRequest is the single client frame opening an analysis: a filename
// for extension validation and the image bytes (base64 in JSON).
type wsRequest struct {
	Filename string `json:"filename"`
	Image    []byte `json:"image"`
}

// wsMessage is one server frame: a progress update, the final result,
// or an error.
type wsMessage struct {
	Type      string `json:"type"` // "progress", "result", "error"
	Stage     string `json:"stage,omitempty"`
	Completed int    `json:"completed,omitempty"`
	Total     int    `json:"total,omitempty"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
}

const (
	wsReadDeadline  = 60 * time.Second
	wsWriteDeadline = 10 * time.Second
	wsPingInterval  = 30 * time.Second
)

// analyzeWSHandler runs the pipeline for an image sent over a WebSocket,
// streaming per-stage progress before the final result. Registered
// outside the wrap middleware so the connection can be hijacked.
func (s *Server) analyzeWSHandler(w http.ResponseWriter, r *http.Request) {
	if s.rateLimiter != nil {
		if _, ok := s.rateLimiter.Allow(getClientIP(r)); !ok {
			rateLimitHits.Inc()
			s.writeError(w, http.StatusTooManyRequests, "Rate limit exceeded", nil)
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()
	s.logger.Info("websocket connected", "client", getClientIP(r))

	_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	})

	done := make(chan struct{})
	defer close(done)
	go keepAlive(conn, done)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Error("websocket read", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
		if messageType != websocket.TextMessage {
			s.sendWS(conn, wsMessage{Type: "error", Message: "Expected a JSON text frame"})
			continue
		}
		s.handleWSAnalyze(r.Context(), conn, data)
		_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	}
}

func keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteDeadline)); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleWSAnalyze(ctx context.Context, conn *websocket.Conn, frame []byte) {
	var req wsRequest
	if err := json.Unmarshal(frame, &req); err != nil {
		s.sendWS(conn, wsMessage{Type: "error", Message: "Invalid request: " + err.Error()})
		return
	}
	if len(req.Image) == 0 {
		s.sendWS(conn, wsMessage{Type: "error", Message: "No image data provided"})
		return
	}
	if req.Filename == "" {
		req.Filename = "upload.png"
	}
	if s.pipeline == nil || !s.pipeline.EngineReady() {
		analyzeRequestsTotal.WithLabelValues("unavailable").Inc()
		s.sendWS(conn, wsMessage{Type: "error", Message: "Analysis engine unavailable"})
		return
	}

	if s.timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.timeoutSec)*time.Second)
		defer cancel()
	}

	uploadSizeBytes.Observe(float64(len(req.Image)))
	onStage := func(stage string, completed, total int, elapsed time.Duration) {
		recordStageMetrics(stage, completed, total, elapsed)
		s.sendWS(conn, wsMessage{Type: "progress", Stage: stage, Completed: completed, Total: total})
	}

	start := time.Now()
	res, err := s.pipeline.AnalyzeWithProgress(ctx, req.Image, req.Filename, onStage)
	analyzeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		failure := classifyAnalyzeError(res, err)
		analyzeRequestsTotal.WithLabelValues(failure.Outcome).Inc()
		if failure.Outcome == "error" {
			s.logger.Error("analysis failed", "error", err)
		}
		s.sendWS(conn, wsMessage{Type: "error", Message: failure.Message})
		return
	}

	analyzeRequestsTotal.WithLabelValues("success").Inc()
	if res.Analysis != nil && res.Analysis.PropertyInfo != nil {
		roomsDetected.Observe(float64(res.Analysis.PropertyInfo.TotalRooms))
	}
	s.sendWS(conn, wsMessage{
		Type: "result",
		Data: buildAnalyzeData(req.Filename, int64(len(req.Image)), res.Analysis),
	})
}

func (s *Server) sendWS(conn *websocket.Conn, msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("marshal websocket message", "error", err)
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Error("send websocket message", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
