package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/xbusd/internal/engine"
	"github.com/muurk/xbusd/internal/logging"
	"github.com/muurk/xbusd/internal/xbus"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The stream is local tooling; cross-origin browser clients are fine.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamMessage is the JSON shape sent to WebSocket clients. Sample is
// set for telemetry; Payload carries the raw bytes of everything else.
type StreamMessage struct {
	Received time.Time          `json:"received"`
	Message  string             `json:"message"`
	Sample   *xbus.SensorSample `json:"sample,omitempty"`
	Payload  []byte             `json:"payload,omitempty"`
}

func encodeEvent(event engine.Event) StreamMessage {
	return StreamMessage{
		Received: event.Received,
		Message:  event.ID.String(),
		Sample:   event.Sample,
		Payload:  event.Payload,
	}
}

// Server streams decoded events to WebSocket clients.
type Server struct {
	hub  *engine.Hub
	addr string
	http *http.Server
}

// New creates a server streaming events from hub on addr.
func New(hub *engine.Hub, addr string) *Server {
	s := &Server{hub: hub, addr: addr}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealthz)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info("Stream server listening", zap.String("addr", s.addr))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("stream server: %w", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}
	remoteAddr := conn.RemoteAddr().String()
	logging.LogConnection(remoteAddr, "websocket_connected")

	sub := s.hub.Subscribe()
	defer func() {
		s.hub.Unsubscribe(sub)
		_ = conn.Close()
		logging.LogConnection(remoteAddr, "websocket_closed")
	}()

	// Reader goroutine: drain control frames and detect disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case event, ok := <-sub:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}
			data, err := json.Marshal(encodeEvent(event))
			if err != nil {
				logging.Error("Failed to encode event", zap.Error(err))
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
