// Package api exposes the analytics dashboard and chat endpoints as a
// JSON HTTP API.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/askcampus/askcampus/internal/assistant"
	"github.com/askcampus/askcampus/internal/recorder"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger     *slog.Logger
	Recorder   *recorder.Recorder   // Required
	Assistant  *assistant.Assistant // Optional: nil disables POST /api/v1/chat
	TrustProxy bool                 // Trust X-Real-IP/X-Forwarded-For headers (behind reverse proxy)
	RateBurst  int                  // Rate limiter burst size per IP (0 = default 60)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Recorder == nil {
		return nil, errors.New("recorder is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	st := &statsHandler{recorder: cfg.Recorder, logger: logger}
	uh := &userHandler{recorder: cfg.Recorder, logger: logger}
	ch := &chatHandler{assistant: cfg.Assistant, recorder: cfg.Recorder, logger: logger}
	eh := &exportHandler{recorder: cfg.Recorder, logger: logger}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/stats", st.getStats)
	mux.HandleFunc("GET /api/v1/activity", st.getActivity)

	mux.HandleFunc("GET /api/v1/users", uh.listUsers)
	mux.HandleFunc("GET /api/v1/users/{id}/history", uh.getHistory)
	mux.HandleFunc("GET /api/v1/users/{id}/stats", uh.getUserStats)
	mux.HandleFunc("DELETE /api/v1/users/{id}", uh.deleteUser)

	mux.HandleFunc("POST /api/v1/chat", ch.send)

	mux.HandleFunc("GET /api/v1/export", eh.getExport)

	// Rate limiter: per-IP token bucket (1 token/sec refill)
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Build middleware stack (outermost first):
	//   Recovery → RequestID → Logging → RateLimit → Routes
	// RequestID must be before Logging so request_id is available in log attributes.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health probes bypass the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
