// Package server serves the live web dashboard for a monitoring session.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/SmitUplenchwar2687/logmon/internal/clock"
	"github.com/SmitUplenchwar2687/logmon/internal/logging"
	"github.com/SmitUplenchwar2687/logmon/internal/monitor"
	"github.com/SmitUplenchwar2687/logmon/internal/recorder"
)

// Server is the dashboard HTTP server.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	hub        *Hub
	info       Info
	clock      clock.Clock
	history    *recorder.Recorder
	sampler    *ProcessSampler
	logger     *zap.Logger

	mu     sync.RWMutex
	latest *View
}

// Option configures a Server.
type Option func(*Server)

// WithRecorder exposes the alert history at /api/alerts.
func WithRecorder(rec *recorder.Recorder) Option {
	return func(s *Server) { s.history = rec }
}

// WithClock sets the time source used for views.
func WithClock(c clock.Clock) Option {
	return func(s *Server) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProcessSampler adds process resource usage to every view.
func WithProcessSampler(ps *ProcessSampler) Option {
	return func(s *Server) { s.sampler = ps }
}

// New creates a dashboard server for the session described by info.
func New(addr string, info Info, opts ...Option) *Server {
	s := &Server{
		info:   info,
		clock:  clock.NewRealClock(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("dashboard")
	s.hub = NewHub(s.logger)
	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard/", http.StatusFound)
	})
	r.Get("/ws", s.hub.HandleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/dashboard/", http.StatusMovedPermanently)
		})
		r.Get("/dashboard/", s.handleDashboard)
		r.Get("/health", s.handleHealth)
		r.Get("/api/stats", s.handleStats)
		r.Get("/api/alerts", s.handleAlerts)
	})
	return r
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Publish stores the view of res as the latest and pushes it to every
// websocket client.
func (s *Server) Publish(res monitor.Result) View {
	v := NewView(res, s.info, s.clock.Now())
	if s.sampler != nil {
		if ps, err := s.sampler.Sample(); err == nil {
			v.Process = &ps
		} else {
			s.logger.Debug("Failed to sample process stats", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.latest = &v
	s.mu.Unlock()

	s.hub.Broadcast(v)
	return v
}

// Latest returns the most recently published view.
func (s *Server) Latest() (View, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return View{}, false
	}
	return *s.latest, true
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(DashboardHTML))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"file":   s.info.File,
		"time":   s.clock.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	v, ok := s.Latest()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no data yet"})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Episodes []recorder.Episode `json:"episodes"`
	}{Episodes: []recorder.Episode{}}
	if s.history != nil {
		if eps := s.history.Episodes(); eps != nil {
			resp.Episodes = eps
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Start begins listening. It blocks until the server is shut down.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.StartOnListener(ln)
}

// StartOnListener begins serving on the provided listener.
// Useful for tests that need to pick an ephemeral port.
func (s *Server) StartOnListener(ln net.Listener) error {
	s.logger.Info("Dashboard listening", zap.String("addr", "http://"+ln.Addr().String()+"/dashboard/"))
	err := s.httpServer.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown disconnects websocket clients and gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.CloseAll()
	return s.httpServer.Shutdown(ctx)
}
