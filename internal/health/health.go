// Package health provides the liveness and readiness endpoints.
//
// /healthz reports that the process is up. /readyz reports whether Joey
// can classify utterances: it turns ready once the intent classifier is
// fitted and stays unready while Joey runs degraded.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Server is a lightweight HTTP server that exposes /healthz and /readyz.
type Server struct {
	port   int
	ready  atomic.Bool
	server *http.Server

	mu          sync.Mutex
	subscribers []func(bool)
}

// New creates a new health check server.
func New(port int) *Server {
	return &Server{port: port}
}

// SetReady records readiness and notifies subscribers of changes.
func (s *Server) SetReady(ready bool) {
	if s.ready.Swap(ready) == ready {
		return
	}
	slog.Info("readiness changed", "ready", ready)

	s.mu.Lock()
	subs := append([]func(bool){}, s.subscribers...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(ready)
	}
}

// Ready reports the current readiness.
func (s *Server) Ready() bool { return s.ready.Load() }

// Subscribe calls fn with the current readiness and again on every change.
func (s *Server) Subscribe(fn func(bool)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
	fn(s.ready.Load())
}

func writeStatus(w http.ResponseWriter, ok bool) {
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "not_ready"})
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Handler returns the health routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, true)
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, s.ready.Load())
	})
	return mux
}

// ListenAndServe starts the health check HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}
