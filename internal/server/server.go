package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"

	"todo_api/internal/config"
)

// Server wraps an *http.Server to provide start/shutdown lifecycle.
type Server struct {
	mu         sync.Mutex
	httpServer *http.Server
}

const maxHeaderBytes = 1 << 20 // 1 MB

// newHTTPServer builds a configured *http.Server for the given address and handler.
func newHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              normalizeAddr(cfg.Port),
		Handler:           handler,
		MaxHeaderBytes:    maxHeaderBytes,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// normalizeAddr ensures the provided port is a valid address (accepts "8080" or ":8080").
func normalizeAddr(port string) string {
	if port == "" || strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// Run serves handler until Shutdown is called. A graceful stop returns nil.
func (s *Server) Run(cfg config.ServerConfig, handler http.Handler) error {
	return ignoreClosed(s.set(newHTTPServer(cfg, handler)).ListenAndServe())
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ln net.Listener, cfg config.ServerConfig, handler http.Handler) error {
	return ignoreClosed(s.set(newHTTPServer(cfg, handler)).Serve(ln))
}

// Shutdown gracefully stops the server, allowing in-flight requests to complete.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) set(srv *http.Server) *http.Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.httpServer = srv
	return srv
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
