// Package server exposes the document backend over HTTP: the viewer page,
// the file-tree and content APIs, the search API, and the websocket
// live-reload channel. It consumes the backend only through the vfs.Backend
// contract and never knows which variant is active.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mdserve/mdserve/internal/config"
	"github.com/mdserve/mdserve/internal/logging"
	"github.com/mdserve/mdserve/internal/search"
	"github.com/mdserve/mdserve/internal/vfs"
)

// Server serves one document backend over HTTP.
type Server struct {
	cfg     *config.Config
	backend vfs.Backend
	engine  *search.Engine
	logger  logging.Logger
	hub     *Hub

	httpServer *http.Server
}

// New creates a server around an active backend.
func New(cfg *config.Config, backend vfs.Backend, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		backend: backend,
		engine:  search.NewEngine(logger),
		logger:  logger.WithComponent("server"),
		hub:     NewHub(logger),
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /api/files", s.handleFiles)
	mux.HandleFunc("GET /api/file", s.handleFile)
	mux.HandleFunc("GET /api/html", s.handleHTML)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /ws", s.hub.HandleWS)
	return corsMiddleware(mux)
}

// corsMiddleware adds the permissive CORS header the local viewer relies on.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

// Start runs the HTTP server until it fails or is shut down.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info(ctx, "server listening",
		"addr", s.httpServer.Addr,
		"virtual", s.backend.IsVirtual(),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes live-reload connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.CloseAll()
	return s.httpServer.Shutdown(ctx)
}

// NotifyReload broadcasts a reload signal to all connected viewers. The
// watcher calls this on document changes.
func (s *Server) NotifyReload() {
	s.hub.Broadcast("reload")
}
