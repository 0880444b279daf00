// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package api serves the local control API of the tray.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/wingedpig/scripttray/internal/api/handlers"
	"github.com/wingedpig/scripttray/internal/api/middleware"
	"github.com/wingedpig/scripttray/internal/events"
	"pkt.systems/pslog"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Host string
	Port int
}

// Dependencies holds all dependencies for API handlers.
type Dependencies struct {
	EventBus   events.EventBus
	Dispatcher handlers.Dispatcher // Selections bridge of the dispatch loop
	Dir        string              // Scripts folder
	Extension  string
	Timeout    time.Duration // How long a request waits for the loop
	Logger     pslog.Logger
	Version    string
}

// NewRouter creates a new API router.
func NewRouter(deps Dependencies) *mux.Router {
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}

	r := mux.NewRouter()

	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Version(deps.Version))

	api := r.PathPrefix("/api/v1").Subrouter()

	scriptHandler := handlers.NewScriptHandler(deps.Dir, deps.Extension, deps.Dispatcher, deps.Timeout)
	api.HandleFunc("/scripts", scriptHandler.List).Methods("GET")
	api.HandleFunc("/scripts/{name}/run", scriptHandler.Run).Methods("POST")

	sessionHandler := handlers.NewSessionHandler(deps.Dispatcher, deps.Timeout)
	api.HandleFunc("/session/stop", sessionHandler.Stop).Methods("POST")
	api.HandleFunc("/session/reload", sessionHandler.Reload).Methods("POST")
	api.HandleFunc("/status", sessionHandler.Status).Methods("GET")

	eventHandler := handlers.NewEventHandler(deps.EventBus, logger)
	api.HandleFunc("/events", eventHandler.History).Methods("GET")
	api.HandleFunc("/events/ws", eventHandler.WebSocket).Methods("GET")

	api.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteJSON(w, http.StatusOK, map[string]string{"version": deps.Version})
	}).Methods("GET")

	return r
}

// Server represents the API server.
type Server struct {
	router *mux.Router
	cfg    ServerConfig
	logger pslog.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	deps.Logger = logger.With("component", "api")
	return &Server{
		router: NewRouter(deps),
		cfg:    cfg,
		logger: deps.Logger,
	}
}

// Router returns the underlying router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Listen binds the listening socket. Port 0 picks a free port.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ListenAndServe serves until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.mu.Lock()
	srv, ln := s.server, s.listener
	s.mu.Unlock()

	s.logger.Info("API server listening", "addr", "http://"+ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	s.logger.Info("shutting down API server")

	shutdownCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	return srv.Shutdown(shutdownCtx)
}
