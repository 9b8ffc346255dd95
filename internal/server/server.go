// Package server hosts reader sessions over HTTP: it owns the document
// library, the reading-session store, and the endpoint registry.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/byte-squad-abac/bookreader/internal/api"
	"github.com/byte-squad-abac/bookreader/internal/config"
	"github.com/byte-squad-abac/bookreader/internal/document"
	"github.com/byte-squad-abac/bookreader/internal/home"
	"github.com/byte-squad-abac/bookreader/internal/library"
	"github.com/byte-squad-abac/bookreader/internal/reader"
	"github.com/byte-squad-abac/bookreader/internal/server/endpoints"
	"github.com/byte-squad-abac/bookreader/internal/session"
	"github.com/byte-squad-abac/bookreader/internal/svcctx"
)

// Server is the main bookreader HTTP server.
type Server struct {
	httpServer *http.Server
	configMgr  *config.Manager
	home       *home.Dir
	logger     *slog.Logger

	library      *library.Library
	sessionStore *session.Store

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8590)
	Port int
	// Home is the bookreader home directory
	Home *home.Dir
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8590
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == nil {
		dir, err := home.New("")
		if err != nil {
			return nil, err
		}
		cfg.Home = dir
	}

	s := &Server{
		configMgr: cfg.ConfigManager,
		home:      cfg.Home,
		logger:    cfg.Logger,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the server. It blocks until the context is cancelled or an
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.home.EnsureExists(); err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to prepare home directory: %w", err)
	}

	// Open the session store
	appCfg := s.appConfig()
	store, err := session.OpenStore(s.home.SessionDBPath(appCfg.Session.DBFile))
	if err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to open session store: %w", err)
	}
	s.sessionStore = store
	s.logger.Info("session store ready", "path", s.home.SessionDBPath(appCfg.Session.DBFile))

	// Build the library over the store; reader config is read per-open so
	// hot-reloaded tunables apply to new documents.
	tracker := session.NewTracker(store, appCfg.TickInterval(), s.logger)
	s.library = library.New(library.Config{
		Home:    s.home,
		Tracker: tracker,
		ReaderConfig: func() reader.Config {
			return s.appConfig().ReaderConfig()
		},
		DocumentOptions: func() document.Options {
			return s.appConfig().DocumentOptions()
		},
		Logger: s.logger,
	})

	// Create services struct for context enrichment
	s.services = &svcctx.Services{
		Library:       s.library,
		SessionStore:  s.sessionStore,
		ConfigManager: s.configMgr,
		Home:          s.home,
		Logger:        s.logger,
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown: drain HTTP, close all documents
// (ending their sessions), then close the store.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if s.library != nil {
		s.library.CloseAll()
	}
	if s.sessionStore != nil {
		if err := s.sessionStore.Close(); err != nil {
			s.logger.Error("session store close error", "error", err)
		}
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Library returns the document library.
// Returns nil if the server hasn't started yet.
func (s *Server) Library() *library.Library {
	return s.library
}

// SessionStore returns the reading-session store.
// Returns nil if the server hasn't started yet.
func (s *Server) SessionStore() *session.Store {
	return s.sessionStore
}

// appConfig returns the current application config, falling back to the
// defaults when no manager was provided.
func (s *Server) appConfig() *config.Config {
	if s.configMgr != nil {
		return s.configMgr.Get()
	}
	return config.DefaultConfig()
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable if the library or store aren't ready.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.library == nil || s.sessionStore == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
