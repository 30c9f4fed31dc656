package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/custodia-labs/sercha-hubspot/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-hubspot/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-hubspot/internal/worker"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// WorkerHealth reports the state of a background worker
type WorkerHealth interface {
	Health(ctx context.Context) worker.Health
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	version    string
	logger     *slog.Logger

	integrationService driving.IntegrationService

	// authAdapter verifies caller tokens. Nil disables caller authentication.
	authAdapter driven.AuthAdapter

	// store backs the readiness check
	store Pinger

	// janitor, when set, must be running for the service to be ready
	janitor WorkerHealth

	allowedOrigins []string
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8000,
		Version:        "dev",
		AllowedOrigins: []string{"http://localhost:3000"},
	}
}

// NewServer creates a new HTTP server. authAdapter may be nil.
func NewServer(
	cfg Config,
	integrationService driving.IntegrationService,
	store Pinger,
	authAdapter driven.AuthAdapter,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router:             http.NewServeMux(),
		version:            cfg.Version,
		logger:             logger,
		integrationService: integrationService,
		authAdapter:        authAdapter,
		store:              store,
		allowedOrigins:     cfg.AllowedOrigins,
	}

	s.setupRoutes()
	s.handler = NewRecoveryMiddleware(logger).Handler(
		NewLoggingMiddleware(logger).Handler(
			NewCORSMiddleware(cfg.AllowedOrigins).Handler(s.router)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authAdapter)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Integration endpoints
	s.router.Handle("POST /integrations/hubspot/authorize",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleAuthorize)))
	// Callback is public - receives redirects from HubSpot
	s.router.HandleFunc("GET /integrations/hubspot/oauth2callback", s.handleCallback)
	s.router.Handle("POST /integrations/hubspot/credentials",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleCredentials)))
	s.router.Handle("POST /integrations/hubspot/load",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleLoad)))
}

// SetJanitor adds the expiry worker to the readiness check
func (s *Server) SetJanitor(janitor WorkerHealth) {
	s.janitor = janitor
}

// Handler returns the fully wrapped handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

