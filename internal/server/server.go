package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"github.com/haragam22/litmind/internal/api"
	"github.com/haragam22/litmind/internal/assist"
	"github.com/haragam22/litmind/internal/auth"
	"github.com/haragam22/litmind/internal/catalog"
	"github.com/haragam22/litmind/internal/config"
	"github.com/haragam22/litmind/internal/gateway"
	"github.com/haragam22/litmind/internal/imagen"
	"github.com/haragam22/litmind/internal/reader"
	"github.com/haragam22/litmind/internal/server/endpoints"
	"github.com/haragam22/litmind/internal/svcctx"
)

// Server is the main Litmind HTTP server. It owns the boundary clients
// (catalog, AI gateway, image generation, token verification) and
// rebuilds them when configuration changes.
type Server struct {
	httpServer *http.Server
	configMgr  *config.Manager
	logger     *slog.Logger

	// services holds all core services for context enrichment
	mu       sync.RWMutex
	services *svcctx.Services
	running  bool

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
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
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ConfigManager == nil {
		return nil, errors.New("config manager is required")
	}

	s := &Server{
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
	}

	s.services = buildServices(cfg.ConfigManager.Get(), cfg.Logger)
	cfg.ConfigManager.OnChange(func(c *config.Config) {
		s.mu.Lock()
		s.services = buildServices(c, cfg.Logger)
		s.mu.Unlock()
		cfg.Logger.Info("services rebuilt from config")
	})

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server. All JSON boundaries answer with permissive
	// CORS headers; preflight requests get an empty 2xx.
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireServices)

	handler := cors.AllowAll().Handler(s.withServices(mux))

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute, // generation calls can be slow
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// buildServices constructs all boundary clients from configuration.
func buildServices(c *config.Config, logger *slog.Logger) *svcctx.Services {
	catalogClient := catalog.New(catalog.Config{
		BaseURL: c.Catalog.BaseURL,
		APIKey:  config.ResolveEnvVars(c.Catalog.APIKey),
		Timeout: time.Duration(c.Catalog.TimeoutSeconds) * time.Second,
		Logger:  logger,
	})

	gw := gateway.New(gateway.Config{
		BaseURL:      c.Gateway.BaseURL,
		APIKey:       config.ResolveEnvVars(c.Gateway.APIKey),
		DefaultModel: c.Gateway.Model,
		Timeout:      time.Duration(c.Gateway.TimeoutSeconds) * time.Second,
		MaxRetries:   c.Gateway.MaxRetries,
		RateLimit:    c.Gateway.RateLimit,
		Logger:       logger,
	})

	img := imagen.New(imagen.Config{
		PromptBaseURL: c.Imagen.PromptBaseURL,
		PromptModel:   c.Imagen.PromptModel,
		PromptAPIKey:  config.ResolveEnvVars(c.Imagen.PromptAPIKey),
		ImageBaseURL:  c.Imagen.ImageBaseURL,
		ImageModel:    c.Imagen.ImageModel,
		ImageAPIKey:   config.ResolveEnvVars(c.Imagen.ImageAPIKey),
		Logger:        logger,
	})

	verifier := auth.NewVerifier(auth.Config{
		Domain:   config.ResolveEnvVars(c.Auth.Domain),
		Audience: config.ResolveEnvVars(c.Auth.Audience),
		Logger:   logger,
	})

	return &svcctx.Services{
		Catalog:    catalogClient,
		Fetcher:    reader.NewFetcher(catalogClient, c.Reader.PageSize, logger),
		Translator: assist.NewTranslator(gw, logger),
		Assistant:  assist.NewAssistant(gw, logger),
		Imagen:     img,
		Verifier:   verifier,
		Logger:     logger,
	}
}

// Start starts the server. It blocks until the context is cancelled or
// an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
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

// Services returns the current service set.
func (s *Server) Services() *svcctx.Services {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.services
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svcs := s.Services(); svcs != nil {
			ctx = svcctx.WithServices(ctx, svcs)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireServices is middleware that ensures the service set is built.
// Returns 503 Service Unavailable before initialization completes.
func (s *Server) requireServices(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Services() == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
