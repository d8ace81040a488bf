// package server contains middleware & handlers for the songbook JSON API
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/shared"
	"golang.org/x/time/rate"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, recovery and rate limiting.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the songbook service.
// Implementations handle a group of related endpoints.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// NewRouter builds the API router over cat with recovery, logging and, when cfg sets a rate, rate limiting.
func NewRouter(cfg shared.ServerConfig, cat *catalog.Catalog, logger *log.Logger) *BasicRouter {
	r := NewBasicRouter()
	r.Use(RecoverMiddleware(logger), LoggingMiddleware(logger))
	if cfg.RateLimit > 0 {
		burst := max(cfg.Burst, 1)
		r.Use(RateLimitMiddleware(rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)))
	}

	api := NewCatalogHandler(cat, logger)
	r.Handle(http.MethodGet, "/health", http.HandlerFunc(api.health))
	r.Handle(http.MethodGet, "/songs", http.HandlerFunc(api.listSongs))
	r.Handle(http.MethodGet, "/songs/{id}", http.HandlerFunc(api.getSong))
	r.Handle(http.MethodGet, "/stats", http.HandlerFunc(api.stats))
	r.Handler(NewKeyHandler())

	return r
}

// Server serves the JSON API until its context is cancelled.
type Server struct {
	http   *http.Server
	logger *log.Logger
}

// New creates a Server listening on cfg's address.
func New(cfg shared.ServerConfig, cat *catalog.Catalog, logger *log.Logger) *Server {
	router := NewRouter(cfg, cat, logger)
	for _, pattern := range router.Patterns() {
		logger.Debug("route", "pattern", pattern)
	}
	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Addr is the configured listen address.
func (s *Server) Addr() string { return s.http.Addr }

// Run listens until ctx is done, then shuts down gracefully with a five second grace period.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
