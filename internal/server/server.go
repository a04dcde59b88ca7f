package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sundayezeilo/videorecords/internal/config"
	"github.com/sundayezeilo/videorecords/internal/errx"
	"github.com/sundayezeilo/videorecords/internal/httpx"
	"github.com/sundayezeilo/videorecords/internal/idgen"
	"github.com/sundayezeilo/videorecords/internal/video"
)

// videoPath only matches decimal ids; anything else falls through to 404.
const videoPath = "/video/{" + video.PathParam + ":[0-9]+}"

// Server represents the HTTP server with all dependencies.
type Server struct {
	config  *config.Config
	logger  *slog.Logger
	handler *video.Handler
	server  *http.Server
}

// New creates a new Server instance.
func New(cfg *config.Config, logger *slog.Logger, handler *video.Handler) *Server {
	return &Server{
		config:  cfg,
		logger:  logger,
		handler: handler,
	}
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.applyMiddleware(s.setupRoutes())
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully
// within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("starting http server",
			"addr", s.server.Addr,
			"env", s.config.App.Environment,
			"delete_enabled", s.config.Video.DeleteEnabled,
		)
		serverErrors <- s.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		s.logger.Info("received shutdown signal", "cause", context.Cause(ctx))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		// Force close if graceful shutdown fails
		if closeErr := s.server.Close(); closeErr != nil {
			return fmt.Errorf("failed to close server: %w", closeErr)
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/x/health", s.healthCheckHandler).Methods(http.MethodGet)

	r.HandleFunc(videoPath, s.handler.Get).Methods(http.MethodGet)
	r.HandleFunc(videoPath, s.handler.Put).Methods(http.MethodPut)
	r.HandleFunc(videoPath, s.handler.Patch).Methods(http.MethodPatch)
	if s.config.Video.DeleteEnabled {
		r.HandleFunc(videoPath, s.handler.Delete).Methods(http.MethodDelete)
	}

	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	return r
}

// applyMiddleware wraps the handler with middleware in the correct order.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	return httpx.Chain(
		httpx.Recovery(s.logger),             // Outermost: catch panics
		httpx.RequestID(idgen.TimeOrdered()), // Time-ordered request IDs
		httpx.Logger(s.logger),               // Log requests
		httpx.CORS(nil),                      // CORS headers (allow all in dev)
	)(handler)
}

// healthCheckHandler handles health check requests.
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": s.config.App.ServiceName,
		"version": s.config.App.ServiceVersion,
	})
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteKindError(w, errx.NotFound, "the requested URL was not found")
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed",
		fmt.Sprintf("method %s is not allowed on %s", r.Method, r.URL.Path), nil)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("shutting down server")

	if err := s.server.Shutdown(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("shutdown timeout exceeded, forcing close")
			return s.server.Close()
		}
		return err
	}

	return nil
}
