// Package server exposes the analysis pipeline over HTTP.
//
//	POST /v1/analyze   {language, code} -> {result, sections}
//	GET  /healthz      liveness
//	GET  /readyz       local tool availability
//	GET  /metrics      Prometheus exposition
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dshills/codecritic/internal/checks"
	"github.com/dshills/codecritic/internal/logging"
	"github.com/dshills/codecritic/internal/metrics"
	"github.com/dshills/codecritic/internal/review"
)

// Pipeline runs one analysis. *review.Engine implements it.
type Pipeline interface {
	Run(ctx context.Context, req review.Request) (*review.Result, error)
}

// ToolDetector reports local tool availability. *checks.Set implements it.
type ToolDetector interface {
	Detect(ctx context.Context) []checks.ToolStatus
}

// Options configures a Server.
type Options struct {
	Version string
	// AllowedOrigins enables CORS for these origins. Empty means
	// cross-origin browser requests are rejected.
	AllowedOrigins []string
	MaxBodyBytes   int64
	// RequestTimeout bounds a whole request, model call included.
	RequestTimeout time.Duration
	Tools          ToolDetector
	Metrics        *metrics.Recorder
	Logger         *zap.Logger
}

// Server serves the HTTP API.
type Server struct {
	pipeline Pipeline
	opts     Options
	validate *validator.Validate
	logger   *zap.Logger
}

// New creates a Server.
func New(p Pipeline, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 150 * time.Second
	}
	return &Server{
		pipeline: p,
		opts:     opts,
		validate: validator.New(),
		logger:   logging.OrNop(opts.Logger),
	}
}

// Router builds the chi router with its middleware stack.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	// An empty origin list means same-origin only. go-chi/cors treats an
	// empty list as "*", so the CORS handler is only installed when origins
	// are configured.
	if len(s.opts.AllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	} else {
		router.Use(sameOrigin)
	}
	router.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	if s.opts.Metrics != nil {
		router.Use(s.opts.Metrics.Middleware(routePattern))
	}

	router.Get("/healthz", s.handleHealthz)
	router.Get("/readyz", s.handleReadyz)
	if s.opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}
	router.Route("/v1", func(r chi.Router) {
		r.With(middleware.Timeout(s.opts.RequestTimeout)).Post("/analyze", s.handleAnalyze)
	})

	return router
}

// routePattern keeps the metrics path label bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 15 * time.Second,
		// Model calls can take up to the request timeout.
		WriteTimeout: s.opts.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("codecritic server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("codecritic server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// sameOrigin rejects browser requests whose Origin is not the server itself.
// Requests without an Origin header (curl, the CLI) pass.
func sameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host != r.Host {
			writeJSON(w, http.StatusForbidden, ErrorResponse{
				Code:    "cross_origin",
				Message: "Cross-origin requests are not allowed; set server.allowedOrigins",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
