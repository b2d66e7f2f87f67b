// Package server exposes the linking, keyword and project operations as a
// JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"seosuite/internal/config"
	"seosuite/internal/core"
	"seosuite/internal/fetch"
	"seosuite/internal/logger"
	"seosuite/internal/metrics"
	"seosuite/internal/services"
	"seosuite/internal/store"
)

// Deps are the components the handlers run on. Metrics may be nil.
type Deps struct {
	Store     *store.Store
	Linker    *services.Linker
	Extractor *fetch.BatchExtractor
	Metrics   *metrics.Metrics
	// Keywords is the extractor configuration requests start from.
	Keywords core.ExtractorConfig
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	deps       Deps
	config     config.Server
	log        *slog.Logger
}

// New creates a new HTTP server instance
func New(cfg config.Server, deps Deps) *Server {
	s := &Server{
		router: chi.NewRouter(),
		deps:   deps,
		config: cfg,
		log:    logger.Get(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeoutDuration(),
		WriteTimeout: cfg.WriteTimeoutDuration(),
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)

	// Keyword extraction may fetch many pages; stay inside the write timeout
	if timeout := s.config.WriteTimeoutDuration(); timeout > 0 {
		s.router.Use(middleware.Timeout(timeout))
	}

	if s.config.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Use(limitBody)

		r.Post("/links", s.handleGenerateLinks)
		r.Post("/clusters", s.handleClusters)
		r.Post("/keywords/extract", s.handleExtractKeywords)

		r.Route("/convert", func(r chi.Router) {
			r.Post("/urls", s.handleConvertURLs)
			r.Post("/columns", s.handleConvertColumns)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.handleListProjects)
			r.Post("/", s.handleCreateProject)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetProject)
				r.Patch("/", s.handleRenameProject)
				r.Delete("/", s.handleDeleteProject)
				r.Post("/activate", s.handleActivateProject)
				r.Get("/state", s.handleGetState)
				r.Put("/state", s.handleSaveState)

				r.Get("/keywords", s.handleListKeywords)
				r.Post("/keywords", s.handleAddKeywords)
				r.Patch("/keywords/{keywordID}", s.handleUpdateKeyword)
				r.Delete("/keywords/{keywordID}", s.handleDeleteKeyword)
			})
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.config.ReadTimeout,
		"write_timeout", s.config.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
