package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/graduate-survey/internal/auth"
	"github.com/terra-clan/graduate-survey/internal/catalog"
	"github.com/terra-clan/graduate-survey/internal/config"
	"github.com/terra-clan/graduate-survey/internal/events"
	"github.com/terra-clan/graduate-survey/internal/health"
	"github.com/terra-clan/graduate-survey/internal/sessions"
	"github.com/terra-clan/graduate-survey/internal/submissions"
	"github.com/terra-clan/graduate-survey/internal/survey"
)

const requestTimeout = 60 * time.Second

// Deps are the services the HTTP API is built on
type Deps struct {
	Catalogs    *catalog.Loader
	Submissions *submissions.Service
	Sessions    *sessions.Manager
	Auth        *auth.Manager
	Health      *health.Registry
	Events      *events.Hub
	PageOptions survey.PageOptions
	// DefaultLanguage is used when a request names no language
	DefaultLanguage string
	// Location buckets daily statistics
	Location *time.Location
}

// Server represents the HTTP API server
type Server struct {
	config    config.ServerConfig
	router    *chi.Mux
	deps      Deps
	adminAuth *AdminAuth
}

// NewServer creates a new API server
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	if deps.DefaultLanguage == "" {
		deps.DefaultLanguage = submissions.DefaultLanguage
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Health == nil {
		deps.Health = health.NewRegistry()
	}
	if deps.Events == nil {
		deps.Events = events.NewHub()
	}

	s := &Server{
		config:    cfg,
		deps:      deps,
		adminAuth: NewAdminAuth(deps.Auth),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	origins := s.config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		// Respondent routes (public)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Route("/catalogs", func(r chi.Router) {
				r.Get("/", s.handleListCatalogs)
				r.Get("/{lang}", s.handleGetCatalog)
				r.Get("/{lang}/pages", s.handleGetPages)
			})

			r.Post("/responses", s.handleSaveResponse)

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", s.handleCreateSession)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetSession)
					r.Delete("/", s.handleDeleteSession)
					r.Put("/answers/{questionID}", s.handleSetAnswer)
					r.Delete("/answers/{questionID}", s.handleClearAnswer)
					r.Post("/next", s.handleNext)
					r.Post("/previous", s.handlePrevious)
					r.Post("/continue", s.handleContinue)
					r.Post("/reset", s.handleReset)
					r.Post("/jump", s.handleJump)
				})
			})
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.With(middleware.Timeout(requestTimeout)).Post("/login", s.handleAdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(s.adminAuth.Authenticate)

				// Long-lived, no request timeout
				r.Get("/stream", s.handleStream)

				r.Group(func(r chi.Router) {
					r.Use(middleware.Timeout(requestTimeout))
					r.Get("/responses", s.handleListResponses)
					r.Get("/responses/{id}", s.handleGetResponse)
					r.Get("/statistics", s.handleStatistics)
					r.Get("/export", s.handleExport)
					r.Get("/sessions", s.handleSessionCount)
				})
			})
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
