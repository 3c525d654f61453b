package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/ats-engine/internal/config"
	"github.com/terra-clan/ats-engine/internal/extract"
	"github.com/terra-clan/ats-engine/internal/health"
	"github.com/terra-clan/ats-engine/internal/hiring"
	"github.com/terra-clan/ats-engine/internal/metrics"
	"github.com/terra-clan/ats-engine/internal/pipeline"
	"github.com/terra-clan/ats-engine/internal/storage"
)

const defaultRequestTimeout = 120 * time.Second

// Deps are the services the API server routes requests to
type Deps struct {
	Manager   hiring.Manager
	Builder   *pipeline.Builder
	Extractor *extract.Extractor
	Repo      storage.Repository

	// Checks backs GET /ready. When nil only the database is checked.
	Checks *health.Registry
	// SeedDir holds the YAML fixtures loaded by POST /seed
	SeedDir string
	// UploadMaxBytes caps the multipart body of POST /upload-resume
	UploadMaxBytes int64
}

// Server represents the HTTP API server
type Server struct {
	config    config.ServerConfig
	router    *chi.Mux
	manager   hiring.Manager
	builder   *pipeline.Builder
	extractor *extract.Extractor
	repo      storage.Repository
	checks    *health.Registry
	seedDir   string
	maxUpload int64
}

// NewServer creates a new API server
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	s := &Server{
		config:    cfg,
		manager:   deps.Manager,
		builder:   deps.Builder,
		extractor: deps.Extractor,
		repo:      deps.Repo,
		checks:    deps.Checks,
		seedDir:   deps.SeedDir,
		maxUpload: deps.UploadMaxBytes,
	}
	if s.maxUpload <= 0 {
		s.maxUpload = 10 << 20
	}
	if s.checks == nil {
		s.checks = health.NewRegistry()
		s.checks.Register("database", health.CheckFunc(s.manager.Ping))
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

	timeout := s.config.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(metricsMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", s.handleListJobs)
		r.Post("/", s.handleCreateJob)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetJob)
			r.Put("/", s.handleUpdateJob)
			r.Delete("/", s.handleDeleteJob)
		})
	})

	r.Route("/criteria", func(r chi.Router) {
		r.Get("/", s.handleGetCriteria)
		r.Post("/", s.handleUpsertCriteria)
	})

	r.Route("/candidates", func(r chi.Router) {
		r.Get("/", s.handleListCandidates)
		r.Get("/export", s.handleExportCandidates)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetCandidate)
			r.Put("/", s.handleUpdateCandidate)
			r.Delete("/", s.handleDeleteCandidate)
		})
	})

	r.Post("/analyze", s.handleAnalyze)
	r.Post("/upload-resume", s.handleUploadResume)
	r.Post("/seed", s.handleSeed)

	s.router = r
}
