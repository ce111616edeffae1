// Package web serves the spawn service over HTTP: a JSON API and a single
// HTML page showing profiles, the current scene and recent spawns.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/scenecsv/internal/core"
	"github.com/JonMunkholm/scenecsv/internal/web/middleware"
)

// DefaultMaxBodySize caps POST /api/parse bodies when none is configured.
const DefaultMaxBodySize int64 = 10 << 20

// Options configures a Server. Zero values select defaults.
type Options struct {
	RequestTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxBodySize    int64
	TrustedProxies []string
	APIKeys        []string // Required on mutating routes when non-empty
}

// Server is the HTTP front end of the spawn service.
type Server struct {
	service *core.Service
	opts    Options
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server for service.
func NewServer(service *core.Service, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}

	s := &Server{
		service: service,
		opts:    opts,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.opts.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.opts.RequestTimeout))
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleScenePage)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/profiles", s.handleListProfiles)
		r.Get("/profiles/{name}/preview", s.handlePreview)
		r.Get("/scene", s.handleGetScene)
		r.Get("/scene/{name}", s.handleGetNode)
		r.Get("/history", s.handleHistory)
		r.Get("/prefabs", s.handleListPrefabs)
		r.Post("/parse", s.handleParse)

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(s.opts.APIKeys))
			r.Post("/spawn/{name}", s.handleSpawn)
			r.Delete("/scene", s.handleClearScene)
			r.Post("/prefabs", s.handleSavePrefab)
			r.Delete("/prefabs/{name}", s.handleDeletePrefab)
		})
	})
}

// Start listens on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
