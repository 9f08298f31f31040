package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"fyf-go/internal/fyf"
)

// Server is the HTTP boundary of the service. It maps routes onto
// FYFService operations, enforces session authentication and the
// view/modify gates, and translates domain errors into status codes.
type Server struct {
	service    *fyf.FYFService
	logger     fyf.Logger
	clock      fyf.Clock
	router     *chi.Mux
	httpServer *http.Server
	loginTTL   time.Duration
}

// NewServer creates a Server around service. clock is the time source for
// the session-expiry check; loginTTL is the lifetime of sessions issued by
// login.
func NewServer(service *fyf.FYFService, logger fyf.Logger, clock fyf.Clock, addr string, loginTTL time.Duration) *Server {
	s := &Server{
		service:  service,
		logger:   logger,
		clock:    clock,
		router:   chi.NewRouter(),
		loginTTL: loginTTL,
	}
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(countRequests)

	// The original deployment allowed all origins with credentials.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	s.router.Route("/user", func(r chi.Router) {
		r.Post("/", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/", s.handleCurrentUser)
			r.Put("/", s.handleUpdateUser)
			r.Delete("/", s.handleDeleteUser)
			r.Post("/logout", s.handleLogout)
		})
	})

	s.router.Route("/entry", func(r chi.Router) {
		r.Use(s.requireUser)
		r.Get("/metadatas", s.handleListEntries)
		r.Get("/metadata", s.handleGetEntry)
		r.Get("/content", s.handleEntryContent)
		r.Post("/", s.handleAddEntry)
		r.Put("/finalize", s.handleFinalize)
		r.Put("/metadata", s.handleUpdateEntry)
		r.Delete("/", s.handleDeleteEntry)
		r.Put("/restore", s.handleRestoreEntry)
	})
}

func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.GetOrCreateCounter(fmt.Sprintf(`fyf_http_requests_total{method=%q}`, r.Method)).Inc()
		next.ServeHTTP(w, r)
	})
}

// Handler returns the router, for tests that drive the server through
// httptest without a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
