// Package server wires the application together: database, verifier,
// services, handlers, routes, and graceful shutdown. It is the composition
// root — no other package creates cross-layer dependencies.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"edutrack/internal/auth"
	"edutrack/internal/handler"
	"edutrack/internal/middleware"
	sqliteRepo "edutrack/internal/repository/sqlite"
	"edutrack/internal/service"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port     int
	DBPath   string
	JWKSURL  string // where the identity provider publishes its signing keys
	Audience string // required audience claim on every accepted token
}

// Server owns the HTTP router and the database connection; the connection
// is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the dependency chain: sqlite DB → services → handlers,
// plus the credential verifier guarding every /api route.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	verifier, err := auth.NewVerifier(cfg.JWKSURL, cfg.Audience, nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating verifier: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(verifier)

	return s, nil
}

func (s *Server) setupRoutes(verifier *auth.Verifier) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Liveness probe; the only unauthenticated route.
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	studentHandler := handler.NewStudentHandler(service.NewStudentService(s.db, s.logger), s.logger)
	subjectHandler := handler.NewSubjectHandler(service.NewSubjectService(s.db, s.logger), s.logger)
	assignmentHandler := handler.NewAssignmentHandler(service.NewAssignmentService(s.db, s.logger), s.logger)

	// Verification runs before any handler: a request either enters this
	// subtree with a verified identity in its context or never enters it.
	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(verifier, s.logger))

		r.Get("/students", studentHandler.HandleList)
		r.Post("/students", studentHandler.HandleCreate)
		r.Get("/students/{id}", studentHandler.HandleGetByID)
		r.Put("/students/{id}", studentHandler.HandleUpdate)
		r.Patch("/students/{id}", studentHandler.HandleUpdate)
		r.Delete("/students/{id}", studentHandler.HandleDelete)

		r.Get("/subjects", subjectHandler.HandleList)
		r.Post("/subjects", subjectHandler.HandleCreate)
		r.Get("/subjects/{id}", subjectHandler.HandleGetByID)
		r.Put("/subjects/{id}", subjectHandler.HandleUpdate)
		r.Patch("/subjects/{id}", subjectHandler.HandleUpdate)
		r.Delete("/subjects/{id}", subjectHandler.HandleDelete)

		r.Get("/assignments", assignmentHandler.HandleList)
		r.Post("/assignments", assignmentHandler.HandleCreate)
		r.Get("/assignments/{id}", assignmentHandler.HandleGetByID)
		r.Put("/assignments/{id}", assignmentHandler.HandleUpdate)
		r.Patch("/assignments/{id}", assignmentHandler.HandleUpdate)
		r.Delete("/assignments/{id}", assignmentHandler.HandleDelete)
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("jwksUrl", s.config.JWKSURL),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
