// Package server wires the HTTP surface of CineShelf: router, middleware,
// handlers and graceful shutdown.
//
// It is the composition root of the HTTP process:
//
//	config → sqlite.DB → CollectionService → handlers
//	       → omdb.Client ───────────────────↗
//
// Nothing below this package knows about the others' concrete types.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ItsHarfer/CineShelf/internal/config"
	"github.com/ItsHarfer/CineShelf/internal/handler"
	"github.com/ItsHarfer/CineShelf/internal/middleware"
	"github.com/ItsHarfer/CineShelf/internal/omdb"
	sqliteRepo "github.com/ItsHarfer/CineShelf/internal/repository/sqlite"
	"github.com/ItsHarfer/CineShelf/internal/service"
)

// Server owns the database handle and closes it on shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and builds the router.
//
// Without an OMDb API key the server still starts; the lookup routes answer
// 503 until a key is configured.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.Database.Path != ":memory:" {
		dir := filepath.Dir(cfg.Database.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(newResolver(cfg.OMDb, logger))
	return s, nil
}

// newResolver returns nil when lookups are not configured. The nil check is
// on the interface, so a nil *omdb.Client must never be returned in its place.
func newResolver(cfg config.OMDbConfig, logger *slog.Logger) handler.Resolver {
	client, err := omdb.New(cfg.APIKey,
		omdb.WithBaseURL(cfg.BaseURL),
		omdb.WithTimeout(cfg.Timeout.Duration),
		omdb.WithLogger(logger),
	)
	if err != nil {
		logger.Warn("OMDb lookups disabled", slog.String("reason", err.Error()))
		return nil
	}
	return client
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures middleware and routes.
//
// GET    /healthz
// GET    /api/users
// POST   /api/users
// GET    /api/users/{userID}
// DELETE /api/users/{userID}
// GET    /api/users/{userID}/movies
// POST   /api/users/{userID}/movies
// GET    /api/users/{userID}/movies/search?title=   (rate limited)
// PATCH  /api/users/{userID}/movies/{movieID}
// DELETE /api/users/{userID}/movies/{movieID}
//
// Middleware order: RequestID, RealIP (so the limiter sees client IPs),
// Logger, Recoverer.
func (s *Server) setupRoutes(resolver handler.Resolver) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	collection := service.NewCollectionService(s.db, s.logger)
	users := handler.NewUserHandler(collection, s.logger)
	movies := handler.NewMovieHandler(collection, resolver, s.logger)

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Enabled:           s.config.RateLimit.Enabled,
		RequestsPerMinute: s.config.RateLimit.RequestsPerMinute,
		Burst:             s.config.RateLimit.Burst,
	}, s.logger)

	s.router.Get("/healthz", handler.HandleHealth(s.db, s.logger))

	s.router.Route("/api/users", func(r chi.Router) {
		r.Get("/", users.HandleList)
		r.Post("/", users.HandleCreate)

		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", users.HandleGet)
			r.Delete("/", users.HandleDelete)

			r.Route("/movies", func(r chi.Router) {
				r.Get("/", movies.HandleList)
				r.Post("/", movies.HandleAdd)
				r.With(limiter.Middleware).Get("/search", movies.HandleSearch)
				r.Patch("/{movieID}", movies.HandleUpdate)
				r.Delete("/{movieID}", movies.HandleDelete)
			})
		})
	})
}

// Start serves until ctx is cancelled or SIGINT/SIGTERM arrives, then drains
// in-flight requests for up to 30 seconds and closes the database.
func (s *Server) Start(ctx context.Context) error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.config.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("env", s.config.Env),
			slog.String("database", s.config.Database.Path),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
