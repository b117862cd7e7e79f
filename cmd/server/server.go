package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/liamcoop/drills/checks"
	"github.com/liamcoop/drills/internal/config"
	"github.com/liamcoop/drills/internal/logger"
	"github.com/liamcoop/drills/internal/rate"
	"github.com/liamcoop/drills/suites"
)

const (
	requestTimeout   = 60 * time.Second
	slowRequest      = time.Second
	limiterIdleAfter = 10 * time.Minute
)

type Server struct {
	db      *sql.DB
	suites  *suites.Manager
	limiter *rate.LimiterMap
	router  *chi.Mux
}

// NewServer loads persisted suites, makes sure the builtin suite exists and
// wires the routes. db may be nil, in which case everything lives in memory.
func NewServer(ctx context.Context, db *sql.DB, cfg config.Config) (*Server, error) {
	manager := suites.NewManager(db, suites.WithProgramCacheTTL(cfg.ProgramCacheTTL))

	if err := manager.LoadAllSuites(ctx); err != nil {
		return nil, fmt.Errorf("failed to load suites: %w", err)
	}

	builtin, err := manager.EnsureBuiltin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare builtin suite: %w", err)
	}

	if cfg.CatalogPath != "" {
		if err := seedCatalogFile(builtin.Engine, cfg.CatalogPath); err != nil {
			return nil, err
		}
	}

	s := &Server{
		db:      db,
		suites:  manager,
		limiter: rate.NewLimiterMap(cfg.RateLimitRPM, cfg.RateLimitBurst, limiterIdleAfter),
	}
	s.setupRoutes()

	logger.Info("server ready", "suites", len(manager.ListSuites()), "storage", s.storage())
	return s, nil
}

// seedCatalogFile adds the checks of a catalog file that the engine does
// not already hold.
func seedCatalogFile(engine *checks.Engine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	catalog, err := checks.LoadCatalog(f)
	if err != nil {
		return err
	}

	var added int
	for _, c := range catalog {
		if _, err := engine.Store().Get(c.ID); err == nil {
			continue
		}
		if err := engine.AddCheck(c); err != nil {
			return fmt.Errorf("failed to seed check %s from %s: %w", c.ID, path, err)
		}
		added++
	}
	logger.Info("catalog seeded", "path", path, "added", added)
	return nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(rateLimit(s.limiter))
	r.Use(middleware.Timeout(requestTimeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Get("/exercises", s.handleListExercises)
		r.Post("/exercises/{name}", s.handleInvokeExercise)

		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/expressions", s.handleExpression)

		r.Route("/suites", func(r chi.Router) {
			r.Get("/", s.handleListSuites)
			r.Post("/", s.handleCreateSuite)

			r.Route("/{suiteId}", func(r chi.Router) {
				r.Get("/", s.handleGetSuite)
				r.Delete("/", s.handleDeleteSuite)

				r.Get("/schema", s.handleGetSchema)
				r.Post("/schema", s.handleUpdateSchema)

				r.Get("/checks", s.handleListChecks)
				r.Post("/checks", s.handleCreateCheck)
				r.Get("/checks/{checkId}", s.handleGetCheck)
				r.Put("/checks/{checkId}", s.handleUpdateCheck)
				r.Delete("/checks/{checkId}", s.handleDeleteCheck)
			})
		})
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops background work. The database belongs to the caller.
func (s *Server) Close() {
	s.limiter.Stop()
}

func (s *Server) storage() string {
	if s.db == nil {
		return "memory"
	}
	return "postgres"
}
