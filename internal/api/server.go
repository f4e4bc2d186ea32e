// Package api exposes aggregate search over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/amishk599/jobhub/internal/cache"
	"github.com/amishk599/jobhub/internal/config"
	"github.com/amishk599/jobhub/internal/model"
)

// Searcher runs one aggregate search. *search.Orchestrator satisfies it.
type Searcher interface {
	AggregateSearch(ctx context.Context, query, location string, page, limit int) (model.AggregateResult, error)
}

// ProviderInfo describes one configured provider for GET /api/providers.
type ProviderInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type Server struct {
	router    *chi.Mux
	searcher  Searcher
	cache     cache.Cache
	providers []ProviderInfo
	limits    config.SearchConfig
	logger    *slog.Logger
}

func NewServer(searcher Searcher, c cache.Cache, providers []ProviderInfo, limits config.SearchConfig, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		searcher:  searcher,
		cache:     c,
		providers: providers,
		limits:    limits,
		logger:    logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/providers", s.handleProviders)
		r.Get("/cache/stats", s.handleCacheStats)
		r.Delete("/cache", s.handleCacheFlush)
	})
}

func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.logger.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
