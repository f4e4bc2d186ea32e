package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/amishk599/jobhub/internal/model"
)

type searchError struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

type searchResponse struct {
	Results []model.JobRecord `json:"results"`
	Total   int               `json:"total"`
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
	Cached  bool              `json:"cached"`
	Sources []string          `json:"sources"`
	Errors  []searchError     `json:"errors,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "q is required")
		return
	}

	page, limit, err := s.parsePagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.searcher.AggregateSearch(r.Context(), query, strings.TrimSpace(q.Get("location")), page, limit)
	if err != nil {
		if errors.Is(err, model.ErrInvalidRequest) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, context.Canceled) {
			s.logger.Debug("search abandoned by client", "query", query)
			return
		}
		s.logger.Error("search failed", "query", query, "error", err)
		respondError(w, http.StatusInternalServerError, "Search failed: "+err.Error())
		return
	}

	resp := searchResponse{
		Results: res.Records,
		Total:   res.Total,
		Page:    res.Page,
		Limit:   res.Limit,
		Cached:  res.Cached,
		Sources: res.SourcesUsed,
	}
	// Return empty lists rather than null
	if resp.Results == nil {
		resp.Results = []model.JobRecord{}
	}
	if resp.Sources == nil {
		resp.Sources = []string{}
	}
	for _, pe := range res.ProviderErrors {
		resp.Errors = append(resp.Errors, searchError{Source: pe.Provider, Message: pe.Message})
	}
	respondJSON(w, http.StatusOK, resp)
}

// parsePagination reads page and limit. Missing values take defaults,
// malformed or non-positive values are rejected and limit is capped at the
// configured maximum.
func (s *Server) parsePagination(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	page := 1
	limit := s.limits.DefaultLimit

	if v := q.Get("page"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return 0, 0, errors.New("page must be a positive integer")
		}
		page = parsed
	}
	if v := q.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return 0, 0, errors.New("limit must be a positive integer")
		}
		limit = parsed
	}

	if s.limits.MaxLimit > 0 && limit > s.limits.MaxLimit {
		limit = s.limits.MaxLimit
	}
	return page, limit, nil
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	providers := s.providers
	if providers == nil {
		providers = []ProviderInfo{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"items": providers,
		"total": len(providers),
	})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.cache.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read cache stats: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCacheFlush(w http.ResponseWriter, r *http.Request) {
	if err := s.cache.FlushAll(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to flush cache: "+err.Error())
		return
	}
	s.logger.Info("cache flushed")
	respondJSON(w, http.StatusOK, map[string]bool{"flushed": true})
}
