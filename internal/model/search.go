package model

import (
	"fmt"
	"strings"
)

// SearchRequest identifies one aggregate search. Two requests with the same
// normalized fields share a cached answer.
type SearchRequest struct {
	Query    string
	Location string
	Page     int
	Limit    int
}

// NewSearchRequest normalizes query and location (trimmed, lower-cased,
// inner whitespace collapsed).
func NewSearchRequest(query, location string, page, limit int) SearchRequest {
	return SearchRequest{
		Query:    normalize(query),
		Location: normalize(location),
		Page:     page,
		Limit:    limit,
	}
}

// Key returns the cache key for the request.
func (r SearchRequest) Key() string {
	return fmt.Sprintf("search:v1:%s|%s|%d|%d", r.Query, r.Location, r.Page, r.Limit)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// AggregateResult is the output of one aggregate search.
type AggregateResult struct {
	Records        []JobRecord     `json:"results"`
	Total          int             `json:"total"` // after filtering and dedup, before pagination
	Page           int             `json:"page"`
	Limit          int             `json:"limit"`
	SourcesUsed    []string        `json:"sources"`
	ProviderErrors []ProviderError `json:"errors,omitempty"`
	Cached         bool            `json:"cached"`
}

// AllFailed reports the AggregateEmpty state: no provider contributed and at
// least one failed. A search that simply matched nothing is not AllFailed.
func (r AggregateResult) AllFailed() bool {
	return len(r.SourcesUsed) == 0 && len(r.ProviderErrors) > 0
}
