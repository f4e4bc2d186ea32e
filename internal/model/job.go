package model

import (
	"context"
	"strings"
	"time"
)

// SalaryNotSpecified is the salary value used when a provider has none.
const SalaryNotSpecified = "Not specified"

// Kind classifies a listing. It is advisory and never gates inclusion.
type Kind string

const (
	KindJob             Kind = "job"
	KindInternship      Kind = "internship"
	KindBursary         Kind = "bursary"
	KindGraduateProgram Kind = "graduate-program"
	KindLearnership     Kind = "learnership"
)

// JobRecord is one normalized listing from any provider.
type JobRecord struct {
	ID           string     `json:"id,omitempty"` // provider-scoped, may be empty
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	Location     string     `json:"location"`
	Description  string     `json:"description"`
	URL          string     `json:"url"`
	PostedAt     *time.Time `json:"posted_at,omitempty"` // nil when unknown or unparseable
	Salary       string     `json:"salary"`
	Source       string     `json:"source"` // provider display name, never used for identity beyond id scoping
	Kind         Kind       `json:"kind"`
	Requirements []string   `json:"requirements,omitempty"`
}

// Valid reports whether the record carries the minimum a provider must supply:
// a title and at least one of url or id.
func (r JobRecord) Valid() bool {
	if strings.TrimSpace(r.Title) == "" {
		return false
	}
	return r.URL != "" || r.ID != ""
}

var kindKeywords = []struct {
	kind     Kind
	keywords []string
}{
	{KindLearnership, []string{"learnership"}},
	{KindBursary, []string{"bursary", "bursaries", "scholarship"}},
	{KindGraduateProgram, []string{"graduate program", "graduate programme", "graduate-program", "graduate trainee"}},
	{KindInternship, []string{"internship", "intern ", "intern,", "(intern)", "trainee"}},
}

// InferKind guesses a Kind from free text (usually the title). Adapters call
// it when the upstream does not classify the listing itself.
func InferKind(text string) Kind {
	lower := strings.ToLower(text) + " "
	for _, k := range kindKeywords {
		for _, kw := range k.keywords {
			if strings.Contains(lower, kw) {
				return k.kind
			}
		}
	}
	return KindJob
}

var postedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02 Jan 2006",
	"2 January 2006",
	"January 2, 2006",
	time.RFC1123Z,
	time.RFC1123,
}

// ParsePostedAt parses the ISO-like date strings providers emit. It returns
// nil for empty or unparseable values so the record is treated as unknown age.
func ParsePostedAt(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range postedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// Provider fetches listings from one upstream source.
//
// Fetch is raced against a per-provider deadline carried by ctx. Honouring ctx
// is an optimisation only: the orchestrator discards late results whether or
// not the call actually stops, so implementations must not share mutable state
// with the caller.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, query, location string, page int) ([]JobRecord, error)
}
