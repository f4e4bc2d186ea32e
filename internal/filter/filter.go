package filter

import (
	"strings"

	"github.com/amishk599/jobhub/internal/model"
)

// QueryMatcher narrows whole-board provider listings (ATS boards return every
// open role) down to a search's query and location. Matching is
// case-insensitive. A record matches when its title or description contains
// any query term and its location contains the location phrase. An empty
// query or location matches everything.
type QueryMatcher struct {
	terms    []string
	location string
}

// NewQueryMatcher builds a matcher for a raw query and location.
func NewQueryMatcher(query, location string) *QueryMatcher {
	return &QueryMatcher{
		terms:    Terms(query),
		location: strings.ToLower(strings.TrimSpace(location)),
	}
}

// Match reports whether rec satisfies the query terms and location.
func (f *QueryMatcher) Match(rec model.JobRecord) bool {
	if len(f.terms) > 0 {
		title := strings.ToLower(rec.Title)
		desc := strings.ToLower(rec.Description)
		matched := false
		for _, term := range f.terms {
			if strings.Contains(title, term) || strings.Contains(desc, term) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if f.location != "" {
		loc := strings.ToLower(rec.Location)
		// Remote listings are open to any location.
		if !strings.Contains(loc, f.location) && !strings.Contains(loc, "remote") {
			return false
		}
	}

	return true
}

// Terms returns the lower-cased, whitespace-split tokens of a query.
func Terms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}
