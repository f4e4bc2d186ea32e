package adapter

import (
	"html"
	"regexp"
	"strings"

	"github.com/amishk599/jobhub/internal/filter"
	"github.com/amishk599/jobhub/internal/model"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// extractText converts an HTML or HTML-encoded string to plain text.
// It first unescapes HTML entities (handles Greenhouse's double-encoding;
// no-op on already-real HTML), strips all tags, then collapses whitespace.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, "")
	return strings.Join(strings.Fields(plain), " ")
}

// finish fills the fields every provider leaves to defaults: source name,
// inferred kind and the salary sentinel.
func finish(rec *model.JobRecord, source string) {
	rec.Source = source
	if rec.Kind == "" {
		rec.Kind = model.InferKind(rec.Title)
	}
	if strings.TrimSpace(rec.Salary) == "" {
		rec.Salary = model.SalaryNotSpecified
	}
}

// narrow applies a search to a whole-board listing. Boards have no upstream
// pagination, so everything is on page 1.
func narrow(records []model.JobRecord, query, location string, page int) []model.JobRecord {
	if page > 1 {
		return nil
	}
	m := filter.NewQueryMatcher(query, location)
	out := make([]model.JobRecord, 0, len(records))
	for _, rec := range records {
		if m.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}
