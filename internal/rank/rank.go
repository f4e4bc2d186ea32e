// Package rank scores records against query terms and orders them.
package rank

import (
	"sort"
	"strings"
	"time"

	"github.com/amishk599/jobhub/internal/filter"
	"github.com/amishk599/jobhub/internal/model"
)

const (
	titleWeight       = 3
	descriptionWeight = 1

	// SuperFreshDays is the age at or below which a record ranks ahead of
	// every older or undated record regardless of score.
	SuperFreshDays = 3
)

// Score sums, over all terms, titleWeight for a title hit and
// descriptionWeight for a description hit. Terms must already be lower-cased.
func Score(rec model.JobRecord, terms []string) int {
	title := strings.ToLower(rec.Title)
	desc := strings.ToLower(rec.Description)
	score := 0
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += titleWeight
		}
		if strings.Contains(desc, term) {
			score += descriptionWeight
		}
	}
	return score
}

type scored struct {
	rec        model.JobRecord
	score      int
	superFresh bool
}

// Rank returns records ordered by super-fresh tier, then score descending,
// then posted date descending with undated records last. The sort is stable
// so fully tied records keep their input order.
func Rank(records []model.JobRecord, terms []string, now time.Time) []model.JobRecord {
	items := make([]scored, len(records))
	for i, rec := range records {
		age, known := filter.AgeDays(rec, now)
		items[i] = scored{
			rec:        rec,
			score:      Score(rec, terms),
			superFresh: known && age <= SuperFreshDays,
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.superFresh != b.superFresh {
			return a.superFresh
		}
		if a.score != b.score {
			return a.score > b.score
		}
		return newer(a.rec.PostedAt, b.rec.PostedAt)
	})

	out := make([]model.JobRecord, len(items))
	for i, it := range items {
		out[i] = it.rec
	}
	return out
}

// newer reports whether a sorts before b by recency; nil sorts last.
func newer(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}
