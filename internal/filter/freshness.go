package filter

import (
	"time"

	"github.com/amishk599/jobhub/internal/model"
)

const day = 24 * time.Hour

// AgeDays returns the record's age in whole days at now, and false when the
// posted date is unknown. This is the only place record age is computed.
func AgeDays(rec model.JobRecord, now time.Time) (int, bool) {
	if rec.PostedAt == nil {
		return 0, false
	}
	return int(now.Sub(*rec.PostedAt) / day), true
}

// FilterFresh keeps records whose age is at most maxAgeDays (inclusive).
// Records with an unknown posted date are kept.
func FilterFresh(records []model.JobRecord, maxAgeDays int, now time.Time) []model.JobRecord {
	out := make([]model.JobRecord, 0, len(records))
	for _, rec := range records {
		age, known := AgeDays(rec, now)
		if known && age > maxAgeDays {
			continue
		}
		out = append(out, rec)
	}
	return out
}
