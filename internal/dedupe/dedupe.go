// Package dedupe collapses records that describe the same listing.
package dedupe

import (
	"strings"

	"github.com/amishk599/jobhub/internal/model"
)

// Keys holds the identity keys derived from a record. Empty fields mean the
// record has no such key.
type Keys struct {
	ID           string // source + provider id
	URL          string // url without query string
	TitleCompany string // lower-cased, trimmed title and company
}

// KeysOf derives a record's identity keys. Identity is never stored on the
// record itself.
func KeysOf(rec model.JobRecord) Keys {
	var k Keys
	if rec.ID != "" {
		// Provider ids are only unique within their provider.
		k.ID = rec.Source + "\x00" + rec.ID
	}
	if rec.URL != "" {
		u, _, _ := strings.Cut(rec.URL, "?")
		k.URL = u
	}
	title := strings.ToLower(strings.TrimSpace(rec.Title))
	company := strings.ToLower(strings.TrimSpace(rec.Company))
	if title != "" || company != "" {
		k.TitleCompany = title + "\x00" + company
	}
	return k
}

// Primary returns the strongest key a record has, used where a single
// identity string is needed (seen tracking, catalog rows).
func (k Keys) Primary() string {
	switch {
	case k.ID != "":
		return "id:" + k.ID
	case k.URL != "":
		return "url:" + k.URL
	default:
		return "tc:" + k.TitleCompany
	}
}

// Dedupe returns records in their original order with duplicates removed;
// the first occurrence wins. Keys are checked strongest first: provider id,
// normalized url, then title+company as the last-resort net.
func Dedupe(records []model.JobRecord) []model.JobRecord {
	seenID := make(map[string]struct{})
	seenURL := make(map[string]struct{})
	seenTC := make(map[string]struct{})

	out := make([]model.JobRecord, 0, len(records))
	for _, rec := range records {
		k := KeysOf(rec)
		if hit(seenID, k.ID) || hit(seenURL, k.URL) || hit(seenTC, k.TitleCompany) {
			continue
		}
		add(seenID, k.ID)
		add(seenURL, k.URL)
		add(seenTC, k.TitleCompany)
		out = append(out, rec)
	}
	return out
}

func hit(set map[string]struct{}, key string) bool {
	if key == "" {
		return false
	}
	_, ok := set[key]
	return ok
}

func add(set map[string]struct{}, key string) {
	if key != "" {
		set[key] = struct{}{}
	}
}
