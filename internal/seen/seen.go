// Package seen remembers which records were observed recently.
package seen

import (
	"sync"
	"time"
)

// DefaultRetention is how long an entry survives without being touched.
const DefaultRetention = 24 * time.Hour

// Tracker maps a record identity key to the last time it was seen. It is
// safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	retention time.Duration
	lastSeen  map[string]time.Time
}

// NewTracker creates a Tracker. A non-positive retention uses DefaultRetention.
func NewTracker(retention time.Duration) *Tracker {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Tracker{
		retention: retention,
		lastSeen:  make(map[string]time.Time),
	}
}

// Touch records key as seen at now. It reports whether the key was new,
// meaning absent or already past retention.
func (t *Tracker) Touch(key string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, ok := t.lastSeen[key]
	t.lastSeen[key] = now
	return !ok || now.Sub(prev) > t.retention
}

// IsNew reports what Touch would return for key at now, without recording it.
func (t *Tracker) IsNew(key string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, ok := t.lastSeen[key]
	return !ok || now.Sub(prev) > t.retention
}

// LastSeen returns when key was last touched.
func (t *Tracker) LastSeen(key string) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ts, ok := t.lastSeen[key]
	return ts, ok
}

// Prune removes entries older than the retention window and returns how many
// were removed. Running it twice is harmless.
func (t *Tracker) Prune(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for key, ts := range t.lastSeen {
		if now.Sub(ts) > t.retention {
			delete(t.lastSeen, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.lastSeen)
}
