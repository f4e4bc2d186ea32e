package seen

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

var t0 = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func TestTouch_ReportsNewKeys(t *testing.T) {
	tr := NewTracker(24 * time.Hour)

	if !tr.Touch("id:a", t0) {
		t.Error("first touch should be new")
	}
	if tr.Touch("id:a", t0.Add(time.Hour)) {
		t.Error("second touch within retention should not be new")
	}
	if !tr.Touch("id:a", t0.Add(26*time.Hour)) {
		t.Error("touch after retention lapsed should be new again")
	}

	ts, ok := tr.LastSeen("id:a")
	if !ok || !ts.Equal(t0.Add(26*time.Hour)) {
		t.Errorf("LastSeen = %v, %v", ts, ok)
	}
	if _, ok := tr.LastSeen("id:missing"); ok {
		t.Error("LastSeen reported an unknown key")
	}
}

func TestIsNew_DoesNotRecord(t *testing.T) {
	tr := NewTracker(time.Hour)

	if !tr.IsNew("url:x", t0) {
		t.Error("unknown key should be new")
	}
	if tr.Len() != 0 {
		t.Errorf("IsNew recorded the key, Len = %d", tr.Len())
	}
	tr.Touch("url:x", t0)
	if tr.IsNew("url:x", t0.Add(30*time.Minute)) {
		t.Error("key touched within retention should not be new")
	}
	if !tr.IsNew("url:x", t0.Add(2*time.Hour)) {
		t.Error("key past retention should be new")
	}
}

func TestPrune(t *testing.T) {
	tr := NewTracker(24 * time.Hour)
	tr.Touch("old", t0)
	tr.Touch("edge", t0.Add(time.Hour))
	tr.Touch("fresh", t0.Add(20*time.Hour))

	now := t0.Add(25 * time.Hour)
	if removed := tr.Prune(now); removed != 1 {
		t.Errorf("Prune removed %d, want 1", removed)
	}
	if _, ok := tr.LastSeen("old"); ok {
		t.Error("old entry survived prune")
	}
	// Exactly at the retention boundary is kept.
	if _, ok := tr.LastSeen("edge"); !ok {
		t.Error("entry at the boundary was pruned")
	}
	if tr.Len() != 2 {
		t.Errorf("Len = %d, want 2", tr.Len())
	}

	if removed := tr.Prune(now); removed != 0 {
		t.Errorf("second prune removed %d, want 0", removed)
	}
}

func TestNewTracker_DefaultRetention(t *testing.T) {
	tr := NewTracker(0)
	tr.Touch("k", t0)
	if tr.Prune(t0.Add(DefaultRetention)) != 0 {
		t.Error("entry pruned before default retention")
	}
	if tr.Prune(t0.Add(DefaultRetention+time.Second)) != 1 {
		t.Error("entry not pruned after default retention")
	}
}

func TestTracker_ConcurrentTouchAndPrune(t *testing.T) {
	tr := NewTracker(time.Hour)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				tr.Touch(fmt.Sprintf("k-%d-%d", w, i), t0)
				if i%50 == 0 {
					tr.Prune(t0)
				}
			}
		}(w)
	}
	wg.Wait()

	if tr.Len() != 8*200 {
		t.Errorf("Len = %d, want %d", tr.Len(), 8*200)
	}
}
