// Package watch re-runs saved searches and reports listings that appeared
// since the previous run.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/amishk599/jobhub/internal/config"
	"github.com/amishk599/jobhub/internal/dedupe"
	"github.com/amishk599/jobhub/internal/model"
	"github.com/amishk599/jobhub/internal/notifier"
	"github.com/amishk599/jobhub/internal/seen"
	"github.com/amishk599/jobhub/internal/store"
)

// Searcher runs one aggregate search past the result cache.
// *search.Orchestrator satisfies it.
type Searcher interface {
	Refresh(ctx context.Context, query, location string, page, limit int) (model.AggregateResult, error)
}

// Watcher owns the watch pipeline for a set of saved searches:
// search → detect new → notify → mark seen → catalog.
type Watcher struct {
	searcher Searcher
	tracker  *seen.Tracker
	notifier notifier.Notifier
	catalog  store.Catalog
	searches []config.SavedSearch
	limit    int
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	seeded map[string]bool
	noSeed bool
}

// New creates a watcher. limit is the page size requested per search; the
// watcher only ever looks at page 1.
func New(
	searcher Searcher,
	tracker *seen.Tracker,
	n notifier.Notifier,
	catalog store.Catalog,
	searches []config.SavedSearch,
	limit int,
	logger *slog.Logger,
) *Watcher {
	return &Watcher{
		searcher: searcher,
		tracker:  tracker,
		notifier: n,
		catalog:  catalog,
		searches: searches,
		limit:    limit,
		logger:   logger,
		now:      time.Now,
		seeded:   make(map[string]bool),
	}
}

// DisableSeeding makes the first run of each search notify like any other
// run instead of silently recording what is already listed.
func (w *Watcher) DisableSeeding() {
	w.mu.Lock()
	w.noSeed = true
	w.mu.Unlock()
}

// RunOnce runs every saved search once. A failing search does not stop the
// others; all failures are returned joined.
func (w *Watcher) RunOnce(ctx context.Context) error {
	var errs []error
	for _, s := range w.searches {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if err := w.runSearch(ctx, s); err != nil {
			w.logger.Error("watch search failed", "search", label(s), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *Watcher) runSearch(ctx context.Context, s config.SavedSearch) error {
	name := label(s)

	// A cached list could hide listings posted since it was stored.
	res, err := w.searcher.Refresh(ctx, s.Query, s.Location, 1, w.limit)
	if err != nil {
		return fmt.Errorf("watching %s: %w", name, err)
	}
	for _, pe := range res.ProviderErrors {
		w.logger.Warn("provider failed during watch",
			"search", name,
			"provider", pe.Provider,
			"kind", pe.Kind,
			"error", pe.Message,
		)
	}
	// Nothing to compare against; treating this as an empty result would
	// report everything as new once providers recover.
	if res.AllFailed() {
		return fmt.Errorf("watching %s: all %d providers failed", name, len(res.ProviderErrors))
	}

	now := w.now()
	keys := make([]string, len(res.Records))
	var fresh []model.JobRecord
	isFresh := make([]bool, len(res.Records))
	for i, rec := range res.Records {
		keys[i] = dedupe.KeysOf(rec).Primary()
		if w.tracker.IsNew(keys[i], now) {
			fresh = append(fresh, rec)
			isFresh[i] = true
		}
	}

	w.mu.Lock()
	firstRun := !w.noSeed && !w.seeded[name]
	w.mu.Unlock()

	var notifyErr error
	switch {
	case firstRun:
		w.logger.Info("seeding watch", "search", name, "records", len(res.Records))
	case len(fresh) > 0:
		notifyErr = w.notifier.Notify(ctx, name, fresh)
	}

	for i, key := range keys {
		// Unnotified records stay new so the next run retries them.
		if notifyErr != nil && isFresh[i] {
			continue
		}
		w.tracker.Touch(key, now)
	}
	if notifyErr != nil {
		return fmt.Errorf("watching %s: notifying: %w", name, notifyErr)
	}

	w.mu.Lock()
	w.seeded[name] = true
	w.mu.Unlock()

	added, err := w.catalog.Save(ctx, res.Records)
	if err != nil {
		return fmt.Errorf("watching %s: saving to catalog: %w", name, err)
	}

	w.logger.Info("watched search",
		"search", name,
		"fetched", len(res.Records),
		"new", len(fresh),
		"catalogued", added,
		"cached", res.Cached,
	)
	return nil
}

func label(s config.SavedSearch) string {
	if s.Location == "" {
		return s.Query
	}
	return s.Query + " @ " + s.Location
}
