// Package search coordinates aggregate searches across providers.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/amishk599/jobhub/internal/cache"
	"github.com/amishk599/jobhub/internal/dedupe"
	"github.com/amishk599/jobhub/internal/filter"
	"github.com/amishk599/jobhub/internal/model"
	"github.com/amishk599/jobhub/internal/rank"
)

// DefaultProviderTimeout is the per-provider deadline when none is configured.
const DefaultProviderTimeout = 12 * time.Second

// upstreamPage is the page requested from every provider. Pagination of the
// aggregate result happens locally over the merged, ranked list.
const upstreamPage = 1

// Options tune an Orchestrator. Zero values fall back to defaults.
type Options struct {
	ProviderTimeout time.Duration
	TTL             time.Duration
	Freshness       filter.Policy
}

// Orchestrator owns the aggregate search pipeline:
// cache → fan-out → freshness → dedup → rank → paginate → cache.
type Orchestrator struct {
	providers []model.Provider
	cache     cache.Cache
	timeout   time.Duration
	ttl       time.Duration
	policy    filter.Policy
	group     singleflight.Group
	logger    *slog.Logger
	now       func() time.Time
}

// NewOrchestrator wires the pipeline. providers is the static registry built
// at start; its order fixes the merge order of records.
func NewOrchestrator(providers []model.Provider, c cache.Cache, opts Options, logger *slog.Logger) *Orchestrator {
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = DefaultProviderTimeout
	}
	if opts.TTL <= 0 {
		opts.TTL = cache.DefaultTTL
	}
	if opts.Freshness == (filter.Policy{}) {
		opts.Freshness = filter.DefaultPolicy()
	}
	return &Orchestrator{
		providers: providers,
		cache:     c,
		timeout:   opts.ProviderTimeout,
		ttl:       opts.TTL,
		policy:    opts.Freshness,
		logger:    logger,
		now:       time.Now,
	}
}

// Providers returns the registered providers.
func (o *Orchestrator) Providers() []model.Provider {
	return o.providers
}

// cachedResult is what the cache holds: the full ranked list before
// pagination plus how it was produced.
type cachedResult struct {
	Records []model.JobRecord     `json:"records"`
	Sources []string              `json:"sources"`
	Errors  []model.ProviderError `json:"errors,omitempty"`
}

// AggregateSearch runs one aggregate search. Provider failures never surface
// as an error; the only errors are invalid page or limit values and the
// caller's own cancellation.
func (o *Orchestrator) AggregateSearch(ctx context.Context, query, location string, page, limit int) (model.AggregateResult, error) {
	return o.search(ctx, query, location, page, limit, true)
}

// Refresh is AggregateSearch without the cache lookup. The fresh result
// still replaces the cached one.
func (o *Orchestrator) Refresh(ctx context.Context, query, location string, page, limit int) (model.AggregateResult, error) {
	return o.search(ctx, query, location, page, limit, false)
}

func (o *Orchestrator) search(ctx context.Context, query, location string, page, limit int, useCache bool) (model.AggregateResult, error) {
	if page < 1 || limit < 1 {
		return model.AggregateResult{}, fmt.Errorf("%w: page %d, limit %d must be >= 1", model.ErrInvalidRequest, page, limit)
	}

	req := model.NewSearchRequest(query, location, page, limit)
	key := req.Key()

	if useCache {
		if hit, ok := o.lookup(ctx, key); ok {
			o.logger.Debug("cache hit", "key", key)
			return paginate(hit, req, true), nil
		}
	}

	// Concurrent identical misses share one pipeline run. The run outlives
	// any single caller; each provider call is still bounded by its timeout.
	runCtx := context.WithoutCancel(ctx)
	ch := o.group.DoChan(key, func() (any, error) {
		res, ok := o.run(runCtx, req)
		if ok {
			o.store(runCtx, key, res)
		}
		return res, nil
	})

	select {
	case r := <-ch:
		return paginate(r.Val.(cachedResult), req, false), nil
	case <-ctx.Done():
		return model.AggregateResult{}, ctx.Err()
	}
}

func (o *Orchestrator) lookup(ctx context.Context, key string) (cachedResult, bool) {
	data, ok, err := o.cache.Get(ctx, key)
	if err != nil {
		o.logger.Warn("cache read failed, treating as miss", "key", key, "error", err)
		return cachedResult{}, false
	}
	if !ok {
		return cachedResult{}, false
	}
	var res cachedResult
	if err := json.Unmarshal(data, &res); err != nil {
		o.logger.Warn("cache entry unreadable, treating as miss", "key", key, "error", err)
		return cachedResult{}, false
	}
	return res, true
}

func (o *Orchestrator) store(ctx context.Context, key string, res cachedResult) {
	data, err := json.Marshal(res)
	if err != nil {
		o.logger.Warn("encoding cache entry failed", "key", key, "error", err)
		return
	}
	if err := o.cache.Set(ctx, key, data, o.ttl); err != nil {
		o.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// run executes the uncached pipeline. ok is false when no provider
// succeeded, in which case the result must not be cached.
func (o *Orchestrator) run(ctx context.Context, req model.SearchRequest) (cachedResult, bool) {
	start := time.Now()
	outcomes := o.fanOut(ctx, req)

	res := cachedResult{Sources: []string{}}
	var raw []model.JobRecord
	succeeded, invalid := 0, 0
	for _, out := range outcomes {
		if out.err != nil {
			res.Errors = append(res.Errors, *out.err)
			continue
		}
		succeeded++

		contributed := 0
		for _, rec := range out.records {
			if !rec.Valid() {
				invalid++
				continue
			}
			if rec.Source == "" {
				rec.Source = out.provider
			}
			raw = append(raw, rec)
			contributed++
		}
		if contributed > 0 {
			res.Sources = append(res.Sources, out.provider)
		}
	}

	if succeeded == 0 {
		o.logger.Warn("all providers failed",
			"query", req.Query,
			"providers", len(o.providers),
			"errors", len(res.Errors),
		)
		res.Records = []model.JobRecord{}
		return res, false
	}

	now := o.now()
	class := filter.Classify(req.Query)
	maxAge := o.policy.MaxAgeDays(class)

	fresh := filter.FilterFresh(raw, maxAge, now)
	unique := dedupe.Dedupe(fresh)
	res.Records = rank.Rank(unique, filter.Terms(req.Query), now)

	o.logger.Info("aggregate search",
		"query", req.Query,
		"location", req.Location,
		"class", class.String(),
		"max_age_days", maxAge,
		"fetched", len(raw),
		"invalid", invalid,
		"fresh", len(fresh),
		"unique", len(unique),
		"sources", len(res.Sources),
		"errors", len(res.Errors),
		"elapsed", time.Since(start).String(),
	)

	return res, true
}

type outcome struct {
	provider string
	records  []model.JobRecord
	err      *model.ProviderError
}

// fanOut calls every provider concurrently and waits for each to finish or
// hit its deadline. Outcomes keep registration order.
func (o *Orchestrator) fanOut(ctx context.Context, req model.SearchRequest) []outcome {
	outcomes := make([]outcome, len(o.providers))
	var wg sync.WaitGroup
	for i, p := range o.providers {
		wg.Add(1)
		go func(i int, p model.Provider) {
			defer wg.Done()
			outcomes[i] = o.call(ctx, p, req)
		}(i, p)
	}
	wg.Wait()
	return outcomes
}

type fetchResult struct {
	records []model.JobRecord
	err     error
}

// call races one provider against its deadline. A call still running when
// the deadline passes keeps going in the background; it only ever writes to
// its own buffered channel, which nobody reads after the race is lost.
func (o *Orchestrator) call(ctx context.Context, p model.Provider, req model.SearchRequest) outcome {
	name := p.Name()

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fetchResult{err: fmt.Errorf("provider panicked: %v", r)}
			}
		}()
		records, err := p.Fetch(callCtx, req.Query, req.Location, upstreamPage)
		done <- fetchResult{records: records, err: err}
	}()

	timer := time.NewTimer(o.timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			return o.failed(name, classify(res.err), res.err)
		}
		o.logger.Debug("provider returned", "provider", name, "records", len(res.records))
		return outcome{provider: name, records: res.records}
	case <-timer.C:
		return o.failed(name, model.ErrorProviderTimeout, fmt.Errorf("no response within %s", o.timeout))
	}
}

func (o *Orchestrator) failed(name string, kind model.ErrorKind, err error) outcome {
	o.logger.Warn("provider failed", "provider", name, "kind", kind, "error", err)
	return outcome{
		provider: name,
		err:      &model.ProviderError{Provider: name, Kind: kind, Message: err.Error()},
	}
}

func classify(err error) model.ErrorKind {
	switch {
	case errors.Is(err, model.ErrNoCredentials):
		return model.ErrorNoCredentials
	case errors.Is(err, context.DeadlineExceeded):
		return model.ErrorProviderTimeout
	default:
		return model.ErrorProvider
	}
}

// paginate slices one page out of the full ranked list.
func paginate(res cachedResult, req model.SearchRequest, cached bool) model.AggregateResult {
	total := len(res.Records)

	records := []model.JobRecord{}
	if req.Page-1 < (total+req.Limit-1)/req.Limit {
		start := (req.Page - 1) * req.Limit
		end := min(start+req.Limit, total)
		records = make([]model.JobRecord, end-start)
		copy(records, res.Records[start:end])
	}

	sources := res.Sources
	if sources == nil {
		sources = []string{}
	}

	return model.AggregateResult{
		Records:        records,
		Total:          total,
		Page:           req.Page,
		Limit:          req.Limit,
		SourcesUsed:    sources,
		ProviderErrors: res.Errors,
		Cached:         cached,
	}
}
