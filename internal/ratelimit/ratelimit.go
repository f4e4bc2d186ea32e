// Package ratelimit spaces out calls to the same upstream provider.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/amishk599/jobhub/internal/model"
)

// DefaultMinDelay is the gap enforced between calls to one provider when no
// override is configured.
const DefaultMinDelay = time.Second

// Limiter keeps one token bucket per provider name. Every bucket holds a
// single token refilled once per minimum delay, so the first call goes
// through immediately and later ones are spaced out.
type Limiter struct {
	mu        sync.Mutex
	minDelay  time.Duration
	overrides map[string]time.Duration
	buckets   map[string]*rate.Limiter
}

// NewLimiter creates a Limiter. overrides maps provider names to their own
// minimum delay; a zero delay disables limiting for that provider.
func NewLimiter(minDelay time.Duration, overrides map[string]time.Duration) *Limiter {
	if minDelay < 0 {
		minDelay = 0
	}
	o := make(map[string]time.Duration, len(overrides))
	for k, v := range overrides {
		o[k] = v
	}
	return &Limiter{
		minDelay:  minDelay,
		overrides: o,
		buckets:   make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a call to provider is allowed or ctx is done. When the
// next slot lies past ctx's deadline it fails at once with an error wrapping
// context.DeadlineExceeded.
func (l *Limiter) Wait(ctx context.Context, provider string) error {
	if err := l.bucket(provider).Wait(ctx); err != nil {
		if ctx.Err() == nil {
			// rate refuses up front instead of sleeping into the deadline.
			return fmt.Errorf("rate limiter wait for %s: %w", provider, context.DeadlineExceeded)
		}
		return fmt.Errorf("rate limiter wait for %s: %w", provider, ctx.Err())
	}
	return nil
}

// Delay returns the minimum gap applied to provider.
func (l *Limiter) Delay(provider string) time.Duration {
	if d, ok := l.overrides[provider]; ok {
		return d
	}
	return l.minDelay
}

func (l *Limiter) bucket(provider string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[provider]; ok {
		return b
	}
	limit := rate.Inf
	if d := l.Delay(provider); d > 0 {
		limit = rate.Every(d)
	}
	b := rate.NewLimiter(limit, 1)
	l.buckets[provider] = b
	return b
}

// Provider waits on a shared Limiter before delegating to the wrapped provider.
type Provider struct {
	inner   model.Provider
	limiter *Limiter
}

// Wrap decorates p. Providers sharing an upstream should share one Limiter.
func Wrap(p model.Provider, limiter *Limiter) *Provider {
	return &Provider{inner: p, limiter: limiter}
}

func (p *Provider) Name() string { return p.inner.Name() }

func (p *Provider) Fetch(ctx context.Context, query, location string, page int) ([]model.JobRecord, error) {
	if err := p.limiter.Wait(ctx, p.inner.Name()); err != nil {
		return nil, err
	}
	return p.inner.Fetch(ctx, query, location, page)
}
