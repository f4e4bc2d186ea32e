// Package retry decorates providers with retries for transient failures.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/amishk599/jobhub/internal/model"
)

// Defaults used when the configuration leaves retry settings unset.
const (
	DefaultMaxRetries = 1
	DefaultBaseDelay  = 500 * time.Millisecond
)

// Provider retries the wrapped provider's Fetch with exponential backoff and
// ±30% jitter. It satisfies model.Provider and keeps the inner name.
type Provider struct {
	inner      model.Provider
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// Wrap decorates p. maxRetries counts attempts after the first; a negative
// value disables retries.
func Wrap(p model.Provider, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Provider {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	return &Provider{
		inner:      p,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

func (p *Provider) Name() string { return p.inner.Name() }

// Fetch calls the inner provider, retrying while the error is transient and
// the context allows it.
func (p *Provider) Fetch(ctx context.Context, query, location string, page int) ([]model.JobRecord, error) {
	var err error
	for attempt := 0; ; attempt++ {
		var records []model.JobRecord
		records, err = p.inner.Fetch(ctx, query, location, page)
		if err == nil {
			return records, nil
		}
		if attempt >= p.maxRetries || !Retryable(err) {
			return nil, err
		}

		delay := p.backoff(attempt+1, err)
		p.logger.Warn("retrying provider after transient error",
			"provider", p.inner.Name(),
			"attempt", attempt+1,
			"max_retries", p.maxRetries,
			"delay", delay,
			"error", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("retry %s cancelled: %w", p.inner.Name(), ctx.Err())
		case <-timer.C:
		}
	}
}

// backoff returns baseDelay * 2^(attempt-1) with jitter, unless the upstream
// asked for a specific wait via Retry-After.
func (p *Provider) backoff(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := p.baseDelay << (attempt - 1)
	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// Retryable reports whether err is worth another attempt: network errors,
// 429 and 5xx. Missing credentials, other 4xx and context errors are final.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, model.ErrNoCredentials) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	return true
}
