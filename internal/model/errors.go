package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoCredentials is returned by a provider that is enabled but lacks
	// the configuration it needs to call upstream.
	ErrNoCredentials = errors.New("no credentials configured")

	// ErrInvalidRequest marks caller-side argument errors.
	ErrInvalidRequest = errors.New("invalid search request")
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies a provider failure recorded in an AggregateResult.
type ErrorKind string

const (
	ErrorNoCredentials   ErrorKind = "no_credentials"
	ErrorProviderTimeout ErrorKind = "provider_timeout"
	ErrorProvider        ErrorKind = "provider_error"
)

// ProviderError records one provider's failure during an aggregate search.
type ProviderError struct {
	Provider string    `json:"provider"`
	Kind     ErrorKind `json:"kind"`
	Message  string    `json:"message"`
}

func (e ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}
