// Package cache holds the result cache shared by concurrent searches.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is the retention for aggregate search results.
const DefaultTTL = 3600 * time.Second

// Stats reports cache effectiveness.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Keys   int    `json:"keys"`
}

// Cache is an atomic key-value store with per-entry TTL. Get must report a
// miss once ttl has elapsed since the entry's last Set. Set on an existing
// key overwrites the value and restarts its TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	FlushAll(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
}
