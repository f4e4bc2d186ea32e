// Package store persists aggregated listings for historical querying.
package store

import (
	"context"
	"time"

	"github.com/amishk599/jobhub/internal/model"
)

// Catalog is the ingestion target for listings found by the watcher.
type Catalog interface {
	// Save upserts records and returns how many were not yet catalogued.
	Save(ctx context.Context, records []model.JobRecord) (int, error)
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// Entry is a catalogued record with its bookkeeping timestamps.
type Entry struct {
	Record    model.JobRecord
	FirstSeen time.Time
	LastSeen  time.Time
}
