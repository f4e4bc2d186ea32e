package store

import (
	"context"

	"github.com/amishk599/jobhub/internal/model"
)

// NopCatalog discards everything. Used for dry runs and when no catalog path
// is configured.
type NopCatalog struct{}

func NewNopCatalog() *NopCatalog { return &NopCatalog{} }

func (NopCatalog) Save(ctx context.Context, records []model.JobRecord) (int, error) { return 0, nil }
func (NopCatalog) Recent(ctx context.Context, limit int) ([]Entry, error)         { return nil, nil }
func (NopCatalog) Close() error                                                   { return nil }
