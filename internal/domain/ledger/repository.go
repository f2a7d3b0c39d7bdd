package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stitchline/backend/internal/domain/shared"
)

// DirectionTotals holds per-direction quantity sums for one SKU
type DirectionTotals struct {
	Inward  int64
	Outward int64
}

// Net returns inward minus outward
func (t DirectionTotals) Net() int64 {
	return t.Inward - t.Outward
}

// EntryRepository is the append-only store for ledger entries.
// There are deliberately no update or delete operations.
type EntryRepository interface {
	// Create appends a single entry
	Create(ctx context.Context, entry *Entry) error
	// CreateBatch appends multiple entries in one operation
	CreateBatch(ctx context.Context, entries []*Entry) error
	// FindByID returns a single entry
	FindByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	// FindBySku returns entries for one SKU, newest first
	FindBySku(ctx context.Context, skuID uuid.UUID, filter shared.Filter) ([]Entry, error)
	// CountBySku counts entries for one SKU
	CountBySku(ctx context.Context, skuID uuid.UUID) (int64, error)
	// FindByReference returns entries linked to a source document
	FindByReference(ctx context.Context, referenceID string) ([]Entry, error)
	// SumByDirection aggregates quantity per (SKU, direction) for the given
	// id set in a single query. SKUs with no entries are absent from the
	// result map; callers treat them as zero.
	SumByDirection(ctx context.Context, skuIDs []uuid.UUID) (map[uuid.UUID]DirectionTotals, error)
	// SumOutwardSince sums outward quantity per SKU from a point in time,
	// used for demand rate calculations
	SumOutwardSince(ctx context.Context, skuID uuid.UUID, since time.Time) (int64, error)
}
