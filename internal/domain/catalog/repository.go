package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/stitchline/backend/internal/domain/shared"
)

// SkuRepository persists SKU aggregates
type SkuRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sku, error)
	// FindByIDs returns the subset of the given ids that exist
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Sku, error)
	// FindCountable returns every active SKU not excluded from counts
	FindCountable(ctx context.Context) ([]Sku, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Sku, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, sku *Sku) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
}
