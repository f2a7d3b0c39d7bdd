package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/stitchline/backend/internal/domain/catalog"
	"github.com/stitchline/backend/internal/domain/shared"
)

// SkuService provides application services for the SKU catalog
type SkuService struct {
	skuRepo catalog.SkuRepository
}

// NewSkuService creates a new SkuService
func NewSkuService(skuRepo catalog.SkuRepository) *SkuService {
	return &SkuService{skuRepo: skuRepo}
}

// ===================== Query Methods =====================

// GetByID retrieves a SKU by ID
func (s *SkuService) GetByID(ctx context.Context, id uuid.UUID) (*SkuResponse, error) {
	sku, err := s.skuRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToSkuResponse(sku)
	return &response, nil
}

// List retrieves a paginated SKU list
func (s *SkuService) List(ctx context.Context, filter SkuListFilter) ([]SkuResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search

	total, err := s.skuRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	skus, err := s.skuRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToSkuResponses(skus), total, nil
}

// ListCountable retrieves every SKU eligible for reconciliation sessions
func (s *SkuService) ListCountable(ctx context.Context) ([]SkuResponse, error) {
	skus, err := s.skuRepo.FindCountable(ctx)
	if err != nil {
		return nil, err
	}
	return ToSkuResponses(skus), nil
}

// ===================== Command Methods =====================

// Create registers a new SKU. Codes are unique across the catalog.
func (s *SkuService) Create(ctx context.Context, actorID uuid.UUID, req CreateSkuRequest) (*SkuResponse, error) {
	exists, err := s.skuRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "SKU code "+req.Code+" is already registered")
	}

	sku, err := catalog.NewSku(req.Code, req.ProductName, req.Size, req.Color, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.skuRepo.Save(ctx, sku); err != nil {
		return nil, err
	}

	response := ToSkuResponse(sku)
	return &response, nil
}

// Update renames a SKU's descriptive fields. The code itself never changes;
// ledger history refers to it.
func (s *SkuService) Update(ctx context.Context, id uuid.UUID, req UpdateSkuRequest) (*SkuResponse, error) {
	sku, err := s.skuRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := sku.Rename(req.ProductName, req.Size, req.Color); err != nil {
		return nil, err
	}

	if err := s.skuRepo.Save(ctx, sku); err != nil {
		return nil, err
	}

	response := ToSkuResponse(sku)
	return &response, nil
}

// Activate restores a retired SKU
func (s *SkuService) Activate(ctx context.Context, id uuid.UUID) (*SkuResponse, error) {
	return s.mutate(ctx, id, func(sku *catalog.Sku) { sku.Activate() })
}

// Deactivate retires a SKU. Its ledger history is kept.
func (s *SkuService) Deactivate(ctx context.Context, id uuid.UUID) (*SkuResponse, error) {
	return s.mutate(ctx, id, func(sku *catalog.Sku) { sku.Deactivate() })
}

// ExcludeFromCount removes the SKU from future reconciliation sessions
func (s *SkuService) ExcludeFromCount(ctx context.Context, id uuid.UUID) (*SkuResponse, error) {
	return s.mutate(ctx, id, func(sku *catalog.Sku) { sku.ExcludeFromCount() })
}

// IncludeInCount re-enrolls the SKU in reconciliation sessions
func (s *SkuService) IncludeInCount(ctx context.Context, id uuid.UUID) (*SkuResponse, error) {
	return s.mutate(ctx, id, func(sku *catalog.Sku) { sku.IncludeInCount() })
}

func (s *SkuService) mutate(ctx context.Context, id uuid.UUID, fn func(*catalog.Sku)) (*SkuResponse, error) {
	sku, err := s.skuRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fn(sku)

	if err := s.skuRepo.Save(ctx, sku); err != nil {
		return nil, err
	}

	response := ToSkuResponse(sku)
	return &response, nil
}
