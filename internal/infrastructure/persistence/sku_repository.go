package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stitchline/backend/internal/domain/catalog"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stitchline/backend/internal/infrastructure/persistence/models"
)

// GormSkuRepository implements catalog.SkuRepository using GORM
type GormSkuRepository struct {
	db *gorm.DB
}

// NewGormSkuRepository creates a new GormSkuRepository
func NewGormSkuRepository(db *gorm.DB) *GormSkuRepository {
	return &GormSkuRepository{db: db}
}

// FindByID finds a SKU by its ID
func (r *GormSkuRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Sku, error) {
	var model models.SkuModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the subset of the given ids that exist
func (r *GormSkuRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Sku, error) {
	if len(ids) == 0 {
		return []catalog.Sku{}, nil
	}

	var skuModels []models.SkuModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&skuModels).Error; err != nil {
		return nil, err
	}
	return toDomainSkus(skuModels), nil
}

// FindCountable returns every active SKU not excluded from counts
func (r *GormSkuRepository) FindCountable(ctx context.Context) ([]catalog.Sku, error) {
	var skuModels []models.SkuModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_excluded_from_count = ?", true, false).
		Order("code ASC").
		Find(&skuModels).Error; err != nil {
		return nil, err
	}
	return toDomainSkus(skuModels), nil
}

// FindAll finds SKUs matching the filter
func (r *GormSkuRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Sku, error) {
	var skuModels []models.SkuModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SkuModel{}), filter)
	if err := query.Find(&skuModels).Error; err != nil {
		return nil, err
	}
	return toDomainSkus(skuModels), nil
}

// Count counts SKUs matching the filter
func (r *GormSkuRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.SkuModel{})
	if filter.Search != "" {
		query = applySkuSearch(query, filter.Search)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a SKU
func (r *GormSkuRepository) Save(ctx context.Context, sku *catalog.Sku) error {
	model := models.SkuModelFromDomain(sku)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a SKU
func (r *GormSkuRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SkuModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByCode checks whether a SKU code is already registered
func (r *GormSkuRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SkuModel{}).
		Where("LOWER(code) = ?", strings.ToLower(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies common filter options to a query
func (r *GormSkuRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = applySkuSearch(query, filter.Search)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := "created_at"
	if filter.OrderBy != "" {
		// Whitelist sortable columns to prevent SQL injection
		validFields := map[string]bool{
			"code":         true,
			"product_name": true,
			"created_at":   true,
			"updated_at":   true,
		}
		if validFields[filter.OrderBy] {
			orderBy = filter.OrderBy
		}
	}

	orderDir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		orderDir = "ASC"
	}

	return query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))
}

func applySkuSearch(query *gorm.DB, search string) *gorm.DB {
	pattern := "%" + strings.ToLower(search) + "%"
	return query.Where("LOWER(code) LIKE ? OR LOWER(product_name) LIKE ?", pattern, pattern)
}

func toDomainSkus(skuModels []models.SkuModel) []catalog.Sku {
	skus := make([]catalog.Sku, len(skuModels))
	for i := range skuModels {
		skus[i] = *skuModels[i].ToDomain()
	}
	return skus
}

// Ensure GormSkuRepository implements SkuRepository
var _ catalog.SkuRepository = (*GormSkuRepository)(nil)
