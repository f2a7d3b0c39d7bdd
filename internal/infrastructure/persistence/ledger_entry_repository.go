package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stitchline/backend/internal/domain/ledger"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stitchline/backend/internal/infrastructure/persistence/models"
)

// GormLedgerEntryRepository implements ledger.EntryRepository using GORM.
// The table is append-only: this repository never issues UPDATE or DELETE.
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// Create appends a single entry
func (r *GormLedgerEntryRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	model := models.LedgerEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// CreateBatch appends multiple entries in one insert
func (r *GormLedgerEntryRepository) CreateBatch(ctx context.Context, entries []*ledger.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	entryModels := make([]models.LedgerEntryModel, len(entries))
	for i, entry := range entries {
		entryModels[i] = *models.LedgerEntryModelFromDomain(entry)
	}
	return r.db.WithContext(ctx).Create(&entryModels).Error
}

// FindByID finds an entry by its ID
func (r *GormLedgerEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySku finds entries for one SKU, newest first by default
func (r *GormLedgerEntryRepository) FindBySku(ctx context.Context, skuID uuid.UUID, filter shared.Filter) ([]ledger.Entry, error) {
	var entryModels []models.LedgerEntryModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).Where("sku_id = ?", skuID),
		filter,
	)
	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(entryModels), nil
}

// CountBySku counts entries for one SKU
func (r *GormLedgerEntryRepository) CountBySku(ctx context.Context, skuID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).
		Where("sku_id = ?", skuID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByReference finds entries linked to a source document
func (r *GormLedgerEntryRepository) FindByReference(ctx context.Context, referenceID string) ([]ledger.Entry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Order("created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(entryModels), nil
}

// SumByDirection aggregates quantity per (SKU, direction) for the given id
// set with a single GROUP BY query
func (r *GormLedgerEntryRepository) SumByDirection(ctx context.Context, skuIDs []uuid.UUID) (map[uuid.UUID]ledger.DirectionTotals, error) {
	totals := make(map[uuid.UUID]ledger.DirectionTotals)
	if len(skuIDs) == 0 {
		return totals, nil
	}

	var rows []struct {
		SkuID     uuid.UUID
		Direction string
		Total     int64
	}
	if err := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).
		Select("sku_id, direction, SUM(quantity) AS total").
		Where("sku_id IN ?", skuIDs).
		Group("sku_id").
		Group("direction").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		t := totals[row.SkuID]
		switch ledger.Direction(row.Direction) {
		case ledger.DirectionInward:
			t.Inward = row.Total
		case ledger.DirectionOutward:
			t.Outward = row.Total
		}
		totals[row.SkuID] = t
	}
	return totals, nil
}

// SumOutwardSince sums outward quantity for one SKU from a point in time
func (r *GormLedgerEntryRepository) SumOutwardSince(ctx context.Context, skuID uuid.UUID, since time.Time) (int64, error) {
	var sum int64
	if err := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("sku_id = ? AND direction = ? AND created_at >= ?", skuID, ledger.DirectionOutward.String(), since).
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	return sum, nil
}

// applyFilter applies common filter options to a query
func (r *GormLedgerEntryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := "created_at"
	if filter.OrderBy != "" {
		// Whitelist sortable columns to prevent SQL injection
		validFields := map[string]bool{
			"created_at": true,
			"quantity":   true,
			"direction":  true,
			"reason":     true,
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

func toDomainEntries(entryModels []models.LedgerEntryModel) []ledger.Entry {
	entries := make([]ledger.Entry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries
}

// Ensure GormLedgerEntryRepository implements EntryRepository
var _ ledger.EntryRepository = (*GormLedgerEntryRepository)(nil)
