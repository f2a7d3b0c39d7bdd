package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stitchline/backend/internal/domain/reconciliation"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stitchline/backend/internal/infrastructure/persistence/models"
)

// GormReconciliationSessionRepository implements reconciliation.SessionRepository using GORM
type GormReconciliationSessionRepository struct {
	db *gorm.DB
}

// NewGormReconciliationSessionRepository creates a new GormReconciliationSessionRepository
func NewGormReconciliationSessionRepository(db *gorm.DB) *GormReconciliationSessionRepository {
	return &GormReconciliationSessionRepository{db: db}
}

// FindByID finds a session by its ID with items loaded
func (r *GormReconciliationSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*reconciliation.Session, error) {
	var model models.ReconciliationSessionModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds sessions matching the filter, items not loaded
func (r *GormReconciliationSessionRepository) FindAll(ctx context.Context, filter reconciliation.SessionFilter) ([]reconciliation.Session, error) {
	var sessionModels []models.ReconciliationSessionModel
	query := r.applyFilter(
		r.applyScopes(r.db.WithContext(ctx).Model(&models.ReconciliationSessionModel{}), filter),
		filter.Filter,
	)
	if err := query.Find(&sessionModels).Error; err != nil {
		return nil, err
	}

	sessions := make([]reconciliation.Session, len(sessionModels))
	for i := range sessionModels {
		sessions[i] = *sessionModels[i].ToDomain()
	}
	return sessions, nil
}

// Count counts sessions matching the filter
func (r *GormReconciliationSessionRepository) Count(ctx context.Context, filter reconciliation.SessionFilter) (int64, error) {
	var count int64
	query := r.applyScopes(r.db.WithContext(ctx).Model(&models.ReconciliationSessionModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SaveWithItems saves a session and all of its items in one transaction.
// The session row update carries the same status guard as MarkSubmitted: a
// stale Draft aggregate persisted after a concurrent submit must not regress
// the row (and rewrite its items), so zero affected rows on an existing
// session fails the whole transaction with ErrConcurrencyConflict.
func (r *GormReconciliationSessionRepository) SaveWithItems(ctx context.Context, session *reconciliation.Session) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.ReconciliationSessionModelFromDomain(session)
		result := tx.Model(&models.ReconciliationSessionModel{}).
			Where("id = ? AND status = ?", session.ID, reconciliation.SessionStatusDraft.String()).
			Updates(map[string]interface{}{
				"status":         model.Status,
				"remark":         model.Remark,
				"submitted_at":   model.SubmittedAt,
				"total_items":    model.TotalItems,
				"counted_items":  model.CountedItems,
				"variance_items": model.VarianceItems,
				"updated_at":     model.UpdatedAt,
				"version":        model.Version,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.ReconciliationSessionModel{}).
				Where("id = ?", session.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return shared.ErrConcurrencyConflict
			}
			if err := tx.Create(model).Error; err != nil {
				return err
			}
		}

		// Drop items removed from the aggregate
		itemIDs := make([]uuid.UUID, 0, len(session.Items))
		for i := range session.Items {
			itemIDs = append(itemIDs, session.Items[i].ID)
		}
		if len(itemIDs) > 0 {
			if err := tx.Where("session_id = ? AND id NOT IN ?", session.ID, itemIDs).
				Delete(&models.ReconciliationItemModel{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("session_id = ?", session.ID).
				Delete(&models.ReconciliationItemModel{}).Error; err != nil {
				return err
			}
		}

		for i := range session.Items {
			session.Items[i].SessionID = session.ID
			itemModel := models.ReconciliationItemModelFromDomain(&session.Items[i])
			if err := tx.Save(itemModel).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// SaveItems persists a subset of items as one all-or-nothing batch
func (r *GormReconciliationSessionRepository) SaveItems(ctx context.Context, items []*reconciliation.Item) error {
	if len(items) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			itemModel := models.ReconciliationItemModelFromDomain(item)
			if err := tx.Save(itemModel).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkSubmitted flips the session to SUBMITTED with a compare-and-swap on
// the current status. When zero rows match, either the session is gone
// (ErrNotFound) or another writer already submitted it (ErrConcurrencyConflict).
func (r *GormReconciliationSessionRepository) MarkSubmitted(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.ReconciliationSessionModel{}).
		Where("id = ? AND status = ?", id, reconciliation.SessionStatusDraft.String()).
		Updates(map[string]interface{}{
			"status":       reconciliation.SessionStatusSubmitted.String(),
			"submitted_at": now,
			"updated_at":   now,
			"version":      gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.ReconciliationSessionModel{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a Draft session and its items. Submitted sessions are part
// of the audit trail: the delete is conditional on the current status so a
// submit committing between the caller's read and this delete leaves the row
// untouched. Zero affected rows means the session is gone (ErrNotFound) or
// was submitted in the meantime (ErrBadRequest).
func (r *GormReconciliationSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND status = ?", id, reconciliation.SessionStatusDraft.String()).
			Delete(&models.ReconciliationSessionModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.ReconciliationSessionModel{}).
				Where("id = ?", id).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrBadRequest
		}
		return tx.Where("session_id = ?", id).
			Delete(&models.ReconciliationItemModel{}).Error
	})
}

// applyScopes narrows the query to the filter's status and creator
func (r *GormReconciliationSessionRepository) applyScopes(query *gorm.DB, filter reconciliation.SessionFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	return query
}

// applyFilter applies common filter options to a query
func (r *GormReconciliationSessionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := "created_at"
	if filter.OrderBy != "" {
		// Whitelist sortable columns to prevent SQL injection
		validFields := map[string]bool{
			"status":       true,
			"submitted_at": true,
			"created_at":   true,
			"updated_at":   true,
			"total_items":  true,
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

// Ensure GormReconciliationSessionRepository implements SessionRepository
var _ reconciliation.SessionRepository = (*GormReconciliationSessionRepository)(nil)
