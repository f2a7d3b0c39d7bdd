package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stitchline/backend/internal/domain/reconciliation"
)

// ReconciliationSessionModel is the persistence model for reconciliation sessions
type ReconciliationSessionModel struct {
	AuditedAggregateModel
	Status        string     `gorm:"type:varchar(20);not null;index"`
	Remark        string     `gorm:"type:varchar(500)"`
	SubmittedAt   *time.Time `gorm:""`
	TotalItems    int        `gorm:"not null;default:0"`
	CountedItems  int        `gorm:"not null;default:0"`
	VarianceItems int        `gorm:"not null;default:0"`

	Items []ReconciliationItemModel `gorm:"foreignKey:SessionID"`
}

// TableName specifies the table name for ReconciliationSessionModel
func (ReconciliationSessionModel) TableName() string {
	return "reconciliation_sessions"
}

// ReconciliationItemModel is the persistence model for session items
type ReconciliationItemModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key"`
	SessionID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	SkuID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	SkuCode          string     `gorm:"type:varchar(64);not null"`
	SystemQuantity   int64      `gorm:"not null"`
	PhysicalQuantity *int64     `gorm:""`
	Variance         *int64     `gorm:""`
	AdjustmentReason *string    `gorm:"type:varchar(100)"`
	Notes            *string    `gorm:"type:text"`
	LinkedEntryID    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt        time.Time  `gorm:"not null"`
	UpdatedAt        time.Time  `gorm:"not null"`
}

// TableName specifies the table name for ReconciliationItemModel
func (ReconciliationItemModel) TableName() string {
	return "reconciliation_items"
}

// ToDomain converts the model to a domain Item
func (m *ReconciliationItemModel) ToDomain() reconciliation.Item {
	return reconciliation.Item{
		ID:               m.ID,
		SessionID:        m.SessionID,
		SkuID:            m.SkuID,
		SkuCode:          m.SkuCode,
		SystemQuantity:   m.SystemQuantity,
		PhysicalQuantity: m.PhysicalQuantity,
		Variance:         m.Variance,
		AdjustmentReason: m.AdjustmentReason,
		Notes:            m.Notes,
		LinkedEntryID:    m.LinkedEntryID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// ReconciliationItemModelFromDomain converts a domain Item to the persistence model
func ReconciliationItemModelFromDomain(i *reconciliation.Item) *ReconciliationItemModel {
	return &ReconciliationItemModel{
		ID:               i.ID,
		SessionID:        i.SessionID,
		SkuID:            i.SkuID,
		SkuCode:          i.SkuCode,
		SystemQuantity:   i.SystemQuantity,
		PhysicalQuantity: i.PhysicalQuantity,
		Variance:         i.Variance,
		AdjustmentReason: i.AdjustmentReason,
		Notes:            i.Notes,
		LinkedEntryID:    i.LinkedEntryID,
		CreatedAt:        i.CreatedAt,
		UpdatedAt:        i.UpdatedAt,
	}
}

// ToDomain converts the model to a domain Session
func (m *ReconciliationSessionModel) ToDomain() *reconciliation.Session {
	session := &reconciliation.Session{
		Status:        reconciliation.SessionStatus(m.Status),
		Remark:        m.Remark,
		SubmittedAt:   m.SubmittedAt,
		TotalItems:    m.TotalItems,
		CountedItems:  m.CountedItems,
		VarianceItems: m.VarianceItems,
	}
	m.PopulateAuditedAggregateRoot(&session.AuditedAggregateRoot)

	session.Items = make([]reconciliation.Item, len(m.Items))
	for i := range m.Items {
		session.Items[i] = m.Items[i].ToDomain()
	}
	return session
}

// ReconciliationSessionModelFromDomain converts a domain Session to the
// persistence model, without its items
func ReconciliationSessionModelFromDomain(s *reconciliation.Session) *ReconciliationSessionModel {
	model := &ReconciliationSessionModel{
		Status:        s.Status.String(),
		Remark:        s.Remark,
		SubmittedAt:   s.SubmittedAt,
		TotalItems:    s.TotalItems,
		CountedItems:  s.CountedItems,
		VarianceItems: s.VarianceItems,
	}
	model.FromDomainAuditedAggregateRoot(s.AuditedAggregateRoot)
	return model
}
