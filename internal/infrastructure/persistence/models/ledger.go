package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stitchline/backend/internal/domain/ledger"
)

// LedgerEntryModel is the persistence model for ledger entries. Rows are
// insert-only: there is no UpdatedAt and no code path issues UPDATE or
// DELETE against this table.
type LedgerEntryModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	SkuID       uuid.UUID `gorm:"type:uuid;not null;index:idx_ledger_entries_sku_direction,priority:1"`
	Direction   string    `gorm:"type:varchar(10);not null;index:idx_ledger_entries_sku_direction,priority:2"`
	Quantity    int64     `gorm:"not null"`
	Reason      string    `gorm:"type:varchar(100);not null"`
	ReferenceID *string   `gorm:"type:varchar(100);index"`
	Notes       *string   `gorm:"type:text"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for LedgerEntryModel
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the model to a domain Entry
func (m *LedgerEntryModel) ToDomain() *ledger.Entry {
	return &ledger.Entry{
		ID:          m.ID,
		SkuID:       m.SkuID,
		Direction:   ledger.Direction(m.Direction),
		Quantity:    m.Quantity,
		Reason:      m.Reason,
		ReferenceID: m.ReferenceID,
		Notes:       m.Notes,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

// LedgerEntryModelFromDomain converts a domain Entry to the persistence model
func LedgerEntryModelFromDomain(e *ledger.Entry) *LedgerEntryModel {
	return &LedgerEntryModel{
		ID:          e.ID,
		SkuID:       e.SkuID,
		Direction:   e.Direction.String(),
		Quantity:    e.Quantity,
		Reason:      e.Reason,
		ReferenceID: e.ReferenceID,
		Notes:       e.Notes,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}
