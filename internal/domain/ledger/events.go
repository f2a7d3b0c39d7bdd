package ledger

import (
	"github.com/google/uuid"

	"github.com/stitchline/backend/internal/domain/shared"
)

// Aggregate type constant for ledger entries
const AggregateTypeLedgerEntry = "LedgerEntry"

// Ledger event type constants
const (
	EventTypeEntryPosted = "LedgerEntryPosted"
)

// EntryPostedEvent is raised after a ledger entry is committed
type EntryPostedEvent struct {
	shared.BaseDomainEvent
	EntryID     uuid.UUID `json:"entry_id"`
	SkuID       uuid.UUID `json:"sku_id"`
	Direction   Direction `json:"direction"`
	Quantity    int64     `json:"quantity"`
	Reason      string    `json:"reason"`
	ReferenceID *string   `json:"reference_id,omitempty"`
}

// NewEntryPostedEvent creates a new EntryPostedEvent
func NewEntryPostedEvent(e *Entry) *EntryPostedEvent {
	return &EntryPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEntryPosted, AggregateTypeLedgerEntry, e.ID, e.CreatedBy),
		EntryID:         e.ID,
		SkuID:           e.SkuID,
		Direction:       e.Direction,
		Quantity:        e.Quantity,
		Reason:          e.Reason,
		ReferenceID:     e.ReferenceID,
	}
}

// EventType returns the event type name
func (e *EntryPostedEvent) EventType() string {
	return EventTypeEntryPosted
}
