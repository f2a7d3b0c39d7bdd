package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stitchline/backend/internal/domain/shared"
)

// Direction indicates whether an entry adds stock or removes it
type Direction string

const (
	DirectionInward  Direction = "INWARD"
	DirectionOutward Direction = "OUTWARD"
)

// IsValid checks if the direction is a valid Direction
func (d Direction) IsValid() bool {
	return d == DirectionInward || d == DirectionOutward
}

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// Well-known entry reasons. Callers may supply free-form reasons; these are
// the ones the engine itself writes.
const (
	ReasonCountAdjustment = "count_adjustment"
)

// Entry is a single immutable inventory movement for one SKU. Once written
// it is never updated or deleted; corrections are new compensating entries.
type Entry struct {
	ID          uuid.UUID
	SkuID       uuid.UUID
	Direction   Direction
	Quantity    int64 // always positive; Direction carries the sign
	Reason      string
	ReferenceID *string
	Notes       *string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
}

// NewEntry creates a validated ledger entry
func NewEntry(skuID uuid.UUID, direction Direction, quantity int64, reason string, createdBy uuid.UUID) (*Entry, error) {
	if skuID == uuid.Nil {
		return nil, shared.NewDomainError("BAD_REQUEST", "SKU ID cannot be empty")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("BAD_REQUEST", fmt.Sprintf("Invalid direction: %s", direction))
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("BAD_REQUEST", "Quantity must be a positive integer")
	}
	if reason == "" {
		return nil, shared.NewDomainError("BAD_REQUEST", "Reason cannot be empty")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("BAD_REQUEST", "Actor ID cannot be empty")
	}

	return &Entry{
		ID:        uuid.New(),
		SkuID:     skuID,
		Direction: direction,
		Quantity:  quantity,
		Reason:    reason,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}, nil
}

// WithReference links the entry to a source document
func (e *Entry) WithReference(referenceID string) *Entry {
	e.ReferenceID = &referenceID
	return e
}

// WithNotes attaches free-form notes
func (e *Entry) WithNotes(notes string) *Entry {
	e.Notes = &notes
	return e
}

// SignedQuantity returns the quantity with its direction applied
func (e *Entry) SignedQuantity() int64 {
	if e.Direction == DirectionOutward {
		return -e.Quantity
	}
	return e.Quantity
}

// NewAdjustmentEntry builds the ledger entry that corrects a non-zero count
// variance. A positive variance means the shelf held more than the ledger
// (inward correction); a negative variance means less (outward correction).
func NewAdjustmentEntry(skuID uuid.UUID, variance int64, reason string, sessionID uuid.UUID, notes string, createdBy uuid.UUID) (*Entry, error) {
	if variance == 0 {
		return nil, shared.NewDomainError("BAD_REQUEST", "Cannot post an adjustment for a zero variance")
	}

	direction := DirectionInward
	quantity := variance
	if variance < 0 {
		direction = DirectionOutward
		quantity = -variance
	}
	if reason == "" {
		reason = ReasonCountAdjustment
	}

	entry, err := NewEntry(skuID, direction, quantity, reason, createdBy)
	if err != nil {
		return nil, err
	}
	entry.WithReference(sessionID.String())
	if notes == "" {
		notes = fmt.Sprintf("Count adjustment for session %s", sessionID)
	}
	entry.WithNotes(notes)
	return entry, nil
}
