package reconciliation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stitchline/backend/internal/domain/shared"
)

// SessionStatus represents the lifecycle state of a reconciliation session
type SessionStatus string

const (
	SessionStatusDraft     SessionStatus = "DRAFT"
	SessionStatusSubmitted SessionStatus = "SUBMITTED"
)

// IsValid checks if the status is a valid SessionStatus
func (s SessionStatus) IsValid() bool {
	return s == SessionStatusDraft || s == SessionStatusSubmitted
}

// String returns the string representation of SessionStatus
func (s SessionStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Submitted is terminal; the only legal transition is Draft -> Submitted.
func (s SessionStatus) CanTransitionTo(target SessionStatus) bool {
	return s == SessionStatusDraft && target == SessionStatusSubmitted
}

// Item is one SKU line in a reconciliation session. SystemQuantity is a
// snapshot taken when the session opened and is never rewritten afterwards.
type Item struct {
	ID               uuid.UUID
	SessionID        uuid.UUID
	SkuID            uuid.UUID
	SkuCode          string
	SystemQuantity   int64
	PhysicalQuantity *int64 // nil until counted
	Variance         *int64 // physical - system, nil while uncounted
	AdjustmentReason *string
	Notes            *string
	LinkedEntryID    *uuid.UUID // set only after submit, for non-zero variances
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewItem creates an uncounted session item snapshotting the system balance
func NewItem(sessionID, skuID uuid.UUID, skuCode string, systemQty int64) *Item {
	now := time.Now()
	return &Item{
		ID:             uuid.New(),
		SessionID:      sessionID,
		SkuID:          skuID,
		SkuCode:        skuCode,
		SystemQuantity: systemQty,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// RecordCount stores the physical count and recomputes the variance.
// Calling it again replaces the previous count (last write wins).
func (i *Item) RecordCount(physicalQty int64, adjustmentReason, notes *string) error {
	if physicalQty < 0 {
		return shared.NewDomainError("BAD_REQUEST", "Physical quantity cannot be negative")
	}

	variance := physicalQty - i.SystemQuantity
	i.PhysicalQuantity = &physicalQty
	i.Variance = &variance
	i.AdjustmentReason = adjustmentReason
	i.Notes = notes
	i.UpdatedAt = time.Now()
	return nil
}

// IsCounted reports whether a physical quantity has been recorded
func (i *Item) IsCounted() bool {
	return i.PhysicalQuantity != nil
}

// HasVariance reports whether the item was counted and differs from the ledger
func (i *Item) HasVariance() bool {
	return i.Variance != nil && *i.Variance != 0
}

// LinkEntry records the adjustment entry posted for this item at submit time
func (i *Item) LinkEntry(entryID uuid.UUID) {
	i.LinkedEntryID = &entryID
	i.UpdatedAt = time.Now()
}

// Session is a bounded physical-count workflow: a snapshot of system
// balances for a SKU set, mutable physical counts while Draft, and a single
// submit point that may post count adjustments back to the ledger.
type Session struct {
	shared.AuditedAggregateRoot
	Status        SessionStatus
	Remark        string
	SubmittedAt   *time.Time
	TotalItems    int
	CountedItems  int
	VarianceItems int
	Items         []Item
}

// NewSession creates a new draft session for the given actor
func NewSession(createdBy uuid.UUID) (*Session, error) {
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("BAD_REQUEST", "Actor ID cannot be empty")
	}

	s := &Session{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		Status:               SessionStatusDraft,
		Items:                make([]Item, 0),
	}
	s.AddDomainEvent(NewSessionOpenedEvent(s))
	return s, nil
}

// IsDraft reports whether the session can still be mutated
func (s *Session) IsDraft() bool {
	return s.Status == SessionStatusDraft
}

// AddItem snapshots one SKU into the session. Only valid while Draft and
// only once per SKU.
func (s *Session) AddItem(skuID uuid.UUID, skuCode string, systemQty int64) error {
	if !s.IsDraft() {
		return shared.NewDomainError("BAD_REQUEST", "Items can only be added to a draft session")
	}
	for _, item := range s.Items {
		if item.SkuID == skuID {
			return shared.NewDomainError("BAD_REQUEST", fmt.Sprintf("SKU %s is already part of the session", skuCode))
		}
	}

	item := NewItem(s.ID, skuID, skuCode, systemQty)
	s.Items = append(s.Items, *item)
	s.TotalItems++
	s.Touch()
	return nil
}

// RecordItemCount records the physical count for one item by item id
func (s *Session) RecordItemCount(itemID uuid.UUID, physicalQty int64, adjustmentReason, notes *string) error {
	if !s.IsDraft() {
		return shared.NewDomainError("BAD_REQUEST", "Counts can only be recorded on a draft session")
	}

	for idx := range s.Items {
		if s.Items[idx].ID == itemID {
			wasCounted := s.Items[idx].IsCounted()
			if err := s.Items[idx].RecordCount(physicalQty, adjustmentReason, notes); err != nil {
				return err
			}
			if !wasCounted {
				s.CountedItems++
			}
			s.recalculateVariances()
			s.Touch()
			s.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Item %s not found in session", itemID))
}

// recalculateVariances refreshes the variance tally after a count changes
func (s *Session) recalculateVariances() {
	s.VarianceItems = 0
	for _, item := range s.Items {
		if item.HasVariance() {
			s.VarianceItems++
		}
	}
}

// AdjustableItems returns indexes of items whose variance requires a
// ledger adjustment at submit time
func (s *Session) AdjustableItems() []int {
	idxs := make([]int, 0)
	for i := range s.Items {
		if s.Items[i].HasVariance() {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// ValidateForSubmit re-checks the structural invariant that every item with
// a non-zero variance carries a physical count. The variance formula makes
// this true by construction, but submit re-validates before writing.
func (s *Session) ValidateForSubmit() error {
	for i := range s.Items {
		if s.Items[i].HasVariance() && !s.Items[i].IsCounted() {
			return shared.NewDomainError("BAD_REQUEST",
				fmt.Sprintf("SKU %s has a variance but no physical count", s.Items[i].SkuCode))
		}
	}
	return nil
}

// MarkSubmitted flips the session to its terminal state
func (s *Session) MarkSubmitted() error {
	if !s.Status.CanTransitionTo(SessionStatusSubmitted) {
		return shared.NewDomainError("BAD_REQUEST", fmt.Sprintf("Cannot submit a session in status %s", s.Status))
	}

	now := time.Now()
	s.Status = SessionStatusSubmitted
	s.SubmittedAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewSessionSubmittedEvent(s))
	return nil
}

// SetRemark sets the free-form remark
func (s *Session) SetRemark(remark string) {
	s.Remark = remark
	s.Touch()
}

// SkuIDs returns the SKU ids covered by the session
func (s *Session) SkuIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(s.Items))
	for i := range s.Items {
		ids[i] = s.Items[i].SkuID
	}
	return ids
}
