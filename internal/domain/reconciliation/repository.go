package reconciliation

import (
	"context"

	"github.com/google/uuid"

	"github.com/stitchline/backend/internal/domain/shared"
)

// SessionFilter narrows session list queries
type SessionFilter struct {
	shared.Filter
	Status    *SessionStatus
	CreatedBy *uuid.UUID
}

// SessionRepository persists reconciliation sessions and their items
type SessionRepository interface {
	// FindByID returns a session with its items loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)
	// FindAll returns sessions matching the filter, items not loaded
	FindAll(ctx context.Context, filter SessionFilter) ([]Session, error)
	// Count counts sessions matching the filter
	Count(ctx context.Context, filter SessionFilter) (int64, error)
	// SaveWithItems persists the session and all items in one transaction
	SaveWithItems(ctx context.Context, session *Session) error
	// SaveItems persists a subset of items as one all-or-nothing batch
	SaveItems(ctx context.Context, items []*Item) error
	// MarkSubmitted flips the session status with a compare-and-swap on the
	// current status: UPDATE ... WHERE id = ? AND status = 'DRAFT'. If no row
	// is affected another writer won the race (or the session is already
	// submitted) and ErrConcurrencyConflict is returned.
	MarkSubmitted(ctx context.Context, id uuid.UUID) error
	// Delete removes a session and its items
	Delete(ctx context.Context, id uuid.UUID) error
}
