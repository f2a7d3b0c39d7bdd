package reconciliation

import (
	"github.com/google/uuid"

	"github.com/stitchline/backend/internal/domain/shared"
)

// Aggregate type constant for reconciliation sessions
const AggregateTypeSession = "ReconciliationSession"

// Session event type constants
const (
	EventTypeSessionOpened    = "ReconciliationSessionOpened"
	EventTypeSessionSubmitted = "ReconciliationSessionSubmitted"
)

// SessionOpenedEvent is raised when a session is opened
type SessionOpenedEvent struct {
	shared.BaseDomainEvent
	SessionID  uuid.UUID `json:"session_id"`
	TotalItems int       `json:"total_items"`
}

// NewSessionOpenedEvent creates a new SessionOpenedEvent
func NewSessionOpenedEvent(s *Session) *SessionOpenedEvent {
	return &SessionOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionOpened, AggregateTypeSession, s.ID, s.CreatedBy),
		SessionID:       s.ID,
		TotalItems:      s.TotalItems,
	}
}

// EventType returns the event type name
func (e *SessionOpenedEvent) EventType() string {
	return EventTypeSessionOpened
}

// SessionSubmittedEvent is raised when a session reaches its terminal state
type SessionSubmittedEvent struct {
	shared.BaseDomainEvent
	SessionID     uuid.UUID   `json:"session_id"`
	TotalItems    int         `json:"total_items"`
	VarianceItems int         `json:"variance_items"`
	AdjustedSkus  []uuid.UUID `json:"adjusted_skus"`
}

// NewSessionSubmittedEvent creates a new SessionSubmittedEvent
func NewSessionSubmittedEvent(s *Session) *SessionSubmittedEvent {
	adjusted := make([]uuid.UUID, 0)
	for i := range s.Items {
		if s.Items[i].HasVariance() {
			adjusted = append(adjusted, s.Items[i].SkuID)
		}
	}
	return &SessionSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionSubmitted, AggregateTypeSession, s.ID, s.CreatedBy),
		SessionID:       s.ID,
		TotalItems:      s.TotalItems,
		VarianceItems:   s.VarianceItems,
		AdjustedSkus:    adjusted,
	}
}

// EventType returns the event type name
func (e *SessionSubmittedEvent) EventType() string {
	return EventTypeSessionSubmitted
}
