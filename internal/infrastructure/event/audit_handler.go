package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/stitchline/backend/internal/domain/ledger"
	"github.com/stitchline/backend/internal/domain/reconciliation"
	"github.com/stitchline/backend/internal/domain/shared"
)

// AuditLogHandler writes an audit line for every inventory movement and
// reconciliation lifecycle change. The ledger itself is the durable audit
// trail; this handler makes it greppable in the application log.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new audit log handler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger}
}

// EventTypes returns the event types this handler subscribes to
func (h *AuditLogHandler) EventTypes() []string {
	return []string{
		ledger.EventTypeEntryPosted,
		reconciliation.EventTypeSessionOpened,
		reconciliation.EventTypeSessionSubmitted,
	}
}

// Handle writes one structured audit line per event
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("actor_id", event.ActorID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *ledger.EntryPostedEvent:
		fields = append(fields,
			zap.String("sku_id", e.SkuID.String()),
			zap.String("direction", e.Direction.String()),
			zap.Int64("quantity", e.Quantity),
			zap.String("reason", e.Reason),
		)
		if e.ReferenceID != nil {
			fields = append(fields, zap.String("reference_id", *e.ReferenceID))
		}
	case *reconciliation.SessionOpenedEvent:
		fields = append(fields, zap.Int("total_items", e.TotalItems))
	case *reconciliation.SessionSubmittedEvent:
		fields = append(fields,
			zap.Int("total_items", e.TotalItems),
			zap.Int("variance_items", e.VarianceItems),
			zap.Int("adjusted_skus", len(e.AdjustedSkus)),
		)
	}

	h.logger.Info("audit", fields...)
	return nil
}

// Ensure AuditLogHandler implements EventHandler
var _ shared.EventHandler = (*AuditLogHandler)(nil)
