package inventory

import (
	"context"

	"github.com/google/uuid"
)

// BalanceCacheInvalidator notifies downstream caches that the ledger balance
// of one or more SKUs has changed. Invalidation is strictly best-effort:
// callers run it after the owning transaction has committed, and a failure
// must never roll back or fail the business operation.
type BalanceCacheInvalidator interface {
	// InvalidateBalances marks the cached balances for the given SKUs stale
	InvalidateBalances(ctx context.Context, skuIDs []uuid.UUID) error
}

// NoOpBalanceCacheInvalidator ignores invalidation requests. Used when no
// cache layer is configured.
type NoOpBalanceCacheInvalidator struct{}

// NewNoOpBalanceCacheInvalidator creates a NoOpBalanceCacheInvalidator
func NewNoOpBalanceCacheInvalidator() *NoOpBalanceCacheInvalidator {
	return &NoOpBalanceCacheInvalidator{}
}

// InvalidateBalances does nothing
func (n *NoOpBalanceCacheInvalidator) InvalidateBalances(_ context.Context, _ []uuid.UUID) error {
	return nil
}

var _ BalanceCacheInvalidator = (*NoOpBalanceCacheInvalidator)(nil)
