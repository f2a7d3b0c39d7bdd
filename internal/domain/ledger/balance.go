package ledger

import (
	"context"

	"github.com/google/uuid"
)

// BalanceCalculator derives quantity on hand from the ledger. Balances are
// never stored authoritatively; they are always the sum of inward entries
// minus outward entries over all time.
type BalanceCalculator struct {
	entries EntryRepository
}

// NewBalanceCalculator creates a new BalanceCalculator
func NewBalanceCalculator(entries EntryRepository) *BalanceCalculator {
	return &BalanceCalculator{entries: entries}
}

// Balances returns the net balance for every requested SKU using one bulk
// aggregation. SKUs with no ledger history yield 0.
func (c *BalanceCalculator) Balances(ctx context.Context, skuIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	result := make(map[uuid.UUID]int64, len(skuIDs))
	if len(skuIDs) == 0 {
		return result, nil
	}

	totals, err := c.entries.SumByDirection(ctx, skuIDs)
	if err != nil {
		return nil, err
	}

	for _, id := range skuIDs {
		result[id] = totals[id].Net()
	}
	return result, nil
}

// Balance returns the net balance for a single SKU
func (c *BalanceCalculator) Balance(ctx context.Context, skuID uuid.UUID) (int64, error) {
	balances, err := c.Balances(ctx, []uuid.UUID{skuID})
	if err != nil {
		return 0, err
	}
	return balances[skuID], nil
}
