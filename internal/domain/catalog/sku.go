package catalog

import (
	"github.com/google/uuid"

	"github.com/stitchline/backend/internal/domain/shared"
)

// Sku is a stock-keeping unit: one sellable variation of a product
// (e.g. a style in one size and colour). Its quantity on hand is never
// stored here; it is derived from the ledger.
type Sku struct {
	shared.AuditedAggregateRoot
	Code                string
	ProductName         string
	Size                string
	Color               string
	IsActive            bool
	IsExcludedFromCount bool
}

// NewSku creates a new active SKU
func NewSku(code, productName, size, color string, createdBy uuid.UUID) (*Sku, error) {
	if code == "" {
		return nil, shared.NewDomainError("BAD_REQUEST", "SKU code cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("BAD_REQUEST", "Product name cannot be empty")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("BAD_REQUEST", "Actor ID cannot be empty")
	}

	return &Sku{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		Code:                 code,
		ProductName:          productName,
		Size:                 size,
		Color:                color,
		IsActive:             true,
		IsExcludedFromCount:  false,
	}, nil
}

// IsCountable reports whether the SKU participates in physical counts
func (s *Sku) IsCountable() bool {
	return s.IsActive && !s.IsExcludedFromCount
}

// Deactivate retires the SKU from all flows
func (s *Sku) Deactivate() {
	s.IsActive = false
	s.Touch()
	s.IncrementVersion()
}

// Activate restores a retired SKU
func (s *Sku) Activate() {
	s.IsActive = true
	s.Touch()
	s.IncrementVersion()
}

// ExcludeFromCount removes the SKU from future reconciliation sessions
// without retiring it (e.g. consignment stock counted elsewhere)
func (s *Sku) ExcludeFromCount() {
	s.IsExcludedFromCount = true
	s.Touch()
	s.IncrementVersion()
}

// IncludeInCount re-enrolls the SKU in reconciliation sessions
func (s *Sku) IncludeInCount() {
	s.IsExcludedFromCount = false
	s.Touch()
	s.IncrementVersion()
}

// Rename updates the descriptive fields
func (s *Sku) Rename(productName, size, color string) error {
	if productName == "" {
		return shared.NewDomainError("BAD_REQUEST", "Product name cannot be empty")
	}
	s.ProductName = productName
	s.Size = size
	s.Color = color
	s.Touch()
	s.IncrementVersion()
	return nil
}
