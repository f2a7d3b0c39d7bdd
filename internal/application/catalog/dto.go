package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/stitchline/backend/internal/domain/catalog"
)

// ===================== Request DTOs =====================

// CreateSkuRequest represents a request to register a new SKU
type CreateSkuRequest struct {
	Code        string `json:"code" binding:"required,min=1,max=64"`
	ProductName string `json:"product_name" binding:"required,min=1,max=200"`
	Size        string `json:"size" binding:"max=32"`
	Color       string `json:"color" binding:"max=64"`
}

// UpdateSkuRequest represents a request to rename a SKU's descriptive fields
type UpdateSkuRequest struct {
	ProductName string `json:"product_name" binding:"required,min=1,max=200"`
	Size        string `json:"size" binding:"max=32"`
	Color       string `json:"color" binding:"max=64"`
}

// SkuListFilter represents filter options for SKU lists
type SkuListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ===================== Response DTOs =====================

// SkuResponse represents a SKU in API responses
type SkuResponse struct {
	ID                  uuid.UUID `json:"id"`
	Code                string    `json:"code"`
	ProductName         string    `json:"product_name"`
	Size                string    `json:"size,omitempty"`
	Color               string    `json:"color,omitempty"`
	IsActive            bool      `json:"is_active"`
	IsExcludedFromCount bool      `json:"is_excluded_from_count"`
	CreatedBy           uuid.UUID `json:"created_by"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	Version             int       `json:"version"`
}

// ToSkuResponse converts a SKU to its response DTO
func ToSkuResponse(s *catalog.Sku) SkuResponse {
	return SkuResponse{
		ID:                  s.ID,
		Code:                s.Code,
		ProductName:         s.ProductName,
		Size:                s.Size,
		Color:               s.Color,
		IsActive:            s.IsActive,
		IsExcludedFromCount: s.IsExcludedFromCount,
		CreatedBy:           s.CreatedBy,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
		Version:             s.Version,
	}
}

// ToSkuResponses converts a slice of SKUs
func ToSkuResponses(skus []catalog.Sku) []SkuResponse {
	responses := make([]SkuResponse, len(skus))
	for i := range skus {
		responses[i] = ToSkuResponse(&skus[i])
	}
	return responses
}
