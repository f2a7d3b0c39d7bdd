package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/stitchline/backend/internal/application/catalog"
)

// SkuHandler handles SKU catalog API endpoints
type SkuHandler struct {
	BaseHandler
	skuService *catalogapp.SkuService
}

// NewSkuHandler creates a new SkuHandler
func NewSkuHandler(skuService *catalogapp.SkuService) *SkuHandler {
	return &SkuHandler{
		skuService: skuService,
	}
}

// RegisterRoutes registers all SKU catalog routes
func (h *SkuHandler) RegisterRoutes(rg *gin.RouterGroup) {
	skus := rg.Group("/catalog/skus")
	{
		skus.GET("", h.List)
		skus.GET("/countable", h.ListCountable)
		skus.GET("/:id", h.GetByID)
		skus.POST("", h.Create)
		skus.PUT("/:id", h.Update)
		skus.POST("/:id/activate", h.Activate)
		skus.POST("/:id/deactivate", h.Deactivate)
		skus.POST("/:id/exclude-from-count", h.ExcludeFromCount)
		skus.POST("/:id/include-in-count", h.IncludeInCount)
	}
}

// ===================== Query Handlers =====================

// GetByID retrieves a SKU by its ID
func (h *SkuHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid SKU ID format")
		return
	}

	result, err := h.skuService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// List retrieves a paginated list of SKUs with optional search
func (h *SkuHandler) List(c *gin.Context) {
	var filter catalogapp.SkuListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	results, total, err := h.skuService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	page := filter.Page
	if page == 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize == 0 {
		pageSize = 20
	}

	h.SuccessWithMeta(c, results, total, page, pageSize)
}

// ListCountable retrieves every SKU eligible for reconciliation counts
func (h *SkuHandler) ListCountable(c *gin.Context) {
	results, err := h.skuService.ListCountable(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, results)
}

// ===================== Command Handlers =====================

// Create registers a new SKU in the catalog
func (h *SkuHandler) Create(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	var req catalogapp.CreateSkuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.skuService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// Update updates the descriptive fields of a SKU
func (h *SkuHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid SKU ID format")
		return
	}

	var req catalogapp.UpdateSkuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.skuService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Activate reactivates a retired SKU
func (h *SkuHandler) Activate(c *gin.Context) {
	h.mutate(c, h.skuService.Activate)
}

// Deactivate retires a SKU from active use
func (h *SkuHandler) Deactivate(c *gin.Context) {
	h.mutate(c, h.skuService.Deactivate)
}

// ExcludeFromCount removes a SKU from reconciliation coverage
func (h *SkuHandler) ExcludeFromCount(c *gin.Context) {
	h.mutate(c, h.skuService.ExcludeFromCount)
}

// IncludeInCount restores a SKU to reconciliation coverage
func (h *SkuHandler) IncludeInCount(c *gin.Context) {
	h.mutate(c, h.skuService.IncludeInCount)
}

// mutate runs a single-field state change keyed by the id path param
func (h *SkuHandler) mutate(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*catalogapp.SkuResponse, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid SKU ID format")
		return
	}

	result, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
