package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/stitchline/backend/internal/application/inventory"
)

// LedgerHandler handles inventory ledger API endpoints
type LedgerHandler struct {
	BaseHandler
	ledgerService *inventoryapp.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *inventoryapp.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

// RegisterRoutes registers all ledger routes
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ledger := rg.Group("/ledger")
	{
		ledger.POST("/entries", h.PostEntry)
		ledger.GET("/entries/:id", h.GetEntry)
		ledger.GET("/entries/by-reference/:reference_id", h.ListByReference)
		ledger.GET("/skus/:sku_id/entries", h.ListBySku)
		ledger.GET("/skus/:sku_id/balance", h.GetBalance)
		ledger.GET("/skus/:sku_id/forecast", h.Forecast)
		ledger.POST("/balances", h.GetBalances)
	}
}

// ===================== Query Handlers =====================

// GetEntry retrieves a single ledger entry by its ID
func (h *LedgerHandler) GetEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	result, err := h.ledgerService.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ListBySku retrieves the paginated ledger history of one SKU
func (h *LedgerHandler) ListBySku(c *gin.Context) {
	skuID, err := uuid.Parse(c.Param("sku_id"))
	if err != nil {
		h.BadRequest(c, "Invalid SKU ID format")
		return
	}

	var filter inventoryapp.EntryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	results, total, err := h.ledgerService.ListEntriesBySku(c.Request.Context(), skuID, filter)
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

// ListByReference retrieves all entries linked to an external reference,
// such as a reconciliation session id or purchase order number
func (h *LedgerHandler) ListByReference(c *gin.Context) {
	referenceID := c.Param("reference_id")
	if referenceID == "" {
		h.BadRequest(c, "Reference ID is required")
		return
	}

	results, err := h.ledgerService.ListEntriesByReference(c.Request.Context(), referenceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, results)
}

// GetBalance derives the current on-hand balance of one SKU
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	skuID, err := uuid.Parse(c.Param("sku_id"))
	if err != nil {
		h.BadRequest(c, "Invalid SKU ID format")
		return
	}

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), skuID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"sku_id": skuID, "balance": balance})
}

// GetBalances derives current balances for a set of SKUs in bulk.
// POST is used because the SKU id set can exceed query string limits.
func (h *LedgerHandler) GetBalances(c *gin.Context) {
	var req inventoryapp.BalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.GetBalances(c.Request.Context(), req.SkuIDs)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Forecast projects demand for one SKU from its recent outward volume
func (h *LedgerHandler) Forecast(c *gin.Context) {
	skuID, err := uuid.Parse(c.Param("sku_id"))
	if err != nil {
		h.BadRequest(c, "Invalid SKU ID format")
		return
	}

	var req inventoryapp.ForecastRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.Forecast(c.Request.Context(), skuID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ===================== Command Handlers =====================

// PostEntry appends a new movement to the ledger
func (h *LedgerHandler) PostEntry(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	var req inventoryapp.PostEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.PostEntry(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}
