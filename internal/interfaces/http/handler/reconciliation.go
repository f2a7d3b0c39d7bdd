package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/stitchline/backend/internal/application/inventory"
)

// ReconciliationHandler handles physical count reconciliation API endpoints
type ReconciliationHandler struct {
	BaseHandler
	reconciliationService *inventoryapp.ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(reconciliationService *inventoryapp.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciliationService: reconciliationService,
	}
}

// RegisterRoutes registers all reconciliation session routes
func (h *ReconciliationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/reconciliation/sessions")
	{
		sessions.GET("", h.List)
		sessions.GET("/:id", h.GetByID)
		sessions.POST("", h.Open)
		sessions.PUT("/:id", h.Update)
		sessions.DELETE("/:id", h.Delete)
		sessions.POST("/:id/counts", h.RecordCounts)
		sessions.POST("/:id/submit", h.Submit)
	}
}

// ===================== Query Handlers =====================

// GetByID retrieves a reconciliation session with all its items
func (h *ReconciliationHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	result, err := h.reconciliationService.GetSession(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// List retrieves a paginated list of reconciliation sessions
func (h *ReconciliationHandler) List(c *gin.Context) {
	var filter inventoryapp.SessionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Parse optional creator ID
	if creatorIDStr := c.Query("created_by"); creatorIDStr != "" {
		creatorID, err := uuid.Parse(creatorIDStr)
		if err != nil {
			h.BadRequest(c, "Invalid created_by format")
			return
		}
		filter.CreatedBy = &creatorID
	}

	results, total, err := h.reconciliationService.ListSessions(c.Request.Context(), filter)
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

// ===================== Command Handlers =====================

// Open opens a new draft session with system quantities snapshotted
// at open time. An empty SKU list covers every countable SKU.
func (h *ReconciliationHandler) Open(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	var req inventoryapp.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.reconciliationService.OpenSession(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// RecordCounts records physical counts for a batch of session items
func (h *ReconciliationHandler) RecordCounts(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	var req inventoryapp.RecordCountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.reconciliationService.RecordCounts(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Update updates mutable session metadata while the session is a draft
func (h *ReconciliationHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	var req inventoryapp.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.reconciliationService.UpdateSession(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete discards a draft session. Submitted sessions cannot be deleted.
func (h *ReconciliationHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	if err := h.reconciliationService.DeleteSession(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Submit finalizes the session: adjustment entries are committed for
// every variance item and the session flips to SUBMITTED exactly once.
// The body is optional; {"apply_adjustments": false} records the count
// round without touching the ledger.
func (h *ReconciliationHandler) Submit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	var req inventoryapp.SubmitSessionRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	result, err := h.reconciliationService.SubmitSession(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
