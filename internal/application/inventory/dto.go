package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stitchline/backend/internal/domain/ledger"
	"github.com/stitchline/backend/internal/domain/reconciliation"
)

// ===================== Request DTOs =====================

// PostEntryRequest represents a request to append a ledger entry
type PostEntryRequest struct {
	SkuID       uuid.UUID `json:"sku_id" binding:"required"`
	Direction   string    `json:"direction" binding:"required,oneof=INWARD OUTWARD"`
	Quantity    int64     `json:"quantity" binding:"required,gt=0"`
	Reason      string    `json:"reason" binding:"required,min=1,max=100"`
	ReferenceID *string   `json:"reference_id"`
	Notes       *string   `json:"notes"`
}

// EntryListFilter represents filter options for ledger entry lists
type EntryListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BalanceRequest represents a bulk balance query
type BalanceRequest struct {
	SkuIDs []uuid.UUID `json:"sku_ids" binding:"required,min=1"`
}

// ForecastRequest represents a demand forecast query for one SKU
type ForecastRequest struct {
	WindowDays  int `form:"window_days" binding:"omitempty,min=1,max=365"`
	HorizonDays int `form:"horizon_days" binding:"omitempty,min=1,max=365"`
}

// OpenSessionRequest represents a request to open a reconciliation session.
// When SkuIDs is empty the session covers every countable SKU.
type OpenSessionRequest struct {
	SkuIDs []uuid.UUID `json:"sku_ids"`
	Remark string      `json:"remark" binding:"max=500"`
}

// RecordCountRequest represents the physical count for one session item
type RecordCountRequest struct {
	ItemID           uuid.UUID `json:"item_id" binding:"required"`
	PhysicalQuantity int64     `json:"physical_quantity" binding:"min=0"`
	AdjustmentReason *string   `json:"adjustment_reason"`
	Notes            *string   `json:"notes"`
}

// RecordCountsRequest represents a bulk request to record counts
type RecordCountsRequest struct {
	Counts []RecordCountRequest `json:"counts" binding:"required,min=1,dive"`
}

// UpdateSessionRequest represents a request to update session metadata
type UpdateSessionRequest struct {
	Remark string `json:"remark" binding:"max=500"`
}

// SubmitSessionRequest controls how a session is finalized. When
// ApplyAdjustments is nil or true, one adjustment entry is posted per
// non-zero variance; when false the session still flips to SUBMITTED but
// the ledger is left untouched (informational count rounds).
type SubmitSessionRequest struct {
	ApplyAdjustments *bool `json:"apply_adjustments"`
}

// Apply reports whether adjustments should be posted
func (r SubmitSessionRequest) Apply() bool {
	return r.ApplyAdjustments == nil || *r.ApplyAdjustments
}

// SessionListFilter represents filter options for session lists
type SessionListFilter struct {
	Status    *string    `form:"status" binding:"omitempty,oneof=DRAFT SUBMITTED"`
	CreatedBy *uuid.UUID `form:"created_by"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ===================== Response DTOs =====================

// EntryResponse represents a ledger entry in API responses
type EntryResponse struct {
	ID          uuid.UUID `json:"id"`
	SkuID       uuid.UUID `json:"sku_id"`
	Direction   string    `json:"direction"`
	Quantity    int64     `json:"quantity"`
	Reason      string    `json:"reason"`
	ReferenceID *string   `json:"reference_id,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// BalanceResponse represents derived balances keyed by SKU id
type BalanceResponse struct {
	Balances map[uuid.UUID]int64 `json:"balances"`
}

// ForecastResponse represents a demand projection for one SKU
type ForecastResponse struct {
	SkuID           uuid.UUID       `json:"sku_id"`
	WindowDays      int             `json:"window_days"`
	HorizonDays     int             `json:"horizon_days"`
	OutwardInWindow int64           `json:"outward_in_window"`
	DailyRate       decimal.Decimal `json:"daily_rate"`
	ProjectedDemand decimal.Decimal `json:"projected_demand"`
	CurrentBalance  int64           `json:"current_balance"`
	DaysOfCover     *decimal.Decimal `json:"days_of_cover,omitempty"`
}

// SessionItemResponse represents a session item in API responses
type SessionItemResponse struct {
	ID               uuid.UUID  `json:"id"`
	SessionID        uuid.UUID  `json:"session_id"`
	SkuID            uuid.UUID  `json:"sku_id"`
	SkuCode          string     `json:"sku_code"`
	SystemQuantity   int64      `json:"system_quantity"`
	PhysicalQuantity *int64     `json:"physical_quantity,omitempty"`
	Variance         *int64     `json:"variance,omitempty"`
	AdjustmentReason *string    `json:"adjustment_reason,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
	LinkedEntryID    *uuid.UUID `json:"linked_entry_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// SessionResponse represents a full session in API responses
type SessionResponse struct {
	ID            uuid.UUID             `json:"id"`
	Status        string                `json:"status"`
	Remark        string                `json:"remark,omitempty"`
	TotalItems    int                   `json:"total_items"`
	CountedItems  int                   `json:"counted_items"`
	VarianceItems int                   `json:"variance_items"`
	Items         []SessionItemResponse `json:"items"`
	CreatedBy     uuid.UUID             `json:"created_by"`
	SubmittedAt   *time.Time            `json:"submitted_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	Version       int                   `json:"version"`
}

// SubmitSessionResponse represents the outcome of a submit
type SubmitSessionResponse struct {
	Session         SessionResponse `json:"session"`
	AdjustmentsMade int             `json:"adjustments_made"`
	Entries         []EntryResponse `json:"entries"`
}

// SessionListResponse represents a session in list views, without items
type SessionListResponse struct {
	ID            uuid.UUID  `json:"id"`
	Status        string     `json:"status"`
	Remark        string     `json:"remark,omitempty"`
	TotalItems    int        `json:"total_items"`
	CountedItems  int        `json:"counted_items"`
	VarianceItems int        `json:"variance_items"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ===================== Mappers =====================

// ToEntryResponse converts a ledger entry to its response DTO
func ToEntryResponse(e *ledger.Entry) EntryResponse {
	return EntryResponse{
		ID:          e.ID,
		SkuID:       e.SkuID,
		Direction:   e.Direction.String(),
		Quantity:    e.Quantity,
		Reason:      e.Reason,
		ReferenceID: e.ReferenceID,
		Notes:       e.Notes,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

// ToEntryResponses converts a slice of ledger entries
func ToEntryResponses(entries []ledger.Entry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToEntryResponse(&entries[i])
	}
	return responses
}

// ToSessionItemResponse converts a session item to its response DTO
func ToSessionItemResponse(i *reconciliation.Item) SessionItemResponse {
	return SessionItemResponse{
		ID:               i.ID,
		SessionID:        i.SessionID,
		SkuID:            i.SkuID,
		SkuCode:          i.SkuCode,
		SystemQuantity:   i.SystemQuantity,
		PhysicalQuantity: i.PhysicalQuantity,
		Variance:         i.Variance,
		AdjustmentReason: i.AdjustmentReason,
		Notes:            i.Notes,
		LinkedEntryID:    i.LinkedEntryID,
		CreatedAt:        i.CreatedAt,
		UpdatedAt:        i.UpdatedAt,
	}
}

// ToSessionResponse converts a session to its response DTO
func ToSessionResponse(s *reconciliation.Session) SessionResponse {
	items := make([]SessionItemResponse, len(s.Items))
	for i := range s.Items {
		items[i] = ToSessionItemResponse(&s.Items[i])
	}
	return SessionResponse{
		ID:            s.ID,
		Status:        s.Status.String(),
		Remark:        s.Remark,
		TotalItems:    s.TotalItems,
		CountedItems:  s.CountedItems,
		VarianceItems: s.VarianceItems,
		Items:         items,
		CreatedBy:     s.CreatedBy,
		SubmittedAt:   s.SubmittedAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		Version:       s.Version,
	}
}

// ToSessionListResponses converts sessions to list DTOs
func ToSessionListResponses(sessions []reconciliation.Session) []SessionListResponse {
	responses := make([]SessionListResponse, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		responses[i] = SessionListResponse{
			ID:            s.ID,
			Status:        s.Status.String(),
			Remark:        s.Remark,
			TotalItems:    s.TotalItems,
			CountedItems:  s.CountedItems,
			VarianceItems: s.VarianceItems,
			CreatedBy:     s.CreatedBy,
			SubmittedAt:   s.SubmittedAt,
			CreatedAt:     s.CreatedAt,
		}
	}
	return responses
}
