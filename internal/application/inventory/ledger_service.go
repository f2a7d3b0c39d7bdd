package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stitchline/backend/internal/domain/catalog"
	"github.com/stitchline/backend/internal/domain/ledger"
	"github.com/stitchline/backend/internal/domain/shared"
)

// Forecast defaults, in days
const (
	DefaultForecastWindowDays  = 90
	DefaultForecastHorizonDays = 30
)

// LedgerService provides application services for the inventory ledger
type LedgerService struct {
	entryRepo   ledger.EntryRepository
	skuRepo     catalog.SkuRepository
	calculator  *ledger.BalanceCalculator
	eventBus    shared.EventPublisher
	invalidator BalanceCacheInvalidator
	logger      *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	entryRepo ledger.EntryRepository,
	skuRepo catalog.SkuRepository,
	eventBus shared.EventPublisher,
	invalidator BalanceCacheInvalidator,
	logger *zap.Logger,
) *LedgerService {
	if invalidator == nil {
		invalidator = NewNoOpBalanceCacheInvalidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		entryRepo:   entryRepo,
		skuRepo:     skuRepo,
		calculator:  ledger.NewBalanceCalculator(entryRepo),
		eventBus:    eventBus,
		invalidator: invalidator,
		logger:      logger,
	}
}

// ===================== Query Methods =====================

// GetEntry retrieves a ledger entry by ID
func (s *LedgerService) GetEntry(ctx context.Context, id uuid.UUID) (*EntryResponse, error) {
	entry, err := s.entryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToEntryResponse(entry)
	return &response, nil
}

// ListEntriesBySku retrieves a paginated list of entries for one SKU, newest first
func (s *LedgerService) ListEntriesBySku(ctx context.Context, skuID uuid.UUID, filter EntryListFilter) ([]EntryResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}

	total, err := s.entryRepo.CountBySku(ctx, skuID)
	if err != nil {
		return nil, 0, err
	}

	entries, err := s.entryRepo.FindBySku(ctx, skuID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToEntryResponses(entries), total, nil
}

// ListEntriesByReference retrieves all entries linked to a source document,
// e.g. every adjustment posted by one reconciliation session
func (s *LedgerService) ListEntriesByReference(ctx context.Context, referenceID string) ([]EntryResponse, error) {
	if referenceID == "" {
		return nil, shared.NewDomainError("BAD_REQUEST", "Reference ID cannot be empty")
	}

	entries, err := s.entryRepo.FindByReference(ctx, referenceID)
	if err != nil {
		return nil, err
	}
	return ToEntryResponses(entries), nil
}

// GetBalances derives the current balance for each requested SKU with a
// single bulk aggregation over the ledger
func (s *LedgerService) GetBalances(ctx context.Context, skuIDs []uuid.UUID) (*BalanceResponse, error) {
	if len(skuIDs) == 0 {
		return nil, shared.NewDomainError("BAD_REQUEST", "At least one SKU ID is required")
	}

	balances, err := s.calculator.Balances(ctx, skuIDs)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{Balances: balances}, nil
}

// GetBalance derives the current balance for a single SKU
func (s *LedgerService) GetBalance(ctx context.Context, skuID uuid.UUID) (int64, error) {
	return s.calculator.Balance(ctx, skuID)
}

// Forecast projects demand for one SKU from its trailing outward movement.
// The daily rate is outward quantity over the window divided by the window
// length; days of cover is omitted when nothing moved out.
func (s *LedgerService) Forecast(ctx context.Context, skuID uuid.UUID, req ForecastRequest) (*ForecastResponse, error) {
	if _, err := s.skuRepo.FindByID(ctx, skuID); err != nil {
		return nil, err
	}

	windowDays := req.WindowDays
	if windowDays <= 0 {
		windowDays = DefaultForecastWindowDays
	}
	horizonDays := req.HorizonDays
	if horizonDays <= 0 {
		horizonDays = DefaultForecastHorizonDays
	}

	since := time.Now().AddDate(0, 0, -windowDays)
	outward, err := s.entryRepo.SumOutwardSince(ctx, skuID, since)
	if err != nil {
		return nil, err
	}

	balance, err := s.calculator.Balance(ctx, skuID)
	if err != nil {
		return nil, err
	}

	rate := decimal.NewFromInt(outward).Div(decimal.NewFromInt(int64(windowDays)))
	projected := rate.Mul(decimal.NewFromInt(int64(horizonDays)))

	response := &ForecastResponse{
		SkuID:           skuID,
		WindowDays:      windowDays,
		HorizonDays:     horizonDays,
		OutwardInWindow: outward,
		DailyRate:       rate,
		ProjectedDemand: projected,
		CurrentBalance:  balance,
	}
	if rate.IsPositive() {
		cover := decimal.NewFromInt(balance).Div(rate).Round(1)
		response.DaysOfCover = &cover
	}
	return response, nil
}

// ===================== Command Methods =====================

// PostEntry appends a new movement to the ledger. Entries are immutable;
// a mistaken entry is corrected with a compensating entry in the opposite
// direction, never by editing history.
func (s *LedgerService) PostEntry(ctx context.Context, actorID uuid.UUID, req PostEntryRequest) (*EntryResponse, error) {
	sku, err := s.skuRepo.FindByID(ctx, req.SkuID)
	if err != nil {
		return nil, err
	}
	if !sku.IsActive {
		return nil, shared.NewDomainError("BAD_REQUEST", "Cannot post entries for an inactive SKU")
	}

	entry, err := ledger.NewEntry(req.SkuID, ledger.Direction(req.Direction), req.Quantity, req.Reason, actorID)
	if err != nil {
		return nil, err
	}
	if req.ReferenceID != nil && *req.ReferenceID != "" {
		entry.WithReference(*req.ReferenceID)
	}
	if req.Notes != nil && *req.Notes != "" {
		entry.WithNotes(*req.Notes)
	}

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.afterCommit(ctx, entry)

	response := ToEntryResponse(entry)
	return &response, nil
}

// afterCommit runs the best-effort side effects of a posted entry. Failures
// are logged and swallowed; the ledger write already committed.
func (s *LedgerService) afterCommit(ctx context.Context, entry *ledger.Entry) {
	if err := s.invalidator.InvalidateBalances(ctx, []uuid.UUID{entry.SkuID}); err != nil {
		s.logger.Warn("balance cache invalidation failed",
			zap.String("sku_id", entry.SkuID.String()),
			zap.Error(err))
	}

	if s.eventBus != nil {
		if err := s.eventBus.Publish(ctx, ledger.NewEntryPostedEvent(entry)); err != nil {
			s.logger.Warn("failed to publish entry posted event",
				zap.String("entry_id", entry.ID.String()),
				zap.Error(err))
		}
	}
}
