package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stitchline/backend/internal/domain/catalog"
	"github.com/stitchline/backend/internal/domain/ledger"
	"github.com/stitchline/backend/internal/domain/reconciliation"
	"github.com/stitchline/backend/internal/domain/shared"
)

// SubmitBudget controls the deadline applied to the submit transaction.
// Large sessions post one adjustment entry per variance, so the deadline
// scales with the number of items instead of using a flat timeout.
type SubmitBudget struct {
	Base    time.Duration
	PerItem time.Duration
}

// DefaultSubmitBudget returns the standard submit deadline parameters
func DefaultSubmitBudget() SubmitBudget {
	return SubmitBudget{
		Base:    5 * time.Second,
		PerItem: 20 * time.Millisecond,
	}
}

// Deadline returns the total budget for a session of the given size
func (b SubmitBudget) Deadline(itemCount int) time.Duration {
	return b.Base + time.Duration(itemCount)*b.PerItem
}

// ReconciliationService drives the physical-count workflow: opening draft
// sessions with snapshotted balances, recording counts, and the one-shot
// submit that posts adjustments back to the ledger.
type ReconciliationService struct {
	sessionRepo  reconciliation.SessionRepository
	skuRepo      catalog.SkuRepository
	calculator   *ledger.BalanceCalculator
	txScope      TransactionScope
	eventBus     shared.EventPublisher
	invalidator  BalanceCacheInvalidator
	submitBudget SubmitBudget
	logger       *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	sessionRepo reconciliation.SessionRepository,
	skuRepo catalog.SkuRepository,
	entryRepo ledger.EntryRepository,
	txScope TransactionScope,
	eventBus shared.EventPublisher,
	invalidator BalanceCacheInvalidator,
	logger *zap.Logger,
) *ReconciliationService {
	if invalidator == nil {
		invalidator = NewNoOpBalanceCacheInvalidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationService{
		sessionRepo:  sessionRepo,
		skuRepo:      skuRepo,
		calculator:   ledger.NewBalanceCalculator(entryRepo),
		txScope:      txScope,
		eventBus:     eventBus,
		invalidator:  invalidator,
		submitBudget: DefaultSubmitBudget(),
		logger:       logger,
	}
}

// WithSubmitBudget overrides the submit deadline parameters
func (s *ReconciliationService) WithSubmitBudget(budget SubmitBudget) *ReconciliationService {
	s.submitBudget = budget
	return s
}

// ===================== Query Methods =====================

// GetSession retrieves a session with its items by ID
func (s *ReconciliationService) GetSession(ctx context.Context, id uuid.UUID) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToSessionResponse(session)
	return &response, nil
}

// ListSessions retrieves a paginated session list without items
func (s *ReconciliationService) ListSessions(ctx context.Context, filter SessionListFilter) ([]SessionListResponse, int64, error) {
	domainFilter := reconciliation.SessionFilter{
		Filter:    shared.DefaultFilter(),
		CreatedBy: filter.CreatedBy,
	}
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
	if filter.Status != nil {
		status := reconciliation.SessionStatus(*filter.Status)
		domainFilter.Status = &status
	}

	total, err := s.sessionRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	sessions, err := s.sessionRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToSessionListResponses(sessions), total, nil
}

// ===================== Command Methods =====================

// OpenSession creates a draft session. Each covered SKU is snapshotted with
// its current ledger balance via one bulk aggregation; the snapshot is never
// refreshed afterwards, so later ledger movement shows up as variance.
func (s *ReconciliationService) OpenSession(ctx context.Context, actorID uuid.UUID, req OpenSessionRequest) (*SessionResponse, error) {
	skus, err := s.resolveSessionSkus(ctx, req.SkuIDs)
	if err != nil {
		return nil, err
	}
	if len(skus) == 0 {
		return nil, shared.NewDomainError("BAD_REQUEST", "No countable SKUs to reconcile")
	}

	skuIDs := make([]uuid.UUID, len(skus))
	for i := range skus {
		skuIDs[i] = skus[i].ID
	}

	balances, err := s.calculator.Balances(ctx, skuIDs)
	if err != nil {
		return nil, err
	}

	session, err := reconciliation.NewSession(actorID)
	if err != nil {
		return nil, err
	}
	if req.Remark != "" {
		session.SetRemark(req.Remark)
	}
	for i := range skus {
		if err := session.AddItem(skus[i].ID, skus[i].Code, balances[skus[i].ID]); err != nil {
			return nil, err
		}
	}

	if err := s.sessionRepo.SaveWithItems(ctx, session); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, session)

	response := ToSessionResponse(session)
	return &response, nil
}

// resolveSessionSkus maps the requested SKU ids to catalog entries, or every
// countable SKU when the request names none
func (s *ReconciliationService) resolveSessionSkus(ctx context.Context, skuIDs []uuid.UUID) ([]catalog.Sku, error) {
	if len(skuIDs) == 0 {
		return s.skuRepo.FindCountable(ctx)
	}

	skus, err := s.skuRepo.FindByIDs(ctx, skuIDs)
	if err != nil {
		return nil, err
	}
	if len(skus) != len(skuIDs) {
		found := make(map[uuid.UUID]bool, len(skus))
		for i := range skus {
			found[skus[i].ID] = true
		}
		for _, id := range skuIDs {
			if !found[id] {
				return nil, shared.NewDomainError("NOT_FOUND", "SKU "+id.String()+" not found")
			}
		}
	}
	for i := range skus {
		if !skus[i].IsCountable() {
			return nil, shared.NewDomainError("BAD_REQUEST", "SKU "+skus[i].Code+" is not countable")
		}
	}
	return skus, nil
}

// RecordCounts records physical counts for one or more session items.
// Recounting an item replaces its previous count.
func (s *ReconciliationService) RecordCounts(ctx context.Context, id uuid.UUID, req RecordCountsRequest) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, count := range req.Counts {
		if err := session.RecordItemCount(count.ItemID, count.PhysicalQuantity, count.AdjustmentReason, count.Notes); err != nil {
			return nil, err
		}
	}

	if err := s.sessionRepo.SaveWithItems(ctx, session); err != nil {
		return nil, err
	}

	response := ToSessionResponse(session)
	return &response, nil
}

// UpdateSession updates session metadata while the session is Draft
func (s *ReconciliationService) UpdateSession(ctx context.Context, id uuid.UUID, req UpdateSessionRequest) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.IsDraft() {
		return nil, shared.NewDomainError("BAD_REQUEST", "Can only update a draft session")
	}

	session.SetRemark(req.Remark)

	if err := s.sessionRepo.SaveWithItems(ctx, session); err != nil {
		return nil, err
	}

	response := ToSessionResponse(session)
	return &response, nil
}

// DeleteSession discards a session that was never submitted
func (s *ReconciliationService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !session.IsDraft() {
		return shared.NewDomainError("BAD_REQUEST", "Submitted sessions are part of the audit trail and cannot be deleted")
	}

	return s.sessionRepo.Delete(ctx, id)
}

// SubmitSession finalizes a draft session: inside one transaction it
// re-reads the session, posts one ledger adjustment per non-zero variance
// (unless the request disables posting), links each adjustment to its item,
// and flips the status with a compare-and-swap so that concurrent
// submitters cannot both win. Cache invalidation and event publication run
// after commit, best-effort.
func (s *ReconciliationService) SubmitSession(ctx context.Context, id uuid.UUID, req SubmitSessionRequest) (*SubmitSessionResponse, error) {
	// The pre-read only sizes the deadline; all decisions are re-made
	// from the transactional read below.
	preview, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The deadline bounds the transaction only. Post-commit side effects
	// derive from the caller's context so a slow submit does not starve them.
	txCtx, cancel := context.WithTimeout(ctx, s.submitBudget.Deadline(preview.TotalItems))
	defer cancel()

	var (
		submitted    *reconciliation.Session
		posted       []*ledger.Entry
		adjustedSkus []uuid.UUID
	)
	err = s.txScope.Execute(txCtx, func(repos TransactionalRepositories) error {
		session, err := repos.SessionRepo().FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if !session.IsDraft() {
			return shared.NewDomainError("BAD_REQUEST", "Session has already been submitted")
		}
		if err := session.ValidateForSubmit(); err != nil {
			return err
		}

		if req.Apply() {
			adjustable := session.AdjustableItems()
			entries := make([]*ledger.Entry, 0, len(adjustable))
			changedItems := make([]*reconciliation.Item, 0, len(adjustable))
			for _, idx := range adjustable {
				item := &session.Items[idx]

				reason := ""
				if item.AdjustmentReason != nil {
					reason = *item.AdjustmentReason
				}
				notes := ""
				if item.Notes != nil {
					notes = *item.Notes
				}

				entry, err := ledger.NewAdjustmentEntry(item.SkuID, *item.Variance, reason, session.ID, notes, session.CreatedBy)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
				item.LinkEntry(entry.ID)
				changedItems = append(changedItems, item)
				adjustedSkus = append(adjustedSkus, item.SkuID)
			}

			if len(entries) > 0 {
				if err := repos.EntryRepo().CreateBatch(txCtx, entries); err != nil {
					return err
				}
				if err := repos.SessionRepo().SaveItems(txCtx, changedItems); err != nil {
					return err
				}
			}
			posted = entries
		}

		if err := session.MarkSubmitted(); err != nil {
			return err
		}
		// Compare-and-swap on status: if another submit won between our
		// read and this update, zero rows match and the whole transaction
		// rolls back with a conflict.
		if err := repos.SessionRepo().MarkSubmitted(txCtx, session.ID); err != nil {
			return err
		}

		submitted = session
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(adjustedSkus) > 0 {
		if err := s.invalidator.InvalidateBalances(ctx, adjustedSkus); err != nil {
			s.logger.Warn("balance cache invalidation failed after submit",
				zap.String("session_id", id.String()),
				zap.Int("sku_count", len(adjustedSkus)),
				zap.Error(err))
		}
	}
	s.publishEvents(ctx, submitted)

	entries := make([]EntryResponse, len(posted))
	for i := range posted {
		entries[i] = ToEntryResponse(posted[i])
	}
	return &SubmitSessionResponse{
		Session:         ToSessionResponse(submitted),
		AdjustmentsMade: len(posted),
		Entries:         entries,
	}, nil
}

// publishEvents publishes domain events from the aggregate
func (s *ReconciliationService) publishEvents(ctx context.Context, session *reconciliation.Session) {
	if s.eventBus == nil || session == nil {
		return
	}

	for _, event := range session.GetDomainEvents() {
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish session event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	session.ClearDomainEvents()
}
