package inventory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stitchline/backend/internal/domain/catalog"
	"github.com/stitchline/backend/internal/domain/ledger"
	"github.com/stitchline/backend/internal/domain/reconciliation"
	"github.com/stitchline/backend/internal/domain/shared"
)

// MockEventPublisher records published domain events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// recordingInvalidator captures invalidation calls and optionally fails
type recordingInvalidator struct {
	mu      sync.Mutex
	calls   [][]uuid.UUID
	ctxErrs []error
	err     error
}

func (r *recordingInvalidator) InvalidateBalances(ctx context.Context, skuIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uuid.UUID, len(skuIDs))
	copy(ids, skuIDs)
	r.calls = append(r.calls, ids)
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	return r.err
}

func (r *recordingInvalidator) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recordingInvalidator) lastCtxErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ctxErrs) == 0 {
		return nil
	}
	return r.ctxErrs[len(r.ctxErrs)-1]
}

// memEntryRepo is an in-memory append-only ledger store
type memEntryRepo struct {
	mu      sync.Mutex
	entries []ledger.Entry
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{entries: make([]ledger.Entry, 0)}
}

func (r *memEntryRepo) Create(_ context.Context, entry *ledger.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memEntryRepo) CreateBatch(_ context.Context, entries []*ledger.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		r.entries = append(r.entries, *e)
	}
	return nil
}

func (r *memEntryRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].ID == id {
			e := r.entries[i]
			return &e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memEntryRepo) FindBySku(_ context.Context, skuID uuid.UUID, _ shared.Filter) ([]ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]ledger.Entry, 0)
	for i := range r.entries {
		if r.entries[i].SkuID == skuID {
			result = append(result, r.entries[i])
		}
	}
	return result, nil
}

func (r *memEntryRepo) CountBySku(_ context.Context, skuID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.entries {
		if r.entries[i].SkuID == skuID {
			n++
		}
	}
	return n, nil
}

func (r *memEntryRepo) FindByReference(_ context.Context, referenceID string) ([]ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]ledger.Entry, 0)
	for i := range r.entries {
		if r.entries[i].ReferenceID != nil && *r.entries[i].ReferenceID == referenceID {
			result = append(result, r.entries[i])
		}
	}
	return result, nil
}

func (r *memEntryRepo) SumByDirection(_ context.Context, skuIDs []uuid.UUID) (map[uuid.UUID]ledger.DirectionTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[uuid.UUID]bool, len(skuIDs))
	for _, id := range skuIDs {
		wanted[id] = true
	}
	totals := make(map[uuid.UUID]ledger.DirectionTotals)
	for i := range r.entries {
		e := &r.entries[i]
		if !wanted[e.SkuID] {
			continue
		}
		t := totals[e.SkuID]
		if e.Direction == ledger.DirectionInward {
			t.Inward += e.Quantity
		} else {
			t.Outward += e.Quantity
		}
		totals[e.SkuID] = t
	}
	return totals, nil
}

func (r *memEntryRepo) SumOutwardSince(_ context.Context, skuID uuid.UUID, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for i := range r.entries {
		e := &r.entries[i]
		if e.SkuID == skuID && e.Direction == ledger.DirectionOutward && !e.CreatedAt.Before(since) {
			sum += e.Quantity
		}
	}
	return sum, nil
}

var _ ledger.EntryRepository = (*memEntryRepo)(nil)

// memSkuRepo is an in-memory SKU catalog
type memSkuRepo struct {
	mu   sync.Mutex
	skus map[uuid.UUID]catalog.Sku
}

func newMemSkuRepo() *memSkuRepo {
	return &memSkuRepo{skus: make(map[uuid.UUID]catalog.Sku)}
}

func (r *memSkuRepo) put(sku *catalog.Sku) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skus[sku.ID] = *sku
}

func (r *memSkuRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Sku, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sku, ok := r.skus[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &sku, nil
}

func (r *memSkuRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Sku, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]catalog.Sku, 0, len(ids))
	for _, id := range ids {
		if sku, ok := r.skus[id]; ok {
			result = append(result, sku)
		}
	}
	return result, nil
}

func (r *memSkuRepo) FindCountable(_ context.Context) ([]catalog.Sku, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]catalog.Sku, 0)
	for _, sku := range r.skus {
		if sku.IsCountable() {
			result = append(result, sku)
		}
	}
	return result, nil
}

func (r *memSkuRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Sku, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]catalog.Sku, 0, len(r.skus))
	for _, sku := range r.skus {
		result = append(result, sku)
	}
	return result, nil
}

func (r *memSkuRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.skus)), nil
}

func (r *memSkuRepo) Save(_ context.Context, sku *catalog.Sku) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skus[sku.ID] = *sku
	return nil
}

func (r *memSkuRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.skus, id)
	return nil
}

func (r *memSkuRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sku := range r.skus {
		if strings.EqualFold(sku.Code, code) {
			return true, nil
		}
	}
	return false, nil
}

var _ catalog.SkuRepository = (*memSkuRepo)(nil)

// memSessionRepo is an in-memory session store. FindByID hands out copies
// so service-side mutations only land via an explicit save, mirroring how
// the real repository behaves.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]reconciliation.Session
	// markErr, when set, forces MarkSubmitted to fail
	markErr error
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[uuid.UUID]reconciliation.Session)}
}

func cloneSession(s reconciliation.Session) reconciliation.Session {
	items := make([]reconciliation.Item, len(s.Items))
	copy(items, s.Items)
	s.Items = items
	return s
}

func (r *memSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*reconciliation.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	c := cloneSession(s)
	return &c, nil
}

func (r *memSessionRepo) FindAll(_ context.Context, filter reconciliation.SessionFilter) ([]reconciliation.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]reconciliation.Session, 0)
	for _, s := range r.sessions {
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		if filter.CreatedBy != nil && s.CreatedBy != *filter.CreatedBy {
			continue
		}
		c := cloneSession(s)
		c.Items = nil
		result = append(result, c)
	}
	return result, nil
}

func (r *memSessionRepo) Count(_ context.Context, filter reconciliation.SessionFilter) (int64, error) {
	sessions, _ := r.FindAll(context.Background(), filter)
	return int64(len(sessions)), nil
}

func (r *memSessionRepo) SaveWithItems(_ context.Context, session *reconciliation.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[session.ID]; ok && existing.Status != reconciliation.SessionStatusDraft {
		return shared.ErrConcurrencyConflict
	}
	r.sessions[session.ID] = cloneSession(*session)
	return nil
}

func (r *memSessionRepo) SaveItems(_ context.Context, items []*reconciliation.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		s, ok := r.sessions[item.SessionID]
		if !ok {
			return shared.ErrNotFound
		}
		for i := range s.Items {
			if s.Items[i].ID == item.ID {
				s.Items[i] = *item
			}
		}
		r.sessions[item.SessionID] = s
	}
	return nil
}

func (r *memSessionRepo) MarkSubmitted(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return r.markErr
	}
	s, ok := r.sessions[id]
	if !ok {
		return shared.ErrNotFound
	}
	if s.Status != reconciliation.SessionStatusDraft {
		return shared.ErrConcurrencyConflict
	}
	now := time.Now()
	s.Status = reconciliation.SessionStatusSubmitted
	s.SubmittedAt = &now
	s.Version++
	r.sessions[id] = s
	return nil
}

func (r *memSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return shared.ErrNotFound
	}
	if s.Status != reconciliation.SessionStatusDraft {
		return shared.ErrBadRequest
	}
	delete(r.sessions, id)
	return nil
}

var _ reconciliation.SessionRepository = (*memSessionRepo)(nil)
