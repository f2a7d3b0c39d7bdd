package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	catalogapp "github.com/stitchline/backend/internal/application/catalog"
	inventoryapp "github.com/stitchline/backend/internal/application/inventory"
	"github.com/stitchline/backend/internal/domain/catalog"
	"github.com/stitchline/backend/internal/domain/ledger"
	"github.com/stitchline/backend/internal/domain/reconciliation"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stitchline/backend/internal/interfaces/http/dto"
	"github.com/stitchline/backend/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// In-memory repositories backing the handler tests. Handlers run against
// real application services so the full request path is exercised.

type stubEntryRepo struct {
	entries []ledger.Entry
}

func (r *stubEntryRepo) Create(_ context.Context, entry *ledger.Entry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubEntryRepo) CreateBatch(_ context.Context, entries []*ledger.Entry) error {
	for _, e := range entries {
		r.entries = append(r.entries, *e)
	}
	return nil
}

func (r *stubEntryRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Entry, error) {
	for i := range r.entries {
		if r.entries[i].ID == id {
			e := r.entries[i]
			return &e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubEntryRepo) FindBySku(_ context.Context, skuID uuid.UUID, _ shared.Filter) ([]ledger.Entry, error) {
	result := make([]ledger.Entry, 0)
	for i := range r.entries {
		if r.entries[i].SkuID == skuID {
			result = append(result, r.entries[i])
		}
	}
	return result, nil
}

func (r *stubEntryRepo) CountBySku(_ context.Context, skuID uuid.UUID) (int64, error) {
	var n int64
	for i := range r.entries {
		if r.entries[i].SkuID == skuID {
			n++
		}
	}
	return n, nil
}

func (r *stubEntryRepo) FindByReference(_ context.Context, referenceID string) ([]ledger.Entry, error) {
	result := make([]ledger.Entry, 0)
	for i := range r.entries {
		if r.entries[i].ReferenceID != nil && *r.entries[i].ReferenceID == referenceID {
			result = append(result, r.entries[i])
		}
	}
	return result, nil
}

func (r *stubEntryRepo) SumByDirection(_ context.Context, skuIDs []uuid.UUID) (map[uuid.UUID]ledger.DirectionTotals, error) {
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

func (r *stubEntryRepo) SumOutwardSince(_ context.Context, skuID uuid.UUID, since time.Time) (int64, error) {
	var sum int64
	for i := range r.entries {
		e := &r.entries[i]
		if e.SkuID == skuID && e.Direction == ledger.DirectionOutward && !e.CreatedAt.Before(since) {
			sum += e.Quantity
		}
	}
	return sum, nil
}

var _ ledger.EntryRepository = (*stubEntryRepo)(nil)

type stubSkuRepo struct {
	skus map[uuid.UUID]catalog.Sku
}

func newStubSkuRepo() *stubSkuRepo {
	return &stubSkuRepo{skus: make(map[uuid.UUID]catalog.Sku)}
}

func (r *stubSkuRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Sku, error) {
	sku, ok := r.skus[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &sku, nil
}

func (r *stubSkuRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Sku, error) {
	result := make([]catalog.Sku, 0, len(ids))
	for _, id := range ids {
		if sku, ok := r.skus[id]; ok {
			result = append(result, sku)
		}
	}
	return result, nil
}

func (r *stubSkuRepo) FindCountable(_ context.Context) ([]catalog.Sku, error) {
	result := make([]catalog.Sku, 0)
	for _, sku := range r.skus {
		if sku.IsCountable() {
			result = append(result, sku)
		}
	}
	return result, nil
}

func (r *stubSkuRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Sku, error) {
	result := make([]catalog.Sku, 0, len(r.skus))
	for _, sku := range r.skus {
		result = append(result, sku)
	}
	return result, nil
}

func (r *stubSkuRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.skus)), nil
}

func (r *stubSkuRepo) Save(_ context.Context, sku *catalog.Sku) error {
	r.skus[sku.ID] = *sku
	return nil
}

func (r *stubSkuRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.skus, id)
	return nil
}

func (r *stubSkuRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	for _, sku := range r.skus {
		if strings.EqualFold(sku.Code, code) {
			return true, nil
		}
	}
	return false, nil
}

var _ catalog.SkuRepository = (*stubSkuRepo)(nil)

type stubSessionRepo struct {
	sessions map[uuid.UUID]reconciliation.Session
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[uuid.UUID]reconciliation.Session)}
}

func copySession(s reconciliation.Session) reconciliation.Session {
	items := make([]reconciliation.Item, len(s.Items))
	copy(items, s.Items)
	s.Items = items
	return s
}

func (r *stubSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*reconciliation.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	c := copySession(s)
	return &c, nil
}

func (r *stubSessionRepo) FindAll(_ context.Context, filter reconciliation.SessionFilter) ([]reconciliation.Session, error) {
	result := make([]reconciliation.Session, 0)
	for _, s := range r.sessions {
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		if filter.CreatedBy != nil && s.CreatedBy != *filter.CreatedBy {
			continue
		}
		c := copySession(s)
		c.Items = nil
		result = append(result, c)
	}
	return result, nil
}

func (r *stubSessionRepo) Count(ctx context.Context, filter reconciliation.SessionFilter) (int64, error) {
	sessions, _ := r.FindAll(ctx, filter)
	return int64(len(sessions)), nil
}

func (r *stubSessionRepo) SaveWithItems(_ context.Context, session *reconciliation.Session) error {
	if existing, ok := r.sessions[session.ID]; ok && existing.Status != reconciliation.SessionStatusDraft {
		return shared.ErrConcurrencyConflict
	}
	r.sessions[session.ID] = copySession(*session)
	return nil
}

func (r *stubSessionRepo) SaveItems(_ context.Context, items []*reconciliation.Item) error {
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

func (r *stubSessionRepo) MarkSubmitted(_ context.Context, id uuid.UUID) error {
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

func (r *stubSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
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

var _ reconciliation.SessionRepository = (*stubSessionRepo)(nil)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ...shared.DomainEvent) error { return nil }

// testEnv wires the full HTTP stack over in-memory repositories
type testEnv struct {
	engine      *gin.Engine
	skuRepo     *stubSkuRepo
	entryRepo   *stubEntryRepo
	sessionRepo *stubSessionRepo
	actorID     uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	skuRepo := newStubSkuRepo()
	entryRepo := &stubEntryRepo{}
	sessionRepo := newStubSessionRepo()
	txScope := inventoryapp.NewNoOpTransactionScope(sessionRepo, entryRepo, skuRepo)

	ledgerService := inventoryapp.NewLedgerService(entryRepo, skuRepo, nopPublisher{}, nil, zap.NewNop())
	reconciliationService := inventoryapp.NewReconciliationService(
		sessionRepo, skuRepo, entryRepo, txScope, nopPublisher{}, nil, zap.NewNop())
	skuService := catalogapp.NewSkuService(skuRepo)

	engine := gin.New()
	r := router.NewRouter(engine)
	r.Register(NewLedgerHandler(ledgerService))
	r.Register(NewReconciliationHandler(reconciliationService))
	r.Register(NewSkuHandler(skuService))
	r.Setup()

	return &testEnv{
		engine:      engine,
		skuRepo:     skuRepo,
		entryRepo:   entryRepo,
		sessionRepo: sessionRepo,
		actorID:     uuid.New(),
	}
}

// seedSku registers a SKU directly in the repository
func (e *testEnv) seedSku(t *testing.T, code string) *catalog.Sku {
	t.Helper()
	sku, err := catalog.NewSku(code, "Product "+code, "M", "black", e.actorID)
	require.NoError(t, err)
	require.NoError(t, e.skuRepo.Save(context.Background(), sku))
	return sku
}

// seedEntry appends a ledger entry directly to the repository
func (e *testEnv) seedEntry(t *testing.T, skuID uuid.UUID, direction ledger.Direction, qty int64) *ledger.Entry {
	t.Helper()
	entry, err := ledger.NewEntry(skuID, direction, qty, "goods_receipt", e.actorID)
	require.NoError(t, err)
	require.NoError(t, e.entryRepo.Create(context.Background(), entry))
	return entry
}

// do performs an HTTP request against the wired engine. A non-nil body is
// JSON-encoded and the actor header is always set.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ActorIDHeader, e.actorID.String())
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// doWithoutActor performs a request with no actor header set
func doWithoutActor(t *testing.T, env *testEnv, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

// decodeResponse parses the standard response envelope, returning the raw
// data payload for further decoding
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) (dto.Response, json.RawMessage) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *dto.ErrorInfo  `json:"error"`
		Meta    *dto.Meta       `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))

	return dto.Response{
		Success: envelope.Success,
		Error:   envelope.Error,
		Meta:    envelope.Meta,
	}, envelope.Data
}

// decodeData decodes the data payload into the given target
func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	_, raw := decodeResponse(t, w)
	var target T
	require.NoError(t, json.Unmarshal(raw, &target))
	return target
}
