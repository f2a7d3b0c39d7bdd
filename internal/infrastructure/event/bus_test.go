package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stitchline/backend/internal/domain/shared"
)

// testEvent implements DomainEvent for testing
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), uuid.New()),
		Data:            "test data",
	}
}

// testHandler implements EventHandler for testing
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{
		eventTypes: eventTypes,
		handled:    make([]shared.DomainEvent, 0),
	}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("BalancePosted")
	bus.Subscribe(handler, "BalancePosted")

	event := newTestEvent("BalancePosted")
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_Publish_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	posted := newTestHandler("EntryPosted")
	submitted := newTestHandler("SessionSubmitted")
	bus.Subscribe(posted)
	bus.Subscribe(submitted)

	err := bus.Publish(context.Background(), newTestEvent("EntryPosted"))
	require.NoError(t, err)

	assert.Len(t, posted.getHandled(), 1)
	assert.Empty(t, submitted.getHandled())
}

func TestInMemoryEventBus_Publish_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	wildcard := newTestHandler()
	bus.Subscribe(wildcard)

	err := bus.Publish(context.Background(),
		newTestEvent("EntryPosted"),
		newTestEvent("SessionOpened"),
	)
	require.NoError(t, err)
	assert.Len(t, wildcard.getHandled(), 2)
}

func TestInMemoryEventBus_Publish_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newTestHandler("EntryPosted")
	failing.err = errors.New("handler failed")
	healthy := newTestHandler("EntryPosted")
	bus.Subscribe(failing, "EntryPosted")
	bus.Subscribe(healthy, "EntryPosted")

	err := bus.Publish(context.Background(), newTestEvent("EntryPosted"))

	require.NoError(t, err)
	assert.Len(t, failing.getHandled(), 1)
	assert.Len(t, healthy.getHandled(), 1)
}

// panicHandler panics on every event
type panicHandler struct{}

func (h *panicHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	panic("handler exploded")
}

func (h *panicHandler) EventTypes() []string {
	return []string{"EntryPosted"}
}

func TestInMemoryEventBus_Publish_RecoversFromPanic(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	bus.Subscribe(&panicHandler{})
	healthy := newTestHandler("EntryPosted")
	bus.Subscribe(healthy, "EntryPosted")

	err := bus.Publish(context.Background(), newTestEvent("EntryPosted"))

	require.NoError(t, err)
	assert.Len(t, healthy.getHandled(), 1)
}

// slowHandler blocks until its context expires
type slowHandler struct {
	sawDeadline bool
	mu          sync.Mutex
}

func (h *slowHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	select {
	case <-ctx.Done():
		h.mu.Lock()
		h.sawDeadline = true
		h.mu.Unlock()
		return ctx.Err()
	case <-time.After(5 * time.Second):
		return nil
	}
}

func (h *slowHandler) EventTypes() []string {
	return []string{"EntryPosted"}
}

func TestInMemoryEventBus_HandlerTimeout(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithHandlerTimeout(10*time.Millisecond))

	slow := &slowHandler{}
	bus.Subscribe(slow)

	err := bus.Publish(context.Background(), newTestEvent("EntryPosted"))

	require.NoError(t, err)
	slow.mu.Lock()
	defer slow.mu.Unlock()
	assert.True(t, slow.sawDeadline)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("EntryPosted")
	bus.Subscribe(handler, "EntryPosted")
	bus.Unsubscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("EntryPosted"))

	require.NoError(t, err)
	assert.Empty(t, handler.getHandled())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Stop(ctx))
}
