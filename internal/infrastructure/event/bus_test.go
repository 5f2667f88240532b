package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rentora/backend/internal/domain/shared"
)

const (
	testEventReturnCreated      = "return.created"
	testEventReturnTransitioned = "return.transitioned"
)

func newReturnEvent(eventType string) shared.DomainEvent {
	base := shared.NewBaseDomainEvent(eventType, "ReturnTransaction", uuid.New(), uuid.New())
	return &base
}

// recordingHandler collects every event it receives.
type recordingHandler struct {
	mu     sync.Mutex
	types  []string
	seen   []shared.DomainEvent
	err    error
	panics bool
}

func (h *recordingHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.mu.Lock()
	h.seen = append(h.seen, evt)
	h.mu.Unlock()
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

func TestInMemoryEventBus_DeliversToMatchingHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{testEventReturnCreated}}
	bus.Subscribe(handler)

	evt := newReturnEvent(testEventReturnCreated)
	require.NoError(t, bus.Publish(context.Background(), evt))

	require.Equal(t, 1, handler.count())
	assert.Equal(t, evt.EventID(), handler.seen[0].EventID())
}

func TestInMemoryEventBus_SkipsNonMatchingHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{testEventReturnTransitioned}}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newReturnEvent(testEventReturnCreated)))

	assert.Zero(t, handler.count())
}

func TestInMemoryEventBus_WildcardHandlerSeesEverything(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	wildcard := &recordingHandler{}
	bus.Subscribe(wildcard)

	require.NoError(t, bus.Publish(context.Background(),
		newReturnEvent(testEventReturnCreated),
		newReturnEvent(testEventReturnTransitioned),
	))

	assert.Equal(t, 2, wildcard.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{testEventReturnCreated}}
	bus.Subscribe(handler, testEventReturnTransitioned)

	require.NoError(t, bus.Publish(context.Background(), newReturnEvent(testEventReturnCreated)))
	assert.Zero(t, handler.count())

	require.NoError(t, bus.Publish(context.Background(), newReturnEvent(testEventReturnTransitioned)))
	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopDelivery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &recordingHandler{types: []string{testEventReturnCreated}, err: errors.New("ledger write failed")}
	healthy := &recordingHandler{types: []string{testEventReturnCreated}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newReturnEvent(testEventReturnCreated)))

	assert.Equal(t, 1, healthy.count())
	require.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
	entry := logs.FilterMessage("event handler failed").All()[0]
	assert.Equal(t, testEventReturnCreated, entry.ContextMap()["event_type"])
}

func TestInMemoryEventBus_RecoversFromHandlerPanic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	bus.Subscribe(&recordingHandler{types: []string{testEventReturnCreated}, panics: true})
	healthy := &recordingHandler{types: []string{testEventReturnCreated}}
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newReturnEvent(testEventReturnCreated)))

	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{testEventReturnCreated}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newReturnEvent(testEventReturnCreated)))

	assert.Zero(t, handler.count())
}

func TestInMemoryEventBus_PublishAfterStopIsNoop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{testEventReturnCreated}}
	bus.Subscribe(handler)

	require.NoError(t, bus.Stop(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newReturnEvent(testEventReturnCreated)))
	assert.Zero(t, handler.count())

	// Start makes the bus usable again.
	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newReturnEvent(testEventReturnCreated)))
	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_PublishHonorsCancelledContext(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{testEventReturnCreated}}
	bus.Subscribe(handler)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bus.Publish(ctx, newReturnEvent(testEventReturnCreated))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, handler.count())
}
