package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/rentora/backend/internal/domain/shared"
)

// InMemoryEventBus is a process-local shared.EventBus. Handlers run
// synchronously on the publishing goroutine; a handler error or panic
// is logged and never blocks delivery to the remaining handlers.
type InMemoryEventBus struct {
	table    *subscriberTable
	log      *zap.Logger
	inFlight sync.WaitGroup
	stopped  atomic.Bool
}

// NewInMemoryEventBus creates a bus that is immediately usable;
// Start exists to satisfy the lifecycle contract shared with
// bus implementations that do run background workers.
func NewInMemoryEventBus(log *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		table: newSubscriberTable(),
		log:   log,
	}
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)

// Publish delivers the events, in order, to every matching handler.
// Handler failures are logged rather than returned so one broken
// subscriber cannot abort the rest. Publishing after Stop is a no-op.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.stopped.Load() {
		return nil
	}
	b.inFlight.Add(1)
	defer b.inFlight.Done()

	for _, evt := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, handler := range b.table.handlersFor(evt.EventType()) {
			if err := b.deliver(ctx, handler, evt); err != nil {
				b.log.Error("event handler failed",
					zap.String("event_type", evt.EventType()),
					zap.String("event_id", evt.EventID().String()),
					zap.String("aggregate_type", evt.AggregateType()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers handler for the given event types, falling back
// to the handler's own EventTypes when none are passed. An empty type
// list subscribes the handler to every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.table.add(handler, eventTypes)
	b.log.Debug("event handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes the handler from all event types.
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.table.remove(handler)
	b.log.Debug("event handler unsubscribed")
}

// Start marks the bus as accepting publishes.
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.stopped.Store(false)
	b.log.Info("event bus started")
	return nil
}

// Stop rejects further publishes and waits for in-flight deliveries,
// bounded by ctx.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.stopped.Store(true)

	done := make(chan struct{})
	go func() {
		b.inFlight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	b.log.Info("event bus stopped")
	return nil
}

// deliver invokes one handler, converting a panic into an error so the
// publish loop can keep going.
func (b *InMemoryEventBus) deliver(ctx context.Context, handler shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, evt)
}
