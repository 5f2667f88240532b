package event

import (
	"sync"

	"github.com/rentora/backend/internal/domain/shared"
)

// wildcardKey indexes handlers that receive every event type.
const wildcardKey = "*"

// subscriberTable is the concurrency-safe handler index behind the bus.
// Handlers registered without explicit event types are stored under
// wildcardKey and match everything.
type subscriberTable struct {
	mu   sync.RWMutex
	subs map[string][]shared.EventHandler
}

func newSubscriberTable() *subscriberTable {
	return &subscriberTable{
		subs: make(map[string][]shared.EventHandler),
	}
}

func (t *subscriberTable) add(handler shared.EventHandler, eventTypes []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(eventTypes) == 0 {
		t.subs[wildcardKey] = append(t.subs[wildcardKey], handler)
		return
	}
	for _, eventType := range eventTypes {
		t.subs[eventType] = append(t.subs[eventType], handler)
	}
}

// remove drops the handler from every event type it was registered
// under, wildcard included.
func (t *subscriberTable) remove(handler shared.EventHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for eventType, handlers := range t.subs {
		kept := handlers[:0]
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		if len(kept) == 0 {
			delete(t.subs, eventType)
			continue
		}
		t.subs[eventType] = kept
	}
}

// handlersFor returns the handlers matching eventType, type-specific
// subscribers first and wildcard subscribers after. The result is a
// fresh slice the caller may iterate without holding any lock.
func (t *subscriberTable) handlersFor(eventType string) []shared.EventHandler {
	t.mu.RLock()
	defer t.mu.RUnlock()

	matched := t.subs[eventType]
	wild := t.subs[wildcardKey]
	if len(matched)+len(wild) == 0 {
		return nil
	}
	out := make([]shared.EventHandler, 0, len(matched)+len(wild))
	out = append(out, matched...)
	return append(out, wild...)
}
