package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentora/backend/internal/domain/shared"
)

type tableHandler struct{ name string }

func (h *tableHandler) Handle(context.Context, shared.DomainEvent) error { return nil }
func (h *tableHandler) EventTypes() []string                             { return nil }

func TestSubscriberTable_AddAndLookup(t *testing.T) {
	table := newSubscriberTable()
	h := &tableHandler{name: "inventory"}
	table.add(h, []string{testEventReturnCreated, testEventReturnTransitioned})

	assert.Len(t, table.handlersFor(testEventReturnCreated), 1)
	assert.Len(t, table.handlersFor(testEventReturnTransitioned), 1)
	assert.Nil(t, table.handlersFor("return.voided"))
}

func TestSubscriberTable_WildcardOrderedLast(t *testing.T) {
	table := newSubscriberTable()
	typed := &tableHandler{name: "typed"}
	wild := &tableHandler{name: "wild"}
	table.add(wild, nil)
	table.add(typed, []string{testEventReturnCreated})

	got := table.handlersFor(testEventReturnCreated)
	require.Len(t, got, 2)
	assert.Same(t, typed, got[0])
	assert.Same(t, wild, got[1])
}

func TestSubscriberTable_RemoveDropsAllRegistrations(t *testing.T) {
	table := newSubscriberTable()
	h := &tableHandler{name: "partner-credit"}
	other := &tableHandler{name: "audit"}
	table.add(h, []string{testEventReturnCreated, testEventReturnTransitioned})
	table.add(h, nil)
	table.add(other, []string{testEventReturnCreated})

	table.remove(h)

	created := table.handlersFor(testEventReturnCreated)
	require.Len(t, created, 1)
	assert.Same(t, other, created[0])
	assert.Nil(t, table.handlersFor(testEventReturnTransitioned))
}

func TestSubscriberTable_LookupResultIsACopy(t *testing.T) {
	table := newSubscriberTable()
	h := &tableHandler{name: "first"}
	table.add(h, []string{testEventReturnCreated})

	got := table.handlersFor(testEventReturnCreated)
	got[0] = &tableHandler{name: "mutated"}

	fresh := table.handlersFor(testEventReturnCreated)
	require.Len(t, fresh, 1)
	assert.Same(t, h, fresh[0])
}
