package event

import (
	"testing"

	"github.com/lumina/storefront/internal/domain/order"
	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newRecordingHandler()

	registry.Register(handler, order.EventTypeOrderFulfilled, order.EventTypeFulfillmentFailed)

	assert.Len(t, registry.GetHandlers(order.EventTypeOrderFulfilled), 1)
	assert.Len(t, registry.GetHandlers(order.EventTypeFulfillmentFailed), 1)
	assert.Empty(t, registry.GetHandlers(order.EventTypeOrderPlaced))
}

func TestHandlerRegistry_RegisterTwiceIsNoop(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newRecordingHandler()

	registry.Register(handler, order.EventTypeOrderPlaced)
	registry.Register(handler, order.EventTypeOrderPlaced)

	assert.Len(t, registry.GetHandlers(order.EventTypeOrderPlaced), 1)
	assert.Equal(t, 1, registry.Count())
}

func TestHandlerRegistry_WildcardAfterTyped(t *testing.T) {
	registry := NewHandlerRegistry()
	typed := newRecordingHandler()
	wildcard := newRecordingHandler()

	registry.Register(wildcard)
	registry.Register(typed, order.EventTypeOrderPlaced)

	handlers := registry.GetHandlers(order.EventTypeOrderPlaced)
	assert.Len(t, handlers, 2)
	assert.Same(t, typed, handlers[0])
	assert.Same(t, wildcard, handlers[1])

	assert.Len(t, registry.GetHandlers("anything"), 1)
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	a := newRecordingHandler()
	b := newRecordingHandler()

	registry.Register(a, order.EventTypeOrderPlaced)
	registry.Register(b, order.EventTypeOrderPlaced)
	registry.Register(a)

	registry.Unregister(a)

	handlers := registry.GetHandlers(order.EventTypeOrderPlaced)
	assert.Len(t, handlers, 1)
	assert.Same(t, b, handlers[0])
	assert.Equal(t, 1, registry.Count())
}
