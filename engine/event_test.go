package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BaSui01/npcflow/types"
)

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus(nil)
	var order []string
	bus.Subscribe(EventNodeEntered, func(Event) { order = append(order, "first") })
	bus.Subscribe(EventNodeEntered, func(Event) { order = append(order, "second") })
	bus.Subscribe(EventAll, func(Event) { order = append(order, "wildcard") })

	bus.Publish(&NodeEnteredEvent{Node: &types.Node{ID: "n"}, Timestamp_: time.Now()})

	assert.Equal(t, []string{"first", "second", "wildcard"}, order)
}

func TestBus_TypeFilter(t *testing.T) {
	bus := NewBus(nil)
	var got []EventType
	bus.Subscribe(EventConversationEnded, func(ev Event) { got = append(got, ev.Type()) })

	bus.Publish(&NodeEnteredEvent{Node: &types.Node{ID: "n"}, Timestamp_: time.Now()})
	bus.Publish(&ConversationEndedEvent{Conversation: &types.Conversation{ID: "c"}, Timestamp_: time.Now()})

	assert.Equal(t, []EventType{EventConversationEnded}, got)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)
	calls := 0
	id := bus.Subscribe(EventAll, func(Event) { calls++ })

	bus.Publish(&NodeEnteredEvent{Node: &types.Node{ID: "n"}, Timestamp_: time.Now()})
	bus.Unsubscribe(id)
	bus.Publish(&NodeEnteredEvent{Node: &types.Node{ID: "n"}, Timestamp_: time.Now()})

	assert.Equal(t, 1, calls)
}

func TestBus_SynchronousDelivery(t *testing.T) {
	bus := NewBus(nil)
	delivered := false
	bus.Subscribe(EventAll, func(Event) { delivered = true })

	bus.Publish(&NodeEnteredEvent{Node: &types.Node{ID: "n"}, Timestamp_: time.Now()})

	// No goroutines involved: the handler ran inside Publish.
	assert.True(t, delivered)
}

func TestBus_HandlerPanicDoesNotStopDelivery(t *testing.T) {
	bus := NewBus(nil)
	reached := false
	bus.Subscribe(EventAll, func(Event) { panic("boom") })
	bus.Subscribe(EventAll, func(Event) { reached = true })

	bus.Publish(&NodeEnteredEvent{Node: &types.Node{ID: "n"}, Timestamp_: time.Now()})

	assert.True(t, reached)
}
