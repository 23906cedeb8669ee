package host

import "sync"

// EventType names a host lifecycle signal.
type EventType string

const (
	EventConversationChanged EventType = "conversation_changed"
	EventMessageDeleted      EventType = "message_deleted"
	EventMessageReceived     EventType = "message_received"
	EventMessageSent         EventType = "message_sent"
	EventMessageSwiped       EventType = "message_swiped"
	EventMessageUpdated      EventType = "message_updated"
	EventMoreMessagesLoaded  EventType = "more_messages_loaded"
)

// Event is one lifecycle signal.
type Event struct {
	Type           EventType
	ConversationID string // set for conversation_changed
	Index          int    // set for message_deleted/updated/swiped
}

const subscriberBuffer = 32

// Bus fans lifecycle events out to subscribers. Emit never blocks;
// a subscriber that falls more than subscriberBuffer events behind
// loses the overflow.
type Bus struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a listener. The returned cancel func must be
// called exactly once when the listener is done.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Emit delivers an event to every subscriber without blocking.
func (b *Bus) Emit(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
