package event

import (
	"sync"
	"time"
)

// Handler receives events. Handlers run synchronously on whichever
// goroutine drives the operation; slow handlers slow the operation.
type Handler func(Event)

// SubscriptionID identifies a registered handler.
type SubscriptionID int

// Notifier fans events out to registered handlers. Emitting with zero
// handlers registered is a no-op; events are never queued or replayed.
type Notifier struct {
	mu       sync.RWMutex
	handlers map[SubscriptionID]Handler
	nextID   SubscriptionID
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{handlers: make(map[SubscriptionID]Handler)}
}

// Subscribe registers a handler and returns its subscription ID.
func (n *Notifier) Subscribe(h Handler) SubscriptionID {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	id := n.nextID
	n.handlers[id] = h
	return id
}

// Unsubscribe removes a previously registered handler. Unknown IDs are
// ignored.
func (n *Notifier) Unsubscribe(id SubscriptionID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.handlers, id)
}

// Emit delivers e to every registered handler, synchronously. A zero
// timestamp is stamped with the current time.
func (n *Notifier) Emit(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	n.mu.RLock()
	handlers := make([]Handler, 0, len(n.handlers))
	for _, h := range n.handlers {
		handlers = append(handlers, h)
	}
	n.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
