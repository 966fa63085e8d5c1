package events

import (
	"sync"
	"time"
)

// Handler receives published events.
type Handler func(Event)

type handlerEntry struct {
	id int
	fn Handler
}

// Bus delivers events synchronously, in subscription order, outside its lock
// so handlers may subscribe, unsubscribe or publish again.
type Bus struct {
	mu       sync.RWMutex
	handlers []handlerEntry
	nextID   int
	now      func() time.Time
}

func NewBus() *Bus {
	return &Bus{handlers: make([]handlerEntry, 0), now: time.Now}
}

// Subscribe registers fn and returns its id for Unsubscribe.
func (b *Bus) Subscribe(fn Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.handlers = append(b.handlers, handlerEntry{id: b.nextID, fn: fn})
	return b.nextID
}

func (b *Bus) Unsubscribe(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.handlers {
		if e.id == id {
			b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = b.now()
	}
	b.mu.RLock()
	handlers := make([]handlerEntry, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()
	for _, h := range handlers {
		if h.fn != nil {
			h.fn(e)
		}
	}
}
