package event

import (
	"log/slog"
	"sync"
)

// Handler receives events synchronously on the publishing goroutine.
type Handler func(Event)

// Publisher accepts events.
type Publisher interface {
	Publish(Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Event)

func (f PublisherFunc) Publish(e Event) {
	if f == nil {
		return
	}
	f(e)
}

// NopPublisher drops every event.
func NopPublisher() Publisher {
	return PublisherFunc(func(Event) {})
}

// Bus fans events out to subscribers in subscription order.
// Delivery is synchronous; a handler may publish again.
//
// Thread-safe: the subscriber list is guarded, handlers run outside the lock.
// Handlers shared between entities must be safe for concurrent use.
type Bus struct {
	mu       sync.RWMutex
	handlers []subscription
	nextID   uint64
}

type subscription struct {
	id uint64
	h  Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe adds h and returns a func that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers = append(b.handlers, subscription{id: id, h: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.handlers {
			if s.id == id {
				b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers e to every current subscriber.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, s := range handlers {
		s.h(e)
	}
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// LogSink returns a handler that logs every event at Info level.
func LogSink(logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(e Event) {
		attrs := []any{
			"type", string(e.Type),
			"entity", e.EntityID,
			"subject", e.Subject,
		}
		switch p := e.Payload.(type) {
		case ValueChanged:
			attrs = append(attrs, "previous", p.Previous, "new", p.New, "delta", p.Delta, "direction", p.Direction)
		case LevelChanged:
			attrs = append(attrs, "previous", p.Previous, "new", p.New, "points", p.Points)
		case DamageTaken:
			attrs = append(attrs, "incoming", p.Incoming, "final", p.Final, "final_pct", p.FinalPercent, "source", p.Source)
		case Healed:
			attrs = append(attrs, "amount", p.Amount, "pct", p.Percent, "source", p.Source)
		}
		logger.Info("stat event", attrs...)
	}
}
