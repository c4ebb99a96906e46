package events

import (
	"sync"

	"friendship-service/internal/models"
)

// Handler consumes a domain event. Handlers run inline on the publishing
// goroutine, so they must not block for long; the notification fan-out
// copes by buffering per-client queues.
type Handler func(models.DomainEvent)

// Bus is the in-process, fully synchronous publish/subscribe mechanism.
// It is distinct from the Kafka publisher: subscribers observe events in
// publish order, before the mutating call returns.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a topic. Handlers for one topic are
// invoked in subscription order.
func (b *Bus) Subscribe(topic string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], h)
}

// Publish dispatches the event to every handler registered for its topic,
// in the calling goroutine, and returns once all handlers have run.
func (b *Bus) Publish(event models.DomainEvent) {
	b.mu.RLock()
	handlers := b.handlers[event.Topic()]
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}
