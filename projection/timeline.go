// Package projection builds local read models from observed events.
// Handles ordering and bounded retention.
// Does not emit events or interact with connections directly.
package projection

import (
	"chat-wire/domain"
	"chat-wire/domain/event"
	"context"
	"sync"
)

const defaultCapacity = 50

// Timeline keeps a bounded tail of recently delivered messages, consumed
// as a permanent sink of the fan-out. The debug dashboard reads it.
type Timeline struct {
	mu       sync.RWMutex
	capacity int
	messages []domain.Message
}

func NewTimeline(capacity int) *Timeline {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Timeline{capacity: capacity}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.MessageDelivered)
	if !ok {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, evt.Message)
	if len(t.messages) > t.capacity {
		t.messages = t.messages[len(t.messages)-t.capacity:]
	}
	return nil
}

// Recent returns a copy of the retained tail, newest last.
func (t *Timeline) Recent() []domain.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.Message, len(t.messages))
	copy(out, t.messages)
	return out
}
