package ws

import (
	"chat-wire/domain/event"
	"chat-wire/errors"
	"context"
	"sync/atomic"
)

// Sink is the per-connection push target registered in the presence
// registry. The fan-out worker feeds it; the connection's writer
// goroutine drains it.
type Sink struct {
	events chan event.DomainEvent
	closed atomic.Bool
}

func NewSink(bufferSize int) *Sink {
	return &Sink{events: make(chan event.DomainEvent, bufferSize)}
}

// Consume is called by the fan-out worker. It hands the event over to
// the connection's writer without blocking the fan-out: a full buffer is
// backpressure, a closed sink tells the fan-out to evict this session.
func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	if s.closed.Load() {
		return errors.ErrSinkClosed
	}
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.ErrSinkBackpressure
	}
}

// Close marks the sink dead. The channel itself is never closed so a
// concurrent Consume can never panic; it just starts failing.
func (s *Sink) Close() {
	s.closed.Store(true)
}

func (s *Sink) Events() <-chan event.DomainEvent {
	return s.events
}
