package workers

import (
	"chat-wire/contract"
	"chat-wire/domain/event"
	"chat-wire/errors"
	"chat-wire/observability"
	"context"
	goerrors "errors"
	"log/slog"
	"time"
)

// EventFanout routes domain events to live connections and to the
// permanent in-process sinks (projections, storage-side observers).
//
// Directed events reach exactly one session, resolved through the
// presence registry at fan-out time. Broadcast events reach every active
// session. Delivery is best effort with no retries: durability is the
// message store's job, not the fan-out's.
//
// EventFanout is safe for concurrent use by multiple goroutines.
type EventFanout struct {
	log            *slog.Logger
	registry       contract.IRegistry
	monitor        *observability.Monitor
	events         chan event.DomainEvent
	telemetry      chan event.DomainEvent
	permanentSinks []contract.EventSink
	sinkTimeout    time.Duration
	disconnect     func(contract.Handle)
}

func NewEventFanout(log *slog.Logger, registry contract.IRegistry,
	monitor *observability.Monitor, events, telemetry chan event.DomainEvent,
	sinkTimeout time.Duration, disconnect func(contract.Handle)) *EventFanout {
	return &EventFanout{
		log:         log,
		registry:    registry,
		monitor:     monitor,
		events:      events,
		telemetry:   telemetry,
		sinkTimeout: sinkTimeout,
		disconnect:  disconnect,
	}
}

func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.permanentSinks = append(w.permanentSinks, sinks...)
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.events:
			w.Fanout(ctx, evt)
			select {
			case w.telemetry <- evt:
			default:
				w.log.Debug("Observability telemetry event lost")
			}
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		}
	}
}

// Fanout delivers one event. Permanent sinks always consume; session
// sinks depend on the event's routing contract.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()

	for _, sink := range w.permanentSinks {
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Warn("Permanent sink rejected event", "error", err)
		}
	}

	if userID, directed := evt.Receiver(); directed {
		session, ok := w.registry.Lookup(userID)
		if !ok {
			// Receiver offline: the message is already durable, the next
			// history fetch recovers it.
			w.log.Debug("Receiver offline, skipping push", "user_id", userID)
			return
		}
		w.push(sinkCtx, session, evt)
		return
	}

	for _, session := range w.registry.Sessions() {
		w.push(sinkCtx, session, evt)
	}
}

// push writes one event to one session. Failures are logged and counted,
// never propagated: durability, not instant delivery, is the correctness
// guarantee. A closed sink additionally evicts the stale session so
// repeated failures cannot accumulate dead registry entries.
func (w *EventFanout) push(ctx context.Context, session contract.Session, evt event.DomainEvent) {
	err := session.Sink.Consume(ctx, evt)
	if err == nil {
		return
	}

	w.monitor.IncrPushFailures()
	w.log.Warn("Realtime push failed",
		"handle", session.Handle,
		"error", goerrors.Join(errors.ErrDeliveryPush, err))

	if goerrors.Is(err, errors.ErrSinkClosed) && w.disconnect != nil {
		w.disconnect(session.Handle)
	}
}
