// Package runtime handles event propagation between the gateway, the
// presence registry, and live connections. It orchestrates the system
// without containing business logic or domain rules.
package runtime

import (
	"chat-wire/contract"
	"chat-wire/domain/event"
	"chat-wire/observability"
	"chat-wire/projection"
	"chat-wire/runtime/workers"
	"context"
	"log/slog"
	"sync"
	"time"
)

type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	supervisor     contract.ISupervisor
	registry       contract.IRegistry
	monitor        *observability.Monitor
	timeline       *projection.Timeline
	permanentSinks []contract.EventSink
	events         chan event.DomainEvent
	telemetry      chan event.DomainEvent
	metricInterval time.Duration
	sinkTimeout    time.Duration
}

func NewOrchestrator(log *slog.Logger, supervisor *workers.Supervisor,
	registry *Registry, monitor *observability.Monitor, timeline *projection.Timeline,
	bufferSize int, sinkTimeout, metricInterval time.Duration) *Orchestrator {
	return &Orchestrator{
		log:            log,
		supervisor:     supervisor,
		registry:       registry,
		monitor:        monitor,
		timeline:       timeline,
		events:         make(chan event.DomainEvent, bufferSize),
		telemetry:      make(chan event.DomainEvent, bufferSize),
		metricInterval: metricInterval,
		sinkTimeout:    sinkTimeout,
	}
}

// Add registers permanent sinks consumed on every event, next to the
// per-connection session sinks.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// Connect registers an authenticated connection and broadcasts the new
// roster to every active connection, the new one included.
func (o *Orchestrator) Connect(userID string, handle contract.Handle, sink contract.EventSink) {
	o.registry.Register(userID, handle, sink)
	o.monitor.IncrConnections()
	o.Dispatch(event.RosterChanged{Online: o.registry.Snapshot()})
}

// Disconnect evicts the session owned by the handle and rebroadcasts the
// roster. Safe to call several times per connection: only the call that
// actually removes an entry triggers a broadcast.
func (o *Orchestrator) Disconnect(handle contract.Handle) {
	if _, removed := o.registry.Unregister(handle); !removed {
		return
	}
	o.monitor.IncrDisconnections()
	o.Dispatch(event.RosterChanged{Online: o.registry.Snapshot()})
}

// Dispatch enqueues an event for fan-out without blocking the caller.
func (o *Orchestrator) Dispatch(evt event.DomainEvent) {
	select {
	case o.events <- evt:
	default:
		o.log.Warn("Event channel full, dropping event")
	}
}

// Start prepares the pipeline (fan-out + telemetry workers, permanent
// sinks) and launches the supervisor. Preparation happens outside the
// lock; only the state update is in the critical section.
func (o *Orchestrator) Start(ctx context.Context) error {
	fanout := workers.NewEventFanout(o.log, o.registry, o.monitor,
		o.events, o.telemetry, o.sinkTimeout, o.Disconnect)
	telemetry := workers.NewTelemetryWorker(o.log, o.metricInterval, o.telemetry, o.monitor)

	o.mu.Lock()
	o.permanentSinks = append(o.permanentSinks, o.timeline)
	fanout.Add(o.permanentSinks...)
	o.supervisor.Add(fanout, telemetry)
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers")
	go o.supervisor.Run(ctx)
	return nil
}

// Stop initiates a graceful shutdown of the orchestrator by canceling
// the supervision context; workers stop draining and exit.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
