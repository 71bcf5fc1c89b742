//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-wire/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Handle is an opaque identifier for one live connection. The registry
// keys evictions on it so that a stale connection can never unregister
// its replacement.
type Handle string

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Session pairs a connection handle with its push target.
type Session struct {
	Handle Handle
	Sink   EventSink
}

// IRegistry is the presence registry contract. It is the only shared
// mutable structure of the runtime; callers go through these four
// operations and never iterate or mutate internals directly.
type IRegistry interface {
	Register(userID string, handle Handle, sink EventSink)
	Unregister(handle Handle) (string, bool)
	Lookup(userID string) (Session, bool)
	Snapshot() []string
	Sessions() []Session
}

type IOrchestrator interface {
	Connect(userID string, handle Handle, sink EventSink)
	Disconnect(handle Handle)
	Dispatch(evt event.DomainEvent)
	Start(ctx context.Context) error
	Stop()
}
