package runtime

import (
	"chat-wire/contract"
	"chat-wire/domain/event"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type nopSink struct {
	name string
}

func (s nopSink) Consume(_ context.Context, _ event.DomainEvent) error {
	return nil
}

func TestRegistry_Register_One_User(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	handle := contract.Handle(uuid.NewString())
	sink := nopSink{name: "a"}

	// Given no user is connected
	req.Empty(registry.Snapshot())

	// When a user registers a connection
	registry.Register(userID, handle, sink)

	// Then the roster contains exactly that user
	req.Equal([]string{userID}, registry.Snapshot())

	session, ok := registry.Lookup(userID)
	req.True(ok)
	req.Equal(handle, session.Handle)
	req.Equal(sink, session.Sink)
}

func TestRegistry_Register_Same_User_Twice_Last_Connection_Wins(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	first := contract.Handle(uuid.NewString())
	second := contract.Handle(uuid.NewString())

	// Given a user already has a live connection
	registry.Register(userID, first, nopSink{name: "first"})

	// When the same user registers a second connection
	registry.Register(userID, second, nopSink{name: "second"})

	// Then exactly one entry remains and it is the latest one
	req.Equal([]string{userID}, registry.Snapshot())
	session, ok := registry.Lookup(userID)
	req.True(ok)
	req.Equal(second, session.Handle)
	req.Equal(nopSink{name: "second"}, session.Sink)
}

func TestRegistry_Unregister_Superseded_Handle_Is_A_Noop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	first := contract.Handle(uuid.NewString())
	second := contract.Handle(uuid.NewString())

	// Given a reconnect replaced the first connection
	registry.Register(userID, first, nopSink{name: "first"})
	registry.Register(userID, second, nopSink{name: "second"})

	// When the stale connection unregisters late
	_, removed := registry.Unregister(first)

	// Then the replacement session survives
	req.False(removed)
	req.Equal([]string{userID}, registry.Snapshot())
}

func TestRegistry_Unregister_Removes_The_Session(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()
	handle := contract.Handle(uuid.NewString())

	// Given a registered connection
	registry.Register(userID, handle, nopSink{})

	// When it unregisters
	owner, removed := registry.Unregister(handle)

	// Then the registry forgets it entirely
	req.True(removed)
	req.Equal(userID, owner)
	req.Empty(registry.Snapshot())
	_, ok := registry.Lookup(userID)
	req.False(ok)
}

func TestRegistry_Unregister_Unknown_Handle_Is_A_Noop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	userID := uuid.NewString()

	// Given one registered user
	registry.Register(userID, contract.Handle(uuid.NewString()), nopSink{})

	// When an unknown handle unregisters
	_, removed := registry.Unregister(contract.Handle(uuid.NewString()))

	// Then nothing changes
	req.False(removed)
	req.Equal([]string{userID}, registry.Snapshot())
}

func TestRegistry_Sessions_Returns_Every_Active_Session(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given three registered users
	for _, name := range []string{"a", "b", "c"} {
		registry.Register(uuid.NewString(), contract.Handle(uuid.NewString()), nopSink{name: name})
	}

	// Then every session is visible for broadcast
	req.Len(registry.Sessions(), 3)
	req.Len(registry.Snapshot(), 3)
}
