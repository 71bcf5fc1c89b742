package event

import (
	"chat-wire/domain"
)

// DomainEvent is anything the runtime fans out to live connections.
// Receiver returns the target user id for directed events;
// ok=false means the event is broadcast to every active connection.
type DomainEvent interface {
	Receiver() (string, bool)
}

// MessageDelivered is emitted after a message has been durably stored.
// It is pushed to the receiver's connection only; the sender renders its
// own copy from the synchronous Deliver return value.
type MessageDelivered struct {
	Message domain.Message
}

func (e MessageDelivered) Receiver() (string, bool) {
	return e.Message.ReceiverID, true
}

// RosterChanged carries the full set of online user ids.
// Broadcast to every active connection on each registry mutation.
type RosterChanged struct {
	Online []string
}

func (e RosterChanged) Receiver() (string, bool) {
	return "", false
}
