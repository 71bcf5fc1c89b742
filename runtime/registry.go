package runtime

import (
	"chat-wire/contract"
	"sort"
	"sync"
)

// Registry is the presence registry: the single in-memory structure
// shared across all connection handlers. It maps each online user to
// exactly one live session (last-connection-wins) and is only ever
// mutated through Register/Unregister, keeping the single-writer
// invariant enforceable behind one mutex.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]contract.Session // user id -> active session
	owners   map[contract.Handle]string  // handle -> user id
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]contract.Session),
		owners:   make(map[contract.Handle]string),
	}
}

// Register associates a connection with a user id. If the user already
// has a session it is silently replaced; the superseded handle loses its
// ownership so a late Unregister from the old connection cannot evict
// the new one.
func (r *Registry) Register(userID string, handle contract.Handle, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.sessions[userID]; ok {
		delete(r.owners, old.Handle)
	}
	r.sessions[userID] = contract.Session{Handle: handle, Sink: sink}
	r.owners[handle] = userID
}

// Unregister removes the session owned by the given handle and returns
// the user id it belonged to. A handle that is absent, already removed,
// or superseded by a reconnect is a no-op.
func (r *Registry) Unregister(handle contract.Handle) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.owners[handle]
	if !ok {
		return "", false
	}
	delete(r.owners, handle)
	delete(r.sessions, userID)
	return userID, true
}

// Lookup resolves a user id to its live session in O(1).
func (r *Registry) Lookup(userID string) (contract.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[userID]
	return session, ok
}

// Snapshot returns the ids of all currently registered users, sorted for
// deterministic roster payloads.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	online := make([]string, 0, len(r.sessions))
	for userID := range r.sessions {
		online = append(online, userID)
	}
	sort.Strings(online)
	return online
}

// Sessions returns every active session, used for roster broadcasts.
func (r *Registry) Sessions() []contract.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]contract.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}
