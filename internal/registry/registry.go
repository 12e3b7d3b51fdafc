package registry

import (
	"sync"

	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/model"
	"github.com/Zayd-bin-Talha/Yellowgram-messenger/internal/protocol"
)

// Conn is a connection handle: an addressable endpoint able to receive
// pushed events for one live session. Push is fire-and-forget.
type Conn interface {
	Push(evt protocol.Outbound)
}

// ConnectionRegistry is the presence source of truth, mapping each live
// identity to its connection handle.
type ConnectionRegistry interface {
	// Register binds identity to handle, replacing any prior handle for
	// that identity. The superseded handle is not closed; a stale entry
	// can linger until the old connection disconnects.
	Register(identity string, handle Conn)
	Lookup(identity string) (Conn, bool)
	Unregister(identity string)
	// Snapshot joins the given friend set against current registry
	// contents. Presence is pulled, never pushed on connect/disconnect.
	Snapshot(friends []string) []model.UserStatus
}

// InMemoryRegistry stores presence entries in a map behind an RWMutex.
type InMemoryRegistry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

// NewInMemory builds an empty in-memory connection registry.
func NewInMemory() *InMemoryRegistry {
	return &InMemoryRegistry{
		conns: make(map[string]Conn),
	}
}

// Register records the handle for an identity, last write wins.
func (r *InMemoryRegistry) Register(identity string, handle Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[identity] = handle
}

// Lookup fetches the handle for an identity, if one is registered.
func (r *InMemoryRegistry) Lookup(identity string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[identity]
	return conn, ok
}

// Unregister removes the presence entry for an identity.
func (r *InMemoryRegistry) Unregister(identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, identity)
}

// Snapshot reports online status for each of the given friends.
func (r *InMemoryRegistry) Snapshot(friends []string) []model.UserStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.UserStatus, 0, len(friends))
	for _, name := range friends {
		_, online := r.conns[name]
		out = append(out, model.UserStatus{Username: name, IsOnline: online})
	}
	return out
}
