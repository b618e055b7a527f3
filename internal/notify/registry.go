package notify

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/virgil-assistant/virgil/internal/metrics"
)

var ErrNotConnected = errors.New("user has no active connection")

// conn is the subset of *websocket.Conn the registry uses, split out so
// tests can register fakes.
type conn interface {
	WriteJSON(v any) error
	Close() error
}

// Registry tracks at most one live notification channel per user. All
// operations serialize on a single mutex; at this connection count the
// contention is irrelevant and the invariant (one channel per user) stays
// trivial to reason about.
type Registry struct {
	mu    sync.Mutex
	conns map[string]conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]conn)}
}

// Connect registers the user's channel. A prior channel for the same user
// is closed and replaced, so a reconnect always wins.
func (r *Registry) Connect(userID string, c conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.conns[userID]; ok {
		old.Close()
	} else {
		metrics.ActiveWSConnections.Inc()
	}
	r.conns[userID] = c
}

// Disconnect closes and removes the user's channel, but only if it is
// still the given one. A handler cleaning up after its read loop cannot
// evict a replacement connection that arrived in the meantime.
func (r *Registry) Disconnect(userID string, c conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.conns[userID]
	if !ok || current != c {
		return
	}
	current.Close()
	delete(r.conns, userID)
	metrics.ActiveWSConnections.Dec()
}

// IsConnected reports whether the user has a registered channel.
func (r *Registry) IsConnected(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.conns[userID]
	return ok
}

// SendTo writes the payload to the user's channel. On a write failure the
// stale channel is dropped so the next send does not hit it again.
func (r *Registry) SendTo(userID string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[userID]
	if !ok {
		return ErrNotConnected
	}
	if err := c.WriteJSON(payload); err != nil {
		c.Close()
		delete(r.conns, userID)
		metrics.ActiveWSConnections.Dec()
		return err
	}
	return nil
}

// Broadcast writes the payload to every channel, dropping the ones that
// fail.
func (r *Registry) Broadcast(payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, c := range r.conns {
		if err := c.WriteJSON(payload); err != nil {
			c.Close()
			delete(r.conns, userID)
			metrics.ActiveWSConnections.Dec()
		}
	}
}

// Count returns the number of live channels.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// CloseAll actively closes every channel at shutdown instead of leaving
// peers to time out.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, c := range r.conns {
		c.Close()
		delete(r.conns, userID)
		metrics.ActiveWSConnections.Dec()
	}
}

// ensure the real connection type satisfies the registry's interface.
var _ conn = (*websocket.Conn)(nil)
