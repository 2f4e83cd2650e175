package ws

import (
	"sort"
	"sync"
)

// Registry tracks every live connection by ID. Room membership is never
// stored separately; it is derived from connection state on each query so
// there is a single source of truth.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: map[string]*Conn{}}
}

// Add registers a connection.
func (r *Registry) Add(c *Conn) {
	r.mu.Lock()
	r.conns[c.id] = c
	r.mu.Unlock()
}

// Remove drops a connection. Idempotent.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.conns, id)
	r.mu.Unlock()
}

// Get returns the connection for id, if still registered.
func (r *Registry) Get(id string) (*Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[id]
	return c, ok
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// InRoom returns the connections currently receiving broadcasts for room.
func (r *Registry) InRoom(room string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Conn
	for _, c := range r.conns {
		if c.inRoom(room) {
			out = append(out, c)
		}
	}
	return out
}

// UsersIn returns the sorted, de-duplicated usernames present in room.
// Two sessions sharing a username collapse to one roster entry.
func (r *Registry) UsersIn(room string) []string {
	r.mu.RLock()
	seen := map[string]struct{}{}
	for _, c := range r.conns {
		if c.inRoom(room) {
			seen[c.Username()] = struct{}{}
		}
	}
	r.mu.RUnlock()

	users := make([]string, 0, len(seen))
	for u := range seen {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}
