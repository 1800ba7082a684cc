// Package presence tracks which users currently hold live realtime
// connections.
package presence

import (
	"sort"
	"sync"
)

// ConnID uniquely identifies one open realtime connection.
type ConnID string

// Handle is a non-owning reference to a live connection. The registry never
// closes a handle; the transport owns it.
type Handle interface {
	ID() ConnID
	UserID() string
	Send(event string, payload any) error
}

// Registry maps a user id to the set of connections that user holds
// (tabs / devices). A user id is present iff its set is non-empty.
type Registry struct {
	mu    sync.RWMutex
	users map[string]map[ConnID]Handle // user → set of conns
	conns int
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[string]map[ConnID]Handle)}
}

// Register adds h to userID's set. Registering the same handle twice has no
// further effect.
func (r *Registry) Register(userID string, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.users[userID]
	if set == nil {
		set = make(map[ConnID]Handle)
		r.users[userID] = set
	}
	if _, ok := set[h.ID()]; !ok {
		r.conns++
	}
	set[h.ID()] = h
}

// Deregister removes h from userID's set and drops the user once the set is
// empty. Unknown users or handles are ignored.
func (r *Registry) Deregister(userID string, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.users[userID]
	if !ok {
		return
	}
	if _, ok := set[h.ID()]; !ok {
		return
	}
	delete(set, h.ID())
	r.conns--
	if len(set) == 0 {
		delete(r.users, userID)
	}
}

// ConnectionsFor returns a snapshot of userID's handles, nil if offline.
func (r *Registry) ConnectionsFor(userID string) []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.users[userID]
	if len(set) == 0 {
		return nil
	}
	out := make([]Handle, 0, len(set))
	for _, h := range set {
		out = append(out, h)
	}
	return out
}

// OnlineUserIDs lists every user holding at least one connection, sorted.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns a snapshot of every registered handle.
func (r *Registry) All() []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Handle, 0, r.conns)
	for _, set := range r.users {
		for _, h := range set {
			out = append(out, h)
		}
	}
	return out
}

// Len returns the number of online users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// ConnectionCount returns the number of registered handles.
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conns
}
