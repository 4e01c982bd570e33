package sessions

import "sync"

// InMemoryRegistry is the default Registry backed by a mutex-guarded map.
type InMemoryRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

var _ Registry = (*InMemoryRegistry)(nil)

// NewInMemoryRegistry creates an empty registry.
func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{
		sessions: make(map[string]*Session),
	}
}

func (r *InMemoryRegistry) Put(id string, session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = session
}

func (r *InMemoryRegistry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	return session, ok
}

func (r *InMemoryRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *InMemoryRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
