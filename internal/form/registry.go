package form

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry holds the open sessions of the process.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*Session)}
}

func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
}

// Get only returns sessions owned by actorID.
func (r *Registry) Get(id uuid.UUID, actorID string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || s.Actor.ID != actorID {
		return nil, false
	}
	return s, true
}

// Remove closes and forgets a session owned by actorID.
func (r *Registry) Remove(id uuid.UUID, actorID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Actor.ID != actorID {
		return false
	}
	s.Close()
	delete(r.sessions, id)
	return true
}

// Sweep closes sessions idle for longer than idle and returns how many it removed.
func (r *Registry) Sweep(now time.Time, idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if now.Sub(s.LastUsed()) > idle {
			s.Close()
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
