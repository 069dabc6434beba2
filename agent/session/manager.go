package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager hands out sessions keyed by id. Distinct sessions share no mutable
// state; the map itself is the only guarded structure.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Open creates a fresh session with a generated id.
func (m *Manager) Open() *Session {
	s := newSession(uuid.NewString(), m.now)
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s
}

// Get returns the session for id, if it exists.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close drops the session. No durable state needs cleanup.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
