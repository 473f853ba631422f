package session

import (
	"sort"
	"sync"
)

// Manager holds strong references to constructed sessions so that a session
// a caller discarded can still be looked up and reloaded from. Ownership is
// explicit: a session stays referenced until Release is called.
type Manager struct {
	mux      sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Add registers a session with the manager.
func (m *Manager) Add(session *Session) {
	if session == nil {
		return
	}
	m.mux.Lock()
	defer m.mux.Unlock()
	m.sessions[session.ID()] = session
}

// Lookup returns the session registered under id or nil.
func (m *Manager) Lookup(id string) *Session {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return m.sessions[id]
}

// Release drops the manager's reference to the session with the given id.
func (m *Manager) Release(id string) {
	m.mux.Lock()
	defer m.mux.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of managed sessions.
func (m *Manager) Len() int {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return len(m.sessions)
}

// ActiveDepth returns the number of managed sessions currently active.
func (m *Manager) ActiveDepth() int {
	m.mux.RLock()
	defer m.mux.RUnlock()
	depth := 0
	for _, session := range m.sessions {
		if session.IsActive() {
			depth++
		}
	}
	return depth
}

// IDs returns the sorted identifiers of all managed sessions.
func (m *Manager) IDs() []string {
	m.mux.RLock()
	defer m.mux.RUnlock()
	ret := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ret = append(ret, id)
	}
	sort.Strings(ret)
	return ret
}
