package session

import (
	"sync"
	"time"
)

// PurgeGrace is how long a session remains addressable after its first
// terminal status, to serve debriefs.
const PurgeGrace = 5 * time.Minute

// Manager is the process-global, serialized registry of active sessions.
// Insert and delete are mutex-guarded; access to an individual session's
// fields is guarded by that session's own lock (Session.Lock/Unlock).
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Insert registers a newly created session.
func (m *Manager) Insert(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Identity.SessionID] = s
}

// Get returns the session for an id, or nil if unknown or already purged.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Delete removes a session immediately, bypassing the purge grace. Used by
// tests and explicit operator cleanup; normal termination goes through
// SchedulePurge.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of sessions currently tracked, active or in
// their post-terminal grace window.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// SchedulePurge arms a one-shot timer that removes the session after
// PurgeGrace. Calling it more than once for the same session is a caller
// bug (invariant: purged exactly once) but is made idempotent here by only
// arming the timer the first time, matching the "opening-cooldown cleared
// at most once" discipline used elsewhere in the orchestrator.
func (m *Manager) SchedulePurge(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	if s.purgeTimer != nil {
		m.mu.Unlock()
		return
	}
	s.purgeTimer = time.AfterFunc(PurgeGrace, func() {
		m.Delete(id)
	})
	m.mu.Unlock()
}
