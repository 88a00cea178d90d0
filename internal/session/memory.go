package session

import "sync"

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewMemoryStore constructs an in-memory Store implementation.
func NewMemoryStore() Store {
	return &memoryStore{
		sessions: make(map[int64]*Session),
	}
}

// Get returns the session for a user if it exists.
func (m *memoryStore) Get(userID int64) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[userID]
}

// Begin replaces any previous session with a fresh one at the given stage.
func (m *memoryStore) Begin(userID int64, stage Stage) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := &Session{Stage: stage}
	m.sessions[userID] = sess
	return sess
}

// Clear removes the entire session for a user.
func (m *memoryStore) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// InProgress reports whether the user currently has an active conversation.
func (m *memoryStore) InProgress(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[userID]
	return ok && sess.Stage != StageIdle
}
