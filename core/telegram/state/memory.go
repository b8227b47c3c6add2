package state

import (
	"context"
	"sync"
)

// MemoryStore keeps conversation values in process memory.
// Values are lost on restart.
type MemoryStore[S any] struct {
	mu       sync.RWMutex
	sessions map[int64]S
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore[S any]() *MemoryStore[S] {
	return &MemoryStore[S]{sessions: make(map[int64]S)}
}

// Get returns the value for a user if it exists.
func (m *MemoryStore[S]) Get(_ context.Context, userID int64) (S, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.sessions[userID]
	return v, ok, nil
}

// Set stores the value for a user, replacing any previous one.
func (m *MemoryStore[S]) Set(_ context.Context, userID int64, value S) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = value
	return nil
}

// Clear removes the user's value.
func (m *MemoryStore[S]) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// Len reports the number of users with an active value.
func (m *MemoryStore[S]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
