package state

import (
	"context"
	"sync"
	"time"
)

// Manager keeps sessions in process memory.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64][]byte // telegramID -> encoded session
	now      func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[int64][]byte),
		now:      time.Now,
	}
}

var _ Store = (*Manager)(nil)

// Get returns a private copy of the session; callers save changes back explicitly.
func (m *Manager) Get(_ context.Context, telegramID int64) (*Session, error) {
	m.mu.RLock()
	data, ok := m.sessions[telegramID]
	m.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	return decodeSession(data)
}

func (m *Manager) Save(_ context.Context, telegramID int64, s *Session) error {
	if s.State == StateNone {
		m.mu.Lock()
		delete(m.sessions, telegramID)
		m.mu.Unlock()
		return nil
	}

	s.UpdatedAt = m.now()
	data, err := encodeSession(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.sessions[telegramID] = data
	m.mu.Unlock()
	return nil
}

func (m *Manager) Clear(_ context.Context, telegramID int64) error {
	m.mu.Lock()
	delete(m.sessions, telegramID)
	m.mu.Unlock()
	return nil
}

func (m *Manager) Take(_ context.Context, telegramID int64, want ...UserState) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.sessions[telegramID]
	if !ok {
		return nil, nil
	}
	s, err := decodeSession(data)
	if err != nil {
		return nil, err
	}
	if !inStates(s, want) {
		return nil, nil
	}
	delete(m.sessions, telegramID)
	return s, nil
}

// EvictIdle drops sessions not saved within ttl and returns how many were removed.
func (m *Manager) EvictIdle(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, data := range m.sessions {
		s, err := decodeSession(data)
		if err != nil || s.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
