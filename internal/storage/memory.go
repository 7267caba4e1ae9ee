package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zoi-aqua/aquabot-backend/internal/models"
)

// MemoryStore holds all sessions in memory.
type MemoryStore struct {
	sessions map[string]*session
	mu       sync.RWMutex
}

type session struct {
	ID         string
	State      map[string]interface{}
	History    []models.HistoryTurn
	Cur        Cursor
	CreatedAt  time.Time
	LastActive time.Time
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*session),
	}
}

// getOrCreate must be called with the write lock held.
func (m *MemoryStore) getOrCreate(sessionID string) *session {
	s, exists := m.sessions[sessionID]
	if !exists {
		s = &session{
			ID:        uuid.NewString(),
			State:     make(map[string]interface{}),
			CreatedAt: time.Now(),
		}
		m.sessions[sessionID] = s
	}
	s.LastActive = time.Now()
	return s
}

func (m *MemoryStore) Get(sessionID, key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.sessions[sessionID]
	if !exists {
		return nil, false
	}
	value, ok := s.State[key]
	return value, ok
}

func (m *MemoryStore) Set(sessionID string, patch map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.getOrCreate(sessionID)
	for k, v := range patch {
		s.State[k] = v
	}
	return nil
}

func (m *MemoryStore) History(sessionID string) []models.HistoryTurn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.sessions[sessionID]
	if !exists {
		return nil
	}
	history := make([]models.HistoryTurn, len(s.History))
	copy(history, s.History)
	return history
}

func (m *MemoryStore) AppendHistory(sessionID string, turn models.HistoryTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.getOrCreate(sessionID)
	s.History = append(s.History, turn)
	return nil
}

func (m *MemoryStore) Cursor(sessionID string) Cursor {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.sessions[sessionID]
	if !exists {
		return Cursor{}
	}
	return s.Cur
}

func (m *MemoryStore) SetCursor(sessionID string, cur Cursor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.getOrCreate(sessionID)
	s.Cur = cur
	return nil
}
