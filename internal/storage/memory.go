package storage

import (
	"sync"
	"time"

	"github.com/medipulse/medipulse-backend/internal/models"
	"github.com/medipulse/medipulse-backend/internal/utils"
)

// DefaultSessionTTL matches the 30 minute idle timeout used for
// conversational sessions.
const DefaultSessionTTL = 30 * time.Minute

// MemoryStore holds all sessions in memory for the lifetime of the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	ttl      time.Duration
}

// NewMemoryStore creates a new in-memory session store. A non-positive ttl
// falls back to DefaultSessionTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
		ttl:      ttl,
	}
}

// Create implements Store.
func (m *MemoryStore) Create(lang models.Language, stage models.Stage) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var id string
	for {
		token, err := utils.GenerateSessionToken()
		if err != nil {
			return nil, err
		}
		if _, taken := m.sessions[token]; !taken {
			id = token
			break
		}
	}

	session := models.NewSession(id, lang, stage, m.ttl)
	m.sessions[id] = session
	return session, nil
}

// Get implements Store.
func (m *MemoryStore) Get(id string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	if session.Expired(time.Now()) {
		return nil, ErrSessionExpired
	}
	return session, nil
}

// Update implements Store.
func (m *MemoryStore) Update(id string, fn func(*models.Session)) error {
	session, err := m.Get(id)
	if err != nil {
		return err
	}

	session.Lock()
	defer session.Unlock()
	fn(session)
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count implements Store.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep implements Store. The expiry check happens under each session's
// turn lock; a session whose turn is in flight holds that lock and is by
// definition active, so it is skipped and left for a later sweep.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, session := range m.sessions {
		if !session.TryLock() {
			continue
		}
		expired := now.After(session.ExpiresAt)
		session.Unlock()

		if expired {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
