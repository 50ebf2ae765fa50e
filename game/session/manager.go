package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/fifteen-puzzle/game/engine"
	"github.com/wricardo/fifteen-puzzle/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Manager handles puzzle session lifecycle
type Manager struct {
	sessions map[string]*service.Session
	opts     []engine.Option
	mu       sync.RWMutex
}

// NewManager creates a new session manager. The options are passed to every
// engine the manager creates.
func NewManager(opts ...engine.Option) *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		opts:     opts,
	}
}

// Create creates a new session with the given ID and configuration
func (m *Manager) Create(id string, config *engine.PuzzleConfig) (*service.Session, error) {
	if strings.ContainsAny(id, "/ \t\n") {
		return nil, ErrInvalidSessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
	}

	// Check if session already exists (case-insensitive)
	if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	eng, err := engine.NewEngine(config, m.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	m.sessions[strings.ToLower(id)] = session
	return session, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id string, config *engine.PuzzleConfig) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}

	if errors.Is(err, ErrSessionNotFound) {
		session, err = m.Create(id, config)
		// Lost a race with another creator
		if errors.Is(err, ErrSessionAlreadyExists) {
			return m.Get(id)
		}
		return session, err
	}

	return nil, err
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}

	return result
}

// Delete removes a session and stops its clock
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	session, exists := m.sessions[lowerID]
	if !exists {
		return ErrSessionNotFound
	}

	session.StopTicker()
	delete(m.sessions, lowerID)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}

	session.LastAccessedAt = time.Now()
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the
// given duration and returns how many were removed
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			session.StopTicker()
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID generates a random 4-character session ID that is not in
// use. Callers must hold the write lock.
func (m *Manager) generateSessionID() string {
	bytes := make([]byte, 2)
	for {
		rand.Read(bytes)
		id := hex.EncodeToString(bytes)
		if !m.sessionExists(id) {
			return id
		}
	}
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
