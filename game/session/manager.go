package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/rubertaxi/game/engine"
	"github.com/wricardo/mcp-training/rubertaxi/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Manager owns the running taxi shifts, keyed by lowercased session ID
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	logger      zerolog.Logger
	mu          sync.RWMutex
}

// NewManager returns a manager that forgets every shift on restart
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		logger:   logger,
	}
}

// NewManagerWithPersistence returns a manager that writes each shift through
// to persistence
func NewManagerWithPersistence(persistence SessionPersistence, logger zerolog.Logger) *Manager {
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
		logger:      logger,
	}
}

// Create starts a session on config. An empty id gets a generated one;
// configID is the name the config is reloaded by after a restart.
func (m *Manager) Create(id, configID string, config *engine.GameConfig) (*service.Session, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
	} else if !validSessionID(id) {
		return nil, ErrInvalidSessionID
	}

	if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		ConfigID:       configID,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[strings.ToLower(id)] = session

	// A shift that fails to persist still runs in memory
	if m.persistence != nil {
		if err := m.persistence.Save(session); err != nil {
			m.logger.Warn().Err(err).Str("session", id).Msg("failed to persist new session")
		}
	}

	return session, nil
}

// Get returns the session for id, ignoring case. A shift that is only on
// disk is loaded and kept in memory.
func (m *Manager) Get(id string) (*service.Session, error) {
	if !validSessionID(id) {
		return nil, ErrSessionNotFound
	}

	m.mu.RLock()
	_, session, exists := m.find(id)
	m.mu.RUnlock()

	if exists {
		return session, nil
	}

	if m.persistence != nil && m.persistence.Exists(id) {
		session, err := m.persistence.Load(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted session: %w", err)
		}

		m.mu.Lock()
		m.sessions[strings.ToLower(id)] = session
		m.mu.Unlock()

		return session, nil
	}

	return nil, ErrSessionNotFound
}

// GetOrCreate returns the session for id, starting one on config when no
// such shift exists
func (m *Manager) GetOrCreate(id, configID string, config *engine.GameConfig) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, configID, config)
	}
	return nil, err
}

// List returns the sessions held in memory, in no particular order
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}

	return result
}

// Delete ends a shift in memory and on disk
func (m *Manager) Delete(id string) error {
	if !validSessionID(id) {
		return ErrSessionNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key, _, inMemory := m.find(id)
	if inMemory {
		delete(m.sessions, key)
	}

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteFromMemory evicts a shift but leaves its file for a later Get
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, _, exists := m.find(id)
	if !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key)
	return nil
}

// UpdateLastAccessed marks the session as used now so cleanup keeps it
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, session, exists := m.find(id)
	if !exists {
		return ErrSessionNotFound
	}

	session.LastAccessedAt = time.Now()

	if m.persistence != nil {
		if err := m.persistence.Save(session); err != nil {
			m.logger.Warn().Err(err).Str("session", id).Msg("failed to persist session after access update")
		}
	}

	return nil
}

// Save writes one session's engine state through to persistence
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	_, session, exists := m.find(id)
	m.mu.RUnlock()
	if !exists {
		return ErrSessionNotFound
	}

	return m.persistence.Save(session)
}

// CleanupExpiredSessions evicts shifts idle for longer than maxAge and
// reports how many went. Their files stay on disk.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

// Count returns how many shifts are in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID draws 4 hex characters until it finds an ID free both
// in memory and on disk. Callers hold m.mu.
func (m *Manager) generateSessionID() string {
	for {
		bytes := make([]byte, 2)
		rand.Read(bytes)
		id := hex.EncodeToString(bytes)
		if !m.sessionExists(id) && (m.persistence == nil || !m.persistence.Exists(id)) {
			return id
		}
	}
}

// validSessionID accepts IDs that are safe to use as file names
func validSessionID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// find resolves id to its map key, lowercased first and then exact. Callers
// hold m.mu.
func (m *Manager) find(id string) (string, *service.Session, bool) {
	if session, ok := m.sessions[strings.ToLower(id)]; ok {
		return strings.ToLower(id), session, true
	}
	if session, ok := m.sessions[id]; ok {
		return id, session, true
	}
	return "", nil, false
}

func (m *Manager) sessionExists(id string) bool {
	_, _, ok := m.find(id)
	return ok
}

// LoadPersistedSessions brings every shift saved by a previous server run
// back into memory. A file that no longer loads, for example because its
// config was removed, is logged and skipped.
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	restored := 0
	for _, id := range ids {
		if m.sessionExists(id) {
			continue
		}

		session, err := m.persistence.Load(id)
		if err != nil {
			m.logger.Warn().Err(err).Str("session", id).Msg("failed to load persisted session")
			continue
		}

		m.sessions[strings.ToLower(id)] = session
		restored++
	}

	if restored > 0 {
		m.logger.Info().Int("count", restored).Msg("loaded persisted sessions")
	}

	return nil
}

// SaveAllSessions flushes every in-memory shift to persistence, typically on
// shutdown. Every session is attempted; the error counts the failures.
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	sessions := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	m.mu.RUnlock()

	failed := 0
	for _, session := range sessions {
		if err := m.persistence.Save(session); err != nil {
			m.logger.Warn().Err(err).Str("session", session.ID).Msg("failed to save session")
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to save %d sessions", failed)
	}

	return nil
}
