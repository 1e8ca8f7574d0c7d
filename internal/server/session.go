package server

import (
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/johan-st/toolbox/internal/access"
	"github.com/johan-st/toolbox/internal/history"
)

// Session represents an active SSH session.
type Session struct {
	ID           string
	User         *access.UserInfo
	RemoteAddr   string
	Mode         string
	StartTime    time.Time
	LastActivity time.Time
	mu           sync.RWMutex
}

// NewSession creates a new session.
func NewSession(user *access.UserInfo, remoteAddr, mode string) *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.New().String(),
		User:         user,
		RemoteAddr:   remoteAddr,
		Mode:         mode,
		StartTime:    now,
		LastActivity: now,
	}
}

// Touch updates the last activity time.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActivity = time.Now()
}

// Duration returns how long the session has been active.
func (s *Session) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.StartTime)
}

// IdleTime returns how long since the last activity.
func (s *Session) IdleTime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.LastActivity)
}

// ToHistorySession converts to a history.Session for storage.
func (s *Session) ToHistorySession() *history.Session {
	return history.NewSession(s.ID, s.User, s.RemoteAddr, s.Mode)
}

// SessionManager manages active sessions.
type SessionManager struct {
	sessions     map[string]*Session
	historyStore *history.Store
	mu           sync.RWMutex
}

// NewSessionManager creates a new session manager.
func NewSessionManager(historyStore *history.Store) *SessionManager {
	return &SessionManager{
		sessions:     make(map[string]*Session),
		historyStore: historyStore,
	}
}

// CreateSession creates and registers a new session.
func (sm *SessionManager) CreateSession(user *access.UserInfo, remoteAddr, mode string) *Session {
	session := NewSession(user, remoteAddr, mode)

	sm.mu.Lock()
	sm.sessions[session.ID] = session
	sm.mu.Unlock()

	// History is best effort
	if sm.historyStore != nil {
		if err := sm.historyStore.CreateSession(session.ToHistorySession()); err != nil {
			log.Warn("failed to record session", "session", session.ID, "err", err)
		}
	}

	return session
}

// GetSession returns a session by ID.
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// EndSession ends a session.
func (sm *SessionManager) EndSession(id string) {
	sm.mu.Lock()
	delete(sm.sessions, id)
	sm.mu.Unlock()

	if sm.historyStore != nil {
		if err := sm.historyStore.EndSession(id); err != nil {
			log.Warn("failed to close session record", "session", id, "err", err)
		}
	}
}

// ListActiveSessions returns all active sessions, oldest first.
func (sm *SessionManager) ListActiveSessions() []*Session {
	sm.mu.RLock()
	sessions := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		sessions = append(sessions, s)
	}
	sm.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartTime.Before(sessions[j].StartTime)
	})
	return sessions
}

// Count returns the number of active sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// UpdateActivity updates the activity time for a session.
func (sm *SessionManager) UpdateActivity(id string) {
	sm.mu.RLock()
	session := sm.sessions[id]
	sm.mu.RUnlock()

	if session != nil {
		session.Touch()
		if sm.historyStore != nil {
			sm.historyStore.UpdateSessionActivity(id)
		}
	}
}
