package session

import (
	"sync"
	"time"

	"github.com/quillworks/quill/internal/logger"
)

// Manager owns one ExecutionContext per user and evicts idle ones.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*ExecutionContext

	defaultLevel AutonomyLevel
	historyLimit int
	idleTimeout  time.Duration
	stop         chan struct{}
	stopOnce     sync.Once
}

// NewManager creates a session manager. New sessions start at defaultLevel;
// idleTimeout <= 0 disables eviction.
func NewManager(defaultLevel AutonomyLevel, historyLimit int, idleTimeout time.Duration) *Manager {
	m := &Manager{
		sessions:     make(map[string]*ExecutionContext),
		defaultLevel: defaultLevel,
		historyLimit: historyLimit,
		idleTimeout:  idleTimeout,
		stop:         make(chan struct{}),
	}
	if idleTimeout > 0 {
		go m.evictLoop()
	}
	return m
}

// Get returns the session for a user, creating one on first use.
func (m *Manager) Get(userID string) *ExecutionContext {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ec, ok := m.sessions[userID]; ok {
		ec.Touch()
		return ec
	}
	ec := NewExecutionContext(userID)
	if m.defaultLevel != "" {
		ec.SetAutonomy(m.defaultLevel, nil)
	}
	if m.historyLimit > 0 {
		ec.SetHistoryLimit(m.historyLimit)
	}
	m.sessions[userID] = ec
	return ec
}

// Remove drops a user's session.
func (m *Manager) Remove(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the eviction loop.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Manager) evictLoop() {
	ticker := time.NewTicker(m.idleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.evictIdle()
		}
	}
}

func (m *Manager) evictIdle() {
	cutoff := time.Now().Add(-m.idleTimeout)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, ec := range m.sessions {
		if ec.LastTouched().Before(cutoff) {
			delete(m.sessions, id)
			logger.Debug("evicted idle session for user %s", id)
		}
	}
}
