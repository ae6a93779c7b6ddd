package wizard

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Manager tracks the open wizard sessions behind the HTTP surface. Each
// session is one Wizard addressed by an opaque token; requests for the same
// token are expected to arrive from the single form driving it.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Wizard
	deals    DealSaver
	logger   *slog.Logger
}

// NewManager creates an empty session manager
func NewManager(deals DealSaver, logger *slog.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Wizard),
		deals:    deals,
		logger:   logger,
	}
}

// Open creates a fresh create-mode session and returns its token
func (m *Manager) Open() (string, *Wizard) {
	token := uuid.NewString()
	w := New(m.deals, m.logger)

	m.mu.Lock()
	m.sessions[token] = w
	m.mu.Unlock()

	m.logger.Debug("wizard session opened", slog.String("token", token))
	return token, w
}

// Get returns the session for the token
func (m *Manager) Get(token string) (*Wizard, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.sessions[token]
	return w, ok
}

// Close discards a session regardless of its draft state
func (m *Manager) Close(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}
