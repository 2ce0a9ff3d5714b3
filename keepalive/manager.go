package keepalive

import (
	"context"
	"fmt"
	"sync"
)

// Manager owns keep-alive wrappers for multiple named sessions. Each
// session gets its own independent scheduler; stopping one never affects
// another.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*KeptSession
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*KeptSession),
	}
}

// Connect wraps session with cfg, performs the handshake, and tracks the
// result under name. The wrapper schedules its own probing after warm-up.
func (m *Manager) Connect(ctx context.Context, name string, session Session, cfg Config) (*KeptSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[name]; exists {
		return nil, fmt.Errorf("session %q already connected", name)
	}

	kept := Wrap(session, cfg)
	if err := kept.Connect(ctx); err != nil {
		kept.Close()
		return nil, fmt.Errorf("failed to connect %q: %w", name, err)
	}

	m.sessions[name] = kept
	return kept, nil
}

// Get returns the wrapped session for name.
func (m *Manager) Get(name string) (*KeptSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[name]
	return s, ok
}

// Disconnect stops probing for name and closes the underlying session.
func (m *Manager) Disconnect(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept, ok := m.sessions[name]
	if !ok {
		return fmt.Errorf("session %q not connected", name)
	}

	delete(m.sessions, name)
	return kept.Close()
}

// Statuses returns a snapshot of every tracked session's keep-alive state.
func (m *Manager) Statuses() map[string]Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]Status, len(m.sessions))
	for name, kept := range m.sessions {
		result[name] = kept.Status()
	}
	return result
}

// StopAll stops probing on every tracked session without closing them.
func (m *Manager) StopAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, kept := range m.sessions {
		kept.Stop()
	}
}

// Close disconnects all sessions.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for name, kept := range m.sessions {
		if err := kept.Close(); err != nil {
			lastErr = err
		}
		delete(m.sessions, name)
	}
	return lastErr
}

// Count returns the number of tracked sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Names returns the names of tracked sessions.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.sessions))
	for name := range m.sessions {
		names = append(names, name)
	}
	return names
}
