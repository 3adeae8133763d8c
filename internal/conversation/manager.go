package conversation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"basegraph.app/reviewdesk/common/id"
	"basegraph.app/reviewdesk/common/llm"
)

// Manager hands out sessions by handle. Each handle maps to an isolated
// transcript; nothing is shared between handles.
type Manager struct {
	llm         llm.Invoker
	sessionOpts []Option
	newID       func() string
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

type ManagerOption func(*Manager)

// WithSessionOptions applies opts to every session the manager creates.
func WithSessionOptions(opts ...Option) ManagerOption {
	return func(m *Manager) {
		m.sessionOpts = append(m.sessionOpts, opts...)
	}
}

// WithIDGenerator replaces the snowflake handle generator.
func WithIDGenerator(newID func() string) ManagerOption {
	return func(m *Manager) {
		m.newID = newID
	}
}

// WithManagerClock overrides time.Now for the manager and its sessions.
func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(invoker llm.Invoker, opts ...ManagerOption) *Manager {
	m := &Manager{
		llm:      invoker,
		newID:    id.NewString,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts an empty session and returns its handle.
func (m *Manager) Create() (string, *Session) {
	opts := append([]Option{WithClock(m.now)}, m.sessionOpts...)
	session := NewSession(m.llm, opts...)

	m.mu.Lock()
	defer m.mu.Unlock()
	handle := m.newID()
	m.sessions[handle] = session
	return handle, session
}

func (m *Manager) Get(handle string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[handle]
	return session, ok
}

// Delete forgets a session. Reports whether it existed.
func (m *Manager) Delete(handle string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[handle]
	delete(m.sessions, handle)
	return ok
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// PruneIdle drops sessions unused for longer than maxIdle and returns how many were removed.
func (m *Manager) PruneIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for handle, session := range m.sessions {
		if session.LastUsed().Before(cutoff) {
			delete(m.sessions, handle)
			removed++
		}
	}
	return removed
}

// RunJanitor prunes idle sessions every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	if interval <= 0 || maxIdle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := m.PruneIdle(maxIdle); removed > 0 {
				slog.InfoContext(ctx, "pruned idle chat sessions", "removed", removed, "remaining", m.Len())
			}
		}
	}
}
