package memory

import (
	"context"
	"sync"
	"time"

	"directline-bridge/internal/domain"
	"directline-bridge/internal/ports/output"
	"directline-bridge/pkg/metrics"

	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure MemorySessionStore implements SessionStore interface
var _ output.SessionStore = (*MemorySessionStore)(nil)

// MemorySessionStore struct - Output adapter for in-memory conversation sessions.
// Sessions are held by value behind a RWMutex; locks are never held across I/O.
// A session is kept until retention has passed beyond its expiry, after which
// Sweep drops it and callers have to reconnect.
type MemorySessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]domain.ConversationSession
	retention time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMemorySessionStore creates a new in-memory session store.
// retention: how long an expired session stays reconnectable before Sweep removes it
func NewMemorySessionStore(retention time.Duration) *MemorySessionStore {
	if retention < 0 {
		retention = 0
	}
	return &MemorySessionStore{
		sessions:  make(map[string]domain.ConversationSession),
		retention: retention,
	}
}

// GetRetention returns the configured retention after expiry
func (m *MemorySessionStore) GetRetention() time.Duration {
	return m.retention
}

// Get returns a copy of the stored session
func (m *MemorySessionStore) Get(conversationID string) (domain.ConversationSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[conversationID]
	return session, ok
}

// Put inserts or replaces the session at its conversation id
func (m *MemorySessionStore) Put(session domain.ConversationSession) {
	m.mu.Lock()
	m.sessions[session.ConversationID] = session
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.SessionsGauge.Set(float64(n))
}

// Delete removes a session. Idempotent.
func (m *MemorySessionStore) Delete(conversationID string) {
	m.mu.Lock()
	delete(m.sessions, conversationID)
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.SessionsGauge.Set(float64(n))
}

// Len returns the number of stored sessions
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// Sweep removes sessions whose expiry plus retention has passed
func (m *MemorySessionStore) Sweep(now time.Time) int {
	m.mu.Lock()
	removed := 0
	for id, session := range m.sessions {
		if now.After(session.ExpiresAt.Add(m.retention)) {
			delete(m.sessions, id)
			removed++
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.SessionsGauge.Set(float64(n))
	return removed
}

// StartCleanupRoutine starts a background goroutine that periodically sweeps
// stale sessions. The goroutine is stopped when Close is called.
func (m *MemorySessionStore) StartCleanupRoutine(interval time.Duration) {
	if interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if removed := m.Sweep(now); removed > 0 {
					logrus.WithField("removed", removed).Info("Swept stale conversation sessions")
				}
			}
		}
	}()
}

// Close stops the cleanup routine if it was started
func (m *MemorySessionStore) Close() {
	if m.cancel != nil {
		m.cancel()
		<-m.done
		m.cancel = nil
	}
}
