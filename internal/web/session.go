package web

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/stupiduntilnot/sponsor/internal/conversation"
)

// Session holds one browser conversation: its in-memory history and the
// mutex that serializes turns. History lives only as long as the session;
// durability is the store's job.
type Session struct {
	ID     string
	UserID string

	mu      sync.Mutex // serializes turns; held across the whole inference call
	history conversation.History

	activeMu   sync.Mutex
	lastActive time.Time
}

// WithHistory runs fn under the session lock, committing the history fn
// returns. Holding the lock across the whole turn guarantees exactly one
// in-flight turn per session; concurrent submits queue here.
func (s *Session) WithHistory(fn func(conversation.History) conversation.History) conversation.History {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = fn(s.history)
	s.touch()
	return s.history
}

// Clear drops the in-memory history. Stored records are untouched.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.touch()
}

// touch records activity. lastActive has its own lock so the eviction pass
// can read it while a turn holds the session lock.
func (s *Session) touch() {
	s.activeMu.Lock()
	s.lastActive = time.Now()
	s.activeMu.Unlock()
}

func (s *Session) idleFor(now time.Time) time.Duration {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	return now.Sub(s.lastActive)
}

// SessionManager stores all live sessions and evicts idle ones.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	idle     time.Duration
	interval time.Duration
}

// NewSessionManager creates a manager. idle/interval <= 0 disables
// eviction.
func NewSessionManager(idle, interval time.Duration) *SessionManager {
	return &SessionManager{
		sessions: map[string]*Session{},
		idle:     idle,
		interval: interval,
	}
}

// GetOrCreate returns the session for id, creating it when id is empty or
// unknown. userID defaults to the session id when not supplied.
func (m *SessionManager) GetOrCreate(id, userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	if id == "" {
		id = uuid.NewString()
	}
	if userID == "" {
		userID = id
	}
	s := &Session{ID: id, UserID: userID, lastActive: time.Now()}
	m.sessions[id] = s
	return s
}

// Get returns the session for id, or nil.
func (m *SessionManager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Len reports the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StartEvictionLoop drops idle sessions on a ticker until ctx ends.
func (m *SessionManager) StartEvictionLoop(ctx context.Context) {
	if m.idle <= 0 || m.interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				m.evictIdleOnce(now)
			}
		}
	}()
}

// evictIdleOnce snapshots the session list and releases the manager lock
// before inspecting per-session state, so a slow in-flight turn never
// stalls session lookup for everyone else.
func (m *SessionManager) evictIdleOnce(now time.Time) int {
	m.mu.Lock()
	candidates := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		candidates = append(candidates, s)
	}
	m.mu.Unlock()

	stale := make([]string, 0)
	for _, s := range candidates {
		if s.idleFor(now) >= m.idle {
			stale = append(stale, s.ID)
		}
	}
	if len(stale) == 0 {
		return 0
	}

	m.mu.Lock()
	evicted := 0
	for _, id := range stale {
		s, ok := m.sessions[id]
		if ok && s.idleFor(now) >= m.idle {
			delete(m.sessions, id)
			evicted++
		}
	}
	remaining := len(m.sessions)
	m.mu.Unlock()

	if evicted > 0 {
		log.Info().Int("evicted", evicted).Int("remaining", remaining).Msg("evicted idle sessions")
	}
	return evicted
}
