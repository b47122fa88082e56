// Package session tracks live play sessions for the API: each session
// owns one engine and a namespaced slice of the shared save store.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/adventure-engine/pkg/engine"
	"github.com/jwebster45206/adventure-engine/pkg/storage"
	"github.com/jwebster45206/adventure-engine/pkg/story"
)

// Session is one live playthrough.
type Session struct {
	ID        uuid.UUID `json:"id"`
	StoryFile string    `json:"story_file"`
	CreatedAt time.Time `json:"created_at"`

	Engine *engine.Engine `json:"-"`

	// detach unhooks external subscribers (the event broadcaster) when
	// the session ends.
	detach func()
}

// OnClose registers a hook to run when the session is deleted or swept.
func (s *Session) OnClose(fn func()) { s.detach = fn }

// Manager owns the session table.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	saves  storage.SaveStore
	logger *slog.Logger
	ttl    time.Duration
}

// NewManager creates a session manager. Sessions idle longer than ttl are
// removed by Sweep; a zero ttl disables sweeping.
func NewManager(saves storage.SaveStore, logger *slog.Logger, ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		saves:    saves,
		logger:   logger,
		ttl:      ttl,
	}
}

// Create starts a session for a story. The engine gets its own namespaced
// view of the save store, keyed by session id.
func (m *Manager) Create(storyFile string, st *story.Story) *Session {
	id := uuid.New()

	opts := []engine.Option{engine.WithLogger(m.logger)}
	if m.saves != nil {
		opts = append(opts, engine.WithSaveStore(storage.Namespace(m.saves, id.String())))
	}

	s := &Session{
		ID:        id,
		StoryFile: storyFile,
		CreatedAt: time.Now(),
		Engine:    engine.New(st, opts...),
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.logger.Info("Session created", "session_id", id, "story", storyFile)
	return s
}

// Get returns a session by id.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// List returns all live sessions.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Delete closes a session's engine and removes it from the table.
func (m *Manager) Delete(id uuid.UUID) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	m.close(s)
	m.logger.Info("Session deleted", "session_id", id)
	return true
}

// Sweep removes sessions whose engines have been idle past the ttl.
func (m *Manager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.Engine.LastUpdated().Before(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, s)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		m.close(s)
		m.logger.Info("Session expired", "session_id", s.ID)
	}
	return len(expired)
}

// Close ends every session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		m.close(s)
	}
}

func (m *Manager) close(s *Session) {
	if s.detach != nil {
		s.detach()
	}
	s.Engine.Close()
}
