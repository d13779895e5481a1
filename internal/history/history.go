// Package history keeps per-session conversation logs. Context never leaks
// across sessions: every front-end supplies its own session key.
package history

import (
	"sync"
	"time"

	"book-chatter/internal/llm"
)

type Turn struct {
	Role    string
	Content string
	At      time.Time
}

type session struct {
	turns    []Turn
	lastSeen time.Time
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*session
	now      func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

func (m *Manager) AppendUser(sessionID, content string) {
	m.append(sessionID, "user", content)
}

func (m *Manager) AppendAssistant(sessionID, content string) {
	m.append(sessionID, "assistant", content)
}

func (m *Manager) append(sessionID, role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[sessionID]
	if s == nil {
		s = &session{}
		m.sessions[sessionID] = s
	}
	now := m.now()
	s.turns = append(s.turns, Turn{Role: role, Content: content, At: now})
	s.lastSeen = now
}

// Recent returns the last n turns of a session as LLM messages, oldest
// first. n <= 0 returns the whole log.
func (m *Manager) Recent(sessionID string, n int) []llm.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.sessions[sessionID]
	if s == nil {
		return nil
	}
	turns := s.turns
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		out = append(out, llm.Message{Role: t.Role, Content: t.Content})
	}
	return out
}

func (m *Manager) Reset(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// Prune drops sessions idle for longer than ttl and returns how many went
// away.
func (m *Manager) Prune(ttl time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-ttl)
	n := 0
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

func (m *Manager) Sessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
