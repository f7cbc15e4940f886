// Package session implements the process-wide session manager (§4.8): the
// mapping from identity to Session, the resume-with-replay contract, and
// the manager that owns each session's player table and notification
// channel.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ibukiaudio/ibuki/internal/notify"
	"github.com/ibukiaudio/ibuki/internal/player"
)

// Session owns one listener's notification queue and player table.
type Session struct {
	ID      string
	Channel *notify.Channel

	mu       sync.Mutex
	players  map[string]*player.Player
	attached bool

	resumeTimeout time.Duration
	resumeWaiter  chan struct{}
	destroyed     bool
}

func newSession(id string) *Session {
	return &Session{ID: id, Channel: notify.NewChannel(), players: make(map[string]*player.Player)}
}

// Player returns the player for guildID, creating one via newFn if absent.
func (s *Session) Player(guildID string, newFn func() *player.Player) *player.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[guildID]; ok {
		return p
	}
	p := newFn()
	s.players[guildID] = p
	return p
}

// PlayerIfExists returns the player for guildID without creating one.
func (s *Session) PlayerIfExists(guildID string) (*player.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[guildID]
	return p, ok
}

// RemovePlayer drops a player from the table (e.g. after DELETE).
func (s *Session) RemovePlayer(guildID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, guildID)
}

// Players returns a snapshot of every player currently owned.
func (s *Session) Players() []*player.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*player.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	return out
}

// DisconnectAll disconnects every player owned by this session.
func (s *Session) DisconnectAll() {
	for _, p := range s.Players() {
		p.Disconnect()
	}
}

func (s *Session) SetAttached(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = v
}

func (s *Session) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached
}

// Manager is the process-wide identity-to-session table (§4.8). A single
// RWMutex guards the whole table, so attach/detach on different identities
// share that lock.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// AttachResult reports what Attach decided.
type AttachResult struct {
	Session *Session
	Resumed bool
}

// Attach implements the §4.8 attach semantics. priorID is the session id
// the listener presented, if any; resumeEnabled gates whether an existing
// id is honoured.
func (m *Manager) Attach(priorID string, resumeEnabled bool) AttachResult {
	if priorID != "" && resumeEnabled {
		m.mu.RLock()
		existing, ok := m.sessions[priorID]
		m.mu.RUnlock()
		if ok {
			existing.cancelResumeWait()
			existing.SetAttached(true)
			return AttachResult{Session: existing, Resumed: true}
		}
	}

	fresh := newSession(uuid.NewString())
	m.mu.Lock()
	if priorID != "" {
		if old, ok := m.sessions[priorID]; ok {
			old.DisconnectAll()
			old.Channel.DropQueued()
			delete(m.sessions, priorID)
		}
	}
	m.sessions[fresh.ID] = fresh
	m.mu.Unlock()
	fresh.SetAttached(true)
	return AttachResult{Session: fresh, Resumed: false}
}

// Detach implements the §4.8 detach semantics. graceful reflects whether
// the listener sent an explicit close frame.
func (m *Manager) Detach(id string, graceful bool, resumeEnabled bool, timeout time.Duration) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return
	}
	s.SetAttached(false)

	if graceful || !resumeEnabled || timeout <= 0 {
		m.destroy(id)
		return
	}

	s.mu.Lock()
	s.resumeWaiter = make(chan struct{})
	waiter := s.resumeWaiter
	s.mu.Unlock()

	go func() {
		select {
		case <-waiter:
			return // reattach woke us; timeout race resolved in its favour
		case <-time.After(timeout):
			m.mu.RLock()
			stillThere, ok := m.sessions[id]
			m.mu.RUnlock()
			if ok && stillThere == s && !s.Attached() {
				m.destroy(id)
			}
		}
	}()
}

func (s *Session) cancelResumeWait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resumeWaiter != nil {
		close(s.resumeWaiter)
		s.resumeWaiter = nil
	}
}

func (m *Manager) destroy(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	s.mu.Unlock()
	s.DisconnectAll()
	s.Channel.Close()
}

// Sessions returns a snapshot of every currently live session, for the
// stats collector's counters.
func (m *Manager) Sessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Get returns the session for id, if still alive.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Destroy tears a session down immediately (e.g. driver disconnect event
// calling back into the manager via playerevents).
func (m *Manager) Destroy(id string) { m.destroy(id) }
