// Package session wires character creation, combat and progression into one play
// session and tracks the sessions a server is running.
package session

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// PlayerSession describes one session in progress.
type PlayerSession struct {
	// ID is the session id carried by every log entry of the session.
	ID string
	// RemoteAddr is the client address, or "local" for a terminal session.
	RemoteAddr string
	// CharacterID is zero until a hero is bound to the session.
	CharacterID int64
	// CharName is the hero's display name.
	CharName string
	// Started is when the session was added.
	Started time.Time
}

// Manager tracks the running sessions and which hero each one plays.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*PlayerSession // id → session
	heroes   map[int64]string          // character id → session id
	now      func() time.Time
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*PlayerSession),
		heroes:   make(map[int64]string),
		now:      time.Now,
	}
}

// Add registers a new session.
//
// Precondition: id must be non-empty.
// Postcondition: Returns a copy of the registered session, or an error if id is already registered.
func (m *Manager) Add(id, remoteAddr string) (PlayerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; exists {
		return PlayerSession{}, fmt.Errorf("session %q already registered", id)
	}
	sess := &PlayerSession{ID: id, RemoteAddr: remoteAddr, Started: m.now()}
	m.sessions[id] = sess
	return *sess, nil
}

// Bind records that session id plays the hero characterID.
//
// Postcondition: Returns an error if id is unknown or another session already plays the hero.
func (m *Manager) Bind(id string, characterID int64, charName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.sessions[id]
	if !exists {
		return fmt.Errorf("session %q not found", id)
	}
	if owner, taken := m.heroes[characterID]; taken && owner != id {
		return fmt.Errorf("%s is already being played", charName)
	}
	if sess.CharacterID != 0 {
		delete(m.heroes, sess.CharacterID)
	}
	sess.CharacterID = characterID
	sess.CharName = charName
	m.heroes[characterID] = id
	return nil
}

// Remove forgets session id and releases its hero.
//
// Postcondition: Returns an error if id is not registered.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.sessions[id]
	if !exists {
		return fmt.Errorf("session %q not found", id)
	}
	if sess.CharacterID != 0 {
		delete(m.heroes, sess.CharacterID)
	}
	delete(m.sessions, id)
	return nil
}

// Get returns a copy of session id.
func (m *Manager) Get(id string) (PlayerSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return PlayerSession{}, false
	}
	return *sess, true
}

// List returns copies of all sessions, oldest first.
func (m *Manager) List() []PlayerSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]PlayerSession, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, *sess)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Started.Equal(out[j].Started) {
			return out[i].ID < out[j].ID
		}
		return out[i].Started.Before(out[j].Started)
	})
	return out
}

// Count returns the number of running sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
