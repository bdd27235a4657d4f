// Package session implements server-side admin sessions: an in-memory store
// keyed by opaque cookie IDs, with identifier regeneration at login and
// per-session CSRF tokens.
package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// csrfTokenBytes is the length of the raw CSRF token before hex encoding.
const csrfTokenBytes = 32

// Session holds the per-browser state tied to the admin cookie. Fields are
// only mutated by the Manager while holding its lock.
type Session struct {
	// ID is the opaque identifier carried by the cookie.
	ID string
	// LoggedIn reports whether the session is authenticated.
	LoggedIn bool
	// AdminID is the id of the authenticated operator, zero otherwise.
	AdminID int64
	// AdminName is the username of the authenticated operator.
	AdminName string
	// ExpiresAt is when the session stops being honored.
	ExpiresAt time.Time

	csrfToken string
}

// Manager owns all live sessions. Safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	lifetime time.Duration
}

// NewManager creates a Manager whose sessions live for the given duration
// past their last use.
func NewManager(lifetime time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		lifetime: lifetime,
	}
}

// Start creates a new anonymous session and returns it.
func (m *Manager) Start() *Session {
	s := &Session{
		ID:        uuid.NewString(),
		ExpiresAt: time.Now().Add(m.lifetime),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s
}

// Get returns the session with the given ID, extending its lifetime, or nil
// if the ID is unknown or the session has expired. Expired sessions are
// dropped from the store.
func (m *Manager) Get(id string) *Session {
	if id == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	if time.Now().After(s.ExpiresAt) {
		delete(m.sessions, id)
		return nil
	}

	s.ExpiresAt = time.Now().Add(m.lifetime)
	return s
}

// Login marks the session authenticated and regenerates its identifier to
// defeat fixation attacks. The CSRF token and expiry carry over. It returns
// the session under its new ID, or nil if the old ID is unknown.
func (m *Manager) Login(id string, adminID int64, username string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil
	}

	delete(m.sessions, id)
	s.ID = uuid.NewString()
	s.LoggedIn = true
	s.AdminID = adminID
	s.AdminName = username
	s.ExpiresAt = time.Now().Add(m.lifetime)
	m.sessions[s.ID] = s

	return s
}

// Destroy removes the session with the given ID. Unknown IDs are ignored.
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// CSRFToken returns the session's CSRF token, generating one on first use.
// The token is stable for the lifetime of the session, including across
// identifier regeneration. Returns an empty string for unknown sessions.
func (m *Manager) CSRFToken(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ""
	}
	if s.csrfToken == "" {
		s.csrfToken = newCSRFToken()
	}
	return s.csrfToken
}

// ValidateCSRF compares candidate against the session's token in constant
// time. It returns false when the session is unknown, has no token yet, or
// the candidate is empty.
func (m *Manager) ValidateCSRF(id, candidate string) bool {
	if candidate == "" {
		return false
	}

	m.mu.RLock()
	s, ok := m.sessions[id]
	var token string
	if ok {
		token = s.csrfToken
	}
	m.mu.RUnlock()

	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(candidate)) == 1
}

// newCSRFToken returns a hex-encoded 256-bit random token.
func newCSRFToken() string {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("session: csrf token generation: %v", err))
	}
	return hex.EncodeToString(b)
}
