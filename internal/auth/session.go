package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/khanburhan/tokritrack/internal/cache"
)

const maxSessions = 10000

// SessionManager hands out opaque tokens for signed-in users. Sessions live
// in memory; a restart signs everyone out.
type SessionManager struct {
	sessions    *cache.LRUCache[User]
	sessionTTL  time.Duration
	rememberTTL time.Duration
}

func NewSessionManager(sessionTTL, rememberTTL time.Duration) *SessionManager {
	return &SessionManager{
		sessions:    cache.NewLRUCache[User](maxSessions, sessionTTL),
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
	}
}

// Create mints a session token. Remembered sessions get the longer TTL.
func (m *SessionManager) Create(user User, rememberMe bool) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := hex.EncodeToString(buf)

	m.sessions.SetWithTTL(token, user, m.TTL(rememberMe))
	return token, nil
}

// Get resolves a token to its user. Expired or unknown tokens miss.
func (m *SessionManager) Get(token string) (User, bool) {
	if token == "" {
		return User{}, false
	}
	return m.sessions.Get(token)
}

// Destroy signs the token out
func (m *SessionManager) Destroy(token string) {
	m.sessions.Delete(token)
}

// TTL returns the session lifetime for the given remember-me choice
func (m *SessionManager) TTL(rememberMe bool) time.Duration {
	if rememberMe {
		return m.rememberTTL
	}
	return m.sessionTTL
}

// CleanExpired removes expired sessions, for use with the cache manager
func (m *SessionManager) CleanExpired() int {
	return m.sessions.CleanExpired()
}
