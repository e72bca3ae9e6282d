package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_CreateAndGet(t *testing.T) {
	m := NewSessionManager(time.Hour, 24*time.Hour)

	user := User{ID: "sub-123", Email: "a@example.com", Name: "A"}
	token, err := m.Create(user, false)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, ok := m.Get(token)
	require.True(t, ok)
	assert.Equal(t, user, got)
}

func TestSessionManager_TokensAreUnique(t *testing.T) {
	m := NewSessionManager(time.Hour, 24*time.Hour)

	t1, err := m.Create(User{ID: "u1"}, false)
	require.NoError(t, err)
	t2, err := m.Create(User{ID: "u1"}, false)
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2)
}

func TestSessionManager_Destroy(t *testing.T) {
	m := NewSessionManager(time.Hour, 24*time.Hour)

	token, err := m.Create(User{ID: "u1"}, false)
	require.NoError(t, err)

	m.Destroy(token)

	_, ok := m.Get(token)
	assert.False(t, ok)
}

func TestSessionManager_EmptyTokenMisses(t *testing.T) {
	m := NewSessionManager(time.Hour, 24*time.Hour)

	_, ok := m.Get("")
	assert.False(t, ok)
}

func TestSessionManager_TTL(t *testing.T) {
	m := NewSessionManager(time.Hour, 24*time.Hour)

	assert.Equal(t, time.Hour, m.TTL(false))
	assert.Equal(t, 24*time.Hour, m.TTL(true))
}

func TestSessionManager_ShortSessionExpires(t *testing.T) {
	m := NewSessionManager(time.Minute, 24*time.Hour)
	m.sessionTTL = -time.Second

	token, err := m.Create(User{ID: "u1"}, false)
	require.NoError(t, err)

	_, ok := m.Get(token)
	assert.False(t, ok, "session created already expired should miss")
}
