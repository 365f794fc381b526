package session

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_CRUD(t *testing.T) {
	t.Parallel()
	sm := NewSessionManager(quartz.NewMock(t))

	// Bind
	session := sm.Bind("p1", "Player1", "c1")
	assert.Equal(t, "p1", session.PlayerID)
	assert.Equal(t, "Player1", session.PlayerName)
	assert.Equal(t, "c1", session.ClientID)
	assert.NotEmpty(t, session.ReconnectToken)
	assert.True(t, session.IsOnline)

	// Get by ID
	s1, ok := sm.GetSession("p1")
	require.True(t, ok)
	assert.Equal(t, session, s1)

	// Get by Token
	s2, ok := sm.GetSessionByToken(session.ReconnectToken)
	require.True(t, ok)
	assert.Equal(t, session, s2)

	// Delete
	sm.DeleteSession("p1")
	_, ok = sm.GetSession("p1")
	assert.False(t, ok)
	_, ok = sm.GetSessionByToken(session.ReconnectToken)
	assert.False(t, ok)
}

func TestSessionManager_BindRotatesToken(t *testing.T) {
	t.Parallel()
	sm := NewSessionManager(quartz.NewMock(t))

	first := sm.Bind("p1", "Player1", "c1")
	second := sm.Bind("p1", "Player1", "c2")

	assert.NotEqual(t, first.ReconnectToken, second.ReconnectToken)
	assert.False(t, sm.CanReconnect(first.ReconnectToken, "p1"))
	assert.True(t, sm.CanReconnect(second.ReconnectToken, "p1"))
	assert.Equal(t, 1, sm.Count())
}

func TestSessionManager_OfflineOnlyForBoundClient(t *testing.T) {
	t.Parallel()
	mClock := quartz.NewMock(t)
	sm := NewSessionManager(mClock)
	sm.Bind("p1", "Player1", "c2")

	// 旧连接断开不影响新连接
	assert.False(t, sm.SetOffline("p1", "c1"))
	assert.True(t, sm.IsOnline("p1"))

	assert.True(t, sm.SetOffline("p1", "c2"))
	assert.False(t, sm.IsOnline("p1"))
	s, _ := sm.GetSession("p1")
	assert.Equal(t, mClock.Now(), s.DisconnectedAt)
}

func TestSessionManager_CanReconnect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		setup     func(sm *SessionManager, mClock *quartz.Mock) (token, playerID string)
		wantAllow bool
	}{
		{
			name: "online session",
			setup: func(sm *SessionManager, _ *quartz.Mock) (string, string) {
				return sm.Bind("p1", "Player1", "c1").ReconnectToken, "p1"
			},
			wantAllow: true,
		},
		{
			name: "offline within timeout",
			setup: func(sm *SessionManager, mClock *quartz.Mock) (string, string) {
				s := sm.Bind("p1", "Player1", "c1")
				sm.SetOffline("p1", "c1")
				mClock.Advance(time.Minute)
				return s.ReconnectToken, "p1"
			},
			wantAllow: true,
		},
		{
			name: "offline past timeout",
			setup: func(sm *SessionManager, mClock *quartz.Mock) (string, string) {
				s := sm.Bind("p1", "Player1", "c1")
				sm.SetOffline("p1", "c1")
				mClock.Advance(reconnectTimeout + time.Second)
				return s.ReconnectToken, "p1"
			},
			wantAllow: false,
		},
		{
			name: "token of another player",
			setup: func(sm *SessionManager, _ *quartz.Mock) (string, string) {
				s := sm.Bind("p1", "Player1", "c1")
				sm.Bind("p2", "Player2", "c2")
				return s.ReconnectToken, "p2"
			},
			wantAllow: false,
		},
		{
			name: "unknown token",
			setup: func(sm *SessionManager, _ *quartz.Mock) (string, string) {
				sm.Bind("p1", "Player1", "c1")
				return "nope", "p1"
			},
			wantAllow: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mClock := quartz.NewMock(t)
			sm := NewSessionManager(mClock)
			token, playerID := tt.setup(sm, mClock)
			assert.Equal(t, tt.wantAllow, sm.CanReconnect(token, playerID))
		})
	}
}

func TestSessionManager_Resume(t *testing.T) {
	t.Parallel()
	sm := NewSessionManager(quartz.NewMock(t))
	s := sm.Bind("p1", "Player1", "c1")
	sm.SetOffline("p1", "c1")

	resumed, ok := sm.Resume(s.ReconnectToken, "p1", "c9")
	require.True(t, ok)
	assert.Equal(t, "c9", resumed.ClientID)
	assert.True(t, resumed.IsOnline)
	assert.True(t, resumed.DisconnectedAt.IsZero())
	assert.Equal(t, s.ReconnectToken, resumed.ReconnectToken)

	_, ok = sm.Resume("bad", "p1", "c10")
	assert.False(t, ok)
}

func TestSessionManager_CleanupExpired(t *testing.T) {
	t.Parallel()

	mClock := quartz.NewMock(t)
	sm := NewSessionManager(mClock)
	sm.Bind("gone", "Gone", "c1")
	sm.Bind("stay", "Stay", "c2")
	sm.SetOffline("gone", "c1")

	mClock.Advance(sessionExpireTime - time.Second)
	sm.cleanup()
	_, ok := sm.GetSession("gone")
	assert.True(t, ok, "not expired yet")

	mClock.Advance(2 * time.Second)
	sm.cleanup()
	_, ok = sm.GetSession("gone")
	assert.False(t, ok)
	_, ok = sm.GetSession("stay")
	assert.True(t, ok, "online sessions never expire")
}

func TestSessionManager_RunCleanupStopsOnCancel(t *testing.T) {
	t.Parallel()

	sm := NewSessionManager(quartz.NewMock(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sm.RunCleanup(ctx), context.Canceled)
}
