package server

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Parallel()

	mClock := quartz.NewMock(t)
	// 5 reqs/sec, 10 reqs/min, 1s ban
	rl := NewRateLimiter(mClock, 5, 10, time.Second)
	ip := "127.0.0.1"

	for i := range 5 {
		assert.True(t, rl.Allow(ip), "request %d should be allowed", i)
	}

	assert.False(t, rl.Allow(ip), "6th request should be blocked")
	assert.True(t, rl.IsBanned(ip))
	assert.False(t, rl.IsBanned("10.0.0.1"))
}

func TestRateLimiter_BanExpires(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mClock := quartz.NewMock(t)
	rl := NewRateLimiter(mClock, 2, 100, time.Second)
	ip := "192.168.1.1"

	assert.True(t, rl.Allow(ip))
	assert.True(t, rl.Allow(ip))
	assert.False(t, rl.Allow(ip))

	mClock.Advance(500 * time.Millisecond).MustWait(ctx)
	assert.False(t, rl.Allow(ip), "still banned")

	mClock.Advance(600 * time.Millisecond).MustWait(ctx)
	assert.False(t, rl.IsBanned(ip))
	assert.True(t, rl.Allow(ip), "ban lifted and second window reset")
}

func TestRateLimiter_MinuteLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mClock := quartz.NewMock(t)
	rl := NewRateLimiter(mClock, 100, 10, time.Second)
	ip := "10.1.1.1"

	for range 10 {
		require.True(t, rl.Allow(ip))
	}
	assert.False(t, rl.Allow(ip), "11th request in the same minute is blocked")

	// 封禁解除后仍在同一分钟内，再次触发
	mClock.Advance(2 * time.Second).MustWait(ctx)
	assert.False(t, rl.Allow(ip))

	mClock.Advance(time.Minute).MustWait(ctx)
	assert.True(t, rl.Allow(ip))
}

func TestRateLimiter_Concurrent(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(quartz.NewMock(t), 50, 1000, time.Minute)
	ip := "172.16.0.1"

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 100 {
		wg.Go(func() {
			if rl.Allow(ip) {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mClock := quartz.NewMock(t)
	rl := NewRateLimiter(mClock, 5, 10, time.Second)

	rl.Allow("1.1.1.1")
	mClock.Advance(5 * time.Minute).MustWait(ctx)
	rl.Allow("2.2.2.2")
	mClock.Advance(6 * time.Minute).MustWait(ctx)

	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.requests, "1.1.1.1")
	assert.Contains(t, rl.requests, "2.2.2.2")
}

func TestRateLimiter_RunCleanupStopsOnCancel(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(quartz.NewMock(t), 5, 10, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, rl.RunCleanup(ctx), context.Canceled)
}

func TestGetClientIP_ProxyHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expectedIP string
	}{
		{
			name:       "Direct connection",
			remoteAddr: "192.168.1.1:12345",
			headers:    map[string]string{},
			expectedIP: "192.168.1.1",
		},
		{
			name:       "X-Forwarded-For multiple IPs",
			remoteAddr: "10.0.0.1:12345",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.1, 10.0.0.2, 10.0.0.3",
			},
			expectedIP: "203.0.113.1",
		},
		{
			name:       "X-Real-IP",
			remoteAddr: "10.0.0.1:12345",
			headers: map[string]string{
				"X-Real-IP": "203.0.113.2",
			},
			expectedIP: "203.0.113.2",
		},
		{
			name:       "X-Forwarded-For takes precedence over X-Real-IP",
			remoteAddr: "10.0.0.1:12345",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.3",
				"X-Real-IP":       "203.0.113.4",
			},
			expectedIP: "203.0.113.3",
		},
		{
			name:       "Malformed remote addr",
			remoteAddr: "pipe",
			headers:    map[string]string{},
			expectedIP: "pipe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.expectedIP, GetClientIP(req))
		})
	}
}

func TestMessageRateLimiter(t *testing.T) {
	t.Parallel()

	ml := NewMessageRateLimiter(quartz.NewMock(t), 5)
	clientID := "client1"

	// 阈值为 4，第 5 条开始警告
	for i := range 5 {
		allowed, warning := ml.AllowMessage(clientID)
		assert.True(t, allowed)
		assert.Equal(t, i == 4, warning, "message %d", i+1)
	}

	allowed, warning := ml.AllowMessage(clientID)
	assert.False(t, allowed)
	assert.True(t, warning)
	assert.Equal(t, 1, ml.GetWarningCount(clientID))
}

func TestMessageRateLimiter_WindowResets(t *testing.T) {
	t.Parallel()

	mClock := quartz.NewMock(t)
	ml := NewMessageRateLimiter(mClock, 3)
	clientID := "test-client"

	for range 5 {
		ml.AllowMessage(clientID)
	}
	allowed, _ := ml.AllowMessage(clientID)
	require.False(t, allowed)

	mClock.Advance(time.Second).MustWait(context.Background())
	allowed, warning := ml.AllowMessage(clientID)
	assert.True(t, allowed)
	assert.False(t, warning)
	assert.Equal(t, 3, ml.GetWarningCount(clientID), "warnings survive window reset")
}

func TestMessageRateLimiter_RemoveClient(t *testing.T) {
	t.Parallel()

	ml := NewMessageRateLimiter(quartz.NewMock(t), 2)
	clientID := "temp-client"

	for range 4 {
		ml.AllowMessage(clientID)
	}
	require.Positive(t, ml.GetWarningCount(clientID))

	ml.RemoveClient(clientID)
	assert.Zero(t, ml.GetWarningCount(clientID))

	allowed, warning := ml.AllowMessage(clientID)
	assert.True(t, allowed)
	assert.False(t, warning)
}

func TestOriginChecker_AllowAll(t *testing.T) {
	t.Parallel()

	req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Origin", "https://evil.com")

	assert.True(t, NewOriginChecker([]string{"*"}).Check(req))
	assert.True(t, NewOriginChecker(nil).Check(req), "empty list allows all")
}

func TestOriginChecker_SpecificOrigins(t *testing.T) {
	t.Parallel()

	oc := NewOriginChecker([]string{"https://example.com", "https://App.Example.com"})

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://example.com", true},
		{"https://app.example.com", true},
		{"https://EXAMPLE.com", true},
		{"https://evil.com", false},
		{"http://example.com", false}, // Different scheme
		{"", true},                    // No origin header (same-origin or local)
	}

	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.allowed, oc.Check(req), "Origin: %s", tt.origin)
	}
}
