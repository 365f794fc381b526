package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/coder/quartz"
)

const (
	// 重连等待时间
	reconnectTimeout = 2 * time.Minute
	// 会话过期时间
	sessionExpireTime = 10 * time.Minute
	// 清理间隔
	cleanupInterval = time.Minute
)

// PlayerSession 玩家会话（连接与稳定玩家身份的绑定，用于断线重连）
type PlayerSession struct {
	PlayerID       string
	PlayerName     string
	ReconnectToken string
	ClientID       string // 当前绑定的连接

	DisconnectedAt time.Time // 断线时间
	IsOnline       bool      // 是否在线
}

// SessionManager 会话管理器，返回的 PlayerSession 均为副本
type SessionManager struct {
	sessions map[string]*PlayerSession // playerID -> session
	tokens   map[string]string         // token -> playerID
	clock    quartz.Clock
	mu       sync.RWMutex
}

// NewSessionManager 创建会话管理器，clock 为 nil 时使用真实时钟
func NewSessionManager(clock quartz.Clock) *SessionManager {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &SessionManager{
		sessions: make(map[string]*PlayerSession),
		tokens:   make(map[string]string),
		clock:    clock,
	}
}

// Bind 将连接绑定到玩家，每次登录签发新的重连令牌
func (sm *SessionManager) Bind(playerID, playerName, clientID string) PlayerSession {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if old, ok := sm.sessions[playerID]; ok {
		delete(sm.tokens, old.ReconnectToken)
	}

	token := generateToken()
	session := &PlayerSession{
		PlayerID:       playerID,
		PlayerName:     playerName,
		ReconnectToken: token,
		ClientID:       clientID,
		IsOnline:       true,
	}
	sm.sessions[playerID] = session
	sm.tokens[token] = playerID

	return *session
}

// Resume 令牌校验通过后把新连接挂回已有会话
func (sm *SessionManager) Resume(token, playerID, clientID string) (PlayerSession, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.canReconnectLocked(token, playerID) {
		return PlayerSession{}, false
	}
	session := sm.sessions[playerID]
	session.ClientID = clientID
	session.IsOnline = true
	session.DisconnectedAt = time.Time{}
	return *session, true
}

// GetSession 获取会话
func (sm *SessionManager) GetSession(playerID string) (PlayerSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, ok := sm.sessions[playerID]
	if !ok {
		return PlayerSession{}, false
	}
	return *session, true
}

// GetSessionByToken 通过 token 获取会话
func (sm *SessionManager) GetSessionByToken(token string) (PlayerSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	playerID, ok := sm.tokens[token]
	if !ok {
		return PlayerSession{}, false
	}
	return *sm.sessions[playerID], true
}

// SetOffline 连接断开时标记离线，只有仍绑定该连接时才生效
func (sm *SessionManager) SetOffline(playerID, clientID string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, ok := sm.sessions[playerID]
	if !ok || session.ClientID != clientID {
		return false
	}
	session.IsOnline = false
	session.DisconnectedAt = sm.clock.Now()
	return true
}

// DeleteSession 删除会话
func (sm *SessionManager) DeleteSession(playerID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, ok := sm.sessions[playerID]; ok {
		delete(sm.tokens, session.ReconnectToken)
		delete(sm.sessions, playerID)
	}
}

// CanReconnect 检查玩家是否可以重连
func (sm *SessionManager) CanReconnect(token, playerID string) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.canReconnectLocked(token, playerID)
}

func (sm *SessionManager) canReconnectLocked(token, playerID string) bool {
	storedPlayerID, ok := sm.tokens[token]
	if !ok || storedPlayerID != playerID {
		return false
	}

	session, ok := sm.sessions[playerID]
	if !ok {
		return false
	}

	// 检查是否在重连时限内
	if !session.IsOnline && sm.clock.Since(session.DisconnectedAt) > reconnectTimeout {
		return false
	}

	return true
}

// IsOnline 检查玩家是否在线
func (sm *SessionManager) IsOnline(playerID string) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, ok := sm.sessions[playerID]
	return ok && session.IsOnline
}

// Count 会话数量
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// RunCleanup 定期清理过期会话，直到 ctx 取消
func (sm *SessionManager) RunCleanup(ctx context.Context) error {
	return sm.clock.TickerFunc(ctx, cleanupInterval, func() error {
		sm.cleanup()
		return nil
	}, "session", "cleanup").Wait()
}

// cleanup 清理离线超过会话过期时间的会话
func (sm *SessionManager) cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := sm.clock.Now()
	for playerID, session := range sm.sessions {
		if !session.IsOnline && now.Sub(session.DisconnectedAt) > sessionExpireTime {
			delete(sm.tokens, session.ReconnectToken)
			delete(sm.sessions, playerID)
		}
	}
}

// generateToken 生成随机 token
func generateToken() string {
	bytes := make([]byte, 32)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
