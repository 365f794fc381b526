package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// RateLimiter 按 IP 的连接速率限制器
type RateLimiter struct {
	requests map[string]*clientRate
	clock    quartz.Clock
	mu       sync.Mutex

	// 配置
	maxRequestsPerSecond int           // 每秒最大请求数
	maxRequestsPerMinute int           // 每分钟最大请求数
	banDuration          time.Duration // 封禁时长
}

// clientRate 客户端速率记录
type clientRate struct {
	secondCount int       // 当前秒请求数
	minuteCount int       // 当前分钟请求数
	lastSecond  time.Time // 上次秒级计数时间
	lastMinute  time.Time // 上次分钟计数时间
	bannedUntil time.Time // 封禁到期时间
}

// NewRateLimiter 创建速率限制器
func NewRateLimiter(clock quartz.Clock, maxPerSecond, maxPerMinute int, banDuration time.Duration) *RateLimiter {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &RateLimiter{
		requests:             make(map[string]*clientRate),
		clock:                clock,
		maxRequestsPerSecond: maxPerSecond,
		maxRequestsPerMinute: maxPerMinute,
		banDuration:          banDuration,
	}
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	rate, exists := rl.requests[ip]

	if !exists {
		rl.requests[ip] = &clientRate{
			secondCount: 1,
			minuteCount: 1,
			lastSecond:  now,
			lastMinute:  now,
		}
		return true
	}

	// 检查是否被封禁
	if now.Before(rate.bannedUntil) {
		return false
	}

	// 重置秒级计数
	if now.Sub(rate.lastSecond) >= time.Second {
		rate.secondCount = 0
		rate.lastSecond = now
	}

	// 重置分钟计数
	if now.Sub(rate.lastMinute) >= time.Minute {
		rate.minuteCount = 0
		rate.lastMinute = now
	}

	rate.secondCount++
	rate.minuteCount++

	// 检查是否超限
	if rate.secondCount > rl.maxRequestsPerSecond || rate.minuteCount > rl.maxRequestsPerMinute {
		rate.bannedUntil = now.Add(rl.banDuration)
		log.Warn("⚠️ IP 因请求过于频繁被暂时封禁", "ip", ip, "ban", rl.banDuration)
		return false
	}

	return true
}

// IsBanned 检查 IP 是否被封禁
func (rl *RateLimiter) IsBanned(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rate, exists := rl.requests[ip]
	if !exists {
		return false
	}
	return rl.clock.Now().Before(rate.bannedUntil)
}

// RunCleanup 定期清理过期记录，直到 ctx 取消
func (rl *RateLimiter) RunCleanup(ctx context.Context) error {
	return rl.clock.TickerFunc(ctx, 5*time.Minute, func() error {
		rl.cleanup()
		return nil
	}, "ratelimit", "cleanup").Wait()
}

// cleanup 删除超过 10 分钟没有请求且未被封禁的记录
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	for ip, rate := range rl.requests {
		if now.Sub(rate.lastMinute) > 10*time.Minute && now.After(rate.bannedUntil) {
			delete(rl.requests, ip)
		}
	}
}

// --- 来源验证 ---

// OriginChecker 来源验证器
type OriginChecker struct {
	allowedOrigins map[string]bool
	allowAll       bool
}

// NewOriginChecker 创建来源验证器，列表为空时允许所有来源
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{
		allowedOrigins: make(map[string]bool),
		allowAll:       len(origins) == 0,
	}

	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
			return oc
		}
		oc.allowedOrigins[strings.ToLower(origin)] = true
	}

	return oc
}

// Check 检查来源是否允许
func (oc *OriginChecker) Check(r *http.Request) bool {
	if oc.allowAll {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		// 没有 Origin 头，可能是同源请求或本地客户端
		return true
	}

	return oc.allowedOrigins[strings.ToLower(origin)]
}

// --- 辅助函数 ---

// GetClientIP 获取客户端真实 IP
func GetClientIP(r *http.Request) string {
	// 检查代理头
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// 取第一个 IP（最原始的客户端）
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	// 从连接中获取
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// --- 消息速率限制 ---

// MessageRateLimiter 消息速率限制器（针对已连接的客户端）
type MessageRateLimiter struct {
	limits map[string]*messageRate
	clock  quartz.Clock
	mu     sync.Mutex

	maxMessagesPerSecond int
	warningThreshold     int // 警告阈值
}

type messageRate struct {
	count     int
	lastReset time.Time
	warnings  int // 警告次数
}

// NewMessageRateLimiter 创建消息速率限制器
func NewMessageRateLimiter(clock quartz.Clock, maxPerSecond int) *MessageRateLimiter {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &MessageRateLimiter{
		limits:               make(map[string]*messageRate),
		clock:                clock,
		maxMessagesPerSecond: maxPerSecond,
		warningThreshold:     maxPerSecond * 4 / 5,
	}
}

// AllowMessage 检查是否允许处理消息
func (ml *MessageRateLimiter) AllowMessage(clientID string) (allowed bool, warning bool) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	now := ml.clock.Now()
	rate, exists := ml.limits[clientID]

	if !exists {
		ml.limits[clientID] = &messageRate{
			count:     1,
			lastReset: now,
		}
		return true, false
	}

	// 如果超过 1 秒，重置计数
	if now.Sub(rate.lastReset) >= time.Second {
		rate.count = 1
		rate.lastReset = now
		return true, false
	}

	rate.count++

	// 超过限制
	if rate.count > ml.maxMessagesPerSecond {
		rate.warnings++
		return false, true
	}

	// 接近限制，发出警告
	if rate.count > ml.warningThreshold {
		return true, true
	}

	return true, false
}

// GetWarningCount 获取警告次数
func (ml *MessageRateLimiter) GetWarningCount(clientID string) int {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	rate, exists := ml.limits[clientID]
	if !exists {
		return 0
	}
	return rate.warnings
}

// RemoveClient 移除客户端记录
func (ml *MessageRateLimiter) RemoveClient(clientID string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	delete(ml.limits, clientID)
}
