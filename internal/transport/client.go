// Package transport 终端客户端的 WebSocket 连接：读写协程、心跳与断线重连
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/protocol/codec"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// 心跳检测间隔
	heartbeatInterval = 5 * time.Second
	// 最大重连次数
	maxReconnectAttempts = 5
	// 重连间隔
	reconnectInterval = 2 * time.Second

	bufferSize = 256
)

var (
	ErrClosed           = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
	ErrReceiveTimeout   = errors.New("receive timeout")
	ErrNoReconnectToken = errors.New("no reconnect token")
)

// Client WebSocket 客户端
type Client struct {
	ServerURL string
	codec     codec.Codec
	logger    *log.Logger
	dialer    websocket.Dialer

	conn    *websocket.Conn
	send    chan []byte // 当前连接的发送队列，重连后替换
	receive chan *protocol.Message
	done    chan struct{}

	playerID       string
	playerName     string
	reconnectToken string // 重连令牌

	// 网络延迟（毫秒）
	latency atomic.Int64

	// 回调
	OnMessage       func(*protocol.Message) // 消息回调
	OnError         func(error)             // 错误回调
	OnClose         func()                  // 关闭回调
	OnReconnecting  func(attempt, maxTries int)
	OnReconnect     func()      // 重连成功回调
	OnLatencyUpdate func(int64) // 延迟更新回调

	mu             sync.RWMutex
	closed         bool
	reconnecting   atomic.Bool
	reconnectDelay time.Duration
}

// NewClient 创建客户端；serverURL 形如 ws://host:port/ws，帧格式通过 ?codec 告知服务器
func NewClient(serverURL string, c codec.Codec, logger *log.Logger) (*Client, error) {
	if c == nil {
		c = codec.JSON
	}
	if logger == nil {
		logger = log.Default()
	}

	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}
	q := u.Query()
	q.Set("codec", c.Name())
	u.RawQuery = q.Encode()

	return &Client{
		ServerURL:      u.String(),
		codec:          c,
		logger:         logger,
		dialer:         websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		send:           make(chan []byte, bufferSize),
		receive:        make(chan *protocol.Message, bufferSize),
		done:           make(chan struct{}),
		reconnectDelay: reconnectInterval,
	}, nil
}

// Connect 连接服务器
func (c *Client) Connect(ctx context.Context) error {
	conn, resp, err := c.dialer.DialContext(ctx, c.ServerURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return err
	}
	c.attach(conn)
	return nil
}

// attach 绑定新连接并启动读写协程
func (c *Client) attach(conn *websocket.Conn) {
	send := make(chan []byte, bufferSize)

	c.mu.Lock()
	c.conn = conn
	c.send = send
	c.mu.Unlock()

	stop := make(chan struct{})
	go c.readPump(conn, stop)
	go c.writePump(conn, send, stop)
}

// SendMessage 发送消息
func (c *Client) SendMessage(msg *protocol.Message) error {
	data, err := c.codec.Encode(msg)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Receive 接收消息 (阻塞)
func (c *Client) Receive() (*protocol.Message, error) {
	select {
	case msg := <-c.receive:
		return msg, nil
	case <-c.done:
		return nil, ErrClosed
	}
}

// ReceiveWithTimeout 带超时接收消息
func (c *Client) ReceiveWithTimeout(timeout time.Duration) (*protocol.Message, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case msg := <-c.receive:
		return msg, nil
	case <-t.C:
		return nil, ErrReceiveTimeout
	case <-c.done:
		return nil, ErrClosed
	}
}

// Close 关闭连接，不再重连
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
}

// IsConnected 是否已连接
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed && c.conn != nil
}

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Codec 当前帧格式
func (c *Client) Codec() codec.Codec {
	return c.codec
}

// PlayerID 登录后的玩家 ID
func (c *Client) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// PlayerName 登录后的显示名
func (c *Client) PlayerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerName
}

// ReconnectToken 当前重连令牌
func (c *Client) ReconnectToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reconnectToken
}

// GetLatency 获取当前延迟（毫秒）
func (c *Client) GetLatency() int64 {
	return c.latency.Load()
}

// IsReconnecting 是否正在重连
func (c *Client) IsReconnecting() bool {
	return c.reconnecting.Load()
}

// --- 便捷方法 ---

// Login 绑定玩家身份
func (c *Client) Login(playerID, firstName string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgLogin, protocol.LoginPayload{
		PlayerID:  playerID,
		FirstName: firstName,
	}))
}

// JoinGame 选卡并加入本轮
func (c *Client) JoinGame(roomID string, boardNumber int64) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgJoinGame, protocol.JoinGamePayload{
		RoomID:      roomID,
		BoardNumber: boardNumber,
	}))
}

// LeaveGame 大厅倒计时内退出
func (c *Client) LeaveGame(roomID string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgLeaveGame, protocol.LeaveGamePayload{RoomID: roomID}))
}

// ClaimBingo 宣布中奖
func (c *Client) ClaimBingo(roomID string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgBingoClaim, protocol.BingoClaimPayload{RoomID: roomID}))
}

// GetRooms 获取房间列表
func (c *Client) GetRooms() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetRooms, nil))
}

// GetBoard 按卡号获取卡片
func (c *Client) GetBoard(boardNumber int64) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetBoard, protocol.GetBoardPayload{BoardNumber: boardNumber}))
}

// GetLeaderboard 获取赢家榜
func (c *Client) GetLeaderboard(limit int) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{Limit: limit}))
}

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}

// Reconnect 手动发送重连请求
func (c *Client) Reconnect() error {
	token, playerID := c.ReconnectToken(), c.PlayerID()
	if token == "" || playerID == "" {
		return ErrNoReconnectToken
	}
	return c.SendMessage(codec.MustNewMessage(protocol.MsgReconnect, protocol.ReconnectPayload{
		Token:    token,
		PlayerID: playerID,
	}))
}

// StartHeartbeat 启动心跳检测
func (c *Client) StartHeartbeat() {
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if c.IsConnected() && !c.IsReconnecting() {
					_ = c.Ping()
				}
			case <-c.done:
				return
			}
		}
	}()
}

// tryReconnect 尝试重连
func (c *Client) tryReconnect() {
	if !c.reconnecting.CompareAndSwap(false, true) {
		return
	}

	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		c.logger.Info("🔄 尝试重连", "attempt", attempt, "max", maxReconnectAttempts)
		if c.OnReconnecting != nil {
			c.OnReconnecting(attempt, maxReconnectAttempts)
		}

		select {
		case <-time.After(c.reconnectDelay):
		case <-c.done:
			c.reconnecting.Store(false)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.dialer.HandshakeTimeout)
		conn, resp, err := c.dialer.DialContext(ctx, c.ServerURL, nil)
		cancel()
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err != nil {
			c.logger.Warn("重连失败", "error", err)
			continue
		}

		c.attach(conn)
		if err := c.Reconnect(); err != nil {
			c.logger.Warn("发送重连请求失败", "error", err)
			_ = conn.Close()
			continue
		}

		// 收到 reconnected 后清除重连状态
		return
	}

	c.logger.Error("❌ 重连失败，已达最大尝试次数")
	c.reconnecting.Store(false)
	c.Close()
	if c.OnClose != nil {
		c.OnClose()
	}
}
