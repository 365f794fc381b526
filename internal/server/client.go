package server

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/palemoky/bingo-hall/internal/logger"
	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/protocol/codec"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小
	maxMessageSize = 4096

	// 发送缓冲区大小
	sendBufferSize = 256

	// 超速警告达到该次数后断开
	maxRateWarnings = 5
)

// Client 一个 WebSocket 连接（会话）；登录后绑定稳定玩家身份
type Client struct {
	ID string // 会话 ID，每个连接唯一
	IP string // 客户端 IP 地址

	playerID string
	name     string
	rooms    map[string]struct{} // 已订阅的房间

	server *Server
	conn   *websocket.Conn
	codec  codec.Codec
	send   chan []byte
	logger *log.Logger

	mu     sync.RWMutex
	closed bool
}

// NewClient 创建新客户端
func NewClient(s *Server, conn *websocket.Conn, c codec.Codec) *Client {
	id := uuid.NewString()
	return &Client{
		ID:     id,
		server: s,
		conn:   conn,
		codec:  c,
		send:   make(chan []byte, sendBufferSize),
		rooms:  make(map[string]struct{}),
		logger: s.logger.With("client", id),
	}
}

// ReadPump 从 WebSocket 读取消息，退出时处理断线
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(c.logger, r)
		}
		c.handleDisconnect(ctx)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("读取错误", "error", err)
			}
			return
		}

		// 消息速率限制检查
		allowed, warning := c.server.messageLimiter.AllowMessage(c.ID)
		if !allowed {
			c.logger.Warn("⚠️ 客户端消息过于频繁", "ip", c.IP)
			c.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeRateLimit, "消息发送过于频繁"))
			// 如果警告次数过多，断开连接
			if c.server.messageLimiter.GetWarningCount(c.ID) > maxRateWarnings {
				c.logger.Warn("🚫 客户端因多次超速被断开连接", "ip", c.IP)
				return
			}
			continue
		}
		if warning {
			c.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeRateLimit, "请求过于频繁，请放慢速度"))
		}

		msg, err := c.codec.Decode(data)
		if err != nil {
			c.logger.Debug("消息解析错误", "error", err)
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}

		// 交给处理器处理
		c.server.handler.Handle(ctx, c, msg)
		codec.PutMessage(msg)
	}
}

// WritePump 向 WebSocket 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(c.logger, r)
		}
		ticker.Stop()
		_ = c.conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.codec.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(frameType, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 非阻塞发送；缓冲区满时关闭连接
func (c *Client) SendMessage(msg *protocol.Message) {
	data, err := c.codec.Encode(msg)
	if err != nil {
		c.logger.Error("消息编码错误", "type", msg.Type, "error", err)
		return
	}

	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return
	}
	full := false
	select {
	case c.send <- data:
	default:
		full = true
	}
	c.mu.RUnlock()

	if full {
		c.logger.Warn("客户端发送缓冲区已满，断开连接")
		c.Close()
	}
}

// handleDisconnect 处理断开连接：会话标记离线，房间按阶段处理参与资格
func (c *Client) handleDisconnect(ctx context.Context) {
	playerID := c.GetPlayerID()
	if playerID != "" {
		c.server.sessionManager.SetOffline(playerID, c.ID)
		c.server.roomManager.PlayerOffline(context.WithoutCancel(ctx), playerID, c.ID)
	}

	c.server.messageLimiter.RemoveClient(c.ID)
	c.server.unregisterClient(c)
	c.Close()
}

// Close 关闭客户端连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// GetID 会话 ID
func (c *Client) GetID() string {
	return c.ID
}

// GetPlayerID 绑定的玩家 ID
func (c *Client) GetPlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// GetName 玩家显示名
func (c *Client) GetName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// SetPlayer 绑定玩家身份
func (c *Client) SetPlayer(playerID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
	c.name = name
}

// JoinRoom 订阅房间事件
func (c *Client) JoinRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[roomID] = struct{}{}
}

// LeaveRoom 取消订阅房间事件
func (c *Client) LeaveRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, roomID)
}

// InRoom 是否订阅了该房间
func (c *Client) InRoom(roomID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.rooms[roomID]
	return ok
}

// Rooms 已订阅的房间，按房间 ID 排序
func (c *Client) Rooms() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.rooms))
}
