package transport

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/bingo-hall/internal/logger"
	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/protocol/codec"
)

// readPump 从服务器读取消息
func (c *Client) readPump(conn *websocket.Conn, stop chan struct{}) {
	defer c.handleReadExit(conn, stop)

	setupPongHandler(conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		msg, err := c.codec.Decode(data)
		if err != nil {
			c.logger.Warn("消息解析错误", "error", err)
			continue
		}

		c.processMessage(msg)
	}
}

func (c *Client) handleReadExit(conn *websocket.Conn, stop chan struct{}) {
	if r := recover(); r != nil {
		logger.LogPanic(c.logger, r)
	}
	close(stop)
	_ = conn.Close()

	if c.isClosed() {
		return
	}
	// 重连进行中，由重连循环继续尝试
	if c.reconnecting.Load() {
		return
	}
	if c.ReconnectToken() != "" {
		go c.tryReconnect()
		return
	}

	c.Close()
	if c.OnClose != nil {
		c.OnClose()
	}
}

func setupPongHandler(conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
}

func (c *Client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
		if c.OnError != nil {
			c.OnError(err)
		}
	}
}

func (c *Client) processMessage(msg *protocol.Message) {
	isReconnected := c.handleInternalMessage(msg)

	// 回调处理
	if c.OnMessage != nil {
		c.OnMessage(msg)
	}

	// 同时发送到 channel
	select {
	case c.receive <- msg:
	default:
		c.logger.Warn("接收缓冲区已满，丢弃消息", "type", msg.Type)
	}

	// 重连成功回调放在最后，确保消息已经发送到 channel
	if isReconnected && c.OnReconnect != nil {
		c.OnReconnect()
	}
}

func (c *Client) handleInternalMessage(msg *protocol.Message) bool {
	switch msg.Type {
	case protocol.MsgLoginSuccess:
		if payload, err := codec.ParsePayload[protocol.LoginSuccessPayload](msg); err == nil {
			c.mu.Lock()
			c.playerID = payload.PlayerID
			c.playerName = payload.Name
			c.reconnectToken = payload.ReconnectToken
			c.mu.Unlock()
		}
	case protocol.MsgReconnected:
		c.reconnecting.Store(false)
		return true
	case protocol.MsgError:
		// 重连令牌被拒绝，放弃本次重连
		c.reconnecting.Store(false)
	case protocol.MsgPong:
		if payload, err := codec.ParsePayload[protocol.PongPayload](msg); err == nil {
			latency := time.Now().UnixMilli() - payload.ClientTimestamp
			c.latency.Store(latency)
			if c.OnLatencyUpdate != nil {
				c.OnLatencyUpdate(latency)
			}
		}
	}
	return false
}

// writePump 向服务器写入消息
func (c *Client) writePump(conn *websocket.Conn, send <-chan []byte, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(c.logger, r)
		}
		ticker.Stop()
		_ = conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.codec.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case message := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(frameType, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-stop:
			return

		case <-c.done:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
