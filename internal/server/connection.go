package server

import (
	"net/http"

	"github.com/palemoky/bingo-hall/internal/protocol/codec"
	"github.com/palemoky/bingo-hall/internal/types"
)

// handleWebSocket 处理 WebSocket 连接，?codec=json|proto 选择帧格式
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// 获取真实客户端IP
	clientIP := GetClientIP(r)

	// 维护模式检查（最优先）
	if s.IsMaintenanceMode() {
		s.logger.Info("🔧 维护模式，拒绝新连接", "ip", clientIP)
		http.Error(w, "Server is under maintenance, please try again later", http.StatusServiceUnavailable)
		return
	}

	frameCodec, err := codec.ByName(r.URL.Query().Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 来源验证
	if !s.originChecker.Check(r) {
		s.logger.Warn("🚫 来源验证失败", "origin", r.Header.Get("Origin"), "ip", clientIP)
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	// 速率限制检查
	if !s.rateLimiter.Allow(clientIP) {
		s.logger.Warn("🚫 IP 请求过于频繁", "ip", clientIP)
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	// 连接数限制检查，连接断开后释放
	select {
	case s.semaphore <- struct{}{}:
	default:
		s.logger.Warn("🚫 达到最大连接数限制", "max", s.maxConnections, "ip", clientIP)
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		<-s.semaphore
		s.logger.Warn("WebSocket 升级失败", "error", err)
		return
	}

	client := NewClient(s, conn, frameCodec)
	client.IP = clientIP
	s.registerClient(client)

	s.logger.Info("✅ 新连接", "client", client.ID, "ip", clientIP, "codec", frameCodec.Name())

	// 启动客户端读写协程
	go func() {
		defer func() { <-s.semaphore }()
		client.ReadPump(s.baseCtx)
	}()
	go client.WritePump()
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if s.IsMaintenanceMode() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("MAINTENANCE"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// registerClient 注册客户端
func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
}

// unregisterClient 注销客户端
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client.ID]; ok {
		delete(s.clients, client.ID)
		s.logger.Info("❌ 连接已断开", "client", client.ID, "player", client.GetPlayerID())
	}
}

// Interface implementations for types.ServerInterface

var _ types.ServerInterface = (*Server)(nil)

func (s *Server) GetClientByID(id string) types.ClientInterface {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	if c, ok := s.clients[id]; ok {
		return c
	}
	return nil
}

func (s *Server) RegisterClient(id string, client types.ClientInterface) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if c, ok := client.(*Client); ok {
		s.clients[id] = c
	}
}

func (s *Server) UnregisterClient(id string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, id)
}
