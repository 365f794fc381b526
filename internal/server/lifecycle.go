package server

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/protocol/codec"
)

const (
	monitorInterval       = 30 * time.Second
	shutdownCheckInterval = time.Second
)

// monitorStats 定期记录服务器状态
func (s *Server) monitorStats(ctx context.Context) error {
	return s.clock.TickerFunc(ctx, monitorInterval, func() error {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		s.logger.Info("📊 [监控]",
			"online", s.GetOnlineCount(),
			"sessions", s.sessionManager.Count(),
			"active_rounds", s.roomManager.ActiveRounds(),
			"goroutines", runtime.NumGoroutine(),
			"conns", fmt.Sprintf("%d/%d", len(s.semaphore), s.maxConnections),
			"mem_mb", fmt.Sprintf("%.2f", float64(m.Alloc)/1024/1024))
		return nil
	}, "server", "monitor").Wait()
}

// EnterMaintenanceMode 进入维护模式：拒绝新连接和新的加入
func (s *Server) EnterMaintenanceMode() {
	if s.maintenance.Swap(true) {
		return
	}

	s.BroadcastToAll(codec.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance,
		"👷🏻‍♂️ 维护模式：进行中的本轮结束后停机，暂停加入"))

	s.logger.Info("🔧 进入维护模式：停止新连接和加入")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	return s.maintenance.Load()
}

// GracefulShutdown 等待进行中的本轮结束后关闭
// 等待期间游戏时钟仍在运行，已有押注的大厅会照常开始并结算
func (s *Server) GracefulShutdown(timeout time.Duration) {
	// 1. 进入维护模式
	s.EnterMaintenanceMode()

	// 2. 等待本轮结束
	if !s.waitForRounds(timeout) {
		s.logger.Warn("⚠️ 超时，仍有本轮进行中，强制关闭", "active_rounds", s.roomManager.ActiveRounds())
	}

	// 3. 关闭服务器
	s.Shutdown()
}

// waitForRounds 轮询直到没有进行中的本轮，超时返回 false
func (s *Server) waitForRounds(timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := s.clock.NewTicker(shutdownCheckInterval, "server", "shutdown")
	defer ticker.Stop()

	for {
		active := s.roomManager.ActiveRounds()
		if active == 0 {
			s.logger.Info("✅ 所有本轮已结束，即将关闭服务器")
			return true
		}
		s.logger.Info("⏳ 等待本轮结束", "active_rounds", active)
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return false
		}
	}
}

// Shutdown 关闭 HTTP 服务、所有连接与后端
func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("HTTP 服务关闭失败", "error", err)
	}

	// 关闭所有客户端连接
	s.clientsMu.RLock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clientsMu.RUnlock()

	if err := s.backend.Close(); err != nil {
		s.logger.Warn("后端关闭失败", "error", err)
	}

	s.logger.Info("服务器已关闭")
}
