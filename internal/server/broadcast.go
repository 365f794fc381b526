package server

import (
	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/types"
)

// GetOnlineCount 获取在线连接数（按需调用）
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// BroadcastToAll 广播消息给所有连接
func (s *Server) BroadcastToAll(msg *protocol.Message) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, client := range s.clients {
		client.SendMessage(msg)
	}
}

// BroadcastToRoom 广播消息给关注该房间的连接
func (s *Server) BroadcastToRoom(roomID string, msg *protocol.Message) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, client := range s.clients {
		if client.InRoom(roomID) {
			client.SendMessage(msg)
		}
	}
}

// ClientsForPlayer 玩家当前所有在线连接
func (s *Server) ClientsForPlayer(playerID string) []types.ClientInterface {
	if playerID == "" {
		return nil
	}
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	var out []types.ClientInterface
	for _, client := range s.clients {
		if client.GetPlayerID() == playerID {
			out = append(out, client)
		}
	}
	return out
}
