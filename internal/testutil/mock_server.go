//go:build !production

package testutil

import (
	"sync"

	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/types"
)

// Hub 内存中的 types.ServerInterface 实现，按客户端当前房间分发广播
type Hub struct {
	mu          sync.RWMutex
	clients     map[string]types.ClientInterface
	maintenance bool
}

// NewHub 创建 Hub 并注册给定客户端
func NewHub(clients ...types.ClientInterface) *Hub {
	h := &Hub{clients: make(map[string]types.ClientInterface)}
	for _, c := range clients {
		h.RegisterClient(c.GetID(), c)
	}
	return h
}

var _ types.ServerInterface = (*Hub)(nil)

func (h *Hub) GetOnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) BroadcastToAll(msg *protocol.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.SendMessage(msg)
	}
}

func (h *Hub) BroadcastToRoom(roomID string, msg *protocol.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.InRoom(roomID) {
			c.SendMessage(msg)
		}
	}
}

func (h *Hub) GetClientByID(id string) types.ClientInterface {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[id]
}

func (h *Hub) ClientsForPlayer(playerID string) []types.ClientInterface {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []types.ClientInterface
	for _, c := range h.clients {
		if playerID != "" && c.GetPlayerID() == playerID {
			out = append(out, c)
		}
	}
	return out
}

func (h *Hub) RegisterClient(id string, client types.ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = client
}

func (h *Hub) UnregisterClient(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

func (h *Hub) IsMaintenanceMode() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.maintenance
}

// SetMaintenance 切换维护模式
func (h *Hub) SetMaintenance(on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.maintenance = on
}
