package room

import (
	"context"
	"sync"

	"github.com/palemoky/bingo-hall/internal/apperrors"
	"github.com/palemoky/bingo-hall/internal/game/board"
	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/types"
)

// RoomManager 房间注册表：启动时按配置创建房间，运行期间不增删
type RoomManager struct {
	deps  *Deps
	rooms map[string]*Room
	order []string // 配置顺序
	mu    sync.RWMutex
}

// NewRoomManager 创建房间管理器
func NewRoomManager(configs []Config, deps Deps) *RoomManager {
	rm := &RoomManager{
		deps:  &deps,
		rooms: make(map[string]*Room, len(configs)),
		order: make([]string, 0, len(configs)),
	}
	for _, cfg := range configs {
		if _, dup := rm.rooms[cfg.ID]; dup {
			continue
		}
		rm.rooms[cfg.ID] = newRoom(cfg, rm.deps)
		rm.order = append(rm.order, cfg.ID)
	}
	return rm
}

// GetRoom 获取房间
func (rm *RoomManager) GetRoom(id string) (*Room, error) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	room, ok := rm.rooms[id]
	if !ok {
		return nil, apperrors.ErrUnknownRoom
	}
	return room, nil
}

// Rooms 按配置顺序返回全部房间
func (rm *RoomManager) Rooms() []*Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	out := make([]*Room, 0, len(rm.order))
	for _, id := range rm.order {
		out = append(out, rm.rooms[id])
	}
	return out
}

// TickAll 所有房间各推进一个计时单位，每个房间在自己的锁内完成
func (rm *RoomManager) TickAll() {
	for _, room := range rm.Rooms() {
		room.Tick()
	}
}

// Join 加入房间本轮
func (rm *RoomManager) Join(ctx context.Context, roomID string, client types.ClientInterface, boardNumber int64) (float64, error) {
	room, err := rm.GetRoom(roomID)
	if err != nil {
		return 0, err
	}
	return room.Join(ctx, client, boardNumber)
}

// Claim 宣布中奖
func (rm *RoomManager) Claim(ctx context.Context, roomID, playerID string) (*ClaimResult, error) {
	room, err := rm.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	return room.Claim(ctx, playerID)
}

// Leave 退出本轮
func (rm *RoomManager) Leave(ctx context.Context, roomID, playerID string) (float64, error) {
	room, err := rm.GetRoom(roomID)
	if err != nil {
		return 0, err
	}
	return room.Leave(ctx, playerID)
}

// PlayerOffline 会话断开时通知所有房间
func (rm *RoomManager) PlayerOffline(ctx context.Context, playerID, sessionID string) {
	if playerID == "" {
		return
	}
	for _, room := range rm.Rooms() {
		room.PlayerOffline(ctx, playerID, sessionID)
	}
}

// PlayerOnline 将新会话挂回仍在进行中的本轮，返回挂回的房间
func (rm *RoomManager) PlayerOnline(client types.ClientInterface) []*Room {
	var attached []*Room
	for _, room := range rm.Rooms() {
		if room.PlayerOnline(client) {
			attached = append(attached, room)
		}
	}
	return attached
}

// Board 按卡号生成卡片，与判奖使用同一生成器
func (rm *RoomManager) Board(n int64) board.Board {
	return boardFor(rm.deps.Generator, n)
}

// ActiveRounds 正在开号或已有人押注的房间数
func (rm *RoomManager) ActiveRounds() int {
	n := 0
	for _, room := range rm.Rooms() {
		snap := room.Snapshot()
		if snap.State == RoomStatePlaying || snap.PlayerCount > 0 {
			n++
		}
	}
	return n
}

// GetRoomList 获取房间列表
func (rm *RoomManager) GetRoomList() []protocol.RoomListItem {
	rooms := rm.Rooms()
	items := make([]protocol.RoomListItem, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, room.Snapshot().ToListItem())
	}
	return items
}
