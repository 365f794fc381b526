package room

import (
	"context"
	"slices"
	"time"

	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/server/storage"
)

// Snapshot 房间只读视图
type Snapshot struct {
	ID            string
	Stake         float64
	LobbyDuration int
	State         RoomState
	Timer         int
	Called        []int
	PlayerCount   int
	Players       []string // 已排序的 playerID
	RoundID       string
}

// Snapshot 返回当前状态副本
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() Snapshot {
	players := make([]string, 0, len(r.players))
	for id := range r.players {
		players = append(players, id)
	}
	slices.Sort(players)

	return Snapshot{
		ID:            r.cfg.ID,
		Stake:         r.cfg.Stake,
		LobbyDuration: r.cfg.LobbyDuration,
		State:         r.state,
		Timer:         r.timer,
		Called:        r.called.Numbers(),
		PlayerCount:   len(r.players),
		Players:       players,
		RoundID:       r.roundID,
	}
}

// ToRoomData 将快照转换为可序列化的 RoomData
func (s Snapshot) ToRoomData() *storage.RoomData {
	return &storage.RoomData{
		ID:          s.ID,
		Stake:       s.Stake,
		Status:      s.State.String(),
		Timer:       s.Timer,
		Called:      s.Called,
		PlayerCount: s.PlayerCount,
		Players:     s.Players,
		RoundID:     s.RoundID,
		UpdatedAt:   time.Now().Unix(),
	}
}

// ToListItem 转换为房间列表项
func (s Snapshot) ToListItem() protocol.RoomListItem {
	return protocol.RoomListItem{
		RoomID:        s.ID,
		Stake:         s.Stake,
		Status:        s.State.String(),
		Timer:         s.Timer,
		PlayerCount:   s.PlayerCount,
		CalledCount:   len(s.Called),
		LobbyDuration: s.LobbyDuration,
	}
}

// ToStateDTO 转换为重连恢复用的房间状态
func (s Snapshot) ToStateDTO() *protocol.RoomStateDTO {
	return &protocol.RoomStateDTO{
		RoomID:      s.ID,
		Status:      s.State.String(),
		Timer:       s.Timer,
		Called:      s.Called,
		PlayerCount: s.PlayerCount,
	}
}

// saveSnapshotAsync 在持锁状态下取快照，异步写入存储
func (r *Room) saveSnapshotAsync() {
	if r.deps.Store == nil {
		return
	}
	data := r.snapshotLocked().ToRoomData()
	go func() {
		if err := r.deps.Store.SaveRoom(context.Background(), data); err != nil {
			r.logger.Warn("保存房间快照失败", "error", err)
		}
	}()
}
