package room

import "github.com/palemoky/bingo-hall/internal/protocol"

// RoomState 房间状态
type RoomState int

const (
	RoomStateWaiting RoomState = iota // 大厅倒计时
	RoomStatePlaying                  // 开号中
)

func (s RoomState) String() string {
	if s == RoomStatePlaying {
		return protocol.StatusPlaying
	}
	return protocol.StatusWaiting
}
