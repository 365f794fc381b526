package types

import (
	"context"

	"github.com/palemoky/bingo-hall/internal/protocol"
)

// ServerInterface 定义服务器接口（用于打破循环依赖）
type ServerInterface interface {
	Broadcaster
	GetOnlineCount() int
	GetClientByID(id string) ClientInterface
	ClientsForPlayer(playerID string) []ClientInterface
	RegisterClient(id string, client ClientInterface)
	UnregisterClient(id string)
	IsMaintenanceMode() bool
}

// Broadcaster 房间引擎的出站通道
type Broadcaster interface {
	// BroadcastToAll 发送给所有在线连接
	BroadcastToAll(msg *protocol.Message)
	// BroadcastToRoom 发送给当前关注该房间的连接
	BroadcastToRoom(roomID string, msg *protocol.Message)
}

// ClientInterface 定义客户端接口
type ClientInterface interface {
	GetID() string       // 会话 ID，每个连接唯一
	GetPlayerID() string // 登录后绑定的玩家 ID
	GetName() string
	SetPlayer(playerID, name string)
	JoinRoom(roomID string) // 订阅房间事件，可同时订阅多个房间
	LeaveRoom(roomID string)
	InRoom(roomID string) bool
	Rooms() []string
	SendMessage(msg *protocol.Message)
	Close()
}

// Identity 外部稳定身份
type Identity struct {
	PlayerID  string
	FirstName string
	Username  string
}

// Account 账本中的玩家记录
type Account struct {
	PlayerID string
	Name     string
	Balance  float64
	Created  bool // 本次调用新建（已发放新手奖励）
}

// Ledger 结算账本
// Debit 余额不足时返回 apperrors.ErrInsufficientFunds 且不修改余额
type Ledger interface {
	FindOrCreateUser(ctx context.Context, id Identity) (*Account, error)
	Balance(ctx context.Context, playerID string) (float64, error)
	Debit(ctx context.Context, playerID string, amount float64) (float64, error)
	Credit(ctx context.Context, playerID string, amount float64) (float64, error)
}
