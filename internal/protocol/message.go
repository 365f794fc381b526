package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgLogin     MessageType = "login"     // 登录（绑定玩家身份）
	MsgReconnect MessageType = "reconnect" // 断线重连
	MsgPing      MessageType = "ping"      // 心跳 ping

	// 房间操作
	MsgJoinGame   MessageType = "join_game"   // 选卡并加入本轮
	MsgLeaveGame  MessageType = "leave_game"  // 大厅倒计时内退出并退款
	MsgBingoClaim MessageType = "bingo_claim" // 宣布中奖

	// 查询
	MsgGetRooms       MessageType = "get_rooms"       // 获取房间列表
	MsgGetBoard       MessageType = "get_board"       // 按卡号获取卡片
	MsgGetLeaderboard MessageType = "get_leaderboard" // 获取赢家榜
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgLoginSuccess MessageType = "login_success" // 登录成功
	MsgReconnected  MessageType = "reconnected"   // 重连成功
	MsgPong         MessageType = "pong"          // 心跳 pong

	// 房间相关
	MsgJoinedSuccess MessageType = "joined_success" // 加入本轮成功
	MsgLeftGame      MessageType = "left_game"      // 退出成功
	MsgPlayerCount   MessageType = "player_count"   // 房间人数变化
	MsgLobbyUpdate   MessageType = "lobby_update"   // 大厅倒计时

	// 游戏流程
	MsgGameStart    MessageType = "game_start"    // 开始开号
	MsgNumberCalled MessageType = "number_called" // 开出一个号码
	MsgGameOver     MessageType = "game_over"     // 本轮结束

	// 账户
	MsgBalanceUpdate MessageType = "balance_update" // 余额变化

	// 查询结果
	MsgRoomList    MessageType = "room_list"
	MsgBoard       MessageType = "board"
	MsgLeaderboard MessageType = "leaderboard"

	// 错误
	MsgError MessageType = "error" // 错误消息
)

// 房间状态
const (
	StatusWaiting = "WAITING"
	StatusPlaying = "PLAYING"
)

// 本轮结束原因
const (
	ReasonWinner           = "winner"
	ReasonNoWinner         = "no_winner"
	ReasonSettlementFailed = "settlement_failed"
)
