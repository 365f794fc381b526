package protocol

// --- 客户端请求 Payloads ---

// LoginPayload 登录请求
type LoginPayload struct {
	PlayerID  string `json:"player_id"` // 外部稳定身份
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

// ReconnectPayload 断线重连请求
type ReconnectPayload struct {
	Token    string `json:"token"`     // 重连令牌
	PlayerID string `json:"player_id"` // 玩家 ID
}

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// JoinGamePayload 加入本轮请求
type JoinGamePayload struct {
	RoomID      string `json:"room_id"`
	BoardNumber int64  `json:"board_number"`
}

// LeaveGamePayload 退出本轮请求
type LeaveGamePayload struct {
	RoomID string `json:"room_id"`
}

// BingoClaimPayload 中奖声明
type BingoClaimPayload struct {
	RoomID string `json:"room_id"`
}

// GetBoardPayload 获取卡片请求
type GetBoardPayload struct {
	BoardNumber int64 `json:"board_number"`
}

// GetLeaderboardPayload 获取赢家榜请求
type GetLeaderboardPayload struct {
	Limit int `json:"limit"`
}

// --- 服务端响应 Payloads ---

// LoginSuccessPayload 登录成功响应
type LoginSuccessPayload struct {
	PlayerID       string   `json:"player_id"`
	Name           string   `json:"name"`
	Balance        float64  `json:"balance"`
	ReconnectToken string   `json:"reconnect_token"`
	RoomID         string   `json:"room_id,omitempty"`  // 仍在进行中的第一个房间
	RoomIDs        []string `json:"room_ids,omitempty"` // 仍在进行中的全部房间
}

// ReconnectedPayload 重连成功响应
type ReconnectedPayload struct {
	PlayerID string        `json:"player_id"`
	Name     string        `json:"name"`
	Balance  float64       `json:"balance"`
	Room     *RoomStateDTO `json:"room,omitempty"` // 如果仍在本轮中
	Board    *BoardPayload `json:"board,omitempty"`
	RoomIDs  []string      `json:"room_ids,omitempty"` // 仍在进行中的全部房间
}

// RoomStateDTO 房间状态（用于重连恢复）
type RoomStateDTO struct {
	RoomID      string `json:"room_id"`
	Status      string `json:"status"`
	Timer       int    `json:"timer"`
	Called      []int  `json:"called"`
	PlayerCount int    `json:"player_count"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// JoinedSuccessPayload 加入本轮成功
type JoinedSuccessPayload struct {
	RoomID      string  `json:"room_id"`
	BoardNumber int64   `json:"board_number"`
	Balance     float64 `json:"balance"`
}

// LeftGamePayload 退出成功
type LeftGamePayload struct {
	RoomID  string  `json:"room_id"`
	Balance float64 `json:"balance"`
}

// PlayerCountPayload 房间人数
type PlayerCountPayload struct {
	RoomID string `json:"room_id"`
	Count  int    `json:"count"`
}

// LobbyUpdatePayload 大厅倒计时
type LobbyUpdatePayload struct {
	RoomID      string  `json:"room_id"`
	Timer       int     `json:"timer"`
	Status      string  `json:"status"`
	PlayerCount int     `json:"player_count"`
	Stake       float64 `json:"stake"`
}

// GameStartPayload 开始开号
type GameStartPayload struct {
	RoomID      string `json:"room_id"`
	PlayerCount int    `json:"player_count"`
}

// NumberCalledPayload 开出号码
type NumberCalledPayload struct {
	RoomID      string `json:"room_id"`
	Number      int    `json:"number"`
	CalledCount int    `json:"called_count"`
}

// WinInfo 中奖图案
type WinInfo struct {
	Type  string `json:"type"` // ROW/COL/DIAG/CORNER
	Index int    `json:"index"`
}

// GameOverPayload 本轮结束
type GameOverPayload struct {
	RoomID   string   `json:"room_id"`
	Winner   string   `json:"winner,omitempty"`
	WinnerID string   `json:"winner_id,omitempty"`
	Amount   float64  `json:"amount,omitempty"`
	WinInfo  *WinInfo `json:"win_info,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// BalanceUpdatePayload 余额变化
type BalanceUpdatePayload struct {
	Balance float64 `json:"balance"`
}

// RoomListPayload 房间列表
type RoomListPayload struct {
	Rooms []RoomListItem `json:"rooms"`
}

// RoomListItem 房间列表项
type RoomListItem struct {
	RoomID        string  `json:"room_id"`
	Stake         float64 `json:"stake"`
	Status        string  `json:"status"`
	Timer         int     `json:"timer"`
	PlayerCount   int     `json:"player_count"`
	CalledCount   int     `json:"called_count"`
	LobbyDuration int     `json:"lobby_duration"`
}

// BoardPayload 卡片内容（行优先，0 为免费格）
type BoardPayload struct {
	BoardNumber int64    `json:"board_number"`
	Cells       [][]int  `json:"cells"`
	Columns     []string `json:"columns"`
}

// LeaderboardPayload 赢家榜
type LeaderboardPayload struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// LeaderboardEntry 赢家榜条目
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	PlayerID      string  `json:"player_id"`
	PlayerName    string  `json:"player_name"`
	RoundsWon     int     `json:"rounds_won"`
	TotalWinnings float64 `json:"total_winnings"`
	BiggestPot    float64 `json:"biggest_pot"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
