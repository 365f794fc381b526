package protocol

// 错误码
const (
	ErrCodeUnknown           = 1000
	ErrCodeInvalidMsg        = 1001
	ErrCodeRateLimit         = 1002 // 速率限制
	ErrCodeNotLoggedIn       = 1003 // 尚未登录
	ErrCodeUnknownRoom       = 2001
	ErrCodeInvalidRoomState  = 2002 // 房间状态不允许该操作
	ErrCodeBoardTaken        = 2003 // 卡号已被占用
	ErrCodeInvalidBoard      = 2004 // 卡号不合法
	ErrCodeInsufficientFunds = 3001
	ErrCodeNoWin             = 3002 // 未中奖
	ErrCodeSettlementFailed  = 3003 // 派奖失败，待人工对账
	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "未知错误",
	ErrCodeInvalidMsg:        "无效的消息格式",
	ErrCodeRateLimit:         "请求过于频繁",
	ErrCodeNotLoggedIn:       "请先登录",
	ErrCodeUnknownRoom:       "房间不存在",
	ErrCodeInvalidRoomState:  "当前房间状态不允许该操作",
	ErrCodeBoardTaken:        "该卡号已被选择",
	ErrCodeInvalidBoard:      "卡号不合法",
	ErrCodeInsufficientFunds: "余额不足",
	ErrCodeNoWin:             "尚未满足中奖条件",
	ErrCodeSettlementFailed:  "派奖失败，已记录待对账",
	ErrCodeServerMaintenance: "服务器维护中",
}
