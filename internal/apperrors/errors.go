package apperrors

import (
	"errors"

	"github.com/palemoky/bingo-hall/internal/protocol"
)

// GameError 游戏错误（房间、账本与处理器共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrUnknownRoom       = &GameError{Code: protocol.ErrCodeUnknownRoom, Message: "房间不存在"}
	ErrInvalidRoomState  = &GameError{Code: protocol.ErrCodeInvalidRoomState, Message: "当前房间状态不允许该操作"}
	ErrAlreadyJoined     = &GameError{Code: protocol.ErrCodeInvalidRoomState, Message: "您已在本轮中"}
	ErrNotMember         = &GameError{Code: protocol.ErrCodeInvalidRoomState, Message: "您未参加本轮"}
	ErrBoardTaken        = &GameError{Code: protocol.ErrCodeBoardTaken, Message: "该卡号已被选择"}
	ErrInvalidBoard      = &GameError{Code: protocol.ErrCodeInvalidBoard, Message: "卡号不合法"}
	ErrInsufficientFunds = &GameError{Code: protocol.ErrCodeInsufficientFunds, Message: "余额不足"}
	ErrNoWin             = &GameError{Code: protocol.ErrCodeNoWin, Message: "尚未满足中奖条件"}
	ErrSettlementFailed  = &GameError{Code: protocol.ErrCodeSettlementFailed, Message: "派奖失败，已记录待对账"}
	ErrNotLoggedIn       = &GameError{Code: protocol.ErrCodeNotLoggedIn, Message: "请先登录"}
	ErrUserNotFound      = &GameError{Code: protocol.ErrCodeUnknown, Message: "用户不存在"}
)

// Code 提取错误码，非 GameError 返回 ErrCodeUnknown
func Code(err error) int {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr.Code
	}
	return protocol.ErrCodeUnknown
}
