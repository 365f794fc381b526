package handler

import (
	"context"

	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/protocol/codec"
	"github.com/palemoky/bingo-hall/internal/protocol/convert"
	"github.com/palemoky/bingo-hall/internal/types"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 50
)

// handleGetRooms 获取房间列表
func (h *Handler) handleGetRooms(client types.ClientInterface) {
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomList, protocol.RoomListPayload{
		Rooms: h.roomManager.GetRoomList(),
	}))
}

// handleGetBoard 按卡号返回卡片，选卡前预览用
func (h *Handler) handleGetBoard(_ context.Context, client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.GetBoardPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	if payload.BoardNumber < 1 || (h.maxBoardNumber > 0 && payload.BoardNumber > h.maxBoardNumber) {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidBoard))
		return
	}

	b := h.roomManager.Board(payload.BoardNumber)
	client.SendMessage(codec.MustNewMessage(protocol.MsgBoard, convert.BoardToPayload(payload.BoardNumber, b)))
}

// handleGetLeaderboard 获取赢家榜
func (h *Handler) handleGetLeaderboard(ctx context.Context, client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.GetLeaderboardPayload](msg)
	if err != nil {
		payload = &protocol.GetLeaderboardPayload{}
	}

	// 限制请求数量
	if payload.Limit <= 0 || payload.Limit > maxLeaderboardLimit {
		payload.Limit = defaultLeaderboardLimit
	}

	entries := []protocol.LeaderboardEntry{}
	if h.leaderboard != nil {
		entries, err = h.leaderboard.GetLeaderboard(ctx, payload.Limit)
		if err != nil {
			h.logger.Warn("获取赢家榜失败", "error", err)
			client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "获取赢家榜失败"))
			return
		}
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgLeaderboard, protocol.LeaderboardPayload{
		Entries: entries,
	}))
}
