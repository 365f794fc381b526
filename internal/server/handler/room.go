package handler

import (
	"context"

	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/protocol/codec"
	"github.com/palemoky/bingo-hall/internal/types"
)

// handleJoinGame 选卡并加入本轮
func (h *Handler) handleJoinGame(ctx context.Context, client types.ClientInterface, msg *protocol.Message) {
	// 维护模式检查
	if h.server != nil && h.server.IsMaintenanceMode() {
		client.SendMessage(codec.NewErrorMessageWithText(
			protocol.ErrCodeServerMaintenance, "服务器维护中，暂停加入"))
		return
	}

	payload, err := codec.ParsePayload[protocol.JoinGamePayload](msg)
	if err != nil || payload.RoomID == "" {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	if !requireLogin(client) {
		return
	}

	balance, err := h.roomManager.Join(ctx, payload.RoomID, client, payload.BoardNumber)
	if err != nil {
		h.sendError(client, err)
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgJoinedSuccess, protocol.JoinedSuccessPayload{
		RoomID:      payload.RoomID,
		BoardNumber: payload.BoardNumber,
		Balance:     balance,
	}))
}

// handleLeaveGame 大厅倒计时内退出并退款
func (h *Handler) handleLeaveGame(ctx context.Context, client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.LeaveGamePayload](msg)
	if err != nil || payload.RoomID == "" {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	if !requireLogin(client) {
		return
	}

	balance, err := h.roomManager.Leave(ctx, payload.RoomID, client.GetPlayerID())
	if err != nil {
		h.sendError(client, err)
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgLeftGame, protocol.LeftGamePayload{
		RoomID:  payload.RoomID,
		Balance: balance,
	}))
}
