package handler

import (
	"context"

	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/protocol/codec"
	"github.com/palemoky/bingo-hall/internal/types"
)

// handleBingoClaim 宣布中奖；成功时 game_over 与 balance_update 由房间发出
func (h *Handler) handleBingoClaim(ctx context.Context, client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.BingoClaimPayload](msg)
	if err != nil || payload.RoomID == "" {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	if !requireLogin(client) {
		return
	}

	if _, err := h.roomManager.Claim(ctx, payload.RoomID, client.GetPlayerID()); err != nil {
		h.sendError(client, err)
	}
}
