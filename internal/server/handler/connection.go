package handler

import (
	"context"
	"time"

	"github.com/palemoky/bingo-hall/internal/game/room"
	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/protocol/codec"
	"github.com/palemoky/bingo-hall/internal/protocol/convert"
	"github.com/palemoky/bingo-hall/internal/types"
)

// handleLogin 绑定稳定玩家身份，首次登录发放新手奖励
func (h *Handler) handleLogin(ctx context.Context, client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.LoginPayload](msg)
	if err != nil || payload.PlayerID == "" {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if current := client.GetPlayerID(); current != "" && current != payload.PlayerID {
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeInvalidMsg, "该连接已绑定其他玩家"))
		return
	}

	account, err := h.ledger.FindOrCreateUser(ctx, types.Identity{
		PlayerID:  payload.PlayerID,
		FirstName: payload.FirstName,
		Username:  payload.Username,
	})
	if err != nil {
		h.sendError(client, err)
		return
	}

	client.SetPlayer(account.PlayerID, account.Name)
	sess := h.sessionManager.Bind(account.PlayerID, account.Name, client.GetID())

	resp := protocol.LoginSuccessPayload{
		PlayerID:       account.PlayerID,
		Name:           account.Name,
		Balance:        account.Balance,
		ReconnectToken: sess.ReconnectToken,
	}
	// 本轮仍在进行中的房间，挂回新连接
	if rooms := h.roomManager.PlayerOnline(client); len(rooms) > 0 {
		resp.RoomID = rooms[0].ID()
		resp.RoomIDs = roomIDs(rooms)
	}
	client.SendMessage(codec.MustNewMessage(protocol.MsgLoginSuccess, resp))
	h.handleGetRooms(client)

	if account.Created {
		h.logger.Info("🎁 新玩家注册", "player", account.PlayerID, "name", account.Name, "bonus", account.Balance)
	} else {
		h.logger.Info("✅ 玩家登录", "player", account.PlayerID, "name", account.Name, "room", resp.RoomID)
	}
}

// handleReconnect 凭重连令牌恢复身份与房间状态
func (h *Handler) handleReconnect(ctx context.Context, client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.ReconnectPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	sess, ok := h.sessionManager.Resume(payload.Token, payload.PlayerID, client.GetID())
	if !ok {
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "重连令牌无效或已过期"))
		return
	}

	balance, err := h.ledger.Balance(ctx, sess.PlayerID)
	if err != nil {
		h.sendError(client, err)
		return
	}

	client.SetPlayer(sess.PlayerID, sess.PlayerName)
	resp := protocol.ReconnectedPayload{
		PlayerID: sess.PlayerID,
		Name:     sess.PlayerName,
		Balance:  balance,
	}
	if rooms := h.roomManager.PlayerOnline(client); len(rooms) > 0 {
		h.restoreRoomState(rooms[0], sess.PlayerID, &resp)
		resp.RoomIDs = roomIDs(rooms)
	}
	client.SendMessage(codec.MustNewMessage(protocol.MsgReconnected, resp))

	h.logger.Info("🔄 玩家重连成功", "player", sess.PlayerID, "name", sess.PlayerName)
}

// restoreRoomState 填充房间快照与参与者卡片
func (h *Handler) restoreRoomState(r *room.Room, playerID string, resp *protocol.ReconnectedPayload) {
	resp.Room = r.Snapshot().ToStateDTO()
	if m, ok := r.Member(playerID); ok {
		resp.Board = convert.BoardToPayload(m.BoardNumber, r.Board(m.BoardNumber))
	}
}

func roomIDs(rooms []*room.Room) []string {
	ids := make([]string, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID())
	}
	return ids
}

// handlePing 处理心跳消息
func (h *Handler) handlePing(_ context.Context, client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	// 立即回复 pong
	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}
