package room

import (
	"github.com/google/uuid"

	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/protocol/codec"
)

// Tick 推进一个计时单位
func (r *Room) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case RoomStateWaiting:
		switch {
		case r.timer > 0:
			r.timer--
		case len(r.players) > 0:
			r.startRound()
		default:
			// 没有人参加，重新倒计时
			r.timer = r.cfg.LobbyDuration
		}
		if r.state == RoomStateWaiting {
			r.broadcastLobbyUpdate()
		}

	case RoomStatePlaying:
		switch {
		case r.timer > 0:
			r.timer--
		case !r.called.Exhausted():
			r.drawNumber()
		default:
			r.finishWithoutWinner()
		}
	}
}

// startRound WAITING → PLAYING
func (r *Room) startRound() {
	r.state = RoomStatePlaying
	r.called.Reset()
	r.timer = r.cfg.DrawInterval

	r.logger.Info("🎮 开始开号", "round", r.roundID, "players", len(r.players), "pot", r.pot())
	r.broadcastToRoom(codec.MustNewMessage(protocol.MsgGameStart, protocol.GameStartPayload{
		RoomID:      r.cfg.ID,
		PlayerCount: len(r.players),
	}))
	r.saveSnapshotAsync()
}

// drawNumber 从未开出的号码中抽取一个
func (r *Room) drawNumber() {
	number := r.called.Draw(r.rng)
	r.timer = r.cfg.DrawInterval

	r.logger.Debug("开出号码", "number", number, "called", r.called.Len())
	r.broadcastToRoom(codec.MustNewMessage(protocol.MsgNumberCalled, protocol.NumberCalledPayload{
		RoomID:      r.cfg.ID,
		Number:      number,
		CalledCount: r.called.Len(),
	}))
}

// finishWithoutWinner 75 个号码开完无人中奖
func (r *Room) finishWithoutWinner() {
	r.logger.Info("本轮无人中奖", "round", r.roundID)
	r.broadcastToRoom(codec.MustNewMessage(protocol.MsgGameOver, protocol.GameOverPayload{
		RoomID: r.cfg.ID,
		Reason: protocol.ReasonNoWinner,
	}))
	r.resetRound()
}

// resetRound 清空参与者，回到大厅倒计时
func (r *Room) resetRound() {
	clear(r.players)
	clear(r.boards)
	r.called.Reset()
	r.state = RoomStateWaiting
	r.timer = r.cfg.LobbyDuration
	r.roundID = uuid.NewString()

	r.broadcastPlayerCount()
	r.saveSnapshotAsync()
}

func (r *Room) broadcastLobbyUpdate() {
	r.broadcastToAll(codec.MustNewMessage(protocol.MsgLobbyUpdate, protocol.LobbyUpdatePayload{
		RoomID:      r.cfg.ID,
		Timer:       r.timer,
		Status:      r.state.String(),
		PlayerCount: len(r.players),
		Stake:       r.cfg.Stake,
	}))
}

func (r *Room) broadcastPlayerCount() {
	r.broadcastToRoom(codec.MustNewMessage(protocol.MsgPlayerCount, protocol.PlayerCountPayload{
		RoomID: r.cfg.ID,
		Count:  len(r.players),
	}))
}

func (r *Room) broadcastToRoom(msg *protocol.Message) {
	if r.deps.Broadcaster != nil {
		r.deps.Broadcaster.BroadcastToRoom(r.cfg.ID, msg)
	}
}

func (r *Room) broadcastToAll(msg *protocol.Message) {
	if r.deps.Broadcaster != nil {
		r.deps.Broadcaster.BroadcastToAll(msg)
	}
}

// sendBalance 推送余额给在线的参与者
func (r *Room) sendBalance(m *Member, balance float64) {
	if m.Client == nil || !m.Online {
		return
	}
	m.Client.SendMessage(codec.MustNewMessage(protocol.MsgBalanceUpdate, protocol.BalanceUpdatePayload{
		Balance: balance,
	}))
}
