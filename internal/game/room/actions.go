package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/palemoky/bingo-hall/internal/apperrors"
	"github.com/palemoky/bingo-hall/internal/game/rule"
	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/protocol/codec"
	"github.com/palemoky/bingo-hall/internal/protocol/convert"
	"github.com/palemoky/bingo-hall/internal/server/storage"
	"github.com/palemoky/bingo-hall/internal/types"
)

// ClaimResult 成功派奖的结果
type ClaimResult struct {
	RoomID   string
	PlayerID string
	Amount   float64
	Balance  float64
	Win      rule.WinResult
}

// Join 选卡加入本轮，成功返回扣除押注后的余额
func (r *Room) Join(ctx context.Context, client types.ClientInterface, boardNumber int64) (float64, error) {
	playerID := client.GetPlayerID()
	if playerID == "" {
		return 0, apperrors.ErrNotLoggedIn
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != RoomStateWaiting {
		return 0, apperrors.ErrInvalidRoomState
	}
	if _, ok := r.players[playerID]; ok {
		return 0, apperrors.ErrAlreadyJoined
	}
	if boardNumber < 1 || (r.deps.MaxBoardNumber > 0 && boardNumber > r.deps.MaxBoardNumber) {
		return 0, apperrors.ErrInvalidBoard
	}
	if _, taken := r.boards[boardNumber]; taken {
		return 0, apperrors.ErrBoardTaken
	}

	ledgerCtx, cancel := r.ledgerContext(ctx)
	defer cancel()
	balance, err := r.deps.Ledger.Debit(ledgerCtx, playerID, r.cfg.Stake)
	if err != nil {
		var gameErr *apperrors.GameError
		if errors.As(err, &gameErr) {
			return 0, err
		}
		return 0, fmt.Errorf("debit stake: %w", err)
	}

	m := &Member{
		PlayerID:      playerID,
		SessionID:     client.GetID(),
		Name:          client.GetName(),
		BoardNumber:   boardNumber,
		BalanceAtJoin: balance,
		Client:        client,
		Online:        true,
		JoinedAt:      time.Now(),
	}
	r.players[playerID] = m
	r.boards[boardNumber] = playerID
	client.JoinRoom(r.cfg.ID)

	r.logger.Info("➕ 玩家加入", "player", playerID, "board", boardNumber, "players", len(r.players))
	r.sendBalance(m, balance)
	r.broadcastPlayerCount()
	return balance, nil
}

// Claim 宣布中奖，只有本轮第一个有效声明会派奖
func (r *Room) Claim(ctx context.Context, playerID string) (*ClaimResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != RoomStatePlaying {
		return nil, apperrors.ErrInvalidRoomState
	}
	m, ok := r.players[playerID]
	if !ok {
		return nil, apperrors.ErrNotMember
	}

	win := rule.CheckBoard(boardFor(r.deps.Generator, m.BoardNumber), &r.called)
	if win == nil {
		return nil, apperrors.ErrNoWin
	}

	amount := r.pot()
	ledgerCtx, cancel := r.ledgerContext(ctx)
	defer cancel()
	balance, err := r.deps.Ledger.Credit(ledgerCtx, playerID, amount)
	if err != nil {
		r.abortSettlement(ctx, m, amount, err)
		return nil, apperrors.ErrSettlementFailed
	}

	r.logger.Info("🏆 中奖", "round", r.roundID, "player", playerID, "win", win.String(), "amount", amount)
	r.broadcastToRoom(codec.MustNewMessage(protocol.MsgGameOver, protocol.GameOverPayload{
		RoomID:   r.cfg.ID,
		Winner:   m.Name,
		WinnerID: playerID,
		Amount:   amount,
		WinInfo:  convert.WinToInfo(*win),
		Reason:   protocol.ReasonWinner,
	}))
	r.sendBalance(m, balance)
	r.recordWinAsync(playerID, m.Name, amount)
	r.resetRound()

	return &ClaimResult{
		RoomID:   r.cfg.ID,
		PlayerID: playerID,
		Amount:   amount,
		Balance:  balance,
		Win:      *win,
	}, nil
}

// abortSettlement 派奖失败：不公布赢家，记录待对账并结束本轮
func (r *Room) abortSettlement(ctx context.Context, m *Member, amount float64, cause error) {
	pending := storage.PendingPayout{
		RoundID:   r.roundID,
		RoomID:    r.cfg.ID,
		PlayerID:  m.PlayerID,
		Amount:    amount,
		Error:     cause.Error(),
		CreatedAt: time.Now().Unix(),
	}
	r.logger.Error("❌ 派奖失败，本轮作废待对账",
		"round", pending.RoundID, "player", pending.PlayerID, "amount", amount, "error", cause)

	if r.deps.Store != nil {
		storeCtx, cancel := r.ledgerContext(context.WithoutCancel(ctx))
		if err := r.deps.Store.RecordPendingPayout(storeCtx, pending); err != nil {
			r.logger.Error("记录待对账失败", "round", pending.RoundID, "error", err)
		}
		cancel()
	}

	r.broadcastToRoom(codec.MustNewMessage(protocol.MsgGameOver, protocol.GameOverPayload{
		RoomID: r.cfg.ID,
		Reason: protocol.ReasonSettlementFailed,
	}))
	r.resetRound()
}

func (r *Room) recordWinAsync(playerID, name string, amount float64) {
	if r.deps.Winners == nil {
		return
	}
	go func() {
		if err := r.deps.Winners.RecordWin(context.Background(), playerID, name, amount); err != nil {
			r.logger.Warn("记录赢家榜失败", "player", playerID, "error", err)
		}
	}()
}

// Leave 大厅倒计时内退出并退还押注，返回退款后的余额
func (r *Room) Leave(ctx context.Context, playerID string) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != RoomStateWaiting {
		return 0, apperrors.ErrInvalidRoomState
	}
	m, ok := r.players[playerID]
	if !ok {
		return 0, apperrors.ErrNotMember
	}

	balance, err := r.refundLocked(ctx, m)
	if err != nil {
		return 0, err
	}
	r.sendBalance(m, balance)
	return balance, nil
}

// refundLocked 退还押注并移除参与者；退款失败时保留参与者
func (r *Room) refundLocked(ctx context.Context, m *Member) (float64, error) {
	ledgerCtx, cancel := r.ledgerContext(ctx)
	defer cancel()
	balance, err := r.deps.Ledger.Credit(ledgerCtx, m.PlayerID, r.cfg.Stake)
	if err != nil {
		return 0, fmt.Errorf("refund stake: %w", err)
	}

	delete(r.players, m.PlayerID)
	delete(r.boards, m.BoardNumber)
	if m.Client != nil {
		m.Client.LeaveRoom(r.cfg.ID)
	}
	r.logger.Info("➖ 玩家退出", "player", m.PlayerID, "players", len(r.players))
	r.broadcastPlayerCount()
	return balance, nil
}

// PlayerOffline 处理参与者断线
// 大厅阶段退款并移除；开号阶段保留参与资格，标记离线
func (r *Room) PlayerOffline(ctx context.Context, playerID, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.players[playerID]
	if !ok || m.SessionID != sessionID {
		return
	}

	if r.state == RoomStateWaiting {
		_, err := r.refundLocked(ctx, m)
		if err == nil {
			return
		}
		r.logger.Warn("断线退款失败，保留参与资格", "player", playerID, "error", err)
	}

	m.Online = false
	m.Client = nil
	r.logger.Info("📴 参与者离线", "player", playerID, "state", r.state)
}

// PlayerOnline 玩家在新会话中重新上线，返回是否仍是本轮参与者
func (r *Room) PlayerOnline(client types.ClientInterface) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.players[client.GetPlayerID()]
	if !ok {
		return false
	}
	m.Client = client
	m.SessionID = client.GetID()
	m.Online = true
	client.JoinRoom(r.cfg.ID)
	r.logger.Info("📶 参与者重新上线", "player", m.PlayerID)
	return true
}
