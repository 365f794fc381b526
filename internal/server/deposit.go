package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/palemoky/bingo-hall/internal/apperrors"
	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/protocol/codec"
	"github.com/palemoky/bingo-hall/internal/server/storage"
)

// DepositTokenHeader 充值接口共享密钥请求头
const DepositTokenHeader = "X-Deposit-Token"

// DepositRequest 充值请求
type DepositRequest struct {
	PlayerID string  `json:"player_id"`
	Amount   float64 `json:"amount"`
}

// DepositResponse 充值结果
type DepositResponse struct {
	PlayerID string  `json:"player_id"`
	Balance  float64 `json:"balance"`
}

// handleDeposit 为已审核的充值记账，并推送余额给玩家所有在线连接
func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	if token := s.config.Server.DepositToken; token != "" {
		got := r.Header.Get(DepositTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			writeJSONError(w, http.StatusUnauthorized, "invalid deposit token")
			return
		}
	}

	var req DepositRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.PlayerID == "" || req.Amount <= 0 {
		writeJSONError(w, http.StatusBadRequest, "player_id and positive amount are required")
		return
	}
	amount := storage.Round2(req.Amount)

	ctx, cancel := context.WithTimeout(r.Context(), s.config.Game.LedgerTimeout())
	defer cancel()
	balance, err := s.backend.Ledger.Credit(ctx, req.PlayerID, amount)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		writeJSONError(w, http.StatusNotFound, "user not found")
		return
	case err != nil:
		s.logger.Error("充值记账失败", "player", req.PlayerID, "amount", amount, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "ledger unavailable")
		return
	}

	update := codec.MustNewMessage(protocol.MsgBalanceUpdate, protocol.BalanceUpdatePayload{Balance: balance})
	for _, c := range s.ClientsForPlayer(req.PlayerID) {
		c.SendMessage(update)
	}

	s.logger.Info("💰 充值到账", "player", req.PlayerID, "amount", amount, "balance", balance)
	writeJSON(w, http.StatusOK, DepositResponse{PlayerID: req.PlayerID, Balance: balance})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
