package handler

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/palemoky/bingo-hall/internal/apperrors"
	"github.com/palemoky/bingo-hall/internal/game/room"
	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/protocol/codec"
	"github.com/palemoky/bingo-hall/internal/server/session"
	"github.com/palemoky/bingo-hall/internal/types"
)

// Leaderboard 赢家榜查询
type Leaderboard interface {
	GetLeaderboard(ctx context.Context, limit int) ([]protocol.LeaderboardEntry, error)
}

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server         types.ServerInterface
	RoomManager    *room.RoomManager
	Ledger         types.Ledger
	Leaderboard    Leaderboard // 可为 nil
	SessionManager *session.SessionManager
	MaxBoardNumber int64
	Logger         *log.Logger
}

// Handler 消息处理器
type Handler struct {
	server         types.ServerInterface
	roomManager    *room.RoomManager
	ledger         types.Ledger
	leaderboard    Leaderboard
	sessionManager *session.SessionManager
	maxBoardNumber int64
	logger         *log.Logger
	handlers       map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(ctx context.Context, client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	h := &Handler{
		server:         deps.Server,
		roomManager:    deps.RoomManager,
		ledger:         deps.Ledger,
		leaderboard:    deps.Leaderboard,
		sessionManager: deps.SessionManager,
		maxBoardNumber: deps.MaxBoardNumber,
		logger:         logger.With("component", "handler"),
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgLogin:     h.handleLogin,
		protocol.MsgReconnect: h.handleReconnect,
		protocol.MsgPing:      h.handlePing,

		// 房间操作
		protocol.MsgJoinGame:   h.handleJoinGame,
		protocol.MsgLeaveGame:  h.handleLeaveGame,
		protocol.MsgBingoClaim: h.handleBingoClaim,

		// 信息查询
		protocol.MsgGetRooms:       func(_ context.Context, c types.ClientInterface, _ *protocol.Message) { h.handleGetRooms(c) },
		protocol.MsgGetBoard:       h.handleGetBoard,
		protocol.MsgGetLeaderboard: h.handleGetLeaderboard,
	}
}

// Handle 处理消息
func (h *Handler) Handle(ctx context.Context, client types.ClientInterface, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(ctx, client, msg)
		return
	}

	h.logger.Warn("⚠️ 未知消息类型", "type", msg.Type, "client", client.GetID(), "payload_bytes", len(msg.Payload))
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// sendError 将错误映射为 error 帧，只发给请求方
func (h *Handler) sendError(client types.ClientInterface, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(codec.NewErrorMessageWithText(gameErr.Code, gameErr.Message))
		return
	}
	h.logger.Error("处理请求失败", "client", client.GetID(), "player", client.GetPlayerID(), "error", err)
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
}

// requireLogin 未登录时回复错误并返回 false
func requireLogin(client types.ClientInterface) bool {
	if client.GetPlayerID() == "" {
		client.SendMessage(codec.NewErrorMessageWithText(apperrors.ErrNotLoggedIn.Code, apperrors.ErrNotLoggedIn.Message))
		return false
	}
	return true
}
