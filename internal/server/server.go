package server

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/palemoky/bingo-hall/internal/config"
	"github.com/palemoky/bingo-hall/internal/game/board"
	"github.com/palemoky/bingo-hall/internal/game/clock"
	"github.com/palemoky/bingo-hall/internal/game/room"
	"github.com/palemoky/bingo-hall/internal/server/handler"
	"github.com/palemoky/bingo-hall/internal/server/session"
)

// 连接与消息速率限制
const (
	connPerSecond    = 10
	connPerMinute    = 60
	connBanDuration  = time.Minute
	messagePerSecond = 20
)

// Options 可替换的运行时组件
type Options struct {
	Clock  quartz.Clock // nil 使用真实时钟
	Logger *log.Logger  // nil 使用默认 logger
}

// Server WebSocket 服务器
type Server struct {
	config         *config.Config
	backend        *Backend
	roomManager    *room.RoomManager
	sessionManager *session.SessionManager
	gameClock      *clock.GameClock
	handler        *handler.Handler
	clock          quartz.Clock
	logger         *log.Logger

	clients   map[string]*Client
	clientsMu sync.RWMutex

	upgrader websocket.Upgrader

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	// 维护模式
	maintenance atomic.Bool

	httpServer *http.Server
	baseCtx    context.Context // 连接泵使用，关闭期间不取消
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config, backend *Backend, opts Options) *Server {
	clk := opts.Clock
	if clk == nil {
		clk = quartz.NewReal()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		config:         cfg,
		backend:        backend,
		sessionManager: session.NewSessionManager(clk),
		clock:          clk,
		logger:         logger,
		clients:        make(map[string]*Client),
		rateLimiter:    NewRateLimiter(clk, connPerSecond, connPerMinute, connBanDuration),
		originChecker:  NewOriginChecker(cfg.Server.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(clk, messagePerSecond),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
		baseCtx:        context.Background(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	// 初始化房间管理器
	s.roomManager = room.NewRoomManager(roomConfigs(cfg), room.Deps{
		Ledger:         backend.Ledger,
		Broadcaster:    s,
		Generator:      board.NewGenerator(cfg.Game.BoardSecret),
		Store:          backend.Store,
		Winners:        backend.Winners,
		Logger:         logger,
		LedgerTimeout:  cfg.Game.LedgerTimeout(),
		MaxBoardNumber: cfg.Game.MaxBoardNumber,
		DrawSeed:       cfg.Game.DrawSeed,
	})
	s.gameClock = clock.New(clk, cfg.Game.TickInterval(), s.roomManager)

	// 初始化消息处理器
	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:         s,
		RoomManager:    s.roomManager,
		Ledger:         backend.Ledger,
		Leaderboard:    backend.Winners,
		SessionManager: s.sessionManager,
		MaxBoardNumber: cfg.Game.MaxBoardNumber,
		Logger:         logger,
	})

	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// roomConfigs 将配置中的房间转换为引擎配置
func roomConfigs(cfg *config.Config) []room.Config {
	out := make([]room.Config, 0, len(cfg.Rooms))
	for _, rc := range cfg.Rooms {
		out = append(out, room.Config{
			ID:            rc.ID,
			Stake:         rc.Stake,
			LobbyDuration: rc.LobbyDuration,
			DrawInterval:  cfg.Game.DrawInterval,
			PayoutRatio:   cfg.Game.PayoutRatio,
		})
	}
	return out
}

// Routes HTTP 路由
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/deposit", s.handleDeposit)
	return mux
}

// RoomManager 房间注册表
func (s *Server) RoomManager() *room.RoomManager {
	return s.roomManager
}

// Run 启动 HTTP 服务、游戏时钟与后台清理，ctx 取消后优雅关闭
// 关闭期间游戏时钟继续运行，直到进行中的本轮结束或超时
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = context.WithoutCancel(ctx)
	clockCtx, stopClock := context.WithCancel(s.baseCtx)
	defer stopClock()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("🚀 服务器启动", "addr", "ws://"+s.httpServer.Addr+"/ws", "cpus", runtime.NumCPU(),
			"rooms", len(s.config.Rooms), "ledger", s.config.Ledger.Backend)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return s.gameClock.Run(clockCtx) })
	g.Go(func() error { return ignoreCanceled(s.sessionManager.RunCleanup(gctx)) })
	g.Go(func() error { return ignoreCanceled(s.rateLimiter.RunCleanup(gctx)) })
	g.Go(func() error { return ignoreCanceled(s.monitorStats(gctx)) })
	g.Go(func() error {
		<-gctx.Done()
		s.GracefulShutdown(s.config.Server.ShutdownTimeout())
		stopClock()
		return nil
	})

	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
