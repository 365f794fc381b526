package room

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/palemoky/bingo-hall/internal/game/board"
	"github.com/palemoky/bingo-hall/internal/game/rule"
	"github.com/palemoky/bingo-hall/internal/server/storage"
	"github.com/palemoky/bingo-hall/internal/types"
)

// Config 房间配置（启动后不可变）
type Config struct {
	ID            string
	Stake         float64
	LobbyDuration int     // 大厅倒计时（tick）
	DrawInterval  int     // 开号间隔（tick）
	PayoutRatio   float64 // 奖池比例
}

// Store 房间快照与待对账记录的持久化，可为 nil
type Store interface {
	SaveRoom(ctx context.Context, data *storage.RoomData) error
	RecordPendingPayout(ctx context.Context, p storage.PendingPayout) error
}

// WinRecorder 记录派奖成功的中奖，可为 nil
type WinRecorder interface {
	RecordWin(ctx context.Context, playerID, playerName string, amount float64) error
}

// Deps 所有房间共享的外部依赖
type Deps struct {
	Ledger         types.Ledger
	Broadcaster    types.Broadcaster
	Generator      *board.Generator // nil 使用零密钥
	Store          Store
	Winners        WinRecorder
	Logger         *log.Logger
	LedgerTimeout  time.Duration // 0 表示不额外设置超时
	MaxBoardNumber int64         // 0 表示不限制上限
	DrawSeed       uint64        // 0 表示随机
}

// Member 本轮参与者（按稳定玩家 ID 索引）
type Member struct {
	PlayerID      string
	SessionID     string
	Name          string
	BoardNumber   int64
	BalanceAtJoin float64 // 扣除押注后的余额
	Client        types.ClientInterface
	Online        bool
	JoinedAt      time.Time
}

// Room 一个循环进行的宾果房间，所有状态由 mu 保护
type Room struct {
	cfg Config

	state   RoomState
	timer   int
	called  rule.CalledNumbers
	players map[string]*Member // playerID -> 参与者
	boards  map[int64]string   // 卡号 -> playerID
	roundID string

	rng    *rand.Rand
	deps   *Deps
	logger *log.Logger

	mu sync.Mutex
}

// newRoom 创建处于大厅倒计时的房间
func newRoom(cfg Config, deps *Deps) *Room {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}

	seed := deps.DrawSeed
	if seed == 0 {
		seed = rand.Uint64()
	}

	return &Room{
		cfg:     cfg,
		state:   RoomStateWaiting,
		timer:   cfg.LobbyDuration,
		players: make(map[string]*Member),
		boards:  make(map[int64]string),
		roundID: uuid.NewString(),
		rng:     rand.New(rand.NewPCG(seed, xxhash.Sum64String(cfg.ID))),
		deps:    deps,
		logger:  logger.With("room", cfg.ID),
	}
}

// ID 房间 ID
func (r *Room) ID() string {
	return r.cfg.ID
}

// Config 房间配置
func (r *Room) Config() Config {
	return r.cfg
}

// State 当前状态
func (r *Room) State() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// PlayerCount 当前参与人数
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Member 返回参与者副本
func (r *Room) Member(playerID string) (Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.players[playerID]
	if !ok {
		return Member{}, false
	}
	return *m, true
}

// Board 按卡号生成卡片（与判奖使用同一生成器）
func (r *Room) Board(n int64) board.Board {
	return boardFor(r.deps.Generator, n)
}

func boardFor(g *board.Generator, n int64) board.Board {
	if g == nil {
		return board.Generate(n)
	}
	return g.Board(n)
}

// ledgerContext 为单次账本调用附加超时
func (r *Room) ledgerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.deps.LedgerTimeout > 0 {
		return context.WithTimeout(ctx, r.deps.LedgerTimeout)
	}
	return context.WithCancel(ctx)
}

// pot 奖池 = 押注 × 人数 × 奖池比例，保留两位小数
func (r *Room) pot() float64 {
	return storage.Round2(r.cfg.Stake * float64(len(r.players)) * r.cfg.PayoutRatio)
}
