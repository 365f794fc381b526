package server

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/bingo-hall/internal/config"
	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/server/storage"
	"github.com/palemoky/bingo-hall/internal/types"
)

// RoomStore 房间快照与待对账记录
type RoomStore interface {
	SaveRoom(ctx context.Context, data *storage.RoomData) error
	RecordPendingPayout(ctx context.Context, p storage.PendingPayout) error
	PendingPayouts(ctx context.Context) ([]storage.PendingPayout, error)
}

// Winners 赢家榜
type Winners interface {
	RecordWin(ctx context.Context, playerID, playerName string, amount float64) error
	GetLeaderboard(ctx context.Context, limit int) ([]protocol.LeaderboardEntry, error)
}

// Backend 账本与持久化后端
type Backend struct {
	Ledger  types.Ledger
	Store   RoomStore
	Winners Winners

	redis *redis.Client
}

// NewMemoryBackend 进程内后端，重启后数据丢失
func NewMemoryBackend(startingBonus float64) *Backend {
	return &Backend{
		Ledger:  storage.NewMemoryLedger(startingBonus),
		Store:   storage.NewMemoryStore(),
		Winners: storage.NewMemoryLeaderboard(),
	}
}

// NewRedisBackend 基于已有 Redis 客户端的后端
func NewRedisBackend(client *redis.Client, startingBonus float64) *Backend {
	return &Backend{
		Ledger:  storage.NewRedisLedger(client, startingBonus),
		Store:   storage.NewRedisStore(client),
		Winners: storage.NewLeaderboardManager(client),
		redis:   client,
	}
}

// OpenBackend 按配置选择后端，Redis 后端会先检查连通性
func OpenBackend(ctx context.Context, cfg *config.Config) (*Backend, error) {
	if cfg.Ledger.Backend == config.LedgerMemory {
		return NewMemoryBackend(cfg.Game.StartingBonus), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 测试 Redis 连接
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis 连接失败: %w", err)
	}

	return NewRedisBackend(rdb, cfg.Game.StartingBonus), nil
}

// Close 释放后端连接
func (b *Backend) Close() error {
	if b.redis == nil {
		return nil
	}
	return b.redis.Close()
}
