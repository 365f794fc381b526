package storage

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/bingo-hall/internal/protocol"
)

const (
	// Redis key
	winnerStatsKey   = "winner:stats:"
	leaderboardKey   = "leaderboard:winnings"
	dailyLeaderboard = "leaderboard:daily:"
)

// WinnerStats 玩家中奖统计
type WinnerStats struct {
	PlayerID      string  `json:"player_id"`
	PlayerName    string  `json:"player_name"`
	RoundsWon     int     `json:"rounds_won"`     // 中奖轮数
	TotalWinnings float64 `json:"total_winnings"` // 累计奖金
	BiggestPot    float64 `json:"biggest_pot"`    // 单轮最高奖金
	LastWonAt     int64   `json:"last_won_at"`    // 最近中奖时间
}

// apply 记入一轮奖金
func (s *WinnerStats) apply(name string, amount float64, at time.Time) {
	s.PlayerName = name
	s.RoundsWon++
	s.TotalWinnings = Round2(s.TotalWinnings + amount)
	s.BiggestPot = max(s.BiggestPot, amount)
	s.LastWonAt = at.Unix()
}

func (s *WinnerStats) entry(rank int) protocol.LeaderboardEntry {
	return protocol.LeaderboardEntry{
		Rank:          rank,
		PlayerID:      s.PlayerID,
		PlayerName:    s.PlayerName,
		RoundsWon:     s.RoundsWon,
		TotalWinnings: s.TotalWinnings,
		BiggestPot:    s.BiggestPot,
	}
}

// LeaderboardManager 赢家榜管理器
type LeaderboardManager struct {
	redis *redis.Client
	mu    sync.Mutex // 串行化统计的读改写
}

// NewLeaderboardManager 创建赢家榜管理器
func NewLeaderboardManager(client *redis.Client) *LeaderboardManager {
	return &LeaderboardManager{redis: client}
}

// GetPlayerStats 获取玩家统计，未中过奖返回 nil
func (lm *LeaderboardManager) GetPlayerStats(ctx context.Context, playerID string) (*WinnerStats, error) {
	data, err := lm.redis.Get(ctx, winnerStatsKey+playerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats WinnerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// RecordWin 记录一次派奖成功的中奖
func (lm *LeaderboardManager) RecordWin(ctx context.Context, playerID, playerName string, amount float64) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	stats, err := lm.GetPlayerStats(ctx, playerID)
	if err != nil {
		return err
	}
	if stats == nil {
		stats = &WinnerStats{PlayerID: playerID}
	}
	now := time.Now()
	stats.apply(playerName, amount, now)

	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	dailyKey := dailyLeaderboard + now.Format(time.DateOnly)
	pipe := lm.redis.TxPipeline()
	pipe.Set(ctx, winnerStatsKey+playerID, data, 0)
	pipe.ZAdd(ctx, leaderboardKey, redis.Z{Score: stats.TotalWinnings, Member: playerID})
	pipe.ZIncrBy(ctx, dailyKey, amount, playerID)
	// 设置过期时间（2天）
	pipe.Expire(ctx, dailyKey, 48*time.Hour)
	_, err = pipe.Exec(ctx)
	return err
}

// GetLeaderboard 按累计奖金从高到低返回前 limit 名
func (lm *LeaderboardManager) GetLeaderboard(ctx context.Context, limit int) ([]protocol.LeaderboardEntry, error) {
	if limit <= 0 {
		return []protocol.LeaderboardEntry{}, nil
	}
	results, err := lm.redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]protocol.LeaderboardEntry, 0, len(results))
	for _, result := range results {
		playerID, ok := result.Member.(string)
		if !ok {
			continue
		}
		stats, err := lm.GetPlayerStats(ctx, playerID)
		if err != nil || stats == nil {
			continue
		}
		entries = append(entries, stats.entry(len(entries)+1))
	}
	return entries, nil
}

// GetPlayerRank 获取玩家排名，未上榜返回 -1
func (lm *LeaderboardManager) GetPlayerRank(ctx context.Context, playerID string) (int64, error) {
	rank, err := lm.redis.ZRevRank(ctx, leaderboardKey, playerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil // Redis 排名从 0 开始
}

// MemoryLeaderboard 进程内赢家榜
type MemoryLeaderboard struct {
	mu    sync.Mutex
	stats map[string]*WinnerStats
}

// NewMemoryLeaderboard 创建内存赢家榜
func NewMemoryLeaderboard() *MemoryLeaderboard {
	return &MemoryLeaderboard{stats: make(map[string]*WinnerStats)}
}

func (ml *MemoryLeaderboard) RecordWin(_ context.Context, playerID, playerName string, amount float64) error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	stats, ok := ml.stats[playerID]
	if !ok {
		stats = &WinnerStats{PlayerID: playerID}
		ml.stats[playerID] = stats
	}
	stats.apply(playerName, amount, time.Now())
	return nil
}

func (ml *MemoryLeaderboard) GetLeaderboard(_ context.Context, limit int) ([]protocol.LeaderboardEntry, error) {
	if limit <= 0 {
		return []protocol.LeaderboardEntry{}, nil
	}
	ml.mu.Lock()
	defer ml.mu.Unlock()

	all := make([]*WinnerStats, 0, len(ml.stats))
	for _, s := range ml.stats {
		all = append(all, s)
	}
	SortByWinnings(all)

	entries := make([]protocol.LeaderboardEntry, 0, min(limit, len(all)))
	for i, s := range all {
		if i >= limit {
			break
		}
		entries = append(entries, s.entry(i+1))
	}
	return entries, nil
}

// SortByWinnings 按累计奖金降序排序，奖金相同按玩家 ID 升序
func SortByWinnings(stats []*WinnerStats) {
	slices.SortFunc(stats, func(a, b *WinnerStats) int {
		if c := cmp.Compare(b.TotalWinnings, a.TotalWinnings); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})
}
