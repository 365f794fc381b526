package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/bingo-hall/internal/apperrors"
	"github.com/palemoky/bingo-hall/internal/types"
)

const userKeyPrefix = "user:"

// Round2 金额保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', 2, 64)
}

// findOrCreateScript 已存在则更新名字并返回余额，否则按新手奖励建档
// 返回 {created, balance}
var findOrCreateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  redis.call('HSET', KEYS[1], 'name', ARGV[1], 'username', ARGV[2])
  return {0, redis.call('HGET', KEYS[1], 'balance')}
end
redis.call('HSET', KEYS[1], 'name', ARGV[1], 'username', ARGV[2], 'balance', ARGV[3], 'created_at', ARGV[4])
return {1, ARGV[3]}
`)

// debitScript 余额充足时扣款
// 返回 {1, 新余额} | {0, 当前余额}（余额不足）| {-1, '0'}（用户不存在）
var debitScript = redis.NewScript(`
local bal = tonumber(redis.call('HGET', KEYS[1], 'balance'))
if bal == nil then
  return {-1, '0'}
end
if bal < tonumber(ARGV[1]) then
  return {0, tostring(bal)}
end
return {1, redis.call('HINCRBYFLOAT', KEYS[1], 'balance', '-' .. ARGV[1])}
`)

// creditScript 入账
// 返回 {1, 新余额} | {-1, '0'}（用户不存在）
var creditScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return {-1, '0'}
end
return {1, redis.call('HINCRBYFLOAT', KEYS[1], 'balance', ARGV[1])}
`)

// RedisLedger 基于 Redis 的结算账本，每个操作是一段原子 Lua 脚本
type RedisLedger struct {
	client        *redis.Client
	startingBonus float64
}

// NewRedisLedger 创建 Redis 账本
func NewRedisLedger(client *redis.Client, startingBonus float64) *RedisLedger {
	return &RedisLedger{client: client, startingBonus: startingBonus}
}

var _ types.Ledger = (*RedisLedger)(nil)

// FindOrCreateUser 查找玩家，首次出现时发放新手奖励
func (l *RedisLedger) FindOrCreateUser(ctx context.Context, id types.Identity) (*types.Account, error) {
	res, err := findOrCreateScript.Run(ctx, l.client, []string{userKeyPrefix + id.PlayerID},
		id.FirstName, id.Username, formatAmount(l.startingBonus), time.Now().Unix()).Slice()
	if err != nil {
		return nil, fmt.Errorf("find or create user %s: %w", id.PlayerID, err)
	}
	status, balance, err := parseScriptResult(res)
	if err != nil {
		return nil, fmt.Errorf("find or create user %s: %w", id.PlayerID, err)
	}
	return &types.Account{
		PlayerID: id.PlayerID,
		Name:     id.FirstName,
		Balance:  balance,
		Created:  status == 1,
	}, nil
}

// Balance 查询余额
func (l *RedisLedger) Balance(ctx context.Context, playerID string) (float64, error) {
	raw, err := l.client.HGet(ctx, userKeyPrefix+playerID, "balance").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, apperrors.ErrUserNotFound
		}
		return 0, fmt.Errorf("balance %s: %w", playerID, err)
	}
	return strconv.ParseFloat(raw, 64)
}

// Debit 扣款，余额不足返回 ErrInsufficientFunds
func (l *RedisLedger) Debit(ctx context.Context, playerID string, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit %s: non-positive amount %v", playerID, amount)
	}
	res, err := debitScript.Run(ctx, l.client, []string{userKeyPrefix + playerID}, formatAmount(amount)).Slice()
	if err != nil {
		return 0, fmt.Errorf("debit %s: %w", playerID, err)
	}
	status, balance, err := parseScriptResult(res)
	if err != nil {
		return 0, fmt.Errorf("debit %s: %w", playerID, err)
	}
	switch status {
	case 1:
		return Round2(balance), nil
	case 0:
		return Round2(balance), apperrors.ErrInsufficientFunds
	default:
		return 0, apperrors.ErrUserNotFound
	}
}

// Credit 入账
func (l *RedisLedger) Credit(ctx context.Context, playerID string, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit %s: non-positive amount %v", playerID, amount)
	}
	res, err := creditScript.Run(ctx, l.client, []string{userKeyPrefix + playerID}, formatAmount(amount)).Slice()
	if err != nil {
		return 0, fmt.Errorf("credit %s: %w", playerID, err)
	}
	status, balance, err := parseScriptResult(res)
	if err != nil {
		return 0, fmt.Errorf("credit %s: %w", playerID, err)
	}
	if status != 1 {
		return 0, apperrors.ErrUserNotFound
	}
	return Round2(balance), nil
}

// parseScriptResult 解析 {status, balance} 形式的脚本返回值
func parseScriptResult(res []any) (int64, float64, error) {
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("unexpected script result %v", res)
	}
	status, ok := res[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected script status %T", res[0])
	}
	raw, ok := res[1].(string)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected script balance %T", res[1])
	}
	balance, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, 0, err
	}
	return status, balance, nil
}

// MemoryLedger 进程内账本，用于本地运行与测试
type MemoryLedger struct {
	mu            sync.Mutex
	accounts      map[string]*types.Account
	startingBonus float64
}

// NewMemoryLedger 创建内存账本
func NewMemoryLedger(startingBonus float64) *MemoryLedger {
	return &MemoryLedger{
		accounts:      make(map[string]*types.Account),
		startingBonus: startingBonus,
	}
}

var _ types.Ledger = (*MemoryLedger)(nil)

func (l *MemoryLedger) FindOrCreateUser(_ context.Context, id types.Identity) (*types.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if acc, ok := l.accounts[id.PlayerID]; ok {
		acc.Name = id.FirstName
		out := *acc
		out.Created = false
		return &out, nil
	}

	acc := &types.Account{PlayerID: id.PlayerID, Name: id.FirstName, Balance: Round2(l.startingBonus)}
	l.accounts[id.PlayerID] = acc
	out := *acc
	out.Created = true
	return &out, nil
}

func (l *MemoryLedger) Balance(_ context.Context, playerID string) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[playerID]
	if !ok {
		return 0, apperrors.ErrUserNotFound
	}
	return acc.Balance, nil
}

func (l *MemoryLedger) Debit(_ context.Context, playerID string, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit %s: non-positive amount %v", playerID, amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[playerID]
	if !ok {
		return 0, apperrors.ErrUserNotFound
	}
	if acc.Balance < Round2(amount) {
		return acc.Balance, apperrors.ErrInsufficientFunds
	}
	acc.Balance = Round2(acc.Balance - amount)
	return acc.Balance, nil
}

func (l *MemoryLedger) Credit(_ context.Context, playerID string, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit %s: non-positive amount %v", playerID, amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[playerID]
	if !ok {
		return 0, apperrors.ErrUserNotFound
	}
	acc.Balance = Round2(acc.Balance + amount)
	return acc.Balance, nil
}
