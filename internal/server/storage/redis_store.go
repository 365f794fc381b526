package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key 前缀
	roomKeyPrefix     = "room:"
	pendingPayoutsKey = "payouts:pending"

	// 房间快照过期时间
	roomExpiration = 2 * time.Hour
)

// RoomData 房间快照（供外部看板读取）
type RoomData struct {
	ID          string   `json:"id"`
	Stake       float64  `json:"stake"`
	Status      string   `json:"status"`
	Timer       int      `json:"timer"`
	Called      []int    `json:"called"`
	PlayerCount int      `json:"player_count"`
	Players     []string `json:"players"`
	RoundID     string   `json:"round_id,omitempty"`
	UpdatedAt   int64    `json:"updated_at"`
}

// PendingPayout 派奖失败的待对账记录
type PendingPayout struct {
	RoundID   string  `json:"round_id"`
	RoomID    string  `json:"room_id"`
	PlayerID  string  `json:"player_id"`
	Amount    float64 `json:"amount"`
	Error     string  `json:"error"`
	CreatedAt int64   `json:"created_at"`
}

// RedisStore Redis 存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// --- 房间快照 ---

// SaveRoom 保存房间快照
func (rs *RedisStore) SaveRoom(ctx context.Context, data *RoomData) error {
	if data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化房间数据失败: %w", err)
	}
	return rs.client.Set(ctx, roomKeyPrefix+data.ID, jsonData, roomExpiration).Err()
}

// LoadRoom 读取房间快照，不存在返回 nil
func (rs *RedisStore) LoadRoom(ctx context.Context, id string) (*RoomData, error) {
	data, err := rs.client.Get(ctx, roomKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var roomData RoomData
	if err := json.Unmarshal(data, &roomData); err != nil {
		return nil, fmt.Errorf("反序列化房间数据失败: %w", err)
	}
	return &roomData, nil
}

// --- 待对账队列 ---

// RecordPendingPayout 追加一条待对账记录
func (rs *RedisStore) RecordPendingPayout(ctx context.Context, p PendingPayout) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return rs.client.RPush(ctx, pendingPayoutsKey, data).Err()
}

// PendingPayouts 按写入顺序返回全部待对账记录
func (rs *RedisStore) PendingPayouts(ctx context.Context) ([]PendingPayout, error) {
	items, err := rs.client.LRange(ctx, pendingPayoutsKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]PendingPayout, 0, len(items))
	for _, item := range items {
		var p PendingPayout
		if err := json.Unmarshal([]byte(item), &p); err != nil {
			return nil, fmt.Errorf("反序列化待对账记录失败: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

// MemoryStore 进程内存储，内存账本模式下替代 RedisStore
type MemoryStore struct {
	mu      sync.Mutex
	rooms   map[string]RoomData
	pending []PendingPayout
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]RoomData)}
}

func (ms *MemoryStore) SaveRoom(_ context.Context, data *RoomData) error {
	if data == nil {
		return nil
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	cp := *data
	cp.Called = slices.Clone(data.Called)
	cp.Players = slices.Clone(data.Players)
	ms.rooms[data.ID] = cp
	return nil
}

func (ms *MemoryStore) LoadRoom(_ context.Context, id string) (*RoomData, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	data, ok := ms.rooms[id]
	if !ok {
		return nil, nil
	}
	return &data, nil
}

func (ms *MemoryStore) RecordPendingPayout(_ context.Context, p PendingPayout) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.pending = append(ms.pending, p)
	return nil
}

func (ms *MemoryStore) PendingPayouts(_ context.Context) ([]PendingPayout, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return slices.Clone(ms.pending), nil
}
