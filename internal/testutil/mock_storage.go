//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/server/storage"
	"github.com/palemoky/bingo-hall/internal/types"
)

// MockLedger 账本 mock
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) FindOrCreateUser(ctx context.Context, id types.Identity) (*types.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Account), args.Error(1)
}

func (m *MockLedger) Balance(ctx context.Context, playerID string) (float64, error) {
	args := m.Called(ctx, playerID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockLedger) Debit(ctx context.Context, playerID string, amount float64) (float64, error) {
	args := m.Called(ctx, playerID, amount)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockLedger) Credit(ctx context.Context, playerID string, amount float64) (float64, error) {
	args := m.Called(ctx, playerID, amount)
	return args.Get(0).(float64), args.Error(1)
}

// MockLeaderboard 赢家榜 mock
type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) RecordWin(ctx context.Context, playerID, playerName string, amount float64) error {
	args := m.Called(ctx, playerID, playerName, amount)
	return args.Error(0)
}

func (m *MockLeaderboard) GetLeaderboard(ctx context.Context, limit int) ([]protocol.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]protocol.LeaderboardEntry), args.Error(1)
}

// MockRoomStore 房间存储 mock
type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) SaveRoom(ctx context.Context, data *storage.RoomData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockRoomStore) RecordPendingPayout(ctx context.Context, p storage.PendingPayout) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
