package storage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/bingo-hall/internal/apperrors"
	"github.com/palemoky/bingo-hall/internal/types"
)

// ledgerFactories 两种账本实现跑同一组用例
var ledgerFactories = map[string]func(t *testing.T) types.Ledger{
	"redis": func(t *testing.T) types.Ledger {
		client, _ := newTestRedis(t)
		return NewRedisLedger(client, 50)
	},
	"memory": func(*testing.T) types.Ledger {
		return NewMemoryLedger(50)
	},
}

func TestLedger_FindOrCreateGrantsBonusOnce(t *testing.T) {
	t.Parallel()

	for name, newLedger := range ledgerFactories {
		t.Run(name, func(t *testing.T) {
			l := newLedger(t)
			ctx := testCtx()

			acc, err := l.FindOrCreateUser(ctx, types.Identity{PlayerID: "p1", FirstName: "Alice"})
			require.NoError(t, err)
			assert.True(t, acc.Created)
			assert.InDelta(t, 50.0, acc.Balance, 1e-9)
			assert.Equal(t, "Alice", acc.Name)

			again, err := l.FindOrCreateUser(ctx, types.Identity{PlayerID: "p1", FirstName: "Alice B"})
			require.NoError(t, err)
			assert.False(t, again.Created)
			assert.InDelta(t, 50.0, again.Balance, 1e-9)
		})
	}
}

func TestLedger_DebitAndCredit(t *testing.T) {
	t.Parallel()

	for name, newLedger := range ledgerFactories {
		t.Run(name, func(t *testing.T) {
			l := newLedger(t)
			ctx := testCtx()
			_, err := l.FindOrCreateUser(ctx, types.Identity{PlayerID: "p1", FirstName: "Alice"})
			require.NoError(t, err)

			bal, err := l.Debit(ctx, "p1", 10)
			require.NoError(t, err)
			assert.InDelta(t, 40.0, bal, 1e-9)

			bal, err = l.Credit(ctx, "p1", 16)
			require.NoError(t, err)
			assert.InDelta(t, 56.0, bal, 1e-9)

			bal, err = l.Balance(ctx, "p1")
			require.NoError(t, err)
			assert.InDelta(t, 56.0, bal, 1e-9)
		})
	}
}

func TestLedger_DebitInsufficientLeavesBalance(t *testing.T) {
	t.Parallel()

	for name, newLedger := range ledgerFactories {
		t.Run(name, func(t *testing.T) {
			l := newLedger(t)
			ctx := testCtx()
			_, err := l.FindOrCreateUser(ctx, types.Identity{PlayerID: "p1"})
			require.NoError(t, err)

			_, err = l.Debit(ctx, "p1", 50.01)
			assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

			bal, err := l.Balance(ctx, "p1")
			require.NoError(t, err)
			assert.InDelta(t, 50.0, bal, 1e-9)

			// 恰好等于余额可以扣
			bal, err = l.Debit(ctx, "p1", 50)
			require.NoError(t, err)
			assert.InDelta(t, 0.0, bal, 1e-9)
		})
	}
}

func TestLedger_UnknownUser(t *testing.T) {
	t.Parallel()

	for name, newLedger := range ledgerFactories {
		t.Run(name, func(t *testing.T) {
			l := newLedger(t)
			ctx := testCtx()

			_, err := l.Balance(ctx, "ghost")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
			_, err = l.Debit(ctx, "ghost", 1)
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
			_, err = l.Credit(ctx, "ghost", 1)
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	}
}

func TestLedger_RejectsNonPositiveAmounts(t *testing.T) {
	t.Parallel()

	for name, newLedger := range ledgerFactories {
		t.Run(name, func(t *testing.T) {
			l := newLedger(t)
			ctx := testCtx()
			_, err := l.FindOrCreateUser(ctx, types.Identity{PlayerID: "p1"})
			require.NoError(t, err)

			_, err = l.Debit(ctx, "p1", 0)
			assert.Error(t, err)
			_, err = l.Credit(ctx, "p1", -5)
			assert.Error(t, err)
		})
	}
}

func TestLedger_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	t.Parallel()

	for name, newLedger := range ledgerFactories {
		t.Run(name, func(t *testing.T) {
			l := newLedger(t)
			ctx := testCtx()
			_, err := l.FindOrCreateUser(ctx, types.Identity{PlayerID: "p1"})
			require.NoError(t, err)

			var (
				wg sync.WaitGroup
				mu sync.Mutex
				ok int
			)
			for range 20 {
				wg.Go(func() {
					if _, err := l.Debit(ctx, "p1", 10); err == nil {
						mu.Lock()
						ok++
						mu.Unlock()
					}
				})
			}
			wg.Wait()

			assert.Equal(t, 5, ok, "50 balance covers exactly five 10 stakes")
			bal, err := l.Balance(ctx, "p1")
			require.NoError(t, err)
			assert.InDelta(t, 0.0, bal, 1e-9)
		})
	}
}

func TestRound2(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 16.0, Round2(10*2*0.8), 1e-12)
	assert.InDelta(t, 0.3, Round2(0.1+0.2), 1e-12)
	assert.InDelta(t, 1.01, Round2(1.005000001), 1e-12)
}
