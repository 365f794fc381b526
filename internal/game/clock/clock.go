package clock

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/palemoky/bingo-hall/internal/logger"
)

// Ticker 每个计时单位被推进一次的目标（RoomManager）
type Ticker interface {
	TickAll()
}

// GameClock 以固定周期驱动所有房间，是唯一的时间来源
type GameClock struct {
	clock    quartz.Clock
	interval time.Duration
	target   Ticker
	logger   *log.Logger
}

// New 创建游戏时钟，clock 为 nil 时使用真实时钟
func New(clock quartz.Clock, interval time.Duration, target Ticker) *GameClock {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &GameClock{
		clock:    clock,
		interval: interval,
		target:   target,
		logger:   log.Default().With("component", "clock"),
	}
}

// Interval 计时周期
func (g *GameClock) Interval() time.Duration {
	return g.interval
}

// Start 启动周期推进，返回的 Waiter 在 ctx 取消后结束
func (g *GameClock) Start(ctx context.Context) quartz.Waiter {
	g.logger.Info("⏱️ 游戏时钟启动", "interval", g.interval)
	return g.clock.TickerFunc(ctx, g.interval, g.tick, "clock", "tick")
}

// Run 阻塞运行直到 ctx 取消
func (g *GameClock) Run(ctx context.Context) error {
	err := g.Start(ctx).Wait()
	if errors.Is(err, context.Canceled) {
		g.logger.Info("游戏时钟已停止")
		return nil
	}
	return err
}

// tick 单次推进，房间内的 panic 不会终止时钟
func (g *GameClock) tick() error {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(g.logger, r)
		}
	}()
	g.target.TickAll()
	return nil
}
