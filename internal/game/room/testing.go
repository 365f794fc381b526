//go:build !production

package room

import "github.com/palemoky/bingo-hall/internal/game/board"

// StartForTest 直接进入开号阶段并写入已开出的号码
func (r *Room) StartForTest(numbers ...int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = RoomStatePlaying
	r.timer = r.cfg.DrawInterval
	r.called.Reset()
	for _, n := range numbers {
		if err := r.called.Add(n); err != nil {
			return err
		}
	}
	return nil
}

// SetTimerForTest 设置当前倒计时
func (r *Room) SetTimerForTest(timer int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timer = timer
}

// AllNumbers 1..75，用于让任意卡片中奖
func AllNumbers() []int {
	out := make([]int, 0, board.MaxNumber)
	for n := 1; n <= board.MaxNumber; n++ {
		out = append(out, n)
	}
	return out
}
