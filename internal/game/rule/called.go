package rule

import (
	"fmt"
	"math/rand/v2"

	"github.com/palemoky/bingo-hall/internal/game/board"
)

// CalledNumbers 本轮已开出的号码：按开出顺序记录，同时维护位图便于查询
type CalledNumbers struct {
	order  []int
	marked [board.MaxNumber + 1]bool
}

// NewCalledNumbers 由号码列表构造（测试与恢复用），重复或越界号码返回错误
func NewCalledNumbers(numbers ...int) (*CalledNumbers, error) {
	c := &CalledNumbers{}
	for _, n := range numbers {
		if err := c.Add(n); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Has 号码是否已开出
func (c *CalledNumbers) Has(number int) bool {
	if number < 1 || number > board.MaxNumber {
		return false
	}
	return c.marked[number]
}

// Add 记录一个新号码
func (c *CalledNumbers) Add(number int) error {
	if number < 1 || number > board.MaxNumber {
		return fmt.Errorf("number %d out of range 1..%d", number, board.MaxNumber)
	}
	if c.marked[number] {
		return fmt.Errorf("number %d already called", number)
	}
	c.marked[number] = true
	c.order = append(c.order, number)
	return nil
}

// Len 已开出数量
func (c *CalledNumbers) Len() int {
	return len(c.order)
}

// Exhausted 75 个号码是否已全部开出
func (c *CalledNumbers) Exhausted() bool {
	return len(c.order) >= board.MaxNumber
}

// Last 最近开出的号码，没有时返回 0
func (c *CalledNumbers) Last() int {
	if len(c.order) == 0 {
		return 0
	}
	return c.order[len(c.order)-1]
}

// Numbers 按开出顺序返回副本
func (c *CalledNumbers) Numbers() []int {
	return append([]int(nil), c.order...)
}

// Reset 清空，开始新一轮
func (c *CalledNumbers) Reset() {
	c.order = c.order[:0]
	c.marked = [board.MaxNumber + 1]bool{}
}

// Draw 从尚未开出的号码中均匀抽取一个并记录
// 号码已耗尽时返回 0
func (c *CalledNumbers) Draw(r *rand.Rand) int {
	remaining := board.MaxNumber - len(c.order)
	if remaining <= 0 {
		return 0
	}

	// 在未开出的号码中取第 k 个
	k := r.IntN(remaining)
	for n := 1; n <= board.MaxNumber; n++ {
		if c.marked[n] {
			continue
		}
		if k == 0 {
			c.marked[n] = true
			c.order = append(c.order, n)
			return n
		}
		k--
	}
	return 0
}
