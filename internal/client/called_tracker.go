package client

import "github.com/palemoky/bingo-hall/internal/game/board"

// CalledTracker tracks how many numbers of each column are still undrawn
type CalledTracker struct {
	remaining [board.Size]int
	history   []int
}

// NewCalledTracker creates a tracker for a fresh round
func NewCalledTracker() *CalledTracker {
	ct := &CalledTracker{}
	ct.Reset()
	return ct
}

// Reset restores all 75 numbers
func (ct *CalledTracker) Reset() {
	for col := range ct.remaining {
		ct.remaining[col] = board.ColumnSpan
	}
	ct.history = ct.history[:0]
}

// Mark records a drawn number; out-of-range numbers are ignored
func (ct *CalledTracker) Mark(number int) {
	col := board.ColumnOf(number)
	if col < 0 || ct.remaining[col] == 0 {
		return
	}
	ct.remaining[col]--
	ct.history = append(ct.history, number)
}

// Remaining returns the undrawn count of a column
func (ct *CalledTracker) Remaining(col int) int {
	if col < 0 || col >= board.Size {
		return 0
	}
	return ct.remaining[col]
}

// Recent returns up to n most recent numbers, newest first
func (ct *CalledTracker) Recent(n int) []int {
	if n > len(ct.history) {
		n = len(ct.history)
	}
	out := make([]int, 0, n)
	for i := len(ct.history) - 1; i >= len(ct.history)-n; i-- {
		out = append(out, ct.history[i])
	}
	return out
}
