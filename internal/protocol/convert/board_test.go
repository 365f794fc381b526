package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/bingo-hall/internal/game/board"
	"github.com/palemoky/bingo-hall/internal/game/rule"
	"github.com/palemoky/bingo-hall/internal/protocol"
)

func TestBoardPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	for _, n := range []int64{1, 42, 9999} {
		b := board.Generate(n)
		p := BoardToPayload(n, b)

		assert.Equal(t, n, p.BoardNumber)
		assert.Equal(t, []string{"B", "I", "N", "G", "O"}, p.Columns)

		got, err := PayloadToBoard(p)
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}
}

func TestPayloadToBoard_Invalid(t *testing.T) {
	t.Parallel()

	valid := BoardToPayload(7, board.Generate(7))

	tests := []struct {
		name  string
		cells [][]int
	}{
		{"too few rows", valid.Cells[:4]},
		{"short row", [][]int{valid.Cells[0][:4], valid.Cells[1], valid.Cells[2], valid.Cells[3], valid.Cells[4]}},
		{"wrong column", [][]int{{16, 16, 31, 46, 61}, valid.Cells[1], valid.Cells[2], valid.Cells[3], valid.Cells[4]}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := PayloadToBoard(&protocol.BoardPayload{Cells: tt.cells})
			assert.Error(t, err)
		})
	}
}

func TestWinInfoRoundTrip(t *testing.T) {
	t.Parallel()

	wins := []rule.WinResult{
		{Type: rule.Row, Index: 3},
		{Type: rule.Column, Index: 0},
		{Type: rule.Diagonal, Index: rule.AntiDiagonalIndex},
		{Type: rule.Corners, Index: rule.CornersIndex},
	}
	for _, w := range wins {
		info := WinToInfo(w)
		got, err := InfoToWin(info)
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}

	assert.Equal(t, "COL", WinToInfo(rule.WinResult{Type: rule.Column}).Type)

	_, err := InfoToWin(&protocol.WinInfo{Type: "X"})
	assert.Error(t, err)
	_, err = InfoToWin(nil)
	assert.Error(t, err)
}
