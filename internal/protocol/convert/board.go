// Package convert 协议结构与游戏领域类型之间的转换
package convert

import (
	"fmt"

	"github.com/palemoky/bingo-hall/internal/game/board"
	"github.com/palemoky/bingo-hall/internal/game/rule"
	"github.com/palemoky/bingo-hall/internal/protocol"
)

// --- Board conversion ---

// BoardToPayload 将卡片转换为 protocol.BoardPayload
func BoardToPayload(n int64, b board.Board) *protocol.BoardPayload {
	return &protocol.BoardPayload{
		BoardNumber: n,
		Cells:       b.Rows(),
		Columns:     board.ColumnLetters[:],
	}
}

// PayloadToBoard 将 protocol.BoardPayload 还原为卡片
func PayloadToBoard(p *protocol.BoardPayload) (board.Board, error) {
	var b board.Board
	if len(p.Cells) != board.Size {
		return b, fmt.Errorf("board has %d rows, want %d", len(p.Cells), board.Size)
	}
	for r, row := range p.Cells {
		if len(row) != board.Size {
			return b, fmt.Errorf("board row %d has %d cells, want %d", r, len(row), board.Size)
		}
		for c, v := range row {
			if v != board.Wildcard && board.ColumnOf(v) != c {
				return b, fmt.Errorf("cell (%d,%d) value %d outside column %s", r, c, v, board.ColumnLetters[c])
			}
			b[r][c] = v
		}
	}
	return b, nil
}

// --- Win conversion ---

// WinToInfo 将 rule.WinResult 转换为 protocol.WinInfo
func WinToInfo(w rule.WinResult) *protocol.WinInfo {
	return &protocol.WinInfo{
		Type:  w.Type.String(),
		Index: w.Index,
	}
}

// InfoToWin 将 protocol.WinInfo 转换为 rule.WinResult
func InfoToWin(info *protocol.WinInfo) (rule.WinResult, error) {
	if info == nil {
		return rule.WinResult{}, fmt.Errorf("win info is empty")
	}
	p, err := rule.ParsePattern(info.Type)
	if err != nil {
		return rule.WinResult{}, err
	}
	return rule.WinResult{Type: p, Index: info.Index}, nil
}
