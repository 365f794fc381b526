// Package rule 判定宾果卡片的中奖图案。
package rule

import (
	"fmt"

	"github.com/palemoky/bingo-hall/internal/game/board"
)

// Pattern 中奖图案
type Pattern int

const (
	Invalid  Pattern = iota
	Row              // 整行
	Column           // 整列
	Diagonal         // 对角线
	Corners          // 四角
)

// 对角线与四角的固定索引
const (
	MainDiagonalIndex = 1 // 左上到右下
	AntiDiagonalIndex = 2 // 右上到左下
	CornersIndex      = 0
)

// patternNames 图案名称映射表（同时用于协议编码）
var patternNames = map[Pattern]string{
	Row:      "ROW",
	Column:   "COL",
	Diagonal: "DIAG",
	Corners:  "CORNER",
}

func (p Pattern) String() string {
	if name, ok := patternNames[p]; ok {
		return name
	}
	return "INVALID"
}

// ParsePattern 由名称解析图案
func ParsePattern(name string) (Pattern, error) {
	for p, n := range patternNames {
		if n == name {
			return p, nil
		}
	}
	return Invalid, fmt.Errorf("unknown pattern %q", name)
}

func (p Pattern) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pattern) UnmarshalText(text []byte) error {
	parsed, err := ParsePattern(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// WinResult 中奖结果
type WinResult struct {
	Type  Pattern `json:"type"`
	Index int     `json:"index"`
}

func (w WinResult) String() string {
	return fmt.Sprintf("%s#%d", w.Type, w.Index)
}

// Marker 判断号码是否已开出
type Marker interface {
	Has(number int) bool
}

// cell 卡片坐标
type cell struct{ row, col int }

// line 一个候选图案及其覆盖的格子
type line struct {
	result WinResult
	cells  []cell
}

// winLines 按优先级排列的全部图案：行 → 列 → 主对角线 → 副对角线 → 四角
var winLines = buildWinLines()

func buildWinLines() []line {
	lines := make([]line, 0, board.Size*2+3)

	for r := range board.Size {
		l := line{result: WinResult{Type: Row, Index: r}}
		for c := range board.Size {
			l.cells = append(l.cells, cell{r, c})
		}
		lines = append(lines, l)
	}

	for c := range board.Size {
		l := line{result: WinResult{Type: Column, Index: c}}
		for r := range board.Size {
			l.cells = append(l.cells, cell{r, c})
		}
		lines = append(lines, l)
	}

	mainDiag := line{result: WinResult{Type: Diagonal, Index: MainDiagonalIndex}}
	antiDiag := line{result: WinResult{Type: Diagonal, Index: AntiDiagonalIndex}}
	for i := range board.Size {
		mainDiag.cells = append(mainDiag.cells, cell{i, i})
		antiDiag.cells = append(antiDiag.cells, cell{i, board.Size - 1 - i})
	}
	lines = append(lines, mainDiag, antiDiag)

	last := board.Size - 1
	lines = append(lines, line{
		result: WinResult{Type: Corners, Index: CornersIndex},
		cells:  []cell{{0, 0}, {0, last}, {last, 0}, {last, last}},
	})

	return lines
}

// CheckBoard 检查卡片是否中奖，返回第一个满足的图案，未中奖返回 nil
func CheckBoard(b board.Board, called Marker) *WinResult {
	isMarked := func(v int) bool {
		return v == board.Wildcard || called.Has(v)
	}

	for _, l := range winLines {
		complete := true
		for _, c := range l.cells {
			if !isMarked(b[c.row][c.col]) {
				complete = false
				break
			}
		}
		if complete {
			result := l.result
			return &result
		}
	}
	return nil
}

// CheckWin 按卡号检查（零密钥卡片）
func CheckWin(n int64, called Marker) *WinResult {
	return CheckBoard(board.Generate(n), called)
}

// CheckWithGenerator 使用指定生成器的卡片检查
func CheckWithGenerator(g *board.Generator, n int64, called Marker) *WinResult {
	return CheckBoard(g.Board(n), called)
}

// PatternCells 返回卡片上某个中奖图案覆盖的号码（含免费格 0），用于客户端高亮
func PatternCells(b board.Board, w WinResult) []int {
	for _, l := range winLines {
		if l.result != w {
			continue
		}
		out := make([]int, 0, len(l.cells))
		for _, c := range l.cells {
			out = append(out, b[c.row][c.col])
		}
		return out
	}
	return nil
}
