// Package board 生成确定性的 5×5 宾果卡片。
package board

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	Size       = 5  // 卡片边长
	ColumnSpan = 15 // 每列号码个数
	MaxNumber  = Size * ColumnSpan

	// Wildcard 中心免费格，永远视为已标记
	Wildcard = 0

	CenterRow = 2
	CenterCol = 2

	goldenRatio64 = 0x9e3779b97f4a7c15
)

// ColumnLetters B-I-N-G-O 列名
var ColumnLetters = [Size]string{"B", "I", "N", "G", "O"}

// Board 一张卡片，Board[row][col]
type Board [Size][Size]int

// Generator 卡片生成器
// key 参与每一次交换的随机种子，不同 key 对同一卡号生成不同卡片
type Generator struct {
	key uint64
}

// NewGenerator 根据服务端密钥创建生成器；密钥为空时等价于 Generate
func NewGenerator(secret string) *Generator {
	if secret == "" {
		return &Generator{}
	}
	return &Generator{key: xxhash.Sum64String(secret)}
}

var defaultGenerator = &Generator{}

// Generate 使用零密钥生成卡片
func Generate(n int64) Board {
	return defaultGenerator.Board(n)
}

// Board 生成卡号 n 对应的卡片，相同输入总是得到相同输出
func (g *Generator) Board(n int64) Board {
	var b Board
	for col := range Size {
		pool := columnPool(col)
		for i := ColumnSpan - 1; i > 0; i-- {
			j := g.swapIndex(n, col, i)
			pool[i], pool[j] = pool[j], pool[i]
		}
		for row := range Size {
			b[row][col] = pool[row]
		}
	}
	b[CenterRow][CenterCol] = Wildcard
	return b
}

// swapIndex 第 i 次交换的目标下标，范围 [0, i]
func (g *Generator) swapIndex(n int64, col, i int) int {
	seed := mix(g.key ^ mix(uint64(n)))
	seed = mix(seed + uint64(col)*goldenRatio64)
	seed = mix(seed + uint64(i))
	r := rand.New(rand.NewPCG(seed, mix(seed+goldenRatio64)))
	return r.IntN(i + 1)
}

// columnPool 第 col 列的有序号码池
func columnPool(col int) [ColumnSpan]int {
	var pool [ColumnSpan]int
	base := col*ColumnSpan + 1
	for i := range pool {
		pool[i] = base + i
	}
	return pool
}

// ColumnRange 返回第 col 列的号码范围（闭区间）
func ColumnRange(col int) (lo, hi int) {
	lo = col*ColumnSpan + 1
	return lo, lo + ColumnSpan - 1
}

// ColumnOf 返回号码所在列，号码非法时返回 -1
func ColumnOf(number int) int {
	if number < 1 || number > MaxNumber {
		return -1
	}
	return (number - 1) / ColumnSpan
}

// Label 形如 "B12" 的号码标签
func Label(number int) string {
	col := ColumnOf(number)
	if col < 0 {
		return strconv.Itoa(number)
	}
	return ColumnLetters[col] + strconv.Itoa(number)
}

// Numbers 按行展开的 25 个格子
func (b Board) Numbers() []int {
	out := make([]int, 0, Size*Size)
	for _, row := range b {
		out = append(out, row[:]...)
	}
	return out
}

// Rows 以切片形式返回，便于序列化
func (b Board) Rows() [][]int {
	rows := make([][]int, Size)
	for r := range b {
		rows[r] = append([]int(nil), b[r][:]...)
	}
	return rows
}

func (b Board) String() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(ColumnLetters[:], "  "))
	sb.WriteByte('\n')
	for _, row := range b {
		for c, v := range row {
			if c > 0 {
				sb.WriteByte(' ')
			}
			if v == Wildcard {
				sb.WriteString(" *")
				continue
			}
			if v < 10 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.Itoa(v))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// mix splitmix64 终结函数
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
