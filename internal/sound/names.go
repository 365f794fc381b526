package sound

// DefaultDir 默认音效目录（相对工作目录）
const DefaultDir = "assets/sounds"

// Name 音效名称，对应目录下去掉扩展名的文件名
type Name string

const (
	GameStart    Name = "game_start"
	NumberCalled Name = "number_called"
	Bingo        Name = "bingo" // 自己中奖
	RoundLost    Name = "round_lost"
	Alert        Name = "alert" // 错误提示
)

var known = map[Name]bool{
	GameStart:    true,
	NumberCalled: true,
	Bingo:        true,
	RoundLost:    true,
	Alert:        true,
}

// Known 是否为客户端会播放的音效
func (n Name) Known() bool {
	return known[n]
}
