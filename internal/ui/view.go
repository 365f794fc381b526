package ui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/bingo-hall/internal/game/board"
	"github.com/palemoky/bingo-hall/internal/game/rule"
	"github.com/palemoky/bingo-hall/internal/protocol"
)

const recentCalls = 8

// View 按阶段渲染
func (m *Model) View() string {
	var body string
	switch m.phase {
	case PhaseConnecting:
		body = m.connectingView()
	case PhaseLobby:
		body = m.lobbyView()
	case PhaseWaiting:
		body = m.waitingView()
	case PhasePlaying:
		body = m.playingView()
	case PhaseGameOver:
		body = m.gameOverView()
	case PhaseLeaderboard:
		body = m.leaderboardView()
	}

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		body,
		m.messageLine(),
		m.statusBar(),
	))
}

func (m *Model) connectingView() string {
	if m.error != "" {
		return errorStyle.Render(m.error)
	}
	return "🔌 正在连接服务器..."
}

func (m *Model) lobbyView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle("🎱 宾果大厅"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("欢迎, %s!  余额: %.2f\n\n", m.state.PlayerName, m.state.Balance))

	rows := []string{headerStyle.Render(fmt.Sprintf("%-6s %8s %-8s %6s %6s", "房间", "押注", "状态", "倒计时", "人数"))}
	for _, r := range m.state.Rooms {
		timer := "-"
		if r.Status == protocol.StatusWaiting {
			timer = strconv.Itoa(r.Timer) + "s"
		}
		rows = append(rows, fmt.Sprintf("%-6s %8.2f %-8s %6s %6d", r.RoomID, r.Stake, r.Status, timer, r.PlayerCount))
	}
	if len(m.state.Rooms) == 0 {
		rows = append(rows, dimStyle.Render("(暂无房间)"))
	}
	sb.WriteString(boxStyle.Render(strings.Join(rows, "\n")))

	sb.WriteString(promptStyle.Render("\n" + m.input.View()))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("输入 \"房间号 卡号\" 加入本轮 · l 赢家榜 · r 刷新 · q 退出"))
	return sb.String()
}

func (m *Model) waitingView() string {
	gs := m.state
	var sb strings.Builder
	sb.WriteString(titleStyle(fmt.Sprintf("🎱 房间 %s · 卡号 %d", gs.RoomID, gs.BoardNumber)))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("⏳ 开号倒计时: %ds   👥 人数: %d   余额: %.2f\n\n", gs.Timer, gs.PlayerCount, gs.Balance))
	if gs.HasBoard {
		sb.WriteString(m.renderBoard(nil))
	} else {
		sb.WriteString(dimStyle.Render("加载卡片中..."))
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("esc 退出本轮并退回押注"))
	return sb.String()
}

func (m *Model) playingView() string {
	gs := m.state
	win := gs.Win()

	var sb strings.Builder
	sb.WriteString(titleStyle(fmt.Sprintf("🎱 房间 %s · 卡号 %d", gs.RoomID, gs.BoardNumber)))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("已开 %d/%d   👥 %d   ", gs.Called.Len(), board.MaxNumber, gs.PlayerCount))
	if last := gs.Called.Last(); last != 0 {
		sb.WriteString("最新: " + lastCallStyle.Render(board.Label(last)))
	}
	sb.WriteString("\n\n")

	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderBoard(win),
		"   ",
		m.renderCallPanel(),
	))
	sb.WriteString("\n")

	if win != nil {
		sb.WriteString(winStyle.Render(fmt.Sprintf("✨ 已完成 %s，按空格宣布 BINGO!", win)))
	} else {
		sb.WriteString(dimStyle.Render("空格/b 宣布 BINGO"))
	}
	return sb.String()
}

// renderBoard 渲染卡片；win 非空时高亮中奖图案
func (m *Model) renderBoard(win *rule.WinResult) string {
	b := m.state.Board
	var highlight []int
	if win != nil {
		highlight = rule.PatternCells(b, *win)
	}

	header := make([]string, 0, board.Size)
	for _, letter := range board.ColumnLetters {
		header = append(header, headerStyle.Inherit(cellStyle).Render(letter))
	}
	lines := []string{lipgloss.JoinHorizontal(lipgloss.Top, header...)}

	for r := range board.Size {
		cells := make([]string, 0, board.Size)
		for c := range board.Size {
			v := b[r][c]
			text := strconv.Itoa(v)
			style := cellStyle
			switch {
			case v == board.Wildcard:
				text, style = "★", freeStyle
			case slices.Contains(highlight, v):
				style = winCellStyle
			case m.state.Marked(r, c):
				style = markedStyle
			}
			cells = append(cells, style.Render(text))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// renderCallPanel 最近开出的号码与各列剩余数量
func (m *Model) renderCallPanel() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("最近开出"))
	sb.WriteString("\n")
	recent := m.state.Tracker.Recent(recentCalls)
	if len(recent) == 0 {
		sb.WriteString(dimStyle.Render("-"))
	}
	labels := make([]string, 0, len(recent))
	for _, n := range recent {
		labels = append(labels, board.Label(n))
	}
	sb.WriteString(strings.Join(labels, " "))

	sb.WriteString("\n\n")
	sb.WriteString(headerStyle.Render("剩余"))
	sb.WriteString("\n")
	for col, letter := range board.ColumnLetters {
		sb.WriteString(fmt.Sprintf("%s:%-3d", letter, m.state.Tracker.Remaining(col)))
	}
	return boxStyle.Render(sb.String())
}

func (m *Model) gameOverView() string {
	res := m.state.Result
	var sb strings.Builder
	sb.WriteString(titleStyle("🏁 本轮结束"))
	sb.WriteString("\n\n")

	switch {
	case res == nil:
	case res.Reason == protocol.ReasonSettlementFailed:
		sb.WriteString(errorStyle.Render("派奖失败，本轮作废，已记录待对账"))
	case res.WinnerID == "":
		sb.WriteString("75 个号码全部开出，无人中奖")
	case res.WinnerID == m.state.PlayerID:
		sb.WriteString(winStyle.Render(fmt.Sprintf("🏆 恭喜你中奖！奖金 %.2f", res.Amount)))
	default:
		sb.WriteString(fmt.Sprintf("赢家: %s  奖金 %.2f", res.Winner, res.Amount))
	}
	if res != nil && res.WinInfo != nil {
		sb.WriteString(fmt.Sprintf("\n图案: %s #%d", res.WinInfo.Type, res.WinInfo.Index))
	}

	sb.WriteString(fmt.Sprintf("\n\n余额: %.2f\n", m.state.Balance))
	sb.WriteString(dimStyle.Render("回车返回大厅"))
	return sb.String()
}

func (m *Model) leaderboardView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle(fmt.Sprintf("🏆 赢家榜 TOP %d", leaderboardTop)))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("─", 52) + "\n")
	sb.WriteString(fmt.Sprintf("%-4s %-12s %6s %10s %10s\n", "排名", "玩家", "胜场", "总奖金", "最大奖池"))
	sb.WriteString(strings.Repeat("─", 52) + "\n")

	for _, e := range m.leaderboard {
		var rank string
		switch e.Rank {
		case 1:
			rank = "🥇"
		case 2:
			rank = "🥈"
		case 3:
			rank = "🥉"
		default:
			rank = fmt.Sprintf("%2d.", e.Rank)
		}
		sb.WriteString(fmt.Sprintf("%-4s %-12s %6d %10.2f %10.2f\n",
			rank, truncateName(e.PlayerName, 10), e.RoundsWon, e.TotalWinnings, e.BiggestPot))
	}
	if len(m.leaderboard) == 0 {
		sb.WriteString(dimStyle.Render("暂无数据") + "\n")
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("回车返回大厅"))
	return sb.String()
}

func (m *Model) messageLine() string {
	switch {
	case m.error != "":
		return "\n" + errorStyle.Render(m.error)
	case m.notice != "":
		return "\n" + noticeStyle.Render(m.notice)
	}
	return ""
}

func (m *Model) statusBar() string {
	if m.reconnecting {
		return "\n" + noticeStyle.Render(m.reconnectMsg)
	}
	if m.latency > 0 {
		return "\n" + dimStyle.Render(fmt.Sprintf("延迟 %dms", m.latency))
	}
	return ""
}

func reconnectText(attempt, maxTries int) string {
	return fmt.Sprintf("🔄 连接断开，正在重连 (%d/%d)...", attempt, maxTries)
}

// truncateName 按字符截断过长的名字
func truncateName(name string, limit int) string {
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}
	return string(runes[:limit-1]) + "…"
}
