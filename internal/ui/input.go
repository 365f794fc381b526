package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var errJoinSyntax = errors.New("格式: 房间号 卡号，例如 R1 42")

// handleKeyPress 处理按键消息，返回是否已处理和命令
func (m *Model) handleKeyPress(msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.client.Close()
		return true, tea.Quit
	}

	switch m.phase {
	case PhaseConnecting:
		return true, nil
	case PhaseLobby:
		return m.handleLobbyKey(msg)
	case PhaseWaiting:
		return m.handleWaitingKey(msg)
	case PhasePlaying:
		return m.handlePlayingKey(msg)
	case PhaseGameOver, PhaseLeaderboard:
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			return true, m.enterLobby()
		}
		return true, nil
	}
	return false, nil
}

func (m *Model) handleLobbyKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.Type != tea.KeyEnter {
		return false, nil
	}

	value := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	var err error
	switch strings.ToLower(value) {
	case "":
		return true, nil
	case "q":
		m.client.Close()
		return true, tea.Quit
	case "l":
		err = m.client.GetLeaderboard(leaderboardTop)
	case "r":
		err = m.client.GetRooms()
	default:
		roomID, boardNumber, perr := m.parseJoinCommand(value)
		if perr != nil {
			return true, m.setError(perr.Error())
		}
		err = m.client.JoinGame(roomID, boardNumber)
	}
	if err != nil {
		return true, m.setError(err.Error())
	}
	return true, nil
}

func (m *Model) handleWaitingKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		if err := m.client.LeaveGame(m.state.RoomID); err != nil {
			return true, m.setError(err.Error())
		}
	}
	return true, nil
}

func (m *Model) handlePlayingKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case " ", "b":
		if m.state.Win() == nil {
			return true, m.setNotice("还没有完成任何图案")
		}
		if err := m.client.ClaimBingo(m.state.RoomID); err != nil {
			return true, m.setError(err.Error())
		}
		return true, m.setNotice("📣 BINGO! 等待确认...")
	}
	return true, nil
}

// parseJoinCommand 解析 "R1 42"；房间号不区分大小写
func (m *Model) parseJoinCommand(value string) (string, int64, error) {
	fields := strings.Fields(value)
	if len(fields) != 2 {
		return "", 0, errJoinSyntax
	}

	roomID := fields[0]
	if len(m.state.Rooms) > 0 {
		found := false
		for _, r := range m.state.Rooms {
			if strings.EqualFold(r.RoomID, roomID) {
				roomID, found = r.RoomID, true
				break
			}
		}
		if !found {
			return "", 0, fmt.Errorf("房间 %s 不存在", fields[0])
		}
	}

	n, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || n < 1 {
		return "", 0, errJoinSyntax
	}
	return roomID, n, nil
}
