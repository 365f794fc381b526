package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/protocol/codec"
	"github.com/palemoky/bingo-hall/internal/sound"
)

// decode 解析 payload，失败时返回 false
func decode[T any](msg *protocol.Message) (T, bool) {
	p, err := codec.ParsePayload[T](msg)
	if err != nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// handleServerMessage 处理服务器消息
// 按消息类型分发到具体的处理函数
func (m *Model) handleServerMessage(msg *protocol.Message) tea.Cmd {
	switch msg.Type {
	// 连接相关
	case protocol.MsgLoginSuccess:
		return m.handleMsgLoginSuccess(msg)
	case protocol.MsgReconnected:
		return m.handleMsgReconnected(msg)
	case protocol.MsgPong:
		m.latency = m.client.GetLatency()
		return nil
	case protocol.MsgError:
		return m.handleMsgError(msg)

	// 大厅
	case protocol.MsgRoomList:
		if p, ok := decode[protocol.RoomListPayload](msg); ok {
			m.state.ApplyRoomList(p)
		}
	case protocol.MsgLobbyUpdate:
		if p, ok := decode[protocol.LobbyUpdatePayload](msg); ok {
			m.state.ApplyLobbyUpdate(p)
		}
	case protocol.MsgPlayerCount:
		if p, ok := decode[protocol.PlayerCountPayload](msg); ok && p.RoomID == m.state.RoomID {
			m.state.PlayerCount = p.Count
		}
	case protocol.MsgJoinedSuccess:
		return m.handleMsgJoined(msg)
	case protocol.MsgLeftGame:
		if p, ok := decode[protocol.LeftGamePayload](msg); ok {
			m.state.ApplyLeft(p)
			return tea.Batch(m.enterLobby(), m.setNotice(fmt.Sprintf("已退出 %s，押注已退回", p.RoomID)))
		}
	case protocol.MsgBoard:
		if p, ok := decode[protocol.BoardPayload](msg); ok {
			if err := m.state.SetBoard(p); err != nil {
				return m.setError(err.Error())
			}
		}

	// 本轮
	case protocol.MsgGameStart:
		if p, ok := decode[protocol.GameStartPayload](msg); ok && p.RoomID == m.state.RoomID {
			m.state.ApplyGameStart(p)
			m.play(sound.GameStart)
			m.phase = PhasePlaying
			m.input.Blur()
			return m.setNotice("🎱 开始开号！")
		}
	case protocol.MsgNumberCalled:
		if p, ok := decode[protocol.NumberCalledPayload](msg); ok && p.RoomID == m.state.RoomID {
			m.state.ApplyNumberCalled(p)
			m.play(sound.NumberCalled)
		}
	case protocol.MsgGameOver:
		return m.handleMsgGameOver(msg)

	// 账户与查询
	case protocol.MsgBalanceUpdate:
		if p, ok := decode[protocol.BalanceUpdatePayload](msg); ok {
			m.state.ApplyBalance(p)
		}
	case protocol.MsgLeaderboard:
		if p, ok := decode[protocol.LeaderboardPayload](msg); ok {
			m.leaderboard = p.Entries
			m.phase = PhaseLeaderboard
			m.input.Blur()
		}
	}

	return nil
}

func (m *Model) handleMsgLoginSuccess(msg *protocol.Message) tea.Cmd {
	p, ok := decode[protocol.LoginSuccessPayload](msg)
	if !ok {
		return nil
	}
	m.state.ApplyLogin(p)
	if m.phase == PhaseConnecting {
		m.phase = PhaseLobby
	}
	if p.Balance > 0 {
		return m.setNotice(fmt.Sprintf("欢迎, %s! 余额 %.2f", p.Name, p.Balance))
	}
	return nil
}

func (m *Model) handleMsgReconnected(msg *protocol.Message) tea.Cmd {
	p, ok := decode[protocol.ReconnectedPayload](msg)
	if !ok {
		return nil
	}
	m.state.ApplyReconnected(p)

	switch {
	case !m.state.InRound():
		return m.enterLobby()
	case m.state.Status == protocol.StatusPlaying:
		m.phase = PhasePlaying
		m.input.Blur()
	default:
		m.phase = PhaseWaiting
		m.input.Blur()
	}
	return nil
}

func (m *Model) handleMsgJoined(msg *protocol.Message) tea.Cmd {
	p, ok := decode[protocol.JoinedSuccessPayload](msg)
	if !ok {
		return nil
	}
	m.state.ApplyJoined(p)
	m.phase = PhaseWaiting
	m.input.SetValue("")
	m.input.Blur()
	if err := m.client.GetBoard(p.BoardNumber); err != nil {
		return m.setError(err.Error())
	}
	return m.setNotice(fmt.Sprintf("✅ 已加入 %s，卡号 %d", p.RoomID, p.BoardNumber))
}

func (m *Model) handleMsgGameOver(msg *protocol.Message) tea.Cmd {
	p, ok := decode[protocol.GameOverPayload](msg)
	if !ok || p.RoomID != m.state.RoomID {
		return nil
	}
	m.state.ApplyGameOver(p)
	m.phase = PhaseGameOver
	if p.WinnerID != "" && p.WinnerID == m.state.PlayerID {
		m.play(sound.Bingo)
	} else {
		m.play(sound.RoundLost)
	}
	return nil
}

func (m *Model) handleMsgError(msg *protocol.Message) tea.Cmd {
	p, ok := decode[protocol.ErrorPayload](msg)
	if !ok {
		return nil
	}
	text := p.Message
	if text == "" {
		text = protocol.ErrorMessages[p.Code]
	}
	if p.Code == protocol.ErrCodeServerMaintenance {
		return m.setNotice("🔧 " + text)
	}
	return m.setError(fmt.Sprintf("⚠️ %s (%d)", text, p.Code))
}
