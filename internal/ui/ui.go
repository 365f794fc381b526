// Package ui 终端宾果客户端（bubbletea）
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/bingo-hall/internal/client"
	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/sound"
	"github.com/palemoky/bingo-hall/internal/transport"
)

// GamePhase 客户端界面阶段
type GamePhase int

const (
	PhaseConnecting GamePhase = iota
	PhaseLobby
	PhaseWaiting // 已选卡，等待开号
	PhasePlaying
	PhaseGameOver
	PhaseLeaderboard
)

const (
	noticeDuration = 3 * time.Second
	leaderboardTop = 10
)

// ServerMessage 服务器消息（用于 tea.Msg）
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg 连接成功消息
type ConnectedMsg struct{}

// ConnectionErrorMsg 连接错误消息
type ConnectionErrorMsg struct {
	Err error
}

// ReconnectingMsg 正在重连消息
type ReconnectingMsg struct {
	Attempt  int
	MaxTries int
}

// ReconnectSuccessMsg 重连成功消息
type ReconnectSuccessMsg struct{}

// ClearNoticeMsg 清除提示
type ClearNoticeMsg struct{}

// Identity 登录身份
type Identity struct {
	PlayerID string
	Name     string
}

// Model 联网模式的 model
type Model struct {
	client   *transport.Client
	state    *client.GameState
	identity Identity
	phase    GamePhase

	notice string
	error  string

	// 网络状态
	latency      int64
	reconnecting bool
	reconnectMsg string
	events       chan tea.Msg // 来自连接回调的消息

	leaderboard []protocol.LeaderboardEntry
	sound       *sound.Player

	input  textinput.Model
	width  int
	height int
}

// NewModel 创建 model，player 为 nil 时不播放音效
func NewModel(c *transport.Client, id Identity, player *sound.Player) *Model {
	ti := textinput.New()
	ti.Placeholder = "房间号 卡号，例如 R1 42"
	ti.CharLimit = 24
	ti.Width = 28
	ti.Focus()

	events := make(chan tea.Msg, 10)
	m := &Model{
		client:   c,
		state:    client.NewGameState(),
		identity: id,
		phase:    PhaseConnecting,
		events:   events,
		input:    ti,
		sound:    player,
	}

	// 通过 channel 把回调转成 Bubble Tea 消息
	c.OnReconnecting = func(attempt, maxTries int) {
		select {
		case events <- ReconnectingMsg{Attempt: attempt, MaxTries: maxTries}:
		default:
		}
	}
	c.OnReconnect = func() {
		select {
		case events <- ReconnectSuccessMsg{}:
		default:
		}
	}

	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.connectToServer(),
		textinput.Blink,
		m.listenForEvents(),
	)
}

// connectToServer 连接服务器
func (m *Model) connectToServer() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.client.Connect(ctx); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

// listenForMessages 监听服务器消息
func (m *Model) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg, err := m.client.Receive()
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ServerMessage{Msg: msg}
	}
}

// listenForEvents 监听重连事件
func (m *Model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if handled, cmd := m.handleKeyPress(msg); handled {
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case ConnectedMsg:
		m.client.StartHeartbeat()
		if err := m.client.Login(m.identity.PlayerID, m.identity.Name); err != nil {
			m.error = err.Error()
		}
		return m, m.listenForMessages()

	case ConnectionErrorMsg:
		m.error = "连接失败: " + msg.Err.Error()
		return m, tea.Quit

	case ServerMessage:
		cmd := m.handleServerMessage(msg.Msg)
		return m, tea.Batch(cmd, m.listenForMessages())

	case ReconnectingMsg:
		m.reconnecting = true
		m.reconnectMsg = reconnectText(msg.Attempt, msg.MaxTries)
		return m, m.listenForEvents()

	case ReconnectSuccessMsg:
		m.reconnecting = false
		m.reconnectMsg = ""
		return m, tea.Batch(m.setNotice("✅ 重连成功"), m.listenForEvents())

	case ClearNoticeMsg:
		m.notice = ""
		m.error = ""
		return m, nil
	}

	return m, nil
}

// setNotice 显示提示，数秒后清除
func (m *Model) setNotice(text string) tea.Cmd {
	m.notice = text
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg { return ClearNoticeMsg{} })
}

// setError 显示错误，数秒后清除
func (m *Model) setError(text string) tea.Cmd {
	m.play(sound.Alert)
	m.error = text
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg { return ClearNoticeMsg{} })
}

func (m *Model) play(name sound.Name) {
	if m.sound != nil {
		m.sound.Play(name)
	}
}

// enterLobby 回到大厅并刷新房间列表
func (m *Model) enterLobby() tea.Cmd {
	m.phase = PhaseLobby
	m.input.Placeholder = "房间号 卡号，例如 R1 42"
	m.input.SetValue("")
	m.input.Focus()
	if err := m.client.GetRooms(); err != nil {
		return m.setError(err.Error())
	}
	return nil
}
