package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/bingo-hall/internal/game/board"
	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/protocol/codec"
	"github.com/palemoky/bingo-hall/internal/protocol/convert"
	"github.com/palemoky/bingo-hall/internal/transport"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	c, err := transport.NewClient("ws://localhost:1780/ws", nil, nil)
	require.NoError(t, err)
	return NewModel(c, Identity{PlayerID: "p1", Name: "Alice"}, nil)
}

func send(m *Model, msgType protocol.MessageType, payload any) {
	m.handleServerMessage(codec.MustNewMessage(msgType, payload))
}

// loggedIn 登录并收到房间列表
func loggedIn(t *testing.T) *Model {
	t.Helper()
	m := newTestModel(t)
	send(m, protocol.MsgLoginSuccess, protocol.LoginSuccessPayload{PlayerID: "p1", Name: "Alice", Balance: 50})
	send(m, protocol.MsgRoomList, protocol.RoomListPayload{Rooms: []protocol.RoomListItem{
		{RoomID: "R1", Stake: 10, Status: protocol.StatusWaiting, Timer: 30},
		{RoomID: "R2", Stake: 50, Status: protocol.StatusWaiting, Timer: 60},
	}})
	return m
}

func TestHandleMsgLoginSuccess(t *testing.T) {
	t.Parallel()
	m := loggedIn(t)

	assert.Equal(t, PhaseLobby, m.phase)
	assert.Equal(t, "p1", m.state.PlayerID)
	assert.InDelta(t, 50.0, m.state.Balance, 1e-9)
	assert.Len(t, m.state.Rooms, 2)
	assert.Contains(t, m.View(), "R2")
}

func TestRoundFlow(t *testing.T) {
	t.Parallel()
	m := loggedIn(t)

	send(m, protocol.MsgJoinedSuccess, protocol.JoinedSuccessPayload{RoomID: "R1", BoardNumber: 42, Balance: 40})
	assert.Equal(t, PhaseWaiting, m.phase)
	assert.Equal(t, int64(42), m.state.BoardNumber)
	assert.InDelta(t, 40.0, m.state.Balance, 1e-9)

	b := board.Generate(42)
	send(m, protocol.MsgBoard, convert.BoardToPayload(42, b))
	require.True(t, m.state.HasBoard)
	assert.Contains(t, m.View(), "卡号 42")

	send(m, protocol.MsgGameStart, protocol.GameStartPayload{RoomID: "R1", PlayerCount: 2})
	assert.Equal(t, PhasePlaying, m.phase)
	assert.Equal(t, protocol.StatusPlaying, m.state.Status)

	send(m, protocol.MsgNumberCalled, protocol.NumberCalledPayload{RoomID: "R1", Number: b[0][0], CalledCount: 1})
	send(m, protocol.MsgNumberCalled, protocol.NumberCalledPayload{RoomID: "R2", Number: 75, CalledCount: 1})
	assert.True(t, m.state.Called.Has(b[0][0]))
	assert.Equal(t, 1, m.state.Called.Len(), "other rooms' draws are ignored")
	assert.Contains(t, m.View(), board.Label(b[0][0]))

	send(m, protocol.MsgGameOver, protocol.GameOverPayload{
		RoomID: "R1", Winner: "Alice", WinnerID: "p1", Amount: 16,
		WinInfo: &protocol.WinInfo{Type: "ROW", Index: 0}, Reason: protocol.ReasonWinner,
	})
	assert.Equal(t, PhaseGameOver, m.phase)
	require.NotNil(t, m.state.Result)
	assert.False(t, m.state.InRound())
	assert.Contains(t, m.View(), "16.00")

	_, cmd := m.handleKeyPress(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, PhaseLobby, m.phase)
}

func TestHandleMsgGameOver_OtherRoomIgnored(t *testing.T) {
	t.Parallel()
	m := loggedIn(t)
	send(m, protocol.MsgJoinedSuccess, protocol.JoinedSuccessPayload{RoomID: "R1", BoardNumber: 1, Balance: 40})

	send(m, protocol.MsgGameOver, protocol.GameOverPayload{RoomID: "R2", Reason: protocol.ReasonNoWinner})
	assert.Equal(t, PhaseWaiting, m.phase)
	assert.True(t, m.state.InRound())
}

func TestHandleMsgError(t *testing.T) {
	t.Parallel()
	m := loggedIn(t)

	send(m, protocol.MsgError, protocol.ErrorPayload{Code: protocol.ErrCodeInsufficientFunds})
	assert.Contains(t, m.error, protocol.ErrorMessages[protocol.ErrCodeInsufficientFunds])

	send(m, protocol.MsgError, protocol.ErrorPayload{Code: protocol.ErrCodeServerMaintenance, Message: "维护"})
	assert.Contains(t, m.notice, "维护")
}

func TestParseJoinCommand(t *testing.T) {
	t.Parallel()
	m := loggedIn(t)

	tests := []struct {
		input   string
		room    string
		number  int64
		wantErr bool
	}{
		{input: "R1 42", room: "R1", number: 42},
		{input: "r2  7", room: "R2", number: 7},
		{input: "R9 1", wantErr: true},
		{input: "R1 x", wantErr: true},
		{input: "R1 0", wantErr: true},
		{input: "R1", wantErr: true},
	}

	for _, tt := range tests {
		room, n, err := m.parseJoinCommand(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.room, room)
		assert.Equal(t, tt.number, n)
	}
}

func TestTruncateName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Alice", truncateName("Alice", 10))
	assert.Equal(t, "宾果宾果…", truncateName("宾果宾果宾果", 5))
}
