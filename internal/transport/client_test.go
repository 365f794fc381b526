package transport

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/bingo-hall/internal/config"
	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/protocol/codec"
	"github.com/palemoky/bingo-hall/internal/server"
)

func startServer(t *testing.T) string {
	t.Helper()

	cfg := config.Default()
	cfg.Ledger.Backend = config.LedgerMemory
	cfg.Game.MaxBoardNumber = 100

	srv := server.NewServer(cfg, server.NewMemoryBackend(50), server.Options{
		Clock:  quartz.NewMock(t),
		Logger: log.New(io.Discard),
	})
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func newConnectedClient(t *testing.T, url string, c codec.Codec) *Client {
	t.Helper()

	client, err := NewClient(url, c, log.New(io.Discard))
	require.NoError(t, err)
	client.reconnectDelay = 10 * time.Millisecond
	require.NoError(t, client.Connect(context.Background()))
	t.Cleanup(client.Close)
	return client
}

func receiveUntil(t *testing.T, c *Client, want protocol.MessageType) *protocol.Message {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		msg, err := c.ReceiveWithTimeout(time.Until(deadline))
		require.NoError(t, err, "waiting for %s", want)
		if msg.Type == want {
			return msg
		}
	}
	t.Fatalf("timed out waiting for %s", want)
	return nil
}

func payloadOf[T any](t *testing.T, msg *protocol.Message) T {
	t.Helper()
	p, err := codec.ParsePayload[T](msg)
	require.NoError(t, err)
	return *p
}

func TestNewClient_AppendsCodec(t *testing.T) {
	t.Parallel()

	c, err := NewClient("ws://localhost:1780/ws", codec.Proto, nil)
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:1780/ws?codec=proto", c.ServerURL)
	assert.Equal(t, codec.Proto, c.Codec())
	assert.False(t, c.IsConnected())

	c, err = NewClient("ws://localhost:1780/ws", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, codec.JSON, c.Codec())

	_, err = NewClient("://bad", codec.JSON, nil)
	assert.Error(t, err)
}

func TestClient_LoginAndRoundTrip(t *testing.T) {
	t.Parallel()

	c := newConnectedClient(t, startServer(t), codec.JSON)

	require.NoError(t, c.Login("p1", "Ann"))
	login := payloadOf[protocol.LoginSuccessPayload](t, receiveUntil(t, c, protocol.MsgLoginSuccess))
	assert.Equal(t, "p1", login.PlayerID)
	assert.Equal(t, "p1", c.PlayerID())
	assert.Equal(t, "Ann", c.PlayerName())
	assert.Equal(t, login.ReconnectToken, c.ReconnectToken())

	require.NoError(t, c.GetRooms())
	rooms := payloadOf[protocol.RoomListPayload](t, receiveUntil(t, c, protocol.MsgRoomList))
	assert.Len(t, rooms.Rooms, 2)

	require.NoError(t, c.GetBoard(5))
	b := payloadOf[protocol.BoardPayload](t, receiveUntil(t, c, protocol.MsgBoard))
	assert.Equal(t, int64(5), b.BoardNumber)
	assert.Len(t, b.Cells, 5)

	require.NoError(t, c.JoinGame("R1", 5))
	joined := payloadOf[protocol.JoinedSuccessPayload](t, receiveUntil(t, c, protocol.MsgJoinedSuccess))
	assert.InDelta(t, 40.0, joined.Balance, 1e-9)

	require.NoError(t, c.LeaveGame("R1"))
	left := payloadOf[protocol.LeftGamePayload](t, receiveUntil(t, c, protocol.MsgLeftGame))
	assert.InDelta(t, 50.0, left.Balance, 1e-9)

	require.NoError(t, c.GetLeaderboard(5))
	receiveUntil(t, c, protocol.MsgLeaderboard)
}

func TestClient_ProtoPingUpdatesLatency(t *testing.T) {
	t.Parallel()

	var updates atomic.Int32
	c := newConnectedClient(t, startServer(t), codec.Proto)
	c.OnLatencyUpdate = func(int64) { updates.Add(1) }

	require.NoError(t, c.Ping())
	receiveUntil(t, c, protocol.MsgPong)

	assert.GreaterOrEqual(t, c.GetLatency(), int64(0))
	assert.Equal(t, int32(1), updates.Load())
}

func TestClient_ReconnectAfterDrop(t *testing.T) {
	t.Parallel()

	c := newConnectedClient(t, startServer(t), codec.JSON)
	reconnected := make(chan struct{}, 1)
	c.OnReconnect = func() { reconnected <- struct{}{} }

	require.NoError(t, c.Login("p2", "Bo"))
	receiveUntil(t, c, protocol.MsgLoginSuccess)

	// 模拟网络中断
	c.mu.RLock()
	first := c.conn
	c.mu.RUnlock()
	require.NoError(t, first.Close())

	msg := receiveUntil(t, c, protocol.MsgReconnected)
	rp := payloadOf[protocol.ReconnectedPayload](t, msg)
	assert.Equal(t, "p2", rp.PlayerID)
	assert.InDelta(t, 50.0, rp.Balance, 1e-9)

	select {
	case <-reconnected:
	case <-time.After(5 * time.Second):
		t.Fatal("OnReconnect not called")
	}
	assert.False(t, c.IsReconnecting())
	assert.True(t, c.IsConnected())
}

func TestClient_DropWithoutLoginCloses(t *testing.T) {
	t.Parallel()

	c := newConnectedClient(t, startServer(t), codec.JSON)
	closed := make(chan struct{})
	c.OnClose = func() { close(closed) }

	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	require.NoError(t, conn.Close())

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("OnClose not called")
	}
	assert.False(t, c.IsConnected())
	assert.ErrorIs(t, c.Ping(), ErrClosed)

	_, err := c.Receive()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClient_ReconnectRequiresToken(t *testing.T) {
	t.Parallel()

	c, err := NewClient("ws://localhost:1/ws", codec.JSON, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, c.Reconnect(), ErrNoReconnectToken)

	_, err = c.ReceiveWithTimeout(10 * time.Millisecond)
	assert.ErrorIs(t, err, ErrReceiveTimeout)
}
