package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/bingo-hall/internal/protocol"
)

func TestNewMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		msgType protocol.MessageType
		payload any
	}{
		{"nil payload", protocol.MsgPing, nil},
		{"join payload", protocol.MsgJoinGame, protocol.JoinGamePayload{RoomID: "R1", BoardNumber: 7}},
		{"game over", protocol.MsgGameOver, protocol.GameOverPayload{RoomID: "R1", Reason: protocol.ReasonNoWinner}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg, err := NewMessage(tt.msgType, tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.msgType, msg.Type)
			if tt.payload == nil {
				assert.Nil(t, msg.Payload)
			} else {
				assert.NotEmpty(t, msg.Payload)
			}
			PutMessage(msg)
		})
	}
}

func TestNewMessage_UnencodablePayload(t *testing.T) {
	t.Parallel()

	_, err := NewMessage(protocol.MsgPing, make(chan int))
	assert.Error(t, err)
	assert.Panics(t, func() { MustNewMessage(protocol.MsgPing, make(chan int)) })
}

func TestParsePayload(t *testing.T) {
	t.Parallel()

	msg := MustNewMessage(protocol.MsgJoinGame, protocol.JoinGamePayload{RoomID: "R2", BoardNumber: 42})
	p, err := ParsePayload[protocol.JoinGamePayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "R2", p.RoomID)
	assert.Equal(t, int64(42), p.BoardNumber)

	empty, err := ParsePayload[protocol.JoinGamePayload](&protocol.Message{Type: protocol.MsgJoinGame})
	require.NoError(t, err)
	assert.Empty(t, empty.RoomID)

	_, err = ParsePayload[protocol.JoinGamePayload](&protocol.Message{Type: protocol.MsgJoinGame, Payload: []byte(`{"room_id":3}`)})
	assert.Error(t, err)
}

func TestNewErrorMessage(t *testing.T) {
	t.Parallel()

	msg := NewErrorMessage(protocol.ErrCodeBoardTaken)
	assert.Equal(t, protocol.MsgError, msg.Type)

	p, err := ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeBoardTaken, p.Code)
	assert.Equal(t, protocol.ErrorMessages[protocol.ErrCodeBoardTaken], p.Message)

	custom := NewErrorMessageWithText(protocol.ErrCodeUnknown, "boom")
	p, err = ParsePayload[protocol.ErrorPayload](custom)
	require.NoError(t, err)
	assert.Equal(t, "boom", p.Message)
}

func TestJSONCodec_Frame(t *testing.T) {
	t.Parallel()

	msg := MustNewMessage(protocol.MsgNumberCalled, protocol.NumberCalledPayload{RoomID: "R1", Number: 33, CalledCount: 4})
	data, err := JSON.Encode(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"number_called","payload":{"room_id":"R1","number":33,"called_count":4}}`, string(data))
	assert.False(t, JSON.Binary())

	decoded, err := JSON.Decode(data)
	require.NoError(t, err)
	p, err := ParsePayload[protocol.NumberCalledPayload](decoded)
	require.NoError(t, err)
	assert.Equal(t, protocol.NumberCalledPayload{RoomID: "R1", Number: 33, CalledCount: 4}, *p)
}

func TestJSONCodec_DecodeErrors(t *testing.T) {
	t.Parallel()

	_, err := JSON.Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = JSON.Decode([]byte(`{"payload":{}}`))
	assert.ErrorIs(t, err, ErrEmptyType)
}

func TestProtoCodec_Frame(t *testing.T) {
	t.Parallel()

	want := protocol.GameOverPayload{
		RoomID:   "R1",
		Winner:   "Alice",
		WinnerID: "p1",
		Amount:   16,
		WinInfo:  &protocol.WinInfo{Type: "ROW", Index: 2},
		Reason:   protocol.ReasonWinner,
	}
	msg := MustNewMessage(protocol.MsgGameOver, want)

	data, err := Proto.Encode(msg)
	require.NoError(t, err)
	assert.True(t, Proto.Binary())

	decoded, err := Proto.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgGameOver, decoded.Type)

	got, err := ParsePayload[protocol.GameOverPayload](decoded)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestProtoCodec_NoPayload(t *testing.T) {
	t.Parallel()

	data, err := Proto.Encode(&protocol.Message{Type: protocol.MsgGetRooms})
	require.NoError(t, err)

	decoded, err := Proto.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgGetRooms, decoded.Type)
	assert.Empty(t, decoded.Payload)
}

func TestProtoCodec_DecodeErrors(t *testing.T) {
	t.Parallel()

	_, err := Proto.Decode([]byte{0xff, 0xff, 0xff})
	assert.Error(t, err)

	empty, err := Proto.Encode(&protocol.Message{})
	require.NoError(t, err)
	_, err = Proto.Decode(empty)
	assert.ErrorIs(t, err, ErrEmptyType)
}

func TestByName(t *testing.T) {
	t.Parallel()

	c, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, NameJSON, c.Name())

	c, err = ByName("proto")
	require.NoError(t, err)
	assert.Equal(t, NameProto, c.Name())

	_, err = ByName("xml")
	assert.Error(t, err)
}
