// Package codec converts protocol messages to and from websocket frames.
//
// Two frame formats are supported: JSON text frames
// ({"type": ..., "payload": {...}}) and binary protobuf frames carrying a
// google.protobuf.Struct with the same two fields.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/bingo-hall/internal/protocol"
)

// Codec names accepted by ByName
const (
	NameJSON  = "json"
	NameProto = "proto"
)

var ErrEmptyType = errors.New("message type is empty")

// Codec encodes and decodes whole frames
type Codec interface {
	Name() string
	// Binary reports whether frames must be sent as websocket binary messages
	Binary() bool
	Encode(m *protocol.Message) ([]byte, error)
	// Decode returns a pooled message; callers may hand it back with PutMessage
	Decode(data []byte) (*protocol.Message, error)
}

var (
	JSON  Codec = jsonCodec{}
	Proto Codec = protoCodec{}
)

// ByName resolves a codec name; an empty name selects JSON
func ByName(name string) (Codec, error) {
	switch name {
	case "", NameJSON:
		return JSON, nil
	case NameProto:
		return Proto, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// NewMessage 创建一个新消息
// 注意: 使用完毕后应调用 PutMessage 归还对象到池
func NewMessage(msgType protocol.MessageType, payload any) (*protocol.Message, error) {
	msg := GetMessage()
	msg.Type = msgType

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			PutMessage(msg)
			return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
		}
		msg.Payload = data
	}
	return msg, nil
}

// MustNewMessage 创建消息，失败时 panic
func MustNewMessage(msgType protocol.MessageType, payload any) *protocol.Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// ParsePayload 解析消息的 Payload 到指定类型
// 空 payload 解析为零值
func ParsePayload[T any](msg *protocol.Message) (*T, error) {
	var payload T
	if len(msg.Payload) == 0 || bytes.Equal(msg.Payload, []byte("null")) {
		return &payload, nil
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", msg.Type, err)
	}
	return &payload, nil
}

// NewErrorMessage 创建错误消息
func NewErrorMessage(code int) *protocol.Message {
	return NewErrorMessageWithText(code, protocol.ErrorMessages[code])
}

// NewErrorMessageWithText 创建带自定义文本的错误消息
func NewErrorMessageWithText(code int, text string) *protocol.Message {
	msg, _ := NewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    code,
		Message: text,
	})
	return msg
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return NameJSON }
func (jsonCodec) Binary() bool { return false }

func (jsonCodec) Encode(m *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(m); err != nil {
		return nil, err
	}
	return bytes.Clone(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func (jsonCodec) Decode(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, err
	}
	if msg.Type == "" {
		PutMessage(msg)
		return nil, ErrEmptyType
	}
	return msg, nil
}

type protoCodec struct{}

func (protoCodec) Name() string { return NameProto }
func (protoCodec) Binary() bool { return true }

func (protoCodec) Encode(m *protocol.Message) ([]byte, error) {
	frame := getFrameStruct()
	defer putFrameStruct(frame)

	frame.Fields = map[string]*structpb.Value{
		"type": structpb.NewStringValue(string(m.Type)),
	}
	if len(m.Payload) > 0 {
		payload := &structpb.Value{}
		if err := protojson.Unmarshal(m.Payload, payload); err != nil {
			return nil, fmt.Errorf("convert %s payload: %w", m.Type, err)
		}
		frame.Fields["payload"] = payload
	}
	return proto.Marshal(frame)
}

func (protoCodec) Decode(data []byte) (*protocol.Message, error) {
	frame := getFrameStruct()
	defer putFrameStruct(frame)

	if err := proto.Unmarshal(data, frame); err != nil {
		return nil, err
	}
	msgType := frame.GetFields()["type"].GetStringValue()
	if msgType == "" {
		return nil, ErrEmptyType
	}

	msg := GetMessage()
	msg.Type = protocol.MessageType(msgType)
	if payload, ok := frame.GetFields()["payload"]; ok {
		data, err := protojson.Marshal(payload)
		if err != nil {
			PutMessage(msg)
			return nil, err
		}
		msg.Payload = data
	}
	return msg, nil
}
