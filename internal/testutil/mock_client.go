//go:build !production

package testutil

import (
	"slices"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/bingo-hall/internal/protocol"
)

// MockClient 实现 types.ClientInterface 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetPlayerID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetPlayer(playerID, name string) {
	m.Called(playerID, name)
}

func (m *MockClient) JoinRoom(roomID string) {
	m.Called(roomID)
}

func (m *MockClient) LeaveRoom(roomID string) {
	m.Called(roomID)
}

func (m *MockClient) InRoom(roomID string) bool {
	args := m.Called(roomID)
	return args.Bool(0)
}

func (m *MockClient) Rooms() []string {
	args := m.Called()
	rooms, _ := args.Get(0).([]string)
	return rooms
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient 记录收到消息的客户端，不使用 testify（并发安全）
type SimpleClient struct {
	ID       string
	PlayerID string
	Name     string

	mu       sync.Mutex
	rooms    []string
	messages []*protocol.Message
	closed   bool
}

// NewSimpleClient 创建已登录的客户端，会话 ID 为 "s-" + playerID
func NewSimpleClient(playerID, name string) *SimpleClient {
	return &SimpleClient{ID: "s-" + playerID, PlayerID: playerID, Name: name}
}

func (m *SimpleClient) GetID() string { return m.ID }

func (m *SimpleClient) GetPlayerID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PlayerID
}

func (m *SimpleClient) GetName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Name
}

func (m *SimpleClient) SetPlayer(playerID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlayerID, m.Name = playerID, name
}

func (m *SimpleClient) JoinRoom(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.rooms, roomID) {
		m.rooms = append(m.rooms, roomID)
	}
}

func (m *SimpleClient) LeaveRoom(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms = slices.DeleteFunc(m.rooms, func(id string) bool { return id == roomID })
}

func (m *SimpleClient) InRoom(roomID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(m.rooms, roomID)
}

// Rooms 已订阅房间，按加入顺序
func (m *SimpleClient) Rooms() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.rooms)
}

func (m *SimpleClient) SendMessage(msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.messages = append(m.messages, msg)
}

func (m *SimpleClient) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// IsClosed 是否已调用 Close
func (m *SimpleClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Messages 返回已收到消息的副本
func (m *SimpleClient) Messages() []*protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*protocol.Message(nil), m.messages...)
}

// MessagesOfType 返回指定类型的消息
func (m *SimpleClient) MessagesOfType(t protocol.MessageType) []*protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*protocol.Message
	for _, msg := range m.messages {
		if msg.Type == t {
			out = append(out, msg)
		}
	}
	return out
}

// Last 返回最后一条指定类型的消息，没有时返回 nil
func (m *SimpleClient) Last(t protocol.MessageType) *protocol.Message {
	msgs := m.MessagesOfType(t)
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

// Reset 清空已记录的消息
func (m *SimpleClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}
