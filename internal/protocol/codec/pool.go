package codec

import (
	"bytes"
	"sync"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/bingo-hall/internal/protocol"
)

// maxPooledBuffer 超过该容量的编码缓冲区不回收，避免偶发大帧长期占用内存
const maxPooledBuffer = 64 << 10

// pool 带类型的 sync.Pool，归还前执行 reset
type pool[T any] struct {
	p     sync.Pool
	reset func(T) bool // 返回 false 时丢弃
}

func newPool[T any](newFn func() T, reset func(T) bool) *pool[T] {
	return &pool[T]{
		p:     sync.Pool{New: func() any { return newFn() }},
		reset: reset,
	}
}

func (p *pool[T]) get() T { return p.p.Get().(T) }

func (p *pool[T]) put(v T) {
	if p.reset(v) {
		p.p.Put(v)
	}
}

var (
	messages = newPool(
		func() *protocol.Message { return &protocol.Message{} },
		func(m *protocol.Message) bool {
			m.Type, m.Payload = "", nil
			return true
		},
	)

	// 二进制帧外层的 Struct 信封
	frames = newPool(
		func() *structpb.Struct { return &structpb.Struct{} },
		func(s *structpb.Struct) bool {
			s.Reset()
			return true
		},
	)

	buffers = newPool(
		func() *bytes.Buffer { return new(bytes.Buffer) },
		func(b *bytes.Buffer) bool {
			if b.Cap() > maxPooledBuffer {
				return false
			}
			b.Reset()
			return true
		},
	)
)

// GetMessage 取一条空消息
func GetMessage() *protocol.Message { return messages.get() }

// PutMessage 清空后归还；消息在 SendMessage 之后不能再使用
func PutMessage(msg *protocol.Message) {
	if msg != nil {
		messages.put(msg)
	}
}

func getFrameStruct() *structpb.Struct { return frames.get() }

func putFrameStruct(s *structpb.Struct) {
	if s != nil {
		frames.put(s)
	}
}

// GetBuffer 取编码缓冲区
func GetBuffer() *bytes.Buffer { return buffers.get() }

// PutBuffer 归还编码缓冲区，保留容量
func PutBuffer(buf *bytes.Buffer) {
	if buf != nil {
		buffers.put(buf)
	}
}
