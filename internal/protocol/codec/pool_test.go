package codec

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestMessagePool_GetPut(t *testing.T) {
	t.Parallel()

	msg := GetMessage()
	assert.NotNil(t, msg)

	msg.Type = "test"
	msg.Payload = []byte("data")
	PutMessage(msg)

	// 再次取出时已清空
	msg2 := GetMessage()
	assert.NotNil(t, msg2)
	assert.Empty(t, msg2.Type)
	assert.Nil(t, msg2.Payload)
}

func TestMessagePool_PutNil(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		PutMessage(nil)
		putFrameStruct(nil)
		PutBuffer(nil)
	})
}

func TestFrameStructPool_Reset(t *testing.T) {
	t.Parallel()

	s := getFrameStruct()
	s.Fields = map[string]*structpb.Value{"type": structpb.NewStringValue("ping")}
	putFrameStruct(s)

	s2 := getFrameStruct()
	assert.Empty(t, s2.GetFields())
}

func TestBufferPool_CapacityPreserved(t *testing.T) {
	t.Parallel()

	buf := GetBuffer()
	buf.Write(make([]byte, 1024))
	capacity := buf.Cap()
	assert.GreaterOrEqual(t, capacity, 1024)
	PutBuffer(buf)

	buf2 := GetBuffer()
	assert.Equal(t, 0, buf2.Len())
}

func TestBufferPool_DropsOversized(t *testing.T) {
	t.Parallel()

	small := new(bytes.Buffer)
	small.WriteString("frame")
	assert.True(t, buffers.reset(small))
	assert.Equal(t, 0, small.Len())

	large := bytes.NewBuffer(make([]byte, 0, maxPooledBuffer+1))
	assert.False(t, buffers.reset(large))
}

func TestPools_Concurrency(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			msg := GetMessage()
			msg.Type = "concurrent"
			PutMessage(msg)

			buf := GetBuffer()
			buf.WriteString("concurrent test")
			PutBuffer(buf)
		})
	}
	wg.Wait()
}

func BenchmarkMessagePool_GetPut(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			msg := GetMessage()
			msg.Type = "bench"
			PutMessage(msg)
		}
	})
}
