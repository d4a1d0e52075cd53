package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer_MustWrite(t *testing.T) {
	require := require.New(t)

	bb := NewByteBuffer(4)
	bb.MustWrite([]byte("hello"))
	bb.MustWriteByte(' ')
	bb.MustWrite([]byte("world"))

	require.Equal("hello world", string(bb.Bytes()))
	require.Equal(11, bb.Len())
}

func TestByteBuffer_Reset(t *testing.T) {
	require := require.New(t)

	bb := NewByteBuffer(16)
	bb.MustWrite([]byte("data"))
	cap1 := bb.Cap()
	bb.Reset()

	require.Equal(0, bb.Len())
	require.Equal(cap1, bb.Cap())
}

func TestByteBuffer_GrowDoesNotReallocateWhenCapacitySuffices(t *testing.T) {
	require := require.New(t)

	bb := NewByteBuffer(1024)
	before := bb.Cap()
	bb.Grow(100)

	require.Equal(before, bb.Cap())
}

func TestByteBuffer_WriteTo(t *testing.T) {
	require := require.New(t)

	bb := NewByteBuffer(8)
	bb.MustWrite([]byte("payload"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(err)
	require.Equal(int64(7), n)
	require.Equal("payload", out.String())
}

func TestByteBufferPool_GetPutRoundTrip(t *testing.T) {
	require := require.New(t)

	bb := GetStreamBuffer()
	bb.MustWrite([]byte("stream data"))
	PutStreamBuffer(bb)

	bb2 := GetStreamBuffer()
	require.Equal(0, bb2.Len())
}

func TestByteBufferPool_DiscardsOversizedBuffers(t *testing.T) {
	require := require.New(t)

	p := NewByteBufferPool(16, 32)
	bb := p.Get()
	bb.MustWrite(make([]byte, 64))
	p.Put(bb)

	fresh := p.Get()
	require.Equal(0, fresh.Len())
	require.LessOrEqual(fresh.Cap(), 32)
}
