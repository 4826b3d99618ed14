package engine

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBuffer_FIFO(t *testing.T) {
	rb, err := NewRingBuffer(4)
	require.NoError(t, err)

	require.NoError(t, rb.Push([]byte("msg1")))
	require.NoError(t, rb.Push([]byte("msg2")))
	assert.Equal(t, uint64(2), rb.Usage())

	assert.Equal(t, "msg1", string(rb.Pop()))
	assert.Equal(t, "msg2", string(rb.Pop()))
	assert.Nil(t, rb.Pop())
	assert.Equal(t, uint64(0), rb.Usage())
}

func TestRingBuffer_FullDrop(t *testing.T) {
	rb, err := NewRingBuffer(2)
	require.NoError(t, err)

	require.NoError(t, rb.Push([]byte("1")))
	require.NoError(t, rb.Push([]byte("2")))
	assert.Equal(t, ErrBufferFull, rb.Push([]byte("3")))
	assert.Equal(t, uint64(1), rb.DroppedCount())

	assert.Equal(t, "1", string(rb.Pop()))
	assert.Equal(t, "2", string(rb.Pop()))
}

func TestRingBuffer_InvalidSize(t *testing.T) {
	for _, size := range []uint64{0, 3, 100} {
		_, err := NewRingBuffer(size)
		assert.Error(t, err, "size %d", size)
	}
}

func TestRingBuffer_ConcurrentProducers(t *testing.T) {
	rb, err := NewRingBuffer(1024)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = rb.Push([]byte(fmt.Sprintf("%d-%d", p, i)))
			}
		}(p)
	}
	wg.Wait()

	seen := map[string]bool{}
	for msg := rb.Pop(); msg != nil; msg = rb.Pop() {
		seen[string(msg)] = true
	}
	assert.Len(t, seen, 400)
	assert.Equal(t, uint64(0), rb.DroppedCount())
}
