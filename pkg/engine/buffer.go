package engine

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

var (
	ErrBufferFull = errors.New("buffer is full")
)

// RingBuffer is a fixed-size circular buffer of chat messages between the
// ingestors and the moderation worker. Every TCP connection pushes from its
// own goroutine, so producers serialize on a mutex; there is one consumer.
type RingBuffer struct {
	pushMu sync.Mutex
	data   [][]byte
	head   atomic.Uint64
	tail   atomic.Uint64
	mask   uint64
	size   uint64

	dropped atomic.Uint64
}

// NewRingBuffer creates a ring buffer with the specified size (must be power of 2).
func NewRingBuffer(size uint64) (*RingBuffer, error) {
	if size == 0 || (size&(size-1)) != 0 {
		return nil, errors.New("size must be a power of 2")
	}
	return &RingBuffer{
		data: make([][]byte, size),
		mask: size - 1,
		size: size,
	}, nil
}

// Push appends a message, or drops it and returns ErrBufferFull.
func (rb *RingBuffer) Push(msg []byte) error {
	rb.pushMu.Lock()
	defer rb.pushMu.Unlock()

	head := rb.head.Load()
	if head-rb.tail.Load() >= rb.size {
		rb.dropped.Add(1)
		return ErrBufferFull
	}
	rb.data[head&rb.mask] = msg
	rb.head.Store(head + 1)
	return nil
}

// Pop removes the oldest message. Returns nil if empty. Single consumer only.
func (rb *RingBuffer) Pop() []byte {
	tail := rb.tail.Load()
	if tail == rb.head.Load() {
		return nil
	}
	slot := tail & rb.mask
	msg := rb.data[slot]
	rb.data[slot] = nil
	rb.tail.Store(tail + 1)
	return msg
}

// DroppedCount returns the number of messages rejected because the buffer was full.
func (rb *RingBuffer) DroppedCount() uint64 {
	return rb.dropped.Load()
}

// Usage returns the number of messages waiting.
func (rb *RingBuffer) Usage() uint64 {
	return rb.head.Load() - rb.tail.Load()
}

func (rb *RingBuffer) Capacity() uint64 {
	return rb.size
}
