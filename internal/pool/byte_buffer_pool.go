package pool

import (
	"io"
	"sync"
)

const (
	// MessageBufferDefaultSize is the default capacity of a pooled buffer.
	// Most encoded messages are well under 4KiB; type definitions are tiny.
	MessageBufferDefaultSize = 1024 * 4 // 4KiB

	// MessageBufferMaxThreshold is the largest buffer the pool retains.
	// Buffers that grew beyond it are dropped instead of pooled.
	MessageBufferMaxThreshold = 1024 * 256 // 256KiB
)

// ByteBuffer is a growable byte slice used to assemble encoded messages.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified initial capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// MustWrite appends data to the buffer, growing it if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// WriteByte appends a single byte to the buffer.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.B = append(bb.B, c)
	return nil
}

// WriteString appends the bytes of s to the buffer.
func (bb *ByteBuffer) WriteString(s string) {
	bb.B = append(bb.B, s...)
}

// Grow grows the buffer to ensure it can hold requiredBytes more bytes
// without reallocating. If the buffer has sufficient capacity, Grow does
// nothing.
//
// Small buffers grow by MessageBufferDefaultSize to minimize reallocations;
// larger buffers grow by 25% of current capacity.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := MessageBufferDefaultSize
	if cap(bb.B) > 4*MessageBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends the contents of data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a pool of ByteBuffers to minimize allocations.
//
// It uses sync.Pool internally to manage the buffers.
// The pool can be configured with a maximum size threshold to avoid retaining
// overly large buffers that could lead to memory bloat.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		// Discard overly large buffers to prevent memory bloat
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var messageDefaultPool = NewByteBufferPool(MessageBufferDefaultSize, MessageBufferMaxThreshold)

// GetMessageBuffer retrieves a ByteBuffer from the default message pool.
func GetMessageBuffer() *ByteBuffer {
	return messageDefaultPool.Get()
}

// PutMessageBuffer returns a ByteBuffer to the default message pool.
func PutMessageBuffer(bb *ByteBuffer) {
	messageDefaultPool.Put(bb)
}
