package pool

import (
	"io"
	"sync"
)

// Default sizes of pooled buffers.
const (
	PayloadBufferDefaultSize   = 1024 * 16       // 16KiB, a small node payload
	PayloadBufferMaxThreshold  = 1024 * 1024     // 1MiB
	EnvelopeBufferDefaultSize  = 1024 * 64       // 64KiB
	EnvelopeBufferMaxThreshold = 1024 * 1024 * 8 // 8MiB
	WordSliceDefaultSize       = 256
	WordSliceMaxThreshold      = 1024 * 128
)

// ByteBuffer is a growable byte slice that can be recycled through a ByteBufferPool.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps the allocated memory.
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

// MustWrite appends data, growing the buffer if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// WriteByte appends a single byte.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.B = append(bb.B, c)
	return nil
}

// ExtendOrGrow extends the buffer by n zeroed bytes, growing it if necessary,
// and returns the newly exposed region.
func (bb *ByteBuffer) ExtendOrGrow(n int) []byte {
	start := len(bb.B)
	bb.Grow(n)
	bb.B = bb.B[:start+n]
	clear(bb.B[start:])

	return bb.B[start:]
}

// Grow ensures the buffer can hold requiredBytes more bytes without reallocating.
//
// Small buffers grow by PayloadBufferDefaultSize, larger ones by 25% of their capacity.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := PayloadBufferDefaultSize
	if cap(bb.B) > 4*PayloadBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends data to the buffer. It never fails.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a sync.Pool of ByteBuffers that drops buffers grown beyond
// maxThreshold so a single huge node does not pin memory forever.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool handing out buffers of defaultSize capacity.
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
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	payloadDefaultPool  = NewByteBufferPool(PayloadBufferDefaultSize, PayloadBufferMaxThreshold)
	envelopeDefaultPool = NewByteBufferPool(EnvelopeBufferDefaultSize, EnvelopeBufferMaxThreshold)
)

// GetPayloadBuffer retrieves a buffer used to assemble a compressed node payload.
func GetPayloadBuffer() *ByteBuffer {
	return payloadDefaultPool.Get()
}

// PutPayloadBuffer returns a payload buffer to its pool.
func PutPayloadBuffer(bb *ByteBuffer) {
	payloadDefaultPool.Put(bb)
}

// GetEnvelopeBuffer retrieves a buffer used to assemble a sealed envelope.
func GetEnvelopeBuffer() *ByteBuffer {
	return envelopeDefaultPool.Get()
}

// PutEnvelopeBuffer returns an envelope buffer to its pool.
func PutEnvelopeBuffer(bb *ByteBuffer) {
	envelopeDefaultPool.Put(bb)
}

var wordSlicePool = sync.Pool{
	New: func() any {
		s := make([]uint64, 0, WordSliceDefaultSize)
		return &s
	},
}

// GetWordSlice retrieves an empty uint64 slice for bit packing.
// The caller must hand the same pointer back to PutWordSlice.
func GetWordSlice() *[]uint64 {
	ptr, _ := wordSlicePool.Get().(*[]uint64)
	*ptr = (*ptr)[:0]

	return ptr
}

// PutWordSlice returns a word slice to the pool.
func PutWordSlice(ptr *[]uint64) {
	if ptr == nil || cap(*ptr) > WordSliceMaxThreshold {
		return
	}
	*ptr = (*ptr)[:0]
	wordSlicePool.Put(ptr)
}
