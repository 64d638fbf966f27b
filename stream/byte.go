package stream

import (
	"fmt"
	"math"

	"github.com/arloliu/meco/endian"
	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/internal/pool"
)

// Alignment of embedded bitstreams, relative to the start of the byte stream.
const bitstreamAlignment = 4

// ByteWriter appends typed scalars to a growable, pooled byte buffer.
//
// Note: ByteWriter is NOT thread-safe.
type ByteWriter struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
}

// NewByteWriter creates a writer that encodes multi-byte scalars with engine.
func NewByteWriter(engine endian.EndianEngine) *ByteWriter {
	return &ByteWriter{
		buf:    pool.GetPayloadBuffer(),
		engine: engine,
	}
}

// Engine returns the byte order used by the writer.
func (w *ByteWriter) Engine() endian.EndianEngine {
	return w.engine
}

// PutUint8 appends one byte.
func (w *ByteWriter) PutUint8(v uint8) {
	w.buf.B = append(w.buf.B, v)
}

// PutInt8 appends one signed byte.
func (w *ByteWriter) PutInt8(v int8) {
	w.buf.B = append(w.buf.B, byte(v))
}

// PutUint16 appends a 2-byte unsigned integer.
func (w *ByteWriter) PutUint16(v uint16) {
	w.buf.B = w.engine.AppendUint16(w.buf.B, v)
}

// PutUint32 appends a 4-byte unsigned integer.
func (w *ByteWriter) PutUint32(v uint32) {
	w.buf.B = w.engine.AppendUint32(w.buf.B, v)
}

// PutInt32 appends a 4-byte signed integer.
func (w *ByteWriter) PutInt32(v int32) {
	w.buf.B = w.engine.AppendUint32(w.buf.B, uint32(v)) //nolint:gosec // bit pattern is preserved
}

// PutUint64 appends an 8-byte unsigned integer.
func (w *ByteWriter) PutUint64(v uint64) {
	w.buf.B = w.engine.AppendUint64(w.buf.B, v)
}

// PutBytes appends raw bytes.
func (w *ByteWriter) PutBytes(data []byte) {
	w.buf.MustWrite(data)
}

// Align pads with zero bytes until the length is a multiple of n.
func (w *ByteWriter) Align(n int) {
	if pad := (n - w.buf.Len()%n) % n; pad > 0 {
		w.buf.ExtendOrGrow(pad)
	}
}

// EmbedBits flushes bw and appends it as a length-prefixed, 4-byte aligned
// record: padding, word count (4 bytes), then the raw 64-bit words.
func (w *ByteWriter) EmbedBits(bw *BitWriter) {
	words := bw.Words()

	w.Align(bitstreamAlignment)
	w.PutUint32(uint32(len(words))) //nolint:gosec // word counts of a node payload fit 32 bits
	w.buf.Grow(len(words) * 8)
	for _, word := range words {
		w.buf.B = w.engine.AppendUint64(w.buf.B, word)
	}
}

// Len returns the number of bytes written.
func (w *ByteWriter) Len() int {
	return w.buf.Len()
}

// Bytes returns the written bytes. The slice is valid until Release.
func (w *ByteWriter) Bytes() []byte {
	return w.buf.Bytes()
}

// Detach copies the written bytes into a caller-owned slice and releases the writer.
func (w *ByteWriter) Detach() []byte {
	out := make([]byte, w.buf.Len())
	copy(out, w.buf.Bytes())
	w.Release()

	return out
}

// Release returns the buffer to the pool. The writer must not be used afterwards.
func (w *ByteWriter) Release() {
	if w.buf == nil {
		return
	}
	pool.PutPayloadBuffer(w.buf)
	w.buf = nil
}

// ByteReader reads typed scalars from a byte slice it does not own.
// Every read is bounds-checked and fails with errs.ErrCorruptStream.
//
// Note: ByteReader is NOT thread-safe.
type ByteReader struct {
	data   []byte
	pos    int
	engine endian.EndianEngine
}

// NewByteReader creates a reader over data encoded with engine.
func NewByteReader(data []byte, engine endian.EndianEngine) *ByteReader {
	return &ByteReader{data: data, engine: engine}
}

// Engine returns the byte order used by the reader.
func (r *ByteReader) Engine() endian.EndianEngine {
	return r.engine
}

func (r *ByteReader) take(n int, what string) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("%w: reading %s needs %d bytes at offset %d, have %d",
			errs.ErrCorruptStream, what, n, r.pos, len(r.data)-r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n

	return b, nil
}

// ReadUint8 reads one byte.
func (r *ByteReader) ReadUint8() (uint8, error) {
	b, err := r.take(1, "uint8")
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// ReadInt8 reads one signed byte.
func (r *ByteReader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err //nolint:gosec // bit pattern is preserved
}

// ReadUint16 reads a 2-byte unsigned integer.
func (r *ByteReader) ReadUint16() (uint16, error) {
	b, err := r.take(2, "uint16")
	if err != nil {
		return 0, err
	}

	return r.engine.Uint16(b), nil
}

// ReadUint32 reads a 4-byte unsigned integer.
func (r *ByteReader) ReadUint32() (uint32, error) {
	b, err := r.take(4, "uint32")
	if err != nil {
		return 0, err
	}

	return r.engine.Uint32(b), nil
}

// ReadInt32 reads a 4-byte signed integer.
func (r *ByteReader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err //nolint:gosec // bit pattern is preserved
}

// ReadUint64 reads an 8-byte unsigned integer.
func (r *ByteReader) ReadUint64() (uint64, error) {
	b, err := r.take(8, "uint64")
	if err != nil {
		return 0, err
	}

	return r.engine.Uint64(b), nil
}

// ReadBytes returns a view of the next n bytes without copying.
func (r *ByteReader) ReadBytes(n int) ([]byte, error) {
	return r.take(n, "bytes")
}

// Align skips padding until the offset is a multiple of n.
func (r *ByteReader) Align(n int) error {
	pad := (n - r.pos%n) % n
	_, err := r.take(pad, "alignment")

	return err
}

// ReadBits reads a record written by ByteWriter.EmbedBits and returns a
// BitReader pointing into the underlying buffer.
func (r *ByteReader) ReadBits() (*BitReader, error) {
	if err := r.Align(bitstreamAlignment); err != nil {
		return nil, err
	}
	count, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if uint64(count)*8 > math.MaxInt32 {
		return nil, fmt.Errorf("%w: bitstream of %d words", errs.ErrCorruptStream, count)
	}
	data, err := r.take(int(count)*8, "bitstream")
	if err != nil {
		return nil, err
	}

	return NewBitReader(data, r.engine)
}

// Offset returns the current read position.
func (r *ByteReader) Offset() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *ByteReader) Remaining() int {
	return len(r.data) - r.pos
}
