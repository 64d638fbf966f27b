package stream

import (
	"fmt"

	"github.com/arloliu/meco/endian"
	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/internal/pool"
)

const wordBits = 64

// BitWriter packs values of 1-64 bits into 64-bit words, most significant bit first.
//
// Words are appended to a pooled slice that grows geometrically. The partial
// word is only emitted by Flush (or Words), padded with zero bits.
//
// Note: BitWriter is NOT thread-safe.
type BitWriter struct {
	bitBuf   uint64 // pending bits, right aligned
	bitCount int    // number of valid bits in bitBuf
	words    *[]uint64
}

// NewBitWriter creates an empty bit writer.
func NewBitWriter() *BitWriter {
	return &BitWriter{words: pool.GetWordSlice()}
}

// Write appends the low n bits of value. Bits above n are ignored, so callers
// must bias signed values into [0, 2^n) themselves.
//
// Parameters:
//   - value: bits to write (only the least significant n are used)
//   - n: number of bits, 0-64; 0 writes nothing
func (w *BitWriter) Write(value uint64, n int) {
	if n <= 0 {
		return
	}
	if n > wordBits {
		panic(fmt.Sprintf("stream: cannot write %d bits at once", n))
	}

	if n < wordBits {
		value &= (1 << n) - 1
	}

	available := wordBits - w.bitCount
	if n <= available {
		w.bitBuf = (w.bitBuf << n) | value
		w.bitCount += n
		if w.bitCount == wordBits {
			w.flushWord()
		}

		return
	}

	// Split across the word boundary: high part completes the current word.
	rest := n - available
	w.bitBuf = (w.bitBuf << available) | (value >> rest)
	w.bitCount = wordBits
	w.flushWord()

	w.bitBuf = value & ((1 << rest) - 1)
	w.bitCount = rest
}

// WriteBit appends a single bit.
func (w *BitWriter) WriteBit(bit bool) {
	if bit {
		w.Write(1, 1)
	} else {
		w.Write(0, 1)
	}
}

func (w *BitWriter) flushWord() {
	*w.words = append(*w.words, w.bitBuf)
	w.bitBuf = 0
	w.bitCount = 0
}

// Flush pads the pending partial word with zero bits and emits it.
func (w *BitWriter) Flush() {
	if w.bitCount == 0 {
		return
	}
	w.bitBuf <<= wordBits - w.bitCount
	w.bitCount = wordBits
	w.flushWord()
}

// Words flushes and returns the packed words. The slice is owned by the writer
// and stays valid until Release.
func (w *BitWriter) Words() []uint64 {
	w.Flush()
	return *w.words
}

// BitLen returns the number of bits written so far.
func (w *BitWriter) BitLen() int {
	return len(*w.words)*wordBits + w.bitCount
}

// Release returns the word storage to the pool. The writer must not be used afterwards.
func (w *BitWriter) Release() {
	if w.words == nil {
		return
	}
	pool.PutWordSlice(w.words)
	w.words = nil
}

// BitReader reads values written by BitWriter from a byte view it does not own.
//
// Note: BitReader is NOT thread-safe.
type BitReader struct {
	data   []byte
	engine endian.EndianEngine
	next   int    // byte offset of the next unread word
	bitBuf uint64 // pending bits, left aligned
	avail  int    // number of valid bits in bitBuf
}

// NewBitReader creates a reader over words serialized with engine. The length
// of data must be a multiple of 8.
func NewBitReader(data []byte, engine endian.EndianEngine) (*BitReader, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("%w: bitstream length %d is not a whole number of words", errs.ErrCorruptStream, len(data))
	}

	return &BitReader{data: data, engine: engine}, nil
}

// NewBitReaderWords creates a reader over words already in memory.
func NewBitReaderWords(words []uint64) *BitReader {
	engine := endian.GetNativeEngine()
	data := make([]byte, 0, len(words)*8)
	for _, w := range words {
		data = engine.AppendUint64(data, w)
	}

	return &BitReader{data: data, engine: engine}
}

func (r *BitReader) loadWord() (uint64, error) {
	if r.next+8 > len(r.data) {
		return 0, fmt.Errorf("%w: bitstream exhausted after %d words", errs.ErrCorruptStream, len(r.data)/8)
	}
	word := r.engine.Uint64(r.data[r.next:])
	r.next += 8

	return word, nil
}

// Read consumes n bits (0-64) and returns them right aligned.
func (r *BitReader) Read(n int) (uint64, error) {
	if n <= 0 {
		return 0, nil
	}
	if n > wordBits {
		return 0, fmt.Errorf("%w: cannot read %d bits at once", errs.ErrCorruptStream, n)
	}

	if n <= r.avail {
		value := r.bitBuf >> (wordBits - n)
		r.bitBuf <<= n
		r.avail -= n

		return value, nil
	}

	var high uint64
	if r.avail > 0 {
		high = r.bitBuf >> (wordBits - r.avail)
	}
	rest := n - r.avail

	word, err := r.loadWord()
	if err != nil {
		return 0, err
	}

	value := (high << rest) | (word >> (wordBits - rest))
	r.bitBuf = word << rest
	r.avail = wordBits - rest

	return value, nil
}

// ReadBit consumes a single bit.
func (r *BitReader) ReadBit() (bool, error) {
	v, err := r.Read(1)
	return v == 1, err
}

// Remaining returns the number of unread bits, including zero padding.
func (r *BitReader) Remaining() int {
	return (len(r.data)-r.next)*8 + r.avail
}
