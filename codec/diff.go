package codec

import (
	"fmt"
	"math/bits"

	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/quant"
	"github.com/arloliu/meco/stream"
)

const (
	// referenceBits is the width of an explicit vertex index.
	referenceBits = 16
	// maxResidualBits bounds the magnitude symbol of a vertex record.
	maxResidualBits = 40
	// maxDiffMagnitude bounds the magnitude symbol of encodeDiff.
	maxDiffMagnitude = 64
)

// encodeDiff writes v as a magnitude symbol and its value bits: the
// magnitude is the bit length of zigzag(v), 0 for v == 0, and the value bits
// are the zig-zag value without its implied leading one.
func encodeDiff(mags *[]byte, bw *stream.BitWriter, v int64) {
	z := quant.ZigZag(v)
	m := bits.Len64(z)
	*mags = append(*mags, byte(m))
	if m > 1 {
		bw.Write(z, m-1)
	}
}

// decodeDiff inverts encodeDiff for magnitude mag.
func decodeDiff(mag byte, br *stream.BitReader) (int64, error) {
	switch {
	case mag == 0:
		return 0, nil
	case mag == 1:
		return quant.UnZigZag(1), nil
	case mag > maxDiffMagnitude:
		return 0, fmt.Errorf("%w: residual magnitude %d", errs.ErrCorruptStream, mag)
	}

	low, err := br.Read(int(mag) - 1)
	if err != nil {
		return 0, err
	}

	return quant.UnZigZag(uint64(1)<<(mag-1) | low), nil
}

// writeResiduals writes a vertex record body: the common signed width of r as
// a magnitude symbol, then each residual biased into [0, 2^width).
func writeResiduals(mags *[]byte, bw *stream.BitWriter, r []int64) {
	width := 1
	for _, v := range r {
		width = max(width, quant.MinimalSignedBits(v))
	}
	*mags = append(*mags, byte(width)) //nolint:gosec // residuals of 32-bit grids need at most 34 bits

	bias := int64(1) << (width - 1)
	for _, v := range r {
		bw.Write(uint64(v+bias), width) //nolint:gosec // v + bias is in [0, 2^width)
	}
}

// readResiduals reads len(out) residuals of a record with magnitude width >= 1.
func readResiduals(width byte, br *stream.BitReader, out []int64) error {
	if width == 0 || width > maxResidualBits {
		return fmt.Errorf("%w: residual width %d", errs.ErrCorruptStream, width)
	}

	bias := int64(1) << (width - 1)
	for i := range out {
		v, err := br.Read(int(width))
		if err != nil {
			return err
		}
		out[i] = int64(v) - bias //nolint:gosec // v < 2^maxResidualBits
	}

	return nil
}

// writeReference writes a vertex record that reuses an already numbered vertex.
func writeReference(mags *[]byte, bw *stream.BitWriter, index uint32) {
	*mags = append(*mags, 0)
	bw.Write(uint64(index), referenceBits)
}

// symbolCursor consumes a decoded entropy channel one symbol at a time.
type symbolCursor struct {
	name string
	data []byte
	pos  int
}

func (c *symbolCursor) next() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, fmt.Errorf("%w: %s channel exhausted after %d symbols", errs.ErrCorruptStream, c.name, len(c.data))
	}
	s := c.data[c.pos]
	c.pos++

	return s, nil
}

// done fails when symbols are left over after decoding finished.
func (c *symbolCursor) done() error {
	if c.pos != len(c.data) {
		return fmt.Errorf("%w: %d unused symbols in %s channel", errs.ErrCorruptStream, len(c.data)-c.pos, c.name)
	}

	return nil
}
