package codec

import (
	"github.com/arloliu/meco/stream"
)

// colorTransform maps RGBA to the decorrelated channels Y=G, Co=B-G, Cg=R-G, A.
func colorTransform(c [4]uint8) [4]int64 {
	g := int64(c[1])
	return [4]int64{g, int64(c[2]) - g, int64(c[0]) - g, int64(c[3])}
}

// colorInverse maps transformed channels back to RGBA, clamping to [0, 255].
func colorInverse(t [4]int64) [4]uint8 {
	g := t[0]
	return [4]uint8{clampByte(t[2] + g), clampByte(g), clampByte(t[1] + g), clampByte(t[3])}
}

func clampByte(v int64) uint8 {
	return uint8(min(max(v, 0), 255)) //nolint:gosec // clamped
}

// quantizeColor keeps the top bits of each transformed channel. The shift is
// arithmetic, so negative chroma rounds toward negative infinity.
func quantizeColor(t [4]int64, bits [ColorComponents]uint8) [4]int64 {
	for k := range t {
		t[k] >>= 8 - bits[k]
	}

	return t
}

func dequantizeColor(q [4]int64, bits [ColorComponents]uint8) [4]int64 {
	for k := range q {
		q[k] <<= 8 - bits[k]
	}

	return q
}

// colorEncoder differences quantized colors against the previous vertex.
type colorEncoder struct {
	bits [ColorComponents]uint8
	mags [ColorComponents][]byte
	prev [4]int64
}

func newColorEncoder(bits [ColorComponents]uint8, nvert int) *colorEncoder {
	e := &colorEncoder{bits: bits}
	for k := range e.mags {
		e.mags[k] = make([]byte, 0, nvert)
	}

	return e
}

func (e *colorEncoder) encode(bw *stream.BitWriter, c [4]uint8) {
	q := quantizeColor(colorTransform(c), e.bits)
	for k := range q {
		encodeDiff(&e.mags[k], bw, q[k]-e.prev[k])
	}
	e.prev = q
}

// colorDecoder inverts colorEncoder.
type colorDecoder struct {
	bits [ColorComponents]uint8
	mags [ColorComponents]*symbolCursor
	prev [4]int64
}

func (d *colorDecoder) decode(br *stream.BitReader) ([4]uint8, error) {
	var q [4]int64
	for k := range q {
		mag, err := d.mags[k].next()
		if err != nil {
			return [4]uint8{}, err
		}
		diff, err := decodeDiff(mag, br)
		if err != nil {
			return [4]uint8{}, err
		}
		q[k] = d.prev[k] + diff
	}
	d.prev = q

	return colorInverse(dequantizeColor(q, d.bits)), nil
}
