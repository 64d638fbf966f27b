package section

import (
	"fmt"

	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/quant"
	"github.com/arloliu/meco/stream"
)

// WriteGrid appends a quantization header record:
//
//	[min: int32 per component][shift: int8][bits: uint8]
func WriteGrid(w *stream.ByteWriter, g quant.Grid) {
	for _, m := range g.Min {
		w.PutInt32(m)
	}
	w.PutInt8(g.Shift)
	w.PutUint8(g.Bits)
}

// ReadGrid reads a record written by WriteGrid for a grid of the given number
// of components. Widths of 0 or above maxBits are ErrCorruptStream.
func ReadGrid(r *stream.ByteReader, components, maxBits int) (quant.Grid, error) {
	g := quant.Grid{Min: make([]int32, components)}

	var err error
	for c := range g.Min {
		if g.Min[c], err = r.ReadInt32(); err != nil {
			return quant.Grid{}, err
		}
	}
	if g.Shift, err = r.ReadInt8(); err != nil {
		return quant.Grid{}, err
	}
	if g.Bits, err = r.ReadUint8(); err != nil {
		return quant.Grid{}, err
	}

	if g.Shift < quant.MinShift || g.Shift > quant.MaxShift {
		return quant.Grid{}, fmt.Errorf("%w: quantization shift %d", errs.ErrCorruptStream, g.Shift)
	}
	if g.Bits == 0 || int(g.Bits) > maxBits {
		return quant.Grid{}, fmt.Errorf("%w: grid of %d bits, limit is %d", errs.ErrCorruptStream, g.Bits, maxBits)
	}

	return g, nil
}
