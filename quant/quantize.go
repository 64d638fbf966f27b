// Package quant converts floating point attributes to integer grids and
// provides the integer helpers shared by the predictors: bit widths, zig-zag
// mapping and Morton (Z-order) keys.
package quant

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/arloliu/meco/errs"
)

// Format limits.
const (
	// MaxCoordBits is the widest per-axis position grid a payload can carry.
	MaxCoordBits = 30
	// MaxUVBits is the widest per-axis texture coordinate grid.
	MaxUVBits = 21
	// MaxZOrderBits is the widest per-axis grid that still fits a 64-bit Morton key.
	MaxZOrderBits = 21
	// MinShift and MaxShift bound the power-of-two quantization step.
	MinShift = -60
	MaxShift = 60
)

// Grid describes a per-node quantization: value = (q + Min) * 2^Shift.
type Grid struct {
	Shift int8
	Bits  uint8
	Min   []int32 // one entry per component
}

// Step returns the grid spacing 2^Shift.
func (g Grid) Step() float64 {
	return math.Ldexp(1, int(g.Shift))
}

// Dequantize maps a grid coordinate relative to Min back to a value.
func (g Grid) Dequantize(component int, q uint32) float32 {
	return float32(math.Ldexp(float64(int64(q)+int64(g.Min[component])), int(g.Shift)))
}

// Quantize rounds value to the nearest multiple of 2^shift and returns the
// multiplier.
func Quantize(value float32, shift int8) (int64, error) {
	q := math.Round(math.Ldexp(float64(value), -int(shift)))
	if math.IsNaN(q) || q > math.MaxInt32 || q < math.MinInt32 {
		return 0, fmt.Errorf("%w: value %g does not fit a 32-bit grid with step 2^%d",
			errs.ErrQuantizationOverflow, value, shift)
	}

	return int64(q), nil
}

// QuantizeComponents quantizes interleaved values with `components` entries
// per element and rebases them on the per-component minimum.
//
// Returns the grid (with the bit width needed for the largest rebased value)
// and the rebased coordinates. A width above maxBits is ErrQuantizationOverflow.
func QuantizeComponents(values []float32, components int, shift int8, maxBits int) (Grid, []uint32, error) {
	if shift < MinShift || shift > MaxShift {
		return Grid{}, nil, fmt.Errorf("%w: quantization shift %d out of range", errs.ErrInvalidOption, shift)
	}

	count := len(values) / components
	raw := make([]int64, count*components)
	mins := make([]int64, components)
	for c := range mins {
		mins[c] = math.MaxInt64
	}

	for i := 0; i < count*components; i++ {
		q, err := Quantize(values[i], shift)
		if err != nil {
			return Grid{}, nil, err
		}
		raw[i] = q
		if c := i % components; q < mins[c] {
			mins[c] = q
		}
	}

	grid := Grid{Shift: shift, Min: make([]int32, components)}
	var maxRange uint64
	rebased := make([]uint32, len(raw))
	for i, q := range raw {
		c := i % components
		d := uint64(q - mins[c]) //nolint:gosec // q >= min
		if d > maxRange {
			maxRange = d
		}
		rebased[i] = uint32(d) //nolint:gosec // checked against maxBits below
	}
	if count > 0 {
		for c := range mins {
			grid.Min[c] = int32(mins[c]) //nolint:gosec // Quantize bounds values to 32 bits
		}
	}

	width := BitsFor(maxRange)
	if width > maxBits {
		return Grid{}, nil, fmt.Errorf("%w: needs %d bits per component, limit is %d",
			errs.ErrQuantizationOverflow, width, maxBits)
	}
	grid.Bits = uint8(width) //nolint:gosec // width <= 64

	return grid, rebased, nil
}

// BitsFor returns the number of bits needed to store v, at least 1.
func BitsFor(v uint64) int {
	if v == 0 {
		return 1
	}

	return bits.Len64(v)
}

// MinimalSignedBits returns the smallest N such that x is representable as an
// N-bit two's complement integer. The result is at least 1.
func MinimalSignedBits(x int64) int {
	if x < 0 {
		x = ^x
	}

	return bits.Len64(uint64(x)) + 1
}

// ZigZag maps signed integers to unsigned so that small magnitudes stay small:
// 0, -1, 1, -2, 2 ... become 0, 1, 2, 3, 4 ...
func ZigZag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63)) //nolint:gosec // intended bit reinterpretation
}

// UnZigZag inverts ZigZag.
func UnZigZag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1) //nolint:gosec // intended bit reinterpretation
}
