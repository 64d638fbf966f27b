package quant

import (
	"cmp"
	"slices"
)

// ZOrderKey is a Morton key of a quantized point tagged with the point's
// original index.
type ZOrderKey struct {
	Key   uint64
	Index uint32
}

// spread21 spaces the low 21 bits of v two bits apart.
func spread21(v uint64) uint64 {
	v &= 0x1FFFFF
	v = (v | v<<32) & 0x1F00000000FFFF
	v = (v | v<<16) & 0x1F0000FF0000FF
	v = (v | v<<8) & 0x100F00F00F00F00F
	v = (v | v<<4) & 0x10C30C30C30C30C3
	v = (v | v<<2) & 0x1249249249249249

	return v
}

// compact21 inverts spread21.
func compact21(v uint64) uint64 {
	v &= 0x1249249249249249
	v = (v | v>>2) & 0x10C30C30C30C30C3
	v = (v | v>>4) & 0x100F00F00F00F00F
	v = (v | v>>8) & 0x1F0000FF0000FF
	v = (v | v>>16) & 0x1F00000000FFFF
	v = (v | v>>32) & 0x1FFFFF

	return v
}

// Interleave3 builds the Morton key of a point whose coordinates fit 21 bits.
// Bit i of x lands at 3i+2, of y at 3i+1, of z at 3i.
func Interleave3(x, y, z uint32) uint64 {
	return spread21(uint64(x))<<2 | spread21(uint64(y))<<1 | spread21(uint64(z))
}

// Deinterleave3 inverts Interleave3.
func Deinterleave3(key uint64) (x, y, z uint32) {
	return uint32(compact21(key >> 2)), uint32(compact21(key >> 1)), uint32(compact21(key)) //nolint:gosec // 21-bit results
}

// SortZOrder orders keys by decreasing Morton key; equal keys keep increasing
// original index so that the first occurrence of a grid cell comes first.
func SortZOrder(keys []ZOrderKey) {
	slices.SortFunc(keys, func(a, b ZOrderKey) int {
		if c := cmp.Compare(b.Key, a.Key); c != 0 {
			return c
		}

		return cmp.Compare(a.Index, b.Index)
	})
}

// DedupZOrder collapses runs of equal keys in a sorted slice to their first
// element and returns the shortened slice.
func DedupZOrder(keys []ZOrderKey) []ZOrderKey {
	return slices.CompactFunc(keys, func(a, b ZOrderKey) bool {
		return a.Key == b.Key
	})
}
