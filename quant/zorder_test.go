package quant

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterleave3_BitPlacement(t *testing.T) {
	require.Equal(t, uint64(0b100), Interleave3(1, 0, 0))
	require.Equal(t, uint64(0b010), Interleave3(0, 1, 0))
	require.Equal(t, uint64(0b001), Interleave3(0, 0, 1))
	require.Equal(t, uint64(0b111_000), Interleave3(2, 2, 2))
	require.Equal(t, uint64(1)<<62, Interleave3(1<<20, 0, 0))
}

func TestInterleave3_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for range 1000 {
		x := uint32(rng.Intn(1 << 21))
		y := uint32(rng.Intn(1 << 21))
		z := uint32(rng.Intn(1 << 21))

		gx, gy, gz := Deinterleave3(Interleave3(x, y, z))
		require.Equal(t, x, gx)
		require.Equal(t, y, gy)
		require.Equal(t, z, gz)
	}
}

func TestSortZOrder_DecreasingWithStableTies(t *testing.T) {
	keys := []ZOrderKey{
		{Key: 5, Index: 0},
		{Key: 9, Index: 1},
		{Key: 5, Index: 2},
		{Key: 1, Index: 3},
		{Key: 9, Index: 4},
	}

	SortZOrder(keys)
	require.Equal(t, []ZOrderKey{
		{Key: 9, Index: 1},
		{Key: 9, Index: 4},
		{Key: 5, Index: 0},
		{Key: 5, Index: 2},
		{Key: 1, Index: 3},
	}, keys)

	keys = DedupZOrder(keys)
	require.Equal(t, []ZOrderKey{
		{Key: 9, Index: 1},
		{Key: 5, Index: 0},
		{Key: 1, Index: 3},
	}, keys)
}
