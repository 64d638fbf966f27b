package codec

import (
	"math/rand"
	"testing"

	"github.com/arloliu/meco/format"
	"github.com/stretchr/testify/require"
)

func TestColorTransform_Inverse(t *testing.T) {
	colors := [][4]uint8{
		{0, 0, 0, 0},
		{255, 255, 255, 255},
		{255, 0, 0, 128},
		{0, 255, 0, 1},
		{0, 0, 255, 77},
		{12, 200, 99, 255},
	}

	for _, c := range colors {
		require.Equal(t, c, colorInverse(colorTransform(c)))
	}

	require.Equal(t, [4]int64{200, 99 - 200, 12 - 200, 255}, colorTransform([4]uint8{12, 200, 99, 255}))
}

func TestColorInverse_Clamps(t *testing.T) {
	require.Equal(t, [4]uint8{0, 10, 255, 255}, colorInverse([4]int64{10, 300, -50, 400}))
	require.Equal(t, uint8(0), clampByte(-1))
	require.Equal(t, uint8(255), clampByte(256))
}

func TestQuantizeColor_RoundsTowardNegativeInfinity(t *testing.T) {
	bits := [ColorComponents]uint8{8, 4, 4, 1}
	q := quantizeColor([4]int64{200, -1, 17, 200}, bits)
	require.Equal(t, [4]int64{200, -1, 1, 1}, q)
	require.Equal(t, [4]int64{200, -16, 16, 128}, dequantizeColor(q, bits))
}

func randomColors(rng *rand.Rand, n int) []uint8 {
	colors := make([]uint8, n*ColorComponents)
	for i := range colors {
		colors[i] = uint8(rng.Intn(256))
	}

	return colors
}

func TestColors_LosslessAtFullPrecision(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	node, buf := gridMesh(6, 6)
	buf.Colors = randomColors(rng, int(node.NVert))

	res, out := encodeDecode(t, indexedSig(format.AttrColor), node, buf)
	for i, v := range res.VertexOrder {
		require.Equal(t, buf.Color(int(v)), out.Color(i), "vertex %d", i)
	}

	for _, name := range ChannelColor {
		_, ok := res.Stats.Channel(name)
		require.True(t, ok, name)
	}
}

func TestColors_ReducedPrecision(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	node, buf := gridMesh(5, 5)
	buf.Colors = randomColors(rng, int(node.NVert))
	bits := [ColorComponents]uint8{6, 5, 5, 2}

	res, out := encodeDecode(t, indexedSig(format.AttrColor), node, buf, WithColorBits(6, 5, 5, 2))
	for i, v := range res.VertexOrder {
		want := colorInverse(dequantizeColor(quantizeColor(colorTransform(buf.Color(int(v))), bits), bits))
		require.Equal(t, want, out.Color(i), "vertex %d", i)
	}
}

func TestColors_PointCloud(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	const n = 50
	buf := &Buffers{Colors: randomColors(rng, n)}
	for i := range n {
		buf.Positions = append(buf.Positions, float32(i%5), float32(i/5%5), float32(i/25))
	}

	res, out := encodeDecode(t, NewSignature(format.AttrColor), Node{NVert: n}, buf, WithCoordQuantization(0))
	require.Equal(t, uint32(n), res.Node.NVert)
	for i, v := range res.VertexOrder {
		require.Equal(t, buf.Color(int(v)), out.Color(i))
	}
}
