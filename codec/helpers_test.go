package codec

import (
	"cmp"
	"math"
	"slices"
	"testing"

	"github.com/arloliu/meco/format"
	"github.com/stretchr/testify/require"
)

// gridMesh builds a w×h vertex grid with two counter-clockwise faces per cell.
// Heights follow a small integer wave so positions are exact at shift 0.
func gridMesh(w, h int) (Node, *Buffers) {
	b := &Buffers{}
	for y := range h {
		for x := range w {
			z := float32((x*7+y*3)%5) - 2
			b.Positions = append(b.Positions, float32(x)*4, float32(y)*4, z)
		}
	}
	for y := range h - 1 {
		for x := range w - 1 {
			i := uint16(y*w + x)
			b.Indices = append(b.Indices,
				i, i+1, i+uint16(w),
				i+1, i+uint16(w)+1, i+uint16(w),
			)
		}
	}

	return Node{NVert: uint32(w * h), NFace: uint32(len(b.Indices) / 3)}, b
}

// fanMesh builds six faces around vertex 0 with a hexagonal rim.
func fanMesh() (Node, *Buffers) {
	b := &Buffers{Positions: []float32{0, 0, 1}}
	rim := [][2]float32{{10, 0}, {5, 9}, {-5, 9}, {-10, 0}, {-5, -9}, {5, -9}}
	for _, p := range rim {
		b.Positions = append(b.Positions, p[0], p[1], 0)
	}
	for i := uint16(1); i <= 6; i++ {
		next := i%6 + 1
		b.Indices = append(b.Indices, 0, i, next)
	}

	return Node{NVert: 7, NFace: 6}, b
}

// tetrahedron builds a closed, outward oriented tetrahedron.
func tetrahedron() (Node, *Buffers) {
	b := &Buffers{
		Positions: []float32{0, 0, 0, 8, 0, 0, 0, 8, 0, 0, 0, 8},
		Indices:   []uint16{0, 2, 1, 0, 1, 3, 1, 2, 3, 2, 0, 3},
	}

	return Node{NVert: 4, NFace: 4}, b
}

// canonicalFaces maps faces through order (decoded -> original, nil for
// identity), rotates each so its smallest corner comes first, and sorts them.
// Orientation is preserved.
func canonicalFaces(indices []uint16, order []uint32) [][3]uint32 {
	faces := make([][3]uint32, 0, len(indices)/3)
	for f := 0; f+3 <= len(indices); f += 3 {
		var tri [3]uint32
		for k := range 3 {
			tri[k] = uint32(indices[f+k])
			if order != nil {
				tri[k] = order[tri[k]]
			}
		}
		for tri[0] > tri[1] || tri[0] > tri[2] {
			tri = [3]uint32{tri[1], tri[2], tri[0]}
		}
		faces = append(faces, tri)
	}
	slices.SortFunc(faces, compareFaces)

	return faces
}

// unorientedFaces is canonicalFaces with the corners of each face sorted.
func unorientedFaces(indices []uint16, order []uint32) [][3]uint32 {
	faces := canonicalFaces(indices, order)
	for i := range faces {
		slices.Sort(faces[i][:])
	}
	slices.SortFunc(faces, compareFaces)

	return faces
}

func compareFaces(a, b [3]uint32) int {
	for k := range 3 {
		if c := cmp.Compare(a[k], b[k]); c != 0 {
			return c
		}
	}

	return 0
}

func encodeDecode(t *testing.T, sig Signature, node Node, buf *Buffers, opts ...EncoderOption) (*EncodeResult, *Buffers) {
	t.Helper()

	enc, err := NewEncoder(opts...)
	require.NoError(t, err)
	res, err := enc.Encode(sig, node, buf)
	require.NoError(t, err)

	dec, err := NewDecoder(WithDecoderEndian(enc.cfg.engine))
	require.NoError(t, err)
	out, err := dec.Decode(sig, res.Node, res.Payload)
	require.NoError(t, err)

	return res, out
}

// requirePositions checks every decoded position against its original within
// half a grid step.
func requirePositions(t *testing.T, in, out *Buffers, order []uint32, shift int) {
	t.Helper()

	half := math.Ldexp(1, shift) / 2
	for i, v := range order {
		want := in.Position(int(v))
		got := out.Position(i)
		for k := range 3 {
			require.InDelta(t, want[k], got[k], half+1e-6, "vertex %d (original %d) axis %d", i, v, k)
		}
	}
}

func indexedSig(flags ...format.AttributeFlag) Signature {
	return NewSignature(append(flags, format.AttrIndex)...)
}
