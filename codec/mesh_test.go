package codec

import (
	"testing"

	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/format"
	"github.com/stretchr/testify/require"
)

func TestSignature(t *testing.T) {
	sig := NewSignature(format.AttrIndex, format.AttrColor)
	require.True(t, sig.HasIndex())
	require.True(t, sig.HasColors())
	require.False(t, sig.HasNormals())
	require.False(t, sig.HasTexCoords())
	require.NoError(t, sig.Validate())

	require.ErrorIs(t, NewSignature(format.AttrTexCoord, format.AttrNormal).Validate(), errs.ErrMalformedSignature)
	require.ErrorIs(t, Signature{Flags: 0x40}.Validate(), errs.ErrMalformedSignature)
}

func TestNewBuffers(t *testing.T) {
	node := Node{NVert: 5, NFace: 3}

	b := NewBuffers(fullSig(), node)
	require.Len(t, b.Positions, 15)
	require.Len(t, b.Normals, 15)
	require.Len(t, b.Colors, 20)
	require.Len(t, b.TexCoords, 10)
	require.Len(t, b.Indices, 9)
	require.NoError(t, b.Validate(fullSig(), node))

	pc := NewBuffers(NewSignature(format.AttrNormal), Node{NVert: 5})
	require.Len(t, pc.Normals, 15)
	require.Nil(t, pc.Colors)
	require.Nil(t, pc.TexCoords)
	require.Nil(t, pc.Indices)
}

func TestBuffers_Accessors(t *testing.T) {
	b := &Buffers{
		Positions: []float32{1, 2, 3, 4, 5, 6},
		Normals:   []int16{0, 0, 1, 0, 1, 0},
		Colors:    []uint8{1, 2, 3, 4, 5, 6, 7, 8},
		TexCoords: []float32{0.5, 0.25, 1, 0},
		Indices:   []uint16{0, 1, 0},
	}

	require.Equal(t, [3]float32{4, 5, 6}, b.Position(1))
	require.Equal(t, [3]int16{0, 1, 0}, b.Normal(1))
	require.Equal(t, [4]uint8{5, 6, 7, 8}, b.Color(1))
	require.Equal(t, [2]float32{1, 0}, b.TexCoord(1))
	require.Equal(t, [3]uint16{0, 1, 0}, b.Face(0))
}

func TestNode_PatchList(t *testing.T) {
	require.Equal(t, []Patch{{TriangleEnd: 7}}, Node{NFace: 7}.patchList())

	patches := []Patch{{TriangleEnd: 3, Texture: 1}, {TriangleEnd: 7, Texture: 2}}
	require.Equal(t, patches, Node{NFace: 7, Patches: patches}.patchList())

	err := Node{NFace: 7, Patches: []Patch{{TriangleEnd: 5}, {TriangleEnd: 4}, {TriangleEnd: 7}}}.validate(indexedSig())
	require.ErrorIs(t, err, errs.ErrMalformedSignature)
}
