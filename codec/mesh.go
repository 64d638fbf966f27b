package codec

import (
	"fmt"

	"github.com/arloliu/meco/errs"
)

// MaxVertices is the largest vertex count a node can have; face corners are
// stored as 16-bit indices.
const MaxVertices = 1 << 16

// Per-vertex and per-face component counts of the flat buffers.
const (
	PositionComponents = 3
	NormalComponents   = 3
	ColorComponents    = 4
	TexCoordComponents = 2
	FaceCorners        = 3
)

// Patch is a run of faces sharing one texture. TriangleEnd is the exclusive
// end offset of the patch in the node's face list.
type Patch struct {
	TriangleEnd uint32
	Texture     uint32
}

// Node carries the counts the codec needs from the LOD structure.
// Point clouds have NFace == 0 and no patches.
type Node struct {
	NVert   uint32
	NFace   uint32
	Patches []Patch
}

// patchList returns the patches of an indexed node, treating a node without
// patches as a single patch covering every face.
func (n Node) patchList() []Patch {
	if len(n.Patches) == 0 {
		return []Patch{{TriangleEnd: n.NFace}}
	}

	return n.Patches
}

func (n Node) validate(sig Signature) error {
	if n.NVert > MaxVertices {
		return fmt.Errorf("%w: %d vertices, limit is %d", errs.ErrMalformedSignature, n.NVert, MaxVertices)
	}
	if !sig.HasIndex() {
		if n.NFace != 0 || len(n.Patches) != 0 {
			return fmt.Errorf("%w: point cloud with %d faces", errs.ErrMalformedSignature, n.NFace)
		}

		return nil
	}

	var start uint32
	for i, p := range n.patchList() {
		if p.TriangleEnd < start {
			return fmt.Errorf("%w: patch %d ends at %d before %d", errs.ErrMalformedSignature, i, p.TriangleEnd, start)
		}
		start = p.TriangleEnd
	}
	if start != n.NFace {
		return fmt.Errorf("%w: patches cover %d of %d faces", errs.ErrMalformedSignature, start, n.NFace)
	}

	return nil
}

// Buffers holds the flat attribute arrays of one node.
//
// The encoder only reads them; the decoder allocates and fills a new set.
type Buffers struct {
	Positions []float32 // x, y, z per vertex
	Normals   []int16   // x, y, z per vertex, unit length is 32767
	Colors    []uint8   // r, g, b, a per vertex
	TexCoords []float32 // u, v per vertex
	Indices   []uint16  // three corners per face
}

// NewBuffers allocates buffers sized for node and the channels of sig.
func NewBuffers(sig Signature, node Node) *Buffers {
	n := int(node.NVert)
	b := &Buffers{Positions: make([]float32, n*PositionComponents)}
	if sig.HasNormals() {
		b.Normals = make([]int16, n*NormalComponents)
	}
	if sig.HasColors() {
		b.Colors = make([]uint8, n*ColorComponents)
	}
	if sig.HasTexCoords() {
		b.TexCoords = make([]float32, n*TexCoordComponents)
	}
	if sig.HasIndex() {
		b.Indices = make([]uint16, int(node.NFace)*FaceCorners)
	}

	return b
}

// Validate checks that every channel requested by sig is present and large
// enough for node, and that every face corner addresses an existing vertex.
func (b *Buffers) Validate(sig Signature, node Node) error {
	if err := sig.Validate(); err != nil {
		return err
	}
	if err := node.validate(sig); err != nil {
		return err
	}

	n := int(node.NVert)
	channels := []struct {
		name      string
		requested bool
		have      int
		want      int
	}{
		{"positions", true, len(b.Positions), n * PositionComponents},
		{"normals", sig.HasNormals(), len(b.Normals), n * NormalComponents},
		{"colors", sig.HasColors(), len(b.Colors), n * ColorComponents},
		{"texture coordinates", sig.HasTexCoords(), len(b.TexCoords), n * TexCoordComponents},
		{"indices", sig.HasIndex(), len(b.Indices), int(node.NFace) * FaceCorners},
	}
	for _, c := range channels {
		if c.requested && c.have < c.want {
			return fmt.Errorf("%w: %s buffer holds %d values, need %d", errs.ErrMalformedSignature, c.name, c.have, c.want)
		}
	}

	if sig.HasIndex() {
		for i, v := range b.Indices[:int(node.NFace)*FaceCorners] {
			if int(v) >= n {
				return fmt.Errorf("%w: face %d references vertex %d of %d", errs.ErrMalformedSignature, i/FaceCorners, v, n)
			}
		}
	}

	return nil
}

// Position returns the position of vertex i.
func (b *Buffers) Position(i int) [3]float32 {
	p := b.Positions[i*PositionComponents : i*PositionComponents+PositionComponents]
	return [3]float32{p[0], p[1], p[2]}
}

// Normal returns the normal of vertex i.
func (b *Buffers) Normal(i int) [3]int16 {
	n := b.Normals[i*NormalComponents : i*NormalComponents+NormalComponents]
	return [3]int16{n[0], n[1], n[2]}
}

// Color returns the RGBA color of vertex i.
func (b *Buffers) Color(i int) [4]uint8 {
	c := b.Colors[i*ColorComponents : i*ColorComponents+ColorComponents]
	return [4]uint8{c[0], c[1], c[2], c[3]}
}

// TexCoord returns the texture coordinate of vertex i.
func (b *Buffers) TexCoord(i int) [2]float32 {
	t := b.TexCoords[i*TexCoordComponents : i*TexCoordComponents+TexCoordComponents]
	return [2]float32{t[0], t[1]}
}

// Face returns the corners of face i.
func (b *Buffers) Face(i int) [3]uint16 {
	f := b.Indices[i*FaceCorners : i*FaceCorners+FaceCorners]
	return [3]uint16{f[0], f[1], f[2]}
}
