package codec

import (
	"fmt"

	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/format"
	"github.com/arloliu/meco/stream"
)

// connectivityEncoder walks the faces of an indexed node patch by patch and
// records the traversal as CLERS symbols plus vertex records.
//
// Vertices are renumbered in order of first use; decoded faces are kept in
// the new numbering exactly as the decoder will rebuild them.
type connectivityEncoder struct {
	faces  [][3]uint32 // input faces, original vertex numbering, degenerates removed
	coords []uint32    // rebased quantized positions by original vertex
	uvs    []uint32    // rebased quantized texture coordinates by original vertex, nil if untextured

	newIndex []int32  // original -> new, -1 until first use
	order    []uint32 // new -> original
	decoded  []uint32 // decoded faces, three new indices each
	visited  []bool

	front   front
	clers   []byte
	posMags []byte
	uvMags  []byte
	bits    *stream.BitWriter

	symbols [format.SymbolDelay + 1]int
	seeds   int
}

func newConnectivityEncoder(faces [][3]uint32, nvert int, coords, uvs []uint32, bw *stream.BitWriter) *connectivityEncoder {
	c := &connectivityEncoder{
		faces:    faces,
		coords:   coords,
		uvs:      uvs,
		newIndex: make([]int32, nvert),
		order:    make([]uint32, 0, nvert),
		decoded:  make([]uint32, 0, len(faces)*FaceCorners),
		visited:  make([]bool, len(faces)),
		clers:    make([]byte, 0, len(faces)+len(faces)/2),
		posMags:  make([]byte, 0, nvert),
		bits:     bw,
	}
	for i := range c.newIndex {
		c.newIndex[i] = -1
	}
	if uvs != nil {
		c.uvMags = make([]byte, 0, nvert)
	}

	return c
}

// edgeKey identifies an undirected edge by its original vertex numbers.
func edgeKey(a, b uint32) uint64 {
	if a > b {
		a, b = b, a
	}

	return uint64(a)<<32 | uint64(b)
}

// encodePatch traverses faces[start:end].
func (c *connectivityEncoder) encodePatch(start, end int) error {
	c.front.reset()

	adjacency := make(map[uint64][]int32, (end-start)*2)
	for f := start; f < end; f++ {
		tri := c.faces[f]
		for k := range FaceCorners {
			key := edgeKey(tri[k], tri[(k+1)%3])
			adjacency[key] = append(adjacency[key], int32(f)) //nolint:gosec // face count fits 32 bits
		}
	}

	remaining := end - start
	seed := start
	for remaining > 0 {
		h, forced, ok := c.front.pop()
		if !ok {
			for c.visited[seed] {
				seed++
			}
			c.seedFace(seed)
			remaining--

			continue
		}

		resolved, err := c.step(h, forced, adjacency)
		if err != nil {
			return err
		}
		if resolved {
			remaining--
		}
	}

	return nil
}

// seedFace opens a new component with face f; its corners are emitted as
// vertex records predicted from the origin.
func (c *connectivityEncoder) seedFace(f int) {
	c.visited[f] = true
	c.seeds++

	var tri [3]uint32
	for k, v := range c.faces[f] {
		tri[k] = c.introduce(v, nil)
	}
	c.front.open(c.emitFace(tri), tri)
}

// step processes one front edge and reports whether it resolved a face.
func (c *connectivityEncoder) step(h edgeHandle, forced bool, adjacency map[uint64][]int32) (bool, error) {
	e, p, n, err := c.front.neighbors(h)
	if err != nil {
		return false, fmt.Errorf("encoder front: %w", err)
	}

	g := c.opposite(e, adjacency)
	if g < 0 {
		c.symbol(format.SymbolBoundary)
		c.front.retire(h)

		return false, nil
	}

	far := c.farVertex(g, e)
	o := c.newIndex[far]
	left, right, end := false, false, false
	if o >= 0 {
		left, right, end = canClose(e, p, n, uint32(o))
	}

	switch {
	case end:
		c.symbol(format.SymbolEnd)
		c.emitFace(newFace(e, uint32(o)))
		c.front.closeBoth(h)
	case left:
		c.symbol(format.SymbolLeft)
		tri := newFace(e, uint32(o))
		c.front.closeLeft(h, c.emitFace(tri), tri)
	case right:
		c.symbol(format.SymbolRight)
		tri := newFace(e, uint32(o))
		c.front.closeRight(h, c.emitFace(tri), tri)
	case o >= 0 && !forced:
		c.symbol(format.SymbolDelay)
		c.front.delay(h)

		return false, nil
	default:
		c.symbol(format.SymbolVertex)
		corners := [3]uint32{e.v0, e.v1, e.across}
		tri := newFace(e, c.introduce(far, &corners))
		c.front.grow(h, c.emitFace(tri), tri)
	}
	c.visited[g] = true

	return true, nil
}

func (c *connectivityEncoder) symbol(s format.Symbol) {
	c.clers = append(c.clers, byte(s))
	c.symbols[s]++
}

// opposite returns the lowest unvisited face sharing e's end points, or -1.
func (c *connectivityEncoder) opposite(e *frontEdge, adjacency map[uint64][]int32) int32 {
	for _, g := range adjacency[edgeKey(c.order[e.v0], c.order[e.v1])] {
		if !c.visited[g] {
			return g
		}
	}

	return -1
}

// farVertex returns the corner of face g that is not on edge e.
func (c *connectivityEncoder) farVertex(g int32, e *frontEdge) uint32 {
	a, b := c.order[e.v0], c.order[e.v1]
	for _, v := range c.faces[g] {
		if v != a && v != b {
			return v
		}
	}

	return c.faces[g][0] // unreachable for non-degenerate faces
}

func (c *connectivityEncoder) emitFace(tri [3]uint32) uint32 {
	face := uint32(len(c.decoded) / FaceCorners) //nolint:gosec // face count fits 32 bits
	c.decoded = append(c.decoded, tri[0], tri[1], tri[2])

	return face
}

// introduce returns the new index of original vertex v, writing its vertex
// record. New vertices are predicted by the parallelogram
// p(corners[0]) + p(corners[1]) - p(corners[2]), or from zero when corners is nil.
func (c *connectivityEncoder) introduce(v uint32, corners *[3]uint32) uint32 {
	if idx := c.newIndex[v]; idx >= 0 {
		writeReference(&c.posMags, c.bits, uint32(idx))
		return uint32(idx)
	}

	idx := uint32(len(c.order)) //nolint:gosec // at most MaxVertices
	c.newIndex[v] = int32(idx)  //nolint:gosec // at most MaxVertices
	c.order = append(c.order, v)

	var r [PositionComponents]int64
	predictInto(r[:], c.coords, PositionComponents, v, c.order, corners)
	writeResiduals(&c.posMags, c.bits, r[:])

	if c.uvs != nil {
		var t [TexCoordComponents]int64
		predictInto(t[:], c.uvs, TexCoordComponents, v, c.order, corners)
		writeResiduals(&c.uvMags, c.bits, t[:])
	}

	return idx
}

// predictInto stores actual - predicted for original vertex v in r.
func predictInto(r []int64, values []uint32, components int, v uint32, order []uint32, corners *[3]uint32) {
	base := int(v) * components
	for k := range r {
		r[k] = int64(values[base+k])
	}
	if corners == nil {
		return
	}

	a := int(order[corners[0]]) * components
	b := int(order[corners[1]]) * components
	x := int(order[corners[2]]) * components
	for k := range r {
		r[k] -= int64(values[a+k]) + int64(values[b+k]) - int64(values[x+k])
	}
}

// removeDegenerate drops faces citing a vertex twice and shrinks the patch
// ends to match. It returns the kept faces, the new patches and the number of
// faces dropped.
func removeDegenerate(indices []uint16, patches []Patch) ([][3]uint32, []Patch, int) {
	faces := make([][3]uint32, 0, len(indices)/FaceCorners)
	out := make([]Patch, len(patches))

	start := 0
	for i, p := range patches {
		for f := start; f < int(p.TriangleEnd); f++ {
			a, b, c := indices[f*3], indices[f*3+1], indices[f*3+2]
			if a == b || b == c || a == c {
				continue
			}
			faces = append(faces, [3]uint32{uint32(a), uint32(b), uint32(c)})
		}
		out[i] = Patch{TriangleEnd: uint32(len(faces)), Texture: p.Texture} //nolint:gosec // face count fits 32 bits
		start = int(p.TriangleEnd)
	}

	return faces, out, len(indices)/FaceCorners - len(faces)
}

// checkTextures rejects textured nodes whose patches use different textures.
func checkTextures(sig Signature, patches []Patch) error {
	if !sig.HasTexCoords() || len(patches) == 0 {
		return nil
	}
	for _, p := range patches[1:] {
		if p.Texture != patches[0].Texture {
			return fmt.Errorf("%w: textured node uses textures %d and %d", errs.ErrUnsupportedTopology, patches[0].Texture, p.Texture)
		}
	}

	return nil
}
