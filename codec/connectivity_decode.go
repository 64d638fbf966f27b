package codec

import (
	"fmt"

	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/format"
	"github.com/arloliu/meco/stream"
)

// connectivityDecoder replays the traversal of connectivityEncoder from the
// CLERS symbols and vertex records.
type connectivityDecoder struct {
	nvert    int
	coordMax int64
	uvMax    int64

	coords []uint32 // rebased quantized positions in decoded order
	uvs    []uint32 // nil if untextured
	count  int      // vertices decoded so far
	faces  []uint32

	front   front
	clers   *symbolCursor
	posMags *symbolCursor
	uvMags  *symbolCursor
	bits    *stream.BitReader
}

// decodePatch decodes the next faces faces of the node.
func (c *connectivityDecoder) decodePatch(faces int) error {
	c.front.reset()

	for remaining := faces; remaining > 0; {
		h, forced, ok := c.front.pop()
		if !ok {
			if err := c.seed(); err != nil {
				return err
			}
			remaining--

			continue
		}

		s, err := c.clers.next()
		if err != nil {
			return err
		}
		resolved, err := c.step(h, format.Symbol(s), forced)
		if err != nil {
			return err
		}
		if resolved {
			remaining--
		}
	}

	return nil
}

func (c *connectivityDecoder) seed() error {
	var tri [3]uint32
	for k := range tri {
		v, err := c.readVertex(nil)
		if err != nil {
			return err
		}
		tri[k] = v
	}
	face, err := c.emitFace(tri)
	if err != nil {
		return err
	}
	c.front.open(face, tri)

	return nil
}

func (c *connectivityDecoder) step(h edgeHandle, s format.Symbol, forced bool) (bool, error) {
	e, p, n, err := c.front.neighbors(h)
	if err != nil {
		return false, err
	}

	switch s {
	case format.SymbolBoundary:
		c.front.retire(h)
		return false, nil

	case format.SymbolDelay:
		if forced {
			return false, fmt.Errorf("%w: edge delayed twice", errs.ErrCorruptStream)
		}
		c.front.delay(h)

		return false, nil

	case format.SymbolVertex:
		corners := [3]uint32{e.v0, e.v1, e.across}
		o, err := c.readVertex(&corners)
		if err != nil {
			return false, err
		}
		tri := newFace(e, o)
		face, err := c.emitFace(tri)
		if err != nil {
			return false, err
		}
		c.front.grow(h, face, tri)

	case format.SymbolLeft, format.SymbolRight, format.SymbolEnd:
		var o uint32
		if s == format.SymbolRight {
			o = n.v1
		} else {
			o = p.v0
		}
		left, right, end := canClose(e, p, n, o)
		valid := (s == format.SymbolLeft && left) || (s == format.SymbolRight && right) || (s == format.SymbolEnd && end)
		if !valid {
			return false, fmt.Errorf("%w: %s does not match the front", errs.ErrCorruptStream, s)
		}

		tri := newFace(e, o)
		face, err := c.emitFace(tri)
		if err != nil {
			return false, err
		}
		switch s {
		case format.SymbolLeft:
			c.front.closeLeft(h, face, tri)
		case format.SymbolRight:
			c.front.closeRight(h, face, tri)
		default:
			c.front.closeBoth(h)
		}

	default:
		return false, fmt.Errorf("%w: unknown connectivity symbol %d", errs.ErrCorruptStream, s)
	}

	return true, nil
}

func (c *connectivityDecoder) emitFace(tri [3]uint32) (uint32, error) {
	if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
		return 0, fmt.Errorf("%w: degenerate face %v", errs.ErrCorruptStream, tri)
	}
	face := uint32(len(c.faces) / FaceCorners) //nolint:gosec // bounded by NFace
	c.faces = append(c.faces, tri[0], tri[1], tri[2])

	return face, nil
}

// readVertex reads one vertex record and returns the vertex index.
func (c *connectivityDecoder) readVertex(corners *[3]uint32) (uint32, error) {
	mag, err := c.posMags.next()
	if err != nil {
		return 0, err
	}
	if mag == 0 {
		idx, err := c.bits.Read(referenceBits)
		if err != nil {
			return 0, err
		}
		if int(idx) >= c.count {
			return 0, fmt.Errorf("%w: reference to vertex %d, only %d decoded", errs.ErrCorruptStream, idx, c.count)
		}

		return uint32(idx), nil
	}
	if c.count >= c.nvert {
		return 0, fmt.Errorf("%w: more than %d vertices", errs.ErrCorruptStream, c.nvert)
	}

	idx := c.count
	if err := c.readComponents(mag, c.coords, PositionComponents, idx, corners, c.coordMax); err != nil {
		return 0, err
	}
	if c.uvs != nil {
		uvMag, err := c.uvMags.next()
		if err != nil {
			return 0, err
		}
		if err := c.readComponents(uvMag, c.uvs, TexCoordComponents, idx, corners, c.uvMax); err != nil {
			return 0, err
		}
	}
	c.count++

	return uint32(idx), nil //nolint:gosec // at most MaxVertices
}

// readComponents reads the residuals of vertex idx and adds the prediction.
func (c *connectivityDecoder) readComponents(width byte, values []uint32, components, idx int, corners *[3]uint32, limit int64) error {
	var r [PositionComponents]int64
	if err := readResiduals(width, c.bits, r[:components]); err != nil {
		return err
	}

	for k := range components {
		v := r[k]
		if corners != nil {
			a, b, x := int(corners[0]), int(corners[1]), int(corners[2])
			v += int64(values[a*components+k]) + int64(values[b*components+k]) - int64(values[x*components+k])
		}
		if v < 0 || v >= limit {
			return fmt.Errorf("%w: coordinate %d outside grid of %d", errs.ErrCorruptStream, v, limit)
		}
		values[idx*components+k] = uint32(v) //nolint:gosec // range checked
	}

	return nil
}
