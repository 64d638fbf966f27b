package codec

import (
	"fmt"

	"github.com/arloliu/meco/errs"
)

// edgeHandle addresses a frontEdge in the front arena.
type edgeHandle int32

// frontEdge is a directed edge of the living boundary between traversed and
// untraversed faces. It borders decoded face `face` opposite corner `corner`:
// v0 = face[corner+1], v1 = face[corner+2], across = face[corner].
type frontEdge struct {
	face    uint32
	corner  uint8
	deleted bool
	v0      uint32
	v1      uint32
	across  uint32
	prev    edgeHandle
	next    edgeHandle
}

// front is the arena of front edges plus the ready queue and delay stack.
// Edges are soft-deleted and never reused, so a stale handle is detected
// instead of silently aliasing a newer edge.
type front struct {
	edges   []frontEdge
	queue   []edgeHandle
	head    int
	delayed []edgeHandle
}

func (f *front) reset() {
	f.edges = f.edges[:0]
	f.queue = f.queue[:0]
	f.head = 0
	f.delayed = f.delayed[:0]
}

// pop returns the next live edge: from the queue if it has any, otherwise from
// the delay stack with forced set. ok is false when both are exhausted.
func (f *front) pop() (h edgeHandle, forced bool, ok bool) {
	for f.head < len(f.queue) {
		h = f.queue[f.head]
		f.head++
		if !f.edges[h].deleted {
			return h, false, true
		}
	}
	for len(f.delayed) > 0 {
		h = f.delayed[len(f.delayed)-1]
		f.delayed = f.delayed[:len(f.delayed)-1]
		if !f.edges[h].deleted {
			return h, true, true
		}
	}

	return 0, false, false
}

func (f *front) delay(h edgeHandle) {
	f.delayed = append(f.delayed, h)
}

// live returns the edge for h, failing for unknown or deleted handles.
func (f *front) live(h edgeHandle) (*frontEdge, error) {
	if h < 0 || int(h) >= len(f.edges) {
		return nil, fmt.Errorf("%w: front edge %d of %d", errs.ErrCorruptStream, h, len(f.edges))
	}
	e := &f.edges[h]
	if e.deleted {
		return nil, fmt.Errorf("%w: front edge %d already retired", errs.ErrCorruptStream, h)
	}

	return e, nil
}

// neighbors returns the live edge for h and its live predecessor and successor.
func (f *front) neighbors(h edgeHandle) (e, p, n *frontEdge, err error) {
	if e, err = f.live(h); err != nil {
		return nil, nil, nil, err
	}
	if p, err = f.live(e.prev); err != nil {
		return nil, nil, nil, err
	}
	if n, err = f.live(e.next); err != nil {
		return nil, nil, nil, err
	}

	return e, p, n, nil
}

// add appends the edge of decoded face `face` opposite corner c and queues it.
func (f *front) add(face uint32, tri [3]uint32, c uint8) edgeHandle {
	h := edgeHandle(len(f.edges)) //nolint:gosec // bounded by five edges per face
	f.edges = append(f.edges, frontEdge{
		face:   face,
		corner: c,
		v0:     tri[(c+1)%3],
		v1:     tri[(c+2)%3],
		across: tri[c],
	})
	f.queue = append(f.queue, h)

	return h
}

func (f *front) link(a, b edgeHandle) {
	f.edges[a].next = b
	f.edges[b].prev = a
}

// open starts a new cycle with the three edges of a seed face.
func (f *front) open(face uint32, tri [3]uint32) {
	a := f.add(face, tri, 0)
	b := f.add(face, tri, 1)
	c := f.add(face, tri, 2)
	f.link(a, b)
	f.link(b, c)
	f.link(c, a)
}

// grow replaces edge h by the two outer edges of the new face (v1, v0, o).
func (f *front) grow(h edgeHandle, face uint32, tri [3]uint32) {
	prev, next := f.edges[h].prev, f.edges[h].next
	f.edges[h].deleted = true

	a := f.add(face, tri, 0) // (v0, o)
	b := f.add(face, tri, 1) // (o, v1)
	if prev == h {
		// a lone edge closes onto itself
		prev, next = b, a
	}
	f.link(prev, a)
	f.link(a, b)
	f.link(b, next)
}

// closeLeft retires h and its predecessor, which the new face covers,
// and puts the face's edge (o, v1) in their place.
func (f *front) closeLeft(h edgeHandle, face uint32, tri [3]uint32) {
	p := f.edges[h].prev
	pp, next := f.edges[p].prev, f.edges[h].next
	f.edges[h].deleted = true
	f.edges[p].deleted = true

	b := f.add(face, tri, 1)
	f.link(pp, b)
	f.link(b, next)
}

// closeRight retires h and its successor and puts the edge (v0, o) in their place.
func (f *front) closeRight(h edgeHandle, face uint32, tri [3]uint32) {
	n := f.edges[h].next
	prev, nn := f.edges[h].prev, f.edges[n].next
	f.edges[h].deleted = true
	f.edges[n].deleted = true

	a := f.add(face, tri, 0)
	f.link(prev, a)
	f.link(a, nn)
}

// closeBoth retires a three edge cycle.
func (f *front) closeBoth(h edgeHandle) {
	e := &f.edges[h]
	f.edges[e.prev].deleted = true
	f.edges[e.next].deleted = true
	e.deleted = true
}

// retire drops a boundary edge and joins its neighbors.
func (f *front) retire(h edgeHandle) {
	e := &f.edges[h]
	e.deleted = true
	if e.prev != h {
		f.link(e.prev, e.next)
	}
}

// newFace returns the face closing front edge e with far vertex o.
func newFace(e *frontEdge, o uint32) [3]uint32 {
	return [3]uint32{e.v1, e.v0, o}
}

// canClose classifies how the face (v1, v0, o) closes against the front
// around e. Closures need a cycle of at least three edges whose neighbors
// share e's end points.
func canClose(e, p, n *frontEdge, o uint32) (left, right, end bool) {
	if e.prev == e.next {
		return false, false, false
	}
	left = p.v1 == e.v0 && p.v0 == o
	right = n.v0 == e.v1 && n.v1 == o
	end = left && right && p.prev == e.next

	return left, right, end
}
