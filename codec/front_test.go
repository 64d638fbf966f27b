package codec

import (
	"testing"

	"github.com/arloliu/meco/errs"
	"github.com/stretchr/testify/require"
)

// cycle follows next links from h and returns the visited (v0, v1) pairs.
func cycle(t *testing.T, f *front, h edgeHandle) [][2]uint32 {
	t.Helper()

	var out [][2]uint32
	cur := h
	for range len(f.edges) + 1 {
		e, err := f.live(cur)
		require.NoError(t, err)
		out = append(out, [2]uint32{e.v0, e.v1})
		require.Equal(t, cur, f.edges[e.next].prev, "broken link after edge %d", cur)
		cur = e.next
		if cur == h {
			return out
		}
	}
	t.Fatalf("front cycle from %d does not close", h)

	return nil
}

func TestFront_OpenAndGrow(t *testing.T) {
	var f front
	f.open(0, [3]uint32{0, 1, 2})
	require.Equal(t, [][2]uint32{{1, 2}, {2, 0}, {0, 1}}, cycle(t, &f, 0))

	h, forced, ok := f.pop()
	require.True(t, ok)
	require.False(t, forced)
	require.Equal(t, edgeHandle(0), h)

	e, _, _, err := f.neighbors(h)
	require.NoError(t, err)
	tri := newFace(e, 3)
	require.Equal(t, [3]uint32{2, 1, 3}, tri)

	f.grow(h, 1, tri)
	_, err = f.live(h)
	require.ErrorIs(t, err, errs.ErrCorruptStream)
	require.Equal(t, [][2]uint32{{2, 0}, {0, 1}, {1, 3}, {3, 2}}, cycle(t, &f, 1))
}

func TestFront_CloseLeftAndEnd(t *testing.T) {
	var f front
	f.open(0, [3]uint32{0, 1, 2})
	f.grow(0, 1, [3]uint32{2, 1, 3})

	// edge (2, 0) with far vertex 3 closes against its predecessor (3, 2)
	e, p, n, err := f.neighbors(1)
	require.NoError(t, err)
	left, right, end := canClose(e, p, n, 3)
	require.True(t, left)
	require.False(t, right)
	require.False(t, end)

	f.closeLeft(1, 2, newFace(e, 3))
	require.Equal(t, [][2]uint32{{0, 1}, {1, 3}, {3, 0}}, cycle(t, &f, 2))

	// the remaining triangle closes completely
	e, p, n, err = f.neighbors(2)
	require.NoError(t, err)
	left, right, end = canClose(e, p, n, 3)
	require.True(t, left)
	require.True(t, right)
	require.True(t, end)

	f.closeBoth(2)
	for {
		h, _, ok := f.pop()
		if !ok {
			break
		}
		t.Fatalf("edge %d still live after closing", h)
	}
}

func TestFront_CloseRight(t *testing.T) {
	var f front
	f.open(0, [3]uint32{0, 1, 2})
	f.grow(0, 1, [3]uint32{2, 1, 3})

	// edge (0, 1) with far vertex 3 closes against its successor (1, 3)
	e, p, n, err := f.neighbors(2)
	require.NoError(t, err)
	left, right, end := canClose(e, p, n, 3)
	require.False(t, left)
	require.True(t, right)
	require.False(t, end)

	f.closeRight(2, 2, newFace(e, 3))
	require.Equal(t, [][2]uint32{{2, 0}, {0, 3}, {3, 2}}, cycle(t, &f, 1))
}

func TestFront_RetireToLoneEdge(t *testing.T) {
	var f front
	f.open(0, [3]uint32{0, 1, 2})
	f.retire(0)
	f.retire(1)

	e, p, n, err := f.neighbors(2)
	require.NoError(t, err)
	require.Same(t, e, p)
	require.Same(t, e, n)

	left, right, end := canClose(e, p, n, 0)
	require.False(t, left || right || end)

	// a lone edge grows into a two edge cycle
	f.grow(2, 1, newFace(e, 5))
	require.Equal(t, [][2]uint32{{0, 5}, {5, 1}}, cycle(t, &f, 3))
}

func TestFront_DelayedEdgesComeBackForced(t *testing.T) {
	var f front
	f.open(0, [3]uint32{0, 1, 2})

	for range 3 {
		h, forced, ok := f.pop()
		require.True(t, ok)
		require.False(t, forced)
		f.delay(h)
	}

	f.retire(1)
	var got []edgeHandle
	for {
		h, forced, ok := f.pop()
		if !ok {
			break
		}
		require.True(t, forced)
		got = append(got, h)
	}
	require.Equal(t, []edgeHandle{2, 0}, got)
}

func TestFront_Reset(t *testing.T) {
	var f front
	f.open(0, [3]uint32{0, 1, 2})
	f.delay(1)
	f.reset()

	_, _, ok := f.pop()
	require.False(t, ok)
	_, err := f.live(0)
	require.ErrorIs(t, err, errs.ErrCorruptStream)
}
