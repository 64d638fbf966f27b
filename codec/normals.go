package codec

import (
	"fmt"
	"math"

	"github.com/arloliu/meco/errs"
	"github.com/arloliu/meco/stream"
)

// normalUnit is the length of a unit normal in the int16 buffers.
const normalUnit = 32767

// normalRange returns R = 2^(bits-1) - 1, the quantized length of a unit normal.
func normalRange(bits uint8) int64 {
	return int64(1)<<(bits-1) - 1
}

// quantizeNormal maps an int16 normal component to [-r, r].
func quantizeNormal(v int16, r int64) int64 {
	q := int64(math.Round(float64(v) * float64(r) / normalUnit))
	return min(max(q, -r), r)
}

// dequantizeNormal maps a quantized component back to the int16 range.
func dequantizeNormal(q, r int64) int16 {
	v := int64(math.Round(float64(q) * normalUnit / float64(r)))
	return int16(min(max(v, -normalUnit), normalUnit)) //nolint:gosec // clamped
}

// closeNormal returns the z component completing (x, y) to length r,
// rounded to the nearest integer and negated when negative is set.
func closeNormal(x, y, r int64, negative bool) int64 {
	s := r*r - x*x - y*y
	if s <= 0 {
		return 0
	}

	z := int64(math.Sqrt(float64(s)))
	for z*z > s {
		z--
	}
	for (z+1)*(z+1) <= s {
		z++
	}
	// round to nearest: (z + 0.5)^2 = z^2 + z + 0.25
	if s-z*z > z {
		z++
	}
	if negative {
		return -z
	}

	return z
}

// boundaryVertices marks vertices whose signed incidence sum is non-zero.
// Each directed face edge a->b adds b to a and subtracts a from b, so the
// contributions of an edge and its twin cancel on closed surfaces.
func boundaryVertices(faces []uint32, nvert int) []bool {
	acc := make([]int64, nvert)
	for f := 0; f+FaceCorners <= len(faces); f += FaceCorners {
		for k := range FaceCorners {
			a, b := faces[f+k], faces[f+(k+1)%3]
			acc[a] += int64(b)
			acc[b] -= int64(a)
		}
	}

	boundary := make([]bool, nvert)
	for v, s := range acc {
		boundary[v] = s != 0
	}

	return boundary
}

// estimateNormals sums the unnormalized cross products of every face incident
// to a vertex and scales the sum to length r. coords holds rebased quantized
// positions in decoded vertex order.
//
// The arithmetic is float64 with every product rounded on its own, so encoder
// and decoder produce identical estimates on every platform.
func estimateNormals(coords []uint32, faces []uint32, nvert int, r int64) [][3]int64 {
	sums := make([][3]float64, nvert)
	for f := 0; f+FaceCorners <= len(faces); f += FaceCorners {
		a, b, c := int(faces[f]), int(faces[f+1]), int(faces[f+2])
		var u, v [3]float64
		for k := range 3 {
			u[k] = float64(int64(coords[b*3+k]) - int64(coords[a*3+k]))
			v[k] = float64(int64(coords[c*3+k]) - int64(coords[a*3+k]))
		}
		n := [3]float64{
			float64(u[1]*v[2]) - float64(u[2]*v[1]),
			float64(u[2]*v[0]) - float64(u[0]*v[2]),
			float64(u[0]*v[1]) - float64(u[1]*v[0]),
		}
		for _, vert := range [3]int{a, b, c} {
			for k := range 3 {
				sums[vert][k] += n[k]
			}
		}
	}

	out := make([][3]int64, nvert)
	scale := float64(r)
	for i, s := range sums {
		length := math.Sqrt(float64(s[0]*s[0]) + float64(s[1]*s[1]) + float64(s[2]*s[2]))
		if length == 0 {
			out[i] = [3]int64{0, 0, r}
			continue
		}
		for k := range 3 {
			out[i][k] = int64(math.Round(float64(s[k]*scale) / length))
		}
	}

	return out
}

// normalChannels collects the symbols and bits of the normal record.
type normalChannels struct {
	mags  []byte
	signs []byte
}

// encodeNormal writes the residual of (x, y) against (px, py) and the sign of z.
func (n *normalChannels) encodeNormal(bw *stream.BitWriter, q, pred [3]int64) {
	encodeDiff(&n.mags, bw, q[0]-pred[0])
	encodeDiff(&n.mags, bw, q[1]-pred[1])
	if q[2] < 0 {
		n.signs = append(n.signs, 1)
	} else {
		n.signs = append(n.signs, 0)
	}
}

// decodeNormal inverts encodeNormal, closing z to length r.
func decodeNormal(mags, signs *symbolCursor, br *stream.BitReader, pred [3]int64, r int64) ([3]int64, error) {
	var q [3]int64
	for k := range 2 {
		mag, err := mags.next()
		if err != nil {
			return q, err
		}
		d, err := decodeDiff(mag, br)
		if err != nil {
			return q, err
		}
		q[k] = pred[k] + d
		if q[k] < -r || q[k] > r {
			return q, fmt.Errorf("%w: normal component %d outside [-%d, %d]", errs.ErrCorruptStream, q[k], r, r)
		}
	}
	sign, err := signs.next()
	if err != nil {
		return q, err
	}
	q[2] = closeNormal(q[0], q[1], r, sign != 0)

	return q, nil
}
