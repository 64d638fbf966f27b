package sizing

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/meco/codec"
	"github.com/arloliu/meco/errs"
)

// Sample is the measured size of one encoded node.
type Sample struct {
	Elements int // faces, or vertices for a point cloud
	Bytes    int // payload bytes
}

// SampleOf returns the sample of an encode call.
func SampleOf(res *codec.EncodeResult) Sample {
	elements := int(res.Node.NFace)
	if elements == 0 {
		elements = int(res.Node.NVert)
	}

	return Sample{Elements: elements, Bytes: len(res.Payload)}
}

// Result holds every fitted model, best first.
type Result struct {
	BestFit *Model
	Models  []*Model
	// Samples is the number of samples used for fitting.
	Samples int
}

// Analyze fits every model type to samples.
//
// Samples without elements or bytes are ignored. At least two distinct
// element counts must remain, otherwise ErrInvalidOption is returned.
func Analyze(samples []Sample) (*Result, error) {
	x := make([]float64, 0, len(samples))
	y := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.Elements <= 0 || s.Bytes <= 0 {
			continue
		}
		x = append(x, float64(s.Elements))
		y = append(y, float64(s.Bytes)/float64(s.Elements))
	}
	if distinct(x) < 2 {
		return nil, fmt.Errorf("%w: need samples of at least two node sizes, got %d usable samples", errs.ErrInvalidOption, len(x))
	}

	logX := apply(x, math.Log)
	logY := apply(y, math.Log)
	invX := apply(x, func(v float64) float64 { return 1 / v })

	models := []*Model{
		fit(ModelHyperbolic, invX, y),
		fit(ModelLogarithmic, logX, y),
		fit(ModelPower, logX, logY),
		fit(ModelLinear, x, y),
	}
	for _, m := range models {
		if m.Type == ModelPower {
			m.A = math.Exp(m.A)
		}
		m.RSquared, m.RMSE = score(m, x, y)
	}

	slices.SortStableFunc(models, func(a, b *Model) int {
		return cmp.Compare(b.RSquared, a.RSquared)
	})

	return &Result{BestFit: models[0], Models: models, Samples: len(x)}, nil
}

// AnalyzeResults fits models to the payload sizes of encode calls.
func AnalyzeResults(results []*codec.EncodeResult) (*Result, error) {
	samples := make([]Sample, 0, len(results))
	for _, res := range results {
		if res != nil {
			samples = append(samples, SampleOf(res))
		}
	}

	return Analyze(samples)
}

// fit solves the least squares line v = a + b*u.
func fit(t ModelType, u, v []float64) *Model {
	n := float64(len(u))
	var sumU, sumV, sumUV, sumU2 float64
	for i := range u {
		sumU += u[i]
		sumV += v[i]
		sumUV += u[i] * v[i]
		sumU2 += u[i] * u[i]
	}

	meanU, meanV := sumU/n, sumV/n
	den := sumU2 - n*meanU*meanU
	var b float64
	if den != 0 {
		b = (sumUV - n*meanU*meanV) / den
	}

	return &Model{Type: t, A: meanV - b*meanU, B: b}
}

// score returns the coefficient of determination and the root mean square
// error of m on the untransformed samples.
func score(m *Model, x, y []float64) (float64, float64) {
	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var ssTot, ssRes float64
	for i := range x {
		r := y[i] - m.BytesPerElement(x[i])
		ssRes += r * r
		ssTot += (y[i] - mean) * (y[i] - mean)
	}
	rmse := math.Sqrt(ssRes / float64(len(y)))
	if math.IsNaN(ssRes) {
		return math.Inf(-1), rmse
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1, rmse
		}

		return 0, rmse
	}

	return 1 - ssRes/ssTot, rmse
}

func apply(values []float64, f func(float64) float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = f(v)
	}

	return out
}

func distinct(values []float64) int {
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}

	return len(seen)
}
