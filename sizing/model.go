package sizing

import (
	"fmt"
	"math"
	"strings"

	"github.com/arloliu/meco/errs"
)

// ModelType is the shape of a bytes-per-element curve.
type ModelType int

const (
	// ModelHyperbolic is bpe = a + b / n.
	ModelHyperbolic ModelType = iota
	// ModelLogarithmic is bpe = a + b * ln(n).
	ModelLogarithmic
	// ModelPower is bpe = a * n^b.
	ModelPower
	// ModelLinear is bpe = a + b * n.
	ModelLinear
)

var modelTypeNames = [...]string{"hyperbolic", "logarithmic", "power", "linear"}

// String returns the model name.
func (t ModelType) String() string {
	if t < 0 || int(t) >= len(modelTypeNames) {
		return "unknown"
	}

	return modelTypeNames[t]
}

// ParseModelType returns the ModelType called name, ignoring case.
func ParseModelType(name string) (ModelType, error) {
	for i, n := range modelTypeNames {
		if strings.EqualFold(n, name) {
			return ModelType(i), nil
		}
	}

	return 0, fmt.Errorf("%w: unknown size model %q, expected one of %s",
		errs.ErrInvalidOption, name, strings.Join(modelTypeNames[:], ", "))
}

// Model is a fitted bytes-per-element curve.
type Model struct {
	Type ModelType
	A, B float64
	// RSquared is the coefficient of determination of the fit, at most 1.
	RSquared float64
	// RMSE is the root mean square error in bytes per element.
	RMSE float64
}

// NewModel recreates a model from its name and coefficients.
func NewModel(name string, a, b float64) (*Model, error) {
	t, err := ParseModelType(name)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return nil, fmt.Errorf("%w: non-finite coefficients %g, %g", errs.ErrInvalidOption, a, b)
	}

	return &Model{Type: t, A: a, B: b}, nil
}

// BytesPerElement evaluates the curve at n elements.
func (m *Model) BytesPerElement(n float64) float64 {
	switch m.Type {
	case ModelHyperbolic:
		return m.A + m.B/n
	case ModelLogarithmic:
		return m.A + m.B*math.Log(n)
	case ModelPower:
		return m.A * math.Pow(n, m.B)
	default:
		return m.A + m.B*n
	}
}

// EstimateSize returns the estimated payload size in bytes of a node with
// the given number of elements. Extrapolations below zero return zero.
func (m *Model) EstimateSize(elements int) int {
	if elements <= 0 {
		return 0
	}
	n := float64(elements)
	size := m.BytesPerElement(n) * n
	if math.IsNaN(size) || size <= 0 {
		return 0
	}

	return int(math.Ceil(size))
}

// Formula returns the curve as text.
func (m *Model) Formula() string {
	switch m.Type {
	case ModelHyperbolic:
		return fmt.Sprintf("bpe = %.3f + %.3f / n", m.A, m.B)
	case ModelLogarithmic:
		return fmt.Sprintf("bpe = %.3f + %.3f * ln(n)", m.A, m.B)
	case ModelPower:
		return fmt.Sprintf("bpe = %.3f * n^%.4f", m.A, m.B)
	default:
		return fmt.Sprintf("bpe = %.3f + %.6f * n", m.A, m.B)
	}
}

func (m *Model) String() string {
	return fmt.Sprintf("Model{Type: %s, R²: %.4f, RMSE: %.4f, Formula: %s}", m.Type, m.RSquared, m.RMSE, m.Formula())
}
