package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/coagsim/internal/dynamo"
)

// TotalNumber reports the total number concentration [# cm⁻³] of the last
// observed state.
type TotalNumber struct {
	last float64
}

func NewTotalNumber() *TotalNumber { return &TotalNumber{} }

func (n *TotalNumber) Name() string { return "total_number" }

func (n *TotalNumber) Observe(x dynamo.State, t float64) {
	n.last = floats.Sum(x)
}

func (n *TotalNumber) Value() float64 { return n.last }
func (n *TotalNumber) Reset()         { n.last = 0 }

// EffectiveRadius reports the ratio of the third to the second radius moment
// [m] of the last observed state.
type EffectiveRadius struct {
	radii []float64
	last  float64
}

// NewEffectiveRadius measures states binned on the given radius centers [m].
func NewEffectiveRadius(radii []float64) *EffectiveRadius {
	return &EffectiveRadius{radii: append([]float64(nil), radii...)}
}

func (e *EffectiveRadius) Name() string { return "effective_radius" }

func (e *EffectiveRadius) Observe(x dynamo.State, t float64) {
	if len(x) != len(e.radii) {
		return
	}
	var m2, m3 float64
	for i, r := range e.radii {
		r2 := r * r
		m2 += x[i] * r2
		m3 += x[i] * r2 * r
	}
	if m2 == 0 {
		e.last = 0
		return
	}
	e.last = m3 / m2
}

func (e *EffectiveRadius) Value() float64 { return e.last }
func (e *EffectiveRadius) Reset()         { e.last = 0 }
