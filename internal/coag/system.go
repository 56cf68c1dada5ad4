package coag

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/coagsim/internal/aerosol"
	"github.com/san-kum/coagsim/internal/dynamo"
)

// transfer moves share w of the volume of a bin-i particle that collided
// with a bin-j particle into bin k (k > i).
type transfer struct {
	j, k int
	w    float64
}

// System evolves the number concentrations [# cm⁻³] of one population under
// self-coagulation. It implements dynamo.System, dynamo.Conserved and
// dynamo.SemiImplicitSystem.
//
// With a scavenger attached the population also loses particles to a fixed
// external population, and Invariant then decreases by the scavenged volume.
type System struct {
	n      int
	vol    []float64
	rate   [][]float64
	moves  [][]transfer
	outFor [][]float64 // share of bin k's volume leaving k after hitting j

	sink []float64 // K1D_i * nB [s⁻¹]
}

// SystemOption configures NewSystem.
type SystemOption func(*systemOptions) error

type systemOptions struct {
	rawKernel bool
	cross     *Coagulation
	nB        float64
}

// WithoutEfficiency evolves the population with the collision kernel itself
// instead of beta. The coalescence-efficiency fit is for cloud droplets; for
// sub-micron aerosol it is zero and beta would freeze the distribution.
func WithoutEfficiency() SystemOption {
	return func(o *systemOptions) error {
		o.rawKernel = true
		return nil
	}
}

// WithScavenger adds loss onto an external population of concentration nB
// [# cm⁻³] using the 1D kernel of cross.
func WithScavenger(cross *Coagulation, nB float64) SystemOption {
	return func(o *systemOptions) error {
		if cross == nil || cross.kernel1D == nil {
			return fmt.Errorf("scavenger: %w", ErrNotPopulated)
		}
		if nB < 0 {
			return fmt.Errorf("%w: scavenger concentration %g", ErrInvalidArgument, nB)
		}
		o.cross, o.nB = cross, nB
		return nil
	}
}

// NewSystem prepares the rate equations for a self-paired coagulation built
// over bins.
func NewSystem(c *Coagulation, bins aerosol.Bins, opts ...SystemOption) (*System, error) {
	var o systemOptions
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	if c == nil || c.kernel == nil {
		return nil, ErrNotPopulated
	}
	rows, cols := c.kernel.Dims()
	if rows != cols || rows != bins.Len() || c.f == nil {
		return nil, fmt.Errorf("%w: system needs a square %dx%d kernel, got %dx%d",
			ErrInvalidArgument, bins.Len(), bins.Len(), rows, cols)
	}

	n := rows
	if o.cross != nil && len(o.cross.kernel1D) != n {
		return nil, fmt.Errorf("%w: scavenger kernel has %d bins, system %d", ErrInvalidArgument, len(o.cross.kernel1D), n)
	}

	weights := c.beta
	if o.rawKernel {
		weights = c.kernel
	}

	s := &System{
		n:      n,
		vol:    append([]float64(nil), bins.VolCenters...),
		rate:   make([][]float64, n),
		moves:  make([][]transfer, n),
		outFor: make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		s.rate[i] = mat.Row(nil, i, weights)
		s.outFor[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			idx := c.receiver[i][j]
			for _, k := range [2]int{idx, idx + 1} {
				if k <= i || k >= n {
					continue
				}
				if w := c.Fraction(i, j, k); w > 0 {
					s.moves[i] = append(s.moves[i], transfer{j: j, k: k, w: w})
					s.outFor[i][j] += w
				}
			}
		}
	}
	if o.cross != nil {
		s.sink = make([]float64, n)
		floats.ScaleTo(s.sink, o.nB, o.cross.kernel1D)
	}
	return s, nil
}

func (s *System) Dim() int { return s.n }

// Derive returns dN/dt for every bin. Volume leaves bin i only towards larger
// bins, so the sum of dN/dt weighted by bin volume is zero.
func (s *System) Derive(x dynamo.State, _ float64) dynamo.State {
	dc := make([]float64, s.n)
	for i := 0; i < s.n; i++ {
		ci := x[i] * s.vol[i]
		if ci == 0 {
			continue
		}
		for _, m := range s.moves[i] {
			r := m.w * s.rate[i][m.j] * ci * x[m.j]
			dc[m.k] += r
			dc[i] -= r
		}
	}

	dx := make(dynamo.State, s.n)
	floats.DivTo(dx, dc, s.vol)
	for i, k := range s.sink {
		dx[i] -= k * x[i]
	}
	return dx
}

// SemiImplicitStep advances x by dt with the volume-conserving semi-implicit
// scheme: production into a bin uses the already updated smaller bins,
// losses are implicit in the bin itself. The result is never negative and,
// without a scavenger, total volume is conserved to round-off for any dt.
func (s *System) SemiImplicitStep(x dynamo.State, dt float64) dynamo.State {
	prod := make([]float64, s.n)
	next := make(dynamo.State, s.n)

	for k := 0; k < s.n; k++ {
		var loss float64
		for j, w := range s.outFor[k] {
			if w != 0 {
				loss += w * s.rate[k][j] * x[j]
			}
		}

		ck := (s.vol[k]*x[k] + dt*prod[k]) / (1 + dt*loss)
		next[k] = ck / s.vol[k]

		if ck == 0 {
			continue
		}
		for _, m := range s.moves[k] {
			prod[m.k] += m.w * s.rate[k][m.j] * ck * x[m.j]
		}
	}

	for i, k := range s.sink {
		next[i] /= 1 + dt*k
	}
	return next
}

// Invariant returns the total volume concentration [m³ cm⁻³].
func (s *System) Invariant(x dynamo.State) float64 {
	return floats.Dot(x, s.vol)
}

// Scavenge removes population A onto a fixed external population B of
// number concentration nB [# cm⁻³] over dt, using the 1D kernel of cross.
// The loss is treated implicitly so concentrations stay non-negative.
func Scavenge(x dynamo.State, cross *Coagulation, nB, dt float64) (dynamo.State, error) {
	if cross == nil || cross.kernel1D == nil {
		return nil, ErrNotPopulated
	}
	if len(x) != len(cross.kernel1D) {
		return nil, fmt.Errorf("%w: state has %d bins, kernel %d", ErrInvalidArgument, len(x), len(cross.kernel1D))
	}
	if nB < 0 || dt < 0 {
		return nil, fmt.Errorf("%w: nB=%g dt=%g", ErrInvalidArgument, nB, dt)
	}

	next := make(dynamo.State, len(x))
	for i, k := range cross.kernel1D {
		next[i] = x[i] / (1 + dt*k*nB)
	}
	return next, nil
}
