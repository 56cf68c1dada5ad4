package aerosol

import (
	"fmt"
	"math"

	"github.com/san-kum/coagsim/internal/physics"
)

// Bins is an ordered particle-size grid. Centers holds radius centers [m] and
// VolCenters the matching volume centers [m³]. Edges, when set, has one more
// entry than Centers.
type Bins struct {
	Centers    []float64
	VolCenters []float64
	Edges      []float64
}

// NewBins builds n bins between rMin and rMax [m] with geometrically spaced
// radius edges. Each radius center is the midpoint of its edges and the
// volume center is the volume of a sphere of that radius.
func NewBins(rMin, rMax float64, n int) (Bins, error) {
	if n < 1 {
		return Bins{}, fmt.Errorf("%w: need at least one bin, got %d", ErrInvalidArgument, n)
	}
	if rMin <= 0 || rMax <= rMin {
		return Bins{}, fmt.Errorf("%w: radius range [%g, %g] m", ErrInvalidArgument, rMin, rMax)
	}

	ratio := math.Pow(rMax/rMin, 1/float64(n))
	b := Bins{
		Centers:    make([]float64, n),
		VolCenters: make([]float64, n),
		Edges:      make([]float64, n+1),
	}
	for i := range b.Edges {
		b.Edges[i] = rMin * math.Pow(ratio, float64(i))
	}
	b.Edges[n] = rMax
	for i := 0; i < n; i++ {
		b.Centers[i] = 0.5 * (b.Edges[i] + b.Edges[i+1])
		b.VolCenters[i] = physics.Volume(b.Centers[i])
	}
	return b, nil
}

// BinsFromCenters derives spherical volume centers from radius centers.
func BinsFromCenters(radii []float64) (Bins, error) {
	b := Bins{
		Centers:    append([]float64(nil), radii...),
		VolCenters: make([]float64, len(radii)),
	}
	for i, r := range radii {
		b.VolCenters[i] = physics.Volume(r)
	}
	return b, b.Validate()
}

// Len returns the number of bins.
func (b Bins) Len() int { return len(b.Centers) }

// Validate checks the grid invariants: non-empty, equal lengths, finite
// positive sizes and non-decreasing volume centers.
func (b Bins) Validate() error {
	if len(b.Centers) == 0 {
		return fmt.Errorf("%w: empty bin population", ErrInvalidArgument)
	}
	if len(b.Centers) != len(b.VolCenters) {
		return fmt.Errorf("%w: %d radius centers but %d volume centers",
			ErrInvalidArgument, len(b.Centers), len(b.VolCenters))
	}
	if b.Edges != nil && len(b.Edges) != len(b.Centers)+1 {
		return fmt.Errorf("%w: %d edges for %d bins", ErrInvalidArgument, len(b.Edges), len(b.Centers))
	}
	for i := range b.Centers {
		if !(b.Centers[i] > 0) || !(b.VolCenters[i] > 0) {
			return fmt.Errorf("%w: bin %d has non-positive size", ErrInvalidArgument, i)
		}
		if math.IsInf(b.Centers[i], 0) || math.IsInf(b.VolCenters[i], 0) {
			return fmt.Errorf("%w: bin %d has infinite size", ErrInvalidArgument, i)
		}
		if i > 0 && b.VolCenters[i] < b.VolCenters[i-1] {
			return fmt.Errorf("%w: volume centers decrease at bin %d", ErrInvalidArgument, i)
		}
	}
	return nil
}

// LogWidths returns ln(r_{i+1}/r_i) for every bin, used to turn bin
// concentrations into dN/dln r. Grids without edges use the spacing of the
// centers instead.
func (b Bins) LogWidths() []float64 {
	n := b.Len()
	w := make([]float64, n)
	if len(b.Edges) == n+1 {
		for i := range w {
			w[i] = math.Log(b.Edges[i+1] / b.Edges[i])
		}
		return w
	}
	for i := range w {
		switch {
		case n == 1:
			w[i] = 1
		case i == n-1:
			w[i] = math.Log(b.Centers[i] / b.Centers[i-1])
		default:
			w[i] = math.Log(b.Centers[i+1] / b.Centers[i])
		}
	}
	return w
}
