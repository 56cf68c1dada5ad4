package aerosol

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Distribution is a number concentration [# cm⁻³] per bin.
type Distribution struct {
	Bins Bins
	PDF  []float64
}

// NewDistribution pairs a bin grid with per-bin concentrations.
func NewDistribution(bins Bins, pdf []float64) (*Distribution, error) {
	if err := bins.Validate(); err != nil {
		return nil, err
	}
	if len(pdf) != bins.Len() {
		return nil, fmt.Errorf("%w: %d concentrations for %d bins", ErrInvalidArgument, len(pdf), bins.Len())
	}
	for i, n := range pdf {
		if n < 0 || math.IsNaN(n) {
			return nil, fmt.Errorf("%w: concentration %g in bin %d", ErrInvalidArgument, n, i)
		}
	}
	return &Distribution{Bins: bins, PDF: append([]float64(nil), pdf...)}, nil
}

// NewLognormal discretises a lognormal number distribution with total
// concentration nTotal [# cm⁻³], median radius rMean [m] and geometric
// standard deviation sigma (> 1) onto bins.
func NewLognormal(bins Bins, nTotal, rMean, sigma float64) (*Distribution, error) {
	if err := bins.Validate(); err != nil {
		return nil, err
	}
	if nTotal < 0 || rMean <= 0 || sigma <= 1 {
		return nil, fmt.Errorf("%w: lognormal N=%g r=%g sigma=%g", ErrInvalidArgument, nTotal, rMean, sigma)
	}

	lnSigma := math.Log(sigma)
	norm := nTotal / (math.Sqrt(2*math.Pi) * lnSigma)
	widths := bins.LogWidths()
	pdf := make([]float64, bins.Len())
	for i, r := range bins.Centers {
		x := math.Log(r/rMean) / lnSigma
		pdf[i] = norm * math.Exp(-0.5*x*x) * widths[i]
	}
	return &Distribution{Bins: bins, PDF: pdf}, nil
}

func (d *Distribution) Clone() *Distribution {
	return &Distribution{Bins: d.Bins, PDF: append([]float64(nil), d.PDF...)}
}

// Number returns the total number concentration [# cm⁻³].
func (d *Distribution) Number() float64 {
	return floats.Sum(d.PDF)
}

// Volume returns the total volume concentration [m³ cm⁻³].
func (d *Distribution) Volume() float64 {
	return floats.Dot(d.PDF, d.Bins.VolCenters)
}

// MeanRadius returns the number-weighted mean radius [m].
func (d *Distribution) MeanRadius() float64 {
	n := d.Number()
	if n == 0 {
		return 0
	}
	return floats.Dot(d.PDF, d.Bins.Centers) / n
}

// EffectiveRadius returns the ratio of the third to the second moment [m].
func (d *Distribution) EffectiveRadius() float64 {
	var m2, m3 float64
	for i, r := range d.Bins.Centers {
		m2 += d.PDF[i] * r * r
		m3 += d.PDF[i] * r * r * r
	}
	if m2 == 0 {
		return 0
	}
	return m3 / m2
}

// DNdLogR returns dN/dln r per bin, the form usually plotted.
func (d *Distribution) DNdLogR() []float64 {
	out := make([]float64, len(d.PDF))
	floats.DivTo(out, d.PDF, d.Bins.LogWidths())
	return out
}
