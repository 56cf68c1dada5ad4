package coag

import (
	"fmt"
	"math"
)

// DefaultDissipation is the turbulent kinetic energy dissipation rate used
// when none is configured [m² s⁻³].
const DefaultDissipation = 5.0e-4

// Ambient is the background state the kernel is evaluated in.
type Ambient struct {
	Temperature float64 // [K]
	Pressure    float64 // [Pa]
	Dissipation float64 // [m² s⁻³]
}

func (a Ambient) validate() error {
	if !(a.Temperature > 0) || math.IsInf(a.Temperature, 0) {
		return fmt.Errorf("%w: temperature %g K", ErrInvalidArgument, a.Temperature)
	}
	if !(a.Pressure > 0) || math.IsInf(a.Pressure, 0) {
		return fmt.Errorf("%w: pressure %g Pa", ErrInvalidArgument, a.Pressure)
	}
	if a.Dissipation < 0 || math.IsNaN(a.Dissipation) {
		return fmt.Errorf("%w: dissipation rate %g m2/s3", ErrInvalidArgument, a.Dissipation)
	}
	return nil
}
