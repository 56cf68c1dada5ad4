package coag

import (
	"fmt"
	"math"

	"github.com/san-kum/coagsim/internal/aerosol"
	"github.com/san-kum/coagsim/internal/physics"
)

// m³ s⁻¹ to cm³ s⁻¹
const kernelUnit = 1.0e6

// Process is one physical coagulation mechanism.
type Process int

const (
	Brownian Process = iota
	DiffusionEnhancement
	GravitationalCollection
	TurbulentInertial
	TurbulentShear
)

func (p Process) String() string {
	switch p {
	case Brownian:
		return "brownian"
	case DiffusionEnhancement:
		return "diffusion-enhancement"
	case GravitationalCollection:
		return "gravitational-collection"
	case TurbulentInertial:
		return "turbulent-inertial"
	case TurbulentShear:
		return "turbulent-shear"
	}
	return fmt.Sprintf("Process(%d)", int(p))
}

// KernelFunc is a pairwise rate kernel [m³ s⁻¹]. Every implementation is
// symmetric in its two particle arguments.
type KernelFunc func(a, b physics.Particle, env Ambient) float64

// Kernel returns the rate function of p.
func (p Process) Kernel() KernelFunc {
	switch p {
	case Brownian:
		return BrownianKernel
	case DiffusionEnhancement:
		return DiffusionEnhancementKernel
	case GravitationalCollection:
		return GravitationalCollectionKernel
	case TurbulentInertial:
		return TurbulentInertialKernel
	case TurbulentShear:
		return TurbulentShearKernel
	}
	return nil
}

// Processes lists the mechanisms summed for a phase; nil for unknown phases.
func Processes(phase aerosol.Phase) []Process {
	switch phase {
	case aerosol.Liquid, aerosol.Soot:
		return []Process{Brownian, DiffusionEnhancement}
	case aerosol.Ice:
		return []Process{Brownian, DiffusionEnhancement, GravitationalCollection, TurbulentInertial, TurbulentShear}
	}
	return nil
}

// BrownianKernel is Fuchs' interpolation between the free-molecular and
// continuum Brownian coagulation regimes.
func BrownianKernel(a, b physics.Particle, _ Ambient) float64 {
	rs := a.Radius + b.Radius
	ds := a.Diffusivity + b.Diffusivity
	g := math.Hypot(a.Delta, b.Delta)
	c := math.Hypot(a.ThermalSpeed, b.ThermalSpeed)

	return 4 * math.Pi * rs * ds / (rs/(rs+g) + 4*ds/(c*rs))
}

// DiffusionEnhancementKernel is the convective enhancement of Brownian
// diffusion onto the larger, falling particle. It scales the Brownian kernel
// by the Reynolds number of the larger particle and the Schmidt number of the
// smaller one.
func DiffusionEnhancementKernel(a, b physics.Particle, env Ambient) float64 {
	large, small := order(a, b)
	re := large.Reynolds
	sc := math.Cbrt(small.Schmidt)

	var f float64
	if re <= 1 {
		f = 0.45 * math.Cbrt(re) * sc
	} else {
		f = 0.45 * math.Sqrt(re) * sc
	}
	return BrownianKernel(a, b, env) * f
}

// GravitationalCollectionKernel is collection of the smaller particle by the
// faster falling larger one, weighted by the collision efficiency.
func GravitationalCollectionKernel(a, b physics.Particle, _ Ambient) float64 {
	rs := a.Radius + b.Radius
	dv := math.Abs(a.FallSpeed - b.FallSpeed)
	return collisionEfficiency(a, b) * math.Pi * rs * rs * dv
}

// TurbulentInertialKernel is collision driven by the different inertial
// response of the two particles to turbulent eddies.
func TurbulentInertialKernel(a, b physics.Particle, env Ambient) float64 {
	if env.Dissipation == 0 {
		return 0
	}
	nu := physics.KinematicViscosity(env.Temperature, env.Pressure)
	rs := a.Radius + b.Radius
	dv := math.Abs(a.FallSpeed - b.FallSpeed)
	return math.Pi * math.Pow(env.Dissipation, 0.75) / (physics.Gravity * math.Pow(nu, 0.25)) * rs * rs * dv
}

// TurbulentShearKernel is collision in the small-scale shear of turbulent
// eddies.
func TurbulentShearKernel(a, b physics.Particle, env Ambient) float64 {
	if env.Dissipation == 0 {
		return 0
	}
	nu := physics.KinematicViscosity(env.Temperature, env.Pressure)
	rs := a.Radius + b.Radius
	return math.Sqrt(8*math.Pi*env.Dissipation/(15*nu)) * rs * rs * rs
}

// collisionEfficiency combines the viscous and potential flow limits of the
// efficiency with which a falling collector sweeps up a smaller particle.
func collisionEfficiency(a, b physics.Particle) float64 {
	large, small := order(a, b)
	if large.FallSpeed == 0 {
		return 0
	}

	st := small.FallSpeed * math.Abs(large.FallSpeed-small.FallSpeed) / (large.Radius * physics.Gravity)

	var ev float64
	if st > 1.214 {
		ev = math.Pow(1+0.75*math.Log(2*st)/(st-1.214), -2)
	}
	ea := st * st / ((st + 0.5) * (st + 0.5))
	re := large.Reynolds

	return (60*ev + ea*re) / (60 + re)
}

// order returns the particles as (larger, smaller). Ties on radius are
// broken on Reynolds number so that the result does not depend on argument
// order.
func order(a, b physics.Particle) (physics.Particle, physics.Particle) {
	if a.Radius > b.Radius || (a.Radius == b.Radius && a.Reynolds >= b.Reynolds) {
		return a, b
	}
	return b, a
}
