package physics

import "math"

// Particle caches the properties of a spherical particle in a given ambient
// state. Build it with Properties.
type Particle struct {
	Radius       float64 // [m]
	Density      float64 // [kg m⁻³]
	Diffusivity  float64 // [m² s⁻¹]
	ThermalSpeed float64 // [m s⁻¹]
	Delta        float64 // mean distance from the sphere centre at which a diffusing particle leaves it [m]
	FallSpeed    float64 // [m s⁻¹]
	Reynolds     float64
	Schmidt      float64
}

// Properties evaluates all per-particle quantities at once.
func Properties(r, rho, T, P float64) Particle {
	d := Diffusivity(r, T, P)
	vp := ThermalSpeed(r, rho, T)
	lp := 8 * d / (math.Pi * vp)
	vf := TerminalVelocity(r, rho, T, P)
	nu := KinematicViscosity(T, P)

	return Particle{
		Radius:       r,
		Density:      rho,
		Diffusivity:  d,
		ThermalSpeed: vp,
		Delta:        delta(r, lp),
		FallSpeed:    vf,
		Reynolds:     2 * r * vf / nu,
		Schmidt:      nu / d,
	}
}

// Knudsen returns the Knudsen number of a particle in air.
func Knudsen(r, T, P float64) float64 {
	return AirMeanFreePath(T, P) / r
}

// SlipCorrection returns the Cunningham slip-flow correction.
func SlipCorrection(r, T, P float64) float64 {
	kn := Knudsen(r, T, P)
	return 1 + kn*(slipA+slipB*math.Exp(-slipC/kn))
}

// Diffusivity returns the Brownian diffusion coefficient [m² s⁻¹].
func Diffusivity(r, T, P float64) float64 {
	return Boltzmann * T * SlipCorrection(r, T, P) / (6 * math.Pi * r * AirViscosity(T))
}

// Mass returns the mass of a sphere [kg].
func Mass(r, rho float64) float64 {
	return 4.0 / 3.0 * math.Pi * r * r * r * rho
}

// Volume returns the volume of a sphere [m³].
func Volume(r float64) float64 {
	return 4.0 / 3.0 * math.Pi * r * r * r
}

// ThermalSpeed returns the mean thermal speed of a particle [m s⁻¹].
func ThermalSpeed(r, rho, T float64) float64 {
	return math.Sqrt(8 * Boltzmann * T / (math.Pi * Mass(r, rho)))
}

// MeanFreePath returns the mean free path of a particle [m].
func MeanFreePath(r, rho, T, P float64) float64 {
	return 8 * Diffusivity(r, T, P) / (math.Pi * ThermalSpeed(r, rho, T))
}

// TerminalVelocity returns the Stokes settling speed with slip correction
// [m s⁻¹]. Particles lighter than air do not settle.
func TerminalVelocity(r, rho, T, P float64) float64 {
	drho := rho - AirDensity(T, P)
	if drho <= 0 {
		return 0
	}
	return 2 * r * r * drho * Gravity * SlipCorrection(r, T, P) / (9 * AirViscosity(T))
}

// Reynolds returns the particle Reynolds number at terminal velocity.
func Reynolds(r, rho, T, P float64) float64 {
	return 2 * r * TerminalVelocity(r, rho, T, P) / KinematicViscosity(T, P)
}

// Schmidt returns the particle Schmidt number.
func Schmidt(r, T, P float64) float64 {
	return KinematicViscosity(T, P) / Diffusivity(r, T, P)
}

// delta is Fuchs' transition-regime length. The closed form cancels
// catastrophically once the particle mean free path is small against the
// diameter, so the leading terms of its expansion are used there.
func delta(r, lp float64) float64 {
	x := lp / (2 * r)
	if x < 1e-4 {
		return r * x * (1 + 2*x/3)
	}
	d := 2*r + lp
	return (d*d*d-math.Pow(4*r*r+lp*lp, 1.5))/(6*r*lp) - 2*r
}
