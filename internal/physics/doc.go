// Package physics provides the air and single-particle properties that the
// coagulation kernels are built from.
//
// All functions are pure and work in SI units: temperature T [K], pressure
// P [Pa], particle radius r [m] and particle density rho [kg m⁻³].
//
//   - [AirViscosity], [AirDensity], [KinematicViscosity]: background gas
//   - [AirMeanFreePath], [SlipCorrection]: free-molecular corrections
//   - [Diffusivity], [ThermalSpeed], [TerminalVelocity]: particle transport
//   - [Properties]: everything above for one particle in a single call
//
// Formulas follow Jacobson, Fundamentals of Atmospheric Modeling (2nd ed.),
// chapters 13 and 15.
//
// # Precomputation
//
// Kernel construction is O(N²) in the number of bins, so callers should
// evaluate [Properties] once per bin and reuse the returned [Particle]:
//
//	props := make([]physics.Particle, len(radii))
//	for i, r := range radii {
//	    props[i] = physics.Properties(r, rho, T, P)
//	}
package physics
