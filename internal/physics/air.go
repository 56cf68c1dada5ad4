package physics

import "math"

// AirViscosity returns the dynamic viscosity of air [kg m⁻¹ s⁻¹].
func AirViscosity(T float64) float64 {
	return viscRef * (viscTRef + viscC) / (T + viscC) * math.Pow(T/viscTRef, 1.5)
}

// AirDensity returns the density of dry air [kg m⁻³].
func AirDensity(T, P float64) float64 {
	return P / (RDryAir * T)
}

// KinematicViscosity returns the kinematic viscosity of air [m² s⁻¹].
func KinematicViscosity(T, P float64) float64 {
	return AirViscosity(T) / AirDensity(T, P)
}

// AirThermalSpeed returns the mean thermal speed of an air molecule [m s⁻¹].
func AirThermalSpeed(T float64) float64 {
	m := MolarMassAir / Avogadro
	return math.Sqrt(8 * Boltzmann * T / (math.Pi * m))
}

// AirMeanFreePath returns the mean free path of an air molecule [m].
func AirMeanFreePath(T, P float64) float64 {
	return 2 * KinematicViscosity(T, P) / AirThermalSpeed(T)
}
