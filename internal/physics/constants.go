package physics

const (
	// Boltzmann constant [J K⁻¹]
	Boltzmann = 1.380649e-23
	// Avogadro constant [mol⁻¹]
	Avogadro = 6.02214076e23
	// Specific gas constant of dry air [J kg⁻¹ K⁻¹]
	RDryAir = 287.058
	// Molar mass of dry air [kg mol⁻¹]
	MolarMassAir = 28.9647e-3
	// Standard gravity [m s⁻²]
	Gravity = 9.80665

	// Sutherland coefficients for air viscosity
	viscRef  = 1.8325e-5 // [kg m⁻¹ s⁻¹] at viscTRef
	viscTRef = 296.16    // [K]
	viscC    = 120.0     // [K]

	// Cunningham slip correction coefficients
	slipA = 1.249
	slipB = 0.42
	slipC = 0.87
)
