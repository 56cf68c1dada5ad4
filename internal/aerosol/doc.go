// Package aerosol describes binned particle populations: the material phase
// of a population, its size-bin grid and the number distribution over it.
package aerosol
