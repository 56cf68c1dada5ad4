// Package coag builds the coagulation kernel of a binned aerosol population
// and the quantities a coagulation solver needs from it.
//
// A [Coagulation] is constructed once per phase, bin grid and ambient state:
//
//   - the total kernel K[i][j] [cm³ s⁻¹], the sum of the physical process
//     kernels that apply to the phase (see [Process]);
//   - beta[i][j] = E(i,j)·K[i][j], where E is the coalescence efficiency
//     solved by a bounded Newton iteration;
//   - the redistribution tensor f[i][j][k], which splits the volume of a
//     merged (i,j) particle between the two bins bracketing it.
//
// # Redistribution convention
//
// For a pair whose merged volume v falls between bins index and index+1,
// only f[i][j][index+1] is stored. The fraction kept by bin index is the
// implicit complement 1 - f[i][j][index+1]. [Coagulation.Receiver] returns
// index and [Coagulation.Fraction] resolves the complement; [System] is the
// consumer that relies on it. When v exceeds the largest bin,
// f[i][j][N-1] = 1 and nothing else is set.
//
// A built Coagulation is immutable and every accessor returns a copy, so a
// single value may be shared by concurrent solvers.
package coag
