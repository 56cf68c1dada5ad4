package coag

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Empirical cubic relating coalescence efficiency to the radii of the two
// colliding particles: A0 + A1 E + A2 E² + A3 E³ = ln(r1) + ln(r2/200), radii
// in micrometres, r1 the smaller one.
const (
	effA0 = -2.3979
	effA1 = 3.7632
	effA2 = -3.2474
	effA3 = 1.0521

	effStart     = 0.5
	effTolerance = 1.0e-3
)

// EfficiencyResult is the outcome of one coalescence-efficiency solve.
// When Converged is false, E and Residual are the last iterate.
type EfficiencyResult struct {
	E          float64
	Residual   float64
	Iterations int
	Converged  bool
}

// SolveEfficiency runs the clamped Newton iteration for particles of radii
// ra and rb [m], stopping when successive iterates differ by at most 1e-3 or
// after maxIter steps.
func SolveEfficiency(ra, rb float64, maxIter int) EfficiencyResult {
	r1 := math.Min(ra, rb) * 1.0e6
	r2 := math.Max(ra, rb) * 1.0e6
	rhs := math.Log(r1) + math.Log(r2/200)

	e := effStart
	for it := 1; it <= maxIter; it++ {
		prev := e
		e = clamp01(e - effResidual(e, rhs)/effSlope(e))
		if math.Abs(e-prev) <= effTolerance {
			return EfficiencyResult{E: e, Residual: effResidual(e, rhs), Iterations: it, Converged: true}
		}
	}
	return EfficiencyResult{E: e, Residual: effResidual(e, rhs), Iterations: maxIter}
}

// CoalescenceEfficiency returns E in [0, 1] for particles of radii ra and rb
// [m], using DefaultMaxIterations.
func CoalescenceEfficiency(ra, rb float64) (float64, error) {
	res := SolveEfficiency(ra, rb, DefaultMaxIterations)
	if !res.Converged {
		return res.E, &ConvergenceError{I: -1, J: -1, Iterations: res.Iterations, E: res.E, Residual: res.Residual}
	}
	return res.E, nil
}

func effResidual(e, rhs float64) float64 {
	return effA0 + e*(effA1+e*(effA2+e*effA3)) - rhs
}

func effSlope(e float64) float64 {
	return effA1 + e*(2*effA2+e*3*effA3)
}

func clamp01(x float64) float64 {
	return math.Max(math.Min(x, 1), 0)
}

// buildBeta weights every kernel entry by the coalescence efficiency of the
// pair (radiiA[i], radiiB[j]).
func buildBeta(kernel *mat.Dense, radiiA, radiiB []float64, maxIter int) (*mat.Dense, error) {
	rows, cols := kernel.Dims()
	beta := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			res := SolveEfficiency(radiiA[i], radiiB[j], maxIter)
			if !res.Converged {
				return nil, &ConvergenceError{I: i, J: j, Iterations: res.Iterations, E: res.E, Residual: res.Residual}
			}
			beta.Set(i, j, res.E*kernel.At(i, j))
		}
	}
	return beta, nil
}
