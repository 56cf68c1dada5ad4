package coag

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks malformed inputs: empty or mismatched bin
	// arrays, non-positive temperature, pressure or density.
	ErrInvalidArgument = errors.New("coag: invalid argument")

	// ErrUnknownPhase is returned by strict constructors for phases other
	// than liquid, ice and soot.
	ErrUnknownPhase = errors.New("coag: unknown phase")

	// ErrNotConverged is wrapped by ConvergenceError.
	ErrNotConverged = errors.New("coag: coalescence efficiency did not converge")

	// ErrNotPopulated is returned when a kernel is queried that was never built.
	ErrNotPopulated = errors.New("coag: kernel not populated")
)

// ConvergenceError reports a coalescence-efficiency solve that hit the
// iteration cap.
type ConvergenceError struct {
	I, J       int
	Iterations int
	E          float64
	Residual   float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("coag: coalescence efficiency for bins (%d,%d) did not converge after %d iterations (E=%.4g, residual=%.3g)",
		e.I, e.J, e.Iterations, e.E, e.Residual)
}

func (e *ConvergenceError) Unwrap() error {
	return ErrNotConverged
}
