package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/coagsim/internal/dynamo"
)

// Euler is the explicit first-order scheme. It holds no state.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

// Step returns x + dt*f(x, t) in a fresh slice; x is left untouched.
func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	next := make(dynamo.State, len(x))
	floats.AddScaledTo(next, x, dt, dyn.Derive(x, t))
	return next
}
