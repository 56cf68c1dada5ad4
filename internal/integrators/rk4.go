package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/coagsim/internal/dynamo"
)

// RK4 is the classical fourth-order Runge-Kutta scheme. It keeps scratch
// buffers between steps and must not be shared between goroutines.
type RK4 struct {
	k       [4]dynamo.State
	scratch dynamo.State
}

// NewRK4 returns an integrator whose buffers are sized on the first Step.
func NewRK4() *RK4 {
	return &RK4{}
}

// resize reallocates the stage buffers when the bin count changes.
func (r *RK4) resize(n int) {
	if len(r.scratch) == n {
		return
	}
	for s := range r.k {
		r.k[s] = make(dynamo.State, n)
	}
	r.scratch = make(dynamo.State, n)
}

// stage evaluates f at x + h*prev and stores it in dst.
func (r *RK4) stage(dst dynamo.State, dyn dynamo.System, x, prev dynamo.State, t, h float64) {
	floats.AddScaledTo(r.scratch, x, h, prev)
	copy(dst, dyn.Derive(r.scratch, t+h))
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	r.resize(len(x))
	k1, k2, k3, k4 := r.k[0], r.k[1], r.k[2], r.k[3]

	copy(k1, dyn.Derive(x, t))
	r.stage(k2, dyn, x, k1, t, dt/2)
	r.stage(k3, dyn, x, k2, t, dt/2)
	r.stage(k4, dyn, x, k3, t, dt)

	// x + dt/6 (k1 + 2k2 + 2k3 + k4)
	next := x.Clone()
	floats.AddScaled(next, dt/6, k1)
	floats.AddScaled(next, dt/3, k2)
	floats.AddScaled(next, dt/3, k3)
	floats.AddScaled(next, dt/6, k4)
	return next
}
