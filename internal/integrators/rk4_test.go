package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/coagsim/internal/dynamo"
)

// decay is dN/dt = -k N for every bin, with N(t) = N0 exp(-k t).
type decay struct{ k float64 }

func (d *decay) Derive(x dynamo.State, t float64) dynamo.State {
	dx := make(dynamo.State, len(x))
	for i := range x {
		dx[i] = -d.k * x[i]
	}
	return dx
}

func (d *decay) Dim() int { return 2 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &decay{k: 1e-3}
	integ := NewRK4()

	x := dynamo.State{100, 10}
	dt := 10.0
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	want := math.Exp(-1e-3 * float64(steps) * dt)
	if math.Abs(x[0]/100-want) > 1e-8 {
		t.Errorf("bin 0: got %.10f, expected %.10f", x[0]/100, want)
	}
	if math.Abs(x[1]/10-want) > 1e-8 {
		t.Errorf("bin 1: got %.10f, expected %.10f", x[1]/10, want)
	}
}

func TestEulerFirstOrder(t *testing.T) {
	dyn := &decay{k: 1e-3}
	integ := NewEuler()

	coarse := dynamo.State{1, 1}
	fine := dynamo.State{1, 1}
	for i := 0; i < 10; i++ {
		coarse = integ.Step(dyn, coarse, 0, 100)
	}
	for i := 0; i < 100; i++ {
		fine = integ.Step(dyn, fine, 0, 10)
	}

	exact := math.Exp(-1)
	errCoarse := math.Abs(coarse[0] - exact)
	errFine := math.Abs(fine[0] - exact)
	ratio := errCoarse / errFine
	if ratio < 8 || ratio > 12 {
		t.Errorf("expected ~10x error reduction for 10x smaller dt, got %.2f", ratio)
	}
}

func TestStepLeavesInputUntouched(t *testing.T) {
	dyn := &decay{k: 0.5}
	for name, integ := range map[string]interface {
		Step(dynamo.System, dynamo.State, float64, float64) dynamo.State
	}{"euler": NewEuler(), "rk4": NewRK4()} {
		x := dynamo.State{4, 2}
		next := integ.Step(dyn, x, 0, 0.1)
		if x[0] != 4 || x[1] != 2 {
			t.Errorf("%s: input modified to %v", name, x)
		}
		if !(next[0] < 4) || !(next[1] < 2) {
			t.Errorf("%s: decay step did not decrease %v", name, next)
		}
	}
}

func TestRK4ResizesBetweenGrids(t *testing.T) {
	dyn := &decay{k: 1}
	integ := NewRK4()

	small := integ.Step(dyn, dynamo.State{1, 1}, 0, 0.01)
	large := integ.Step(dyn, dynamo.State{1, 1, 1, 1, 1}, 0, 0.01)
	if len(small) != 2 || len(large) != 5 {
		t.Fatalf("lengths %d and %d", len(small), len(large))
	}
	want := math.Exp(-0.01)
	for i, v := range large {
		if math.Abs(v-want) > 1e-10 {
			t.Errorf("bin %d: got %.12f, expected %.12f", i, v, want)
		}
	}
}
