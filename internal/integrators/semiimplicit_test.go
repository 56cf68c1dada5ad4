package integrators

import (
	"testing"

	"github.com/san-kum/coagsim/internal/dynamo"
)

type selfStepping struct {
	decay
	calls int
}

func (s *selfStepping) SemiImplicitStep(x dynamo.State, dt float64) dynamo.State {
	s.calls++
	out := make(dynamo.State, len(x))
	for i := range x {
		out[i] = x[i] / (1 + dt*s.k)
	}
	return out
}

func TestSemiImplicit_Delegates(t *testing.T) {
	dyn := &selfStepping{decay: decay{k: 1}}
	integ := NewSemiImplicit()

	x := integ.Step(dyn, dynamo.State{1, 2}, 0, 1000)
	if dyn.calls != 1 {
		t.Fatalf("expected one delegated step, got %d", dyn.calls)
	}
	if x.HasNegative() {
		t.Errorf("stiff step went negative: %v", x)
	}
}

func TestSemiImplicit_FallsBackToEuler(t *testing.T) {
	dyn := &decay{k: 0.1}
	x := NewSemiImplicit().Step(dyn, dynamo.State{1, 1}, 0, 1)
	want := NewEuler().Step(dyn, dynamo.State{1, 1}, 0, 1)
	if x[0] != want[0] || x[1] != want[1] {
		t.Errorf("got %v, expected Euler %v", x, want)
	}
}
