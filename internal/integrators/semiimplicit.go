package integrators

import "github.com/san-kum/coagsim/internal/dynamo"

// SemiImplicit delegates to systems that know how to take their own
// positivity-preserving step and falls back to explicit Euler otherwise.
type SemiImplicit struct {
	fallback Euler
}

func NewSemiImplicit() *SemiImplicit {
	return &SemiImplicit{}
}

func (s *SemiImplicit) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	if si, ok := dyn.(dynamo.SemiImplicitSystem); ok {
		return si.SemiImplicitStep(x, dt)
	}
	return s.fallback.Step(dyn, x, t, dt)
}
