package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// State holds one value per size bin.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// HasNegative reports whether any entry is below zero.
func (s State) HasNegative() bool {
	for _, v := range s {
		if v < 0 {
			return true
		}
	}
	return false
}

// ClipNegative zeroes negative entries in place and returns s.
func (s State) ClipNegative() State {
	for i, v := range s {
		if v < 0 {
			s[i] = 0
		}
	}
	return s
}

func (s State) Sum() float64 {
	return floats.Sum(s)
}

func (s State) Norm() float64 {
	return floats.Norm(s, 2)
}

func (s State) Add(other State) State {
	result := s.Clone()
	for i := range result {
		if i < len(other) {
			result[i] += other[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := s.Clone()
	floats.Scale(factor, result)
	return result
}

func (s State) Sub(other State) State {
	result := s.Clone()
	for i := range result {
		if i < len(other) {
			result[i] -= other[i]
		}
	}
	return result
}

// System is a set of rate equations dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	Dim() int
}

// Conserved is implemented by systems with a quantity that must not drift,
// e.g. total particle volume under coagulation.
type Conserved interface {
	Invariant(x State) float64
}

// SemiImplicitSystem can advance itself with a positivity-preserving step.
type SemiImplicitSystem interface {
	System
	SemiImplicitStep(x State, dt float64) State
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, t, dt, tol float64) (State, float64, error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Config struct {
	Dt            float64
	Duration      float64
	Tolerance     float64
	MaxDt         float64
	MinDt         float64
	Adaptive      bool
	ValidateState bool
	ClipNegative  bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0,
		Duration:      600.0,
		Tolerance:     1e-6,
		MaxDt:         60.0,
		MinDt:         1e-6,
		Adaptive:      false,
		ValidateState: true,
		ClipNegative:  true,
	}
}

type Result struct {
	States         []State
	Times          []float64
	Metrics        map[string]float64
	InvariantDrift float64
	StepsTaken     int
	Errors         []error
}

// Final returns the last recorded state, or nil for an empty result.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}
