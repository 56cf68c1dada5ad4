package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/coagsim/internal/dynamo"
)

// Simulator drives a dynamo.System forward in time with one integrator.
type Simulator struct {
	dyn        dynamo.System
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
	log        logrus.FieldLogger
}

func New(dyn dynamo.System, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
		log:        logrus.StandardLogger(),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) SetLogger(l logrus.FieldLogger) {
	if l != nil {
		s.log = l
	}
}

// Run integrates from x0 over cfg.Duration. Step failures are collected in
// Result.Errors; an invalid state ends the run early. The returned error is
// reserved for bad input and context cancellation.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	steps := int(math.Ceil(cfg.Duration/cfg.Dt - 1e-9))
	result := &dynamo.Result{
		States:  make([]dynamo.State, 0, steps+1),
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	initial, conserved := s.invariant(x)

	s.log.WithFields(logrus.Fields{
		"bins":     len(x),
		"dt":       cfg.Dt,
		"duration": cfg.Duration,
		"adaptive": cfg.Adaptive,
	}).Debug("starting run")

	for i := 0; t < cfg.Duration-1e-9*cfg.Duration; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		for _, m := range s.metrics {
			m.Observe(x, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}

		dt = math.Min(dt, cfg.Duration-t)

		var newX dynamo.State
		var next float64
		var stepErr error

		if cfg.Adaptive {
			newX, dt, next, stepErr = s.adaptiveStep(x, t, dt, cfg)
		} else {
			newX = s.integrator.Step(s.dyn, x, t, dt)
			next = cfg.Dt
		}

		if stepErr != nil {
			result.Errors = append(result.Errors, &dynamo.SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: stepErr})
			s.log.WithError(stepErr).WithField("t", t).Warn("adaptive step failed")
			break
		}

		if cfg.ValidateState && !newX.IsValid() {
			result.Errors = append(result.Errors, &dynamo.SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: dynamo.ErrInvalidState})
			s.log.WithField("t", t).Warn("invalid state, stopping run")
			break
		}

		if newX.HasNegative() {
			if !cfg.ClipNegative {
				result.Errors = append(result.Errors, &dynamo.SimulationError{Step: i, Time: t, State: newX.Clone(), Wrapped: dynamo.ErrNegativeState})
				break
			}
			newX = newX.ClipNegative()
		}

		x = newX
		t += dt
		dt = next
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, t)
	}

	if conserved {
		final, _ := s.invariant(x)
		if initial != 0 {
			result.InvariantDrift = math.Abs(final-initial) / math.Abs(initial)
		}
	}

	for _, m := range s.metrics {
		m.Observe(x, t)
		result.Metrics[m.Name()] = m.Value()
	}

	s.log.WithFields(logrus.Fields{
		"steps": result.StepsTaken,
		"drift": result.InvariantDrift,
	}).Debug("run finished")

	return result, nil
}

func (s *Simulator) validate(x0 dynamo.State, cfg dynamo.Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrParameterBounds, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", dynamo.ErrParameterBounds, cfg.Duration)
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be positive for adaptive stepping", dynamo.ErrParameterBounds)
	}
	if len(x0) != s.dyn.Dim() {
		return fmt.Errorf("%w: state has %d entries, system %d", dynamo.ErrDimensionMismatch, len(x0), s.dyn.Dim())
	}
	return nil
}

func (s *Simulator) invariant(x dynamo.State) (float64, bool) {
	if c, ok := s.dyn.(dynamo.Conserved); ok {
		return c.Invariant(x), true
	}
	return 0, false
}

// adaptiveStep returns the new state, the step actually taken and the step
// to try next.
func (s *Simulator) adaptiveStep(x dynamo.State, t, dt float64, cfg dynamo.Config) (dynamo.State, float64, float64, error) {
	if adaptive, ok := s.integrator.(dynamo.AdaptiveIntegrator); ok {
		for {
			newX, next, err := adaptive.StepAdaptive(s.dyn, x, t, dt, cfg.Tolerance)
			switch {
			case errors.Is(err, dynamo.ErrStepRejected):
				if next < cfg.MinDt {
					return nil, dt, next, dynamo.ErrStepTooSmall
				}
				dt = next
				continue
			case err != nil:
				return nil, dt, next, err
			}
			return newX, dt, clampDt(next, cfg), nil
		}
	}

	x1 := s.integrator.Step(s.dyn, x, t, dt)
	xHalf := s.integrator.Step(s.dyn, x, t, dt/2)
	x2 := s.integrator.Step(s.dyn, xHalf, t+dt/2, dt/2)

	scale := x2.Norm()
	if scale == 0 {
		scale = 1
	}
	errEst := x1.Sub(x2).Norm() / scale

	if errEst > cfg.Tolerance {
		if dt/2 < cfg.MinDt {
			return nil, dt, dt, dynamo.ErrStepTooSmall
		}
		return s.adaptiveStep(x, t, dt/2, cfg)
	}

	next := dt
	if errEst < cfg.Tolerance/10 {
		next = dt * 2
	}
	return x2, dt, clampDt(next, cfg), nil
}

func clampDt(dt float64, cfg dynamo.Config) float64 {
	if cfg.MaxDt > 0 && dt > cfg.MaxDt {
		return cfg.MaxDt
	}
	return dt
}

// RunWithCallback steps without recording history. callback sees every
// state including the first and stops the run by returning false.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 dynamo.State, cfg dynamo.Config, callback func(dynamo.State, float64) bool) error {
	if err := s.validate(x0, cfg); err != nil {
		return err
	}

	x := x0.Clone()
	t := 0.0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(x, t) || t >= cfg.Duration-1e-9*cfg.Duration {
			return nil
		}

		dt := math.Min(cfg.Dt, cfg.Duration-t)
		x = s.integrator.Step(s.dyn, x, t, dt)
		t += dt

		if cfg.ValidateState && !x.IsValid() {
			return &dynamo.SimulationError{Time: t, State: x, Wrapped: dynamo.ErrInvalidState}
		}
		if cfg.ClipNegative {
			x = x.ClipNegative()
		}
	}
}
