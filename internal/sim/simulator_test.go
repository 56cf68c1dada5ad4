package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/coagsim/internal/dynamo"
	"github.com/san-kum/coagsim/internal/integrators"
)

// pairLoss moves number from bin 0 into bin 1 at half the rate, keeping
// x0 + 2 x1 constant, the way two small particles make one large one.
type pairLoss struct{ k float64 }

func (p *pairLoss) Derive(x dynamo.State, t float64) dynamo.State {
	r := p.k * x[0] * x[0]
	return dynamo.State{-r, 0.5 * r}
}

func (p *pairLoss) Dim() int { return 2 }

func (p *pairLoss) Invariant(x dynamo.State) float64 { return x[0] + 2*x[1] }

type overshoot struct{}

func (o *overshoot) Derive(x dynamo.State, t float64) dynamo.State { return dynamo.State{-10 * x[0]} }
func (o *overshoot) Dim() int                                      { return 1 }

type blowUp struct{}

func (b *blowUp) Derive(x dynamo.State, t float64) dynamo.State { return dynamo.State{math.NaN()} }
func (b *blowUp) Dim() int                                      { return 1 }

func newQuiet(dyn dynamo.System, integ dynamo.Integrator) *Simulator {
	s := New(dyn, integ)
	l, _ := logtest.NewNullLogger()
	s.SetLogger(l)
	return s
}

func TestSimulatorRun(t *testing.T) {
	sim := newQuiet(&pairLoss{k: 1e-3}, integrators.NewRK4())

	cfg := dynamo.Config{Dt: 0.1, Duration: 1.0}
	result, err := sim.Run(context.Background(), dynamo.State{100, 0}, cfg)
	require.NoError(t, err)

	assert.Len(t, result.States, 11)
	assert.Len(t, result.Times, 11)
	assert.Equal(t, 10, result.StepsTaken)
	assert.InDelta(t, 1.0, result.Times[10], 1e-12)

	want := 100 / (1 + 1e-3*100*1.0)
	assert.InDelta(t, want, result.Final()[0], 1e-6)
	assert.Less(t, result.InvariantDrift, 1e-10)
}

func TestSimulatorPartialLastStep(t *testing.T) {
	sim := newQuiet(&pairLoss{k: 1e-3}, integrators.NewEuler())

	result, err := sim.Run(context.Background(), dynamo.State{1, 0}, dynamo.Config{Dt: 0.4, Duration: 1.0})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.4, 0.8, 1.0}, roundTimes(result.Times))
}

func roundTimes(ts []float64) []float64 {
	out := make([]float64, len(ts))
	for i, v := range ts {
		out[i] = math.Round(v*1e9) / 1e9
	}
	return out
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := newQuiet(&pairLoss{k: 1}, integrators.NewEuler())

	tests := []struct {
		name string
		x0   dynamo.State
		cfg  dynamo.Config
		want error
	}{
		{"zero dt", dynamo.State{1, 0}, dynamo.Config{Dt: 0, Duration: 1.0}, dynamo.ErrParameterBounds},
		{"negative dt", dynamo.State{1, 0}, dynamo.Config{Dt: -0.1, Duration: 1.0}, dynamo.ErrParameterBounds},
		{"zero duration", dynamo.State{1, 0}, dynamo.Config{Dt: 0.1, Duration: 0}, dynamo.ErrParameterBounds},
		{"adaptive without tolerance", dynamo.State{1, 0}, dynamo.Config{Dt: 0.1, Duration: 1, Adaptive: true}, dynamo.ErrParameterBounds},
		{"wrong state size", dynamo.State{1}, dynamo.Config{Dt: 0.1, Duration: 1.0}, dynamo.ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.x0, tt.cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

type countMetric struct {
	count int
	sum   float64
}

func (c *countMetric) Name() string { return "count" }
func (c *countMetric) Observe(x dynamo.State, t float64) {
	c.count++
	c.sum += x[0]
}
func (c *countMetric) Value() float64 { return float64(c.count) }
func (c *countMetric) Reset() {
	c.count = 0
	c.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := newQuiet(&pairLoss{k: 1e-3}, integrators.NewEuler())

	metric := &countMetric{}
	sim.AddMetric(metric)

	result, err := sim.Run(context.Background(), dynamo.State{1, 0}, dynamo.Config{Dt: 0.1, Duration: 1.0})
	require.NoError(t, err)

	// once before every step and once on the final state
	assert.Equal(t, 11.0, result.Metrics["count"])
	assert.Equal(t, 11, metric.count)
}

func TestSimulatorClipNegative(t *testing.T) {
	sim := newQuiet(&overshoot{}, integrators.NewEuler())

	result, err := sim.Run(context.Background(), dynamo.State{1}, dynamo.Config{Dt: 1, Duration: 3, ClipNegative: true})
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 0.0, result.Final()[0])

	result, err = sim.Run(context.Background(), dynamo.State{1}, dynamo.Config{Dt: 1, Duration: 3})
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[0], dynamo.ErrNegativeState)
}

func TestSimulatorInvalidState(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	sim := New(&blowUp{}, integrators.NewEuler())
	sim.SetLogger(logger)

	result, err := sim.Run(context.Background(), dynamo.State{1}, dynamo.Config{Dt: 1, Duration: 5, ValidateState: true})
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)

	var simErr *dynamo.SimulationError
	require.True(t, errors.As(result.Errors[0], &simErr))
	assert.Equal(t, 0, simErr.Step)
	assert.ErrorIs(t, simErr, dynamo.ErrInvalidState)
	assert.Equal(t, 0, result.StepsTaken)
	assert.NotEmpty(t, hook.Entries)
}

func TestSimulatorAdaptive(t *testing.T) {
	sim := newQuiet(&pairLoss{k: 1e-2}, integrators.NewRK45())

	cfg := dynamo.DefaultConfig()
	cfg.Adaptive = true
	cfg.Dt = 0.01
	cfg.Duration = 100
	cfg.Tolerance = 1e-8

	result, err := sim.Run(context.Background(), dynamo.State{100, 0}, cfg)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.InDelta(t, 100, result.Times[len(result.Times)-1], 1e-9)
	assert.Less(t, result.StepsTaken, 10000, "step size should grow")

	want := 100 / (1 + 1e-2*100*100)
	assert.InEpsilon(t, want, result.Final()[0], 1e-5)
}

func TestSimulatorAdaptive_StepDoubling(t *testing.T) {
	sim := newQuiet(&pairLoss{k: 1e-2}, integrators.NewRK4())

	cfg := dynamo.DefaultConfig()
	cfg.Adaptive = true
	cfg.Dt = 0.01
	cfg.Duration = 10
	cfg.Tolerance = 1e-6

	result, err := sim.Run(context.Background(), dynamo.State{100, 0}, cfg)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.InDelta(t, 10, result.Times[len(result.Times)-1], 1e-9)
}

func TestSimulatorCancel(t *testing.T) {
	sim := newQuiet(&pairLoss{k: 1e-3}, integrators.NewEuler())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Run(ctx, dynamo.State{1, 0}, dynamo.Config{Dt: 0.1, Duration: 1})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Len(t, result.States, 1)
}

func TestRunWithCallback(t *testing.T) {
	sim := newQuiet(&pairLoss{k: 1e-3}, integrators.NewEuler())

	var seen []float64
	err := sim.RunWithCallback(context.Background(), dynamo.State{1, 0}, dynamo.Config{Dt: 0.25, Duration: 1},
		func(x dynamo.State, t float64) bool {
			seen = append(seen, t)
			return true
		})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, seen)

	calls := 0
	err = sim.RunWithCallback(context.Background(), dynamo.State{1, 0}, dynamo.Config{Dt: 0.25, Duration: 1},
		func(x dynamo.State, t float64) bool {
			calls++
			return calls < 2
		})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestSweep(t *testing.T) {
	rates := []float64{1e-4, 1e-3, 1e-2}
	jobs := make([]Job, len(rates))
	for i, k := range rates {
		jobs[i] = Job{
			Name:   "k",
			Sim:    newQuiet(&pairLoss{k: k}, integrators.NewRK4()),
			X0:     dynamo.State{100, 0},
			Config: dynamo.Config{Dt: 0.5, Duration: 10},
		}
	}

	results, err := Sweep(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, k := range rates {
		want := 100 / (1 + k*100*10)
		assert.InEpsilon(t, want, results[i].Final()[0], 1e-4, "rate %g", k)
	}

	jobs[1].Config.Dt = 0
	_, err = Sweep(context.Background(), jobs)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
}

type countObserver struct {
	times []float64
}

func (c *countObserver) OnStep(x dynamo.State, t float64) { c.times = append(c.times, t) }

func TestSimulatorObservers(t *testing.T) {
	sim := newQuiet(&pairLoss{k: 1e-3}, integrators.NewRK4())
	obs := &countObserver{}
	sim.AddObserver(obs)

	result, err := sim.Run(context.Background(), dynamo.State{100, 0}, dynamo.Config{Dt: 0.1, Duration: 1.0})
	require.NoError(t, err)

	// once before every step, never on the final state
	assert.Len(t, obs.times, result.StepsTaken)
	assert.Equal(t, 10, len(obs.times))
	assert.Zero(t, obs.times[0])
	assert.InDelta(t, 0.9, obs.times[9], 1e-9)
}

func TestProgressLogger(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	sim := newQuiet(&pairLoss{k: 1e-3}, integrators.NewEuler())
	progress := NewProgressLogger(logger, 4)
	sim.AddObserver(progress)

	_, err := sim.Run(context.Background(), dynamo.State{100, 0}, dynamo.Config{Dt: 0.1, Duration: 1.0})
	require.NoError(t, err)

	assert.Equal(t, 10, progress.Steps())
	require.Len(t, hook.AllEntries(), 2, "steps 4 and 8")
	assert.Equal(t, 8, hook.LastEntry().Data["step"])
	assert.Equal(t, "run progress", hook.LastEntry().Message)
}
