package experiment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/coagsim/internal/config"
	"github.com/san-kum/coagsim/internal/dynamo"
	"github.com/san-kum/coagsim/internal/sim"
)

// KernelSummary condenses one kernel build of a sweep.
type KernelSummary struct {
	Temperature float64
	Pressure    float64
	MaxKernel   float64 // [cm³ s⁻¹]
	MeanKernel  float64
	MaxBeta     float64
	MeanBeta    float64
}

// SweepTemperature builds the kernel of cfg at every temperature in temps,
// in parallel, and summarises each.
func SweepTemperature(cfg *config.Config, temps []float64, log logrus.FieldLogger) ([]KernelSummary, error) {
	out := make([]KernelSummary, len(temps))
	errs := make([]error, len(temps))

	dynamo.ParallelFor(len(temps), 1, func(start, end int) {
		for i := start; i < end; i++ {
			c := cfg.Clone()
			c.Ambient.Temperature = temps[i]

			e := New(c, log)
			if err := e.BuildKernel(); err != nil {
				errs[i] = fmt.Errorf("T=%g K: %w", temps[i], err)
				continue
			}
			out[i] = summarise(e, c)
		}
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func summarise(e *Experiment, c *config.Config) KernelSummary {
	s := KernelSummary{Temperature: c.Ambient.Temperature, Pressure: c.Ambient.Pressure}
	if !e.Kernel().Populated() {
		return s
	}
	k := e.Kernel().Kernel().RawMatrix().Data
	b := e.Kernel().Beta().RawMatrix().Data
	s.MaxKernel = floats.Max(k)
	s.MeanKernel = floats.Sum(k) / float64(len(k))
	s.MaxBeta = floats.Max(b)
	s.MeanBeta = floats.Sum(b) / float64(len(b))
	return s
}

// KernelStats summarises any kernel matrix.
func KernelStats(m *mat.Dense) (lo, hi, mean float64) {
	if m.IsEmpty() {
		return 0, 0, 0
	}
	data := mat.DenseCopyOf(m).RawMatrix().Data
	return floats.Min(data), floats.Max(data), floats.Sum(data) / float64(len(data))
}

// RunAll sets up one experiment per config and evolves them concurrently.
func RunAll(ctx context.Context, cfgs []*config.Config, reg *Registry, log logrus.FieldLogger) ([]*Experiment, []*dynamo.Result, error) {
	exps := make([]*Experiment, len(cfgs))
	jobs := make([]sim.Job, len(cfgs))
	for i, c := range cfgs {
		e := New(c, log)
		if err := e.Setup(reg); err != nil {
			return nil, nil, fmt.Errorf("config %d: %w", i, err)
		}
		exps[i] = e
		jobs[i] = sim.Job{
			Name:   fmt.Sprintf("%s@%gK", c.Phase, c.Ambient.Temperature),
			Sim:    e.GetSimulator(),
			X0:     e.InitialState(),
			Config: e.SimConfig(),
		}
	}

	results, err := sim.Sweep(ctx, jobs)
	if err != nil {
		return nil, nil, err
	}
	return exps, results, nil
}
