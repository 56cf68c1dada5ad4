package experiment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/coagsim/internal/aerosol"
	"github.com/san-kum/coagsim/internal/coag"
	"github.com/san-kum/coagsim/internal/config"
	"github.com/san-kum/coagsim/internal/dynamo"
	"github.com/san-kum/coagsim/internal/sim"
)

// progressEvery is the step interval of debug progress lines.
const progressEvery = 10

// Experiment assembles one coagulation run from a config: bins, initial
// distribution, kernel, rate equations and simulator.
type Experiment struct {
	cfg *config.Config
	log logrus.FieldLogger

	bins      aerosol.Bins
	initial   *aerosol.Distribution
	kernel    *coag.Coagulation
	scavenger *coag.Coagulation
	system    *coag.System
	simulator *sim.Simulator
}

func New(cfg *config.Config, log logrus.FieldLogger) *Experiment {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Experiment{cfg: cfg, log: log}
}

// BuildKernel builds only the bins and the self-coagulation kernel. An
// unknown phase yields an unpopulated kernel unless the config is strict.
func (e *Experiment) BuildKernel() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	bins, err := aerosol.NewBins(e.cfg.Bins.RMin, e.cfg.Bins.RMax, e.cfg.Bins.Count)
	if err != nil {
		return err
	}
	e.bins = bins

	e.kernel, err = coag.NewSelf(e.cfg.Phase, bins, e.cfg.Density,
		e.cfg.Ambient.Temperature, e.cfg.Ambient.Pressure, e.kernelOptions()...)
	return err
}

func (e *Experiment) kernelOptions() []coag.Option {
	opts := []coag.Option{
		coag.WithLogger(e.log),
		coag.WithMaxIterations(e.cfg.Run.MaxIterations),
	}
	if e.cfg.Ambient.Dissipation != nil {
		opts = append(opts, coag.WithDissipationRate(*e.cfg.Ambient.Dissipation))
	}
	if e.cfg.Run.StrictPhase {
		opts = append(opts, coag.WithStrictPhase())
	}
	return opts
}

// Setup builds everything Run needs.
func (e *Experiment) Setup(reg *Registry) error {
	if err := e.BuildKernel(); err != nil {
		return err
	}
	if !e.kernel.Populated() {
		return fmt.Errorf("phase %s: %w", e.cfg.Phase, coag.ErrNotPopulated)
	}

	var err error
	e.initial, err = aerosol.NewLognormal(e.bins, e.cfg.Distribution.Number, e.cfg.Distribution.Radius, e.cfg.Distribution.Sigma)
	if err != nil {
		return err
	}

	var sysOpts []coag.SystemOption
	if e.cfg.Run.IgnoreEfficiency {
		sysOpts = append(sysOpts, coag.WithoutEfficiency())
	}
	if s := e.cfg.Scavenger; s != nil {
		e.scavenger, err = coag.NewCross(e.cfg.Phase, e.bins.Centers, e.cfg.Density, s.Radius, s.Density,
			e.cfg.Ambient.Temperature, e.cfg.Ambient.Pressure, e.kernelOptions()...)
		if err != nil {
			return fmt.Errorf("scavenger kernel: %w", err)
		}
		sysOpts = append(sysOpts, coag.WithScavenger(e.scavenger, s.Number))
	}

	e.system, err = coag.NewSystem(e.kernel, e.bins, sysOpts...)
	if err != nil {
		return err
	}

	integ, err := reg.GetIntegrator(e.cfg.Run.Integrator)
	if err != nil {
		return err
	}

	e.simulator = sim.New(e.system, integ)
	e.simulator.SetLogger(e.log)
	for _, m := range reg.DefaultMetrics(e.system, e.bins) {
		e.simulator.AddMetric(m)
	}
	e.simulator.AddObserver(sim.NewProgressLogger(e.log, progressEvery))

	e.log.WithFields(logrus.Fields{
		"phase":      e.cfg.Phase.String(),
		"bins":       e.bins.Len(),
		"integrator": e.cfg.Run.Integrator,
		"number":     e.initial.Number(),
	}).Info("experiment ready")

	return nil
}

func (e *Experiment) SimConfig() dynamo.Config {
	c := dynamo.DefaultConfig()
	c.Dt = e.cfg.Run.Dt
	c.Duration = e.cfg.Run.Duration
	c.Adaptive = e.cfg.Run.Adaptive
	if e.cfg.Run.Tolerance > 0 {
		c.Tolerance = e.cfg.Run.Tolerance
	}
	if c.MaxDt < c.Dt {
		c.MaxDt = c.Dt
	}
	return c
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.InitialState(), e.SimConfig())
}

// InitialState returns a copy of the initial concentrations.
func (e *Experiment) InitialState() dynamo.State {
	if e.initial == nil {
		return nil
	}
	return dynamo.State(e.initial.PDF).Clone()
}

func (e *Experiment) Config() *config.Config          { return e.cfg }
func (e *Experiment) Bins() aerosol.Bins              { return e.bins }
func (e *Experiment) Kernel() *coag.Coagulation       { return e.kernel }
func (e *Experiment) Scavenger() *coag.Coagulation    { return e.scavenger }
func (e *Experiment) System() *coag.System            { return e.system }
func (e *Experiment) GetSimulator() *sim.Simulator    { return e.simulator }
func (e *Experiment) Initial() *aerosol.Distribution { return e.initial }
