// Package automation runs scripted batches of coagulation experiments:
// scenarios read from YAML, parameter sweeps and Monte Carlo perturbations
// of the initial distribution.
package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/coagsim/internal/config"
	"github.com/san-kum/coagsim/internal/dynamo"
	"github.com/san-kum/coagsim/internal/experiment"
)

// Scenario is a named list of runs executed in order.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the defaults), optionally reads a
// config file over it and then applies Params by name.
type ScenarioStep struct {
	Preset     string             `yaml:"preset"`
	Config     string             `yaml:"config"`
	Integrator string             `yaml:"integrator"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}
	return &scenario, nil
}

// Resolve builds the validated config of one step.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Config != "" {
		var err error
		if cfg, err = config.LoadOver(s.Config, cfg); err != nil {
			return nil, err
		}
	}
	if s.Integrator != "" {
		cfg.Run.Integrator = s.Integrator
	}
	for name, v := range s.Params {
		if err := cfg.SetParam(name, v); err != nil {
			return nil, err
		}
	}
	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	return cfg, cfg.Validate()
}

// StepResult pairs a finished step with the experiment that produced it.
type StepResult struct {
	Experiment *experiment.Experiment
	Result     *dynamo.Result
}

// RunScenario executes every step in order. On failure it returns the
// results of the steps that completed.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, log logrus.FieldLogger) ([]StepResult, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		log.WithFields(logrus.Fields{
			"scenario": scenario.Name,
			"step":     i + 1,
			"of":       len(scenario.Steps),
			"preset":   step.Preset,
		}).Info("running scenario step")

		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg, log)
		if err := exp.Setup(registry); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, StepResult{Experiment: exp, Result: result})
	}

	return results, nil
}

// ParameterSweep evolves Base once per value of Param spread evenly over
// [Min, Max].
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	Min      float64
	Max      float64
	NumSteps int
}

type SweepResult struct {
	ParamValue      float64
	FinalState      dynamo.State
	Number          float64 // [# cm⁻³]
	EffectiveRadius float64 // [m]
	Drift           float64
}

// Values returns the parameter values the sweep visits.
func (s *ParameterSweep) Values() ([]float64, error) {
	if s.NumSteps < 1 || s.Max < s.Min {
		return nil, fmt.Errorf("sweep %s: invalid range [%g, %g] with %d steps", s.Param, s.Min, s.Max, s.NumSteps)
	}
	if s.NumSteps == 1 {
		return []float64{s.Min}, nil
	}
	step := (s.Max - s.Min) / float64(s.NumSteps-1)
	out := make([]float64, s.NumSteps)
	for i := range out {
		out[i] = s.Min + float64(i)*step
	}
	return out, nil
}

// RunSweep runs all sweep points concurrently.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, log logrus.FieldLogger) ([]SweepResult, error) {
	values, err := sweep.Values()
	if err != nil {
		return nil, err
	}

	cfgs := make([]*config.Config, len(values))
	for i, v := range values {
		cfgs[i] = sweep.Base.Clone()
		if err := cfgs[i].SetParam(sweep.Param, v); err != nil {
			return nil, err
		}
	}

	_, runs, err := experiment.RunAll(ctx, cfgs, registry, log)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(values))
	for i, r := range runs {
		results[i] = SweepResult{
			ParamValue:      values[i],
			FinalState:      r.Final(),
			Number:          r.Metrics["total_number"],
			EffectiveRadius: r.Metrics["effective_radius"],
			Drift:           r.InvariantDrift,
		}
	}
	return results, nil
}

// MonteCarloConfig perturbs the initial number concentration and median
// radius of Base by up to ±Perturbation (relative) in every trial.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID         int
	Number          float64 // initial
	Radius          float64 // initial
	FinalNumber     float64
	EffectiveRadius float64
	Stable          bool // finite, non-negative final state with volume kept
}

// stableDrift bounds the volume drift of a run counted as stable.
const stableDrift = 1e-6

// RunMonteCarlo executes the trials concurrently. A zero seed draws one from
// the clock.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry, log logrus.FieldLogger) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("monte carlo: %d trials", cfg.NumTrials)
	}
	if cfg.Perturbation < 0 || cfg.Perturbation >= 1 {
		return nil, fmt.Errorf("monte carlo: perturbation %g outside [0, 1)", cfg.Perturbation)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	cfgs := make([]*config.Config, cfg.NumTrials)
	for i := range cfgs {
		c := cfg.Base.Clone()
		c.Distribution.Number *= 1 + (rng.Float64()-0.5)*2*cfg.Perturbation
		c.Distribution.Radius *= 1 + (rng.Float64()-0.5)*2*cfg.Perturbation
		cfgs[i] = c
	}

	_, runs, err := experiment.RunAll(ctx, cfgs, registry, log)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for i, r := range runs {
		final := r.Final()
		results[i] = MonteCarloResult{
			TrialID:         i,
			Number:          cfgs[i].Distribution.Number,
			Radius:          cfgs[i].Distribution.Radius,
			FinalNumber:     r.Metrics["total_number"],
			EffectiveRadius: r.Metrics["effective_radius"],
			Stable:          final.IsValid() && !final.HasNegative() && r.InvariantDrift < stableDrift,
		}
	}
	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
