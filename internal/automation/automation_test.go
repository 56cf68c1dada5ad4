package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/coagsim/internal/config"
	"github.com/san-kum/coagsim/internal/experiment"
)

func smallConfig() *config.Config {
	cfg := config.GetPreset("contrail")
	cfg.Bins.Count = 8
	cfg.Run.Duration = 600
	return cfg
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	yml := `name: cold-and-warm
steps:
  - preset: contrail
    params:
      temperature: 210
      duration: 600
    save_as: cold
  - preset: contrail
    integrator: rk4
    params:
      temperature: 240
      duration: 600
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "cold-and-warm", sc.Name)
	require.Len(t, sc.Steps, 2)

	cfg, err := sc.Steps[0].Resolve()
	require.NoError(t, err)
	assert.Equal(t, 210.0, cfg.Ambient.Temperature)
	assert.Equal(t, "cold", cfg.Name)

	cfg, err = sc.Steps[1].Resolve()
	require.NoError(t, err)
	assert.Equal(t, "rk4", cfg.Run.Integrator)
}

func TestLoadScenarioErrors(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: empty\n"), 0644))
	_, err = LoadScenario(path)
	assert.ErrorContains(t, err, "no steps")
}

func TestResolveErrors(t *testing.T) {
	_, err := ScenarioStep{Preset: "volcano"}.Resolve()
	assert.ErrorContains(t, err, "unknown preset")

	_, err = ScenarioStep{Params: map[string]float64{"humidity": 1}}.Resolve()
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = ScenarioStep{Params: map[string]float64{"temperature": -1}}.Resolve()
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRunScenario(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	sc := &Scenario{Name: "two", Steps: []ScenarioStep{
		{Preset: "contrail", Params: map[string]float64{"duration": 300}},
		{Preset: "contrail", Params: map[string]float64{"duration": 300, "temperature": 240}},
	}}

	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), logger)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Less(t, r.Result.InvariantDrift, 1e-9)
		assert.Len(t, r.Result.States, 6)
	}
	assert.NotEmpty(t, hook.Entries)
}

func TestRunScenarioStopsAtFailure(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	sc := &Scenario{Steps: []ScenarioStep{
		{Preset: "contrail", Params: map[string]float64{"duration": 120}},
		{Preset: "contrail", Integrator: "leapfrog"},
	}}

	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), logger)
	assert.ErrorContains(t, err, "step 2")
	assert.Len(t, results, 1)
}

func TestSweepValues(t *testing.T) {
	s := &ParameterSweep{Param: "temperature", Min: 200, Max: 240, NumSteps: 3}
	v, err := s.Values()
	require.NoError(t, err)
	assert.Equal(t, []float64{200, 220, 240}, v)

	s.NumSteps = 0
	_, err = s.Values()
	assert.Error(t, err)
}

func TestRunSweep(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	sweep := &ParameterSweep{Base: smallConfig(), Param: "number", Min: 50, Max: 200, NumSteps: 3}

	results, err := RunSweep(context.Background(), sweep, experiment.NewRegistry(), logger)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.Less(t, r.Number, r.ParamValue, "coagulation only removes particles")
		assert.Greater(t, r.EffectiveRadius, 0.0)
		assert.Less(t, r.Drift, 1e-9)
		if i > 0 {
			// faster relative loss at higher concentration
			assert.Less(t, r.Number/r.ParamValue, results[i-1].Number/results[i-1].ParamValue)
		}
	}

	sweep.Param = "humidity"
	_, err = RunSweep(context.Background(), sweep, experiment.NewRegistry(), logger)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRunMonteCarlo(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	mc := &MonteCarloConfig{Base: smallConfig(), Perturbation: 0.2, NumTrials: 4, Seed: 7}

	results, err := RunMonteCarlo(context.Background(), mc, experiment.NewRegistry(), logger)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.InDelta(t, 100, r.Number, 20+1e-9)
		assert.InDelta(t, 10e-6, r.Radius, 2e-6+1e-15)
	}

	stable, unstable := MonteCarloStats(results)
	assert.Equal(t, 4, stable)
	assert.Zero(t, unstable)

	again, err := RunMonteCarlo(context.Background(), mc, experiment.NewRegistry(), logger)
	require.NoError(t, err)
	assert.Equal(t, results[0].Number, again[0].Number, "same seed, same trials")
}

func TestRunMonteCarloErrors(t *testing.T) {
	_, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{Base: smallConfig()}, experiment.NewRegistry(), nil)
	assert.Error(t, err)

	_, err = RunMonteCarlo(context.Background(), &MonteCarloConfig{Base: smallConfig(), NumTrials: 1, Perturbation: 1}, experiment.NewRegistry(), nil)
	assert.Error(t, err)
}

func TestMonteCarloStats(t *testing.T) {
	s, u := MonteCarloStats([]MonteCarloResult{{Stable: true}, {Stable: false}, {Stable: true}})
	assert.Equal(t, 2, s)
	assert.Equal(t, 1, u)
}
