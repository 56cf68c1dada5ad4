package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/coagsim/internal/aerosol"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Phase != aerosol.Ice {
		t.Errorf("expected phase ice, got %s", cfg.Phase)
	}
	if cfg.Run.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("contrail")
	require.NotNil(t, cfg)
	assert.Equal(t, aerosol.Ice, cfg.Phase)
	assert.NoError(t, cfg.Validate())

	cfg.Ambient.Temperature = 1
	cfg.Scavenger = nil
	assert.Equal(t, 220.0, Presets["contrail"].Ambient.Temperature, "presets are handed out as copies")

	soot := GetPreset("soot")
	soot.Scavenger.Number = 0
	assert.Equal(t, 100.0, Presets["soot"].Scavenger.Number)
}

func TestGetPreset_NotFound(t *testing.T) {
	assert.Nil(t, GetPreset("nonexistent"))
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, GetPreset(name).Validate())
		})
	}
}

func TestListPresets(t *testing.T) {
	assert.Equal(t, []string{"contrail", "soot", "sulfate"}, ListPresets())
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	eps := 1e-3

	cfg := GetPreset("soot")
	cfg.Ambient.Dissipation = &eps
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "phase: soot")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	yml := "phase: liq\nambient:\n  temperature: 250\nrun:\n  integrator: rk45\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, aerosol.Liquid, cfg.Phase)
	assert.Equal(t, 250.0, cfg.Ambient.Temperature)
	assert.Equal(t, DefaultPressure, cfg.Ambient.Pressure)
	assert.Equal(t, "rk45", cfg.Run.Integrator)
	assert.Equal(t, DefaultDt, cfg.Run.Dt)
	assert.Nil(t, cfg.Ambient.Dissipation)
}

func TestLoadOver_Preset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ambient:\n  temperature: 240\n"), 0644))

	base := GetPreset("soot")
	cfg, err := LoadOver(path, base)
	require.NoError(t, err)
	assert.Equal(t, 240.0, cfg.Ambient.Temperature)
	assert.Equal(t, aerosol.Soot, cfg.Phase)
	require.NotNil(t, cfg.Scavenger)
	assert.Equal(t, 10e-6, cfg.Scavenger.Radius)
	assert.Equal(t, 220.0, base.Ambient.Temperature, "base must not change")
}

func TestLoad_UnknownPhase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vapor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("phase: vapor\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err, "the kernel builder decides what an unknown phase means")
	assert.Equal(t, aerosol.Unknown, cfg.Phase)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bins: [1, 2"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero density", func(c *Config) { c.Density = 0 }},
		{"zero temperature", func(c *Config) { c.Ambient.Temperature = 0 }},
		{"negative pressure", func(c *Config) { c.Ambient.Pressure = -1 }},
		{"negative dissipation", func(c *Config) { d := -1.0; c.Ambient.Dissipation = &d }},
		{"no bins", func(c *Config) { c.Bins.Count = 0 }},
		{"inverted range", func(c *Config) { c.Bins.RMin, c.Bins.RMax = 1e-5, 1e-6 }},
		{"narrow lognormal", func(c *Config) { c.Distribution.Sigma = 1 }},
		{"zero dt", func(c *Config) { c.Run.Dt = 0 }},
		{"adaptive without tolerance", func(c *Config) { c.Run.Adaptive = true; c.Run.Tolerance = 0 }},
		{"bad scavenger", func(c *Config) { c.Scavenger = &ScavengerConfig{Radius: 0, Density: 917} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestSetParam(t *testing.T) {
	cfg := DefaultConfig()
	for i, name := range Params {
		require.NoError(t, cfg.SetParam(name, float64(i+2)))
	}
	assert.Equal(t, 2.0, cfg.Ambient.Temperature)
	require.NotNil(t, cfg.Ambient.Dissipation)
	assert.Equal(t, 5.0, *cfg.Ambient.Dissipation)
	assert.Equal(t, 10.0, cfg.Run.Duration)

	assert.ErrorIs(t, cfg.SetParam("humidity", 0.5), ErrInvalid)
}
