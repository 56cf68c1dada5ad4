package config

import (
	"sort"

	"github.com/san-kum/coagsim/internal/aerosol"
)

var Presets = map[string]*Config{
	"contrail": {
		Name: "contrail", Phase: aerosol.Ice, Density: 917,
		Ambient:      AmbientConfig{Temperature: 220, Pressure: 25000},
		Bins:         BinsConfig{RMin: 1e-6, RMax: 200e-6, Count: 30},
		Distribution: DistributionConfig{Number: 100, Radius: 10e-6, Sigma: 1.6},
		Run:          RunConfig{Integrator: "semi-implicit", Dt: 60, Duration: 6 * 3600, Tolerance: 1e-6},
	},
	"sulfate": {
		Name: "sulfate", Phase: aerosol.Liquid, Density: 1800,
		Ambient:      AmbientConfig{Temperature: 220, Pressure: 25000},
		Bins:         BinsConfig{RMin: 1e-9, RMax: 1e-6, Count: 30},
		Distribution: DistributionConfig{Number: 1e5, Radius: 5e-9, Sigma: 1.4},
		Run:          RunConfig{Integrator: "semi-implicit", Dt: 10, Duration: 3600, Tolerance: 1e-6, IgnoreEfficiency: true},
	},
	"soot": {
		Name: "soot", Phase: aerosol.Soot, Density: 1500,
		Ambient:      AmbientConfig{Temperature: 220, Pressure: 25000},
		Bins:         BinsConfig{RMin: 5e-9, RMax: 2e-6, Count: 30},
		Distribution: DistributionConfig{Number: 1e4, Radius: 20e-9, Sigma: 1.5},
		Scavenger:    &ScavengerConfig{Radius: 10e-6, Density: 917, Number: 100},
		Run:          RunConfig{Integrator: "semi-implicit", Dt: 30, Duration: 3600, Tolerance: 1e-6, IgnoreEfficiency: true},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
