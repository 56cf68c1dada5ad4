package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/coagsim/internal/aerosol"
)

const (
	DefaultTemperature = 220.0   // K
	DefaultPressure    = 25000.0 // Pa
	DefaultDensity     = 917.0   // kg m⁻³
	DefaultRMin        = 1e-6    // m
	DefaultRMax        = 200e-6  // m
	DefaultBinCount    = 30
	DefaultNumber      = 100.0 // # cm⁻³
	DefaultRadius      = 10e-6 // m
	DefaultSigma       = 1.6
	DefaultDt          = 60.0
	DefaultDuration    = 3600.0
	DefaultIntegrator  = "semi-implicit"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Name         string             `yaml:"name,omitempty"`
	Phase        aerosol.Phase      `yaml:"phase"`
	Density      float64            `yaml:"density"`
	Ambient      AmbientConfig      `yaml:"ambient"`
	Bins         BinsConfig         `yaml:"bins"`
	Distribution DistributionConfig `yaml:"distribution"`
	Scavenger    *ScavengerConfig   `yaml:"scavenger,omitempty"`
	Run          RunConfig          `yaml:"run"`
}

type AmbientConfig struct {
	Temperature float64  `yaml:"temperature"`
	Pressure    float64  `yaml:"pressure"`
	Dissipation *float64 `yaml:"dissipation,omitempty"`
}

type BinsConfig struct {
	RMin  float64 `yaml:"r_min"`
	RMax  float64 `yaml:"r_max"`
	Count int     `yaml:"count"`
}

type DistributionConfig struct {
	Number float64 `yaml:"number"`
	Radius float64 `yaml:"radius"`
	Sigma  float64 `yaml:"sigma"`
}

// ScavengerConfig describes a fixed external population the binned one is
// lost onto.
type ScavengerConfig struct {
	Radius  float64 `yaml:"radius"`
	Density float64 `yaml:"density"`
	Number  float64 `yaml:"number"`
}

type RunConfig struct {
	Integrator       string  `yaml:"integrator"`
	Dt               float64 `yaml:"dt"`
	Duration         float64 `yaml:"duration"`
	Adaptive         bool    `yaml:"adaptive,omitempty"`
	Tolerance        float64 `yaml:"tolerance,omitempty"`
	MaxIterations    int     `yaml:"max_iterations,omitempty"`
	IgnoreEfficiency bool    `yaml:"ignore_efficiency,omitempty"`
	StrictPhase      bool    `yaml:"strict_phase,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Phase:   aerosol.Ice,
		Density: DefaultDensity,
		Ambient: AmbientConfig{
			Temperature: DefaultTemperature,
			Pressure:    DefaultPressure,
		},
		Bins: BinsConfig{
			RMin:  DefaultRMin,
			RMax:  DefaultRMax,
			Count: DefaultBinCount,
		},
		Distribution: DistributionConfig{
			Number: DefaultNumber,
			Radius: DefaultRadius,
			Sigma:  DefaultSigma,
		},
		Run: RunConfig{
			Integrator: DefaultIntegrator,
			Dt:         DefaultDt,
			Duration:   DefaultDuration,
			Tolerance:  1e-6,
		},
	}
}

// Load reads a YAML file on top of DefaultConfig, so omitted fields keep
// their defaults.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file on top of a copy of base.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks ranges only. An unknown phase is not an error here; the
// kernel builder reports it.
func (c *Config) Validate() error {
	switch {
	case !(c.Density > 0):
		return fmt.Errorf("%w: density %g kg/m3", ErrInvalid, c.Density)
	case !(c.Ambient.Temperature > 0):
		return fmt.Errorf("%w: temperature %g K", ErrInvalid, c.Ambient.Temperature)
	case !(c.Ambient.Pressure > 0):
		return fmt.Errorf("%w: pressure %g Pa", ErrInvalid, c.Ambient.Pressure)
	case c.Ambient.Dissipation != nil && *c.Ambient.Dissipation < 0:
		return fmt.Errorf("%w: dissipation %g m2/s3", ErrInvalid, *c.Ambient.Dissipation)
	case c.Bins.Count < 1:
		return fmt.Errorf("%w: bin count %d", ErrInvalid, c.Bins.Count)
	case !(c.Bins.RMin > 0) || !(c.Bins.RMax > c.Bins.RMin):
		return fmt.Errorf("%w: radius range [%g, %g] m", ErrInvalid, c.Bins.RMin, c.Bins.RMax)
	case c.Distribution.Number < 0:
		return fmt.Errorf("%w: number concentration %g", ErrInvalid, c.Distribution.Number)
	case !(c.Distribution.Radius > 0):
		return fmt.Errorf("%w: median radius %g m", ErrInvalid, c.Distribution.Radius)
	case !(c.Distribution.Sigma > 1):
		return fmt.Errorf("%w: geometric std %g must exceed 1", ErrInvalid, c.Distribution.Sigma)
	case !(c.Run.Dt > 0):
		return fmt.Errorf("%w: dt %g s", ErrInvalid, c.Run.Dt)
	case !(c.Run.Duration > 0):
		return fmt.Errorf("%w: duration %g s", ErrInvalid, c.Run.Duration)
	case c.Run.Adaptive && !(c.Run.Tolerance > 0):
		return fmt.Errorf("%w: adaptive runs need a positive tolerance", ErrInvalid)
	}
	if s := c.Scavenger; s != nil {
		if !(s.Radius > 0) || !(s.Density > 0) || s.Number < 0 {
			return fmt.Errorf("%w: scavenger r=%g rho=%g N=%g", ErrInvalid, s.Radius, s.Density, s.Number)
		}
	}
	return nil
}

// Clone returns a deep copy, so presets can be adjusted without changing the
// shared table.
func (c *Config) Clone() *Config {
	out := *c
	if c.Ambient.Dissipation != nil {
		d := *c.Ambient.Dissipation
		out.Ambient.Dissipation = &d
	}
	if c.Scavenger != nil {
		s := *c.Scavenger
		out.Scavenger = &s
	}
	return &out
}

// Params lists the names SetParam accepts.
var Params = []string{"temperature", "pressure", "density", "dissipation", "number", "radius", "sigma", "dt", "duration"}

// SetParam sets one numeric field by name. The result is not validated.
func (c *Config) SetParam(name string, v float64) error {
	switch name {
	case "temperature":
		c.Ambient.Temperature = v
	case "pressure":
		c.Ambient.Pressure = v
	case "density":
		c.Density = v
	case "dissipation":
		c.Ambient.Dissipation = &v
	case "number":
		c.Distribution.Number = v
	case "radius":
		c.Distribution.Radius = v
	case "sigma":
		c.Distribution.Sigma = v
	case "dt":
		c.Run.Dt = v
	case "duration":
		c.Run.Duration = v
	default:
		return fmt.Errorf("%w: unknown parameter %q (options are %v)", ErrInvalid, name, Params)
	}
	return nil
}
