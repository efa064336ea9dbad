package config

import (
	"fmt"
	"os"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultScenario   = "solar"
	DefaultIntegrator = "symplectic-euler"
	DefaultDt         = 3600 * 10
	DefaultSteps      = 1000
	DefaultTheta      = 0.5
	DefaultAsteroids  = 500
	DefaultSeed       = 1
	DefaultPadding    = 0.05
	DefaultHalfWidth  = 10.0
)

type Config struct {
	Scenario    string       `yaml:"scenario"`
	Integrator  string       `yaml:"integrator"`
	Mode        string       `yaml:"mode"`
	Theta       float64      `yaml:"theta"`
	Dt          float64      `yaml:"dt"`
	Steps       int          `yaml:"steps"`
	Seed        int64        `yaml:"seed"`
	Workers     int          `yaml:"workers"`
	MaxDepth    int          `yaml:"max_depth"`
	SampleEvery int          `yaml:"sample_every"`
	Bounds      BoundsConfig `yaml:"bounds"`
	Init        InitConfig   `yaml:"init"`
	Bodies      []BodyConfig `yaml:"bodies,omitempty"`
}

type BoundsConfig struct {
	Policy      string  `yaml:"policy"`
	Padding     float64 `yaml:"padding"`
	HalfWidthAU float64 `yaml:"half_width_au"`
}

// InitConfig parameterises the generated scenarios.
type InitConfig struct {
	Asteroids    int     `yaml:"asteroids"`
	CentralMass  float64 `yaml:"central_mass"`
	InnerAU      float64 `yaml:"inner_au"`
	OuterAU      float64 `yaml:"outer_au"`
	MassA        float64 `yaml:"mass_a"`
	MassB        float64 `yaml:"mass_b"`
	SeparationAU float64 `yaml:"separation_au"`
}

// BodyConfig describes one body of the "custom" scenario. Positions are in
// AU, velocities in m/s. Orbit names an earlier body to circle; it
// overrides VX/VY.
type BodyConfig struct {
	Name   string  `yaml:"name"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	VX     float64 `yaml:"vx"`
	VY     float64 `yaml:"vy"`
	Mass   float64 `yaml:"mass"`
	Radius float64 `yaml:"radius"`
	Color  string  `yaml:"color"`
	Orbit  string  `yaml:"orbit,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:    DefaultScenario,
		Integrator:  DefaultIntegrator,
		Mode:        string(dynamo.ModeBarnesHut),
		Theta:       DefaultTheta,
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		Seed:        DefaultSeed,
		Workers:     1,
		MaxDepth:    dynamo.DefaultMaxDepth,
		SampleEvery: 10,
		Bounds: BoundsConfig{
			Policy:      string(dynamo.BoundsAuto),
			Padding:     DefaultPadding,
			HalfWidthAU: DefaultHalfWidth,
		},
		Init: InitConfig{
			Asteroids:    DefaultAsteroids,
			CentralMass:  1.989e30,
			InnerAU:      0.5,
			OuterAU:      7,
			MassA:        1.989e30,
			MassB:        1.989e30,
			SeparationAU: 1,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

// Clone returns a deep copy, so presets can be modified safely.
func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = append([]BodyConfig(nil), c.Bodies...)
	return &out
}

// SimConfig converts the file settings into the engine configuration.
func (c *Config) SimConfig() (dynamo.Config, error) {
	mode, err := dynamo.ParseMode(c.Mode)
	if err != nil {
		return dynamo.Config{}, err
	}
	sc := dynamo.DefaultConfig()
	sc.Theta = c.Theta
	sc.Mode = mode
	sc.Workers = c.Workers
	// Load starts from DefaultConfig, so omitted fields already hold defaults
	// and anything else is passed on to be validated.
	sc.MaxDepth = c.MaxDepth
	sc.Bounds = dynamo.BoundsPolicy(c.Bounds.Policy)
	sc.Padding = c.Bounds.Padding
	sc.HalfWidth = c.Bounds.HalfWidthAU * dynamo.AU
	if err := sc.Validate(); err != nil {
		return dynamo.Config{}, err
	}
	return sc, nil
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidConfig, c.Dt)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must be >= 0, got %d", dynamo.ErrInvalidConfig, c.Steps)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every must be >= 0, got %d", dynamo.ErrInvalidConfig, c.SampleEvery)
	}
	_, err := c.SimConfig()
	return err
}
