package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pidsim/internal/loop"
	"github.com/san-kum/pidsim/internal/pid"
	"github.com/san-kum/pidsim/internal/plant"
)

const (
	DefaultDt        = 1.0
	DefaultSteps     = 100
	DefaultTarget    = 10.0
	DefaultKp        = 1.0
	DefaultKi        = 0.5
	DefaultKd        = 0.1
	DefaultTolerance = 1e-6
	DefaultDataDir   = ".pidsim"
)

type Config struct {
	Plant     string      `yaml:"plant"`
	Dt        float64     `yaml:"dt"`
	Steps     int         `yaml:"steps"`
	Origin    float64     `yaml:"origin"`
	Tolerance float64     `yaml:"tolerance"`
	Gains     pid.Gains   `yaml:"gains"`
	Init      PlantConfig `yaml:"init"`
}

type PlantConfig struct {
	State   float64 `yaml:"state"`
	Target  float64 `yaml:"target"`
	Divisor float64 `yaml:"divisor"`
	Alpha   float64 `yaml:"alpha"`

	// Spring plant only.
	Mass       float64 `yaml:"mass,omitempty"`
	Damping    float64 `yaml:"damping,omitempty"`
	Stiffness  float64 `yaml:"stiffness,omitempty"`
	Substep    float64 `yaml:"substep,omitempty"`
	Integrator string  `yaml:"integrator,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Plant:     "instant",
		Dt:        DefaultDt,
		Steps:     DefaultSteps,
		Tolerance: DefaultTolerance,
		Gains: pid.Gains{
			Kp: DefaultKp,
			Ki: DefaultKi,
			Kd: DefaultKd,
		},
		Init: PlantConfig{
			Target: DefaultTarget,
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

func (c *Config) Loop() loop.Config {
	return loop.Config{Dt: c.Dt, Steps: c.Steps, Origin: c.Origin}
}

func (c *Config) PlantParams() plant.Params {
	return plant.Params{
		State:   c.Init.State,
		Target:  c.Init.Target,
		Divisor: c.Init.Divisor,
		Alpha:   c.Init.Alpha,
		Spring: plant.SpringParams{
			Mass:      c.Init.Mass,
			Damping:   c.Init.Damping,
			Stiffness: c.Init.Stiffness,
			Substep:   c.Init.Substep,
		},
		Integrator: c.Init.Integrator,
	}
}

// Validate checks what the loop cannot run without. Gains are never
// checked.
func (c *Config) Validate() error {
	if err := c.Loop().Validate(); err != nil {
		return err
	}
	if _, err := plant.ByName(c.Plant, c.PlantParams()); err != nil {
		return err
	}
	return nil
}
