package config

import (
	"sort"

	"github.com/san-kum/pidsim/internal/pid"
)

// Presets reproduce the reference closed-loop scenarios.
var Presets = map[string]*Config{
	"instant": {
		Plant: "instant", Dt: 1, Steps: 30, Tolerance: DefaultTolerance,
		Gains: gains(1.0, 0.5, 0.1),
		Init:  PlantConfig{Target: 10},
	},
	"damped": {
		Plant: "damped", Dt: 1, Steps: 4000, Tolerance: DefaultTolerance,
		Gains: gains(1.0, 0.5, 0.1),
		Init:  PlantConfig{Target: 10, Divisor: 100},
	},
	"diminishing": {
		Plant: "diminishing", Dt: 1, Steps: 100, Tolerance: DefaultTolerance,
		Gains: gains(1.0, 0.0, 0.6),
		Init:  PlantConfig{Target: 10},
	},
	"slow-clock": {
		Plant: "instant", Dt: 2, Steps: 30, Tolerance: DefaultTolerance,
		Gains: gains(1.0, 0.25, 0.2),
		Init:  PlantConfig{Target: 10},
	},
	"lag": {
		Plant: "lag", Dt: 1, Steps: 200, Tolerance: DefaultTolerance,
		Gains: gains(1.0, 0.5, 0.1),
		Init:  PlantConfig{Target: 10, Alpha: 0.2},
	},
	"spring": {
		Plant: "spring", Dt: 0.1, Steps: 600, Tolerance: DefaultTolerance,
		Gains: gains(4.0, 2.0, 1.0),
		Init: PlantConfig{
			Target:     10,
			Mass:       1,
			Damping:    2,
			Stiffness:  1,
			Substep:    0.1,
			Integrator: "rk4",
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func gains(kp, ki, kd float64) pid.Gains {
	return pid.Gains{Kp: kp, Ki: ki, Kd: kd}
}
