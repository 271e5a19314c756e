package loop

import (
	"fmt"
	"math"
)

// Corrector turns a timestamped error into a correction. *pid.Controller
// satisfies it.
type Corrector interface {
	UpdateAt(err, t float64) float64
}

//go:generate mockgen -destination mock_loop_test.go -package loop -self_package github.com/san-kum/pidsim/internal/loop -write_package_comment=false github.com/san-kum/pidsim/internal/loop Plant

// Plant is the controlled system as the loop sees it.
type Plant interface {
	Error() float64
	SetCorrection(u float64)
	Step()
	State() float64
}

// Sample is one loop iteration: the error read at Time, the correction
// computed from it and the plant state after applying it.
type Sample struct {
	Step       int     `json:"step"`
	Time       float64 `json:"time"`
	Error      float64 `json:"error"`
	Correction float64 `json:"correction"`
	State      float64 `json:"state"`
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Starter is implemented by metrics that need the loop configuration
// before the first sample. Runner calls Start after Reset.
type Starter interface {
	Start(cfg Config)
}

type Observer interface {
	OnStep(s Sample)
}

type Config struct {
	Dt     float64 `yaml:"dt" json:"dt"`
	Steps  int     `yaml:"steps" json:"steps"`
	Origin float64 `yaml:"origin" json:"origin"`
}

func DefaultConfig() Config {
	return Config{Dt: 1.0, Steps: 100}
}

func (c Config) Validate() error {
	if c.Dt <= 0 || math.IsNaN(c.Dt) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: got %f", ErrInvalidDt, c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSteps, c.Steps)
	}
	return nil
}

type Result struct {
	Samples    []Sample
	Metrics    map[string]float64
	StepsTaken int
}

// Converged reports whether the last sample's error is within tol.
func (r *Result) Converged(tol float64) bool {
	if len(r.Samples) == 0 {
		return false
	}
	return math.Abs(r.Samples[len(r.Samples)-1].Error) <= tol
}

func (r *Result) Errors() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Error
	}
	return out
}

func (r *Result) Corrections() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Correction
	}
	return out
}

func (r *Result) States() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.State
	}
	return out
}
