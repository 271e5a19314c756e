package plant

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/pidsim/internal/integrators"
)

var ErrUnknownPlant = errors.New("plant: unknown plant")

// Record is one applied correction and the state it produced.
type Record struct {
	Correction float64 `json:"correction"`
	State      float64 `json:"state"`
}

// Model holds what every plant shares. Variants embed it and supply the
// response through apply.
type Model struct {
	state      float64
	target     float64
	correction float64
	history    []Record

	apply func(state, correction float64) float64
}

func (m *Model) SetCorrection(u float64)  { m.correction = u }
func (m *Model) SetTarget(target float64) { m.target = target }
func (m *Model) State() float64           { return m.state }
func (m *Model) Target() float64          { return m.target }

// Error is target minus state.
func (m *Model) Error() float64 { return m.target - m.state }

// Step applies the pending correction and records the result.
func (m *Model) Step() {
	u := m.correction
	m.state = m.apply(m.state, u)
	m.history = append(m.history, Record{Correction: u, State: m.state})
}

func (m *Model) History() []Record {
	out := make([]Record, len(m.history))
	copy(out, m.history)
	return out
}

type Instant struct{ Model }

func NewInstant(state, target float64) *Instant {
	p := &Instant{}
	p.state, p.target = state, target
	p.apply = func(x, u float64) float64 { return x + u }
	return p
}

const DefaultDivisor = 100.0

type Damped struct {
	Model
	Divisor float64
}

func NewDamped(state, target, divisor float64) *Damped {
	if divisor == 0 {
		divisor = DefaultDivisor
	}
	p := &Damped{Divisor: divisor}
	p.state, p.target = state, target
	p.apply = func(x, u float64) float64 { return x + u/p.Divisor }
	return p
}

// Diminishing responds less to the same correction the older it gets.
type Diminishing struct {
	Model
	age int
}

func NewDiminishing(state, target float64) *Diminishing {
	p := &Diminishing{}
	p.state, p.target = state, target
	p.apply = func(x, u float64) float64 {
		p.age++
		return x + u/float64(p.age)
	}
	return p
}

func (p *Diminishing) Age() int { return p.age }

const DefaultAlpha = 0.2

// Lag moves a fraction alpha of the way from its state towards state+correction.
type Lag struct {
	Model
	Alpha float64
}

func NewLag(state, target, alpha float64) *Lag {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	p := &Lag{Alpha: alpha}
	p.state, p.target = state, target
	p.apply = func(x, u float64) float64 { return x + p.Alpha*u }
	return p
}

// Params configures plants built by name. Zero values pick defaults.
type Params struct {
	State   float64
	Target  float64
	Divisor float64
	Alpha   float64
	Spring  SpringParams

	// Integrator names the scheme for continuous plants ("rk4", "euler").
	Integrator string
}

var builders = map[string]func(Params) (Plant, error){
	"instant":     func(p Params) (Plant, error) { return NewInstant(p.State, p.Target), nil },
	"damped":      func(p Params) (Plant, error) { return NewDamped(p.State, p.Target, p.Divisor), nil },
	"diminishing": func(p Params) (Plant, error) { return NewDiminishing(p.State, p.Target), nil },
	"lag":         func(p Params) (Plant, error) { return NewLag(p.State, p.Target, p.Alpha), nil },
	"spring": func(p Params) (Plant, error) {
		integ, err := integrators.ByName(p.Integrator)
		if err != nil {
			return nil, err
		}
		return NewSpring(p.State, p.Target, p.Spring, integ), nil
	},
}

// Plant is what every variant in this package satisfies.
type Plant interface {
	SetCorrection(u float64)
	SetTarget(target float64)
	State() float64
	Target() float64
	Error() float64
	Step()
	History() []Record
}

// ByName builds the named plant. Unknown names wrap ErrUnknownPlant.
func ByName(name string, p Params) (Plant, error) {
	fn, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlant, name)
	}
	return fn(p)
}

// Names lists the plants ByName accepts, sorted.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
