package integrators

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownIntegrator = errors.New("integrators: unknown integrator")

// Derivative returns dx/dt for state x under correction u at time t.
type Derivative func(x []float64, u, t float64) []float64

type Integrator interface {
	Step(f Derivative, x []float64, u, t, dt float64) []float64
}

var registry = map[string]func() Integrator{
	"euler": func() Integrator { return NewEuler() },
	"rk4":   func() Integrator { return NewRK4() },
}

// ByName returns a new integrator. An empty name selects rk4.
func ByName(name string) (Integrator, error) {
	if name == "" {
		name = "rk4"
	}
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntegrator, name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
