package plant

import "github.com/san-kum/pidsim/internal/integrators"

const (
	DefaultMass      = 1.0
	DefaultDamping   = 2.0
	DefaultStiffness = 1.0
	DefaultSubstep   = 0.1
)

// Spring is a damped mass on a spring driven by the correction as a force:
//
//	m·x'' = u - c·x' - k·x
//
// Each Step advances the continuous dynamics by Substep seconds. Holding the
// state at the target needs a standing force k·target, which only the
// integral term can supply.
type Spring struct {
	Model
	Mass      float64
	Damping   float64
	Stiffness float64
	Substep   float64

	velocity float64
	elapsed  float64
	integ    integrators.Integrator
}

// NewSpring builds a spring plant. Non-positive constants fall back to the
// defaults; a nil integrator selects RK4.
func NewSpring(state, target float64, sp SpringParams, integ integrators.Integrator) *Spring {
	if sp.Mass <= 0 {
		sp.Mass = DefaultMass
	}
	if sp.Stiffness <= 0 {
		sp.Stiffness = DefaultStiffness
	}
	if sp.Damping <= 0 {
		sp.Damping = DefaultDamping
	}
	if sp.Substep <= 0 {
		sp.Substep = DefaultSubstep
	}
	if integ == nil {
		integ = integrators.NewRK4()
	}

	p := &Spring{
		Mass:      sp.Mass,
		Damping:   sp.Damping,
		Stiffness: sp.Stiffness,
		Substep:   sp.Substep,
		integ:     integ,
	}
	p.state, p.target = state, target
	p.apply = func(x, u float64) float64 {
		next := p.integ.Step(p.derive, []float64{x, p.velocity}, u, p.elapsed, p.Substep)
		p.elapsed += p.Substep
		p.velocity = next[1]
		return next[0]
	}
	return p
}

func (p *Spring) derive(x []float64, u, _ float64) []float64 {
	return []float64{
		x[1],
		(u - p.Damping*x[1] - p.Stiffness*x[0]) / p.Mass,
	}
}

func (p *Spring) Velocity() float64 { return p.velocity }

func (p *Spring) SpringParams() SpringParams {
	return SpringParams{Mass: p.Mass, Damping: p.Damping, Stiffness: p.Stiffness, Substep: p.Substep}
}

// SpringParams are the physical constants of a Spring.
type SpringParams struct {
	Mass      float64
	Damping   float64
	Stiffness float64
	Substep   float64
}
