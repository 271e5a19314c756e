package integrators

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(f Derivative, x []float64, u, t, dt float64) []float64 {
	dx := f(x, u, t)
	next := make([]float64, len(x))
	for i := range x {
		next[i] = x[i] + dt*dx[i]
	}
	return next
}
