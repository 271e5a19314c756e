package integrators

// RK4 is the classic fourth-order Runge-Kutta step. Stage buffers are reused
// between calls, so one RK4 must not be shared across goroutines.
type RK4 struct {
	k1, k2, k3, k4 []float64
	mid            []float64
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) grow(n int) {
	if len(r.k1) == n {
		return
	}
	r.k1 = make([]float64, n)
	r.k2 = make([]float64, n)
	r.k3 = make([]float64, n)
	r.k4 = make([]float64, n)
	r.mid = make([]float64, n)
}

func (r *RK4) Step(f Derivative, x []float64, u, t, dt float64) []float64 {
	n := len(x)
	r.grow(n)
	half := dt * 0.5

	copy(r.k1, f(x, u, t))

	for i := 0; i < n; i++ {
		r.mid[i] = x[i] + half*r.k1[i]
	}
	copy(r.k2, f(r.mid, u, t+half))

	for i := 0; i < n; i++ {
		r.mid[i] = x[i] + half*r.k2[i]
	}
	copy(r.k3, f(r.mid, u, t+half))

	for i := 0; i < n; i++ {
		r.mid[i] = x[i] + dt*r.k3[i]
	}
	copy(r.k4, f(r.mid, u, t+dt))

	next := make([]float64, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		next[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	return next
}
