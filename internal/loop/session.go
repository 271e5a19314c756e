package loop

// Session steps a corrector and a plant together, one sample at a time.
// It is the cursor both Runner and the live view drive.
type Session struct {
	ctrl  Corrector
	plant Plant
	dt    float64
	t     float64
	step  int
}

func NewSession(ctrl Corrector, plant Plant, cfg Config) *Session {
	return &Session{
		ctrl:  ctrl,
		plant: plant,
		dt:    cfg.Dt,
		t:     cfg.Origin,
	}
}

func (s *Session) Step() Sample {
	s.t += s.dt
	s.step++

	e := s.plant.Error()
	u := s.ctrl.UpdateAt(e, s.t)
	s.plant.SetCorrection(u)
	s.plant.Step()

	return Sample{
		Step:       s.step,
		Time:       s.t,
		Error:      e,
		Correction: u,
		State:      s.plant.State(),
	}
}

func (s *Session) Time() float64 { return s.t }
func (s *Session) Steps() int    { return s.step }
