package metrics

import (
	"math"

	"github.com/san-kum/pidsim/internal/loop"
)

// Settling reports the first step after which |error| stays within the
// threshold for the rest of the run, or -1 if it never settles. A NaN
// error is never within the threshold.
type Settling struct {
	name      string
	threshold float64
	since     int
}

func NewSettling(threshold float64) *Settling {
	return &Settling{
		name:      "settling_step",
		threshold: threshold,
		since:     -1,
	}
}

func (s *Settling) Name() string {
	return s.name
}

func (s *Settling) Observe(x loop.Sample) {
	if !(math.Abs(x.Error) <= s.threshold) {
		s.since = -1
		return
	}
	if s.since < 0 {
		s.since = x.Step
	}
}

func (s *Settling) Value() float64 {
	return float64(s.since)
}

func (s *Settling) Reset() {
	s.since = -1
}

// Overshoot is how far the error crossed zero, relative to the first
// error seen. 0 means the run never passed the target.
type Overshoot struct {
	initial float64
	worst   float64
	seen    bool
}

func NewOvershoot() *Overshoot {
	return &Overshoot{}
}

func (o *Overshoot) Name() string { return "overshoot" }

func (o *Overshoot) Observe(x loop.Sample) {
	if !o.seen {
		o.initial = x.Error
		o.seen = true
		return
	}
	if o.initial == 0 {
		return
	}
	// Error with the opposite sign of the initial error means the state
	// went past the target.
	if past := -x.Error * math.Copysign(1, o.initial); past > o.worst {
		o.worst = past
	}
}

func (o *Overshoot) Value() float64 {
	if o.initial == 0 {
		return 0
	}
	return o.worst / math.Abs(o.initial)
}

func (o *Overshoot) Reset() {
	*o = Overshoot{}
}
