package pid

// Gains are the fixed multipliers of the three terms.
type Gains struct {
	Kp float64 `json:"kp" yaml:"kp"`
	Ki float64 `json:"ki" yaml:"ki"`
	Kd float64 `json:"kd" yaml:"kd"`
}

// State is a copy of the mutable part of a Controller.
type State struct {
	Proportional  float64 `json:"proportional"`
	Integral      float64 `json:"integral"`
	Derivative    float64 `json:"derivative"`
	PreviousTime  float64 `json:"previous_time"`
	PreviousError float64 `json:"previous_error"`
}

// Controller is a discrete-time PID controller. It is not safe for
// concurrent use.
type Controller struct {
	gains Gains
	clock Clock

	proportional float64
	integral     float64
	derivative   float64

	prevT   float64
	prevErr float64
}

// Option configures a Controller in New.
type Option func(*options)

type options struct {
	origin    float64
	hasOrigin bool
	clock     Clock
}

// WithOrigin sets the timestamp the first update measures elapsed time from.
func WithOrigin(t float64) Option {
	return func(o *options) {
		o.origin = t
		o.hasOrigin = true
	}
}

// WithClock sets the clock used whenever a timestamp is omitted.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// New returns a controller with the given gains. Gains are not validated.
// Without WithOrigin the origin is read from the clock now.
func New(kp, ki, kd float64, opts ...Option) *Controller {
	o := options{clock: Monotonic}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.hasOrigin {
		o.origin = o.clock()
	}
	return &Controller{
		gains: Gains{Kp: kp, Ki: ki, Kd: kd},
		clock: o.clock,
		prevT: o.origin,
	}
}

// NewWithGains is New for a Gains value.
func NewWithGains(g Gains, opts ...Option) *Controller {
	return New(g.Kp, g.Ki, g.Kd, opts...)
}

// Update feeds err stamped with the current clock reading.
func (c *Controller) Update(err float64) float64 {
	return c.UpdateAt(err, c.clock())
}

// UpdateAt feeds err observed at time t and returns the correction.
// If t is not after the previous accepted timestamp it returns 0 and
// changes nothing.
func (c *Controller) UpdateAt(err, t float64) float64 {
	dt := t - c.prevT
	if dt <= 0.0 {
		return 0
	}
	de := err - c.prevErr

	c.proportional = c.gains.Kp * err
	c.integral += err * dt
	c.derivative = de / dt

	c.prevT = t
	c.prevErr = err

	return c.proportional + c.gains.Ki*c.integral + c.gains.Kd*c.derivative
}

// Gains returns the gains fixed at construction.
func (c *Controller) Gains() Gains { return c.gains }

// Proportional is Kp times the last accepted error.
func (c *Controller) Proportional() float64 { return c.proportional }

// Integral is the running sum of error * dt; it is never reset.
func (c *Controller) Integral() float64 { return c.integral }

// Derivative is the last accepted change in error divided by dt.
func (c *Controller) Derivative() float64 { return c.derivative }

// PreviousTime is the timestamp of the last accepted update, or the origin.
func (c *Controller) PreviousTime() float64 { return c.prevT }

// PreviousError is the error of the last accepted update, 0 before any.
func (c *Controller) PreviousError() float64 { return c.prevErr }

// Snapshot copies every mutable field. Snapshots compare with ==.
func (c *Controller) Snapshot() State {
	return State{
		Proportional:  c.proportional,
		Integral:      c.integral,
		Derivative:    c.derivative,
		PreviousTime:  c.prevT,
		PreviousError: c.prevErr,
	}
}
