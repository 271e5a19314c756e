package metrics

import (
	"math"

	"github.com/san-kum/pidsim/internal/loop"
)

// IAE is the integral of absolute error over loop time. Each sample's
// error is held over the interval since the previous sample, the first
// one starting at the loop origin.
type IAE struct {
	sum   float64
	prevT float64
}

func NewIAE() *IAE { return &IAE{} }

func (m *IAE) Name() string { return "iae" }

func (m *IAE) Start(cfg loop.Config) { m.prevT = cfg.Origin }

func (m *IAE) Observe(s loop.Sample) {
	m.sum += math.Abs(s.Error) * (s.Time - m.prevT)
	m.prevT = s.Time
}

func (m *IAE) Value() float64 { return m.sum }
func (m *IAE) Reset()         { *m = IAE{} }

// ISE is the integral of squared error over loop time, weighted like IAE.
type ISE struct {
	sum   float64
	prevT float64
}

func NewISE() *ISE { return &ISE{} }

func (m *ISE) Name() string { return "ise" }

func (m *ISE) Start(cfg loop.Config) { m.prevT = cfg.Origin }

func (m *ISE) Observe(s loop.Sample) {
	m.sum += s.Error * s.Error * (s.Time - m.prevT)
	m.prevT = s.Time
}

func (m *ISE) Value() float64 { return m.sum }
func (m *ISE) Reset()         { *m = ISE{} }

type FinalError struct {
	last float64
}

func NewFinalError() *FinalError { return &FinalError{} }

func (m *FinalError) Name() string          { return "final_error" }
func (m *FinalError) Observe(s loop.Sample) { m.last = s.Error }
func (m *FinalError) Value() float64        { return math.Abs(m.last) }
func (m *FinalError) Reset()                { m.last = 0 }

// Default is the metric set every experiment records.
func Default(tolerance float64) []loop.Metric {
	return []loop.Metric{
		NewIAE(),
		NewISE(),
		NewControlEffort(),
		NewOvershoot(),
		NewSettling(tolerance),
		NewFinalError(),
	}
}
