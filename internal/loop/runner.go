package loop

import (
	"context"

	"go.uber.org/zap"
)

// Runner drives a Corrector against a Plant and feeds every sample to its
// metrics and observers.
type Runner struct {
	ctrl      Corrector
	plant     Plant
	metrics   []Metric
	observers []Observer
	log       *zap.Logger
}

// New returns a Runner with no metrics, no observers and a no-op logger.
func New(ctrl Corrector, plant Plant) *Runner {
	return &Runner{
		ctrl:      ctrl,
		plant:     plant,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       zap.NewNop(),
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) SetLogger(l *zap.Logger) {
	if l != nil {
		r.log = l
	}
}

// Run drives the loop for cfg.Steps samples. On cancellation it returns
// the samples gathered so far together with ctx.Err().
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		Samples: make([]Sample, 0, cfg.Steps),
		Metrics: make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
		if st, ok := m.(Starter); ok {
			st.Start(cfg)
		}
	}

	r.log.Debug("loop started",
		zap.Int("steps", cfg.Steps),
		zap.Float64("dt", cfg.Dt),
		zap.Float64("origin", cfg.Origin),
		zap.Float64("error", r.plant.Error()))

	sess := NewSession(r.ctrl, r.plant, cfg)
	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			r.collect(result)
			r.log.Debug("loop canceled", zap.Int("steps_taken", result.StepsTaken))
			return result, ctx.Err()
		default:
		}

		s := sess.Step()
		for _, m := range r.metrics {
			m.Observe(s)
		}
		for _, obs := range r.observers {
			obs.OnStep(s)
		}

		result.Samples = append(result.Samples, s)
		result.StepsTaken++
	}

	r.collect(result)

	r.log.Debug("loop finished",
		zap.Int("steps_taken", result.StepsTaken),
		zap.Float64("final_error", r.plant.Error()))

	return result, nil
}

func (r *Runner) collect(result *Result) {
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
