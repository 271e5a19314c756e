package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/pidsim/internal/config"
	"github.com/san-kum/pidsim/internal/loop"
	"github.com/san-kum/pidsim/internal/metrics"
	"github.com/san-kum/pidsim/internal/pid"
	"github.com/san-kum/pidsim/internal/plant"
)

// Experiment is one configured closed loop: a fresh controller, a fresh
// plant and the default metrics.
type Experiment struct {
	cfg    config.Config
	ctrl   *pid.Controller
	plant  plant.Plant
	runner *loop.Runner
	terms  *TermRecorder
}

func New(cfg *config.Config, log *zap.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid experiment: %w", err)
	}

	p, err := plant.ByName(cfg.Plant, cfg.PlantParams())
	if err != nil {
		return nil, err
	}
	ctrl := pid.NewWithGains(cfg.Gains, pid.WithOrigin(cfg.Origin))

	runner := loop.New(ctrl, p)
	runner.SetLogger(log)
	for _, m := range metrics.Default(cfg.Tolerance) {
		runner.AddMetric(m)
	}

	terms := &TermRecorder{ctrl: ctrl}
	runner.AddObserver(terms)

	return &Experiment{
		cfg:    *cfg,
		ctrl:   ctrl,
		plant:  p,
		runner: runner,
		terms:  terms,
	}, nil
}

func (e *Experiment) Run(ctx context.Context) (*loop.Result, error) {
	return e.runner.Run(ctx, e.cfg.Loop())
}

func (e *Experiment) Config() config.Config       { return e.cfg }
func (e *Experiment) Controller() *pid.Controller { return e.ctrl }
func (e *Experiment) Plant() plant.Plant          { return e.plant }

// Runner returns the underlying runner for adding observers.
func (e *Experiment) Runner() *loop.Runner { return e.runner }

// Terms returns the controller state captured after every sample.
func (e *Experiment) Terms() []pid.State { return e.terms.States }

// TermRecorder snapshots a controller after every loop sample.
type TermRecorder struct {
	ctrl   *pid.Controller
	States []pid.State
}

func NewTermRecorder(ctrl *pid.Controller) *TermRecorder {
	return &TermRecorder{ctrl: ctrl}
}

func (r *TermRecorder) OnStep(loop.Sample) {
	r.States = append(r.States, r.ctrl.Snapshot())
}
