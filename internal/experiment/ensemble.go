package experiment

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/san-kum/pidsim/internal/config"
	"github.com/san-kum/pidsim/internal/loop"
)

// Ensemble runs independent experiments side by side. Every member owns its
// controller and plant, so members share nothing while running.
type Ensemble struct {
	names []string
	cfgs  []*config.Config
	log   *zap.Logger
}

func NewEnsemble(log *zap.Logger) *Ensemble {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ensemble{log: log}
}

func (e *Ensemble) Add(name string, cfg *config.Config) {
	e.names = append(e.names, name)
	e.cfgs = append(e.cfgs, cfg)
}

func (e *Ensemble) Len() int { return len(e.cfgs) }

// Outcome is one member's result, in the order members were added.
type Outcome struct {
	Name   string
	Config config.Config
	Result *loop.Result
}

// Run executes all members concurrently and waits for every one of them.
// The first member error, in insertion order, is returned.
func (e *Ensemble) Run(ctx context.Context) ([]Outcome, error) {
	outcomes := make([]Outcome, len(e.cfgs))
	errs := make([]error, len(e.cfgs))

	var wg sync.WaitGroup
	for i := range e.cfgs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			name := e.names[idx]
			exp, err := New(e.cfgs[idx], e.log.With(zap.String("member", name)))
			if err != nil {
				errs[idx] = fmt.Errorf("%s: %w", name, err)
				return
			}
			res, err := exp.Run(ctx)
			if err != nil {
				errs[idx] = fmt.Errorf("%s: %w", name, err)
			}
			outcomes[idx] = Outcome{Name: name, Config: exp.Config(), Result: res}
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return outcomes, nil
}
