package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/sim"
)

// Experiment ties a config to a ready simulator.
type Experiment struct {
	cfg       *config.Config
	simulator *sim.Simulator
	bodies    []dynamo.Body
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup generates the initial bodies and builds the simulator. Extra
// options are applied after the integrator and default metrics.
func (e *Experiment) Setup(r *Registry, withMetrics bool, opts ...sim.Option) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	simCfg, err := e.cfg.SimConfig()
	if err != nil {
		return err
	}

	gen, err := r.GetScenario(e.cfg.Scenario)
	if err != nil {
		return err
	}
	bodies, err := gen(e.cfg, rand.New(rand.NewSource(e.cfg.Seed)))
	if err != nil {
		return fmt.Errorf("scenario %s: %w", e.cfg.Scenario, err)
	}

	integ, err := r.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}

	all := []sim.Option{sim.WithIntegrator(integ)}
	if withMetrics {
		for _, m := range r.DefaultMetrics(simCfg.G, len(bodies)) {
			all = append(all, sim.WithMetric(m))
		}
	}
	all = append(all, opts...)

	s, err := sim.New(bodies, simCfg, all...)
	if err != nil {
		return err
	}
	e.bodies = bodies
	e.simulator = s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.Dt, e.cfg.Steps)
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// InitialBodies returns the bodies as generated, before any step.
func (e *Experiment) InitialBodies() []dynamo.Body { return e.bodies }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
