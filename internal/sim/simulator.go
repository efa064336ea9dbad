package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/compute"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/gravity"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/quadtree"
	"k8s.io/klog/v2"
)

// Simulator advances a set of bodies one fixed step at a time. It is not
// safe for concurrent use.
type Simulator struct {
	cfg        dynamo.Config
	bodies     []dynamo.Body
	forces     []mgl64.Vec2
	integrator dynamo.Integrator
	pool       *compute.Pool

	tree  *quadtree.Tree
	steps int
	time  float64

	metrics        []dynamo.Metric
	observers      []dynamo.Observer
	statsObservers []dynamo.StatsObserver

	newField func() (gravity.Field, *quadtree.Tree)
}

type Option func(*Simulator)

func WithIntegrator(i dynamo.Integrator) Option {
	return func(s *Simulator) { s.integrator = i }
}

func WithMetric(m dynamo.Metric) Option {
	return func(s *Simulator) { s.metrics = append(s.metrics, m) }
}

func WithObserver(o dynamo.Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, o) }
}

func WithStatsObserver(o dynamo.StatsObserver) Option {
	return func(s *Simulator) { s.statsObservers = append(s.statsObservers, o) }
}

// New copies bodies and returns a simulator over them. Every body must have
// a finite state and positive mass.
func New(bodies []dynamo.Body, cfg dynamo.Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for i := range bodies {
		if err := bodies[i].Validate(); err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
	}

	s := &Simulator{
		cfg:        cfg,
		bodies:     dynamo.Clone(bodies),
		forces:     make([]mgl64.Vec2, len(bodies)),
		integrator: integrators.NewSymplecticEuler(),
		pool:       compute.NewPool(cfg.Workers),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.newField = s.buildField
	return s, nil
}

// Bodies returns the live body slice. Callers must not modify it.
func (s *Simulator) Bodies() []dynamo.Body { return s.bodies }

// Tree returns the tree built by the last Barnes-Hut step, or nil. Its node
// aggregates describe the positions before that step moved the bodies.
func (s *Simulator) Tree() *quadtree.Tree { return s.tree }

func (s *Simulator) Steps() int                    { return s.steps }
func (s *Simulator) Time() float64                 { return s.time }
func (s *Simulator) Config() dynamo.Config         { return s.cfg }
func (s *Simulator) Integrator() dynamo.Integrator { return s.integrator }

func (s *Simulator) buildField() (gravity.Field, *quadtree.Tree) {
	if s.cfg.Mode == dynamo.ModeBruteForce {
		return gravity.NewDirectField(s.bodies, s.cfg.G), nil
	}
	bounds := Bounds(s.bodies, s.cfg)
	t := quadtree.Build(s.bodies, bounds, quadtree.WithMaxDepth(s.cfg.MaxDepth))
	return gravity.NewTreeField(t, s.cfg.Theta, s.cfg.G), t
}

// Step advances every body by dt.
func (s *Simulator) Step(dt float64) error {
	return s.StepContext(context.Background(), dt)
}

// StepContext evaluates every net force from the current snapshot, then
// integrates every body. When evaluation fails the step is abandoned with
// a *dynamo.StepError and no body moves.
func (s *Simulator) StepContext(ctx context.Context, dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: dt must be positive and finite, got %g", dynamo.ErrInvalidConfig, dt)
	}
	start := time.Now()

	field, tree := s.newField()
	if tree != nil && s.cfg.ValidateTree {
		if err := tree.Validate(); err != nil {
			return s.abort(err)
		}
	}
	built := time.Now()

	err := s.pool.ForEach(ctx, len(s.bodies), func(ctx context.Context, lo, hi int) error {
		for i := lo; i < hi; i++ {
			f, err := field.ForceOn(i)
			if err != nil {
				return fmt.Errorf("body %d: %w", i, err)
			}
			s.forces[i] = f
		}
		return nil
	})
	if err != nil {
		return s.abort(err)
	}
	evaluated := time.Now()

	// forces are final; bodies may move now
	_ = s.pool.ForEach(context.Background(), len(s.bodies), func(_ context.Context, lo, hi int) error {
		for i := lo; i < hi; i++ {
			s.integrator.Step(&s.bodies[i], s.forces[i], dt)
		}
		return nil
	})

	s.tree = tree
	s.steps++
	s.time += dt

	stats := dynamo.StepStats{
		Step:      s.steps,
		Time:      s.time,
		Mode:      s.cfg.Mode,
		Bodies:    len(s.bodies),
		BuildTime: built.Sub(start),
		ForceTime: evaluated.Sub(built),
		Duration:  time.Since(start),
	}
	if tree != nil {
		stats.Excluded = tree.Excluded()
		stats.Nodes = tree.Len()
		stats.MergedLeaves = tree.MergedLeaves()
	}
	s.publish(stats)
	return nil
}

func (s *Simulator) abort(err error) error {
	klog.ErrorS(err, "Step aborted", "step", s.steps+1, "t", s.time)
	return &dynamo.StepError{Step: s.steps + 1, Time: s.time, Wrapped: err}
}

func (s *Simulator) publish(stats dynamo.StepStats) {
	klog.V(2).InfoS("Step complete", "step", stats.Step, "t", stats.Time, "mode", stats.Mode,
		"nodes", stats.Nodes, "excluded", stats.Excluded, "merged", stats.MergedLeaves, "duration", stats.Duration)
	if klogV := klog.V(3); klogV.Enabled() {
		for i := range s.bodies {
			klogV.InfoS("Body state", "step", stats.Step, "index", i, "body", s.bodies[i].String())
		}
	}
	if stats.Excluded > 0 {
		klog.V(1).InfoS("Bodies outside root square", "step", stats.Step, "excluded", stats.Excluded)
	}

	for _, o := range s.statsObservers {
		o.OnStats(stats)
	}
	for _, o := range s.observers {
		o.OnStep(s.bodies, s.time)
	}
}

// Run takes steps of dt until steps have completed or ctx is done. The
// returned result is valid up to the last completed step even on error.
func (s *Simulator) Run(ctx context.Context, dt float64, steps int) (*dynamo.Result, error) {
	if steps < 0 {
		return nil, fmt.Errorf("%w: steps must be >= 0, got %d", dynamo.ErrInvalidConfig, steps)
	}

	result := &dynamo.Result{
		Metrics: make(map[string]float64),
		Stats:   make([]dynamo.StepStats, 0, steps),
	}
	collect := statsFunc(func(st dynamo.StepStats) { result.Stats = append(result.Stats, st) })
	s.statsObservers = append(s.statsObservers, collect)
	defer func() { s.statsObservers = s.statsObservers[:len(s.statsObservers)-1] }()

	for _, m := range s.metrics {
		m.Reset()
		m.Observe(s.bodies, s.time)
	}
	for _, o := range s.observers {
		o.OnStep(s.bodies, s.time)
	}

	klog.V(1).InfoS("Run started", "bodies", len(s.bodies), "steps", steps, "dt", dt,
		"mode", s.cfg.Mode, "theta", s.cfg.Theta, "integrator", s.integrator.Name())

	var runErr error
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if err := s.StepContext(ctx, dt); err != nil {
			runErr = err
			break
		}
		if s.cfg.ValidateState {
			if err := s.checkState(); err != nil {
				runErr = &dynamo.StepError{Step: s.steps, Time: s.time, Wrapped: err}
				break
			}
		}
		for _, m := range s.metrics {
			m.Observe(s.bodies, s.time)
		}
		result.Steps++
	}

	result.Time = s.time
	result.Bodies = dynamo.Clone(s.bodies)
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, runErr
}

func (s *Simulator) checkState() error {
	for i := range s.bodies {
		if !s.bodies[i].IsValid() {
			return fmt.Errorf("%w: body %d (%s)", dynamo.ErrInvalidState, i, s.bodies[i].Name)
		}
	}
	return nil
}

type statsFunc func(dynamo.StepStats)

func (f statsFunc) OnStats(st dynamo.StepStats) { f(st) }
