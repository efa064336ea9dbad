package experiment

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/scenario"
)

// ScenarioFunc builds initial bodies from a config.
type ScenarioFunc func(cfg *config.Config, rng *rand.Rand) ([]dynamo.Body, error)

type Registry struct {
	scenarios   map[string]ScenarioFunc
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		scenarios:   make(map[string]ScenarioFunc),
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.scenarios["solar"] = func(cfg *config.Config, rng *rand.Rand) ([]dynamo.Body, error) {
		return scenario.SolarSystem(rng, cfg.Init.Asteroids), nil
	}
	r.scenarios["disk"] = func(cfg *config.Config, rng *rand.Rand) ([]dynamo.Body, error) {
		in := cfg.Init
		if in.InnerAU <= 0 || in.OuterAU < in.InnerAU {
			return nil, fmt.Errorf("%w: disk radii %g..%g AU", dynamo.ErrInvalidConfig, in.InnerAU, in.OuterAU)
		}
		return scenario.Disk(rng, in.Asteroids, in.CentralMass, in.InnerAU, in.OuterAU), nil
	}
	r.scenarios["binary"] = func(cfg *config.Config, _ *rand.Rand) ([]dynamo.Body, error) {
		in := cfg.Init
		if in.SeparationAU <= 0 {
			return nil, fmt.Errorf("%w: binary separation %g AU", dynamo.ErrInvalidConfig, in.SeparationAU)
		}
		return scenario.Binary(in.MassA, in.MassB, in.SeparationAU), nil
	}
	r.scenarios["custom"] = customBodies

	r.integrators["symplectic-euler"] = func() dynamo.Integrator { return integrators.NewSymplecticEuler() }
	r.integrators["semi-implicit"] = func() dynamo.Integrator { return integrators.NewSymplecticEuler() }
	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }

	return r
}

func (r *Registry) GetScenario(name string) (ScenarioFunc, error) {
	fn, ok := r.scenarios[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario: %s", name)
	}
	return fn, nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListScenarios() []string  { return sortedKeys(r.scenarios) }
func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }

// DefaultMetrics are cheap enough for a few thousand bodies. Energy is
// O(n²) per observation.
func (r *Registry) DefaultMetrics(g float64, n int) []dynamo.Metric {
	ms := []dynamo.Metric{
		metrics.NewMomentumDrift(),
		metrics.NewContainment(mgl64.Vec2{}, 100*dynamo.AU),
	}
	if n <= 2000 {
		ms = append(ms, metrics.NewEnergyDrift(g), metrics.NewEnergy(g))
	}
	return ms
}

func customBodies(cfg *config.Config, _ *rand.Rand) ([]dynamo.Body, error) {
	if len(cfg.Bodies) == 0 {
		return nil, fmt.Errorf("%w: custom scenario has no bodies", dynamo.ErrInvalidConfig)
	}
	bodies := make([]dynamo.Body, 0, len(cfg.Bodies))
	index := make(map[string]int, len(cfg.Bodies))
	for i, bc := range cfg.Bodies {
		c := scenario.White
		if bc.Color != "" {
			var err error
			if c, err = scenario.ParseColor(bc.Color); err != nil {
				return nil, fmt.Errorf("body %d: %w", i, err)
			}
		}
		b := dynamo.Body{
			Name:   bc.Name,
			Pos:    mgl64.Vec2{bc.X * dynamo.AU, bc.Y * dynamo.AU},
			Vel:    mgl64.Vec2{bc.VX, bc.VY},
			Mass:   bc.Mass,
			Radius: bc.Radius,
			Color:  c,
		}
		if bc.Orbit != "" {
			j, ok := index[bc.Orbit]
			if !ok {
				return nil, fmt.Errorf("%w: body %q orbits unknown body %q", dynamo.ErrInvalidConfig, bc.Name, bc.Orbit)
			}
			b.Vel = orbitAround(b.Pos, bodies[j])
		}
		if err := b.Validate(); err != nil {
			return nil, err
		}
		index[bc.Name] = i
		bodies = append(bodies, b)
	}
	return bodies, nil
}

// orbitAround gives a body at p the circular velocity around center,
// counter-clockwise, on top of the center's own velocity.
func orbitAround(p mgl64.Vec2, center dynamo.Body) mgl64.Vec2 {
	d := p.Sub(center.Pos)
	r := d.Len()
	if r == 0 {
		return center.Vel
	}
	speed := scenario.OrbitVelocity(center.Mass, r).Y()
	tangent := mgl64.Vec2{-d.Y() / r, d.X() / r}
	return center.Vel.Add(tangent.Mul(speed))
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
