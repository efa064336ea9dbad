package analysis

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/sim"
)

// Divergence estimates the finite-time Lyapunov exponent of a body set.
//
// Algorithm:
// 1. Run the bodies and a copy with one body nudged along x
// 2. Measure the position separation of the two runs after every step
// 3. λ ≈ mean over steps of ln(|δ(t)|/|δ(0)|) / t
func Divergence(bodies []dynamo.Body, cfg dynamo.Config, dt float64, steps, body int, perturbation float64, opts ...sim.Option) (float64, error) {
	if body < 0 || body >= len(bodies) {
		return 0, fmt.Errorf("%w: body %d out of range", dynamo.ErrInvalidConfig, body)
	}
	if perturbation <= 0 {
		return 0, fmt.Errorf("%w: perturbation must be positive", dynamo.ErrInvalidConfig)
	}

	nudged := dynamo.Clone(bodies)
	nudged[body].Pos = nudged[body].Pos.Add(mgl64.Vec2{perturbation, 0})

	a, err := sim.New(bodies, cfg, opts...)
	if err != nil {
		return 0, err
	}
	b, err := sim.New(nudged, cfg, opts...)
	if err != nil {
		return 0, err
	}

	sumRate := 0.0
	count := 0
	for i := 0; i < steps; i++ {
		if err := a.Step(dt); err != nil {
			return 0, err
		}
		if err := b.Step(dt); err != nil {
			return 0, err
		}

		sep := separation(a.Bodies(), b.Bodies())
		if sep > 0 {
			sumRate += math.Log(sep/perturbation) / a.Time()
			count++
		}
	}

	if count == 0 {
		return 0, nil
	}
	return sumRate / float64(count), nil
}

func separation(a, b []dynamo.Body) float64 {
	sum := 0.0
	for i := range a {
		d := a[i].Pos.Sub(b[i].Pos)
		sum += d.Dot(d)
	}
	return math.Sqrt(sum)
}
