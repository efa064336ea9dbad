// Package dynamo provides the shared primitives of the gravity simulator.
//
// The package defines the types every other package exchanges:
//
//   - [Body]: mutable point mass (position, velocity, mass, display radius and color)
//   - [Config]: opening angle, evaluator mode, bounds policy and worker count
//   - [Integrator]: advances one body given its net force
//   - [Observer], [StatsObserver], [Metric]: hooks fed after every step
//
// Vectors are [mgl64.Vec2] values in SI units (meters, m/s, newtons).
//
// # Example
//
//	cfg := dynamo.DefaultConfig()
//	cfg.Theta = 0.3
//	s, _ := sim.New(bodies, cfg)
//	_ = s.Step(3600)
//
// # Errors
//
// Failures wrap one of the sentinel errors ([ErrStructural], [ErrInvalidBody],
// [ErrInvalidState], [ErrInvalidConfig]); step failures arrive as [*StepError].
package dynamo
