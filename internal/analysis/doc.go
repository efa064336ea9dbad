// Package analysis provides post-run orbit analysis tools.
//
//   - [OrbitalPeriod]: period of a body from its sampled track, via FFT
//   - [OrbitalElements]: two-body semi-major axis, eccentricity and period
//   - [Divergence]: finite-time Lyapunov exponent from two nearby runs
//
// # Checking a run
//
// The FFT period of a planet should match its Kepler period when the
// integrator and force approximation are doing their job:
//
//	measured, _ := analysis.OrbitalPeriod(earth, sun, frameDt)
//	kepler := analysis.OrbitalElements(bodies[1], bodies[0], dynamo.G).Period
package analysis
