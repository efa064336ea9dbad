// Package scenario builds initial conditions.
//
// Every generator takes its randomness from the *rand.Rand it is given, so
// a seed reproduces a scenario exactly. Positions are in meters and
// velocities in m/s; the helpers accept distances in AU where that reads
// better.
package scenario
