package integrators

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

// SymplecticEuler updates velocity first and then moves with the new
// velocity. It keeps orbits bounded over long runs where plain Euler
// spirals outward.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (SymplecticEuler) Name() string { return "symplectic-euler" }

func (SymplecticEuler) Step(b *dynamo.Body, force mgl64.Vec2, dt float64) {
	acc := force.Mul(1 / b.Mass)
	b.Vel = b.Vel.Add(acc.Mul(dt))
	b.Pos = b.Pos.Add(b.Vel.Mul(dt))
}

// Euler is the explicit first-order method: position moves with the old
// velocity. Kept for comparison runs.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (Euler) Name() string { return "euler" }

func (Euler) Step(b *dynamo.Body, force mgl64.Vec2, dt float64) {
	acc := force.Mul(1 / b.Mass)
	b.Pos = b.Pos.Add(b.Vel.Mul(dt))
	b.Vel = b.Vel.Add(acc.Mul(dt))
}
