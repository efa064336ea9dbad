package gravity

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Field yields the net force on one body of a fixed snapshot. Calls for
// distinct bodies are independent and may run concurrently.
type Field interface {
	ForceOn(i int) (mgl64.Vec2, error)
}

// Force returns the force exerted on mass m1 at p1 by mass m2 at p2:
// G*m1*m2/r² along the unit vector from p1 to p2. Coincident points
// contribute nothing.
func Force(g float64, p1 mgl64.Vec2, m1 float64, p2 mgl64.Vec2, m2 float64) mgl64.Vec2 {
	d := p2.Sub(p1)
	r2 := d.Dot(d)
	if r2 == 0 {
		return mgl64.Vec2{}
	}
	r := math.Sqrt(r2)
	return d.Mul(g * m1 * m2 / (r2 * r))
}

// NetForceNaive sums the pairwise force on body i from every other body.
func NetForceNaive(bodies []dynamo.Body, i int, g float64) mgl64.Vec2 {
	self := &bodies[i]
	var f mgl64.Vec2
	for j := range bodies {
		if j == i {
			continue
		}
		f = f.Add(Force(g, self.Pos, self.Mass, bodies[j].Pos, bodies[j].Mass))
	}
	return f
}

// DirectField evaluates every pair. It is the reference the tree is
// measured against and is cheaper than building a tree for a handful of
// bodies.
type DirectField struct {
	Bodies []dynamo.Body
	G      float64
}

func NewDirectField(bodies []dynamo.Body, g float64) *DirectField {
	return &DirectField{Bodies: bodies, G: g}
}

func (f *DirectField) ForceOn(i int) (mgl64.Vec2, error) {
	return NetForceNaive(f.Bodies, i, f.G), nil
}
