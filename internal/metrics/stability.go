package metrics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Containment is the fraction of observations in which every body stayed
// within radius of center.
type Containment struct {
	name       string
	center     mgl64.Vec2
	radius     float64
	violations int
	samples    int
}

func NewContainment(center mgl64.Vec2, radius float64) *Containment {
	return &Containment{
		name:   "containment",
		center: center,
		radius: radius,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(bodies []dynamo.Body, t float64) {
	c.samples++
	r2 := c.radius * c.radius
	for i := range bodies {
		d := bodies[i].Pos.Sub(c.center)
		if d.Dot(d) > r2 {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
