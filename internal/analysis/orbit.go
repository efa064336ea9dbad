package analysis

import (
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Elements are the osculating two-body orbital elements of a body around a
// central one.
type Elements struct {
	SemiMajorAxis float64
	Eccentricity  float64
	// Period is the Kepler period, +Inf for unbound orbits.
	Period float64
	Bound  bool
}

// OrbitalElements treats body and central as an isolated pair.
func OrbitalElements(body, central dynamo.Body, g float64) Elements {
	r := body.Pos.Sub(central.Pos)
	v := body.Vel.Sub(central.Vel)
	mu := g * (body.Mass + central.Mass)

	dist := r.Len()
	if dist == 0 {
		return Elements{Period: math.Inf(1)}
	}
	v2 := v.Dot(v)
	energy := v2/2 - mu/dist

	// eccentricity vector: ((v²-µ/r) r - (r·v) v) / µ
	ev := r.Mul(v2 - mu/dist).Sub(v.Mul(r.Dot(v))).Mul(1 / mu)
	el := Elements{Eccentricity: ev.Len(), Period: math.Inf(1)}
	if energy < 0 {
		el.Bound = true
		el.SemiMajorAxis = -mu / (2 * energy)
		el.Period = 2 * math.Pi * math.Sqrt(el.SemiMajorAxis*el.SemiMajorAxis*el.SemiMajorAxis/mu)
	} else {
		el.SemiMajorAxis = math.Inf(1)
	}
	return el
}
