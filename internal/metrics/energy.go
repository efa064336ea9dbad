package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

// TotalEnergy returns the kinetic and pairwise potential energy of bodies.
// Coincident pairs are skipped, as they are by the force law.
func TotalEnergy(bodies []dynamo.Body, g float64) (kinetic, potential float64) {
	for i := range bodies {
		v := bodies[i].Vel
		kinetic += 0.5 * bodies[i].Mass * v.Dot(v)
		for j := i + 1; j < len(bodies); j++ {
			r := bodies[j].Pos.Sub(bodies[i].Pos).Len()
			if r == 0 {
				continue
			}
			potential -= g * bodies[i].Mass * bodies[j].Mass / r
		}
	}
	return kinetic, potential
}

// Momentum returns the total linear momentum of bodies.
func Momentum(bodies []dynamo.Body) mgl64.Vec2 {
	var p mgl64.Vec2
	for i := range bodies {
		p = p.Add(bodies[i].Vel.Mul(bodies[i].Mass))
	}
	return p
}

type Energy struct {
	name        string
	g           float64
	samples     int
	totalEnergy float64
}

// NewEnergy averages total energy over every observation.
func NewEnergy(g float64) *Energy {
	return &Energy{name: "energy", g: g}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(bodies []dynamo.Body, t float64) {
	ke, pe := TotalEnergy(bodies, e.g)
	e.totalEnergy += ke + pe
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative departure of total energy from
// its first observed value.
type EnergyDrift struct {
	name          string
	g             float64
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(g float64) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", g: g}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(bodies []dynamo.Body, t float64) {
	ke, pe := TotalEnergy(bodies, e.g)
	energy := ke + pe

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

// Current is the latest total energy.
func (e *EnergyDrift) Current() float64 { return e.currentEnergy }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift tracks the largest change of total momentum, relative to
// the sum of individual momentum magnitudes at the first observation.
// The Barnes-Hut approximation breaks pairwise symmetry, so this grows
// with theta where brute force keeps it near rounding level.
type MomentumDrift struct {
	name     string
	initial  mgl64.Vec2
	scale    float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(bodies []dynamo.Body, t float64) {
	p := Momentum(bodies)
	if m.samples == 0 {
		m.initial = p
		for i := range bodies {
			m.scale += bodies[i].Vel.Len() * bodies[i].Mass
		}
	}
	m.samples++
	if m.scale > 0 {
		m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Len()/m.scale)
	}
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = mgl64.Vec2{}
	m.scale = 0
	m.maxDrift = 0
	m.samples = 0
}
