package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

// metersPerPixelAtZoom1 puts 1 AU a hundred pixels from the center.
const metersPerPixelAtZoom1 = dynamo.AU / 100

// Projection maps simulation meters onto canvas sub-pixels. The origin of
// the simulation sits at the canvas center shifted by Center.
type Projection struct {
	Zoom        float64
	PlanetScale float64
	Center      mgl64.Vec2
	W, H        int
}

func NewProjection(w, h int) Projection {
	return Projection{Zoom: 0.5, PlanetScale: 0.2, W: w, H: h}
}

func (p Projection) metersPerPixel() float64 {
	return metersPerPixelAtZoom1 / p.Zoom
}

// ToPixel projects a position. y grows downward on both sides.
func (p Projection) ToPixel(pos mgl64.Vec2) (int, int) {
	d, mpp := pos.Sub(p.Center), p.metersPerPixel()
	return int(math.Floor(d.X()/mpp)) + p.W/2, int(math.Floor(d.Y()/mpp)) + p.H/2
}

// Radius scales a body's display radius to sub-pixels.
func (p Projection) Radius(r float64) int {
	return int(r * p.Zoom * p.PlanetScale)
}

func (p *Projection) ZoomIn()  { p.Zoom = math.Min(1e3, p.Zoom*1.25) }
func (p *Projection) ZoomOut() { p.Zoom = math.Max(1e-4, p.Zoom/1.25) }

// Fit picks a zoom that keeps every finite body on the canvas, centered on
// the heaviest one.
func (p *Projection) Fit(bodies []dynamo.Body) {
	if len(bodies) == 0 {
		return
	}
	heaviest := 0
	for i := range bodies {
		if bodies[i].Mass > bodies[heaviest].Mass {
			heaviest = i
		}
	}
	p.Center = bodies[heaviest].Pos

	reach := 0.0
	for _, b := range bodies {
		if !b.IsValid() {
			continue
		}
		d := b.Pos.Sub(p.Center)
		reach = math.Max(reach, math.Max(math.Abs(d.X()), math.Abs(d.Y())))
	}
	if reach == 0 {
		return
	}
	half := float64(min(p.W, p.H)) / 2 * 0.9
	p.Zoom = metersPerPixelAtZoom1 * half / reach
}
