package quadtree

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Quadrant names one of the four children of a node.
// The low bit is the x axis and the high bit the y axis; a set bit means
// ">= midpoint". North is the low-y half.
type Quadrant uint8

const (
	NW Quadrant = 0b00
	NE Quadrant = 0b01
	SW Quadrant = 0b10
	SE Quadrant = 0b11
)

// Quadrants lists every quadrant in child order.
var Quadrants = [4]Quadrant{NW, NE, SW, SE}

func (q Quadrant) String() string {
	switch q {
	case NW:
		return "NW"
	case NE:
		return "NE"
	case SW:
		return "SW"
	case SE:
		return "SE"
	}
	return fmt.Sprintf("Quadrant(%d)", uint8(q))
}

// Square is an axis-aligned square region. Origin is the minimum corner.
type Square struct {
	Origin mgl64.Vec2
	Side   float64
}

// NewSquare returns the square of the given side centered on center.
func NewSquare(center mgl64.Vec2, side float64) Square {
	half := side / 2
	return Square{Origin: mgl64.Vec2{center.X() - half, center.Y() - half}, Side: side}
}

func (s Square) Center() mgl64.Vec2 {
	half := s.Side / 2
	return mgl64.Vec2{s.Origin.X() + half, s.Origin.Y() + half}
}

func (s Square) Max() mgl64.Vec2 {
	return mgl64.Vec2{s.Origin.X() + s.Side, s.Origin.Y() + s.Side}
}

// Contains reports whether p lies in the half-open square
// [origin, origin+side) on both axes. The open upper edge matches the
// quadrant tie rule, so a point on a split line always belongs to the
// east or south child.
func (s Square) Contains(p mgl64.Vec2) bool {
	x, y := p.X(), p.Y()
	return s.Origin.X() <= x && x < s.Origin.X()+s.Side &&
		s.Origin.Y() <= y && y < s.Origin.Y()+s.Side
}

// Quadrant returns the child quadrant holding p. Points on the midpoint
// go east and south.
func (s Square) Quadrant(p mgl64.Vec2) Quadrant {
	half := s.Side / 2
	var q Quadrant
	if p.X() >= s.Origin.X()+half {
		q |= NE
	}
	if p.Y() >= s.Origin.Y()+half {
		q |= SW
	}
	return q
}

// Child returns the square of quadrant q.
func (s Square) Child(q Quadrant) Square {
	half := s.Side / 2
	o := s.Origin
	if q&NE != 0 {
		o[0] += half
	}
	if q&SW != 0 {
		o[1] += half
	}
	return Square{Origin: o, Side: half}
}

func (s Square) String() string {
	return fmt.Sprintf("[%.4g, %.4g]+%.4g", s.Origin.X(), s.Origin.Y(), s.Side)
}
