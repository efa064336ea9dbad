package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/quadtree"
)

// MinSide is the root square side used when every body sits on one point.
const MinSide = 1.0

// Bounds returns the root square for one step under cfg's policy.
func Bounds(bodies []dynamo.Body, cfg dynamo.Config) quadtree.Square {
	if cfg.Bounds == dynamo.BoundsFixed {
		return quadtree.NewSquare(mgl64.Vec2{}, 2*cfg.HalfWidth)
	}
	return AutoBounds(bodies, cfg.Padding)
}

// AutoBounds returns the smallest square centered on the bounding box of
// all finite positions, grown by padding on every side.
func AutoBounds(bodies []dynamo.Body, padding float64) quadtree.Square {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range bodies {
		p := bodies[i].Pos
		if !bodies[i].IsValid() {
			continue
		}
		minX, maxX = math.Min(minX, p.X()), math.Max(maxX, p.X())
		minY, maxY = math.Min(minY, p.Y()), math.Max(maxY, p.Y())
	}
	if minX > maxX {
		return quadtree.NewSquare(mgl64.Vec2{}, MinSide)
	}

	center := mgl64.Vec2{(minX + maxX) / 2, (minY + maxY) / 2}
	side := math.Max(maxX-minX, maxY-minY) * (1 + 2*padding)
	if side < MinSide {
		side = MinSide
	}
	sq := quadtree.NewSquare(center, side)
	// Far from the origin the rounded edges can land on the extreme bodies.
	for !covers(sq, bodies) && !math.IsInf(side, 0) {
		side *= 2
		sq = quadtree.NewSquare(center, side)
	}
	return sq
}

func covers(sq quadtree.Square, bodies []dynamo.Body) bool {
	for i := range bodies {
		if bodies[i].IsValid() && !sq.Contains(bodies[i].Pos) {
			return false
		}
	}
	return true
}
