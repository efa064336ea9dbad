package quadtree

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

const validateTol = 1e-9

// Validate checks every structural invariant of the tree and returns an
// error wrapping dynamo.ErrStructural for the first violation found.
func (t *Tree) Validate() error {
	if len(t.nodes) == 0 {
		return fmt.Errorf("%w: empty arena", dynamo.ErrStructural)
	}
	seen := 0
	if _, _, err := t.validate(0, &seen); err != nil {
		return err
	}
	if seen != len(t.nodes) {
		return fmt.Errorf("%w: %d of %d nodes reachable from root", dynamo.ErrStructural, seen, len(t.nodes))
	}
	for i, leaf := range t.leafOf {
		if leaf == noNode {
			continue
		}
		if !t.nodes[leaf].holds(i) {
			return fmt.Errorf("%w: body %d maps to node %d which does not hold it", dynamo.ErrStructural, i, leaf)
		}
	}
	return nil
}

// validate returns the subtree's mass and mass-weighted position sum.
func (t *Tree) validate(idx int, seen *int) (float64, mgl64.Vec2, error) {
	if idx < 0 || idx >= len(t.nodes) {
		return 0, mgl64.Vec2{}, fmt.Errorf("%w: node index %d out of range", dynamo.ErrStructural, idx)
	}
	*seen++
	n := &t.nodes[idx]

	var mass float64
	var moment mgl64.Vec2

	if n.kind == internal {
		if n.body != noBody || len(n.merged) > 0 {
			return 0, mgl64.Vec2{}, fmt.Errorf("%w: internal node %d holds a body", dynamo.ErrStructural, idx)
		}
		for _, q := range Quadrants {
			c := n.children[q]
			if c == noNode {
				return 0, mgl64.Vec2{}, fmt.Errorf("%w: internal node %d missing %s child", dynamo.ErrStructural, idx, q)
			}
			if c <= idx || c >= len(t.nodes) {
				return 0, mgl64.Vec2{}, fmt.Errorf("%w: node %d has bad %s child %d", dynamo.ErrStructural, idx, q, c)
			}
			child := &t.nodes[c]
			if child.bounds != n.bounds.Child(q) {
				return 0, mgl64.Vec2{}, fmt.Errorf("%w: node %d %s child bounds %v, want %v",
					dynamo.ErrStructural, idx, q, child.bounds, n.bounds.Child(q))
			}
			if child.depth != n.depth+1 {
				return 0, mgl64.Vec2{}, fmt.Errorf("%w: node %d depth %d under parent depth %d", dynamo.ErrStructural, c, child.depth, n.depth)
			}
			m, mom, err := t.validate(c, seen)
			if err != nil {
				return 0, mgl64.Vec2{}, err
			}
			mass += m
			moment = moment.Add(mom)
		}
	} else {
		for _, c := range n.children {
			if c != noNode {
				return 0, mgl64.Vec2{}, fmt.Errorf("%w: leaf %d has children", dynamo.ErrStructural, idx)
			}
		}
		if n.body == noBody && len(n.merged) > 0 {
			return 0, mgl64.Vec2{}, fmt.Errorf("%w: empty leaf %d has merged bodies", dynamo.ErrStructural, idx)
		}
		if len(n.merged) > 0 && n.depth < t.maxDepth {
			return 0, mgl64.Vec2{}, fmt.Errorf("%w: leaf %d merged bodies above max depth", dynamo.ErrStructural, idx)
		}
		for _, i := range n.Bodies() {
			b := t.bodies[i]
			mass += b.Mass
			moment = moment.Add(b.Pos.Mul(b.Mass))
		}
	}

	if !closeTo(n.mass, mass, validateTol*math.Abs(mass)) {
		return 0, mgl64.Vec2{}, fmt.Errorf("%w: node %d mass %g, subtree holds %g", dynamo.ErrStructural, idx, n.mass, mass)
	}
	if mass > 0 {
		want := moment.Mul(1 / mass)
		tol := validateTol * (want.Len() + n.bounds.Side)
		if !closeTo(n.com.X(), want.X(), tol) || !closeTo(n.com.Y(), want.Y(), tol) {
			return 0, mgl64.Vec2{}, fmt.Errorf("%w: node %d center of mass %v, subtree centroid %v", dynamo.ErrStructural, idx, n.com, want)
		}
	}
	return mass, moment, nil
}

func (n *Node) holds(i int) bool {
	if n.kind != external {
		return false
	}
	if n.body == i {
		return true
	}
	for _, m := range n.merged {
		if m == i {
			return true
		}
	}
	return false
}

func closeTo(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
