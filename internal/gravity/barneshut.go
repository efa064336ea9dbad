package gravity

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/quadtree"
)

// TreeField evaluates forces by walking a quadtree with opening angle Theta.
type TreeField struct {
	Tree  *quadtree.Tree
	Theta float64
	G     float64
}

func NewTreeField(t *quadtree.Tree, theta, g float64) *TreeField {
	return &TreeField{Tree: t, Theta: theta, G: g}
}

func (f *TreeField) ForceOn(i int) (mgl64.Vec2, error) {
	return NetForce(f.Tree, i, f.Theta, f.G)
}

// NetForce returns the Barnes-Hut approximation of the net force on body
// i. A node of side s at distance d from the body is used as a single point
// mass when s/d < theta. Bodies that are not in the tree receive nothing.
func NetForce(t *quadtree.Tree, i int, theta, g float64) (mgl64.Vec2, error) {
	if !t.Contains(i) {
		return mgl64.Vec2{}, nil
	}
	w := walker{tree: t, self: i, pos: t.Bodies()[i].Pos, mass: t.Bodies()[i].Mass, theta: theta, g: g}
	return w.force(t.Root())
}

type walker struct {
	tree  *quadtree.Tree
	self  int
	pos   mgl64.Vec2
	mass  float64
	theta float64
	g     float64
}

func (w *walker) force(idx int) (mgl64.Vec2, error) {
	n := w.tree.Node(idx)
	if n.IsLeaf() {
		return w.leaf(idx, n), nil
	}

	d := n.COM().Sub(w.pos).Len()
	if d == 0 {
		return mgl64.Vec2{}, nil
	}
	if n.Bounds().Side/d < w.theta {
		return Force(w.g, w.pos, w.mass, n.COM(), n.Mass()), nil
	}

	var sum mgl64.Vec2
	for _, q := range quadtree.Quadrants {
		c := n.Child(q)
		if c < 0 {
			return mgl64.Vec2{}, fmt.Errorf("%w: internal node %d missing %s child", dynamo.ErrStructural, idx, q)
		}
		f, err := w.force(c)
		if err != nil {
			return mgl64.Vec2{}, err
		}
		sum = sum.Add(f)
	}
	return sum, nil
}

func (w *walker) leaf(idx int, n *quadtree.Node) mgl64.Vec2 {
	j, ok := n.Body()
	if !ok {
		return mgl64.Vec2{}
	}
	if len(n.Merged()) == 0 {
		if j == w.self {
			return mgl64.Vec2{}
		}
		other := &w.tree.Bodies()[j]
		return Force(w.g, w.pos, w.mass, other.Pos, other.Mass)
	}

	// merged leaf holding self: take its mates one by one so that
	// coincident mates contribute exactly zero
	if w.tree.LeafOf(w.self) == idx {
		var sum mgl64.Vec2
		for _, k := range n.Bodies() {
			if k == w.self {
				continue
			}
			other := &w.tree.Bodies()[k]
			sum = sum.Add(Force(w.g, w.pos, w.mass, other.Pos, other.Mass))
		}
		return sum
	}
	return Force(w.g, w.pos, w.mass, n.COM(), n.Mass())
}
