package quadtree

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

// DefaultMaxDepth is the depth at which leaves start merging bodies.
const DefaultMaxDepth = dynamo.DefaultMaxDepth

const (
	noNode = -1
	noBody = -1
)

type nodeKind uint8

const (
	external nodeKind = iota
	internal
)

// Node is one square of the tree. Nodes live in the tree's arena and are
// addressed by index; children are indices, not pointers.
type Node struct {
	bounds   Square
	mass     float64
	com      mgl64.Vec2
	depth    int
	kind     nodeKind
	body     int
	merged   []int
	children [4]int
}

func newLeaf(bounds Square, depth int) Node {
	return Node{
		bounds:   bounds,
		depth:    depth,
		kind:     external,
		body:     noBody,
		children: [4]int{noNode, noNode, noNode, noNode},
	}
}

func (n *Node) Bounds() Square   { return n.bounds }
func (n *Node) Mass() float64    { return n.mass }
func (n *Node) COM() mgl64.Vec2  { return n.com }
func (n *Node) Depth() int       { return n.depth }
func (n *Node) IsLeaf() bool     { return n.kind == external }
func (n *Node) IsInternal() bool { return n.kind == internal }

// Body returns the index of the body held by a leaf.
func (n *Node) Body() (int, bool) {
	return n.body, n.body != noBody
}

// Merged returns the extra bodies aggregated into a leaf at the depth
// cutoff. It is empty everywhere else.
func (n *Node) Merged() []int { return n.merged }

// Bodies returns every body index stored directly in a leaf.
func (n *Node) Bodies() []int {
	if n.body == noBody {
		return nil
	}
	out := make([]int, 0, 1+len(n.merged))
	out = append(out, n.body)
	return append(out, n.merged...)
}

// Child returns the arena index of quadrant q, or -1 when absent.
func (n *Node) Child(q Quadrant) int { return n.children[q] }

func (n *Node) addMass(p mgl64.Vec2, m float64) {
	if n.mass == 0 {
		n.mass, n.com = m, p
		return
	}
	total := n.mass + m
	if total != 0 {
		n.com = n.com.Mul(n.mass).Add(p.Mul(m)).Mul(1 / total)
	}
	n.mass = total
}

// Tree is a Barnes-Hut quadtree over a slice of bodies. It keeps a
// reference to the slice and must be discarded once the bodies move.
type Tree struct {
	bodies       []dynamo.Body
	nodes        []Node
	leafOf       []int
	excluded     int
	mergedLeaves int
	maxDepth     int
}

type Option func(*Tree)

// WithMaxDepth sets the depth below which leaves merge bodies instead of
// splitting.
func WithMaxDepth(d int) Option {
	return func(t *Tree) {
		if d > 0 {
			t.maxDepth = d
		}
	}
}

// New returns a tree with an empty root over bounds.
func New(bodies []dynamo.Body, bounds Square, opts ...Option) *Tree {
	t := &Tree{
		bodies:   bodies,
		nodes:    make([]Node, 1, 1+len(bodies)*2),
		leafOf:   make([]int, len(bodies)),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.nodes[0] = newLeaf(bounds, 0)
	for i := range t.leafOf {
		t.leafOf[i] = noNode
	}
	return t
}

// Build inserts every body inside bounds, in slice order. Bodies outside
// bounds are left out and counted by Excluded.
func Build(bodies []dynamo.Body, bounds Square, opts ...Option) *Tree {
	t := New(bodies, bounds, opts...)
	for i := range bodies {
		t.Insert(i)
	}
	return t
}

// Insert adds body i. It returns false, and leaves the tree untouched, when
// the body lies outside the root square.
func (t *Tree) Insert(i int) bool {
	if t.leafOf[i] != noNode {
		return true
	}
	if !t.nodes[0].bounds.Contains(t.bodies[i].Pos) {
		t.excluded++
		return false
	}
	t.insert(0, i)
	return true
}

func (t *Tree) insert(idx, i int) {
	b := &t.bodies[i]
	n := &t.nodes[idx]

	switch {
	case n.kind == internal:
		n.addMass(b.Pos, b.Mass)
		t.insert(n.children[n.bounds.Quadrant(b.Pos)], i)

	case n.body == noBody:
		n.body = i
		n.mass = b.Mass
		n.com = b.Pos
		t.leafOf[i] = idx

	case n.depth >= t.maxDepth:
		// coincident (or nearly so) bodies share one aggregate leaf
		if len(n.merged) == 0 {
			t.mergedLeaves++
		}
		n.addMass(b.Pos, b.Mass)
		n.merged = append(n.merged, i)
		t.leafOf[i] = idx

	default:
		old := n.body
		n.body = noBody
		n.mass = 0
		n.com = mgl64.Vec2{}
		t.subdivide(idx)
		t.insert(idx, old)
		t.insert(idx, i)
	}
}

func (t *Tree) subdivide(idx int) {
	bounds, depth := t.nodes[idx].bounds, t.nodes[idx].depth
	var kids [4]int
	for _, q := range Quadrants {
		kids[q] = len(t.nodes)
		t.nodes = append(t.nodes, newLeaf(bounds.Child(q), depth+1))
	}
	n := &t.nodes[idx]
	n.kind = internal
	n.children = kids
}

// Root returns the arena index of the root, always 0.
func (t *Tree) Root() int { return 0 }

// Node returns the node at idx. Callers must not keep it across inserts.
func (t *Tree) Node(idx int) *Node { return &t.nodes[idx] }

// Len is the number of nodes in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) Bounds() Square        { return t.nodes[0].bounds }
func (t *Tree) Bodies() []dynamo.Body { return t.bodies }
func (t *Tree) MaxDepth() int         { return t.maxDepth }

// Excluded counts bodies rejected for lying outside the root square.
func (t *Tree) Excluded() int { return t.excluded }

// MergedLeaves counts leaves that aggregate more than one body.
func (t *Tree) MergedLeaves() int { return t.mergedLeaves }

// LeafOf returns the leaf holding body i, or -1 when it was excluded.
func (t *Tree) LeafOf(i int) int { return t.leafOf[i] }

// Contains reports whether body i was inserted.
func (t *Tree) Contains(i int) bool { return t.leafOf[i] != noNode }

// Walk visits nodes depth-first, parents before children. Returning false
// from fn skips the node's subtree.
func (t *Tree) Walk(fn func(idx int, n *Node) bool) {
	t.walk(0, fn)
}

func (t *Tree) walk(idx int, fn func(int, *Node) bool) {
	n := &t.nodes[idx]
	if !fn(idx, n) || n.kind != internal {
		return
	}
	for _, c := range n.children {
		if c != noNode {
			t.walk(c, fn)
		}
	}
}
