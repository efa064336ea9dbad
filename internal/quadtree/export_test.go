package quadtree

// DropChild detaches quadrant q of node idx so tests can exercise the
// structural checks.
func (t *Tree) DropChild(idx int, q Quadrant) {
	t.nodes[idx].children[q] = noNode
}

// SetMass overwrites a node's aggregate mass.
func (t *Tree) SetMass(idx int, m float64) {
	t.nodes[idx].mass = m
}
