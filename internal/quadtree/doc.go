// Package quadtree implements the spatial tree behind the Barnes-Hut
// approximation.
//
// A [Tree] partitions a fixed [Square] into four equal quadrants
// recursively. Every node carries the total mass and center of mass of the
// bodies below it, updated incrementally on each insert. Nodes live in a
// flat arena and refer to their children by index.
//
// # Boundaries
//
// Squares are half-open: a point belongs to a square when
// origin <= p < origin+side on both axes. Points exactly on a split line go
// to the east or south child. Bodies outside the root square are not
// inserted.
//
// # Coincident bodies
//
// Two bodies at the same position would split forever. Leaves at
// [DefaultMaxDepth] (or the depth set with [WithMaxDepth]) stop splitting
// and aggregate further bodies into one point mass instead.
package quadtree
