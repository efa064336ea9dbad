package quadtree_test

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/gravity"
	"github.com/san-kum/orbitsim/internal/quadtree"
)

func randomBodies(rng *rand.Rand, n int, half float64) []dynamo.Body {
	bodies := make([]dynamo.Body, n)
	for i := range bodies {
		bodies[i] = dynamo.Body{
			Pos:  mgl64.Vec2{(rng.Float64()*2 - 1) * half, (rng.Float64()*2 - 1) * half},
			Mass: 1 + rng.Float64()*99,
		}
	}
	return bodies
}

type aggregate struct {
	mass float64
	com  mgl64.Vec2
}

// aggregates keys every node by its square, which does not depend on the
// arena layout.
func aggregates(t *quadtree.Tree) map[quadtree.Square]aggregate {
	out := make(map[quadtree.Square]aggregate)
	t.Walk(func(_ int, n *quadtree.Node) bool {
		out[n.Bounds()] = aggregate{mass: n.Mass(), com: n.COM()}
		return true
	})
	return out
}

// subtreeBodies collects the bodies below idx.
func subtreeBodies(t *quadtree.Tree, idx int) []int {
	var out []int
	var visit func(int)
	visit = func(i int) {
		n := t.Node(i)
		if n.IsLeaf() {
			out = append(out, n.Bodies()...)
			return
		}
		for _, q := range quadtree.Quadrants {
			visit(n.Child(q))
		}
	}
	visit(idx)
	return out
}

var _ = Describe("Tree", func() {
	var (
		rng    *rand.Rand
		bounds quadtree.Square
	)

	BeforeEach(func() {
		rng = rand.New(rand.NewSource(7))
		bounds = quadtree.NewSquare(mgl64.Vec2{}, 200)
	})

	Describe("construction", func() {
		It("starts as an empty leaf", func() {
			t := quadtree.New(nil, bounds)
			root := t.Node(t.Root())
			Expect(root.IsLeaf()).To(BeTrue())
			Expect(root.Mass()).To(BeZero())
			_, ok := root.Body()
			Expect(ok).To(BeFalse())
			Expect(t.Len()).To(Equal(1))
		})

		It("stores a single body in the root leaf", func() {
			bodies := []dynamo.Body{{Pos: mgl64.Vec2{3, 4}, Mass: 5}}
			t := quadtree.Build(bodies, bounds)
			root := t.Node(t.Root())
			Expect(root.IsLeaf()).To(BeTrue())
			Expect(root.Mass()).To(Equal(5.0))
			Expect(root.COM()).To(Equal(mgl64.Vec2{3, 4}))
			j, ok := root.Body()
			Expect(ok).To(BeTrue())
			Expect(j).To(Equal(0))
		})

		It("subdivides when a second body arrives", func() {
			bodies := []dynamo.Body{
				{Pos: mgl64.Vec2{-50, -50}, Mass: 1},
				{Pos: mgl64.Vec2{50, 50}, Mass: 3},
			}
			t := quadtree.Build(bodies, bounds)
			root := t.Node(t.Root())
			Expect(root.IsInternal()).To(BeTrue())
			_, holds := root.Body()
			Expect(holds).To(BeFalse())
			Expect(t.Len()).To(Equal(5))
			Expect(root.Mass()).To(Equal(4.0))
			Expect(root.COM().X()).To(BeNumerically("~", 25, 1e-12))
			Expect(root.COM().Y()).To(BeNumerically("~", 25, 1e-12))

			nw := t.Node(root.Child(quadtree.NW))
			se := t.Node(root.Child(quadtree.SE))
			Expect(nw.Bodies()).To(ConsistOf(0))
			Expect(se.Bodies()).To(ConsistOf(1))
			Expect(t.Node(root.Child(quadtree.NE)).Mass()).To(BeZero())
			Expect(t.Validate()).To(Succeed())
		})

		It("sends bodies on a split line east and south", func() {
			bodies := []dynamo.Body{
				{Pos: mgl64.Vec2{0, 0}, Mass: 1},
				{Pos: mgl64.Vec2{-10, -10}, Mass: 1},
			}
			t := quadtree.Build(bodies, bounds)
			Expect(t.Node(t.LeafOf(0)).Bounds()).To(Equal(bounds.Child(quadtree.SE)))
		})
	})

	Describe("aggregates", func() {
		It("sums every body mass at the root", func() {
			bodies := randomBodies(rng, 500, 99)
			t := quadtree.Build(bodies, bounds)

			total := 0.0
			for _, b := range bodies {
				total += b.Mass
			}
			Expect(t.Excluded()).To(BeZero())
			Expect(t.Node(t.Root()).Mass()).To(BeNumerically("~", total, total*1e-12))
			Expect(t.Validate()).To(Succeed())
		})

		It("keeps each internal center of mass at its subtree centroid", func() {
			bodies := randomBodies(rng, 200, 99)
			t := quadtree.Build(bodies, bounds)

			t.Walk(func(idx int, n *quadtree.Node) bool {
				if !n.IsInternal() {
					return true
				}
				var m float64
				var moment mgl64.Vec2
				for _, i := range subtreeBodies(t, idx) {
					m += bodies[i].Mass
					moment = moment.Add(bodies[i].Pos.Mul(bodies[i].Mass))
				}
				want := moment.Mul(1 / m)
				Expect(n.Mass()).To(BeNumerically("~", m, m*1e-12))
				Expect(n.COM().X()).To(BeNumerically("~", want.X(), 1e-9))
				Expect(n.COM().Y()).To(BeNumerically("~", want.Y(), 1e-9))
				return true
			})
		})

		It("does not depend on insertion order", func() {
			bodies := randomBodies(rng, 300, 99)
			reference := aggregates(quadtree.Build(bodies, bounds))

			for trial := 0; trial < 5; trial++ {
				order := rng.Perm(len(bodies))
				t := quadtree.New(bodies, bounds)
				for _, i := range order {
					Expect(t.Insert(i)).To(BeTrue())
				}
				Expect(t.Validate()).To(Succeed())

				got := aggregates(t)
				Expect(got).To(HaveLen(len(reference)))
				for sq, want := range reference {
					Expect(got).To(HaveKey(sq))
					Expect(got[sq].mass).To(BeNumerically("~", want.mass, 1e-9))
					Expect(got[sq].com.X()).To(BeNumerically("~", want.com.X(), 1e-9))
					Expect(got[sq].com.Y()).To(BeNumerically("~", want.com.Y(), 1e-9))
				}
			}
		})
	})

	Describe("out of bounds bodies", func() {
		It("leaves them out and counts them", func() {
			bodies := []dynamo.Body{
				{Pos: mgl64.Vec2{10, 10}, Mass: 1},
				{Pos: mgl64.Vec2{500, 0}, Mass: 1e9},
				{Pos: mgl64.Vec2{100, 0}, Mass: 1},
			}
			t := quadtree.Build(bodies, bounds)
			Expect(t.Excluded()).To(Equal(2))
			Expect(t.Contains(0)).To(BeTrue())
			Expect(t.Contains(1)).To(BeFalse())
			Expect(t.LeafOf(2)).To(Equal(-1))
			Expect(t.Node(t.Root()).Mass()).To(Equal(1.0))
		})
	})

	Describe("coincident bodies", func() {
		It("merges them at the depth cutoff instead of recursing forever", func() {
			p := mgl64.Vec2{12.5, -7.25}
			bodies := []dynamo.Body{
				{Pos: p, Mass: 2},
				{Pos: p, Mass: 3},
				{Pos: p, Mass: 5},
				{Pos: mgl64.Vec2{-60, 60}, Mass: 1},
			}
			t := quadtree.Build(bodies, bounds, quadtree.WithMaxDepth(12))

			Expect(t.MergedLeaves()).To(Equal(1))
			leaf := t.Node(t.LeafOf(0))
			Expect(t.LeafOf(1)).To(Equal(t.LeafOf(0)))
			Expect(t.LeafOf(2)).To(Equal(t.LeafOf(0)))
			Expect(leaf.Depth()).To(Equal(12))
			Expect(leaf.Bodies()).To(ConsistOf(0, 1, 2))
			Expect(leaf.Mass()).To(Equal(10.0))
			Expect(leaf.COM().X()).To(BeNumerically("~", p.X(), 1e-12))
			Expect(t.Node(t.Root()).Mass()).To(Equal(11.0))
			Expect(t.Validate()).To(Succeed())
		})

		It("uses the default depth when none is given", func() {
			bodies := []dynamo.Body{
				{Pos: mgl64.Vec2{1, 1}, Mass: 1},
				{Pos: mgl64.Vec2{1, 1}, Mass: 1},
			}
			t := quadtree.Build(bodies, bounds)
			Expect(t.MaxDepth()).To(Equal(quadtree.DefaultMaxDepth))
			Expect(t.Node(t.LeafOf(1)).Depth()).To(Equal(quadtree.DefaultMaxDepth))
		})
	})

	Describe("structural checks", func() {
		var t *quadtree.Tree

		BeforeEach(func() {
			t = quadtree.Build(randomBodies(rng, 50, 99), bounds)
			Expect(t.Validate()).To(Succeed())
		})

		It("reports an internal node without all four children", func() {
			t.DropChild(t.Root(), quadtree.SW)
			Expect(t.Validate()).To(MatchError(dynamo.ErrStructural))
		})

		It("reports a corrupted aggregate mass", func() {
			t.SetMass(t.Root(), 1)
			Expect(t.Validate()).To(MatchError(dynamo.ErrStructural))
		})

		It("aborts force evaluation on a missing child", func() {
			t.DropChild(t.Root(), quadtree.NE)
			_, err := gravity.NetForce(t, 0, 0, dynamo.G)
			Expect(err).To(MatchError(dynamo.ErrStructural))
		})
	})

	Describe("Walk", func() {
		It("visits every node once and can prune subtrees", func() {
			t := quadtree.Build(randomBodies(rng, 64, 99), bounds)
			visited := 0
			t.Walk(func(int, *quadtree.Node) bool {
				visited++
				return true
			})
			Expect(visited).To(Equal(t.Len()))

			visited = 0
			t.Walk(func(idx int, _ *quadtree.Node) bool {
				visited++
				return idx != t.Root()
			})
			Expect(visited).To(Equal(1))
		})
	})
})
