package dynamo

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// G is the gravitational constant in m³/(kg·s²).
const G = 6.67430e-11

// AU is the distance unit used by the built-in scenarios, in meters.
const AU = 1.5e11

// DefaultMaxDepth bounds quadtree subdivision. A float64 square stops
// producing distinct midpoints a few levels past 50, so 48 keeps every level
// usable.
const DefaultMaxDepth = 48

// Body is a point mass. Radius and Color are carried for renderers only.
type Body struct {
	Name   string
	Pos    mgl64.Vec2
	Vel    mgl64.Vec2
	Mass   float64
	Radius float64
	Color  color.RGBA
}

// Validate reports whether b can take part in a simulation.
func (b Body) Validate() error {
	if !finite(b.Pos) || !finite(b.Vel) {
		return fmt.Errorf("%w: %q has non-finite position or velocity", ErrInvalidBody, b.Name)
	}
	if math.IsNaN(b.Mass) || math.IsInf(b.Mass, 0) || b.Mass <= 0 {
		return fmt.Errorf("%w: %q has mass %g", ErrInvalidBody, b.Name, b.Mass)
	}
	return nil
}

// IsValid is true when position and velocity are finite.
func (b Body) IsValid() bool {
	return finite(b.Pos) && finite(b.Vel)
}

func (b Body) String() string {
	return fmt.Sprintf("%s m=%.4g p=[%.4g, %.4g] v=[%.4g, %.4g]",
		b.Name, b.Mass, b.Pos.X(), b.Pos.Y(), b.Vel.X(), b.Vel.Y())
}

func finite(v mgl64.Vec2) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Clone returns a copy of bodies that shares nothing with the input.
func Clone(bodies []Body) []Body {
	c := make([]Body, len(bodies))
	copy(c, bodies)
	return c
}

// Mode selects how net forces are evaluated.
type Mode string

const (
	ModeBarnesHut  Mode = "barnes-hut"
	ModeBruteForce Mode = "brute-force"
)

// ParseMode accepts the canonical names plus a few short aliases.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "barnes-hut", "bh", "tree", "":
		return ModeBarnesHut, nil
	case "brute-force", "brute", "naive", "direct":
		return ModeBruteForce, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
}

// BoundsPolicy decides the root square of each step's tree.
type BoundsPolicy string

const (
	// BoundsAuto re-derives the minimal enclosing square of all bodies every
	// step and pads it, so nothing is excluded.
	BoundsAuto BoundsPolicy = "auto"
	// BoundsFixed uses a constant square centered on the origin. Bodies that
	// leave it are excluded from the tree until they come back.
	BoundsFixed BoundsPolicy = "fixed"
)

type Config struct {
	Theta         float64
	Mode          Mode
	G             float64
	Workers       int
	Bounds        BoundsPolicy
	Padding       float64
	HalfWidth     float64
	MaxDepth      int
	ValidateTree  bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Theta:         0.5,
		Mode:          ModeBarnesHut,
		G:             G,
		Workers:       1,
		Bounds:        BoundsAuto,
		Padding:       0.05,
		HalfWidth:     10 * AU,
		MaxDepth:      DefaultMaxDepth,
		ValidateTree:  false,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	if math.IsNaN(c.Theta) || c.Theta < 0 {
		return fmt.Errorf("%w: theta must be >= 0, got %g", ErrInvalidConfig, c.Theta)
	}
	if c.Mode != ModeBarnesHut && c.Mode != ModeBruteForce {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	if c.G <= 0 {
		return fmt.Errorf("%w: G must be positive, got %g", ErrInvalidConfig, c.G)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	}
	switch c.Bounds {
	case BoundsAuto:
		if c.Padding <= 0 {
			return fmt.Errorf("%w: padding must be positive, got %g", ErrInvalidConfig, c.Padding)
		}
	case BoundsFixed:
		if c.HalfWidth <= 0 {
			return fmt.Errorf("%w: half width must be positive, got %g", ErrInvalidConfig, c.HalfWidth)
		}
	default:
		return fmt.Errorf("%w: unknown bounds policy %q", ErrInvalidConfig, c.Bounds)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("%w: max depth must be >= 1, got %d", ErrInvalidConfig, c.MaxDepth)
	}
	return nil
}

type Integrator interface {
	Name() string
	Step(b *Body, force mgl64.Vec2, dt float64)
}

// StepStats describes one completed step.
type StepStats struct {
	Step         int
	Time         float64
	Mode         Mode
	Bodies       int
	Excluded     int
	Nodes        int
	MergedLeaves int
	BuildTime    time.Duration
	ForceTime    time.Duration
	Duration     time.Duration
}

type Observer interface {
	OnStep(bodies []Body, t float64)
}

type StatsObserver interface {
	OnStats(s StepStats)
}

type Metric interface {
	Name() string
	Observe(bodies []Body, t float64)
	Value() float64
	Reset()
}

type Result struct {
	Steps   int
	Time    float64
	Bodies  []Body
	Metrics map[string]float64
	Stats   []StepStats
}
