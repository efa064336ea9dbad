package scenario

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

const SunMass = 1.989e30

var (
	Yellow = color.RGBA{R: 255, G: 255, A: 255}
	Green  = color.RGBA{G: 255, A: 255}
	Red    = color.RGBA{R: 255, A: 255}
	Orange = color.RGBA{R: 255, G: 150, B: 50, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// OrbitVelocity is the circular orbit velocity at distance r along +x from
// a central mass at the origin. It points along +y.
func OrbitVelocity(centralMass, r float64) mgl64.Vec2 {
	return mgl64.Vec2{0, math.Sqrt(dynamo.G * centralMass / r)}
}

// Planet places a body on the +x axis at distAU with a circular orbit
// around centralMass.
func Planet(name string, distAU, mass, radius float64, c color.RGBA, centralMass float64) dynamo.Body {
	r := distAU * dynamo.AU
	return dynamo.Body{
		Name:   name,
		Pos:    mgl64.Vec2{r, 0},
		Vel:    OrbitVelocity(centralMass, r),
		Mass:   mass,
		Radius: radius,
		Color:  c,
	}
}

// SolarSystem returns the Sun, Earth, Mars and Jupiter followed by
// asteroids random asteroids.
func SolarSystem(rng *rand.Rand, asteroids int) []dynamo.Body {
	bodies := make([]dynamo.Body, 0, 4+asteroids)
	bodies = append(bodies,
		dynamo.Body{Name: "Sun", Mass: SunMass, Radius: 20, Color: Yellow},
		Planet("Earth", 1, 5.972e24, 5, Green, SunMass),
		Planet("Mars", 1.5, 6.42e23, 7, Red, SunMass),
		Planet("Jupiter", 5, 1.9e27, 9, Orange, SunMass),
	)
	for i := 0; i < asteroids; i++ {
		bodies = append(bodies, Asteroid(rng, fmt.Sprintf("asteroid_%d", i), SunMass))
	}
	return bodies
}

// Asteroid returns a small body on the +x axis between 0.5 and 7 AU in a
// circular orbit around centralMass.
func Asteroid(rng *rand.Rand, name string, centralMass float64) dynamo.Body {
	r := uniform(rng, 0.5*dynamo.AU, 7*dynamo.AU)
	return dynamo.Body{
		Name:   name,
		Pos:    mgl64.Vec2{r, 0},
		Vel:    OrbitVelocity(centralMass, r),
		Mass:   uniform(rng, 1e5, 1e20),
		Radius: float64(1 + rng.Intn(3)),
		Color:  randomColor(rng),
	}
}

// Disk scatters n asteroids at random angles between innerAU and outerAU
// around a central star, each on a circular orbit.
func Disk(rng *rand.Rand, n int, centralMass, innerAU, outerAU float64) []dynamo.Body {
	bodies := make([]dynamo.Body, 0, n+1)
	bodies = append(bodies, dynamo.Body{Name: "Star", Mass: centralMass, Radius: 20, Color: Yellow})
	for i := 0; i < n; i++ {
		r := uniform(rng, innerAU, outerAU) * dynamo.AU
		angle := rng.Float64() * 2 * math.Pi
		sin, cos := math.Sincos(angle)
		speed := math.Sqrt(dynamo.G * centralMass / r)
		bodies = append(bodies, dynamo.Body{
			Name:   fmt.Sprintf("disk_%d", i),
			Pos:    mgl64.Vec2{r * cos, r * sin},
			Vel:    mgl64.Vec2{-speed * sin, speed * cos},
			Mass:   uniform(rng, 1e5, 1e20),
			Radius: float64(1 + rng.Intn(3)),
			Color:  randomColor(rng),
		})
	}
	return bodies
}

// Binary returns two stars sepAU apart orbiting their common center of
// mass at the origin.
func Binary(massA, massB, sepAU float64) []dynamo.Body {
	sep := sepAU * dynamo.AU
	total := massA + massB
	ra, rb := sep*massB/total, sep*massA/total
	// relative circular speed split by mass
	v := math.Sqrt(dynamo.G * total / sep)
	va, vb := v*massB/total, v*massA/total
	return []dynamo.Body{
		{Name: "A", Pos: mgl64.Vec2{-ra, 0}, Vel: mgl64.Vec2{0, -va}, Mass: massA, Radius: 15, Color: Yellow},
		{Name: "B", Pos: mgl64.Vec2{rb, 0}, Vel: mgl64.Vec2{0, vb}, Mass: massB, Radius: 12, Color: Orange},
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func randomColor(rng *rand.Rand) color.RGBA {
	ch := func() uint8 { return uint8(100 + rng.Intn(156)) }
	return color.RGBA{R: ch(), G: ch(), B: ch(), A: 255}
}
