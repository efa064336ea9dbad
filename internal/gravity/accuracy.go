package gravity

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RelativeError is |approx-exact| / |exact|, or the absolute error when the
// exact force is zero.
func RelativeError(approx, exact mgl64.Vec2) float64 {
	diff := approx.Sub(exact).Len()
	if norm := exact.Len(); norm > 0 {
		return diff / norm
	}
	return diff
}

// Accuracy summarises relative errors over a set of bodies.
type Accuracy struct {
	Max   float64
	Mean  float64
	RMS   float64
	Worst int
}

// Compare evaluates both fields for bodies [0, n) and reports how far
// approx strays from exact.
func Compare(approx, exact Field, n int) (Accuracy, error) {
	acc := Accuracy{Worst: -1}
	if n == 0 {
		return acc, nil
	}
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		a, err := approx.ForceOn(i)
		if err != nil {
			return acc, err
		}
		e, err := exact.ForceOn(i)
		if err != nil {
			return acc, err
		}
		rel := RelativeError(a, e)
		sum += rel
		sumSq += rel * rel
		if rel > acc.Max || acc.Worst < 0 {
			acc.Max = rel
			acc.Worst = i
		}
	}
	acc.Mean = sum / float64(n)
	acc.RMS = math.Sqrt(sumSq / float64(n))
	return acc, nil
}
