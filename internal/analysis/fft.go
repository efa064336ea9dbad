package analysis

import (
	"math"
	"math/cmplx"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the DFT of
// data after removing its mean.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod returns the period of the strongest non-constant
// frequency in samples spaced dt apart. The peak is refined by parabolic
// interpolation across its neighbours. ok is false when the series is too
// short or flat.
func DominantPeriod(data []float64, dt float64) (period float64, ok bool) {
	ps := PowerSpectrum(data)
	if len(ps) < 3 {
		return 0, false
	}
	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if ps[peak] == 0 {
		return 0, false
	}

	k := float64(peak)
	if peak+1 < len(ps) {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if denom := a - 2*b + c; denom != 0 {
			k += 0.5 * (a - c) / denom
		}
	}
	return float64(len(data)) * dt / k, true
}

// OrbitalPeriod estimates the period of a body circling center from its
// sampled positions. Both tracks must share sample times spaced dt apart.
func OrbitalPeriod(track, center []mgl64.Vec2, dt float64) (float64, bool) {
	n := min(len(track), len(center))
	if n == 0 {
		return 0, false
	}
	xs := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = track[i].X() - center[i].X()
	}
	period, ok := DominantPeriod(xs, dt)
	if !ok || math.IsInf(period, 0) {
		return 0, false
	}
	return period, true
}
