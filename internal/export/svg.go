package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/storage"
)

const (
	background   = "#0a0a0a"
	defaultColor = "#cccccc"
)

type Options struct {
	Width, Height int
	// MaxPaths caps how many trajectories are drawn. The heaviest bodies
	// win; the rest only get their final position. 0 draws every path.
	MaxPaths int
	// Stride keeps every n-th frame of each path.
	Stride int
}

func DefaultOptions() Options {
	return Options{Width: 800, Height: 800, MaxPaths: 16, Stride: 1}
}

// frameView maps simulation meters to SVG pixels, keeping the aspect ratio.
type frameView struct {
	min   mgl64.Vec2
	scale float64
	off   mgl64.Vec2
}

func fit(frames []storage.Frame, w, h int) frameView {
	lo := mgl64.Vec2{math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	for _, f := range frames {
		for _, p := range f.Pos {
			if math.IsNaN(p.X()) || math.IsNaN(p.Y()) || math.IsInf(p.X(), 0) || math.IsInf(p.Y(), 0) {
				continue
			}
			lo = mgl64.Vec2{math.Min(lo.X(), p.X()), math.Min(lo.Y(), p.Y())}
			hi = mgl64.Vec2{math.Max(hi.X(), p.X()), math.Max(hi.Y(), p.Y())}
		}
	}
	if math.IsInf(lo.X(), 1) {
		return frameView{scale: 1}
	}
	span := math.Max(hi.X()-lo.X(), hi.Y()-lo.Y())
	if span == 0 {
		span = 1
	}
	span *= 1.1
	side := float64(min(w, h))
	scale := side / span
	center := lo.Add(hi).Mul(0.5)
	return frameView{
		min:   center.Sub(mgl64.Vec2{span / 2, span / 2}),
		scale: scale,
		off:   mgl64.Vec2{(float64(w) - side) / 2, (float64(h) - side) / 2},
	}
}

// project keeps y growing downward, matching the simulation's south axis.
func (v frameView) project(p mgl64.Vec2) (x, y float64) {
	q := p.Sub(v.min).Mul(v.scale).Add(v.off)
	return q.X(), q.Y()
}

// Trajectories renders every body's path through frames as an SVG document.
// Colors and radii come from meta.Bodies when present.
func Trajectories(w io.Writer, meta storage.RunMetadata, frames []storage.Frame, opts Options) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to render")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = DefaultOptions().Width, DefaultOptions().Height
	}
	if opts.Stride < 1 {
		opts.Stride = 1
	}

	view := fit(frames, opts.Width, opts.Height)
	n := len(frames[0].Pos)
	drawn := pathSet(meta, n, opts.MaxPaths)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, opts.Width, opts.Height, opts.Width, opts.Height, background)

	for i := 0; i < n; i++ {
		if !drawn[i] {
			continue
		}
		sb.WriteString(`<path fill="none" stroke-width="1" stroke-opacity="0.7" stroke="` + bodyColor(meta, i) + `" d="`)
		first := true
		for k := 0; k < len(frames); k += opts.Stride {
			if i >= len(frames[k].Pos) {
				break
			}
			x, y := view.project(frames[k].Pos[i])
			if first {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
				first = false
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	last := frames[len(frames)-1]
	for i, p := range last.Pos {
		x, y := view.project(p)
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n", x, y, bodyRadius(meta, i), bodyColor(meta, i))
	}
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// pathSet picks the bodies that get a trajectory line.
func pathSet(meta storage.RunMetadata, n, limit int) []bool {
	out := make([]bool, n)
	if limit <= 0 || limit >= n {
		for i := range out {
			out[i] = true
		}
		return out
	}
	for picked := 0; picked < limit; picked++ {
		best := -1
		for i := 0; i < n; i++ {
			if out[i] {
				continue
			}
			if best < 0 || bodyMass(meta, i) > bodyMass(meta, best) {
				best = i
			}
		}
		out[best] = true
	}
	return out
}

func bodyMass(meta storage.RunMetadata, i int) float64 {
	if i < len(meta.Bodies) {
		return meta.Bodies[i].Mass
	}
	return 0
}

func bodyColor(meta storage.RunMetadata, i int) string {
	if i < len(meta.Bodies) && meta.Bodies[i].Color != "" {
		return meta.Bodies[i].Color
	}
	return defaultColor
}

func bodyRadius(meta storage.RunMetadata, i int) float64 {
	if i < len(meta.Bodies) && meta.Bodies[i].Radius > 0 {
		return math.Max(1, meta.Bodies[i].Radius/2)
	}
	return 1
}
