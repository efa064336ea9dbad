package storage

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Frame is a snapshot of every body's position and velocity.
type Frame struct {
	Step int
	Time float64
	Pos  []mgl64.Vec2
	Vel  []mgl64.Vec2
}

// Recorder is a dynamo.Observer that keeps every n-th snapshot. The first
// snapshot it sees is always kept.
type Recorder struct {
	every  int
	calls  int
	frames []Frame
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{every: every}
}

func (r *Recorder) OnStep(bodies []dynamo.Body, t float64) {
	step := r.calls
	r.calls++
	if step%r.every != 0 {
		return
	}
	f := Frame{
		Step: step,
		Time: t,
		Pos:  make([]mgl64.Vec2, len(bodies)),
		Vel:  make([]mgl64.Vec2, len(bodies)),
	}
	for i := range bodies {
		f.Pos[i] = bodies[i].Pos
		f.Vel[i] = bodies[i].Vel
	}
	r.frames = append(r.frames, f)
}

func (r *Recorder) Frames() []Frame { return r.frames }

// Track returns one body's recorded positions in frame order.
func Track(frames []Frame, body int) []mgl64.Vec2 {
	out := make([]mgl64.Vec2, 0, len(frames))
	for _, f := range frames {
		if body < len(f.Pos) {
			out = append(out, f.Pos[body])
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.calls = 0
	r.frames = nil
}
