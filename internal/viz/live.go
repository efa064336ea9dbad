package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/quadtree"
	"github.com/san-kum/orbitsim/internal/scenario"
	"github.com/san-kum/orbitsim/internal/sim"
	"k8s.io/klog/v2"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 300
	// overlay nodes smaller than this many sub-pixels are not drawn
	minOverlayPx = 4
)

// Snapshot stores the bodies at one step for replay.
type Snapshot struct {
	Bodies []dynamo.Body
	Time   float64
	Energy float64
}

type TickMsg time.Time

// lastStats keeps the most recent step stats. It is shared by pointer so the
// value-typed Model sees updates from the simulator.
type lastStats struct {
	s dynamo.StepStats
}

func (l *lastStats) OnStats(s dynamo.StepStats) { l.s = s }

// Model drives a Simulator from bubbletea ticks and draws it on a braille
// canvas.
type Model struct {
	title      string
	initial    []dynamo.Body
	cfg        dynamo.Config
	integrator dynamo.Integrator
	dt         float64

	sim   *sim.Simulator
	stats *lastStats
	drift *metrics.EnergyDrift
	err   error

	canvas        *Canvas
	proj          Projection
	width, height int
	theme         Theme
	st            styles

	running       bool
	showTree      bool
	showHelp      bool
	stepsPerFrame int

	energyHistory []float64
	history       []Snapshot
	playHead      int
	recording     bool
	frames        []*image.Paletted
}

// NewModel builds a viewer over a fresh simulator for bodies.
func NewModel(title string, bodies []dynamo.Body, cfg dynamo.Config, integ dynamo.Integrator, dt float64) (Model, error) {
	m := Model{
		title:         title,
		initial:       dynamo.Clone(bodies),
		cfg:           cfg,
		integrator:    integ,
		dt:            dt,
		stats:         &lastStats{},
		drift:         metrics.NewEnergyDrift(cfg.G),
		canvas:        NewCanvas(width, height),
		proj:          NewProjection(width*2, height*4),
		width:         width,
		height:        height,
		theme:         Themes[0],
		st:            newStyles(Themes[0]),
		running:       true,
		stepsPerFrame: 1,
		energyHistory: make([]float64, 0, historyCapacity),
		history:       make([]Snapshot, 0, historyCapacity),
		playHead:      -1,
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	m.proj.Fit(m.initial)
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "o":
			m.showTree = !m.showTree
		case "f":
			m.proj.Fit(m.sim.Bodies())
		case "+", "=":
			m.proj.ZoomIn()
		case "-", "_":
			m.proj.ZoomOut()
		case ".", ">":
			m.stepsPerFrame = min(256, m.stepsPerFrame*2)
		case ",", "<":
			m.stepsPerFrame = max(1, m.stepsPerFrame/2)
		case "t":
			m.theme = nextTheme(m.theme)
			m.st = newStyles(m.theme)
		case "g":
			if m.recording {
				if err := m.saveGIF("orbitsim.gif"); err != nil {
					klog.ErrorS(err, "Failed to save recording", "path", "orbitsim.gif")
				}
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
			}
		case "s":
			if err := m.saveSVG("orbitsim.svg"); err != nil {
				klog.ErrorS(err, "Failed to save frame", "path", "orbitsim.svg")
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.running && m.err == nil {
			if m.playHead == -1 {
				m.advance()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// resize keeps room for the stats panel on the right.
func (m *Model) resize(w, h int) {
	cw, ch := max(20, w-50), max(8, h-4)
	if cw == m.width && ch == m.height {
		return
	}
	m.width, m.height = cw, ch
	m.canvas = NewCanvas(cw, ch)
	m.proj.W, m.proj.H = cw*2, ch*4
}

// advance runs stepsPerFrame steps and records one snapshot.
func (m *Model) advance() {
	for i := 0; i < m.stepsPerFrame; i++ {
		if err := m.sim.Step(m.dt); err != nil {
			klog.ErrorS(err, "Live step failed", "step", m.sim.Steps()+1)
			m.err = err
			m.running = false
			return
		}
	}

	bodies := m.sim.Bodies()
	m.drift.Observe(bodies, m.sim.Time())
	energy := m.drift.Current()
	m.energyHistory = append(m.energyHistory, energy)
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}

	m.history = append(m.history, Snapshot{Bodies: dynamo.Clone(bodies), Time: m.sim.Time(), Energy: energy})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset restores the initial bodies with a new simulator.
func (m *Model) reset() error {
	s, err := sim.New(m.initial, m.cfg, sim.WithIntegrator(m.integrator), sim.WithStatsObserver(m.stats))
	if err != nil {
		return err
	}
	m.sim = s
	m.err = nil
	m.stats.s = dynamo.StepStats{}
	m.drift.Reset()
	m.drift.Observe(m.sim.Bodies(), 0)
	m.energyHistory = m.energyHistory[:0]
	m.history = m.history[:0]
	m.playHead = -1
	return nil
}

// displayed returns the bodies and time currently on screen.
func (m *Model) displayed() ([]dynamo.Body, float64) {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		snap := m.history[m.playHead]
		return snap.Bodies, snap.Time
	}
	return m.sim.Bodies(), m.sim.Time()
}

func (m *Model) draw() {
	m.canvas.Clear()
	bodies, _ := m.displayed()
	if m.showTree && m.playHead == -1 {
		m.drawTree(m.sim.Tree())
	}
	for _, b := range bodies {
		if !b.IsValid() {
			continue
		}
		x, y := m.proj.ToPixel(b.Pos)
		m.canvas.FillCircle(x, y, m.proj.Radius(b.Radius), lipgloss.Color(scenario.FormatColor(b.Color)))
	}
}

// drawTree outlines every node square that is still visible at this zoom.
func (m *Model) drawTree(t *quadtree.Tree) {
	if t == nil {
		return
	}
	t.Walk(func(_ int, n *quadtree.Node) bool {
		sq := n.Bounds()
		x0, y0 := m.proj.ToPixel(sq.Origin)
		x1, y1 := m.proj.ToPixel(sq.Origin.Add(mgl64.Vec2{sq.Side, sq.Side}))
		if x1-x0 < minOverlayPx {
			return false
		}
		m.canvas.DrawRect(x0, y0, x1, y1, m.theme.Overlay)
		return true
	})
}

// View renders the canvas and the stats panel side by side.
func (m Model) View() string {
	m.draw()
	_, t := m.displayed()
	canvasView := m.st.canvas.Render(m.canvas.Render())

	var s strings.Builder
	s.WriteString(m.st.header.Render(strings.ToUpper(m.title)) + "\n")

	status := "RUNNING"
	switch {
	case m.err != nil:
		status = "HALTED"
	case m.playHead != -1:
		status = fmt.Sprintf("REPLAY (%.1f d)", (m.history[m.playHead].Time-m.sim.Time())/86400)
	case !m.running:
		status = "PAUSED"
	}
	s.WriteString(m.st.status.Render(status) + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Total energy (J)"))
		s.WriteString(m.st.graph.Render(chart) + "\n\n")
	}

	st := m.stats.s
	s.WriteString(m.st.row("Time", fmt.Sprintf("%.2f d", t/86400)))
	s.WriteString(m.st.row("Step", fmt.Sprintf("%d (x%d)", m.sim.Steps(), m.stepsPerFrame)))
	s.WriteString(m.st.row("Bodies", fmt.Sprintf("%d", len(m.sim.Bodies()))))
	s.WriteString(m.st.row("Mode", string(m.cfg.Mode)))
	if m.cfg.Mode == dynamo.ModeBarnesHut {
		s.WriteString(m.st.row("Theta", fmt.Sprintf("%.2f", m.cfg.Theta)))
		s.WriteString(m.st.row("Nodes", fmt.Sprintf("%d", st.Nodes)))
		s.WriteString(m.st.row("Merged", fmt.Sprintf("%d", st.MergedLeaves)))
	}
	s.WriteString(m.st.row("Excluded", fmt.Sprintf("%d", st.Excluded)))
	s.WriteString(m.st.row("Energy drift", fmt.Sprintf("%.2e", m.drift.Value())))
	s.WriteString(m.st.row("Step time", st.Duration.Round(time.Microsecond).String()))
	s.WriteString(m.st.row("Zoom", fmt.Sprintf("%.3g", m.proj.Zoom)))
	if m.recording {
		s.WriteString(m.st.warn.Render("● REC") + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + m.st.warn.Render(m.err.Error()) + "\n")
	}
	s.WriteString(m.st.help.Render("SP:Pause R:Reset Q:Quit\nO:Tree +/-:Zoom F:Fit\n</>:Speed [ ]:Replay ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  O        - Toggle quadtree overlay  ║
║  + / -    - Zoom in / out            ║
║  F        - Fit all bodies           ║
║  > / <    - More / fewer steps/frame ║
║  [ / ]    - Rewind / forward replay  ║
║  G        - Toggle GIF recording     ║
║  S        - Save frame as SVG        ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

func (m *Model) captureFrame() {
	const charW, charH = 8, 16
	img := image.NewPaletted(image.Rect(0, 0, m.width*charW, m.height*charH), color.Palette{color.Black, color.White})
	dotW, dotH := charW/2, charH/4
	for y := 0; y < m.height*4; y++ {
		for x := 0; x < m.width*2; x++ {
			if !m.canvas.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF(path string) (err error) {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 3)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	klog.InfoS("Saved recording", "path", path, "frames", len(m.frames))
	return nil
}

// saveSVG writes the frame currently on the canvas.
func (m *Model) saveSVG(path string) error {
	m.draw()
	if err := os.WriteFile(path, []byte(m.canvas.SVG(4)), 0644); err != nil {
		return err
	}
	klog.InfoS("Saved frame", "path", path)
	return nil
}

// Run opens the viewer full screen and blocks until it quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
