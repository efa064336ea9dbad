package viz

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/experiment"
)

var (
	menuTitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuIdle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuKey    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	stateSim
)

type presetRef struct {
	scenario, name string
}

func (p presetRef) String() string { return p.scenario + "/" + p.name }

// menu picks a preset and then hands over to a live Model.
type menu struct {
	state    int
	cursor   int
	presets  []presetRef
	registry *experiment.Registry
	err      error
	live     Model
	w, h     int
}

func allPresets() []presetRef {
	var out []presetRef
	for scenario := range config.Presets {
		for _, name := range config.ListPresets(scenario) {
			out = append(out, presetRef{scenario, name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func NewMenu(r *experiment.Registry) *menu {
	return &menu{state: stateMenu, presets: allPresets(), registry: r}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.w, m.h = ws.Width, ws.Height
	}
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter":
		return m.start()
	}
	return m, nil
}

func (m menu) start() (tea.Model, tea.Cmd) {
	ref := m.presets[m.cursor]
	live, err := Launch(m.registry, config.GetPreset(ref.scenario, ref.name), ref.String())
	if err != nil {
		m.err = err
		return m, nil
	}
	if m.w > 0 {
		live.resize(m.w, m.h)
		live.proj.Fit(live.initial)
	}
	m.live = live
	m.state = stateSim
	return m, m.live.Init()
}

func (m menu) View() string {
	if m.state == stateSim {
		return m.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("ORBITSIM") + "\n    " + menuSub.Render("barnes-hut gravity") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, p := range m.presets {
		cfg := config.GetPreset(p.scenario, p.name)
		desc := fmt.Sprintf("%s θ=%.2f dt=%gs", cfg.Mode, cfg.Theta, cfg.Dt)
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-18s", p)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", menuIdle.Render(fmt.Sprintf("%-18s", p)), menuIdle.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + menuKey.Render("j/k") + menuIdle.Render(" navigate  ") + menuKey.Render("enter") + menuIdle.Render(" start  ") + menuKey.Render("q") + menuIdle.Render(" quit") + "\n")
	return b.String()
}

// Launch sets up cfg and returns a viewer over its initial bodies.
func Launch(r *experiment.Registry, cfg *config.Config, title string) (Model, error) {
	e := experiment.New(cfg)
	if err := e.Setup(r, false); err != nil {
		return Model{}, err
	}
	s := e.GetSimulator()
	return NewModel(title, e.InitialBodies(), s.Config(), s.Integrator(), cfg.Dt)
}

// RunMenu opens the preset picker full screen.
func RunMenu(r *experiment.Registry) error {
	_, err := tea.NewProgram(NewMenu(r), tea.WithAltScreen()).Run()
	return err
}
