package viz

import (
	"image/gif"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/experiment"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/scenario"
)

func TestCanvas_SetAndUnset(t *testing.T) {
	c := NewCanvas(2, 1)
	assert.Equal(t, "⠀⠀\n", c.String())

	c.Set(0, 0)
	c.Set(1, 3)
	assert.True(t, c.IsSet(0, 0))
	assert.True(t, c.IsSet(1, 3))
	assert.False(t, c.IsSet(1, 0))
	assert.Equal(t, rune(blank|0x01|0x80), c.Grid[0][0])

	c.Unset(0, 0)
	assert.False(t, c.IsSet(0, 0))
	assert.Equal(t, rune(blank|0x80), c.Grid[0][0])

	// out of range is ignored
	c.Set(-1, 0)
	c.Set(4, 0)
	assert.False(t, c.IsSet(4, 0))
}

func TestCanvas_Shapes(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawRect(0, 0, 9, 9, "")
	for i := 0; i <= 9; i++ {
		assert.True(t, c.IsSet(i, 0))
		assert.True(t, c.IsSet(0, i))
		assert.True(t, c.IsSet(i, 9))
	}
	assert.False(t, c.IsSet(5, 5))

	c.Clear()
	c.FillCircle(10, 10, 2, lipgloss.Color("#ff0000"))
	assert.True(t, c.IsSet(10, 10))
	assert.True(t, c.IsSet(12, 10))
	assert.False(t, c.IsSet(12, 12))
	assert.Equal(t, lipgloss.Color("#ff0000"), c.colors[10/4][10/2])
	assert.Equal(t, 5, strings.Count(c.Render(), "\n"))
}

func TestProjection(t *testing.T) {
	p := NewProjection(160, 96)
	x, y := p.ToPixel(mgl64.Vec2{})
	assert.Equal(t, 80, x)
	assert.Equal(t, 48, y)

	// at zoom 0.5 one AU is fifty sub-pixels
	x, y = p.ToPixel(mgl64.Vec2{dynamo.AU, -dynamo.AU})
	assert.Equal(t, 130, x)
	assert.Equal(t, -2, y)

	p.ZoomIn()
	assert.Greater(t, p.Zoom, 0.5)
}

func TestProjection_FitKeepsBodiesOnCanvas(t *testing.T) {
	bodies := scenario.Binary(2e30, 1e30, 3)
	bodies = append(bodies, dynamo.Body{Pos: mgl64.Vec2{-9 * dynamo.AU, 4 * dynamo.AU}, Mass: 1})

	p := NewProjection(160, 96)
	p.Fit(bodies)
	for _, b := range bodies {
		x, y := p.ToPixel(b.Pos)
		assert.True(t, x >= 0 && x < 160, "x=%d", x)
		assert.True(t, y >= 0 && y < 96, "y=%d", y)
	}
}

func TestModel_AdvanceAndReset(t *testing.T) {
	bodies := scenario.Binary(2e30, 2e30, 1)
	m, err := NewModel("binary", bodies, dynamo.DefaultConfig(), integrators.NewSymplecticEuler(), 3600)
	require.NoError(t, err)

	m.stepsPerFrame = 4
	m.advance()
	m.advance()
	require.NoError(t, m.err)
	assert.Equal(t, 8, m.sim.Steps())
	assert.Len(t, m.history, 2)
	assert.Len(t, m.energyHistory, 2)
	assert.Equal(t, 8, m.stats.s.Step)

	m.scrub(-1)
	assert.Equal(t, 0, m.playHead)
	shown, _ := m.displayed()
	assert.Equal(t, m.history[0].Bodies, shown)

	require.NoError(t, m.reset())
	assert.Zero(t, m.sim.Steps())
	assert.Equal(t, -1, m.playHead)
	assert.Empty(t, m.history)
}

func TestCanvas_SVG(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0)
	c.SetColor(7, 7, "#ff0000")

	out := c.SVG(2)
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Equal(t, 2, strings.Count(out, "<circle"))
	assert.Contains(t, out, `fill="#ff0000"`)
	assert.Contains(t, out, `fill="#e0e0e0"`)
}

func TestModel_EnergyDrift(t *testing.T) {
	bodies := scenario.Binary(2e30, 2e30, 1)
	m, err := NewModel("binary", bodies, dynamo.DefaultConfig(), integrators.NewSymplecticEuler(), 3600)
	require.NoError(t, err)

	m.advance()
	require.Len(t, m.energyHistory, 1)
	assert.Less(t, m.energyHistory[0], 0.0)
	assert.Less(t, m.drift.Value(), 1e-3)
	assert.Contains(t, m.View(), "Energy drift")

	require.NoError(t, m.reset())
	assert.Zero(t, m.drift.Value())
}

func TestModel_SaveFrames(t *testing.T) {
	dir := t.TempDir()
	bodies := scenario.Binary(2e30, 2e30, 1)
	m, err := NewModel("binary", bodies, dynamo.DefaultConfig(), integrators.NewSymplecticEuler(), 3600)
	require.NoError(t, err)

	svgPath := filepath.Join(dir, "frame.svg")
	require.NoError(t, m.saveSVG(svgPath))
	data, err := os.ReadFile(svgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<circle")

	// nothing recorded, nothing written
	gifPath := filepath.Join(dir, "run.gif")
	require.NoError(t, m.saveGIF(gifPath))
	assert.NoFileExists(t, gifPath)

	m.draw()
	m.captureFrame()
	m.advance()
	m.draw()
	m.captureFrame()
	require.NoError(t, m.saveGIF(gifPath))
	f, err := os.Open(gifPath)
	require.NoError(t, err)
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	require.NoError(t, err)
	assert.Len(t, anim.Image, 2)

	assert.Error(t, m.saveGIF(filepath.Join(dir, "missing", "run.gif")))
	assert.Error(t, m.saveSVG(filepath.Join(dir, "missing", "frame.svg")))
}

func TestModel_ViewWithOverlay(t *testing.T) {
	r := experiment.NewRegistry()
	cfg := config.GetPreset("solar", "default")
	cfg.Init.Asteroids = 30

	m, err := Launch(r, cfg, "solar/default")
	require.NoError(t, err)
	m.showTree = true
	m.advance()

	out := m.View()
	assert.Contains(t, out, "SOLAR/DEFAULT")
	assert.Contains(t, out, "barnes-hut")
	assert.NotNil(t, m.sim.Tree())
}

func TestThemes(t *testing.T) {
	assert.Equal(t, ThemeRetroGreen, GetTheme("retro"))
	assert.Equal(t, Themes[0], GetTheme("nope"))
	assert.Equal(t, Themes[1], nextTheme(Themes[0]))
	assert.Equal(t, Themes[0], nextTheme(Themes[len(Themes)-1]))
	assert.Len(t, ThemeNames(), len(Themes))
}

func TestMenu_ListsPresets(t *testing.T) {
	m := NewMenu(experiment.NewRegistry())
	require.NotEmpty(t, m.presets)
	assert.Contains(t, m.View(), "solar/default")
}
