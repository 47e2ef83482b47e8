package cli

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/graphscope/pkg/diagram"
	"github.com/matzehuels/graphscope/pkg/engine"
	"github.com/matzehuels/graphscope/pkg/scene"
)

// frameInterval is the viewer's frame period. Simulation steps, return
// animations, and view transitions all advance on this cadence.
const frameInterval = 50 * time.Millisecond

// panStep is the pan distance per keypress in scene screen units.
const panStep = 40.0

// frameMsg drives one viewer frame.
type frameMsg time.Time

// Canvas styles
var (
	nodeNormalStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	nodeSelectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	nodeConnectedStyle = lipgloss.NewStyle().Foreground(colorCyan)
	nodeDimStyle       = lipgloss.NewStyle().Foreground(colorDim)
	edgeNormalStyle    = lipgloss.NewStyle().Foreground(colorGray)
	edgeConnectedStyle = lipgloss.NewStyle().Foreground(colorCyan)
	edgeDimStyle       = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// viewerModel - Interactive diagram viewer
// =============================================================================

// viewerModel is the bubbletea model for the interactive viewer. It projects
// the mounted scene's screen coordinates onto a character canvas and forwards
// keys and mouse input to the engine. The model is used by pointer so the
// engine's event callbacks can reach it.
type viewerModel struct {
	eng   *engine.Engine
	input string // input file path, used for export naming

	width  int // terminal size
	height int

	order  []string // node ids in stable display order, for tab cycling
	status string
}

// newViewerModel creates the viewer model. The engine is attached by the
// caller after construction so the model can serve as its event sink.
func newViewerModel(input string) *viewerModel {
	return &viewerModel{input: input, width: 80, height: 24}
}

// =============================================================================
// engine.Events
// =============================================================================

var _ engine.Events = (*viewerModel)(nil)

// OnGraphChanged rebuilds the tab-cycling order.
func (m *viewerModel) OnGraphChanged(g *diagram.GraphData) {
	m.order = m.order[:0]
	for _, n := range g.Nodes {
		m.order = append(m.order, n.ID)
	}
	sort.Strings(m.order)
}

// OnSelectIntent toggles the clicked node's selection.
func (m *viewerModel) OnSelectIntent(id string) {
	m.eng.ToggleSelection(id)
}

// OnClearIntent clears the selection on background clicks.
func (m *viewerModel) OnClearIntent() {
	m.eng.ClearSelection()
}

// OnError surfaces load failures in the status line.
func (m *viewerModel) OnError(err error) {
	m.status = err.Error()
}

// =============================================================================
// tea.Model
// =============================================================================

func (m *viewerModel) Init() tea.Cmd {
	return frameTick()
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.eng.Tick()
		return m, frameTick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		m.updateMouse(msg)
	}
	return m, nil
}

func (m *viewerModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "f":
		m.eng.SetFancy(!m.eng.Fancy())
		m.status = ""
	case " ":
		if m.eng.Fancy() {
			m.eng.SetFreeMove(!m.eng.FreeMove())
		}
	case "tab", "n":
		m.cycleSelection(1)
	case "shift+tab", "N":
		m.cycleSelection(-1)
	case "esc":
		m.eng.ClearSelection()
	case "+", "=":
		m.eng.ZoomIn()
	case "-":
		m.eng.ZoomOut()
	case "left", "h":
		m.eng.Pan(panStep, 0)
	case "right", "l":
		m.eng.Pan(-panStep, 0)
	case "up", "k":
		m.eng.Pan(0, panStep)
	case "down", "j":
		m.eng.Pan(0, -panStep)
	case "r":
		m.eng.ResetView()
	case "e":
		m.exportPNG()
	}
	return m, nil
}

// cycleSelection moves the selection through the sorted node order.
func (m *viewerModel) cycleSelection(dir int) {
	if len(m.order) == 0 {
		return
	}
	cur := -1
	for i, id := range m.order {
		if id == m.eng.Selection() {
			cur = i
			break
		}
	}
	next := (cur + dir + len(m.order)) % len(m.order)
	m.eng.SetSelection(m.order[next])
}

func (m *viewerModel) updateMouse(msg tea.MouseMsg) {
	x, y, ok := m.cellToScene(msg.X, msg.Y)
	if !ok {
		return
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.eng.Wheel(-1, x, y)
		return
	case tea.MouseButtonWheelDown:
		m.eng.Wheel(1, x, y)
		return
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.eng.PointerDown(x, y)
		}
	case tea.MouseActionMotion:
		m.eng.PointerMove(x, y)
		m.eng.Hover(x, y)
	case tea.MouseActionRelease:
		m.eng.PointerUp(x, y)
	}
}

func (m *viewerModel) exportPNG() {
	out := strings.TrimSuffix(m.input, filepath.Ext(m.input)) + ".png"
	if m.input == "-" {
		out = "graph.png"
	}
	png, err := m.eng.Export(context.Background())
	if err != nil {
		m.status = "export failed: " + err.Error()
		return
	}
	if err := os.WriteFile(out, png, 0644); err != nil {
		m.status = "export failed: " + err.Error()
		return
	}
	m.status = "exported " + out
}

// =============================================================================
// Canvas
// =============================================================================

// canvasSize returns the drawable region: the full terminal minus the header
// and footer lines.
func (m *viewerModel) canvasSize() (int, int) {
	h := m.height - 3
	if h < 4 {
		h = 4
	}
	w := m.width
	if w < 20 {
		w = 20
	}
	return w, h
}

// cellToScene maps a terminal cell to scene screen coordinates.
func (m *viewerModel) cellToScene(cx, cy int) (float64, float64, bool) {
	sw, sh, ok := m.eng.SceneSize()
	if !ok || sw <= 0 || sh <= 0 {
		return 0, 0, false
	}
	cw, ch := m.canvasSize()
	// Row 0 is the header.
	return (float64(cx) + 0.5) * sw / float64(cw), (float64(cy-1) + 0.5) * sh / float64(ch), true
}

// sceneToCell maps scene screen coordinates to a terminal cell in the canvas.
func (m *viewerModel) sceneToCell(x, y float64) (int, int) {
	sw, sh, _ := m.eng.SceneSize()
	cw, ch := m.canvasSize()
	return int(x * float64(cw) / sw), int(y * float64(ch) / sh)
}

// cell is one canvas character with its style.
type cell struct {
	ch    rune
	style lipgloss.Style
}

func (m *viewerModel) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")

	cw, ch := m.canvasSize()
	grid := make([][]cell, ch)
	for i := range grid {
		grid[i] = make([]cell, cw)
		for j := range grid[i] {
			grid[i][j] = cell{ch: ' '}
		}
	}

	g := m.eng.Graph()
	h := scene.Compute(g, m.eng.Selection())
	m.drawEdges(grid, g, h)
	m.drawNodes(grid, g, h)

	for _, row := range grid {
		for _, c := range row {
			if c.ch == ' ' {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.ch)))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.footer())
	return b.String()
}

func (m *viewerModel) header() string {
	mode := "static"
	if m.eng.Fancy() {
		mode = "fancy"
		if m.eng.FreeMove() {
			mode = "fancy · free-move"
		}
	}
	title := StyleTitle.Render(filepath.Base(m.input))
	return title + "  " + StyleDim.Render(mode)
}

func (m *viewerModel) footer() string {
	help := StyleDim.Render("f fancy · space free-move · tab select · +/- zoom · arrows pan · r reset · e export · q quit")
	if m.status != "" {
		return StyleWarning.Render(m.status) + "  " + help
	}
	return help
}

// drawEdges rasterizes each edge as a straight character line between its
// endpoints' current on-screen positions.
func (m *viewerModel) drawEdges(grid [][]cell, g *diagram.GraphData, h scene.Highlight) {
	for _, e := range g.Edges {
		x1, y1, ok1 := m.eng.Locate(e.Source)
		x2, y2, ok2 := m.eng.Locate(e.Target)
		if !ok1 || !ok2 {
			continue
		}
		style := edgeNormalStyle
		if h.Active {
			if h.EdgeRole(e.ID) == scene.RoleConnected {
				style = edgeConnectedStyle
			} else {
				style = edgeDimStyle
			}
		}
		cx1, cy1 := m.sceneToCell(x1, y1)
		cx2, cy2 := m.sceneToCell(x2, y2)
		drawLine(grid, cx1, cy1, cx2, cy2, style)
	}
}

// drawNodes places each node's label centered on its current position.
// Nodes draw after edges so labels win overlapping cells.
func (m *viewerModel) drawNodes(grid [][]cell, g *diagram.GraphData, h scene.Highlight) {
	for _, n := range g.Nodes {
		x, y, ok := m.eng.Locate(n.ID)
		if !ok {
			continue
		}
		style := nodeNormalStyle
		label := n.Name
		if h.Active {
			switch h.NodeRole(n.ID) {
			case scene.RoleSelected:
				style = nodeSelectedStyle
				label = "▸" + label
			case scene.RoleConnected:
				style = nodeConnectedStyle
			default:
				style = nodeDimStyle
			}
		}
		cx, cy := m.sceneToCell(x, y)
		putText(grid, cx-len([]rune(label))/2, cy, label, style)
	}
}

// drawLine draws a straight line of dots between two cells (simple DDA).
func drawLine(grid [][]cell, x1, y1, x2, y2 int, style lipgloss.Style) {
	dx, dy := x2-x1, y2-y1
	steps := abs(dx)
	if abs(dy) > steps {
		steps = abs(dy)
	}
	if steps == 0 {
		putCell(grid, x1, y1, '·', style)
		return
	}
	for i := 0; i <= steps; i++ {
		x := x1 + dx*i/steps
		y := y1 + dy*i/steps
		putCell(grid, x, y, '·', style)
	}
}

// putText writes a label into the grid, clipping at the edges.
func putText(grid [][]cell, x, y int, text string, style lipgloss.Style) {
	for i, r := range []rune(text) {
		putCell(grid, x+i, y, r, style)
	}
}

// putCell sets one grid cell, ignoring out-of-bounds writes.
func putCell(grid [][]cell, x, y int, r rune, style lipgloss.Style) {
	if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
		return
	}
	grid[y][x] = cell{ch: r, style: style}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
