package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/matzehuels/graphscope/pkg/diagram"
	"github.com/matzehuels/graphscope/pkg/view"
)

const testMarkup = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="134pt" height="116pt" viewBox="0 0 134 116">
<g class="graph" transform="scale(1 1) rotate(0) translate(4 112)">
<g class="node">
<title>A</title>
<ellipse fill="none" stroke="black" cx="27" cy="-90" rx="27" ry="18"/>
<text text-anchor="middle" x="27" y="-85.8">A</text>
</g>
<g class="node">
<title>B</title>
<ellipse fill="none" stroke="black" cx="27" cy="-18" rx="27" ry="18"/>
<text text-anchor="middle" x="27" y="-13.8">B</text>
</g>
<g class="edge">
<title>A-&gt;B</title>
<path fill="none" stroke="black" d="M27,-71.7C27,-64.41 27,-55.73 27,-47.54"/>
<polygon fill="black" stroke="black" points="30.5,-47.62 27,-37.62 23.5,-47.62 30.5,-47.62"/>
<text text-anchor="middle" x="45" y="-50.3">flows</text>
</g>
</g>
</svg>`

// recorder captures event callbacks for assertions.
type recorder struct {
	graphs  int
	selects []string
	clears  int
	errs    []error
}

func (r *recorder) OnGraphChanged(*diagram.GraphData) { r.graphs++ }
func (r *recorder) OnSelectIntent(id string)          { r.selects = append(r.selects, id) }
func (r *recorder) OnClearIntent()                    { r.clears++ }
func (r *recorder) OnError(err error)                 { r.errs = append(r.errs, err) }

func fixedClock(start time.Time) (func() time.Time, func(d time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func newTestEngine(t *testing.T, opts Options) (*Engine, *recorder, func(d time.Duration)) {
	t.Helper()
	rec := &recorder{}
	clock, advance := fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	opts.Events = rec
	opts.Clock = clock
	if opts.Width == 0 {
		opts.Width, opts.Height = 400, 300
	}
	e := New(opts)
	if err := e.SetMarkup([]byte(testMarkup)); err != nil {
		t.Fatalf("SetMarkup() error = %v", err)
	}
	return e, rec, advance
}

func TestSetMarkupMountsModel(t *testing.T) {
	e, rec, _ := newTestEngine(t, Options{})

	g := e.Graph()
	if g == nil || len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Fatalf("Graph() = %+v, want 2 nodes and 1 edge", g)
	}
	if rec.graphs != 1 {
		t.Errorf("OnGraphChanged fired %d times, want 1", rec.graphs)
	}
	if e.SVG() == nil {
		t.Errorf("SVG() = nil with a mounted scene")
	}
	if _, _, ok := e.SceneSize(); !ok {
		t.Errorf("SceneSize() reported no scene")
	}
}

func TestSetMarkupReplacesPreviousModel(t *testing.T) {
	e, rec, _ := newTestEngine(t, Options{})
	e.SetSelection("A")

	if err := e.SetMarkup([]byte(testMarkup)); err != nil {
		t.Fatalf("second SetMarkup() error = %v", err)
	}
	if rec.graphs != 2 {
		t.Errorf("OnGraphChanged fired %d times, want 2", rec.graphs)
	}
	// Selection survives the reload and is reapplied to the fresh scene.
	if e.Selection() != "A" {
		t.Errorf("Selection() = %q after reload, want %q", e.Selection(), "A")
	}
}

func TestSetMarkupEmptyClears(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})

	if err := e.SetMarkup(nil); err == nil {
		t.Fatal("SetMarkup(nil) error = nil, want parse failure")
	}
	if g := e.Graph(); g == nil || !g.Empty() {
		t.Errorf("Graph() = %+v after clearing, want empty model", g)
	}
	if e.SVG() != nil {
		t.Errorf("SVG() != nil with no mounted scene")
	}
	if _, _, ok := e.SceneSize(); ok {
		t.Errorf("SceneSize() reported a scene after clearing")
	}
}

func TestToggleSelection(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})

	e.ToggleSelection("A")
	if e.Selection() != "A" {
		t.Fatalf("Selection() = %q, want %q", e.Selection(), "A")
	}
	e.ToggleSelection("B")
	if e.Selection() != "B" {
		t.Errorf("toggling another id: Selection() = %q, want %q", e.Selection(), "B")
	}
	e.ToggleSelection("B")
	if e.Selection() != "" {
		t.Errorf("toggling the selected id: Selection() = %q, want empty", e.Selection())
	}
	e.SetSelection("A")
	e.ClearSelection()
	if e.Selection() != "" {
		t.Errorf("ClearSelection left %q selected", e.Selection())
	}
}

func TestWheelGatedOnSelection(t *testing.T) {
	e, _, advance := newTestEngine(t, Options{})

	e.Wheel(-1, 10, 10)
	advance(time.Second)
	if got := e.View().Current().Scale; got != 1 {
		t.Fatalf("wheel zoomed with nothing selected: scale = %g", got)
	}

	e.SetSelection("A")
	e.Wheel(-1, 10, 10)
	advance(time.Second)
	want := view.ZoomFactor
	if got := e.View().Current().Scale; math.Abs(got-want) > 1e-9 {
		t.Errorf("scale after wheel-in = %g, want %g", got, want)
	}

	e.Wheel(1, 10, 10)
	advance(time.Second)
	if got := e.View().Current().Scale; math.Abs(got-1) > 1e-9 {
		t.Errorf("scale after wheel-out = %g, want 1", got)
	}

	// Zero delta is a no-op either way.
	e.Wheel(0, 10, 10)
	advance(time.Second)
	if got := e.View().Current().Scale; math.Abs(got-1) > 1e-9 {
		t.Errorf("scale after zero-delta wheel = %g, want 1", got)
	}
}

func TestZoomFocalFollowsSelection(t *testing.T) {
	e, _, advance := newTestEngine(t, Options{Width: 400, Height: 300})
	e.SetSelection("A")

	fx, fy, ok := e.Locate("A")
	if !ok {
		t.Fatalf("Locate(A) not found")
	}
	wx, wy := e.View().Current().Invert(fx, fy)

	e.ZoomIn()
	advance(time.Second)

	// The selected node's world point stays put on screen.
	sx, sy := e.View().Current().Apply(wx, wy)
	if math.Abs(sx-fx) > 1e-6 || math.Abs(sy-fy) > 1e-6 {
		t.Errorf("focal point moved: (%g, %g) -> (%g, %g)", fx, fy, sx, sy)
	}
}

func TestZoomFocalFallsBackToCenter(t *testing.T) {
	e, _, advance := newTestEngine(t, Options{Width: 400, Height: 300})

	// Viewport center maps to itself at identity; after a zoom about it,
	// it still must.
	e.ZoomIn()
	advance(time.Second)
	sx, sy := e.View().Current().Apply(200, 150)
	if math.Abs(sx-200) > 1e-6 || math.Abs(sy-150) > 1e-6 {
		t.Errorf("viewport center moved to (%g, %g) zooming with no selection", sx, sy)
	}
}

func TestZoomFocalDefaultsToSceneCenter(t *testing.T) {
	// Hosts construct the engine without a viewport size; the focal point
	// must then be the mounted scene's center, not the origin.
	clock, advance := fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	e := New(Options{Clock: clock})
	if err := e.SetMarkup([]byte(testMarkup)); err != nil {
		t.Fatalf("SetMarkup() error = %v", err)
	}

	e.ZoomIn()
	advance(time.Second)

	// Scene is 134x116; its center must stay put across the zoom.
	sx, sy := e.View().Current().Apply(67, 58)
	if math.Abs(sx-67) > 1e-6 || math.Abs(sy-58) > 1e-6 {
		t.Errorf("scene center moved to (%g, %g) zooming with no viewport size", sx, sy)
	}
	if got := e.View().Current().Scale; math.Abs(got-view.ZoomFactor) > 1e-9 {
		t.Errorf("scale = %g, want %g", got, view.ZoomFactor)
	}
}

func TestStaticClickIntents(t *testing.T) {
	e, rec, _ := newTestEngine(t, Options{})

	// Node A renders at (31, 26.2) under the root translate(4 112).
	e.PointerDown(31, 26.2)
	e.PointerUp(31, 26.2)
	if len(rec.selects) != 1 || rec.selects[0] != "A" {
		t.Fatalf("selects = %v, want [A]", rec.selects)
	}

	e.PointerDown(1, 1)
	e.PointerUp(1, 1)
	if rec.clears != 1 {
		t.Errorf("clears = %d after background click, want 1", rec.clears)
	}
}

func TestFancyClickIntents(t *testing.T) {
	e, rec, advance := newTestEngine(t, Options{Fancy: true})
	if e.FancyScene() == nil {
		t.Fatal("FancyScene() = nil in fancy mode")
	}

	x, y, ok := e.Locate("A")
	if !ok {
		t.Fatalf("Locate(A) not found")
	}

	// Quick press-release is a click.
	e.PointerDown(x, y)
	advance(50 * time.Millisecond)
	e.PointerUp(x, y)
	if len(rec.selects) != 1 || rec.selects[0] != "A" {
		t.Fatalf("selects = %v, want [A]", rec.selects)
	}

	// A held press arms into a drag and suppresses the click.
	e.PointerDown(x, y)
	advance(400 * time.Millisecond)
	e.Tick()
	e.PointerUp(x, y)
	if len(rec.selects) != 1 {
		t.Errorf("selects = %v after drag, want no new intent", rec.selects)
	}

	// Background press-release clears.
	e.PointerDown(1000, 1000)
	e.PointerUp(1000, 1000)
	if rec.clears != 1 {
		t.Errorf("clears = %d after background click, want 1", rec.clears)
	}
}

func TestModeSwitchRetainsTransform(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	e.View().Set(view.Transform{Scale: 2, TranslateX: 30, TranslateY: -10})

	e.SetFancy(true)
	if e.FancyScene() == nil {
		t.Fatal("FancyScene() = nil after SetFancy(true)")
	}
	got := e.View().Current()
	want := view.Transform{Scale: 2, TranslateX: 30, TranslateY: -10}
	if got != want {
		t.Errorf("transform after mode switch = %+v, want %+v", got, want)
	}

	e.SetFancy(false)
	if e.FancyScene() != nil {
		t.Errorf("FancyScene() != nil after switching back to static")
	}
	if got := e.View().Current(); got != want {
		t.Errorf("transform after switching back = %+v, want %+v", got, want)
	}
}

func TestSetFancySameModeIsNoop(t *testing.T) {
	e, rec, _ := newTestEngine(t, Options{})
	before := rec.graphs
	e.SetFancy(false)
	if rec.graphs != before {
		t.Errorf("SetFancy with the current mode remounted the scene")
	}
}

func TestFreeMoveFlagCarriesAcrossModes(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})

	e.SetFreeMove(true)
	if !e.FreeMove() {
		t.Fatalf("FreeMove() = false after enabling")
	}
	e.SetFancy(true)
	if s := e.FancyScene(); s == nil || !s.FreeMove() {
		t.Errorf("fancy scene mounted without the remembered free-move flag")
	}

	e.SetFreeMove(false)
	if s := e.FancyScene(); s.FreeMove() {
		t.Errorf("live scene did not follow SetFreeMove(false)")
	}
}

func TestHoverTransitions(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{Fancy: true})

	x, y, _ := e.Locate("A")
	e.Hover(x, y)
	if e.hovered != "A" {
		t.Fatalf("hovered = %q, want %q", e.hovered, "A")
	}
	// Hovering the same node again is a no-op; moving to background clears.
	e.Hover(x, y)
	e.Hover(1000, 1000)
	if e.hovered != "" {
		t.Errorf("hovered = %q after leaving the node, want empty", e.hovered)
	}
}

func TestExportWithoutScene(t *testing.T) {
	e := New(Options{})
	if _, err := e.Export(context.Background()); err == nil {
		t.Fatal("Export() error = nil with no mounted scene")
	}
}

func TestCloseTearsDown(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{Fancy: true})
	e.Close()
	if e.SVG() != nil {
		t.Errorf("SVG() != nil after Close")
	}
	if e.Animating() {
		t.Errorf("Animating() = true after Close")
	}
}
