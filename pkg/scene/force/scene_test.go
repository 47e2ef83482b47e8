package force

import (
	"math"
	"testing"
	"time"

	"github.com/matzehuels/graphscope/pkg/diagram"
	"github.com/matzehuels/graphscope/pkg/view"
)

// fixedClock returns a settable clock function shared by the scene and the
// view controller, so gesture timing and transitions advance in lockstep.
func fixedClock(start time.Time) (func() time.Time, func(d time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func testGraph() *diagram.GraphData {
	return &diagram.GraphData{
		Nodes: []*diagram.Node{
			{ID: "A", X: 10, Y: 10, Shape: diagram.Shape{Kind: diagram.ShapeEllipse, Radius: 20}},
			{ID: "B", X: 110, Y: 10, Shape: diagram.Shape{Kind: diagram.ShapeEllipse, Radius: 20}},
			{ID: "C", X: 10, Y: 110, Shape: diagram.Shape{Kind: diagram.ShapeEllipse, Radius: 20}},
		},
		Edges: []*diagram.Edge{
			{ID: "A->B", Source: "A", Target: "B", Directed: true},
		},
		ViewBox: "0 0 240 240",
	}
}

func newTestScene(t *testing.T) (*Scene, func(d time.Duration)) {
	t.Helper()
	clock, advance := fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	vc := view.NewController()
	vc.SetClock(clock)
	s := New(testGraph(), vc, WithClock(clock))
	return s, advance
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSeedCompaction(t *testing.T) {
	s, _ := newTestScene(t)

	// Bounding-box center of the raw layout is (60, 60); each origin sits
	// halfway between the center and the raw position.
	wants := map[string][2]float64{
		"A": {35, 35},
		"B": {85, 35},
		"C": {35, 85},
	}
	for id, want := range wants {
		b := s.Body(id)
		if b == nil {
			t.Fatalf("Body(%q) = nil", id)
		}
		if !near(b.OriginX, want[0]) || !near(b.OriginY, want[1]) {
			t.Errorf("origin of %s = (%g, %g), want (%g, %g)", id, b.OriginX, b.OriginY, want[0], want[1])
		}
		if !near(b.X, b.OriginX) || !near(b.Y, b.OriginY) {
			t.Errorf("%s seeded at (%g, %g), want its origin", id, b.X, b.Y)
		}
		if !b.Pinned() {
			t.Errorf("%s not pinned after seeding", id)
		}
	}
}

func TestSizeFromViewBox(t *testing.T) {
	s, _ := newTestScene(t)
	if w, h := s.Size(); w != 240 || h != 240 {
		t.Errorf("Size() = (%g, %g), want (240, 240)", w, h)
	}

	g := testGraph()
	g.ViewBox = "not a viewbox"
	s2 := New(g, view.NewController())
	if w, h := s2.Size(); w != 800 || h != 600 {
		t.Errorf("Size() with bad viewBox = (%g, %g), want default (800, 600)", w, h)
	}
}

func TestQuickReleaseIsClick(t *testing.T) {
	s, advance := newTestScene(t)

	s.PointerDown("A", 35, 35)
	if got := s.Gesture(); got != GesturePending {
		t.Fatalf("Gesture() after PointerDown = %v, want GesturePending", got)
	}

	// Release before the arm delay fires.
	advance(100 * time.Millisecond)
	s.Step()
	if got := s.Gesture(); got != GesturePending {
		t.Fatalf("gesture armed before the delay, got %v", got)
	}

	id, clicked := s.PointerUp()
	if !clicked || id != "A" {
		t.Errorf("PointerUp() = (%q, %v), want (\"A\", true)", id, clicked)
	}
	if got := s.Gesture(); got != GestureIdle {
		t.Errorf("Gesture() after click = %v, want GestureIdle", got)
	}
}

func TestPendingPointerMoveDoesNotMoveNode(t *testing.T) {
	s, _ := newTestScene(t)
	b := s.Body("A")
	x0, y0 := b.X, b.Y

	s.PointerDown("A", 35, 35)
	s.PointerMove(60, 60)
	if !near(b.X, x0) || !near(b.Y, y0) {
		t.Errorf("node moved while gesture still pending: (%g, %g)", b.X, b.Y)
	}
}

func TestDragArmMoveRelease(t *testing.T) {
	s, advance := newTestScene(t)
	a := s.Body("A")
	nb := s.Body("B")

	s.PointerDown("A", 35, 35)
	advance(armDelay)
	s.Step()
	if got := s.Gesture(); got != GestureDragging {
		t.Fatalf("Gesture() after arm delay = %v, want GestureDragging", got)
	}
	if nb.Pinned() {
		t.Errorf("neighbor B still pinned after arming")
	}
	if s.Body("C").Pinned() != true {
		t.Errorf("non-neighbor C unpinned by arming")
	}

	// The dragged node's pin follows the pointer; the position snaps to it
	// on the next frame.
	s.PointerMove(150, 120)
	s.Step()
	if !near(a.X, 150) || !near(a.Y, 120) {
		t.Errorf("dragged node at (%g, %g), want pointer (150, 120)", a.X, a.Y)
	}

	id, clicked := s.PointerUp()
	if clicked || id != "" {
		t.Errorf("PointerUp() after drag = (%q, %v), want no click", id, clicked)
	}
	if got := s.Gesture(); got != GestureReleasing {
		t.Fatalf("Gesture() after release = %v, want GestureReleasing", got)
	}
	if !s.Animating() {
		t.Errorf("Animating() = false during release return")
	}

	// Step past the return animation: node and released neighbor land
	// pinned exactly at their origins.
	advance(releaseReturn + time.Millisecond)
	s.Step()
	if got := s.Gesture(); got != GestureIdle {
		t.Errorf("Gesture() after return completed = %v, want GestureIdle", got)
	}
	for _, b := range []*Body{a, nb} {
		if !b.Pinned() {
			t.Errorf("%s not re-pinned after return", b.ID)
			continue
		}
		if !near(b.X, b.OriginX) || !near(b.Y, b.OriginY) {
			t.Errorf("%s returned to (%g, %g), want origin (%g, %g)", b.ID, b.X, b.Y, b.OriginX, b.OriginY)
		}
	}
}

func TestRedragDuringReturnFollowsPointer(t *testing.T) {
	s, advance := newTestScene(t)
	a := s.Body("A")

	// Drag A away and release, starting the return animation.
	s.PointerDown("A", 35, 35)
	advance(armDelay)
	s.Step()
	s.PointerMove(120, 120)
	s.Step()
	s.PointerUp()

	// Part way through the return, press A again and arm a new drag.
	advance(100 * time.Millisecond)
	s.Step()
	s.PointerDown("A", a.X, a.Y)
	advance(armDelay)
	s.Step()
	if got := s.Gesture(); got != GestureDragging {
		t.Fatalf("Gesture() after re-arm = %v, want GestureDragging", got)
	}

	// The cancelled return must not re-pin the node: it tracks the pointer.
	s.PointerMove(200, 200)
	s.Step()
	if !near(a.X, 200) || !near(a.Y, 200) {
		t.Errorf("re-dragged node at (%g, %g), want pointer (200, 200)", a.X, a.Y)
	}
	if s.Body("B").Pinned() {
		t.Errorf("neighbor B still pinned along its cancelled return")
	}
}

func TestDragTracksViewTransform(t *testing.T) {
	s, _ := newTestScene(t)
	vc := s.vc
	vc.Set(view.Transform{Scale: 2, TranslateX: 10, TranslateY: 0})

	s.PointerDown("A", 0, 0)
	// Screen (80, 70) under scale 2 / translate (10, 0) is world (35, 35).
	s.PointerMove(80, 70)
	if !near(s.g.x, 35) || !near(s.g.y, 35) {
		t.Errorf("tracked world position = (%g, %g), want (35, 35)", s.g.x, s.g.y)
	}
}

func TestFreeMoveRoundTrip(t *testing.T) {
	s, advance := newTestScene(t)

	s.SetFreeMove(true)
	if !s.FreeMove() {
		t.Fatalf("FreeMove() = false after enabling")
	}
	for _, id := range []string{"A", "B", "C"} {
		if s.Body(id).Pinned() {
			t.Errorf("%s still pinned in free-move mode", id)
		}
	}
	if s.params != LooseParams {
		t.Errorf("params = %+v, want LooseParams", s.params)
	}

	// Let the loose simulation run a few frames so bodies drift.
	for i := 0; i < 10; i++ {
		advance(50 * time.Millisecond)
		s.Step()
	}

	s.SetFreeMove(false)
	if s.params != TightParams {
		t.Errorf("params = %+v, want TightParams", s.params)
	}
	advance(freeMoveReturn + time.Millisecond)
	s.Step()
	for _, id := range []string{"A", "B", "C"} {
		b := s.Body(id)
		if !b.Pinned() {
			t.Errorf("%s not re-pinned after leaving free-move", id)
			continue
		}
		if !near(b.X, b.OriginX) || !near(b.Y, b.OriginY) {
			t.Errorf("%s at (%g, %g) after return, want origin (%g, %g)", id, b.X, b.Y, b.OriginX, b.OriginY)
		}
	}
}

func TestFreeMoveReleaseLeavesNodeLoose(t *testing.T) {
	s, advance := newTestScene(t)
	s.SetFreeMove(true)

	s.PointerDown("A", 35, 35)
	advance(armDelay)
	s.Step()
	s.PointerMove(200, 200)

	id, clicked := s.PointerUp()
	if clicked || id != "" {
		t.Errorf("PointerUp() = (%q, %v), want no click", id, clicked)
	}
	if got := s.Gesture(); got != GestureIdle {
		t.Errorf("Gesture() = %v, want GestureIdle (no return in free-move)", got)
	}
	if s.Body("A").Pinned() {
		t.Errorf("released node still pinned in free-move mode")
	}
	if len(s.returns) != 0 {
		t.Errorf("return animations scheduled in free-move mode")
	}
}

func TestHitTest(t *testing.T) {
	s, _ := newTestScene(t)

	if id, ok := s.HitTest(35, 35); !ok || id != "A" {
		t.Errorf("HitTest(35,35) = (%q, %v), want (\"A\", true)", id, ok)
	}
	// Just inside A's radius.
	if id, ok := s.HitTest(35+19, 35); !ok || id != "A" {
		t.Errorf("HitTest near A's rim = (%q, %v), want (\"A\", true)", id, ok)
	}
	if _, ok := s.HitTest(200, 200); ok {
		t.Errorf("HitTest on empty background reported a hit")
	}

	// The hit test works in screen space: pan the view and the same scene
	// point moves with it.
	s.vc.Set(view.Transform{Scale: 1, TranslateX: 100, TranslateY: 0})
	if id, ok := s.HitTest(135, 35); !ok || id != "A" {
		t.Errorf("HitTest after pan = (%q, %v), want (\"A\", true)", id, ok)
	}
	if _, ok := s.HitTest(35, 35); ok {
		t.Errorf("HitTest at stale screen position reported a hit after pan")
	}
}

func TestHoverRaisesDrawOrder(t *testing.T) {
	s, _ := newTestScene(t)

	s.Hover("A")
	if top := s.bodies[len(s.bodies)-1]; top.ID != "A" {
		t.Errorf("top of draw order = %s, want A after hover", top.ID)
	}

	// Overlap B onto A's position: the raised node must win the hit test.
	b := s.Body("B")
	b.Pin(35, 35)
	s.sim.Step()
	if id, ok := s.HitTest(35, 35); !ok || id != "A" {
		t.Errorf("HitTest over stacked nodes = (%q, %v), want raised \"A\"", id, ok)
	}
}

func TestLocateAppliesViewTransform(t *testing.T) {
	s, _ := newTestScene(t)
	s.vc.Set(view.Transform{Scale: 2, TranslateX: 5, TranslateY: -5})

	x, y, ok := s.Locate("A")
	if !ok {
		t.Fatalf("Locate(A) not found")
	}
	if !near(x, 75) || !near(y, 65) {
		t.Errorf("Locate(A) = (%g, %g), want (75, 65)", x, y)
	}
	if _, _, ok := s.Locate("ghost"); ok {
		t.Errorf("Locate on unknown id reported found")
	}
}

func TestSettleStopsAnimating(t *testing.T) {
	s, _ := newTestScene(t)
	s.Settle()
	if s.Animating() {
		t.Errorf("Animating() = true after Settle")
	}
	// Settled positions equal the pinned origins.
	for _, id := range []string{"A", "B", "C"} {
		b := s.Body(id)
		if !near(b.X, b.OriginX) || !near(b.Y, b.OriginY) {
			t.Errorf("%s settled at (%g, %g), want origin", id, b.X, b.Y)
		}
	}
}

func TestCloseDiscardsPendingGesture(t *testing.T) {
	s, advance := newTestScene(t)

	s.PointerDown("A", 35, 35)
	s.Close()

	// The queued arm deadline must not fire after teardown.
	advance(armDelay * 2)
	s.Step()
	if got := s.Gesture(); got != GestureIdle {
		t.Errorf("Gesture() after Close = %v, want GestureIdle", got)
	}
	if s.Animating() {
		t.Errorf("Animating() = true after Close")
	}
}
