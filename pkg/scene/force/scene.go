// Package force implements the physics-augmented "fancy" render mode.
//
// # Overview
//
// The scene seeds a force simulation at compacted static-layout coordinates:
// every node's home ("origin") position is the layout bounding-box center
// plus half the offset to the node's raw position, which shortens edges
// without changing relative topology. All nodes start pinned at their origin,
// so the initial render exactly matches the compacted static layout before
// any interaction.
//
// # Forces
//
// Pairwise link attraction toward the natural edge length, general repulsion
// between all node pairs, per-node collision avoidance with the shape
// bounding radius plus padding, and a per-axis anchor spring pulling each
// node home. The anchor springs are why pinned nodes stay still and released
// nodes drift back.
//
// # Interaction
//
// Dragging runs through an explicit gesture state machine (see
// [GestureState]) with a 300ms arm delay separating clicks from drags.
// Releasing a drag animates the dragged node and its released neighbors back
// home unless free-move mode is on. All timing flows through an injectable
// clock and an explicit per-frame Step, so nothing here spawns goroutines or
// sleeps.
package force

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/graphscope/pkg/anim"
	"github.com/matzehuels/graphscope/pkg/diagram"
	"github.com/matzehuels/graphscope/pkg/scene"
	"github.com/matzehuels/graphscope/pkg/view"
)

// compaction is the fixed factor shortening each node's offset from the
// layout bounding-box center when deriving origins.
const compaction = 0.5

// Scene is the force-directed render mode.
type Scene struct {
	graph *diagram.GraphData
	vc    *view.Controller
	clock func() time.Time

	width, height float64

	// bodies is the arena in draw order; hover raises a body to the end.
	bodies []*Body
	byID   map[string]*Body
	links  []link
	params Params
	sim    *Simulation

	g        gesture
	freeMove bool

	returns   []*returnAnim
	hovers    map[string]*anim.Tween
	highlight scene.Highlight
	closed    bool
}

// returnAnim animates one body from a captured position back to its origin,
// pinning it there on completion.
type returnAnim struct {
	body         *Body
	fromX, fromY float64
	tw           anim.Tween
}

// Option configures a Scene.
type Option func(*Scene)

// WithClock replaces the scene's time source, letting tests drive the arm
// delay and return animations without real sleeping.
func WithClock(clock func() time.Time) Option {
	return func(s *Scene) { s.clock = clock }
}

// New builds a fancy scene over the parsed model. The canonical GraphData is
// never mutated: the scene derives its own arena of body records.
func New(g *diagram.GraphData, vc *view.Controller, opts ...Option) *Scene {
	s := &Scene{
		graph:  g,
		vc:     vc,
		clock:  time.Now,
		byID:   make(map[string]*Body),
		params: TightParams,
		hovers: make(map[string]*anim.Tween),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.width, s.height = viewBoxSize(g.ViewBox)
	s.seed()
	s.sim = newSimulation(s.bodies, s.links, &s.params)
	return s
}

// seed creates the arena: node positions are mapped through the native root
// transform into viewBox space, origins sit at the compacted positions, and
// every body starts pinned at its origin.
func (s *Scene) seed() {
	if len(s.graph.Nodes) == 0 {
		return
	}
	sx, sy, tx, ty := s.graph.Transform()
	rs := math.Max(sx, sy)

	xs := make([]float64, len(s.graph.Nodes))
	ys := make([]float64, len(s.graph.Nodes))
	for i, n := range s.graph.Nodes {
		xs[i] = sx * (n.X + tx)
		ys[i] = sy * (n.Y + ty)
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 1; i < len(xs); i++ {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}
	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2

	for i, n := range s.graph.Nodes {
		b := &Body{
			ID:      n.ID,
			OriginX: cx + (xs[i]-cx)*compaction,
			OriginY: cy + (ys[i]-cy)*compaction,
			Radius:  n.Shape.Radius * rs,
		}
		b.X, b.Y = b.OriginX, b.OriginY
		b.Pin(b.OriginX, b.OriginY)
		s.bodies = append(s.bodies, b)
		s.byID[n.ID] = b
	}

	for _, e := range s.graph.Edges {
		src, okS := s.byID[e.Source]
		dst, okT := s.byID[e.Target]
		if !okS || !okT {
			// Edge referencing an unknown node: kept in the model but
			// not simulated.
			continue
		}
		s.links = append(s.links, link{source: src, target: dst, id: e.ID})
	}
}

// viewBoxSize parses "minX minY w h", returning a default frame when absent.
func viewBoxSize(vb string) (float64, float64) {
	f := strings.Fields(vb)
	if len(f) == 4 {
		w, errW := strconv.ParseFloat(f[2], 64)
		h, errH := strconv.ParseFloat(f[3], 64)
		if errW == nil && errH == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	return 800, 600
}

// =============================================================================
// Frame stepping
// =============================================================================

// Step advances the scene by one animation frame: arms pending gestures,
// progresses return animations, and runs one simulation tick while the
// simulation has energy left.
func (s *Scene) Step() {
	if s.closed {
		return
	}
	now := s.clock()

	if s.g.state == GesturePending && !now.Before(s.g.armAt) {
		s.arm()
	}

	s.stepReturns(now)

	if s.sim.Active() {
		s.sim.Step()
	}
}

// Animating reports whether the scene still needs frames.
func (s *Scene) Animating() bool {
	if s.closed {
		return false
	}
	return s.sim.Active() || len(s.returns) > 0 || s.g.state != GestureIdle
}

// stepReturns advances in-flight return animations, pinning each body along
// its eased path and nudging the simulation so bystanders react.
func (s *Scene) stepReturns(now time.Time) {
	if len(s.returns) == 0 {
		return
	}

	remaining := s.returns[:0]
	for _, r := range s.returns {
		k := r.tw.Value(now)
		x := r.fromX + (r.body.OriginX-r.fromX)*k
		y := r.fromY + (r.body.OriginY-r.fromY)*k
		r.body.Pin(x, y)
		if r.tw.Done(now) {
			r.body.Pin(r.body.OriginX, r.body.OriginY)
			continue
		}
		remaining = append(remaining, r)
	}
	s.returns = remaining
	s.sim.Nudge(nudgeAlpha)

	if len(s.returns) == 0 && s.g.state == GestureReleasing {
		s.g.reset()
	}
}

// startReturn schedules a return animation for the body over d.
func (s *Scene) startReturn(b *Body, d time.Duration) {
	r := &returnAnim{
		body:  b,
		fromX: b.X,
		fromY: b.Y,
		tw:    anim.Tween{Start: 0, End: 1, Duration: d},
	}
	r.tw.Begin(s.clock())
	s.returns = append(s.returns, r)
}

// =============================================================================
// Drag gesture
// =============================================================================

// PointerDown starts a gesture on the given node. Until the arm delay fires,
// pointer movement does not move the node; a quick release is a plain click.
func (s *Scene) PointerDown(id string, screenX, screenY float64) {
	if s.closed || s.byID[id] == nil {
		return
	}
	wx, wy := s.vc.Current().Invert(screenX, screenY)
	s.g = gesture{
		state:  GesturePending,
		nodeID: id,
		armAt:  s.clock().Add(armDelay),
		x:      wx,
		y:      wy,
	}
}

// arm transitions Pending → Dragging: the dragged node is unpinned at its
// current position and re-pinned to the pointer, its direct neighbors lose
// their anchor-lock so they can react, and the simulation is re-energized.
// Any return animation still in flight for these bodies is cancelled, so a
// re-drag during a release return immediately follows the pointer instead of
// being re-pinned along the return path.
func (s *Scene) arm() {
	b := s.byID[s.g.nodeID]
	if b == nil {
		s.g.reset()
		return
	}
	s.g.state = GestureDragging
	s.cancelReturn(b)
	b.Pin(b.X, b.Y)
	for id := range s.graph.Neighbors(s.g.nodeID) {
		if nb := s.byID[id]; nb != nil {
			s.cancelReturn(nb)
			nb.Unpin()
		}
	}
	s.sim.SetAlphaTarget(dragAlpha)
	s.sim.Nudge(dragAlpha)
}

// cancelReturn drops any in-flight return animation for the body.
func (s *Scene) cancelReturn(b *Body) {
	kept := s.returns[:0]
	for _, r := range s.returns {
		if r.body != b {
			kept = append(kept, r)
		}
	}
	s.returns = kept
}

// PointerMove tracks the pointer. Only an armed (Dragging) gesture moves the
// node: its pinned position follows the pointer.
func (s *Scene) PointerMove(screenX, screenY float64) {
	if s.closed {
		return
	}
	wx, wy := s.vc.Current().Invert(screenX, screenY)
	s.g.x, s.g.y = wx, wy
	if s.g.state == GestureDragging {
		if b := s.byID[s.g.nodeID]; b != nil {
			b.Pin(wx, wy)
		}
	}
}

// PointerUp ends the gesture. It returns the clicked node id and true when
// the gesture never armed (a plain click, reported as selection intent); a
// completed drag suppresses the click.
func (s *Scene) PointerUp() (string, bool) {
	if s.closed {
		return "", false
	}
	switch s.g.state {
	case GesturePending:
		id := s.g.nodeID
		s.g.reset()
		return id, true

	case GestureDragging:
		s.sim.SetAlphaTarget(0)
		b := s.byID[s.g.nodeID]
		if b == nil {
			s.g.reset()
			return "", false
		}
		if s.freeMove {
			// Let the node settle under the live forces.
			b.Unpin()
			s.g.reset()
			return "", false
		}
		s.g.state = GestureReleasing
		s.startReturn(b, releaseReturn)
		for id := range s.graph.Neighbors(s.g.nodeID) {
			if nb := s.byID[id]; nb != nil && !nb.Pinned() {
				s.startReturn(nb, releaseReturn)
			}
		}
		return "", false
	}
	return "", false
}

// Gesture exposes the current drag state.
func (s *Scene) Gesture() GestureState {
	return s.g.state
}

// =============================================================================
// Hover
// =============================================================================

// Hover raises the node to the front of the draw order and grows its visual
// content toward [hoverScale]. The scale applies to an inner content group
// only, never to simulation coordinates.
func (s *Scene) Hover(id string) {
	b := s.byID[id]
	if b == nil || s.closed {
		return
	}
	for i, other := range s.bodies {
		if other == b {
			s.bodies = append(append(s.bodies[:i:i], s.bodies[i+1:]...), b)
			break
		}
	}
	s.startHover(id, hoverScale)
}

// Unhover reverts the node's content scale.
func (s *Scene) Unhover(id string) {
	if s.byID[id] == nil || s.closed {
		return
	}
	s.startHover(id, 1)
}

func (s *Scene) startHover(id string, target float64) {
	now := s.clock()
	cur := 1.0
	if tw, ok := s.hovers[id]; ok {
		cur = tw.Value(now)
	}
	tw := &anim.Tween{Start: cur, End: target, Duration: hoverGrow}
	tw.Begin(now)
	s.hovers[id] = tw
}

// hoverValue returns the node's current content scale.
func (s *Scene) hoverValue(id string, now time.Time) float64 {
	tw, ok := s.hovers[id]
	if !ok {
		return 1
	}
	return tw.Value(now)
}

// =============================================================================
// Free-move mode
// =============================================================================

// SetFreeMove toggles the relaxed-anchoring regime. Enabling releases every
// pin and swaps in [LooseParams]; disabling animates every body back to its
// origin, pinning on arrival, and restores [TightParams].
func (s *Scene) SetFreeMove(on bool) {
	if s.closed || s.freeMove == on {
		return
	}
	s.freeMove = on
	s.returns = nil

	if on {
		s.params = LooseParams
		for _, b := range s.bodies {
			b.Unpin()
		}
		s.sim.Restart()
		return
	}

	s.params = TightParams
	s.sim.SetAlphaTarget(0)
	for _, b := range s.bodies {
		s.startReturn(b, freeMoveReturn)
	}
}

// FreeMove reports whether free-move mode is on.
func (s *Scene) FreeMove() bool {
	return s.freeMove
}

// =============================================================================
// Scene interface
// =============================================================================

var _ scene.Scene = (*Scene)(nil)

// Locate returns the node's on-screen position straight from its simulation
// coordinates through the view transform.
func (s *Scene) Locate(id string) (float64, float64, bool) {
	b := s.byID[id]
	if b == nil {
		return 0, 0, false
	}
	x, y := s.vc.Current().Apply(b.X, b.Y)
	return x, y, true
}

// SetHighlight replaces the scene's selection styling.
func (s *Scene) SetHighlight(h scene.Highlight) {
	s.highlight = h
}

// HitTest resolves a screen coordinate to the topmost node under it.
// Bodies later in draw order win, so a hovered (raised) node is hit first.
func (s *Scene) HitTest(screenX, screenY float64) (string, bool) {
	wx, wy := s.vc.Current().Invert(screenX, screenY)
	for i := len(s.bodies) - 1; i >= 0; i-- {
		b := s.bodies[i]
		if math.Hypot(wx-b.X, wy-b.Y) <= b.Radius {
			return b.ID, true
		}
	}
	return "", false
}

// Body returns the arena record for a node id. Exposed for tests and for the
// TUI's drag bridging; mutations outside the documented operations are not
// supported.
func (s *Scene) Body(id string) *Body {
	return s.byID[id]
}

// Settle runs the simulation to rest. Headless rendering uses this to get
// final fancy-mode geometry without frame stepping.
func (s *Scene) Settle() {
	if !s.closed {
		s.sim.Settle()
	}
}

// Size returns the scene's frame dimensions.
func (s *Scene) Size() (float64, float64) {
	return s.width, s.height
}

// Close stops the simulation, cancels return animations, and discards any
// pending arm timer so it cannot fire after teardown.
func (s *Scene) Close() {
	s.closed = true
	s.returns = nil
	s.g.reset()
	s.sim.SetAlphaTarget(0)
}
