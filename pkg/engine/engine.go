// Package engine orchestrates the viewer core.
//
// An [Engine] owns the canonical graph model, the shared view transform, the
// render-mode flags, and the currently mounted scene. Hosts (the TUI, the
// HTTP API, headless rendering) feed it graph descriptions and pointer/zoom
// operations and drive it one frame at a time through [Engine.Tick]; the
// engine pushes model changes and selection intents back out through the
// [Events] callbacks.
//
// Everything runs on the caller's goroutine. The engine never spawns
// goroutines or sleeps; timed behavior (drag arming, return animations, view
// transitions) is observed against the injected clock on each Tick.
package engine

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphscope/pkg/cache"
	"github.com/matzehuels/graphscope/pkg/diagram"
	"github.com/matzehuels/graphscope/pkg/errors"
	"github.com/matzehuels/graphscope/pkg/export"
	"github.com/matzehuels/graphscope/pkg/layout"
	"github.com/matzehuels/graphscope/pkg/observability"
	"github.com/matzehuels/graphscope/pkg/scene"
	"github.com/matzehuels/graphscope/pkg/scene/force"
	"github.com/matzehuels/graphscope/pkg/scene/static"
	"github.com/matzehuels/graphscope/pkg/view"
)

// =============================================================================
// Events
// =============================================================================

// Events receives notifications from the engine. The engine never owns the
// selection: clicks surface as intents and the host decides what to do with
// them (normally toggle and call [Engine.SetSelection]).
type Events interface {
	// OnGraphChanged fires after a parse fully replaces the model.
	OnGraphChanged(g *diagram.GraphData)

	// OnSelectIntent fires when a node click completes.
	OnSelectIntent(id string)

	// OnClearIntent fires when a background click completes.
	OnClearIntent()

	// OnError fires for layout failures surfaced while loading.
	OnError(err error)
}

// NoopEvents discards all notifications.
type NoopEvents struct{}

func (NoopEvents) OnGraphChanged(*diagram.GraphData) {}
func (NoopEvents) OnSelectIntent(string)             {}
func (NoopEvents) OnClearIntent()                    {}
func (NoopEvents) OnError(error)                     {}

// =============================================================================
// Options
// =============================================================================

// Options configures an engine.
type Options struct {
	// LayoutEngine is the layout algorithm name. Empty means "dot".
	LayoutEngine string

	// Fancy mounts the force-directed scene instead of the static one.
	Fancy bool

	// FreeMove relaxes anchoring in fancy mode. Ignored while Fancy is off.
	FreeMove bool

	// Width and Height are the viewport size in screen units, used for the
	// zoom focal-point fallback.
	Width, Height float64

	// Cache holds laid-out markup and export artifacts. Nil disables
	// caching.
	Cache cache.Cache
	Keyer cache.Keyer

	// Runtime collaborators.
	Logger *log.Logger
	Events Events
	Clock  func() time.Time
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Events == nil {
		o.Events = NoopEvents{}
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Keyer == nil {
		o.Keyer = cache.NewDefaultKeyer()
	}
}

// =============================================================================
// Engine
// =============================================================================

// Engine is the render handle for one viewer instance.
type Engine struct {
	opts   Options
	layout *layout.Engine
	vc     *view.Controller

	markup    []byte
	graph     *diagram.GraphData
	selection string

	scn     scene.Scene   // current scene, nil while no diagram is mounted
	fancyS  *force.Scene  // set while the fancy scene is mounted
	staticS *static.Scene // set while the static scene is mounted

	hovered string
	bgPress bool // pointer went down on empty background
}

// New creates an engine. No diagram is mounted until markup arrives.
func New(opts Options) *Engine {
	opts.setDefaults()
	e := &Engine{
		opts:   opts,
		layout: &layout.Engine{Name: opts.LayoutEngine},
		vc:     view.NewController(),
	}
	e.vc.SetClock(opts.Clock)
	return e
}

// Graph returns the current model. Nil before the first parse.
func (e *Engine) Graph() *diagram.GraphData {
	return e.graph
}

// Selection returns the currently applied selection id, or empty.
func (e *Engine) Selection() string {
	return e.selection
}

// View returns the shared view-transform controller.
func (e *Engine) View() *view.Controller {
	return e.vc
}

// Fancy reports whether the force-directed scene is active.
func (e *Engine) Fancy() bool {
	return e.opts.Fancy
}

// FancyScene returns the mounted force scene, or nil in static mode.
// Exposed for tests and for hosts that need simulation state directly.
func (e *Engine) FancyScene() *force.Scene {
	return e.fancyS
}

// =============================================================================
// Loading
// =============================================================================

// LoadDescription lays out DOT text and mounts the result. A layout failure
// clears the model, renders nothing, and surfaces the error both through the
// return value and [Events.OnError].
func (e *Engine) LoadDescription(ctx context.Context, dot string) error {
	hooks := observability.Viewer()
	hooks.OnLayoutStart(ctx, e.layout.Name)
	start := time.Now()

	markup, err := e.layoutCached(ctx, dot)
	hooks.OnLayoutComplete(ctx, e.layout.Name, time.Since(start), err)
	if err != nil {
		e.opts.Logger.Error("layout failed", "error", err)
		e.SetMarkup(nil)
		e.opts.Events.OnError(err)
		return err
	}
	return e.SetMarkup(markup)
}

// layoutCached resolves DOT text to laid-out markup through the cache.
func (e *Engine) layoutCached(ctx context.Context, dot string) ([]byte, error) {
	if e.opts.Cache == nil {
		return e.layout.Render(ctx, dot)
	}

	key := e.opts.Keyer.LayoutKey(dot, e.layout.Name)
	if data, found, err := e.opts.Cache.Get(ctx, key); err == nil && found {
		observability.Cache().OnCacheHit(ctx, "layout")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	markup, err := e.layout.Render(ctx, dot)
	if err != nil {
		return nil, err
	}
	if err := e.opts.Cache.Set(ctx, key, markup, cache.LayoutTTL); err != nil {
		e.opts.Logger.Warn("cache write failed", "error", err)
	}
	observability.Cache().OnCacheSet(ctx, "layout", len(markup))
	return markup, nil
}

// SetMarkup replaces the model from laid-out diagram markup. The previous
// scene is fully torn down before the new model is parsed, so no scene ever
// observes a half-updated graph. Empty markup clears everything.
func (e *Engine) SetMarkup(markup []byte) error {
	e.teardown()
	e.markup = markup

	g, err := diagram.Parse(markup)
	if err != nil {
		e.graph = &diagram.GraphData{}
		e.opts.Events.OnGraphChanged(e.graph)
		return err
	}
	e.graph = g
	observability.Viewer().OnParseComplete(context.Background(), len(g.Nodes), len(g.Edges), nil)
	e.opts.Logger.Debug("parsed diagram", "nodes", len(g.Nodes), "edges", len(g.Edges))

	e.mount()
	e.opts.Events.OnGraphChanged(g)
	return nil
}

// mount constructs the scene for the current mode and reapplies highlight.
// The retained view transform carries over untouched.
func (e *Engine) mount() {
	if e.graph == nil || e.graph.Empty() {
		return
	}
	if e.opts.Fancy {
		s := force.New(e.graph, e.vc, force.WithClock(e.opts.Clock))
		if e.opts.FreeMove {
			s.SetFreeMove(true)
		}
		e.fancyS = s
		e.scn = s
	} else {
		s, err := static.New(e.markup, e.graph, e.vc)
		if err != nil {
			e.opts.Logger.Error("mount failed", "error", err)
			return
		}
		e.staticS = s
		e.scn = s
	}
	e.applyHighlight()
}

// teardown closes the mounted scene: the simulation stops, return tweens are
// cancelled, and a pending drag-arm timer is discarded so it cannot fire
// against a dead scene.
func (e *Engine) teardown() {
	if e.scn != nil {
		e.scn.Close()
	}
	e.scn = nil
	e.fancyS = nil
	e.staticS = nil
	e.hovered = ""
	e.bgPress = false
}

// Close tears down the engine.
func (e *Engine) Close() {
	e.teardown()
}

// =============================================================================
// Mode flags
// =============================================================================

// SetFancy switches render modes. The previous scene is fully torn down
// before the next mounts; the view transform is reapplied verbatim so the
// switch does not visually jump.
func (e *Engine) SetFancy(on bool) {
	if e.opts.Fancy == on {
		return
	}
	e.opts.Fancy = on
	retained := e.vc.Current()
	e.teardown()
	e.vc.Set(retained)
	e.mount()
	observability.Viewer().OnModeSwitch(context.Background(), on)
}

// SetFreeMove toggles free-move. Only meaningful in fancy mode; the flag is
// remembered either way and applied on the next fancy mount.
func (e *Engine) SetFreeMove(on bool) {
	e.opts.FreeMove = on
	if e.fancyS != nil {
		e.fancyS.SetFreeMove(on)
	}
}

// FreeMove reports the free-move flag.
func (e *Engine) FreeMove() bool {
	return e.opts.FreeMove
}

// =============================================================================
// Selection
// =============================================================================

// SetSelection applies a selection id. Selecting an id absent from the graph
// dims everything with nothing marked selected; that is accepted behavior.
func (e *Engine) SetSelection(id string) {
	e.selection = id
	e.applyHighlight()
}

// ToggleSelection selects id, or clears the selection when id is already
// selected. Hosts wire this to [Events.OnSelectIntent].
func (e *Engine) ToggleSelection(id string) {
	if e.selection == id {
		e.SetSelection("")
		return
	}
	e.SetSelection(id)
}

// ClearSelection removes any selection.
func (e *Engine) ClearSelection() {
	e.SetSelection("")
}

func (e *Engine) applyHighlight() {
	if e.scn == nil {
		return
	}
	e.scn.SetHighlight(scene.Compute(e.graph, e.selection))
}

// =============================================================================
// View operations
// =============================================================================

// focal returns the zoom focal point: the selected node's current on-screen
// position when one is selected and locatable, else the viewport center.
// Hosts that never configure a viewport size get the mounted scene's center.
func (e *Engine) focal() (float64, float64) {
	if e.selection != "" && e.scn != nil {
		if x, y, ok := e.scn.Locate(e.selection); ok {
			return x, y
		}
	}
	if e.opts.Width > 0 && e.opts.Height > 0 {
		return e.opts.Width / 2, e.opts.Height / 2
	}
	if w, h, ok := e.SceneSize(); ok {
		return w / 2, h / 2
	}
	return 0, 0
}

// ZoomIn zooms in one step about the focal point.
func (e *Engine) ZoomIn() {
	fx, fy := e.focal()
	e.vc.ZoomIn(fx, fy)
}

// ZoomOut zooms out one step about the focal point.
func (e *Engine) ZoomOut() {
	fx, fy := e.focal()
	e.vc.ZoomOut(fx, fy)
}

// Wheel applies wheel-driven zoom about the pointer position. It is gated on
// an active selection: with nothing selected the wheel is left to the host
// (scrolling), so casual viewing never hijacks it.
func (e *Engine) Wheel(deltaY, x, y float64) {
	if e.selection == "" {
		return
	}
	if deltaY < 0 {
		e.vc.ZoomBy(view.ZoomFactor, x, y)
	} else if deltaY > 0 {
		e.vc.ZoomBy(1/view.ZoomFactor, x, y)
	}
}

// Pan translates the view by a step, animated.
func (e *Engine) Pan(dx, dy float64) {
	e.vc.Pan(dx, dy)
}

// ResetView animates the transform back to identity.
func (e *Engine) ResetView() {
	e.vc.Reset()
}

// =============================================================================
// Pointer input
// =============================================================================

// PointerDown begins a pointer interaction at a screen coordinate. In fancy
// mode a hit starts the drag gesture; in static mode the decision is deferred
// to PointerUp.
func (e *Engine) PointerDown(x, y float64) {
	e.bgPress = false
	if e.fancyS != nil {
		id, ok := e.fancyS.HitTest(x, y)
		if !ok {
			e.bgPress = true
			return
		}
		e.fancyS.PointerDown(id, x, y)
	}
}

// PointerMove updates an in-flight pointer interaction.
func (e *Engine) PointerMove(x, y float64) {
	if e.fancyS != nil {
		e.fancyS.PointerMove(x, y)
	}
}

// PointerUp completes a pointer interaction. Plain clicks surface as
// selection intents; a completed drag suppresses the click.
func (e *Engine) PointerUp(x, y float64) {
	if e.fancyS != nil {
		if e.bgPress {
			e.bgPress = false
			e.opts.Events.OnClearIntent()
			return
		}
		if id, clicked := e.fancyS.PointerUp(); clicked {
			e.opts.Events.OnSelectIntent(id)
		}
		return
	}
	if e.staticS != nil {
		if id, ok := e.staticS.HitTest(x, y); ok {
			e.opts.Events.OnSelectIntent(id)
		} else {
			e.opts.Events.OnClearIntent()
		}
	}
}

// Hover updates hover state from a pointer position. Fancy mode only; the
// static scene keeps native geometry and has no hover treatment.
func (e *Engine) Hover(x, y float64) {
	if e.fancyS == nil {
		return
	}
	id, ok := e.fancyS.HitTest(x, y)
	if !ok {
		id = ""
	}
	if id == e.hovered {
		return
	}
	if e.hovered != "" {
		e.fancyS.Unhover(e.hovered)
	}
	if id != "" {
		e.fancyS.Hover(id)
	}
	e.hovered = id
}

// =============================================================================
// Frames
// =============================================================================

// Tick advances one frame: drag arming, return tweens, and simulation steps
// all observe the clock here.
func (e *Engine) Tick() {
	if e.fancyS != nil {
		e.fancyS.Step()
	}
}

// Animating reports whether another frame would change anything on screen.
func (e *Engine) Animating() bool {
	if e.vc.Animating() {
		return true
	}
	if e.fancyS != nil {
		return e.fancyS.Animating()
	}
	return false
}

// Locate returns a node's current on-screen position through the mounted
// scene. ok is false when no scene is mounted or the id is unknown.
func (e *Engine) Locate(id string) (x, y float64, ok bool) {
	if e.scn == nil {
		return 0, 0, false
	}
	return e.scn.Locate(id)
}

// SceneSize returns the mounted scene's frame dimensions in screen units.
// ok is false while no diagram is mounted.
func (e *Engine) SceneSize() (w, h float64, ok bool) {
	switch {
	case e.fancyS != nil:
		w, h = e.fancyS.Size()
		return w, h, true
	case e.staticS != nil:
		w, h = e.staticS.Size()
		return w, h, true
	}
	return 0, 0, false
}

// SVG serializes the mounted scene. Nil while no diagram is mounted.
func (e *Engine) SVG() []byte {
	if e.scn == nil {
		return nil
	}
	return e.scn.SVG()
}

// =============================================================================
// Export
// =============================================================================

// Export rasterizes the mounted scene to PNG at export scale with an opaque
// white background. Results are cached by markup hash when a cache is
// configured.
func (e *Engine) Export(ctx context.Context) ([]byte, error) {
	if e.scn == nil {
		return nil, errors.New(errors.ErrCodeExportFailed, "no diagram mounted")
	}
	svg := e.scn.SVG()
	start := time.Now()

	var key string
	if e.opts.Cache != nil {
		key = e.opts.Keyer.ExportKey(cache.Hash(svg), "png", export.Scale)
		if data, found, err := e.opts.Cache.Get(ctx, key); err == nil && found {
			observability.Cache().OnCacheHit(ctx, "export")
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "export")
	}

	png, err := export.PNG(svg)
	observability.Viewer().OnExportComplete(ctx, len(png), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if e.opts.Cache != nil {
		if err := e.opts.Cache.Set(ctx, key, png, cache.ExportTTL); err != nil {
			e.opts.Logger.Warn("cache write failed", "error", err)
		}
		observability.Cache().OnCacheSet(ctx, "export", len(png))
	}
	return png, nil
}
