// Package view owns the pan/zoom state applied to a mounted diagram.
//
// A [Controller] holds the affine transform for the diagram's root group and
// animates transitions between transforms. It is the only state shared across
// render-mode switches: the last applied transform is retained and reapplied
// verbatim when the scene changes, so toggling fancy mode does not visually
// jump. An explicit reset animates back to identity.
package view

import (
	"fmt"
	"time"

	"github.com/matzehuels/graphscope/pkg/anim"
)

// Scale bounds and the per-step zoom factor.
const (
	ScaleMin   = 0.01
	ScaleMax   = 200.0
	ZoomFactor = 1.3
)

// Transition durations.
const (
	zoomDuration  = 250 * time.Millisecond
	panDuration   = 250 * time.Millisecond
	resetDuration = 300 * time.Millisecond
)

// Transform is an affine zoom/pan transform: screen = world*Scale + Translate.
type Transform struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{Scale: 1}
}

// Apply maps a world coordinate to a screen coordinate.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.Scale + t.TranslateX, y*t.Scale + t.TranslateY
}

// Invert maps a screen coordinate back to a world coordinate.
func (t Transform) Invert(x, y float64) (float64, float64) {
	if t.Scale == 0 {
		return x, y
	}
	return (x - t.TranslateX) / t.Scale, (y - t.TranslateY) / t.Scale
}

// String renders the transform as an SVG transform attribute value.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%.4g %.4g) scale(%.4g)", t.TranslateX, t.TranslateY, t.Scale)
}

// clampScale bounds s to [ScaleMin, ScaleMax].
func clampScale(s float64) float64 {
	if s < ScaleMin {
		return ScaleMin
	}
	if s > ScaleMax {
		return ScaleMax
	}
	return s
}

// =============================================================================
// Controller
// =============================================================================

// Controller owns the live transform and its in-flight transitions.
// It is advanced purely by the event loop: Current reads the interpolated
// transform at the controller's current clock time, and every operation that
// animates replaces any in-flight transition.
type Controller struct {
	now func() time.Time

	settled Transform
	trans   *transition
}

// transition animates between two transforms along a single eased parameter.
type transition struct {
	from, to Transform
	tw       anim.Tween
}

// NewController creates a controller at the identity transform.
func NewController() *Controller {
	return &Controller{now: time.Now, settled: Identity()}
}

// SetClock replaces the controller's time source. Used by tests and by hosts
// that drive frames from their own scheduler.
func (c *Controller) SetClock(now func() time.Time) {
	c.now = now
}

// Current returns the transform at the current clock time, settling any
// finished transition.
func (c *Controller) Current() Transform {
	if c.trans == nil {
		return c.settled
	}
	now := c.now()
	if c.trans.tw.Done(now) {
		c.settled = c.trans.to
		c.trans = nil
		return c.settled
	}
	k := c.trans.tw.Value(now)
	return Transform{
		Scale:      lerp(c.trans.from.Scale, c.trans.to.Scale, k),
		TranslateX: lerp(c.trans.from.TranslateX, c.trans.to.TranslateX, k),
		TranslateY: lerp(c.trans.from.TranslateY, c.trans.to.TranslateY, k),
	}
}

// Animating reports whether a transition is still in flight.
func (c *Controller) Animating() bool {
	if c.trans == nil {
		return false
	}
	return !c.trans.tw.Done(c.now())
}

// Set reapplies a transform verbatim, cancelling any in-flight transition.
// Used when switching render modes so the view does not jump.
func (c *Controller) Set(t Transform) {
	c.trans = nil
	c.settled = t
}

// ZoomIn multiplies the scale by [ZoomFactor] around the focal point.
func (c *Controller) ZoomIn(focalX, focalY float64) {
	c.zoomBy(ZoomFactor, focalX, focalY)
}

// ZoomOut divides the scale by [ZoomFactor] around the focal point.
func (c *Controller) ZoomOut(focalX, focalY float64) {
	c.zoomBy(1/ZoomFactor, focalX, focalY)
}

// ZoomBy scales by an arbitrary positive factor around the focal point.
// Used for wheel-driven zoom where the factor derives from scroll delta.
func (c *Controller) ZoomBy(factor, focalX, focalY float64) {
	if factor <= 0 {
		return
	}
	c.zoomBy(factor, focalX, focalY)
}

// zoomBy computes the target transform keeping the focal screen point fixed:
// t' = f - (f - t) * (s'/s).
func (c *Controller) zoomBy(factor, focalX, focalY float64) {
	cur := c.Current()
	scale := clampScale(cur.Scale * factor)
	ratio := scale / cur.Scale
	target := Transform{
		Scale:      scale,
		TranslateX: focalX - (focalX-cur.TranslateX)*ratio,
		TranslateY: focalY - (focalY-cur.TranslateY)*ratio,
	}
	c.animateTo(target, zoomDuration)
}

// Pan translates the view by the given step, animated.
func (c *Controller) Pan(dx, dy float64) {
	cur := c.Current()
	target := cur
	target.TranslateX += dx
	target.TranslateY += dy
	c.animateTo(target, panDuration)
}

// Reset animates the transform back to identity.
func (c *Controller) Reset() {
	c.animateTo(Identity(), resetDuration)
}

// animateTo starts a transition from the current transform to target.
func (c *Controller) animateTo(target Transform, d time.Duration) {
	tr := &transition{
		from: c.Current(),
		to:   target,
		tw:   anim.Tween{Start: 0, End: 1, Duration: d},
	}
	tr.tw.Begin(c.now())
	c.trans = tr
}

func lerp(a, b, k float64) float64 {
	return a + (b-a)*k
}
