package view

import (
	"math"
	"testing"
	"time"
)

// fixedClock returns a settable clock function for driving transitions.
func fixedClock(start time.Time) (func() time.Time, func(d time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func newTestController() (*Controller, func(d time.Duration)) {
	c := NewController()
	clock, advance := fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	c.SetClock(clock)
	return c, advance
}

func TestTransformApplyInvert(t *testing.T) {
	tr := Transform{Scale: 2, TranslateX: 10, TranslateY: -5}

	sx, sy := tr.Apply(3, 4)
	if sx != 16 || sy != 3 {
		t.Errorf("Apply(3,4) = (%g, %g), want (16, 3)", sx, sy)
	}

	wx, wy := tr.Invert(sx, sy)
	if math.Abs(wx-3) > 1e-9 || math.Abs(wy-4) > 1e-9 {
		t.Errorf("Invert round trip = (%g, %g), want (3, 4)", wx, wy)
	}
}

func TestTransformString(t *testing.T) {
	tr := Transform{Scale: 1.5, TranslateX: 10, TranslateY: 20}
	want := "translate(10 20) scale(1.5)"
	if got := tr.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestZoomClampUpper(t *testing.T) {
	c, advance := newTestController()

	// Repeated zoom-in never drives scale above the bound.
	for i := 0; i < 50; i++ {
		c.ZoomIn(0, 0)
		advance(time.Second)
	}
	if got := c.Current().Scale; got > ScaleMax {
		t.Errorf("scale after repeated ZoomIn = %g, want <= %g", got, ScaleMax)
	}
	if got := c.Current().Scale; math.Abs(got-ScaleMax) > 1e-9 {
		t.Errorf("scale did not saturate at %g, got %g", ScaleMax, got)
	}
}

func TestZoomClampLower(t *testing.T) {
	c, advance := newTestController()

	for i := 0; i < 50; i++ {
		c.ZoomOut(0, 0)
		advance(time.Second)
	}
	if got := c.Current().Scale; got < ScaleMin {
		t.Errorf("scale after repeated ZoomOut = %g, want >= %g", got, ScaleMin)
	}
	if got := c.Current().Scale; math.Abs(got-ScaleMin) > 1e-9 {
		t.Errorf("scale did not saturate at %g, got %g", ScaleMin, got)
	}
}

func TestZoomKeepsFocalFixed(t *testing.T) {
	c, advance := newTestController()
	c.Set(Transform{Scale: 1.5, TranslateX: 20, TranslateY: -10})

	const fx, fy = 100.0, 50.0
	wx, wy := c.Current().Invert(fx, fy)

	c.ZoomIn(fx, fy)
	advance(time.Second) // past the transition

	gx, gy := c.Current().Invert(fx, fy)
	if math.Abs(gx-wx) > 1e-9 || math.Abs(gy-wy) > 1e-9 {
		t.Errorf("focal world point moved: (%g, %g) -> (%g, %g)", wx, wy, gx, gy)
	}
	if got, want := c.Current().Scale, 1.5*ZoomFactor; math.Abs(got-want) > 1e-9 {
		t.Errorf("scale = %g, want %g", got, want)
	}
}

func TestSetCancelsTransition(t *testing.T) {
	c, advance := newTestController()

	c.ZoomIn(0, 0)
	if !c.Animating() {
		t.Fatal("not animating after ZoomIn")
	}

	// Mode switches reapply the retained transform verbatim.
	c.Set(Transform{Scale: 3, TranslateX: 1, TranslateY: 2})
	if c.Animating() {
		t.Error("still animating after Set")
	}
	if got := c.Current(); got != (Transform{Scale: 3, TranslateX: 1, TranslateY: 2}) {
		t.Errorf("Current() = %+v after Set", got)
	}
	advance(time.Second)
	if got := c.Current().Scale; got != 3 {
		t.Errorf("scale drifted to %g after Set", got)
	}
}

func TestResetReturnsToIdentity(t *testing.T) {
	c, advance := newTestController()
	c.Set(Transform{Scale: 4, TranslateX: 100, TranslateY: 100})

	c.Reset()
	advance(time.Second)

	if got := c.Current(); got != Identity() {
		t.Errorf("Current() after Reset = %+v, want identity", got)
	}
}

func TestPan(t *testing.T) {
	c, advance := newTestController()

	c.Pan(30, -40)
	advance(time.Second)

	got := c.Current()
	if got.TranslateX != 30 || got.TranslateY != -40 {
		t.Errorf("translate after Pan = (%g, %g), want (30, -40)", got.TranslateX, got.TranslateY)
	}
	if got.Scale != 1 {
		t.Errorf("Pan changed scale to %g", got.Scale)
	}
}

func TestWheelZoomFactor(t *testing.T) {
	c, advance := newTestController()

	c.ZoomBy(0, 0, 0) // non-positive factors are ignored
	c.ZoomBy(-2, 0, 0)
	if c.Animating() {
		t.Error("invalid factor started a transition")
	}

	c.ZoomBy(2, 0, 0)
	advance(time.Second)
	if got := c.Current().Scale; math.Abs(got-2) > 1e-9 {
		t.Errorf("scale = %g, want 2", got)
	}
}
