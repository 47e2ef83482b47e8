// Package anim provides small time-based tweens for interactive transitions.
//
// Tweens are advanced explicitly with a caller-supplied time, never by
// background goroutines, so the whole animation system stays on the single
// event loop that drives rendering and is trivially testable with a fake
// clock.
package anim

import "time"

// EaseOutCubic is the standard ease-out curve used by all Graphscope
// transitions: fast start, gentle landing. t is in [0,1].
func EaseOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// Linear is an identity easing function.
func Linear(t float64) float64 { return t }

// Tween interpolates a value from Start to End over Duration.
type Tween struct {
	Start    float64
	End      float64
	Duration time.Duration
	Ease     func(float64) float64

	begin time.Time
	live  bool
}

// Begin arms the tween at the given time.
func (tw *Tween) Begin(now time.Time) {
	tw.begin = now
	tw.live = true
	if tw.Ease == nil {
		tw.Ease = EaseOutCubic
	}
}

// Value returns the interpolated value at the given time.
// Before Begin it returns Start; after completion it returns End.
func (tw *Tween) Value(now time.Time) float64 {
	if !tw.live {
		return tw.Start
	}
	if tw.Duration <= 0 {
		return tw.End
	}
	t := float64(now.Sub(tw.begin)) / float64(tw.Duration)
	if t >= 1 {
		return tw.End
	}
	if t < 0 {
		t = 0
	}
	return tw.Start + (tw.End-tw.Start)*tw.Ease(t)
}

// Done reports whether the tween has run its full duration.
func (tw *Tween) Done(now time.Time) bool {
	return tw.live && now.Sub(tw.begin) >= tw.Duration
}

// Active reports whether the tween has begun and not yet finished.
func (tw *Tween) Active(now time.Time) bool {
	return tw.live && !tw.Done(now)
}

// Cancel disarms the tween; Value returns Start again afterwards.
func (tw *Tween) Cancel() {
	tw.live = false
}
