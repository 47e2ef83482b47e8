package force

import "math"

// Simulation cooling constants, matching the usual velocity-Verlet-with-decay
// scheme: alpha decays toward alphaTarget each tick and the simulation is
// considered cooled once alpha drops below alphaMin.
const (
	alphaMin      = 0.001
	alphaInitial  = 1.0
	velocityDamp  = 0.6 // velocities retain 60% per tick
	dragAlpha     = 0.3 // alphaTarget while a drag is in progress
	nudgeAlpha    = 0.1 // minimum alpha while a return animation runs
	settleMaxTick = 600 // hard cap for headless settling
)

// alphaDecay is chosen so a free-running simulation cools in ~300 ticks.
var alphaDecay = 1 - math.Pow(alphaMin, 1.0/300)

// Body is one node-state record in the simulation arena. The simulation loop
// and the drag handlers mutate bodies only through the documented operations;
// nothing else holds references into the arena.
type Body struct {
	ID string

	// Live simulated position and velocity.
	X, Y   float64
	VX, VY float64

	// Pinned position. Non-nil means the simulation treats the body as
	// fixed at that point: position snaps to it and velocity is zeroed.
	FX, FY *float64

	// Home position, derived once per parse from the static layout by the
	// compaction transform. Anchor springs pull toward it.
	OriginX, OriginY float64

	// Radius is the shape bounding radius, the minimum collision radius.
	Radius float64
}

// Pin fixes the body at the given point.
func (b *Body) Pin(x, y float64) {
	b.FX, b.FY = &x, &y
}

// Unpin releases the body to the simulation.
func (b *Body) Unpin() {
	b.FX, b.FY = nil, nil
}

// Pinned reports whether the body is fixed.
func (b *Body) Pinned() bool {
	return b.FX != nil
}

// link is a resolved edge between two arena bodies.
type link struct {
	source, target *Body
	id             string
}

// Params are the live force coefficients. The fancy scene swaps between
// [TightParams] and [LooseParams] when free-move mode toggles.
type Params struct {
	LinkStrength   float64
	LinkDistance   float64
	ChargeStrength float64
	CollidePadding float64
	AnchorStrength float64
}

// TightParams are the defaults: nodes hug their origins and the layout stays
// close to the compacted static arrangement.
var TightParams = Params{
	LinkStrength:   0.8,
	LinkDistance:   30,
	ChargeStrength: -1000,
	CollidePadding: 15,
	AnchorStrength: 1,
}

// LooseParams relax anchoring for free-move mode: nodes roam but still drift
// gently home, with enlarged collision padding and slack links.
var LooseParams = Params{
	LinkStrength:   0.1,
	LinkDistance:   200,
	ChargeStrength: -1000,
	CollidePadding: 100,
	AnchorStrength: 0.05,
}

// =============================================================================
// Simulation
// =============================================================================

// Simulation integrates the force system over the arena. It never runs on its
// own: the owner calls Step once per animation frame while Active reports
// true.
type Simulation struct {
	bodies []*Body
	links  []link
	params *Params

	alpha       float64
	alphaTarget float64
}

func newSimulation(bodies []*Body, links []link, params *Params) *Simulation {
	return &Simulation{
		bodies: bodies,
		links:  links,
		params: params,
		alpha:  alphaInitial,
	}
}

// Active reports whether the simulation still has energy to dissipate.
func (s *Simulation) Active() bool {
	return s.alpha >= alphaMin || s.alphaTarget >= alphaMin
}

// Alpha returns the current energy level.
func (s *Simulation) Alpha() float64 {
	return s.alpha
}

// SetAlphaTarget raises or clears the floor the energy decays toward.
// A drag in progress holds the target at [dragAlpha] so the layout keeps
// reacting; releasing sets it back to zero.
func (s *Simulation) SetAlphaTarget(v float64) {
	s.alphaTarget = v
}

// Restart re-energizes a cooled simulation.
func (s *Simulation) Restart() {
	s.alpha = alphaInitial
}

// Nudge lifts alpha to at least v without restarting the full burn-down.
// Return animations use this so bystander nodes visibly react each step.
func (s *Simulation) Nudge(v float64) {
	if s.alpha < v {
		s.alpha = v
	}
}

// Step advances the simulation by one tick: cool, apply forces, integrate.
// Pinned bodies snap to their pin and carry no velocity.
func (s *Simulation) Step() {
	s.alpha += (s.alphaTarget - s.alpha) * alphaDecay

	s.applyLinks()
	s.applyCharge()
	s.applyCollide()
	s.applyAnchors()

	for _, b := range s.bodies {
		if b.FX != nil {
			b.X, b.VX = *b.FX, 0
		} else {
			b.VX *= velocityDamp
			b.X += b.VX
		}
		if b.FY != nil {
			b.Y, b.VY = *b.FY, 0
		} else {
			b.VY *= velocityDamp
			b.Y += b.VY
		}
	}
}

// Settle runs the simulation to rest, bounded by settleMaxTick.
// Used for headless rendering and tests.
func (s *Simulation) Settle() {
	for i := 0; i < settleMaxTick && s.Active(); i++ {
		s.Step()
	}
}

// =============================================================================
// Forces
// =============================================================================

// applyLinks pulls linked bodies toward the natural edge length.
func (s *Simulation) applyLinks() {
	k := s.params.LinkStrength
	dist := s.params.LinkDistance
	for _, l := range s.links {
		dx := l.target.X + l.target.VX - l.source.X - l.source.VX
		dy := l.target.Y + l.target.VY - l.source.Y - l.source.VY
		d := math.Hypot(dx, dy)
		if d == 0 {
			dx, dy, d = jiggle(), jiggle(), 1e-6
		}
		f := (d - dist) / d * s.alpha * k
		l.target.VX -= dx * f / 2
		l.target.VY -= dy * f / 2
		l.source.VX += dx * f / 2
		l.source.VY += dy * f / 2
	}
}

// applyCharge applies pairwise repulsion between all bodies.
func (s *Simulation) applyCharge() {
	k := s.params.ChargeStrength
	for i, a := range s.bodies {
		for _, b := range s.bodies[i+1:] {
			dx := b.X - a.X
			dy := b.Y - a.Y
			d2 := dx*dx + dy*dy
			if d2 == 0 {
				dx, dy = jiggle(), jiggle()
				d2 = dx*dx + dy*dy
			}
			// Negative strength repels, pushing the pair apart along dx.
			w := -k * s.alpha / d2
			b.VX += dx * w
			b.VY += dy * w
			a.VX -= dx * w
			a.VY -= dy * w
		}
	}
}

// applyCollide separates overlapping bodies. Collision radius is the shape
// bounding radius plus the live padding.
func (s *Simulation) applyCollide() {
	pad := s.params.CollidePadding
	for i, a := range s.bodies {
		for _, b := range s.bodies[i+1:] {
			ra := a.Radius + pad
			rb := b.Radius + pad
			r := ra + rb
			dx := (b.X + b.VX) - (a.X + a.VX)
			dy := (b.Y + b.VY) - (a.Y + a.VY)
			d := math.Hypot(dx, dy)
			if d >= r {
				continue
			}
			if d == 0 {
				dx, dy, d = jiggle(), jiggle(), 1e-6
			}
			l := (r - d) / d
			// Heavier (larger) bodies move less.
			wb := ra * ra / (ra*ra + rb*rb)
			b.VX += dx * l * wb
			b.VY += dy * l * wb
			a.VX -= dx * l * (1 - wb)
			a.VY -= dy * l * (1 - wb)
		}
	}
}

// applyAnchors pulls each body toward its origin along both axes. These
// springs are why pinned bodies stay still and released bodies drift back.
func (s *Simulation) applyAnchors() {
	k := s.params.AnchorStrength
	for _, b := range s.bodies {
		b.VX += (b.OriginX - b.X) * k * s.alpha
		b.VY += (b.OriginY - b.Y) * k * s.alpha
	}
}

// jiggle returns a tiny deterministic offset used to separate coincident
// bodies without pulling in a random source.
var jiggleState uint64 = 0x9e3779b97f4a7c15

func jiggle() float64 {
	jiggleState ^= jiggleState << 13
	jiggleState ^= jiggleState >> 7
	jiggleState ^= jiggleState << 17
	return (float64(jiggleState%1000)/1000 - 0.5) * 1e-6
}
