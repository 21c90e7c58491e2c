package physics

import "math"

// DefaultGravity is the slingshot arena's gravity in pixels/s², y pointing down.
var DefaultGravity = Vec2{X: 0, Y: 900}

// Config holds the constants a World is built with.
type Config struct {
	Gravity  Vec2
	Boundary Boundary

	// Friction is a linear speed loss per second applied during integration (table mode).
	// Zero disables it. Speeds below StopSpeed after friction snap to zero.
	Friction  float64
	StopSpeed float64

	// RestingAllowance, in multiples of |Gravity|*dt, is the closing speed treated as resting
	// contact. Floor and pair impacts only report what exceeds it. Zero reports raw impulses.
	RestingAllowance float64
}

// Auxiliary is advanced at the end of every step, after pruning. Used for visual-only state
// such as particles; it must not touch bodies.
type Auxiliary interface {
	Step(dt float64)
}

// impact is a queued effect for the ApplyEffects phase.
type impact struct {
	body      *Body
	magnitude float64
	boundary  int
	isBound   bool
	direct    bool
}

// World owns the bodies and the stepping order. It is not safe for concurrent use; hosts
// with several goroutines must serialise calls.
type World struct {
	cfg      Config
	hook     EffectHook
	bodies   []*Body
	pocketed []*Body
	next     Handle
	pending  []impact
	events   []Event
	aux      []Auxiliary
	steps    uint64
}

// NewWorld creates an empty world. A nil hook behaves as NoEffects.
func NewWorld(cfg Config, hook EffectHook) *World {
	if hook == nil {
		hook = NoEffects{}
	}
	return &World{cfg: cfg, hook: hook}
}

// Config returns the world's construction constants.
func (w *World) Config() Config {
	return w.cfg
}

// SetHook replaces the effect hook.
func (w *World) SetHook(h EffectHook) {
	if h == nil {
		h = NoEffects{}
	}
	w.hook = h
}

// AddAuxiliary registers visual state that advances with each step.
func (w *World) AddAuxiliary(a Auxiliary) {
	w.aux = append(w.aux, a)
}

func (w *World) add(b *Body) Handle {
	w.next++
	b.Handle = w.next
	w.bodies = append(w.bodies, b)
	return b.Handle
}

// AddBox spawns a box centered at pos with the given half extents.
func (w *World) AddBox(pos, half Vec2, mass, restitution float64, static bool, tag Tag) (Handle, error) {
	b, err := NewBox(pos, half, mass, restitution, static, tag)
	if err != nil {
		return 0, err
	}
	return w.add(b), nil
}

// AddCircle spawns a circle centered at pos.
func (w *World) AddCircle(pos Vec2, radius, mass, restitution float64, static bool, tag Tag) (Handle, error) {
	b, err := NewCircle(pos, radius, mass, restitution, static, tag)
	if err != nil {
		return 0, err
	}
	return w.add(b), nil
}

// Body returns the active body for h.
func (w *World) Body(h Handle) (*Body, bool) {
	for _, b := range w.bodies {
		if b.Handle == h {
			return b, true
		}
	}
	return nil, false
}

// Len returns the number of active bodies.
func (w *World) Len() int {
	return len(w.bodies)
}

// Steps returns how many steps have run.
func (w *World) Steps() uint64 {
	return w.steps
}

// Snapshot returns the active bodies in world order.
func (w *World) Snapshot() []BodyState {
	out := make([]BodyState, 0, len(w.bodies))
	for _, b := range w.bodies {
		out = append(out, b.state())
	}
	return out
}

// Pocketed returns the bodies that left play through a pocket, in pocketing order.
func (w *World) Pocketed() []BodyState {
	out := make([]BodyState, 0, len(w.pocketed))
	for _, b := range w.pocketed {
		out = append(out, b.state())
	}
	return out
}

// Drain returns the events produced since the last call and clears the queue.
func (w *World) Drain() []Event {
	ev := w.events
	w.events = nil
	return ev
}

// Step advances the simulation by dt seconds:
// integrate, boundaries, pairs, effects, prune, auxiliary state.
// A zero, negative or NaN dt still runs collision handling but moves nothing.
func (w *World) Step(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		dt = 0
	}
	w.steps++

	w.integrate(dt)

	rest := w.cfg.RestingAllowance * w.cfg.Gravity.Magnitude() * dt
	for _, h := range w.cfg.Boundary.resolve(w.bodies, rest) {
		w.pending = append(w.pending, impact{body: h.body, magnitude: h.speed, boundary: h.boundary, isBound: true})
	}

	w.resolvePairs(rest)
	w.applyEffects()
	w.prune()

	for _, a := range w.aux {
		a.Step(dt)
	}
}

func (w *World) integrate(dt float64) {
	if dt == 0 {
		return
	}
	for _, b := range w.bodies {
		if b.InvMass == 0 {
			continue
		}
		b.Velocity = b.Velocity.Plus(w.cfg.Gravity.Times(dt))
		if w.cfg.Friction > 0 {
			b.Velocity = applyFriction(b.Velocity, w.cfg.Friction*dt, w.cfg.StopSpeed)
		}
		b.Position = b.Position.Plus(b.Velocity.Times(dt))
	}
}

// applyFriction removes loss from the speed of v, snapping to zero below stop.
func applyFriction(v Vec2, loss, stop float64) Vec2 {
	speed := v.Magnitude() - loss
	if speed <= 0 || speed < stop {
		return Vec2{}
	}
	return v.Normalize().Times(speed)
}

// resolvePairs visits every unordered pair once, in world order. Impulses are reported
// net of the resting allowance rest.
func (w *World) resolvePairs(rest float64) {
	for i := 0; i < len(w.bodies); i++ {
		for j := i + 1; j < len(w.bodies); j++ {
			c, ok := Detect(w.bodies[i], w.bodies[j])
			if !ok {
				continue
			}
			closing := -c.A.Velocity.Minus(c.B.Velocity).Dot(c.Normal)
			magnitude, applied := Resolve(c)
			if !applied {
				continue
			}
			magnitude = beyondRest(magnitude, closing, rest)
			w.pending = append(w.pending,
				impact{body: c.A, magnitude: magnitude},
				impact{body: c.B, magnitude: magnitude},
			)
		}
	}
}

// beyondRest scales an impulse down to the part produced by closing speed above rest.
func beyondRest(magnitude, closing, rest float64) float64 {
	if rest <= 0 {
		return magnitude
	}
	if closing <= rest {
		return 0
	}
	return magnitude * (closing - rest) / closing
}

func (w *World) applyEffects() {
	for _, im := range w.pending {
		w.applyImpact(im)
	}
	w.pending = w.pending[:0]
}

// applyImpact hands one queued impact to the hook. Bodies already marked removed are skipped.
func (w *World) applyImpact(im impact) {
	b := im.body
	if b.removed || b.Static {
		return
	}
	var eff Effect
	switch {
	case im.isBound:
		eff = w.hook.OnBoundaryCross(b, im.boundary, im.magnitude)
		if eff == EffectNone && im.boundary != BoundaryFloor {
			// the pocket was declined; keep the body on the table
			w.cfg.Boundary.contain(b)
		}
	case im.direct:
		if im.magnitude > 0 {
			w.events = append(w.events, Event{Type: EventImpacted, Handle: b.Handle, Magnitude: im.magnitude, Tag: b.Tag})
		}
		if d, ok := w.hook.(DirectDamage); ok {
			eff = d.OnDamage(b, im.magnitude)
		} else {
			eff = w.hook.OnImpact(b, im.magnitude)
		}
	default:
		if im.magnitude > 0 {
			w.events = append(w.events, Event{Type: EventImpacted, Handle: b.Handle, Magnitude: im.magnitude, Tag: b.Tag})
		}
		eff = w.hook.OnImpact(b, im.magnitude)
	}

	switch eff {
	case EffectDestroy:
		b.removed = true
		w.events = append(w.events, Event{Type: EventDestroyed, Handle: b.Handle, Position: b.Position, Tag: b.Tag})
	case EffectPocket:
		b.removed = true
		b.pocketed = true
		b.pocket = im.boundary
		b.Velocity = Vec2{}
		w.events = append(w.events, Event{Type: EventPocketed, Handle: b.Handle, Position: b.Position, Tag: b.Tag, Pocket: im.boundary})
	}
}

// prune drops bodies marked removed. Pocketed bodies are retained for scoring.
func (w *World) prune() {
	kept := w.bodies[:0]
	for _, b := range w.bodies {
		if !b.removed {
			kept = append(kept, b)
			continue
		}
		if b.pocketed {
			w.pocketed = append(w.pocketed, b)
		}
	}
	for i := len(kept); i < len(w.bodies); i++ {
		w.bodies[i] = nil
	}
	w.bodies = kept
}
