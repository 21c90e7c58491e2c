package physics

// Commands are issued by the game layer between steps, never from inside one.

// ApplyVelocity adds dv to a dynamic body's velocity. Static bodies are left alone.
func (w *World) ApplyVelocity(h Handle, dv Vec2) error {
	b, ok := w.Body(h)
	if !ok {
		return ErrUnknownBody
	}
	if b.Static || !dv.IsFinite() {
		return nil
	}
	b.Velocity = b.Velocity.Plus(dv)
	return nil
}

// SetVelocity replaces a dynamic body's velocity.
func (w *World) SetVelocity(h Handle, v Vec2) error {
	b, ok := w.Body(h)
	if !ok {
		return ErrUnknownBody
	}
	if b.Static || !v.IsFinite() {
		return nil
	}
	b.Velocity = v
	return nil
}

// SetPosition moves a body, e.g. re-spotting a ball or dragging a projectile in the sling.
func (w *World) SetPosition(h Handle, p Vec2) error {
	b, ok := w.Body(h)
	if !ok {
		return ErrUnknownBody
	}
	if !p.IsFinite() {
		return ErrInvalidPosition
	}
	b.Position = p
	return nil
}

// SetHealth starts tracking health on a body.
func (w *World) SetHealth(h Handle, health float64) error {
	b, ok := w.Body(h)
	if !ok {
		return ErrUnknownBody
	}
	b.Health = health
	b.TracksHealth = true
	return nil
}

// Restore puts a pocketed body back into play at p with zero velocity.
func (w *World) Restore(h Handle, p Vec2) error {
	for i, b := range w.pocketed {
		if b.Handle != h {
			continue
		}
		w.pocketed = append(w.pocketed[:i], w.pocketed[i+1:]...)
		b.removed, b.pocketed, b.pocket = false, false, 0
		b.Position = p
		b.Velocity = Vec2{}
		w.bodies = append(w.bodies, b)
		return nil
	}
	return ErrUnknownBody
}

// RemoveIf removes every active body matching pred and returns how many were removed.
// No events are emitted; the caller asked for the removal.
func (w *World) RemoveIf(pred func(BodyState) bool) int {
	if pred == nil {
		return 0
	}
	n := 0
	for _, b := range w.bodies {
		if pred(b.state()) {
			b.removed = true
			n++
		}
	}
	if n > 0 {
		w.prune()
	}
	return n
}

// Impact delivers a direct impact to a body through the effect hook, as if a contact had
// produced it. A resulting destruction is applied immediately.
func (w *World) Impact(h Handle, magnitude float64) error {
	b, ok := w.Body(h)
	if !ok {
		return ErrUnknownBody
	}
	w.applyImpact(impact{body: b, magnitude: magnitude})
	w.prune()
	return nil
}

// Blast pushes every dynamic body within radius of center away from it. The kick falls off
// linearly: force = (radius - distance) * strength, applied as force*invMass, and each body
// takes 2*force of direct damage through the hook.
func (w *World) Blast(center Vec2, radius, strength float64) int {
	if !(radius > 0) || !center.IsFinite() {
		return 0
	}
	hit := 0
	for _, b := range w.bodies {
		if b.InvMass == 0 {
			continue
		}
		dir := b.Position.Minus(center)
		dist := dir.Magnitude()
		if dist >= radius {
			continue
		}
		force := (radius - dist) * strength
		b.Velocity = b.Velocity.Plus(dir.Normalize().Times(force * b.InvMass))
		w.pending = append(w.pending, impact{body: b, magnitude: force * 2, direct: true})
		hit++
	}
	w.applyEffects()
	w.prune()
	return hit
}
