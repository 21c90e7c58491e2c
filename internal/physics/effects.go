package physics

// Effect is what a hook decides should happen to a body after an impact or boundary event.
type Effect uint8

const (
	EffectNone Effect = iota
	EffectDestroy
	EffectPocket
)

// BoundaryFloor is the boundary id reported for arena floor contacts.
// Table pockets are reported by their pocket id (0 and up).
const BoundaryFloor = -1

// EffectHook converts impacts and boundary events into domain effects. It is the seam
// between the engine and game rules. Hooks may mutate b.Health; removal itself is
// always carried out by the World.
type EffectHook interface {
	// OnImpact receives the raw impulse magnitude of a pair contact, once per body.
	OnImpact(b *Body, magnitude float64) Effect
	// OnBoundaryCross receives floor contacts (with the closing speed into the floor) and
	// pocket entries.
	OnBoundaryCross(b *Body, boundary int, speed float64) Effect
}

// DirectDamage is implemented by hooks that take damage amounts not produced by a contact,
// such as explosions. The amount is applied as is. Hooks without it receive OnImpact.
type DirectDamage interface {
	OnDamage(b *Body, amount float64) Effect
}

// NoEffects ignores every impact and boundary event.
type NoEffects struct{}

func (NoEffects) OnImpact(*Body, float64) Effect             { return EffectNone }
func (NoEffects) OnBoundaryCross(*Body, int, float64) Effect { return EffectNone }

// DamagePolicy turns impacts into health loss. Damage is magnitude*Scale for pair impacts and
// speed*FloorScale for floor contacts; anything at or below Threshold is ignored. Direct
// damage is neither scaled nor thresholded.
type DamagePolicy struct {
	Scale      float64
	FloorScale float64
	Threshold  float64
}

// DefaultDamage matches the slingshot game's tuning.
func DefaultDamage() DamagePolicy {
	return DamagePolicy{Scale: 0.5, FloorScale: 2}
}

func (p DamagePolicy) OnImpact(b *Body, magnitude float64) Effect {
	return p.damage(b, magnitude*p.Scale)
}

func (p DamagePolicy) OnBoundaryCross(b *Body, boundary int, speed float64) Effect {
	if boundary != BoundaryFloor {
		return EffectNone
	}
	return p.damage(b, speed*p.FloorScale)
}

func (p DamagePolicy) OnDamage(b *Body, amount float64) Effect {
	return p.apply(b, amount)
}

func (p DamagePolicy) damage(b *Body, amount float64) Effect {
	if amount <= p.Threshold {
		return EffectNone
	}
	return p.apply(b, amount)
}

func (p DamagePolicy) apply(b *Body, amount float64) Effect {
	if b.Static || !b.TracksHealth || !(amount > 0) {
		return EffectNone
	}
	b.Health -= amount
	if b.Health <= 0 {
		return EffectDestroy
	}
	return EffectNone
}

// PocketPolicy pockets any pocketable body that crosses into a pocket.
type PocketPolicy struct{}

func (PocketPolicy) OnImpact(*Body, float64) Effect { return EffectNone }

func (PocketPolicy) OnBoundaryCross(b *Body, boundary int, _ float64) Effect {
	if boundary == BoundaryFloor || !b.Tag.Pocketable || b.Static {
		return EffectNone
	}
	return EffectPocket
}

// Effects combines damage and pocketing. Destruction wins over pocketing.
type Effects struct {
	Damage *DamagePolicy
	Pocket bool
}

func (e Effects) OnImpact(b *Body, magnitude float64) Effect {
	if e.Damage == nil {
		return EffectNone
	}
	return e.Damage.OnImpact(b, magnitude)
}

func (e Effects) OnDamage(b *Body, amount float64) Effect {
	if e.Damage == nil {
		return EffectNone
	}
	return e.Damage.OnDamage(b, amount)
}

func (e Effects) OnBoundaryCross(b *Body, boundary int, speed float64) Effect {
	if e.Damage != nil {
		if eff := e.Damage.OnBoundaryCross(b, boundary, speed); eff != EffectNone {
			return eff
		}
	}
	if e.Pocket {
		return PocketPolicy{}.OnBoundaryCross(b, boundary, speed)
	}
	return EffectNone
}
