package physics

import "math"

// Resolve separates the bodies of c and applies the restitution impulse.
//
// Positional correction moves each dynamic body along the normal in proportion to its
// inverse mass so the pair no longer overlaps. The impulse is skipped when the bodies are
// already separating. The returned magnitude is |j|; applied is false when no impulse was
// exchanged (both static or separating).
func Resolve(c Contact) (magnitude float64, applied bool) {
	a, b := c.A, c.B
	totalInvMass := a.InvMass + b.InvMass
	if totalInvMass == 0 {
		return 0, false
	}

	penetration := math.Max(c.Penetration, 0)
	correction := c.Normal.Times(penetration / totalInvMass)
	if a.InvMass != 0 {
		a.Position = a.Position.Plus(correction.Times(a.InvMass))
	}
	if b.InvMass != 0 {
		b.Position = b.Position.Minus(correction.Times(b.InvMass))
	}

	velAlongNormal := a.Velocity.Minus(b.Velocity).Dot(c.Normal)
	if velAlongNormal > 0 {
		return 0, false
	}

	restitution := math.Min(a.Restitution, b.Restitution)
	j := -(1 + restitution) * velAlongNormal / totalInvMass
	impulse := c.Normal.Times(j)
	if a.InvMass != 0 {
		a.Velocity = a.Velocity.Plus(impulse.Times(a.InvMass))
	}
	if b.InvMass != 0 {
		b.Velocity = b.Velocity.Minus(impulse.Times(b.InvMass))
	}
	return math.Abs(j), true
}
