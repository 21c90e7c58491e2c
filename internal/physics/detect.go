package physics

import "math"

// minContactDistance floors center-to-closest-point distances so normals never divide by zero.
const minContactDistance = 1e-4

// Contact is a detected overlap. Normal is unit length and points from B toward A.
type Contact struct {
	A, B        *Body
	Normal      Vec2
	Penetration float64
}

type detectFunc func(a, b *Body) (Contact, bool)

// detectors is indexed by [shape of a][shape of b].
var detectors = [2][2]detectFunc{
	ShapeBox: {
		ShapeBox:    detectBoxBox,
		ShapeCircle: detectBoxCircle,
	},
	ShapeCircle: {
		ShapeBox:    detectCircleBox,
		ShapeCircle: detectCircleCircle,
	},
}

// Detect tests a pair of bodies for overlap. Two static bodies never produce a contact.
// The returned contact may list the bodies in the opposite order from the arguments.
func Detect(a, b *Body) (Contact, bool) {
	if a.InvMass == 0 && b.InvMass == 0 {
		return Contact{}, false
	}
	if int(a.Shape) > 1 || int(b.Shape) > 1 {
		return Contact{}, false
	}
	return detectors[a.Shape][b.Shape](a, b)
}

// signOrOne is math.Sign with zero mapped to +1.
func signOrOne(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func aabbOverlap(a, b AABB) bool {
	return !(a.Max.X < b.Min.X || a.Min.X > b.Max.X || a.Max.Y < b.Min.Y || a.Min.Y > b.Max.Y)
}

func detectBoxBox(a, b *Body) (Contact, bool) {
	ba, bb := a.AABB(), b.AABB()
	if !aabbOverlap(ba, bb) {
		return Contact{}, false
	}
	overlapX := math.Min(ba.Max.X, bb.Max.X) - math.Max(ba.Min.X, bb.Min.X)
	overlapY := math.Min(ba.Max.Y, bb.Max.Y) - math.Max(ba.Min.Y, bb.Min.Y)
	if overlapX <= 0 || overlapY <= 0 {
		return Contact{}, false
	}

	c := Contact{A: a, B: b}
	if overlapX < overlapY {
		c.Normal = Vec2{X: signOrOne(a.Position.X - b.Position.X)}
		c.Penetration = overlapX
	} else {
		c.Normal = Vec2{Y: signOrOne(a.Position.Y - b.Position.Y)}
		c.Penetration = overlapY
	}
	return c, true
}

func detectBoxCircle(box, circle *Body) (Contact, bool) {
	return detectCircleBox(circle, box)
}

// detectCircleBox always reports the circle as A so the normal leaves the box.
func detectCircleBox(circle, box *Body) (Contact, bool) {
	bounds := box.AABB()
	center := circle.Position
	closest := Vec2{
		X: math.Max(bounds.Min.X, math.Min(center.X, bounds.Max.X)),
		Y: math.Max(bounds.Min.Y, math.Min(center.Y, bounds.Max.Y)),
	}
	delta := center.Minus(closest)
	distSq := delta.MagnitudeSquared()
	if distSq > circle.Radius*circle.Radius {
		return Contact{}, false
	}

	c := Contact{A: circle, B: box}
	dist := math.Sqrt(distSq)
	if dist >= minContactDistance {
		c.Normal = delta.Times(1 / dist)
		c.Penetration = circle.Radius - dist
		return c, true
	}

	// Center on or inside the box: push out through the nearest face.
	xDepth := math.Min(center.X-bounds.Min.X, bounds.Max.X-center.X)
	yDepth := math.Min(center.Y-bounds.Min.Y, bounds.Max.Y-center.Y)
	if xDepth < yDepth {
		c.Normal = Vec2{X: signOrOne(center.X - box.Position.X)}
		c.Penetration = xDepth + circle.Radius
	} else {
		c.Normal = Vec2{Y: signOrOne(center.Y - box.Position.Y)}
		c.Penetration = yDepth + circle.Radius
	}
	return c, true
}

func detectCircleCircle(a, b *Body) (Contact, bool) {
	delta := a.Position.Minus(b.Position)
	sum := a.Radius + b.Radius
	distSq := delta.MagnitudeSquared()
	if distSq >= sum*sum {
		return Contact{}, false
	}

	c := Contact{A: a, B: b}
	dist := math.Sqrt(distSq)
	if dist < minContactDistance {
		c.Normal = Vec2{Y: 1}
	} else {
		c.Normal = delta.Times(1 / dist)
	}
	c.Penetration = sum - dist
	return c, true
}
