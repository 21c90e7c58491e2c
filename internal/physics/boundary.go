package physics

import "math"

// BoundaryMode selects how the world keeps bodies in play.
type BoundaryMode uint8

const (
	BoundaryNone BoundaryMode = iota
	// BoundaryArena is a single floor plane with impulse bounce.
	BoundaryArena
	// BoundaryTable is four-sided containment with damped reflection and pockets.
	BoundaryTable
)

// TableDamping scales the reflected velocity component on a rail contact.
const TableDamping = 0.9

// Pocket is a circular hole in a table boundary.
type Pocket struct {
	ID       int     `json:"id"`
	Position Vec2    `json:"position"`
	Radius   float64 `json:"radius"`
}

// Boundary configures the world's containment.
type Boundary struct {
	Mode BoundaryMode

	// Arena: bodies whose lower extent passes FloorY are pushed back up.
	FloorY           float64
	FloorRestitution float64

	// Table: bodies are kept within Min..Max.
	Min     Vec2
	Max     Vec2
	Damping float64
	Pockets []Pocket
}

// ArenaBoundary returns a floor at y with a fully elastic floor surface, so the body's own
// restitution decides the bounce.
func ArenaBoundary(floorY float64) Boundary {
	return Boundary{Mode: BoundaryArena, FloorY: floorY, FloorRestitution: 1}
}

// TableBoundary returns a rectangle from min to max with the given pockets.
func TableBoundary(min, max Vec2, pockets []Pocket) Boundary {
	return Boundary{Mode: BoundaryTable, Min: min, Max: max, Damping: TableDamping, Pockets: pockets}
}

// boundaryHit is an event produced by the boundary pass for the effect phase. For floor
// contacts speed is the closing speed into the floor, before the bounce.
type boundaryHit struct {
	body     *Body
	boundary int
	speed    float64
}

// floorBody stands in for the infinite-mass floor during arena contacts.
func (bd Boundary) floorBody() *Body {
	return &Body{Static: true, Restitution: bd.FloorRestitution, Mass: math.Inf(1)}
}

// resolve runs the boundary pass over bodies and returns the hits for the effect phase.
// Floor hits report only the closing speed above rest.
func (bd Boundary) resolve(bodies []*Body, rest float64) []boundaryHit {
	switch bd.Mode {
	case BoundaryArena:
		return bd.resolveArena(bodies, rest)
	case BoundaryTable:
		return bd.resolveTable(bodies)
	}
	return nil
}

func (bd Boundary) resolveArena(bodies []*Body, rest float64) []boundaryHit {
	var hits []boundaryHit
	floor := bd.floorBody()
	for _, b := range bodies {
		if b.Static || b.removed {
			continue
		}
		depth := b.Position.Y + b.lowerExtent() - bd.FloorY
		if depth <= 0 {
			continue
		}
		closing := b.Velocity.Y
		Resolve(Contact{A: b, B: floor, Normal: Vec2{Y: -1}, Penetration: depth})
		hits = append(hits, boundaryHit{body: b, boundary: BoundaryFloor, speed: math.Max(closing-rest, 0)})
	}
	return hits
}

func (bd Boundary) resolveTable(bodies []*Body) []boundaryHit {
	var hits []boundaryHit
	for _, b := range bodies {
		if b.Static || b.removed {
			continue
		}
		// the effect phase clamps the body if the hook declines the pocket
		if p, ok := bd.pocketAt(b.Position); ok && b.Tag.Pocketable {
			hits = append(hits, boundaryHit{body: b, boundary: p.ID, speed: b.Velocity.Magnitude()})
			continue
		}
		bd.contain(b)
	}
	return hits
}

// contain clamps b inside the table rails, reflecting and damping the velocity on each
// rail it crossed.
func (bd Boundary) contain(b *Body) {
	if bd.Mode != BoundaryTable {
		return
	}
	damping := bd.Damping
	if damping == 0 {
		damping = TableDamping
	}
	hx, hy := b.halfWidth(), b.lowerExtent()
	if b.Position.X-hx < bd.Min.X {
		b.Position.X = bd.Min.X + hx
		b.Velocity.X = -b.Velocity.X * damping
	} else if b.Position.X+hx > bd.Max.X {
		b.Position.X = bd.Max.X - hx
		b.Velocity.X = -b.Velocity.X * damping
	}
	if b.Position.Y-hy < bd.Min.Y {
		b.Position.Y = bd.Min.Y + hy
		b.Velocity.Y = -b.Velocity.Y * damping
	} else if b.Position.Y+hy > bd.Max.Y {
		b.Position.Y = bd.Max.Y - hy
		b.Velocity.Y = -b.Velocity.Y * damping
	}
}

func (bd Boundary) pocketAt(p Vec2) (Pocket, bool) {
	for _, pk := range bd.Pockets {
		if p.Minus(pk.Position).MagnitudeSquared() <= pk.Radius*pk.Radius {
			return pk, true
		}
	}
	return Pocket{}, false
}
