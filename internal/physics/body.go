package physics

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnknownBody        = errors.New("unknown body")
	ErrInvalidMass        = errors.New("mass must be positive and finite for a dynamic body")
	ErrInvalidRadius      = errors.New("radius must be positive and finite")
	ErrInvalidExtents     = errors.New("half extents must be positive and finite")
	ErrInvalidRestitution = errors.New("restitution must be within [0, 1]")
	ErrInvalidPosition    = errors.New("position must be finite")
)

// Shape identifies the variant of a Body.
type Shape uint8

const (
	ShapeBox Shape = iota
	ShapeCircle
)

func (s Shape) String() string {
	switch s {
	case ShapeBox:
		return "box"
	case ShapeCircle:
		return "circle"
	}
	return "unknown"
}

// MarshalText lets Shape travel as "box"/"circle" in JSON frames.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Shape) UnmarshalText(text []byte) error {
	switch string(text) {
	case "box":
		*s = ShapeBox
	case "circle":
		*s = ShapeCircle
	default:
		return fmt.Errorf("unknown shape %q", text)
	}
	return nil
}

// Handle is a stable, world-unique reference to a body. Zero is never issued.
type Handle uint64

// Tag carries caller-owned identity and role flags. The engine never interprets Kind,
// Color or ID; Destructible and Pocketable select which effects may apply.
type Tag struct {
	Kind         string `json:"kind,omitempty"`
	Color        string `json:"color,omitempty"`
	ID           int    `json:"id,omitempty"`
	Destructible bool   `json:"destructible,omitempty"`
	Pocketable   bool   `json:"pocketable,omitempty"`
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min Vec2 `json:"min"`
	Max Vec2 `json:"max"`
}

// Body is a box or circle. Fields shared by both variants live here; HalfExtents is
// meaningful only for boxes and Radius only for circles.
type Body struct {
	Handle      Handle
	Shape       Shape
	Position    Vec2
	Velocity    Vec2
	HalfExtents Vec2
	Radius      float64
	Mass        float64
	InvMass     float64
	Restitution float64
	Static      bool
	Tag         Tag

	Health       float64
	TracksHealth bool

	removed  bool
	pocketed bool
	pocket   int
}

// AABB returns the box bounds. Circles report their enclosing square.
func (b *Body) AABB() AABB {
	half := b.HalfExtents
	if b.Shape == ShapeCircle {
		half = Vec2{X: b.Radius, Y: b.Radius}
	}
	return AABB{Min: b.Position.Minus(half), Max: b.Position.Plus(half)}
}

// lowerExtent is the distance from the center to the body's bottom edge.
func (b *Body) lowerExtent() float64 {
	if b.Shape == ShapeCircle {
		return b.Radius
	}
	return b.HalfExtents.Y
}

// halfWidth is the distance from the center to the body's side edge.
func (b *Body) halfWidth() float64 {
	if b.Shape == ShapeCircle {
		return b.Radius
	}
	return b.HalfExtents.X
}

// Removed reports whether the body has been marked for removal in the current step.
func (b *Body) Removed() bool {
	return b.removed
}

// PocketID returns the pocket the body left the table through.
func (b *Body) PocketID() (int, bool) {
	return b.pocket, b.pocketed
}

// Pocketed reports whether the body left the table through a pocket.
func (b *Body) Pocketed() bool {
	return b.pocketed
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// newBody validates the parameters common to both shapes.
func newBody(shape Shape, pos Vec2, mass, restitution float64, static bool, tag Tag) (*Body, error) {
	if !pos.IsFinite() {
		return nil, ErrInvalidPosition
	}
	if !finite(restitution) || restitution < 0 || restitution > 1 {
		return nil, ErrInvalidRestitution
	}
	b := &Body{
		Shape:       shape,
		Position:    pos,
		Restitution: restitution,
		Static:      static,
		Tag:         tag,
	}
	if static {
		b.Mass = math.Inf(1)
		if finite(mass) && mass > 0 {
			b.Mass = mass
		}
		return b, nil
	}
	if !finite(mass) || mass <= 0 {
		return nil, ErrInvalidMass
	}
	b.Mass = mass
	b.InvMass = 1 / mass
	return b, nil
}

// NewBox builds a box body without adding it to a world.
func NewBox(pos, half Vec2, mass, restitution float64, static bool, tag Tag) (*Body, error) {
	if !finite(half.X) || !finite(half.Y) || half.X <= 0 || half.Y <= 0 {
		return nil, ErrInvalidExtents
	}
	b, err := newBody(ShapeBox, pos, mass, restitution, static, tag)
	if err != nil {
		return nil, err
	}
	b.HalfExtents = half
	return b, nil
}

// NewCircle builds a circle body without adding it to a world.
func NewCircle(pos Vec2, radius, mass, restitution float64, static bool, tag Tag) (*Body, error) {
	if !finite(radius) || radius <= 0 {
		return nil, ErrInvalidRadius
	}
	b, err := newBody(ShapeCircle, pos, mass, restitution, static, tag)
	if err != nil {
		return nil, err
	}
	b.Radius = radius
	return b, nil
}

// BodyState is the read-only view handed to renderers and the wire.
type BodyState struct {
	Handle      Handle  `json:"handle"`
	Shape       Shape   `json:"shape"`
	Position    Vec2    `json:"position"`
	Velocity    Vec2    `json:"velocity"`
	HalfExtents *Vec2   `json:"half_extents,omitempty"`
	Radius      float64 `json:"radius,omitempty"`
	Health      float64 `json:"health,omitempty"`
	Static      bool    `json:"static,omitempty"`
	Tag         Tag     `json:"tag"`
}

func (b *Body) state() BodyState {
	s := BodyState{
		Handle:   b.Handle,
		Shape:    b.Shape,
		Position: b.Position,
		Velocity: b.Velocity,
		Static:   b.Static,
		Tag:      b.Tag,
	}
	if b.Shape == ShapeBox {
		half := b.HalfExtents
		s.HalfExtents = &half
	} else {
		s.Radius = b.Radius
	}
	if b.TracksHealth {
		s.Health = b.Health
	}
	return s
}
