package physics

// EventType names what happened to a body during a step.
type EventType string

const (
	EventImpacted  EventType = "impacted"
	EventDestroyed EventType = "destroyed"
	EventPocketed  EventType = "pocketed"
)

// Event is emitted by the World for the game, render and audio layers to consume.
// Impacted carries Magnitude, Destroyed carries Position, Pocketed carries Pocket.
type Event struct {
	Type      EventType `json:"type"`
	Handle    Handle    `json:"handle"`
	Position  Vec2      `json:"position"`
	Magnitude float64   `json:"magnitude,omitempty"`
	Pocket    int       `json:"pocket"`
	Tag       Tag       `json:"tag"`
}
