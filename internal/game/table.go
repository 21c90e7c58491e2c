package game

import (
	"fmt"
	"math"

	"github.com/playmatatu/arcade/internal/physics"
)

// Billiards constants. Ball ids: 0=cue, 1-7=solids, 8=eight, 9-15=stripes.
const (
	NumBalls        = 16
	BallMass        = 1.0
	BallRestitution = 0.94
	MinPower        = 10.0

	// Impacted events below this magnitude are not worth a click sound.
	tableReportedImpact = 5.0
)

var ballColors = [NumBalls]string{
	"#f5f5f0",
	"#f2c500", "#1f4fbf", "#d62828", "#5b2a86", "#f47c20", "#1b7f3b", "#7a1f1f",
	"#111111",
	"#f2c500", "#1f4fbf", "#d62828", "#5b2a86", "#f47c20", "#1b7f3b", "#7a1f1f",
}

// TableConfig holds the billiards table's world constants.
type TableConfig struct {
	Width        float64
	Height       float64
	BallRadius   float64
	PocketRadius float64
	Friction     float64
	StopSpeed    float64
	MaxPower     float64
}

// DefaultTableConfig returns an 800x400 table with 10px balls.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		Width:        800,
		Height:       400,
		BallRadius:   10,
		PocketRadius: 16,
		Friction:     60,
		StopSpeed:    2,
		MaxPower:     1200,
	}
}

// Pockets returns the six pockets: corners and mid-rails, top row first.
func (c TableConfig) Pockets() []physics.Pocket {
	w, h, r := c.Width, c.Height, c.PocketRadius
	return []physics.Pocket{
		{ID: 0, Position: physics.NewVec2(0, 0), Radius: r},
		{ID: 1, Position: physics.NewVec2(w/2, 0), Radius: r},
		{ID: 2, Position: physics.NewVec2(w, 0), Radius: r},
		{ID: 3, Position: physics.NewVec2(0, h), Radius: r},
		{ID: 4, Position: physics.NewVec2(w/2, h), Radius: r},
		{ID: 5, Position: physics.NewVec2(w, h), Radius: r},
	}
}

// StandardRack returns the cue ball and a 15-ball triangle with fixed offsets, so every
// break starts from the same layout.
func StandardRack(c TableConfig) []Ball {
	var pos [NumBalls]physics.Vec2

	cx, cy := c.Width/2, c.Height/2
	i := c.Width / 4
	e := 1.782 // row spacing, slightly over sqrt(3)
	s := 1.05  // column spacing
	br := c.BallRadius

	pos[0] = physics.NewVec2(cx-i, cy)

	pos[1] = physics.NewVec2(cx+i, cy)

	pos[2] = physics.NewVec2(cx+i+e*br, cy+br*s)
	pos[15] = physics.NewVec2(cx+i+e*br, cy-br*s)

	pos[8] = physics.NewVec2(cx+i+2*e*br, cy)
	pos[5] = physics.NewVec2(cx+i+2*e*br, cy+2*br*s)
	pos[10] = physics.NewVec2(cx+i+2*e*br, cy-2*br*s)

	pos[7] = physics.NewVec2(cx+i+3*e*br, cy+br*s)
	pos[4] = physics.NewVec2(cx+i+3*e*br, cy+3*br*s)
	pos[9] = physics.NewVec2(cx+i+3*e*br, cy-br*s)
	pos[6] = physics.NewVec2(cx+i+3*e*br, cy-3*br*s)

	pos[11] = physics.NewVec2(cx+i+4*e*br, cy)
	pos[12] = physics.NewVec2(cx+i+4*e*br, cy+2*br*s)
	pos[13] = physics.NewVec2(cx+i+4*e*br, cy-2*br*s)
	pos[14] = physics.NewVec2(cx+i+4*e*br, cy+4*br*s)
	pos[3] = physics.NewVec2(cx+i+4*e*br, cy-4*br*s)

	balls := make([]Ball, NumBalls)
	for id, p := range pos {
		balls[id] = Ball{ID: id, X: p.X, Y: p.Y}
	}
	return balls
}

// Table is a billiards game: zero gravity, rolling friction, rails and six pockets.
type Table struct {
	cfg   TableConfig
	world *physics.World

	handles    map[int]physics.Handle
	cue        physics.Handle
	pocketed   []int
	ballInHand bool
	shots      int
	status     Status
	events     []physics.Event
}

// NewTable racks the given balls. An empty layout uses StandardRack. The cue ball (id 0)
// is required and ids must be unique within 0-15.
func NewTable(cfg TableConfig, balls []Ball) (*Table, error) {
	if len(balls) == 0 {
		balls = StandardRack(cfg)
	}
	w := physics.NewWorld(physics.Config{
		Boundary:  physics.TableBoundary(physics.Vec2{}, physics.NewVec2(cfg.Width, cfg.Height), cfg.Pockets()),
		Friction:  cfg.Friction,
		StopSpeed: cfg.StopSpeed,
	}, physics.Effects{Pocket: true})

	t := &Table{cfg: cfg, world: w, handles: make(map[int]physics.Handle), status: StatusInProgress}
	for _, b := range balls {
		if b.ID < 0 || b.ID >= NumBalls {
			return nil, fmt.Errorf("%w: ball id %d", ErrBadRack, b.ID)
		}
		if _, dup := t.handles[b.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate ball %d", ErrBadRack, b.ID)
		}
		kind := "ball"
		if b.ID == 0 {
			kind = "cue"
		}
		h, err := w.AddCircle(physics.NewVec2(b.X, b.Y), cfg.BallRadius, BallMass, BallRestitution, false,
			physics.Tag{Kind: kind, ID: b.ID, Color: ballColors[b.ID], Pocketable: true})
		if err != nil {
			return nil, fmt.Errorf("ball %d: %w", b.ID, err)
		}
		t.handles[b.ID] = h
	}
	cue, ok := t.handles[0]
	if !ok {
		return nil, fmt.Errorf("%w: no cue ball", ErrBadRack)
	}
	t.cue = cue
	return t, nil
}

func (t *Table) Mode() Mode {
	return ModeTable
}

func (t *Table) Step(dt float64) {
	t.world.Step(dt)
	for _, e := range t.world.Drain() {
		switch e.Type {
		case physics.EventImpacted:
			if e.Magnitude < tableReportedImpact {
				continue
			}
		case physics.EventPocketed:
			t.pocketed = append(t.pocketed, e.Tag.ID)
			if e.Handle == t.cue {
				t.ballInHand = true
			}
		}
		t.events = append(t.events, e)
	}
	if t.status == StatusInProgress && t.objectBallsLeft() == 0 {
		t.status = StatusCompleted
	}
}

func (t *Table) objectBallsLeft() int {
	n := 0
	for _, b := range t.world.Snapshot() {
		if b.Tag.Kind == "ball" {
			n++
		}
	}
	return n
}

// AllStopped returns true if every ball on the table has zero velocity.
func (t *Table) AllStopped() bool {
	for _, b := range t.world.Snapshot() {
		if !b.Velocity.IsZero() {
			return false
		}
	}
	return true
}

// Apply runs strike and place_cue_ball commands.
func (t *Table) Apply(cmd Command) error {
	switch cmd.Type {
	case CommandStrike:
		return t.Strike(cmd.Angle, cmd.Power)
	case CommandPlaceCueBall:
		return t.PlaceCueBall(cmd.Position)
	}
	return ErrUnsupportedCommand
}

// Strike hits the cue ball along angle (radians) at power px/s.
func (t *Table) Strike(angle, power float64) error {
	if t.status != StatusInProgress {
		return ErrGameOver
	}
	if t.ballInHand {
		return ErrCueBallInHand
	}
	if !t.AllStopped() {
		return ErrBallsMoving
	}
	if math.IsNaN(angle) || math.IsInf(angle, 0) || !(power >= MinPower && power <= t.cfg.MaxPower) {
		return ErrInvalidPower
	}
	v := physics.NewVec2(math.Cos(angle)*power, math.Sin(angle)*power)
	if err := t.world.SetVelocity(t.cue, v); err != nil {
		return err
	}
	t.shots++
	return nil
}

// PlaceCueBall puts a scratched cue ball back on the table.
func (t *Table) PlaceCueBall(p physics.Vec2) error {
	if !t.ballInHand {
		return ErrNotBallInHand
	}
	if !t.AllStopped() {
		return ErrBallsMoving
	}
	r := t.cfg.BallRadius
	if !p.IsFinite() || p.X < r || p.X > t.cfg.Width-r || p.Y < r || p.Y > t.cfg.Height-r {
		return ErrOutOfBounds
	}
	for _, pk := range t.cfg.Pockets() {
		if p.Minus(pk.Position).Magnitude() <= pk.Radius {
			return ErrOutOfBounds
		}
	}
	for _, b := range t.world.Snapshot() {
		if p.Minus(b.Position).Magnitude() < 2*r {
			return ErrOverlap
		}
	}
	if err := t.world.Restore(t.cue, p); err != nil {
		return err
	}
	t.ballInHand = false
	return nil
}

func (t *Table) Snapshot() State {
	return State{
		Mode:       ModeTable,
		Status:     t.status,
		Step:       t.world.Steps(),
		Score:      t.objectBallsPocketed(),
		Bodies:     t.world.Snapshot(),
		Pocketed:   append([]int(nil), t.pocketed...),
		Shots:      t.shots,
		BallInHand: t.ballInHand,
		Moving:     !t.AllStopped(),
	}
}

func (t *Table) objectBallsPocketed() int {
	n := 0
	for _, id := range t.pocketed {
		if id != 0 {
			n++
		}
	}
	return n
}

func (t *Table) Drain() []physics.Event {
	ev := t.events
	t.events = nil
	return ev
}
