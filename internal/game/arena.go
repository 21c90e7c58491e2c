package game

import (
	"fmt"

	"github.com/playmatatu/arcade/internal/physics"
)

// Arena geometry and tuning, in pixels with y growing downward.
const (
	BlockWidth  = 80.0
	BlockHeight = 40.0

	PigRadius      = 18.0
	PigMass        = 1.2
	PigRestitution = 0.3

	BirdRadius      = 16.0
	BirdMass        = 1.0
	BirdRestitution = 0.4

	GroundThickness   = 30.0
	GroundMass        = 10000.0
	GroundRestitution = 0.1

	MaxPull       = 150.0
	LaunchScale   = 3.0
	BlastRadius   = 90.0
	BlastStrength = 8.0
	BoostFactor   = 1.8
	SplitRadius   = 14.0
	SplitMass     = 0.8
	RetireMargin  = 150.0

	PigScore   = 5000
	BlockScore = 500
	BirdBonus  = 10000

	// A launched bird slower than birdRestSpeed for birdRestSeconds, or airborne longer
	// than birdMaxFlight, is retired so the next one can be loaded.
	birdRestSpeed   = 10.0
	birdRestSeconds = 2.0
	birdMaxFlight   = 12.0

	// Impacted events below this magnitude are resting contact noise.
	arenaReportedImpact = 50.0

	// split birds fan out sideways and kick upward
	splitSpread = 60.0
	splitLift   = 40.0

	blastColor = "#ff3355"
	splitColor = "#8fceff"
)

var splitOffsets = []physics.Vec2{{X: -8, Y: -4}, {}, {X: 8, Y: -4}}

// ArenaConfig holds the slingshot arena's world constants.
type ArenaConfig struct {
	Width   float64
	Height  float64
	Gravity physics.Vec2
	Damage  physics.DamagePolicy
	Seed    uint64

	// RestingAllowance is the closing speed, in multiples of |Gravity|*dt, that stacked
	// bodies may jitter with before contacts hurt.
	RestingAllowance float64
}

// DefaultArenaConfig returns the stock 1100x620 arena.
func DefaultArenaConfig() ArenaConfig {
	return ArenaConfig{
		Width:   1100,
		Height:  620,
		Gravity: physics.DefaultGravity,
		Damage:  physics.DamagePolicy{Scale: 0.5, FloorScale: 2, Threshold: 20},

		RestingAllowance: 5,
	}
}

// FloorY is the top of the ground strip.
func (c ArenaConfig) FloorY() float64 {
	return c.Height - GroundThickness
}

// SlingAnchor is where birds are launched from.
func (c ArenaConfig) SlingAnchor() physics.Vec2 {
	return physics.NewVec2(160, c.Height-120)
}

// Arena is the slingshot game: birds are launched at block structures guarding pigs.
type Arena struct {
	cfg       ArenaConfig
	world     *physics.World
	particles *ParticleField

	birds     []string // birds[0] is on the sling or in flight while bird != 0
	bird      physics.Handle
	flock     []physics.Handle // split-off siblings of bird
	launched  bool
	skillUsed bool
	flight    float64
	resting   float64

	pigs   int
	score  int
	status Status
	events []physics.Event
}

// NewArena builds an arena with a ground strip, the given blocks and pigs, and the first
// bird of the queue loaded on the sling.
func NewArena(cfg ArenaConfig, blocks []Block, pigs []Point, birds []string) (*Arena, error) {
	if len(birds) == 0 {
		birds = DefaultBirds
	}
	for _, b := range birds {
		if _, err := LookupBird(b); err != nil {
			return nil, err
		}
	}

	w := physics.NewWorld(physics.Config{
		Gravity:          cfg.Gravity,
		Boundary:         physics.ArenaBoundary(cfg.FloorY()),
		RestingAllowance: cfg.RestingAllowance,
	}, cfg.Damage)
	a := &Arena{
		cfg:       cfg,
		world:     w,
		particles: NewParticleField(cfg.Seed),
		birds:     append([]string(nil), birds...),
		status:    StatusInProgress,
	}
	w.AddAuxiliary(a.particles)

	ground := physics.NewVec2(cfg.Width/2, cfg.Height-GroundThickness/2)
	if _, err := w.AddBox(ground, physics.NewVec2(cfg.Width/2, GroundThickness/2), GroundMass, GroundRestitution, true, physics.Tag{Kind: "ground", Color: "#c4e0a8"}); err != nil {
		return nil, err
	}
	for i, b := range blocks {
		if err := a.spawnBlock(b); err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
	}
	for i, p := range pigs {
		if err := a.spawnPig(p); err != nil {
			return nil, fmt.Errorf("pig %d: %w", i, err)
		}
	}
	if err := a.spawnBird(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Arena) spawnBlock(b Block) error {
	m, err := LookupMaterial(b.Material)
	if err != nil {
		return err
	}
	mass := m.BlockMass()
	h, err := a.world.AddBox(physics.NewVec2(b.X, b.Y), physics.NewVec2(BlockWidth/2, BlockHeight/2), mass, m.Restitution, false,
		physics.Tag{Kind: "block", Color: m.Color, Destructible: true})
	if err != nil {
		return err
	}
	return a.world.SetHealth(h, blockHealth(mass))
}

func (a *Arena) spawnPig(p Point) error {
	h, err := a.world.AddCircle(physics.NewVec2(p.X, p.Y), PigRadius, PigMass, PigRestitution, false,
		physics.Tag{Kind: "pig", Color: "#7bd45b", Destructible: true})
	if err != nil {
		return err
	}
	a.pigs++
	return a.world.SetHealth(h, circleHealth(PigMass))
}

// spawnBird loads birds[0] onto the sling. With an empty queue it leaves the sling empty.
func (a *Arena) spawnBird() error {
	a.bird, a.launched, a.skillUsed, a.flight, a.resting = 0, false, false, 0, 0
	a.flock = nil
	if len(a.birds) == 0 {
		return nil
	}
	bt, err := LookupBird(a.birds[0])
	if err != nil {
		return err
	}
	h, err := a.world.AddCircle(a.restPosition(), BirdRadius, BirdMass, BirdRestitution, false,
		physics.Tag{Kind: "bird", Color: bt.Color})
	if err != nil {
		return err
	}
	a.bird = h
	return a.world.SetHealth(h, circleHealth(BirdMass))
}

func (a *Arena) restPosition() physics.Vec2 {
	return a.cfg.SlingAnchor().Plus(physics.NewVec2(0, 10))
}

func (a *Arena) Mode() Mode {
	return ModeArena
}

// Step advances the world, then applies game rules to what happened.
func (a *Arena) Step(dt float64) {
	a.world.Step(dt)
	a.holdBird()
	a.collect()
	a.retire(dt)
	a.updateStatus()
}

// holdBird keeps an unlaunched bird resting on the sling.
func (a *Arena) holdBird() {
	if a.bird == 0 || a.launched {
		return
	}
	_ = a.world.SetPosition(a.bird, a.restPosition())
	_ = a.world.SetVelocity(a.bird, physics.Vec2{})
}

// collect drains the world's events, scoring destruction and spawning sparks.
func (a *Arena) collect() {
	for _, e := range a.world.Drain() {
		switch e.Type {
		case physics.EventImpacted:
			if e.Magnitude < arenaReportedImpact {
				continue
			}
		case physics.EventDestroyed:
			a.particles.Burst(e.Position, e.Tag.Color)
			if e.Tag.Kind == "block" {
				a.score += BlockScore
			}
			if e.Handle == a.bird {
				a.nextBird()
			}
		}
		a.events = append(a.events, e)
	}
}

// retire removes bodies that left the arena and rotates the bird queue once the
// launched bird is spent.
func (a *Arena) retire(dt float64) {
	minX, maxX, maxY := -RetireMargin, a.cfg.Width+RetireMargin, a.cfg.Height+RetireMargin
	a.world.RemoveIf(func(b physics.BodyState) bool {
		if b.Static || b.Handle == a.bird {
			return false
		}
		return b.Position.X < minX || b.Position.X > maxX || b.Position.Y > maxY
	})

	if a.bird == 0 || !a.launched {
		return
	}
	b, ok := a.world.Body(a.bird)
	if !ok {
		a.nextBird()
		return
	}
	a.flight += dt
	if b.Velocity.Magnitude() < birdRestSpeed {
		a.resting += dt
	} else {
		a.resting = 0
	}
	out := b.Position.X > maxX || b.Position.Y > maxY || b.Position.X < minX
	if out || a.resting >= birdRestSeconds || a.flight >= birdMaxFlight {
		h := a.bird
		a.world.RemoveIf(func(s physics.BodyState) bool { return s.Handle == h })
		a.nextBird()
	}
}

func (a *Arena) nextBird() {
	if flock := a.flock; len(flock) > 0 {
		a.world.RemoveIf(func(s physics.BodyState) bool {
			for _, h := range flock {
				if s.Handle == h {
					return true
				}
			}
			return false
		})
	}
	if len(a.birds) > 0 {
		a.birds = a.birds[1:]
	}
	// Queue entries were validated at construction.
	_ = a.spawnBird()
}

func (a *Arena) updateStatus() {
	alive := 0
	for _, b := range a.world.Snapshot() {
		if b.Tag.Kind == "pig" {
			alive++
		}
	}
	if lost := a.pigs - alive; lost > 0 {
		a.score += lost * PigScore
	}
	a.pigs = alive

	if a.status != StatusInProgress {
		return
	}
	switch {
	case a.pigs == 0:
		a.status = StatusCompleted
		unused := len(a.birds)
		if a.launched {
			unused--
		}
		a.score += unused * BirdBonus
	case a.bird == 0 && len(a.birds) == 0:
		a.status = StatusFailed
	}
}

// Apply runs launch and skill commands.
func (a *Arena) Apply(cmd Command) error {
	switch cmd.Type {
	case CommandLaunch:
		return a.Launch(cmd.Pull)
	case CommandSkill:
		return a.Skill()
	}
	return ErrUnsupportedCommand
}

// Launch fires the loaded bird. pull is the vector from the drag point to the sling
// anchor; it is clamped to MaxPull and the bird leaves at pull*LaunchScale.
func (a *Arena) Launch(pull physics.Vec2) error {
	if a.status != StatusInProgress {
		return ErrGameOver
	}
	if a.bird == 0 {
		return ErrNoBird
	}
	if a.launched {
		return ErrBirdInFlight
	}
	if !pull.IsFinite() {
		return ErrInvalidPull
	}
	pull = pull.ClampLength(MaxPull)
	if pull.IsZero() {
		return ErrInvalidPull
	}
	if err := a.world.SetPosition(a.bird, a.cfg.SlingAnchor().Minus(pull)); err != nil {
		return err
	}
	if err := a.world.SetVelocity(a.bird, pull.Times(LaunchScale)); err != nil {
		return err
	}
	a.launched = true
	a.flight, a.resting = 0, 0
	return nil
}

// Skill triggers the ability of the bird in flight, once per bird: blue splits in three,
// yellow speeds up, black explodes where it is.
func (a *Arena) Skill() error {
	if a.status != StatusInProgress {
		return ErrGameOver
	}
	if a.bird == 0 || !a.launched {
		return ErrNotLaunched
	}
	if a.skillUsed {
		return ErrSkillUsed
	}
	b, ok := a.world.Body(a.bird)
	if !ok {
		return ErrNotLaunched
	}
	bt, err := LookupBird(a.birds[0])
	if err != nil {
		return err
	}
	a.skillUsed = true

	pos := b.Position
	switch bt.Skill {
	case SkillSplit:
		if err := a.split(b); err != nil {
			return err
		}
		a.particles.Burst(pos, splitColor)
	case SkillBoost:
		_ = a.world.SetVelocity(a.bird, b.Velocity.Times(BoostFactor))
		a.particles.Burst(pos, bt.Color)
	case SkillExplode:
		a.world.Blast(pos, BlastRadius, BlastStrength)
		a.particles.Burst(pos, blastColor)
	}
	a.collect()
	a.updateStatus()
	return nil
}

// split replaces the bird with three smaller ones. The middle one carries on as the bird.
func (a *Arena) split(b *physics.Body) error {
	pos, vel, color := b.Position, b.Velocity, b.Tag.Color
	parent := a.bird
	a.world.RemoveIf(func(s physics.BodyState) bool { return s.Handle == parent })

	for i, off := range splitOffsets {
		h, err := a.world.AddCircle(pos.Plus(off), SplitRadius, SplitMass, BirdRestitution, false,
			physics.Tag{Kind: "bird", Color: color})
		if err != nil {
			return err
		}
		_ = a.world.SetHealth(h, circleHealth(SplitMass))
		_ = a.world.SetVelocity(h, vel.Plus(physics.NewVec2(float64(i-1)*splitSpread, -splitLift)))
		if i == 1 {
			a.bird = h
		} else {
			a.flock = append(a.flock, h)
		}
	}
	return nil
}

// Snapshot reports bodies, sparks, the remaining bird queue and the score.
func (a *Arena) Snapshot() State {
	return State{
		Mode:      ModeArena,
		Status:    a.status,
		Step:      a.world.Steps(),
		Score:     a.score,
		Bodies:    a.world.Snapshot(),
		Particles: a.particles.Particles(),
		Birds:     append([]string(nil), a.birds...),
		Launched:  a.launched,
		SkillUsed: a.skillUsed,
	}
}

func (a *Arena) Drain() []physics.Event {
	ev := a.events
	a.events = nil
	return ev
}

// Cleared reports whether every pig is gone.
func (a *Arena) Cleared() bool {
	return a.pigs == 0
}
