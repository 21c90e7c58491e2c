package game

import (
	"errors"
	"math"
	"testing"

	"github.com/playmatatu/arcade/internal/physics"
)

const frame = 1.0 / 60

func newTestArena(t *testing.T, birds ...string) *Arena {
	t.Helper()
	cfg := DefaultArenaConfig()
	cfg.Seed = 7
	// one pig resting on the floor, well right of the sling
	pigs := []Point{{X: 900, Y: cfg.FloorY() - PigRadius}}
	a, err := NewArena(cfg, nil, pigs, birds)
	if err != nil {
		t.Fatalf("NewArena: %v", err)
	}
	return a
}

func findKind(s State, kind string) (physics.BodyState, bool) {
	for _, b := range s.Bodies {
		if b.Tag.Kind == kind {
			return b, true
		}
	}
	return physics.BodyState{}, false
}

func TestArenaHoldsBirdOnSling(t *testing.T) {
	a := newTestArena(t, "blue")
	for i := 0; i < 30; i++ {
		a.Step(frame)
	}
	bird, ok := findKind(a.Snapshot(), "bird")
	if !ok {
		t.Fatal("no bird on the sling")
	}
	want := a.cfg.SlingAnchor().Plus(physics.NewVec2(0, 10))
	if bird.Position != want || !bird.Velocity.IsZero() {
		t.Errorf("bird drifted: pos=%v vel=%v", bird.Position, bird.Velocity)
	}
}

func TestArenaLaunchClampsPull(t *testing.T) {
	a := newTestArena(t, "blue")
	if err := a.Launch(physics.NewVec2(300, 0)); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	s := a.Snapshot()
	bird, _ := findKind(s, "bird")
	if bird.Velocity != physics.NewVec2(MaxPull*LaunchScale, 0) {
		t.Errorf("velocity = %v, want clamped to %v", bird.Velocity, MaxPull*LaunchScale)
	}
	if want := a.cfg.SlingAnchor().Minus(physics.NewVec2(MaxPull, 0)); bird.Position != want {
		t.Errorf("position = %v, want %v", bird.Position, want)
	}
	if !s.Launched {
		t.Error("snapshot should report a bird in flight")
	}

	if err := a.Launch(physics.NewVec2(50, 0)); !errors.Is(err, ErrBirdInFlight) {
		t.Errorf("second launch: %v", err)
	}
}

func TestArenaRejectsBadPull(t *testing.T) {
	a := newTestArena(t)
	for _, pull := range []physics.Vec2{{}, physics.NewVec2(math.NaN(), 1)} {
		if err := a.Launch(pull); !errors.Is(err, ErrInvalidPull) {
			t.Errorf("Launch(%v) = %v, want ErrInvalidPull", pull, err)
		}
	}
}

func TestArenaRetiresBirdAndLoadsNext(t *testing.T) {
	a := newTestArena(t, "blue", "black")
	// fire away from the pig, out past the left edge
	if err := a.Launch(physics.NewVec2(-MaxPull, 0)); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	for i := 0; i < 90; i++ {
		a.Step(frame)
	}

	s := a.Snapshot()
	if s.Launched {
		t.Fatal("bird should have been retired")
	}
	if len(s.Birds) != 1 || s.Birds[0] != "black" {
		t.Errorf("queue = %v, want [black]", s.Birds)
	}
	bird, ok := findKind(s, "bird")
	if !ok || bird.Tag.Color != "#3a3a3a" {
		t.Errorf("next bird not loaded: %+v", bird)
	}
	if s.Status != StatusInProgress {
		t.Errorf("status = %s", s.Status)
	}
}

func TestArenaFailsWhenBirdsRunOut(t *testing.T) {
	a := newTestArena(t, "yellow")
	if err := a.Launch(physics.NewVec2(-MaxPull, 0)); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	for i := 0; i < 90; i++ {
		a.Step(frame)
	}
	if s := a.Snapshot(); s.Status != StatusFailed {
		t.Errorf("status = %s, want %s", s.Status, StatusFailed)
	}
	if err := a.Launch(physics.NewVec2(10, 0)); !errors.Is(err, ErrGameOver) {
		t.Errorf("launch after failure: %v", err)
	}
}

func countKind(s State, kind string) int {
	n := 0
	for _, b := range s.Bodies {
		if b.Tag.Kind == kind {
			n++
		}
	}
	return n
}

func TestArenaExplodingBirdClearsLevel(t *testing.T) {
	a := newTestArena(t, "black", "yellow")
	pig, _ := findKind(a.Snapshot(), "pig")

	if err := a.Launch(physics.NewVec2(MaxPull, 0)); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	// the bird arrives next to the pig
	_ = a.world.SetPosition(a.bird, pig.Position.Minus(physics.NewVec2(20, 0)))

	if err := a.Skill(); err != nil {
		t.Fatalf("Skill: %v", err)
	}

	s := a.Snapshot()
	if _, ok := findKind(s, "pig"); ok {
		t.Fatal("pig survived the explosion")
	}
	if s.Status != StatusCompleted || !a.Cleared() {
		t.Errorf("status = %s, want %s", s.Status, StatusCompleted)
	}
	// the black bird is spent; yellow is left over
	if want := PigScore + BirdBonus; s.Score != want {
		t.Errorf("score = %d, want %d", s.Score, want)
	}
	// explosion, pig and bird
	if len(s.Particles) != 3*burstSize {
		t.Errorf("particles = %d, want %d", len(s.Particles), 3*burstSize)
	}

	destroyed := 0
	for _, e := range a.Drain() {
		if e.Type == physics.EventDestroyed && e.Tag.Kind == "pig" {
			destroyed++
		}
	}
	if destroyed != 1 {
		t.Errorf("pig destroyed events = %d, want 1", destroyed)
	}
}

func TestArenaSkillNeedsBirdInFlight(t *testing.T) {
	a := newTestArena(t)
	if err := a.Skill(); !errors.Is(err, ErrNotLaunched) {
		t.Errorf("Skill with an empty sling: %v", err)
	}

	a = newTestArena(t, "black")
	if err := a.Apply(Command{Type: CommandSkill}); !errors.Is(err, ErrNotLaunched) {
		t.Errorf("Skill before launch: %v", err)
	}
	if _, ok := findKind(a.Snapshot(), "pig"); !ok {
		t.Error("an unlaunched bird must not reach the pig")
	}
}

func TestArenaSkillOncePerBird(t *testing.T) {
	a := newTestArena(t, "yellow", "yellow")
	if err := a.Launch(physics.NewVec2(MaxPull, 0)); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if err := a.Skill(); err != nil {
		t.Fatalf("first Skill: %v", err)
	}
	if !a.Snapshot().SkillUsed {
		t.Error("snapshot should report the skill as used")
	}
	if err := a.Skill(); !errors.Is(err, ErrSkillUsed) {
		t.Errorf("second Skill: %v", err)
	}
}

func TestArenaYellowBirdSpeedsUp(t *testing.T) {
	a := newTestArena(t, "yellow")
	if err := a.Launch(physics.NewVec2(MaxPull, 0)); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	a.Step(frame)
	before, _ := findKind(a.Snapshot(), "bird")

	if err := a.Skill(); err != nil {
		t.Fatalf("Skill: %v", err)
	}
	after, _ := findKind(a.Snapshot(), "bird")
	want := before.Velocity.Times(BoostFactor)
	if after.Velocity.Minus(want).Magnitude() > 1e-9 {
		t.Errorf("velocity = %v, want %v", after.Velocity, want)
	}
}

func TestArenaBlueBirdSplits(t *testing.T) {
	a := newTestArena(t, "blue", "black")
	if err := a.Launch(physics.NewVec2(-MaxPull, 0)); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	a.Step(frame)
	if err := a.Skill(); err != nil {
		t.Fatalf("Skill: %v", err)
	}

	s := a.Snapshot()
	if n := countKind(s, "bird"); n != 3 {
		t.Fatalf("birds after split = %d, want 3", n)
	}
	for _, b := range s.Bodies {
		if b.Tag.Kind == "bird" && b.Radius != SplitRadius {
			t.Errorf("split bird radius = %f, want %f", b.Radius, SplitRadius)
		}
	}

	// the split birds leave the left edge and the black bird is loaded alone
	for i := 0; i < 90; i++ {
		a.Step(frame)
	}
	s = a.Snapshot()
	if s.Launched || s.SkillUsed {
		t.Errorf("launched=%v skill_used=%v after the split birds retired", s.Launched, s.SkillUsed)
	}
	if n := countKind(s, "bird"); n != 1 {
		t.Errorf("birds = %d, want only the loaded one", n)
	}
	if len(s.Birds) != 1 || s.Birds[0] != "black" {
		t.Errorf("queue = %v, want [black]", s.Birds)
	}
}

func TestArenaRestingBodiesSurvive(t *testing.T) {
	cfg := DefaultArenaConfig()
	floor := cfg.FloorY()
	blocks := []Block{
		{X: 600, Y: floor - BlockHeight/2, Material: "wood"},
		{X: 760, Y: floor - BlockHeight/2, Material: "stone"},
		{X: 920, Y: floor - BlockHeight/2, Material: "ice"},
	}
	pigs := []Point{{X: 1020, Y: floor - PigRadius}}
	a, err := NewArena(cfg, blocks, pigs, nil)
	if err != nil {
		t.Fatalf("NewArena: %v", err)
	}
	for i := 0; i < 300; i++ {
		a.Step(frame)
	}
	s := a.Snapshot()
	blocksLeft := 0
	for _, b := range s.Bodies {
		if b.Tag.Kind == "block" {
			blocksLeft++
			if math.Abs(b.Position.Y-(floor-BlockHeight/2)) > 1 {
				t.Errorf("block sank or jumped: %v", b.Position)
			}
		}
	}
	if blocksLeft != 3 {
		t.Errorf("blocks left = %d, want 3", blocksLeft)
	}
	if _, ok := findKind(s, "pig"); !ok {
		t.Error("resting pig was destroyed")
	}
	if s.Score != 0 || s.Status != StatusInProgress {
		t.Errorf("score=%d status=%s", s.Score, s.Status)
	}
}

func TestArenaRejectsUnknownNames(t *testing.T) {
	cfg := DefaultArenaConfig()
	if _, err := NewArena(cfg, []Block{{X: 1, Y: 1, Material: "gold"}}, nil, nil); !errors.Is(err, ErrUnknownMaterial) {
		t.Errorf("unknown material: %v", err)
	}
	if _, err := NewArena(cfg, nil, nil, []string{"red"}); !errors.Is(err, ErrUnknownBird) {
		t.Errorf("unknown bird: %v", err)
	}
}

func TestArenaIgnoresTableCommands(t *testing.T) {
	a := newTestArena(t)
	if err := a.Apply(Command{Type: CommandStrike, Power: 100}); !errors.Is(err, ErrUnsupportedCommand) {
		t.Errorf("strike on arena: %v", err)
	}
}

func TestBlockMassAndHealth(t *testing.T) {
	tests := []struct {
		material string
		mass     float64
	}{
		{"wood", 1.92},
		{"stone", 3.84},
		{"ice", 1.28},
	}
	for _, tt := range tests {
		m, err := LookupMaterial(tt.material)
		if err != nil {
			t.Fatalf("LookupMaterial(%q): %v", tt.material, err)
		}
		if got := m.BlockMass(); math.Abs(got-tt.mass) > 1e-9 {
			t.Errorf("%s mass = %f, want %f", tt.material, got, tt.mass)
		}
		if got := blockHealth(m.BlockMass()); math.Abs(got-tt.mass*20) > 1e-9 {
			t.Errorf("%s health = %f", tt.material, got)
		}
	}
}
