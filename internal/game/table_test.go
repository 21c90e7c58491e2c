package game

import (
	"errors"
	"math"
	"testing"

	"github.com/playmatatu/arcade/internal/physics"
)

func newTestTable(t *testing.T, balls ...Ball) *Table {
	t.Helper()
	tbl, err := NewTable(DefaultTableConfig(), balls)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl
}

func runUntilStopped(t *testing.T, tbl *Table, maxSteps int) int {
	t.Helper()
	for i := 0; i < maxSteps; i++ {
		tbl.Step(frame)
		if tbl.AllStopped() {
			return i + 1
		}
	}
	t.Fatalf("balls still moving after %d steps", maxSteps)
	return 0
}

func TestStandardRackHasNoOverlaps(t *testing.T) {
	cfg := DefaultTableConfig()
	rack := StandardRack(cfg)
	if len(rack) != NumBalls {
		t.Fatalf("rack has %d balls", len(rack))
	}
	for i, a := range rack {
		if a.ID != i {
			t.Errorf("rack[%d].ID = %d", i, a.ID)
		}
		if a.X < cfg.BallRadius || a.X > cfg.Width-cfg.BallRadius || a.Y < cfg.BallRadius || a.Y > cfg.Height-cfg.BallRadius {
			t.Errorf("ball %d off the table at (%.1f, %.1f)", a.ID, a.X, a.Y)
		}
		for _, b := range rack[i+1:] {
			if d := math.Hypot(a.X-b.X, a.Y-b.Y); d < 2*cfg.BallRadius {
				t.Errorf("balls %d and %d overlap (d=%.2f)", a.ID, b.ID, d)
			}
		}
	}
}

func TestNewTableValidatesRack(t *testing.T) {
	tests := []struct {
		name  string
		balls []Ball
	}{
		{"missing cue", []Ball{{ID: 1, X: 100, Y: 100}}},
		{"duplicate id", []Ball{{ID: 0, X: 100, Y: 100}, {ID: 0, X: 200, Y: 100}}},
		{"id out of range", []Ball{{ID: 0, X: 100, Y: 100}, {ID: 16, X: 200, Y: 100}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTable(DefaultTableConfig(), tt.balls); !errors.Is(err, ErrBadRack) {
				t.Errorf("got %v, want ErrBadRack", err)
			}
		})
	}
}

func TestBreakShotComesToRest(t *testing.T) {
	tbl := newTestTable(t)
	before := tbl.Snapshot()

	if err := tbl.Strike(0, tbl.cfg.MaxPower); err != nil {
		t.Fatalf("Strike: %v", err)
	}
	if !tbl.Snapshot().Moving {
		t.Error("snapshot should report moving balls after a strike")
	}
	if err := tbl.Strike(0, 100); !errors.Is(err, ErrBallsMoving) {
		t.Errorf("strike while moving: %v", err)
	}

	runUntilStopped(t, tbl, 60*120)

	after := tbl.Snapshot()
	if after.Shots != 1 {
		t.Errorf("shots = %d, want 1", after.Shots)
	}
	moved := 0
	for _, b := range after.Bodies {
		if !b.Position.IsFinite() {
			t.Fatalf("ball %d has a non-finite position", b.Tag.ID)
		}
		for _, o := range before.Bodies {
			if o.Tag.ID == b.Tag.ID && b.Tag.ID != 0 && o.Position != b.Position {
				moved++
			}
		}
	}
	if moved == 0 {
		t.Error("the break did not move any object ball")
	}
}

func TestStrikeValidatesPower(t *testing.T) {
	tbl := newTestTable(t)
	for _, p := range []float64{0, MinPower - 1, tbl.cfg.MaxPower + 1, math.NaN()} {
		if err := tbl.Strike(0, p); !errors.Is(err, ErrInvalidPower) {
			t.Errorf("Strike(power=%v) = %v", p, err)
		}
	}
	if err := tbl.Apply(Command{Type: CommandLaunch}); !errors.Is(err, ErrUnsupportedCommand) {
		t.Errorf("launch on table: %v", err)
	}
}

func TestScratchGivesBallInHand(t *testing.T) {
	tbl := newTestTable(t, Ball{ID: 0, X: 60, Y: 340}, Ball{ID: 1, X: 600, Y: 100})

	// straight at the bottom-left corner pocket
	if err := tbl.Strike(3*math.Pi/4, 300); err != nil {
		t.Fatalf("Strike: %v", err)
	}
	runUntilStopped(t, tbl, 600)

	s := tbl.Snapshot()
	if !s.BallInHand {
		t.Fatal("cue ball should have been pocketed")
	}
	if len(s.Pocketed) != 1 || s.Pocketed[0] != 0 {
		t.Errorf("pocketed = %v, want [0]", s.Pocketed)
	}
	if s.Score != 0 {
		t.Errorf("scratch scored %d", s.Score)
	}
	var pocketEvent *physics.Event
	for _, e := range tbl.Drain() {
		if e.Type == physics.EventPocketed {
			e := e
			pocketEvent = &e
		}
	}
	if pocketEvent == nil || pocketEvent.Pocket != 3 {
		t.Errorf("pocket event = %+v, want pocket 3", pocketEvent)
	}

	if err := tbl.Strike(0, 200); !errors.Is(err, ErrCueBallInHand) {
		t.Errorf("strike with ball in hand: %v", err)
	}
	if err := tbl.PlaceCueBall(physics.NewVec2(605, 100)); !errors.Is(err, ErrOverlap) {
		t.Errorf("overlapping placement: %v", err)
	}
	if err := tbl.PlaceCueBall(physics.NewVec2(5, 200)); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("out of bounds placement: %v", err)
	}
	if err := tbl.Apply(Command{Type: CommandPlaceCueBall, Position: physics.NewVec2(400, 200)}); err != nil {
		t.Fatalf("PlaceCueBall: %v", err)
	}

	s = tbl.Snapshot()
	if s.BallInHand {
		t.Error("ball in hand should be cleared")
	}
	cue, ok := findKind(s, "cue")
	if !ok || cue.Position != physics.NewVec2(400, 200) || !cue.Velocity.IsZero() {
		t.Errorf("cue ball = %+v", cue)
	}
	if err := tbl.PlaceCueBall(physics.NewVec2(300, 200)); !errors.Is(err, ErrNotBallInHand) {
		t.Errorf("second placement: %v", err)
	}
}

func TestPocketingLastBallCompletesTable(t *testing.T) {
	tbl := newTestTable(t, Ball{ID: 0, X: 400, Y: 200}, Ball{ID: 8, X: 60, Y: 340})
	if err := tbl.world.SetVelocity(tbl.handles[8], physics.NewVec2(-212, 212)); err != nil {
		t.Fatalf("SetVelocity: %v", err)
	}
	runUntilStopped(t, tbl, 600)

	s := tbl.Snapshot()
	if s.Status != StatusCompleted {
		t.Errorf("status = %s, want %s", s.Status, StatusCompleted)
	}
	if s.Score != 1 || len(s.Pocketed) != 1 || s.Pocketed[0] != 8 {
		t.Errorf("score=%d pocketed=%v", s.Score, s.Pocketed)
	}
	if err := tbl.Strike(0, 100); !errors.Is(err, ErrGameOver) {
		t.Errorf("strike after completion: %v", err)
	}
}

func TestRailBounceLosesSpeed(t *testing.T) {
	tbl := newTestTable(t, Ball{ID: 0, X: 400, Y: 200})
	if err := tbl.Strike(0, 600); err != nil {
		t.Fatalf("Strike: %v", err)
	}
	var bounced bool
	for i := 0; i < 120 && !bounced; i++ {
		tbl.Step(frame)
		cue, _ := findKind(tbl.Snapshot(), "cue")
		if cue.Velocity.X < 0 {
			bounced = true
			if cue.Velocity.X < -600*TableDamping {
				t.Errorf("rebound speed %f exceeds damped strike speed", -cue.Velocity.X)
			}
		}
	}
	if !bounced {
		t.Error("cue ball never reached the right rail")
	}
}
