package level

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/playmatatu/arcade/internal/game"
	"github.com/playmatatu/arcade/internal/physics"
)

func TestBuiltinsAreValid(t *testing.T) {
	for _, l := range Builtins() {
		t.Run(l.Name, func(t *testing.T) {
			if err := l.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			g, err := l.Build(game.DefaultArenaConfig(), game.DefaultTableConfig())
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if g.Mode() != l.Mode {
				t.Errorf("built %s game for %s layout", g.Mode(), l.Mode)
			}
			if s := g.Snapshot(); s.Status != game.StatusInProgress || len(s.Bodies) == 0 {
				t.Errorf("fresh game state: status=%s bodies=%d", s.Status, len(s.Bodies))
			}
		})
	}
}

func TestValidateRejects(t *testing.T) {
	base := Default()
	tests := []struct {
		name   string
		mutate func(l *Layout)
	}{
		{"bad name", func(l *Layout) { l.Name = "Bad Name!" }},
		{"empty name", func(l *Layout) { l.Name = "" }},
		{"unknown mode", func(l *Layout) { l.Mode = "golf" }},
		{"no pigs", func(l *Layout) { l.Pigs = nil }},
		{"unknown material", func(l *Layout) { l.Blocks[0].Material = "glass" }},
		{"unknown bird", func(l *Layout) { l.Birds = []string{"red"} }},
		{"nan block", func(l *Layout) { l.Blocks[1].X = math.NaN() }},
		{"infinite pig", func(l *Layout) { l.Pigs[0].Y = math.Inf(1) }},
		{"balls in arena", func(l *Layout) { l.Balls = []game.Ball{{ID: 0}} }},
		{"table with blocks", func(l *Layout) { l.Mode = game.ModeTable }},
		{"rack without cue", func(l *Layout) {
			*l = Layout{Name: "x", Mode: game.ModeTable, Balls: []game.Ball{{ID: 1, X: 10, Y: 10}}}
		}},
		{"duplicate ball", func(l *Layout) {
			*l = Layout{Name: "x", Mode: game.ModeTable, Balls: []game.Ball{{ID: 0, X: 10, Y: 10}, {ID: 0, X: 50, Y: 10}}}
		}},
		{"ball id out of range", func(l *Layout) {
			*l = Layout{Name: "x", Mode: game.ModeTable, Balls: []game.Ball{{ID: 0, X: 10, Y: 10}, {ID: 99, X: 50, Y: 10}}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := base
			l.Blocks = append([]game.Block(nil), base.Blocks...)
			l.Pigs = append([]game.Point(nil), base.Pigs...)
			tt.mutate(&l)
			if err := l.Validate(); !errors.Is(err, ErrInvalidLayout) {
				t.Errorf("Validate = %v, want ErrInvalidLayout", err)
			}
			if _, err := l.Build(game.DefaultArenaConfig(), game.DefaultTableConfig()); err == nil {
				t.Error("Build accepted an invalid layout")
			}
		})
	}
}

func TestDecodesSavedLevelDocument(t *testing.T) {
	// the document shape written by the level editor
	doc := `{"name":"saved","mode":"arena",
		"blocks":[{"x":700,"y":570,"material":"ice"}],
		"pigs":[{"x":700,"y":532}],
		"birds":["black"]}`

	var l Layout
	if err := json.Unmarshal([]byte(doc), &l); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if err := l.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if l.Blocks[0].Material != "ice" || l.Pigs[0].Y != 532 || l.Birds[0] != "black" {
		t.Errorf("decoded %+v", l)
	}
}

func TestDefaultLevelSettles(t *testing.T) {
	g, err := Default().Build(game.DefaultArenaConfig(), game.DefaultTableConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 0; i < 120; i++ {
		g.Step(1.0 / 60)
	}
	pigs := 0
	for _, b := range g.Snapshot().Bodies {
		if b.Tag.Kind == "pig" {
			pigs++
		}
	}
	if pigs == 0 {
		t.Error("every pig died before the first shot")
	}
}

func TestIdleStructuresStayStanding(t *testing.T) {
	for _, l := range []Layout{Default(), Tower()} {
		t.Run(l.Name, func(t *testing.T) {
			g, err := l.Build(game.DefaultArenaConfig(), game.DefaultTableConfig())
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			bodies := len(g.Snapshot().Bodies)
			for i := 0; i < 600; i++ {
				g.Step(1.0 / 60)
				for _, e := range g.Drain() {
					if e.Type == physics.EventDestroyed {
						t.Fatalf("frame %d: %s destroyed with no shot fired", i, e.Tag.Kind)
					}
				}
			}
			s := g.Snapshot()
			if s.Score != 0 || len(s.Bodies) != bodies {
				t.Errorf("score=%d bodies=%d, want 0 and %d", s.Score, len(s.Bodies), bodies)
			}
		})
	}
}

func TestStoreWithoutBackends(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil, nil, 0)

	l, err := s.Get(ctx, "tower")
	if err != nil {
		t.Fatalf("Get(tower): %v", err)
	}
	if l.Mode != game.ModeArena || len(l.Blocks) != 4 {
		t.Errorf("tower = %+v", l)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) = %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"default", "rack", "tower"}
	if len(list) != len(want) {
		t.Fatalf("List = %+v", list)
	}
	for i, sum := range list {
		if sum.Name != want[i] || !sum.Builtin {
			t.Errorf("List[%d] = %+v, want builtin %s", i, sum, want[i])
		}
	}

	if _, err := s.Save(ctx, Tower(), "ed"); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("Save = %v, want ErrNoDatabase", err)
	}
	bad := Tower()
	bad.Pigs = nil
	if _, err := s.Save(ctx, bad, "ed"); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("Save(invalid) = %v, want ErrInvalidLayout", err)
	}
	if err := s.Delete(ctx, "default"); !errors.Is(err, ErrBuiltin) {
		t.Errorf("Delete(default) = %v", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(missing) = %v", err)
	}
}
