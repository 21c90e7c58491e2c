// Command arena-tui plays a level in the terminal against an in-process world.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/arcade/internal/config"
	"github.com/playmatatu/arcade/internal/game"
	"github.com/playmatatu/arcade/internal/level"
	"github.com/playmatatu/arcade/internal/physics"
	"github.com/playmatatu/arcade/internal/session"
)

type viewer struct {
	screen tcell.Screen
	sound  *sounder

	layout level.Layout
	arena  game.ArenaConfig
	table  game.TableConfig
	game   game.Game

	aim     aim
	message string
	maxStep float64
}

func loadLayout(name, file string) (level.Layout, error) {
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return level.Layout{}, err
		}
		var l level.Layout
		if err := json.Unmarshal(raw, &l); err != nil {
			return level.Layout{}, err
		}
		return l, l.Validate()
	}
	return level.NewStore(nil, nil, 0).Get(context.Background(), name)
}

func newViewer(l level.Layout, cfg *config.Config, mute bool) (*viewer, error) {
	v := &viewer{
		layout:  l,
		arena:   session.ArenaConfig(cfg),
		table:   session.TableConfig(cfg),
		aim:     aim{angle: -0.6, strength: 0.7},
		maxStep: cfg.MaxStepSeconds,
	}
	if err := v.reset(); err != nil {
		return nil, err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	v.screen = screen
	v.sound = newSounder(mute)
	return v, nil
}

func (v *viewer) reset() error {
	g, err := v.layout.Build(v.arena, v.table)
	if err != nil {
		return err
	}
	v.game = g
	if g.Mode() == game.ModeTable {
		v.aim = aim{angle: 0, strength: 0.5}
	}
	v.message = ""
	return nil
}

func (v *viewer) worldSize() (float64, float64) {
	if v.game.Mode() == game.ModeTable {
		return v.table.Width, v.table.Height
	}
	return v.arena.Width, v.arena.Height
}

func (v *viewer) shoot() error {
	if v.game.Mode() == game.ModeTable {
		if v.game.Snapshot().BallInHand {
			return v.placeCueBall()
		}
		return v.game.Apply(game.Command{
			Type:  game.CommandStrike,
			Angle: v.aim.angle,
			Power: v.aim.power(game.MinPower, v.table.MaxPower),
		})
	}
	// pull points away from the target
	return v.game.Apply(game.Command{Type: game.CommandLaunch, Pull: v.aim.pull(game.MaxPull)})
}

// placeCueBall tries spots along the head string until one is free.
func (v *viewer) placeCueBall() error {
	x := v.table.Width / 4
	var err error
	for _, dy := range []float64{0, -40, 40, -80, 80} {
		p := physics.NewVec2(x, v.table.Height/2+dy)
		if err = v.game.Apply(game.Command{Type: game.CommandPlaceCueBall, Position: p}); err == nil {
			return nil
		}
	}
	return err
}

func (v *viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			v.aim.turn(-0.05)
		case tcell.KeyRight:
			v.aim.turn(0.05)
		case tcell.KeyUp:
			v.aim.adjust(0.05)
		case tcell.KeyDown:
			v.aim.adjust(-0.05)
		case tcell.KeyRune:
			var err error
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				err = v.shoot()
			case 'b':
				err = v.game.Apply(game.Command{Type: game.CommandSkill})
			case 'r':
				err = v.reset()
			}
			v.message = ""
			if err != nil {
				v.message = err.Error()
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func styleFor(color string) tcell.Style {
	if color == "" {
		return tcell.StyleDefault
	}
	return tcell.StyleDefault.Foreground(tcell.GetColor(color))
}

func (v *viewer) draw(state game.State) {
	v.screen.Clear()
	cols, rows := v.screen.Size()
	w, h := v.worldSize()
	p := newProjection(w, h, cols, rows-1)

	for _, b := range state.Bodies {
		style := styleFor(b.Tag.Color)
		if b.Shape == physics.ShapeBox && b.HalfExtents != nil {
			x0, y0, x1, y1 := p.rect(b.Position, *b.HalfExtents)
			for y := y0; y <= y1; y++ {
				for x := x0; x <= x1; x++ {
					v.screen.SetContent(x, y, '█', nil, style)
				}
			}
			continue
		}
		if x, y, ok := p.cell(b.Position); ok {
			r := '●'
			if b.Tag.Kind == "pig" {
				r = '@'
			}
			v.screen.SetContent(x, y, r, nil, style)
		}
	}
	for _, pt := range state.Particles {
		if x, y, ok := p.cell(pt.Position); ok {
			v.screen.SetContent(x, y, '·', nil, styleFor(pt.Color))
		}
	}
	v.drawAim(p, state)
	v.drawStatus(state, cols, rows-1)
	v.screen.Show()
}

// drawAim dots the shot direction from the bird on the sling or the cue ball.
func (v *viewer) drawAim(p projection, state game.State) {
	var from physics.Vec2
	found := false
	for _, b := range state.Bodies {
		if (b.Tag.Kind == "bird" && !state.Launched) || (b.Tag.Kind == "cue" && !state.Moving) {
			from, found = b.Position, true
		}
	}
	if !found {
		return
	}
	dir := v.aim.direction()
	for i := 1; i <= 8; i++ {
		pt := from.Plus(dir.Times(float64(i) * 12 * (0.5 + v.aim.strength)))
		if x, y, ok := p.cell(pt); ok {
			v.screen.SetContent(x, y, '∙', nil, tcell.StyleDefault.Foreground(tcell.ColorWhite))
		}
	}
}

func (v *viewer) drawStatus(state game.State, cols, row int) {
	line := fmt.Sprintf(" %s | %s | score %d | power %3.0f%% ", v.layout.Name, state.Status, state.Score, v.aim.strength*100)
	if state.Mode == game.ModeArena {
		line += fmt.Sprintf("| birds %d ", len(state.Birds))
	} else {
		line += fmt.Sprintf("| shots %d | pocketed %d ", state.Shots, len(state.Pocketed))
	}
	line += "| ←→ aim ↑↓ power space shoot b skill r reset q quit"
	if v.message != "" {
		line = " " + v.message + " |" + line
	}
	style := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range line {
		if x >= cols {
			break
		}
		v.screen.SetContent(x, row, r, nil, style)
		x++
	}
}

func (v *viewer) run() {
	ticker := time.NewTicker(16 * time.Millisecond) // ~60 FPS
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- v.screen.PollEvent()
		}
	}()

	last := time.Now()
	for {
		select {
		case ev := <-eventChan:
			if !v.handleInput(ev) {
				return
			}

		case now := <-ticker.C:
			dt := min(now.Sub(last).Seconds(), v.maxStep)
			last = now
			v.game.Step(dt)
			v.sound.play(v.game.Drain())
			v.draw(v.game.Snapshot())
		}
	}
}

func (v *viewer) cleanup() {
	v.sound.close()
	v.screen.Fini()
}

func main() {
	name := flag.String("level", "default", "built-in level to play")
	file := flag.String("file", "", "level document to play instead of a built-in")
	mute := flag.Bool("mute", false, "disable sound")
	flag.Parse()

	cfg := config.Load()
	l, err := loadLayout(*name, *file)
	if err != nil {
		if errors.Is(err, level.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "Unknown level %q\n", *name)
		} else {
			fmt.Fprintf(os.Stderr, "Failed to load level: %v\n", err)
		}
		os.Exit(1)
	}

	v, err := newViewer(l, cfg, *mute)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer v.cleanup()

	v.run()
}
