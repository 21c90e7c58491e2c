package level

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/playmatatu/arcade/internal/game"
)

var (
	ErrInvalidLayout = errors.New("invalid layout")
	ErrNotFound      = errors.New("level not found")
	ErrBuiltin       = errors.New("built-in levels are read-only")
)

const (
	maxBlocks = 200
	maxPigs   = 50
	maxBirds  = 20
)

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// Layout is a level document: what to spawn and in which mode.
type Layout struct {
	Name   string       `json:"name"`
	Mode   game.Mode    `json:"mode"`
	Blocks []game.Block `json:"blocks,omitempty"`
	Pigs   []game.Point `json:"pigs,omitempty"`
	Birds  []string     `json:"birds,omitempty"`
	Balls  []game.Ball  `json:"balls,omitempty"`
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidLayout, fmt.Sprintf(format, args...))
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Validate checks the layout before it is stored or built.
func (l Layout) Validate() error {
	if !namePattern.MatchString(l.Name) {
		return invalid("name %q must be lowercase letters, digits, '-' or '_'", l.Name)
	}
	switch l.Mode {
	case game.ModeArena:
		return l.validateArena()
	case game.ModeTable:
		return l.validateTable()
	}
	return invalid("unknown mode %q", l.Mode)
}

func (l Layout) validateArena() error {
	if len(l.Balls) > 0 {
		return invalid("arena levels cannot place balls")
	}
	if len(l.Pigs) == 0 {
		return invalid("arena levels need at least one pig")
	}
	if len(l.Blocks) > maxBlocks || len(l.Pigs) > maxPigs || len(l.Birds) > maxBirds {
		return invalid("too many bodies")
	}
	for i, b := range l.Blocks {
		if !finite(b.X, b.Y) {
			return invalid("block %d has a non-finite position", i)
		}
		if _, err := game.LookupMaterial(b.Material); err != nil {
			return invalid("block %d: %v", i, err)
		}
	}
	for i, p := range l.Pigs {
		if !finite(p.X, p.Y) {
			return invalid("pig %d has a non-finite position", i)
		}
	}
	for i, b := range l.Birds {
		if _, err := game.LookupBird(b); err != nil {
			return invalid("bird %d: %v", i, err)
		}
	}
	return nil
}

func (l Layout) validateTable() error {
	if len(l.Blocks) > 0 || len(l.Pigs) > 0 || len(l.Birds) > 0 {
		return invalid("table levels only place balls")
	}
	if len(l.Balls) == 0 {
		return nil // standard rack
	}
	seen := make(map[int]bool, len(l.Balls))
	for _, b := range l.Balls {
		if b.ID < 0 || b.ID >= game.NumBalls {
			return invalid("ball id %d out of range", b.ID)
		}
		if seen[b.ID] {
			return invalid("duplicate ball %d", b.ID)
		}
		if !finite(b.X, b.Y) {
			return invalid("ball %d has a non-finite position", b.ID)
		}
		seen[b.ID] = true
	}
	if !seen[0] {
		return invalid("table levels need the cue ball (id 0)")
	}
	return nil
}

// Build validates the layout and creates its game.
func (l Layout) Build(arena game.ArenaConfig, table game.TableConfig) (game.Game, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if l.Mode == game.ModeTable {
		return game.NewTable(table, l.Balls)
	}
	return game.NewArena(arena, l.Blocks, l.Pigs, l.Birds)
}

// Default is the stock arena: a small stone-topped wooden stand guarding two pigs.
// Bodies start resting on the default 620px-high arena floor.
func Default() Layout {
	floor := game.DefaultArenaConfig().FloorY()
	return Layout{
		Name: "default",
		Mode: game.ModeArena,
		Blocks: []game.Block{
			{X: 760, Y: floor - game.BlockHeight/2, Material: "wood"},
			{X: 840, Y: floor - game.BlockHeight/2, Material: "wood"},
			{X: 800, Y: floor - game.BlockHeight*1.5, Material: "stone"},
		},
		Pigs: []game.Point{
			{X: 800, Y: floor - game.BlockHeight*2 - game.PigRadius},
			{X: 920, Y: floor - game.PigRadius},
		},
		Birds: append([]string(nil), game.DefaultBirds...),
	}
}

// Tower is a taller ice and wood stack.
func Tower() Layout {
	floor := game.DefaultArenaConfig().FloorY()
	l := Layout{Name: "tower", Mode: game.ModeArena, Birds: []string{"black", "yellow", "blue", "blue"}}
	for row, material := range []string{"stone", "wood", "wood", "ice"} {
		y := floor - game.BlockHeight/2 - float64(row)*game.BlockHeight
		l.Blocks = append(l.Blocks, game.Block{X: 860, Y: y, Material: material})
	}
	l.Pigs = []game.Point{
		{X: 860, Y: floor - 4*game.BlockHeight - game.PigRadius},
		{X: 760, Y: floor - game.PigRadius},
		{X: 960, Y: floor - game.PigRadius},
	}
	return l
}

// StandardRack is the billiards break layout.
func StandardRack() Layout {
	return Layout{Name: "rack", Mode: game.ModeTable}
}

// Builtins returns the levels that exist without a database.
func Builtins() []Layout {
	return []Layout{Default(), Tower(), StandardRack()}
}

func builtin(name string) (Layout, bool) {
	for _, l := range Builtins() {
		if l.Name == name {
			return l, true
		}
	}
	return Layout{}, false
}
