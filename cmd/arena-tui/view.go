package main

import (
	"math"

	"github.com/playmatatu/arcade/internal/physics"
)

// projection maps world pixels onto terminal cells, keeping a status line free.
type projection struct {
	sx, sy     float64
	cols, rows int
}

func newProjection(worldW, worldH float64, cols, rows int) projection {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return projection{sx: float64(cols) / worldW, sy: float64(rows) / worldH, cols: cols, rows: rows}
}

func (p projection) clampX(x int) int {
	return min(max(x, 0), p.cols-1)
}

func (p projection) clampY(y int) int {
	return min(max(y, 0), p.rows-1)
}

// cell returns the terminal cell containing v and whether v lies on screen.
func (p projection) cell(v physics.Vec2) (int, int, bool) {
	x := int(math.Floor(v.X * p.sx))
	y := int(math.Floor(v.Y * p.sy))
	return x, y, x >= 0 && y >= 0 && x < p.cols && y < p.rows
}

// rect returns the inclusive cell range covered by a box. Every box covers at
// least its center cell.
func (p projection) rect(center, half physics.Vec2) (x0, y0, x1, y1 int) {
	x0 = p.clampX(int(math.Floor((center.X - half.X) * p.sx)))
	y0 = p.clampY(int(math.Floor((center.Y - half.Y) * p.sy)))
	x1 = p.clampX(int(math.Ceil((center.X+half.X)*p.sx)) - 1)
	y1 = p.clampY(int(math.Ceil((center.Y+half.Y)*p.sy)) - 1)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return
}

// aim is the player's pending shot: a direction and a strength in [0, 1].
type aim struct {
	angle    float64
	strength float64
}

func (a *aim) turn(d float64) {
	a.angle = math.Mod(a.angle+d, 2*math.Pi)
}

func (a *aim) adjust(d float64) {
	a.strength = min(max(a.strength+d, 0.05), 1)
}

func (a aim) direction() physics.Vec2 {
	return physics.NewVec2(math.Cos(a.angle), math.Sin(a.angle))
}

// pull is the sling pull for a launch along the aim.
func (a aim) pull(maxPull float64) physics.Vec2 {
	return a.direction().Times(a.strength * maxPull)
}

// power is the cue strike power along the aim.
func (a aim) power(minPower, maxPower float64) float64 {
	return minPower + a.strength*(maxPower-minPower)
}
