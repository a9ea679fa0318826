// Package tracker maps continuous pointer coordinates onto a maze grid and
// decides whether the pointer touched a wall or reached the finish.
// Evaluation is a pure function of grid, geometry and coordinate; the
// caller decides whether a game is in progress.
package tracker

import (
	"math"

	"github.com/vovakirdan/tui-maze/internal/maze"
)

// Result is the outcome of evaluating one pointer position.
type Result int

const (
	Continue Result = iota
	Collision
	Win
)

// String returns a human-readable name for the result.
func (r Result) String() string {
	switch r {
	case Continue:
		return "continue"
	case Collision:
		return "collision"
	case Win:
		return "win"
	default:
		return "unknown"
	}
}

// MarshalText encodes the result as its name, for JSON responses.
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Default geometry values.
const (
	DefaultCellSize  = 25.0
	DefaultThreshold = 2.0
)

// Geometry describes how pixels map onto cells.
type Geometry struct {
	CellSize  float64 // pixels per cell edge
	Threshold float64 // distance from a wall that counts as touching it
}

// DefaultGeometry returns the 25px cell / 2px threshold layout.
func DefaultGeometry() Geometry {
	return Geometry{CellSize: DefaultCellSize, Threshold: DefaultThreshold}
}

// Point is a pointer position in pixels relative to the maze's top-left corner.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Locate returns the cell containing p. The result may be out of bounds.
func Locate(geo Geometry, p Point) maze.Position {
	return maze.Position{
		Row: int(math.Floor(p.Y / geo.CellSize)),
		Col: int(math.Floor(p.X / geo.CellSize)),
	}
}

// Center returns the pixel centre of the cell at pos.
func Center(geo Geometry, pos maze.Position) Point {
	return Point{
		X: (float64(pos.Col) + 0.5) * geo.CellSize,
		Y: (float64(pos.Row) + 0.5) * geo.CellSize,
	}
}

// Collides reports whether p is out of bounds or within the threshold of a
// wall of its containing cell.
func Collides(g *maze.Grid, geo Geometry, p Point) bool {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return true
	}

	pos := Locate(geo, p)
	if !g.InBounds(pos) {
		return true
	}

	ox := p.X - float64(pos.Col)*geo.CellSize
	oy := p.Y - float64(pos.Row)*geo.CellSize
	edge := geo.CellSize - geo.Threshold

	cell := g.At(pos)
	if cell.Walls[maze.North] && oy < geo.Threshold {
		return true
	}
	if cell.Walls[maze.East] && ox > edge {
		return true
	}
	if cell.Walls[maze.South] && oy > edge {
		return true
	}
	if cell.Walls[maze.West] && ox < geo.Threshold {
		return true
	}
	return false
}

// Evaluate checks collision first; Win is only reported for a
// collision-free position inside the finish cell.
func Evaluate(g *maze.Grid, geo Geometry, p Point) Result {
	if Collides(g, geo, p) {
		return Collision
	}
	if Locate(geo, p) == g.Finish {
		return Win
	}
	return Continue
}
