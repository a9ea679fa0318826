// Package maze provides the grid model and perfect-maze generation.
// It has no terminal or network dependencies so it can be shared by every
// front end (TUI, SSH, HTTP).
package maze

import "strings"

// Direction identifies one of the four cell boundaries.
// The numeric order matches the index into Cell.Walls.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// Directions lists all four directions in wall-index order.
var Directions = [4]Direction{North, East, South, West}

// String returns a human-readable name for the direction.
func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return "Unknown"
	}
}

// Opposite returns the direction facing back across the same boundary.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// Delta returns the row and column step for moving one cell in d.
func (d Direction) Delta() (dRow, dCol int) {
	switch d {
	case North:
		return -1, 0
	case East:
		return 0, 1
	case South:
		return 1, 0
	case West:
		return 0, -1
	}
	return 0, 0
}

// Position is a cell coordinate in the grid.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Step returns the neighbouring position in direction d.
func (p Position) Step(d Direction) Position {
	dr, dc := d.Delta()
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

// Cell is a single square of the maze.
type Cell struct {
	Row     int
	Col     int
	Walls   [4]bool // indexed by Direction; true = wall present
	Visited bool    // generation bookkeeping only
}

// Grid is a fixed-size rows x cols array of cells.
// A new maze always gets a new Grid; a Grid is never resized.
type Grid struct {
	Rows   int
	Cols   int
	Start  Position
	Finish Position
	cells  [][]Cell
}

// NewGrid allocates a grid where every cell has all four walls and is unvisited.
// Start is the top-left cell and Finish the bottom-right one.
func NewGrid(rows, cols int) *Grid {
	g := &Grid{
		Rows:   rows,
		Cols:   cols,
		Start:  Position{Row: 0, Col: 0},
		Finish: Position{Row: rows - 1, Col: cols - 1},
	}
	g.cells = make([][]Cell, rows)
	for r := range g.cells {
		g.cells[r] = make([]Cell, cols)
		for c := range g.cells[r] {
			g.cells[r][c] = Cell{
				Row:   r,
				Col:   c,
				Walls: [4]bool{true, true, true, true},
			}
		}
	}
	return g
}

// InBounds reports whether p lies inside the grid.
func (g *Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.Rows && p.Col >= 0 && p.Col < g.Cols
}

// At returns a copy of the cell at p.
// Out-of-bounds positions yield a fully walled cell.
func (g *Grid) At(p Position) Cell {
	if !g.InBounds(p) {
		return Cell{Row: p.Row, Col: p.Col, Walls: [4]bool{true, true, true, true}}
	}
	return g.cells[p.Row][p.Col]
}

// HasWall reports whether the boundary of p facing d is closed.
// Anything outside the grid counts as walled.
func (g *Grid) HasWall(p Position, d Direction) bool {
	if !g.InBounds(p) {
		return true
	}
	return g.cells[p.Row][p.Col].Walls[d]
}

// Carve removes the wall pair between p and its neighbour in direction d.
// Returns false and leaves the grid untouched if either cell is out of bounds.
func (g *Grid) Carve(p Position, d Direction) bool {
	n := p.Step(d)
	if !g.InBounds(p) || !g.InBounds(n) {
		return false
	}
	g.cells[p.Row][p.Col].Walls[d] = false
	g.cells[n.Row][n.Col].Walls[d.Opposite()] = false
	return true
}

// Passages counts open wall pairs. Each interior boundary is counted once.
func (g *Grid) Passages() int {
	count := 0
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			// Only look east and south so each shared edge is seen once
			if c+1 < g.Cols && !g.cells[r][c].Walls[East] {
				count++
			}
			if r+1 < g.Rows && !g.cells[r][c].Walls[South] {
				count++
			}
		}
	}
	return count
}

func (g *Grid) visited(p Position) bool {
	return g.cells[p.Row][p.Col].Visited
}

func (g *Grid) markVisited(p Position) {
	g.cells[p.Row][p.Col].Visited = true
}

// String renders the grid as ASCII art.
func (g *Grid) String() string {
	return g.Render(nil)
}

// Render renders the grid as ASCII art, marking the given path cells with '.'.
// Start and finish are shown as 'S' and 'F'.
func (g *Grid) Render(path []Position) string {
	onPath := make(map[Position]bool, len(path))
	for _, p := range path {
		onPath[p] = true
	}

	var sb strings.Builder

	// Top boundary
	sb.WriteString("+")
	for c := 0; c < g.Cols; c++ {
		if g.HasWall(Position{Row: 0, Col: c}, North) {
			sb.WriteString("--+")
		} else {
			sb.WriteString("  +")
		}
	}
	sb.WriteString("\n")

	for r := 0; r < g.Rows; r++ {
		// Cell row with west/east walls
		if g.HasWall(Position{Row: r, Col: 0}, West) {
			sb.WriteString("|")
		} else {
			sb.WriteString(" ")
		}
		for c := 0; c < g.Cols; c++ {
			p := Position{Row: r, Col: c}
			switch {
			case p == g.Start:
				sb.WriteString("S ")
			case p == g.Finish:
				sb.WriteString("F ")
			case onPath[p]:
				sb.WriteString(". ")
			default:
				sb.WriteString("  ")
			}
			if g.HasWall(p, East) {
				sb.WriteString("|")
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")

		// South walls
		sb.WriteString("+")
		for c := 0; c < g.Cols; c++ {
			if g.HasWall(Position{Row: r, Col: c}, South) {
				sb.WriteString("--+")
			} else {
				sb.WriteString("  +")
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
