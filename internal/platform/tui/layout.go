package tui

import (
	"github.com/vovakirdan/tui-maze/internal/core"
	"github.com/vovakirdan/tui-maze/internal/maze"
	"github.com/vovakirdan/tui-maze/internal/tracker"
)

// Each maze cell is drawn as 3 columns by 2 rows; neighbours share wall lines.
const (
	cellCols = 3
	cellRows = 2

	hudTop    = 2 // title and status lines above the board
	hudBottom = 1 // timer line below the board
)

// BoardSize returns the terminal size of a rows x cols maze drawing.
func BoardSize(rows, cols int) (w, h int) {
	return cellCols*cols + 1, cellRows*rows + 1
}

// Layout places the board on screen and maps terminal cells to tracker pixels.
type Layout struct {
	Board    core.Rect
	Rows     int
	Cols     int
	CellSize float64
	Fits     bool
}

// NewLayout centers a rows x cols board horizontally below the HUD.
// reserved is the number of lines kept free at the bottom for help.
func NewLayout(screenW, screenH, rows, cols int, cellSize float64, reserved int) Layout {
	w, h := BoardSize(rows, cols)
	need := hudTop + h + hudBottom + reserved

	return Layout{
		Board:    core.NewRect(0, hudTop, screenW, h).Centered(w, h),
		Rows:     rows,
		Cols:     cols,
		CellSize: cellSize,
		Fits:     screenW >= w && screenH >= need,
	}
}

// MinSize returns the smallest terminal that fits the layout.
func (l Layout) MinSize(reserved int) (w, h int) {
	return l.Board.W, hudTop + l.Board.H + hudBottom + reserved
}

// PointAt converts a terminal cell to tracker pixel coordinates.
// Wall glyphs land on pixel offset 0 of a cell, so touching one collides.
// Anything right of or below the board maps out of bounds.
func (l Layout) PointAt(cx, cy int) tracker.Point {
	return tracker.Point{
		X: float64(cx-l.Board.X) * l.CellSize / cellCols,
		Y: float64(cy-l.Board.Y) * l.CellSize / cellRows,
	}
}

// CellAt returns the maze cell under a terminal position.
func (l Layout) CellAt(cx, cy int) maze.Position {
	return tracker.Locate(tracker.Geometry{CellSize: l.CellSize}, l.PointAt(cx, cy))
}

// CellOrigin returns the terminal position of the top-left corner glyph of p.
func (l Layout) CellOrigin(p maze.Position) (x, y int) {
	return l.Board.X + p.Col*cellCols, l.Board.Y + p.Row*cellRows
}

// CellCenter returns the terminal position of the first interior glyph of p.
func (l Layout) CellCenter(p maze.Position) (x, y int) {
	x, y = l.CellOrigin(p)
	return x + 1, y + 1
}

// OnWall reports whether the terminal cell at (cx, cy) holds a wall glyph of g.
// Corner glyphs count, so a diagonal step across a closed corner is a touch.
func (l Layout) OnWall(g *maze.Grid, cx, cy int) bool {
	dx, dy := cx-l.Board.X, cy-l.Board.Y
	if dx < 0 || dy < 0 || dx >= l.Board.W || dy >= l.Board.H {
		return false
	}

	c, r := dx/cellCols, dy/cellRows
	onCol, onRow := dx%cellCols == 0, dy%cellRows == 0
	switch {
	case onCol && onRow:
		return junctionMask(g, r, c) != 0
	case onRow:
		return c < g.Cols && hWall(g, r, c)
	case onCol:
		return r < g.Rows && vWall(g, r, c)
	default:
		return false
	}
}
