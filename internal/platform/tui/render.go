package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-maze/internal/core"
	"github.com/vovakirdan/tui-maze/internal/maze"
	"github.com/vovakirdan/tui-maze/internal/session"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:     lipgloss.NewStyle(),
	core.ColorRed:         lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:       lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:      lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorCyan:        lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:       lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorGray:        lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// Junction glyphs indexed by which wall segments meet: up=1, right=2, down=4, left=8.
var junctions = [16]rune{
	' ', '│', '─', '└',
	'│', '│', '┌', '├',
	'─', '┘', '─', '┴',
	'┐', '┤', '┬', '┼',
}

// vWall reports the vertical wall segment on the west side of column c in row r.
// Column == Cols is the east border.
func vWall(g *maze.Grid, r, c int) bool {
	if c < g.Cols {
		return g.HasWall(maze.Position{Row: r, Col: c}, maze.West)
	}
	return g.HasWall(maze.Position{Row: r, Col: g.Cols - 1}, maze.East)
}

// hWall reports the horizontal wall segment on the north side of row r in column c.
// Row == Rows is the south border.
func hWall(g *maze.Grid, r, c int) bool {
	if r < g.Rows {
		return g.HasWall(maze.Position{Row: r, Col: c}, maze.North)
	}
	return g.HasWall(maze.Position{Row: g.Rows - 1, Col: c}, maze.South)
}

// junctionMask returns the walls meeting at the corner shared by rows r-1, r
// and columns c-1, c, indexed into junctions.
func junctionMask(g *maze.Grid, r, c int) int {
	var mask int
	if r > 0 && vWall(g, r-1, c) {
		mask |= 1
	}
	if c < g.Cols && hWall(g, r, c) {
		mask |= 2
	}
	if r < g.Rows && vWall(g, r, c) {
		mask |= 4
	}
	if c > 0 && hWall(g, r, c-1) {
		mask |= 8
	}
	return mask
}

// DrawMaze draws g into s at the layout's board position.
// Start is marked green and finish red; the finished board is tinted by outcome.
func DrawMaze(s *core.Screen, l Layout, g *maze.Grid, status session.Status) {
	ox, oy := l.Board.X, l.Board.Y

	for r := 0; r <= g.Rows; r++ {
		for c := 0; c <= g.Cols; c++ {
			s.Set(ox+c*cellCols, oy+r*cellRows, junctions[junctionMask(g, r, c)])

			if c < g.Cols && hWall(g, r, c) {
				s.Set(ox+c*cellCols+1, oy+r*cellRows, '─')
				s.Set(ox+c*cellCols+2, oy+r*cellRows, '─')
			}
			if r < g.Rows && vWall(g, r, c) {
				s.Set(ox+c*cellCols, oy+r*cellRows+1, '│')
			}
		}
	}

	switch status {
	case session.Won:
		s.Tint(l.Board, core.ColorBrightGreen)
	case session.Lost:
		s.Tint(l.Board, core.ColorBrightRed)
	}

	markCell(s, l, g.Finish, core.ColorRed)
	markCell(s, l, g.Start, core.ColorGreen)
}

// markCell fills the interior of p.
func markCell(s *core.Screen, l Layout, p maze.Position, c core.Color) {
	x, y := l.CellCenter(p)
	s.SetCell(x, y, '█', c)
	s.SetCell(x+1, y, '█', c)
}
