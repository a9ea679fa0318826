package maze

import (
	"errors"
	"fmt"
)

// Validation errors returned by Validate.
var (
	ErrInconsistentWall = errors.New("maze: inconsistent wall pair")
	ErrOpenBorder       = errors.New("maze: outer border is open")
	ErrPassageCount     = errors.New("maze: passage count is not rows*cols-1")
	ErrDisconnected     = errors.New("maze: not every cell is reachable from start")
)

// Validate checks that g is a perfect maze:
//   - every wall pair agrees on both sides
//   - the outer border is closed
//   - there are exactly rows*cols-1 passages
//   - every cell is reachable from Start
//
// A connected graph with n-1 edges over n nodes is a tree, so the last two
// checks together rule out cycles.
func Validate(g *Grid) error {
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			p := Position{Row: r, Col: c}
			for _, d := range Directions {
				n := p.Step(d)
				if !g.InBounds(n) {
					if !g.HasWall(p, d) {
						return fmt.Errorf("%w: cell (%d,%d) %s", ErrOpenBorder, r, c, d)
					}
					continue
				}
				if g.HasWall(p, d) != g.HasWall(n, d.Opposite()) {
					return fmt.Errorf("%w: cell (%d,%d) %s", ErrInconsistentWall, r, c, d)
				}
			}
		}
	}

	want := g.Rows*g.Cols - 1
	if got := g.Passages(); got != want {
		return fmt.Errorf("%w: got %d, want %d", ErrPassageCount, got, want)
	}

	if reached := len(reachable(g, g.Start)); reached != g.Rows*g.Cols {
		return fmt.Errorf("%w: reached %d of %d", ErrDisconnected, reached, g.Rows*g.Cols)
	}

	return nil
}

// reachable returns the BFS parent map of every cell reachable from start.
// The start cell maps to itself.
func reachable(g *Grid, start Position) map[Position]Position {
	parent := map[Position]Position{start: start}
	if !g.InBounds(start) {
		return map[Position]Position{}
	}

	queue := []Position{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range Directions {
			if g.HasWall(cur, d) {
				continue
			}
			n := cur.Step(d)
			if !g.InBounds(n) {
				continue
			}
			if _, seen := parent[n]; seen {
				continue
			}
			parent[n] = cur
			queue = append(queue, n)
		}
	}
	return parent
}

// Solve returns the path from Start to Finish through open passages,
// inclusive of both ends. Returns nil if Finish is unreachable.
func Solve(g *Grid) []Position {
	parent := reachable(g, g.Start)
	if _, ok := parent[g.Finish]; !ok {
		return nil
	}

	var path []Position
	for p := g.Finish; ; p = parent[p] {
		path = append(path, p)
		if p == g.Start {
			break
		}
	}

	// Reverse into start -> finish order
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
