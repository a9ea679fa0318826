package maze

import (
	"context"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vovakirdan/tui-maze/internal/telemetry"
)

// frame is one level of the depth-first walk.
// Each frame owns its own shuffled copy of the directions.
type frame struct {
	pos  Position
	dirs [4]Direction
	next int
}

func newFrame(p Position, rng *rand.Rand) frame {
	f := frame{pos: p, dirs: Directions}
	rng.Shuffle(len(f.dirs), func(i, j int) {
		f.dirs[i], f.dirs[j] = f.dirs[j], f.dirs[i]
	})
	return f
}

// Generate carves a perfect maze into g with a randomized depth-first walk
// starting at start. The walk uses an explicit stack, so grid size is not
// limited by call depth. It visits neighbours in the same order the
// recursive form would: descend into the first unvisited neighbour, try the
// next direction after backtracking.
func Generate(ctx context.Context, g *Grid, start Position, rng *rand.Rand) {
	tracer := telemetry.Tracer("maze")
	_, span := tracer.Start(ctx, "maze.generate")
	defer span.End()

	startTime := time.Now()

	if g.InBounds(start) {
		g.markVisited(start)
		stack := []frame{newFrame(start, rng)}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next >= len(top.dirs) {
				stack = stack[:len(stack)-1]
				continue
			}

			dir := top.dirs[top.next]
			top.next++

			n := top.pos.Step(dir)
			if !g.InBounds(n) || g.visited(n) {
				continue
			}

			g.Carve(top.pos, dir)
			g.markVisited(n)
			stack = append(stack, newFrame(n, rng))
		}
	}

	span.SetAttributes(
		attribute.Int("maze.width", g.Cols),
		attribute.Int("maze.height", g.Rows),
		attribute.Int("maze.passages", g.Passages()),
		attribute.Int64("maze.generation_ms", time.Since(startTime).Milliseconds()),
	)
}

// New allocates a rows x cols grid and carves a maze into it from the top-left cell.
func New(ctx context.Context, rows, cols int, rng *rand.Rand) *Grid {
	g := NewGrid(rows, cols)
	Generate(ctx, g, g.Start, rng)
	return g
}
