package web

import (
	"github.com/vovakirdan/tui-maze/internal/maze"
	"github.com/vovakirdan/tui-maze/internal/session"
	"github.com/vovakirdan/tui-maze/internal/tracker"
)

// CreateRequest is the optional body of POST /sessions.
type CreateRequest struct {
	Player string `json:"player" binding:"max=64"`
}

// MoveRequest is a pointer position in pixels relative to the maze origin.
type MoveRequest struct {
	X *float64 `json:"x" binding:"required"`
	Y *float64 `json:"y" binding:"required"`
}

// CellResponse holds the walls of one cell, indexed north, east, south, west.
type CellResponse struct {
	Walls [4]bool `json:"walls"`
}

// GridResponse is the wire form of a maze.
type GridResponse struct {
	Rows   int              `json:"rows"`
	Cols   int              `json:"cols"`
	Start  maze.Position    `json:"start"`
	Finish maze.Position    `json:"finish"`
	Cells  [][]CellResponse `json:"cells"`
}

// StateResponse describes a session.
type StateResponse struct {
	ID        string         `json:"id"`
	Status    session.Status `json:"status"`
	ElapsedMs int64          `json:"elapsed_ms"`
	Elapsed   string         `json:"elapsed"`
	Rank      int            `json:"rank,omitempty"`
	CellSize  float64        `json:"cell_size"`
	Threshold float64        `json:"wall_threshold"`
	Grid      *GridResponse  `json:"grid,omitempty"`
}

// MoveResponse is returned by POST /sessions/:id/move.
type MoveResponse struct {
	Result tracker.Result `json:"result"`
	State  StateResponse  `json:"state"`
}

// LeaderboardResponse lists the best times in seconds, ascending.
type LeaderboardResponse struct {
	Key      string    `json:"key"`
	Capacity int       `json:"capacity"`
	Times    []float64 `json:"times"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newGridResponse(g *maze.Grid) *GridResponse {
	cells := make([][]CellResponse, g.Rows)
	for r := range cells {
		cells[r] = make([]CellResponse, g.Cols)
		for c := range cells[r] {
			cells[r][c] = CellResponse{Walls: g.At(maze.Position{Row: r, Col: c}).Walls}
		}
	}
	return &GridResponse{
		Rows:   g.Rows,
		Cols:   g.Cols,
		Start:  g.Start,
		Finish: g.Finish,
		Cells:  cells,
	}
}

func newStateResponse(id string, st session.State, geo tracker.Geometry, withGrid bool) StateResponse {
	resp := StateResponse{
		ID:        id,
		Status:    st.Status,
		ElapsedMs: st.Elapsed.Milliseconds(),
		Elapsed:   session.FormatElapsed(st.Elapsed),
		Rank:      st.Rank,
		CellSize:  geo.CellSize,
		Threshold: geo.Threshold,
	}
	if withGrid && st.Grid != nil {
		resp.Grid = newGridResponse(st.Grid)
	}
	return resp
}
