package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-maze/internal/leaderboard"
	"github.com/vovakirdan/tui-maze/internal/maze"
	"github.com/vovakirdan/tui-maze/internal/session"
	"github.com/vovakirdan/tui-maze/internal/telemetry"
	"github.com/vovakirdan/tui-maze/internal/tracker"
)

// Decoded forms of the responses; Status and Result only marshal.
type testState struct {
	ID        string        `json:"id"`
	Status    string        `json:"status"`
	ElapsedMs int64         `json:"elapsed_ms"`
	Rank      int           `json:"rank"`
	CellSize  float64       `json:"cell_size"`
	Grid      *GridResponse `json:"grid"`
}

type testMove struct {
	Result string    `json:"result"`
	State  testState `json:"state"`
}

func newTestServer(t *testing.T, rows, cols int) (*Server, *Hub) {
	t.Helper()

	cfg := session.DefaultConfig()
	cfg.Rows = rows
	cfg.Cols = cols

	hub := NewHub(HubConfig{
		Session:     cfg,
		Leaderboard: leaderboard.New(leaderboard.NewMemoryStore(), leaderboard.DefaultKey, 5),
		MaxSessions: 10,
		Logger:      log.New(io.Discard),
	})
	srv := NewServer(ServerConfig{
		Hub:    hub,
		Logger: log.New(io.Discard),
		Tracer: telemetry.NoopTracer(),
		Mode:   gin.TestMode,
	})
	return srv, hub
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, BaseURL+path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func create(t *testing.T, srv *Server) testState {
	t.Helper()
	w := do(t, srv, http.MethodPost, "/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", w.Code, w.Body.String())
	}
	return decode[testState](t, w)
}

func TestCreateSession(t *testing.T) {
	srv, _ := newTestServer(t, 4, 6)

	st := create(t, srv)
	if _, err := uuid.Parse(st.ID); err != nil {
		t.Errorf("id %q is not a uuid: %v", st.ID, err)
	}
	if st.Status != "idle" {
		t.Errorf("status = %q, expected idle", st.Status)
	}
	if st.CellSize != tracker.DefaultCellSize {
		t.Errorf("cell_size = %v", st.CellSize)
	}
	if st.Grid == nil {
		t.Fatal("create should return the grid")
	}
	if st.Grid.Rows != 4 || st.Grid.Cols != 6 || len(st.Grid.Cells) != 4 || len(st.Grid.Cells[0]) != 6 {
		t.Errorf("grid = %dx%d with %d rows of cells", st.Grid.Rows, st.Grid.Cols, len(st.Grid.Cells))
	}
	if st.Grid.Finish != (maze.Position{Row: 3, Col: 5}) {
		t.Errorf("finish = %v", st.Grid.Finish)
	}
	if !st.Grid.Cells[0][0].Walls[maze.North] || !st.Grid.Cells[0][0].Walls[maze.West] {
		t.Error("border walls should be closed")
	}
}

func TestCreateSessionWithPlayer(t *testing.T) {
	srv, _ := newTestServer(t, 2, 2)

	w := do(t, srv, http.MethodPost, "/sessions", CreateRequest{Player: "alice"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}

	w = do(t, srv, http.MethodPost, "/sessions", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed create body: status %d, expected 400", w.Code)
	}
}

func TestUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t, 2, 2)
	id := uuid.NewString()

	tests := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/sessions/" + id, nil},
		{http.MethodPost, "/sessions/" + id + "/start", nil},
		{http.MethodPost, "/sessions/" + id + "/move", MoveRequest{X: ptr(1.0), Y: ptr(1.0)}},
		{http.MethodPost, "/sessions/" + id + "/restart", nil},
		{http.MethodDelete, "/sessions/" + id, nil},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := do(t, srv, tc.method, tc.path, tc.body)
			if w.Code != http.StatusNotFound {
				t.Errorf("status %d, expected 404", w.Code)
			}
			if e := decode[ErrorResponse](t, w); e.Error == "" {
				t.Error("404 should carry an error message")
			}
		})
	}
}

func TestStartTwiceConflicts(t *testing.T) {
	srv, _ := newTestServer(t, 2, 2)
	st := create(t, srv)

	w := do(t, srv, http.MethodPost, "/sessions/"+st.ID+"/start", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start: status %d", w.Code)
	}
	if got := decode[testState](t, w); got.Status != "running" || got.Grid != nil {
		t.Errorf("start response = %+v", got)
	}

	w = do(t, srv, http.MethodPost, "/sessions/"+st.ID+"/start", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("second start: status %d, expected 409", w.Code)
	}
}

func TestMoveMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t, 2, 2)
	st := create(t, srv)

	bodies := []any{
		"{",
		"[]",
		`{"x": 10}`,
		`{"x": "a", "y": 1}`,
	}
	for _, body := range bodies {
		w := do(t, srv, http.MethodPost, "/sessions/"+st.ID+"/move", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %v: status %d, expected 400", body, w.Code)
		}
	}
}

func TestMoveBeforeStartIsIgnored(t *testing.T) {
	srv, _ := newTestServer(t, 2, 2)
	st := create(t, srv)

	w := do(t, srv, http.MethodPost, "/sessions/"+st.ID+"/move", MoveRequest{X: ptr(-5.0), Y: ptr(-5.0)})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	mv := decode[testMove](t, w)
	if mv.Result != "continue" || mv.State.Status != "idle" {
		t.Errorf("move before start = %+v", mv)
	}
}

func TestMoveOffBoardLoses(t *testing.T) {
	srv, _ := newTestServer(t, 4, 4)
	st := create(t, srv)

	do(t, srv, http.MethodPost, "/sessions/"+st.ID+"/start", nil)

	w := do(t, srv, http.MethodPost, "/sessions/"+st.ID+"/move", MoveRequest{X: ptr(-1.0), Y: ptr(12.5)})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	mv := decode[testMove](t, w)
	if mv.Result != "collision" || mv.State.Status != "lost" {
		t.Errorf("off-board move = %+v", mv)
	}

	w = do(t, srv, http.MethodGet, "/sessions/"+st.ID, nil)
	if got := decode[testState](t, w); got.Status != "lost" {
		t.Errorf("state after loss = %q", got.Status)
	}
}

func TestSolvedMazeWins(t *testing.T) {
	srv, hub := newTestServer(t, 3, 3)
	st := create(t, srv)
	do(t, srv, http.MethodPost, "/sessions/"+st.ID+"/start", nil)

	var path []maze.Position
	err := hub.With(st.ID, func(s *session.GameSession) error {
		path = maze.Solve(s.Grid())
		return nil
	})
	if err != nil || path == nil {
		t.Fatalf("solve: path %v, err %v", path, err)
	}

	var last testMove
	for _, p := range path {
		c := tracker.Center(tracker.DefaultGeometry(), p)
		w := do(t, srv, http.MethodPost, "/sessions/"+st.ID+"/move", MoveRequest{X: ptr(c.X), Y: ptr(c.Y)})
		last = decode[testMove](t, w)
		if last.Result == "collision" {
			t.Fatalf("collision at %v", p)
		}
	}
	if last.Result != "win" || last.State.Status != "won" || last.State.Rank != 1 {
		t.Fatalf("final move = %+v", last)
	}

	w := do(t, srv, http.MethodGet, "/leaderboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("leaderboard: status %d", w.Code)
	}
	lb := decode[LeaderboardResponse](t, w)
	if len(lb.Times) != 1 || lb.Key != leaderboard.DefaultKey || lb.Capacity != 5 {
		t.Errorf("leaderboard = %+v", lb)
	}
}

func TestRestartAndDelete(t *testing.T) {
	srv, hub := newTestServer(t, 3, 3)
	st := create(t, srv)
	do(t, srv, http.MethodPost, "/sessions/"+st.ID+"/start", nil)
	do(t, srv, http.MethodPost, "/sessions/"+st.ID+"/move", MoveRequest{X: ptr(0.0), Y: ptr(0.0)})

	w := do(t, srv, http.MethodPost, "/sessions/"+st.ID+"/restart", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("restart: status %d", w.Code)
	}
	got := decode[testState](t, w)
	if got.Status != "idle" || got.Grid == nil || got.ElapsedMs != 0 {
		t.Errorf("restart response = %+v", got)
	}

	w = do(t, srv, http.MethodDelete, "/sessions/"+st.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", w.Code)
	}
	if hub.Len() != 0 {
		t.Errorf("hub still has %d sessions", hub.Len())
	}
	if w := do(t, srv, http.MethodGet, "/sessions/"+st.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, 2, 2)
	create(t, srv)

	w := do(t, srv, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	body := decode[map[string]any](t, w)
	if body["status"] != "ok" || body["sessions"] != float64(1) {
		t.Errorf("healthz = %v", body)
	}
}

func TestTooManySessions(t *testing.T) {
	srv, hub := newTestServer(t, 2, 2)
	hub.cfg.MaxSessions = 1

	create(t, srv)
	w := do(t, srv, http.MethodPost, "/sessions", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status %d, expected 503", w.Code)
	}
}

func ptr[T any](v T) *T {
	return &v
}
