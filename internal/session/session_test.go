package session

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/tui-maze/internal/leaderboard"
	"github.com/vovakirdan/tui-maze/internal/maze"
	"github.com/vovakirdan/tui-maze/internal/tracker"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// recordingSink collects finished runs.
type recordingSink struct {
	runs []Run
	err  error
}

func (r *recordingSink) RecordRun(_ context.Context, run Run) error {
	r.runs = append(r.runs, run)
	return r.err
}

func newTestSession(t *testing.T, rows, cols int, opts ...Option) (*GameSession, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	cfg := DefaultConfig()
	cfg.Rows = rows
	cfg.Cols = cols

	base := []Option{
		WithClock(clock.Now),
		WithRand(rand.New(rand.NewSource(1234))),
	}
	board := leaderboard.New(leaderboard.NewMemoryStore(), leaderboard.DefaultKey, 5)
	return New(context.Background(), cfg, board, append(base, opts...)...), clock
}

func TestNewSessionIsIdle(t *testing.T) {
	s, _ := newTestSession(t, 16, 16)

	if s.Status() != Idle {
		t.Errorf("Status() = %v, expected idle", s.Status())
	}
	if s.Elapsed() != 0 {
		t.Errorf("Elapsed() = %v, expected 0", s.Elapsed())
	}
	if s.Ticking() {
		t.Error("idle session should not tick")
	}
	if err := maze.Validate(s.Grid()); err != nil {
		t.Errorf("initial grid invalid: %v", err)
	}
}

func TestMoveIgnoredWhenIdle(t *testing.T) {
	s, _ := newTestSession(t, 4, 4)

	// Far outside the board would be a collision if evaluated
	if got := s.Move(context.Background(), tracker.Point{X: -50, Y: -50}); got != tracker.Continue {
		t.Errorf("Move() while idle = %v, expected continue", got)
	}
	if s.Status() != Idle {
		t.Errorf("Status() = %v, expected idle", s.Status())
	}
}

func TestStartTransitions(t *testing.T) {
	s, clock := newTestSession(t, 4, 4)

	if !s.Start() {
		t.Fatal("Start() from idle should succeed")
	}
	if s.Status() != Running {
		t.Fatalf("Status() = %v, expected running", s.Status())
	}
	if !s.Ticking() {
		t.Error("running session should tick")
	}
	if s.Start() {
		t.Error("Start() while running should be ignored")
	}

	clock.Advance(1500 * time.Millisecond)
	if s.Elapsed() != 1500*time.Millisecond {
		t.Errorf("Elapsed() = %v, expected 1.5s", s.Elapsed())
	}
}

func TestCollisionLoses(t *testing.T) {
	sink := &recordingSink{}
	s, clock := newTestSession(t, 4, 4, WithRunSink(sink), WithPlayer("alice"))
	ctx := context.Background()

	s.Start()
	clock.Advance(2 * time.Second)

	if got := s.Move(ctx, tracker.Point{X: 1, Y: 12}); got != tracker.Collision {
		t.Fatalf("Move() onto border wall = %v, expected collision", got)
	}
	if s.Status() != Lost {
		t.Errorf("Status() = %v, expected lost", s.Status())
	}
	if s.Ticking() {
		t.Error("lost session should stop ticking")
	}

	// Frozen display
	clock.Advance(5 * time.Second)
	if s.Elapsed() != 2*time.Second {
		t.Errorf("Elapsed() = %v, expected frozen 2s", s.Elapsed())
	}

	// Terminal state halts further evaluation
	if got := s.Move(ctx, tracker.Center(s.Config().Geometry, s.Grid().Finish)); got != tracker.Continue {
		t.Errorf("Move() after loss = %v, expected continue", got)
	}
	if s.Status() != Lost {
		t.Errorf("Status() = %v, expected lost to stick", s.Status())
	}
	if s.Start() {
		t.Error("Start() after loss should require a restart")
	}

	if len(s.Leaderboard().Times()) != 0 {
		t.Error("a loss should not reach the leaderboard")
	}
	if len(sink.runs) != 1 || sink.runs[0].Outcome != Lost || sink.runs[0].Player != "alice" {
		t.Errorf("sink runs = %+v, expected one lost run by alice", sink.runs)
	}
}

func TestHitWall(t *testing.T) {
	sink := &recordingSink{}
	s, clock := newTestSession(t, 4, 4, WithRunSink(sink))
	ctx := context.Background()

	if got := s.HitWall(ctx); got != tracker.Continue || s.Status() != Idle {
		t.Fatalf("HitWall() while idle = %v, status %v", got, s.Status())
	}

	s.Start()
	clock.Advance(time.Second)
	if got := s.HitWall(ctx); got != tracker.Collision {
		t.Fatalf("HitWall() = %v, expected collision", got)
	}
	if s.Status() != Lost || s.Ticking() {
		t.Errorf("Status() = %v, ticking %v; expected lost and stopped", s.Status(), s.Ticking())
	}
	if s.Elapsed() != time.Second {
		t.Errorf("Elapsed() = %v, expected 1s", s.Elapsed())
	}
	if got := s.HitWall(ctx); got != tracker.Continue {
		t.Errorf("HitWall() after loss = %v, expected continue", got)
	}
	if len(sink.runs) != 1 {
		t.Errorf("sink got %d runs, expected 1", len(sink.runs))
	}
}

func TestSolvedWalkWins(t *testing.T) {
	sink := &recordingSink{}
	s, clock := newTestSession(t, 8, 8, WithRunSink(sink))
	ctx := context.Background()
	geo := s.Config().Geometry

	s.Start()
	path := maze.Solve(s.Grid())
	var last tracker.Result
	for _, pos := range path {
		clock.Advance(100 * time.Millisecond)
		last = s.Move(ctx, tracker.Center(geo, pos))
		if last == tracker.Collision {
			t.Fatalf("collision on solution cell %v", pos)
		}
	}

	if last != tracker.Win {
		t.Fatalf("last move = %v, expected win", last)
	}
	if s.Status() != Won {
		t.Errorf("Status() = %v, expected won", s.Status())
	}
	if s.Ticking() {
		t.Error("won session should stop ticking")
	}

	want := time.Duration(len(path)) * 100 * time.Millisecond
	if s.Elapsed() != want {
		t.Errorf("Elapsed() = %v, expected %v", s.Elapsed(), want)
	}
	if s.Rank() != 1 {
		t.Errorf("Rank() = %d, expected 1", s.Rank())
	}
	if !reflect.DeepEqual(s.Leaderboard().Times(), []float64{Seconds(want)}) {
		t.Errorf("leaderboard = %v, expected [%v]", s.Leaderboard().Times(), Seconds(want))
	}
	if len(sink.runs) != 1 || sink.runs[0].Outcome != Won || sink.runs[0].Elapsed != want {
		t.Errorf("sink runs = %+v", sink.runs)
	}
}

func TestSingleCellImmediateWin(t *testing.T) {
	s, clock := newTestSession(t, 1, 1)

	if s.Grid().Start != s.Grid().Finish {
		t.Fatal("1x1 start should equal finish")
	}

	s.Start()
	clock.Advance(250 * time.Millisecond)
	if got := s.Move(context.Background(), tracker.Point{X: 12, Y: 12}); got != tracker.Win {
		t.Errorf("first move = %v, expected win", got)
	}
	if s.Status() != Won {
		t.Errorf("Status() = %v, expected won", s.Status())
	}
}

func TestRestartDuringRunning(t *testing.T) {
	s, clock := newTestSession(t, 6, 6)
	ctx := context.Background()

	oldGrid := s.Grid()
	s.Start()
	epoch := s.Epoch()
	clock.Advance(time.Second)

	if _, ok := s.Tick(epoch); !ok {
		t.Fatal("tick should be live while running")
	}

	s.Restart(ctx)

	if s.Status() != Idle {
		t.Errorf("Status() = %v, expected idle", s.Status())
	}
	if s.Grid() == oldGrid {
		t.Error("Restart should replace the grid")
	}
	if err := maze.Validate(s.Grid()); err != nil {
		t.Errorf("new grid invalid: %v", err)
	}
	if s.Ticking() {
		t.Error("Restart should stop the timer")
	}
	if _, ok := s.Tick(epoch); ok {
		t.Error("tick from the old run should be dead")
	}
	if s.Elapsed() != 0 {
		t.Errorf("Elapsed() = %v, expected 0 after restart", s.Elapsed())
	}
	if s.Rank() != 0 {
		t.Errorf("Rank() = %d, expected cleared", s.Rank())
	}

	// A new game can start afterwards
	if !s.Start() {
		t.Error("Start() after restart should succeed")
	}
	if _, ok := s.Tick(s.Epoch()); !ok {
		t.Error("new tick chain should be live")
	}
}

func TestRestartAfterWinClearsOutcome(t *testing.T) {
	s, _ := newTestSession(t, 1, 1)
	ctx := context.Background()

	s.Start()
	s.Move(ctx, tracker.Point{X: 10, Y: 10})
	if s.Status() != Won {
		t.Fatalf("Status() = %v, expected won", s.Status())
	}

	s.Restart(ctx)
	if s.Status() != Idle || s.Rank() != 0 {
		t.Errorf("after restart status=%v rank=%d", s.Status(), s.Rank())
	}
	// Leaderboard persists across restarts
	if len(s.Leaderboard().Times()) != 1 {
		t.Errorf("leaderboard = %v, expected one time kept", s.Leaderboard().Times())
	}
}

func TestTickStopsOnGameOver(t *testing.T) {
	s, clock := newTestSession(t, 4, 4)

	s.Start()
	epoch := s.Epoch()
	clock.Advance(30 * time.Millisecond)

	elapsed, ok := s.Tick(epoch)
	if !ok || elapsed != 30*time.Millisecond {
		t.Errorf("Tick() = (%v, %v), expected (30ms, true)", elapsed, ok)
	}

	s.Move(context.Background(), tracker.Point{X: -1, Y: -1})
	if _, ok := s.Tick(epoch); ok {
		t.Error("Tick() after game over should stop the chain")
	}
}

func TestSinkFailureIsSwallowed(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	s, _ := newTestSession(t, 1, 1, WithRunSink(sink))

	s.Start()
	if got := s.Move(context.Background(), tracker.Point{X: 5, Y: 5}); got != tracker.Win {
		t.Errorf("Move() = %v, expected win despite sink failure", got)
	}
	if s.Status() != Won {
		t.Errorf("Status() = %v, expected won", s.Status())
	}
}

func TestSnapshot(t *testing.T) {
	s, clock := newTestSession(t, 3, 3)

	s.Start()
	clock.Advance(1234 * time.Millisecond)
	snap := s.Snapshot()

	if snap.Status != Running || snap.Elapsed != 1234*time.Millisecond || snap.Grid != s.Grid() || snap.Epoch != s.Epoch() {
		t.Errorf("Snapshot() = %+v", snap)
	}
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0.00"},
		{1234 * time.Millisecond, "1.23"},
		{59*time.Second + 999*time.Millisecond, "60.00"},
		{5 * time.Millisecond, "0.01"},
	}
	for _, tc := range tests {
		if got := FormatElapsed(tc.d); got != tc.want {
			t.Errorf("FormatElapsed(%v) = %q, expected %q", tc.d, got, tc.want)
		}
	}

	if Seconds(1234567*time.Microsecond) != 1.235 {
		t.Errorf("Seconds() = %v, expected 1.235", Seconds(1234567*time.Microsecond))
	}
}

func TestStatusString(t *testing.T) {
	for s, want := range map[Status]string{Idle: "idle", Running: "running", Won: "won", Lost: "lost"} {
		if s.String() != want {
			t.Errorf("Status(%d).String() = %q, expected %q", int(s), s.String(), want)
		}
	}
	if !Won.Over() || !Lost.Over() || Idle.Over() || Running.Over() {
		t.Error("Over() should be true only for won and lost")
	}
}
