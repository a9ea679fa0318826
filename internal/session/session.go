// Package session owns the lifecycle of a single maze game: grid, status,
// timing and leaderboard submission. A GameSession is driven by named
// transitions (Start, Move, Restart, Tick) and is independent of any UI.
// It is not safe for concurrent use; each front end drives it from one
// event loop or guards it with its own lock.
package session

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-maze/internal/leaderboard"
	"github.com/vovakirdan/tui-maze/internal/maze"
	"github.com/vovakirdan/tui-maze/internal/tracker"
)

// Status is the game state.
type Status int

const (
	Idle Status = iota
	Running
	Won
	Lost
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status as its name, for JSON responses.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Over reports whether the status is terminal.
func (s Status) Over() bool {
	return s == Won || s == Lost
}

// Config holds the per-game constants.
type Config struct {
	Rows         int
	Cols         int
	Geometry     tracker.Geometry
	TickInterval time.Duration
}

// DefaultConfig returns the 16x16, 25px, 10ms configuration.
func DefaultConfig() Config {
	return Config{
		Rows:         16,
		Cols:         16,
		Geometry:     tracker.DefaultGeometry(),
		TickInterval: 10 * time.Millisecond,
	}
}

// Run describes a finished game.
type Run struct {
	Outcome    Status
	Elapsed    time.Duration
	Rows       int
	Cols       int
	Player     string
	FinishedAt time.Time
}

// RunSink receives every finished run. Storage implements it.
type RunSink interface {
	RecordRun(ctx context.Context, run Run) error
}

// State is a read-only view of a session for renderers and APIs.
type State struct {
	Status  Status
	Elapsed time.Duration
	Grid    *maze.Grid
	Rank    int // leaderboard rank of the last win, 0 if none
	Epoch   uint64
}

// Option configures a GameSession.
type Option func(*GameSession)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *GameSession) {
		s.now = now
	}
}

// WithRand sets the random source used for maze generation.
func WithRand(rng *rand.Rand) Option {
	return func(s *GameSession) {
		s.rng = rng
	}
}

// WithLogger sets the logger for state transitions.
func WithLogger(logger *log.Logger) Option {
	return func(s *GameSession) {
		s.logger = logger
	}
}

// WithRunSink attaches a sink that records every finished run.
func WithRunSink(sink RunSink) Option {
	return func(s *GameSession) {
		s.sink = sink
	}
}

// WithPlayer sets the player name attached to recorded runs.
func WithPlayer(name string) Option {
	return func(s *GameSession) {
		s.player = name
	}
}

// GameSession is one player's game.
type GameSession struct {
	cfg    Config
	board  *leaderboard.Leaderboard
	rng    *rand.Rand
	now    func() time.Time
	logger *log.Logger
	sink   RunSink
	player string

	grid      *maze.Grid
	status    Status
	startedAt time.Time
	endedAt   time.Time
	rank      int

	// epoch identifies the live tick chain; ticks carrying an older epoch are dead
	epoch   uint64
	ticking bool
}

// New creates an idle session with a freshly generated maze.
// A nil board gets an in-memory leaderboard.
func New(ctx context.Context, cfg Config, board *leaderboard.Leaderboard, opts ...Option) *GameSession {
	s := &GameSession{
		cfg:   cfg,
		board: board,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.board == nil {
		s.board = leaderboard.New(nil, "", 0)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(s.now().UnixNano()))
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.cfg.Geometry.CellSize <= 0 {
		s.cfg.Geometry = tracker.DefaultGeometry()
	}

	s.grid = maze.New(ctx, cfg.Rows, cfg.Cols, s.rng)
	return s
}

// Config returns the session configuration.
func (s *GameSession) Config() Config {
	return s.cfg
}

// Grid returns the current maze. It is replaced on Restart.
func (s *GameSession) Grid() *maze.Grid {
	return s.grid
}

// Status returns the current state.
func (s *GameSession) Status() Status {
	return s.status
}

// Leaderboard returns the board wins are submitted to.
func (s *GameSession) Leaderboard() *leaderboard.Leaderboard {
	return s.board
}

// Epoch returns the identifier of the current tick chain.
func (s *GameSession) Epoch() uint64 {
	return s.epoch
}

// Ticking reports whether a periodic timer should be running.
func (s *GameSession) Ticking() bool {
	return s.ticking
}

// Start moves an idle session to Running and starts the timer.
// Returns false if the session was not idle.
func (s *GameSession) Start() bool {
	if s.status != Idle {
		return false
	}

	s.status = Running
	s.startedAt = s.now()
	s.endedAt = time.Time{}
	s.rank = 0
	s.epoch++
	s.ticking = true

	s.logger.Debug("game started", "rows", s.grid.Rows, "cols", s.grid.Cols, "epoch", s.epoch)
	return true
}

// Move evaluates a pointer position. Outside Running it is ignored and
// returns Continue. A collision ends the game as lost; reaching the finish
// ends it as won and submits the time to the leaderboard.
func (s *GameSession) Move(ctx context.Context, p tracker.Point) tracker.Result {
	if s.status != Running {
		return tracker.Continue
	}

	res := tracker.Evaluate(s.grid, s.cfg.Geometry, p)
	switch res {
	case tracker.Collision:
		s.finish(ctx, Lost)
	case tracker.Win:
		s.finish(ctx, Won)
	}
	return res
}

// HitWall ends a running game as lost when the pointer touched a wall the
// caller detected at a finer resolution than the tracker's, such as a corner
// glyph. Outside Running it is ignored and returns Continue.
func (s *GameSession) HitWall(ctx context.Context) tracker.Result {
	if s.status != Running {
		return tracker.Continue
	}
	s.finish(ctx, Lost)
	return tracker.Collision
}

// finish stops the timer and records the outcome.
func (s *GameSession) finish(ctx context.Context, outcome Status) {
	s.status = outcome
	s.endedAt = s.now()
	s.ticking = false

	elapsed := s.endedAt.Sub(s.startedAt)
	s.logger.Info("game over", "outcome", outcome, "elapsed", FormatElapsed(elapsed), "player", s.player)

	if outcome == Won {
		rank, err := s.board.Submit(ctx, Seconds(elapsed))
		if err != nil {
			s.logger.Warn("could not persist leaderboard", "error", err)
		}
		s.rank = rank
	}

	if s.sink != nil {
		run := Run{
			Outcome:    outcome,
			Elapsed:    elapsed,
			Rows:       s.grid.Rows,
			Cols:       s.grid.Cols,
			Player:     s.player,
			FinishedAt: s.endedAt,
		}
		if err := s.sink.RecordRun(ctx, run); err != nil {
			s.logger.Warn("could not record run", "error", err)
		}
	}
}

// Restart discards the current maze, generates a new one and returns to Idle.
// Any running timer is stopped. Allowed from every state.
func (s *GameSession) Restart(ctx context.Context) {
	s.grid = maze.New(ctx, s.cfg.Rows, s.cfg.Cols, s.rng)
	s.status = Idle
	s.startedAt = time.Time{}
	s.endedAt = time.Time{}
	s.rank = 0
	s.epoch++
	s.ticking = false

	s.logger.Debug("game restarted", "epoch", s.epoch)
}

// Tick refreshes the displayed elapsed time for the tick chain identified
// by epoch. When it returns false the caller must stop re-arming its timer.
func (s *GameSession) Tick(epoch uint64) (time.Duration, bool) {
	if !s.ticking || epoch != s.epoch || s.status != Running {
		return s.Elapsed(), false
	}
	return s.Elapsed(), true
}

// Elapsed returns the run time: live while running, frozen once over,
// zero while idle.
func (s *GameSession) Elapsed() time.Duration {
	switch s.status {
	case Running:
		return s.now().Sub(s.startedAt)
	case Won, Lost:
		return s.endedAt.Sub(s.startedAt)
	default:
		return 0
	}
}

// Rank returns the leaderboard rank of the last win, or 0.
func (s *GameSession) Rank() int {
	return s.rank
}

// Snapshot returns a read-only view of the session.
func (s *GameSession) Snapshot() State {
	return State{
		Status:  s.status,
		Elapsed: s.Elapsed(),
		Grid:    s.grid,
		Rank:    s.rank,
		Epoch:   s.epoch,
	}
}

// Seconds converts d to seconds at millisecond resolution.
func Seconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}

// FormatElapsed renders d in seconds with hundredths.
func FormatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.2f", d.Seconds())
}

// FormatSeconds renders a leaderboard time with hundredths.
func FormatSeconds(t float64) string {
	return fmt.Sprintf("%.2f", t)
}
