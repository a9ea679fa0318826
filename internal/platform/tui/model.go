package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-maze/internal/core"
	"github.com/vovakirdan/tui-maze/internal/session"
	"github.com/vovakirdan/tui-maze/internal/tracker"
)

const (
	title      = "MOUSE MAZE"
	helpLines  = 1 // short help below the board
	fullHelpLn = 3 // full help needs the tallest FullHelp column
)

// Options configures a Model.
type Options struct {
	Screen  core.RuntimeConfig
	History RunHistory  // optional run log for the scoreboard
	Logger  *log.Logger // nil discards

	// ScreenshotDir enables Ctrl+S screenshots when set.
	ScreenshotDir string
}

// Model is the Bubble Tea model for one maze game.
type Model struct {
	ctx        context.Context
	sess       *session.GameSession
	config     core.RuntimeConfig
	screen     *core.Screen
	layout     Layout
	keys       KeyMap
	help       help.Model
	scores     ScoreboardModel
	showScores bool
	elapsed    time.Duration
	logger     *log.Logger
	shotDir    string
	quitting   bool
}

// NewModel creates a model driving sess.
func NewModel(ctx context.Context, sess *session.GameSession, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	h := help.New()
	h.ShowAll = false
	h.Width = opts.Screen.ScreenW

	m := Model{
		ctx:     ctx,
		sess:    sess,
		config:  opts.Screen,
		screen:  core.NewScreen(0, 0),
		keys:    DefaultKeyMap(),
		help:    h,
		scores:  NewScoreboardModel(ctx, sess.Leaderboard(), opts.History, opts.Screen.ScreenW, opts.Screen.ScreenH),
		logger:  logger,
		shotDir: opts.ScreenshotDir,
	}
	m.relayout()
	return m
}

// relayout recomputes the board placement for the current terminal size.
func (m *Model) relayout() {
	cfg := m.sess.Config()
	m.layout = NewLayout(m.config.ScreenW, m.config.ScreenH, cfg.Rows, cfg.Cols, cfg.Geometry.CellSize, helpLines)
	m.screen.Resize(m.config.ScreenW, hudTop+m.layout.Board.H+hudBottom)
}

// Init initializes the model. The timer starts with the run, not here.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick(msg)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showScores {
		var cmd tea.Cmd
		m.scores, cmd = m.scores.Update(msg)
		switch {
		case m.scores.IsQuitting():
			m.quitting = true
			return m, tea.Quit
		case m.scores.IsGoingBack():
			m.showScores = false
			m.scores.Reset()
		}
		return m, cmd
	}

	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	switch m.keys.MapKey(msg) {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit

	case core.ActionStart:
		return m.start()

	case core.ActionRestart:
		m.sess.Restart(m.ctx)
		m.elapsed = 0

	case core.ActionScores:
		if m.sess.Status() != session.Running {
			m.scores.Refresh()
			m.showScores = true
		}

	case core.ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// start begins a run and arms the timer for its epoch.
func (m Model) start() (tea.Model, tea.Cmd) {
	if !m.layout.Fits || !m.sess.Start() {
		return m, nil
	}
	m.elapsed = 0
	return m, tickCmd(m.sess.Config().TickInterval, m.sess.Epoch())
}

// handleMouse starts the run on a click inside the start cell and feeds
// pointer motion to the session while it runs.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.showScores || !m.layout.Fits {
		return m, nil
	}

	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if m.sess.Status() == session.Idle && m.onStartCell(msg.X, msg.Y) {
			return m.start()
		}

	case msg.Action == tea.MouseActionMotion:
		if m.sess.Status() != session.Running {
			return m, nil
		}
		var res tracker.Result
		if m.layout.OnWall(m.sess.Grid(), msg.X, msg.Y) {
			res = m.sess.HitWall(m.ctx)
		} else {
			res = m.sess.Move(m.ctx, m.layout.PointAt(msg.X, msg.Y))
		}
		if res != tracker.Continue {
			m.elapsed = m.sess.Elapsed()
		}
	}

	return m, nil
}

// onStartCell reports whether (x, y) is inside the start cell and clear of its walls.
func (m Model) onStartCell(x, y int) bool {
	g := m.sess.Grid()
	if m.layout.CellAt(x, y) != g.Start || m.layout.OnWall(g, x, y) {
		return false
	}
	return !tracker.Collides(g, m.sess.Config().Geometry, m.layout.PointAt(x, y))
}

// handleResize processes window resize events. A run whose board moves or
// no longer fits is restarted, since the pointer would jump across walls.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	prev := m.layout

	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.relayout()
	m.help.Width = msg.Width
	m.scores.Resize(msg.Width, msg.Height)

	if m.sess.Status() == session.Running && (!m.layout.Fits || m.layout.Board != prev.Board) {
		m.logger.Debug("board moved during a run, restarting", "width", msg.Width, "height", msg.Height)
		m.sess.Restart(m.ctx)
		m.elapsed = 0
	}

	return m, nil
}

// handleTick refreshes the timer and re-arms it while the run is live.
func (m Model) handleTick(msg TickMsg) (tea.Model, tea.Cmd) {
	elapsed, ok := m.sess.Tick(msg.Epoch)
	if !ok {
		return m, nil
	}
	m.elapsed = elapsed
	return m, tickCmd(m.sess.Config().TickInterval, msg.Epoch)
}

// statusMessage returns the HUD line for the current state.
func (m Model) statusMessage() (string, core.Color) {
	switch m.sess.Status() {
	case session.Running:
		return "Game started! Move the cursor through the maze.", core.ColorCyan
	case session.Won:
		msg := fmt.Sprintf("Congratulations! You finished in %ss. Press R to restart.", session.FormatElapsed(m.elapsed))
		if len(msg) > m.config.ScreenW {
			msg = fmt.Sprintf("You won in %ss! Press R.", session.FormatElapsed(m.elapsed))
		}
		return msg, core.ColorBrightGreen
	case session.Lost:
		return "You lost! Press R to restart.", core.ColorBrightRed
	default:
		return "Click the green square to start!", core.ColorYellow
	}
}

// drawHUD draws the title and status above the board and the timer below it.
func (m Model) drawHUD() {
	board := m.layout.Board

	m.screen.DrawText(board.X, 0, title, core.ColorCyan)
	if best, ok := m.sess.Leaderboard().Best(); ok {
		text := "Best: " + session.FormatSeconds(best)
		m.screen.DrawText(board.Right()-len(text), 0, text, core.ColorGray)
	}

	msg, color := m.statusMessage()
	m.screen.DrawTextCentered(1, msg, color)

	timer := "Time: " + session.FormatElapsed(m.elapsed)
	m.screen.DrawText(board.X, board.Bottom(), timer, core.ColorWhite)
	if rank := m.sess.Rank(); rank > 0 {
		text := fmt.Sprintf("#%d on the board!", rank)
		x := core.Max(board.Right(), board.X+len(timer)+2+len(text)) - len(text)
		m.screen.DrawText(x, board.Bottom(), text, core.ColorBrightGreen)
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showScores {
		return m.scores.View()
	}
	if !m.layout.Fits {
		return m.tooSmallView()
	}

	m.screen.Clear()
	m.drawHUD()
	DrawMaze(m.screen, m.layout, m.sess.Grid(), m.sess.Status())

	h := m.help
	if h.ShowAll && m.config.ScreenH-m.screen.Height() < fullHelpLn {
		h.ShowAll = false
	}
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	return RenderScreen(m.screen) + "\n" + helpStyle.Render(h.View(m.keys))
}

// tooSmallView tells the user how large the terminal must be.
func (m Model) tooSmallView() string {
	needW, needH := m.layout.MinSize(helpLines)
	cfg := m.sess.Config()

	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")).Render("Terminal too small"),
		"",
		fmt.Sprintf("A %dx%d maze needs %dx%d, have %dx%d.", cfg.Rows, cfg.Cols, needW, needH, m.config.ScreenW, m.config.ScreenH),
		"Enlarge the window or try --difficulty easy.",
		"",
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("q: quit"),
	}
	return lipgloss.Place(m.config.ScreenW, m.config.ScreenH, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, lines...))
}

// saveScreenshot writes the board as plain text to the screenshot directory.
func (m *Model) saveScreenshot() {
	if m.shotDir == "" || !m.layout.Fits {
		return
	}

	m.screen.Clear()
	m.drawHUD()
	DrawMaze(m.screen, m.layout, m.sess.Grid(), m.sess.Status())

	if err := os.MkdirAll(m.shotDir, 0o755); err != nil {
		m.logger.Warn("cannot create screenshot directory", "error", err)
		return
	}

	filename := fmt.Sprintf("maze_%s.txt", time.Now().Format("20060102_150405"))
	if m.config.Seed != 0 {
		filename = fmt.Sprintf("maze_%s_seed%d.txt", time.Now().Format("20060102_150405"), m.config.Seed)
	}
	path := filepath.Join(m.shotDir, filename)

	var b strings.Builder
	for y := range m.screen.Height() {
		b.WriteString(strings.TrimRight(m.screen.Row(y), " "))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		m.logger.Warn("cannot save screenshot", "error", err)
		return
	}
	m.logger.Info("screenshot saved", "path", path)
}

// IsQuitting reports whether the user asked to quit.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// Run starts the Bubble Tea program for sess on the local terminal.
func Run(ctx context.Context, sess *session.GameSession, opts Options) error {
	model := NewModel(ctx, sess, opts)

	p := tea.NewProgram(
		model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),      // Use alternate screen buffer
		tea.WithMouseAllMotion(), // Report motion without a pressed button
	)

	_, err := p.Run()
	return err
}
