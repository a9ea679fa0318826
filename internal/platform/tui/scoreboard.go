package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-maze/internal/leaderboard"
	"github.com/vovakirdan/tui-maze/internal/session"
	"github.com/vovakirdan/tui-maze/internal/storage"
)

const (
	maxRecentRuns = 50
	tableMinWidth = 36
)

// RunHistory is the optional run log shown next to the best times.
// *storage.Store implements it.
type RunHistory interface {
	RecentRuns(ctx context.Context, limit int) ([]storage.RunEntry, error)
	Stats(ctx context.Context) (*storage.RunStats, error)
}

// HistoryOf returns the run history of b, or nil if b keeps none.
func HistoryOf(b *storage.Backend) RunHistory {
	if b == nil || b.Runs == nil {
		return nil
	}
	return b.Runs
}

// scoreboardTab selects the table shown by the scoreboard.
type scoreboardTab int

const (
	tabBest scoreboardTab = iota
	tabRecent
)

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Switch key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Switch, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Switch},
		{k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Switch: key.NewBinding(
			key.WithKeys("left", "right", "h", "l"),
			key.WithHelp("left/right", "best/recent"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b", "tab"),
			key.WithHelp("esc/tab", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for the best-times screen.
type ScoreboardModel struct {
	ctx       context.Context
	board     *leaderboard.Leaderboard
	history   RunHistory
	tab       scoreboardTab
	times     []float64
	runs      []storage.RunEntry
	stats     *storage.RunStats
	table     table.Model
	help      help.Model
	keys      ScoreboardKeyMap
	width     int
	height    int
	quitting  bool
	goingBack bool
}

// NewScoreboardModel creates a scoreboard over board. history may be nil.
func NewScoreboardModel(ctx context.Context, board *leaderboard.Leaderboard, history RunHistory, width, height int) ScoreboardModel {
	h := help.New()
	h.ShowAll = false

	m := ScoreboardModel{
		ctx:     ctx,
		board:   board,
		history: history,
		keys:    DefaultScoreboardKeyMap(),
		help:    h,
		width:   width,
		height:  height,
	}
	m.table = m.createTable()
	m.Refresh()
	return m
}

// createTable creates a table with columns for the current tab.
func (m *ScoreboardModel) createTable() table.Model {
	var columns []table.Column
	switch m.tab {
	case tabRecent:
		columns = []table.Column{
			{Title: "Result", Width: 7},
			{Title: "Time", Width: 9},
			{Title: "Size", Width: 7},
			{Title: "Player", Width: 10},
			{Title: "Date", Width: 12},
		}
	default:
		columns = []table.Column{
			{Title: "Rank", Width: 6},
			{Title: "Time (s)", Width: 12},
		}
	}

	height := m.height - 10
	if height < 3 {
		height = 3
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// Refresh reloads the leaderboard and run history.
func (m *ScoreboardModel) Refresh() {
	m.times = nil
	if m.board != nil {
		m.times = m.board.Times()
	}

	m.runs, m.stats = nil, nil
	if m.history != nil {
		if runs, err := m.history.RecentRuns(m.ctx, maxRecentRuns); err == nil {
			m.runs = runs
		}
		if stats, err := m.history.Stats(m.ctx); err == nil {
			m.stats = stats
		}
	}
	m.updateTableRows()
}

// updateTableRows fills the table for the current tab.
func (m *ScoreboardModel) updateTableRows() {
	var rows []table.Row
	switch m.tab {
	case tabRecent:
		rows = make([]table.Row, len(m.runs))
		for i, r := range m.runs {
			rows[i] = table.Row{
				r.Outcome,
				session.FormatElapsed(r.Elapsed()),
				fmt.Sprintf("%dx%d", r.Rows, r.Cols),
				r.Player,
				r.CreatedAt.Local().Format("Jan 02 15:04"),
			}
		}
	default:
		rows = make([]table.Row, len(m.times))
		for i, t := range m.times {
			rows[i] = table.Row{
				fmt.Sprintf("#%d", i+1),
				session.FormatSeconds(t),
			}
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (ScoreboardModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, nil

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, nil

		case key.Matches(msg, m.keys.Switch):
			if m.history == nil {
				return m, nil
			}
			if m.tab == tabBest {
				m.tab = tabRecent
			} else {
				m.tab = tabBest
			}
			m.table = m.createTable()
			m.updateTableRows()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.Resize(msg.Width, msg.Height)
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Resize adapts the table to a new terminal size.
func (m *ScoreboardModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.table = m.createTable()
	m.updateTableRows()
	m.help.Width = width
}

// Reset clears the back and quit flags so the model can be shown again.
func (m *ScoreboardModel) Reset() {
	m.goingBack = false
	m.quitting = false
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	title := "BEST TIMES"
	if m.tab == tabRecent {
		title = "RECENT RUNS"
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, tableStyle.Render(m.renderTableContent())))
	b.WriteString("\n")

	if line := m.statsLine(); line != "" {
		statsStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
		b.WriteString(statsStyle.Render(centerText(line, m.width)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table or empty message.
func (m ScoreboardModel) renderTableContent() string {
	empty := len(m.times) == 0
	if m.tab == tabRecent {
		empty = len(m.runs) == 0
	}
	if empty {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Width(tableMinWidth).
			Padding(1, 2)
		return emptyStyle.Render("No times recorded yet.\nSolve a maze to set one!")
	}
	return m.table.View()
}

// statsLine summarizes the run history.
func (m ScoreboardModel) statsLine() string {
	if m.stats == nil || m.stats.Games == 0 {
		return ""
	}
	line := fmt.Sprintf("Games: %d  Wins: %d  Losses: %d", m.stats.Games, m.stats.Wins, m.stats.Losses)
	if m.stats.Wins > 0 {
		line += fmt.Sprintf("  Avg win: %ss", session.FormatSeconds(m.stats.AvgWinMs/1000))
	}
	return line
}

// IsGoingBack returns true if the user left the scoreboard.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if the user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}

// standaloneScoreboard wraps ScoreboardModel as a tea.Model that exits on back.
type standaloneScoreboard struct {
	ScoreboardModel
}

func (s standaloneScoreboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := s.ScoreboardModel.Update(msg)
	s.ScoreboardModel = m
	if m.IsQuitting() || m.IsGoingBack() {
		return s, tea.Quit
	}
	return s, cmd
}

func (s standaloneScoreboard) View() string {
	if s.IsQuitting() || s.IsGoingBack() {
		return ""
	}
	return s.ScoreboardModel.View()
}

// RunScoreboard shows the scoreboard on its own until the user leaves.
func RunScoreboard(ctx context.Context, board *leaderboard.Leaderboard, history RunHistory, width, height int) error {
	model := standaloneScoreboard{NewScoreboardModel(ctx, board, history, width, height)}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
