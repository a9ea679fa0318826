// Package tui provides the Bubble Tea front end for the maze game: board
// rendering, mouse tracking, the timer loop and the Wish SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg refreshes the timer display. Epoch identifies the run that armed it.
type TickMsg struct {
	Epoch uint64
	Time  time.Time
}

// tickCmd returns a command that delivers one TickMsg after interval.
// The model re-arms it only while the session says the chain is live.
func tickCmd(interval time.Duration, epoch uint64) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Epoch: epoch, Time: t}
	})
}
