// Package tui provides the Bubble Tea spectator for running simulations.
// It renders a world onto a character screen, drives its ticks at a
// chosen rate and serves the same view over SSH.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Tick rate bounds of the spectator.
const (
	MinTickRate = 1
	MaxTickRate = 256
)

// TickMsg is sent to trigger a simulation tick.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	if tickRate < MinTickRate {
		tickRate = MinTickRate
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
