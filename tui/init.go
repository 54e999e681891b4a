package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Init starts the spinner and picks up any state published before the program started.
func (b *statefulBubble) Init() tea.Cmd {
	return tea.Batch(b.spinnerC.Tick, b.refreshState())
}
