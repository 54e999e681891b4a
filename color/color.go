// Package color holds the ANSI colors used by command output.
package color

import "github.com/charmbracelet/lipgloss"

// New initializes a lipgloss.Color from a string value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")

	HiRed    = New("9")
	HiPurple = New("13")

	// Orange highlights key names in help lines.
	Orange = New("#ffb703")
)
