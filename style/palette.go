package style

import "github.com/charmbracelet/lipgloss"

// Catppuccin mocha, trimmed to what the player draws with.
var (
	Base     = lipgloss.Color("#1e1e2e")
	Text     = lipgloss.Color("#cdd6f4")
	Overlay  = lipgloss.Color("#6c7086")
	Mauve    = lipgloss.Color("#cba6f7")
	Red      = lipgloss.Color("#f38ba8")
	Peach    = lipgloss.Color("#fab387")
	Yellow   = lipgloss.Color("#f9e2af")
	Green    = lipgloss.Color("#a6e3a1")
	Sapphire = lipgloss.Color("#74c7ec")
)

// Roles of the palette colors in the player views.
var (
	AccentColor = Mauve
	FaintColor  = Overlay
	HiRed       = Red

	// CurrentColor marks the playing queue item, QueuedColor the user-queued ones.
	CurrentColor = Mauve
	QueuedColor  = Peach

	DownloadColor = Sapphire
	PlayingColor  = Green
	PausedColor   = Yellow
	StalledColor  = Overlay
)
