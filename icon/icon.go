// Package icon renders the player's status symbols.
//
// Icons can be displayed as emoji, nerd-font glyphs, plain ASCII
// or Unicode squares depending on user preference.
package icon

import (
	"github.com/sonora-player/sonora/key"
	"github.com/spf13/viper"
)

// Visual Variant Constants - these define the supported aesthetic styles for icon rendering.
const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	squares = "squares"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, squares}
}

// Icon identifies one symbol.
type Icon int

const (
	Play Icon = iota
	Pause
	Stop
	Buffering
	Ended
	Volume
	Muted
	Download
	Queued
	Current
	Fail
	Success
)

// iconDef encapsulates the visual representations of a single UI symbol across all supported variants.
type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	squares string
}

var icons = map[Icon]*iconDef{
	Play:      {emoji: "▶️", nerd: "", plain: ">", squares: "▶"},
	Pause:     {emoji: "⏸️", nerd: "", plain: "||", squares: "⏸"},
	Stop:      {emoji: "⏹️", nerd: "", plain: "[]", squares: "■"},
	Buffering: {emoji: "⏳", nerd: "", plain: "..", squares: "◌"},
	Ended:     {emoji: "⏏️", nerd: "", plain: "||>", squares: "□"},
	Volume:    {emoji: "🔊", nerd: "", plain: "vol", squares: "▮"},
	Muted:     {emoji: "🔇", nerd: "", plain: "mute", squares: "▯"},
	Download:  {emoji: "📥", nerd: "", plain: "dl", squares: "▼"},
	Queued:    {emoji: "📌", nerd: "", plain: "+", squares: "◆"},
	Current:   {emoji: "🎵", nerd: "", plain: "*", squares: "●"},
	Fail:      {emoji: "💀", nerd: "", plain: "X", squares: "✖"},
	Success:   {emoji: "🎉", nerd: "", plain: "OK", squares: "✔"},
}

// Get retrieves the visual representation for the receiver Def based on the global icons variant configuration.
func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case squares:
		return d.squares
	default:
		return ""
	}
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	if def, ok := icons[i]; ok {
		return def.Get()
	}
	return ""
}
