// Package tui provides the now playing and queue terminal user interface.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/sonora-player/sonora/playback"
)

// Controls is the orchestrator surface driven by the interface.
type Controls interface {
	GetState() playback.AppState
	Subscribe(fn playback.Listener) uuid.UUID
	Unsubscribe(id uuid.UUID) bool

	PlayPause() error
	Next() error
	Prev() error
	SeekTo(position time.Duration) error
	SetVolume(linear float64) error
	Mute() error
	Unmute() error
	PlayPosition(i int) error
}

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	// ShowQueue opens the queue instead of the now playing view.
	ShowQueue bool
	// SeekStep is the jump of the seek keys.
	SeekStep time.Duration
	// VolumeStep is the linear change of the volume keys.
	VolumeStep float64
	// ImageViewer opens cover art. Empty means the system default.
	ImageViewer string
}

// Run initializes and executes the Bubble Tea application loop until the user quits.
func Run(controls Controls, options *Options) error {
	bubble := newBubble(controls, options)

	if options.ShowQueue {
		bubble.newState(queueState)
	} else {
		bubble.newState(nowPlayingState)
	}

	program := tea.NewProgram(bubble, tea.WithAltScreen())

	// Send blocks until the program reads the message, so it must never run on the
	// goroutine that published the state.
	id := controls.Subscribe(func(state playback.AppState) {
		go program.Send(stateMsg(state))
	})
	defer controls.Unsubscribe(id)

	_, err := program.Run()
	return err
}
