package tui

import (
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sonora-player/sonora/playback"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = uiCmd
	}

	switch msg := msg.(type) {
	case stateMsg:
		return b, tea.Batch(cmd, b.onState(playback.AppState(msg)))
	case spinner.TickMsg:
		var tick tea.Cmd
		b.spinnerC, tick = b.spinnerC.Update(msg)
		return b, tea.Batch(cmd, tick)
	case error:
		b.raiseError(msg)
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}
	}

	switch b.state {
	case nowPlayingState:
		return b, tea.Batch(cmd, b.updateNowPlaying(msg))
	case queueState:
		return b, tea.Batch(cmd, b.updateQueue(msg))
	case errorState:
		return b, tea.Batch(cmd, b.updateError(msg))
	}

	return b, cmd
}

// onState drops snapshots older than the one shown. Listener goroutines may deliver out of order.
func (b *statefulBubble) onState(app playback.AppState) tea.Cmd {
	if app.Revision < b.app.Revision {
		return nil
	}

	cmd := b.setApp(app)

	if app.Unavailable && b.state != errorState {
		err := app.Fatal
		if err == nil {
			err = playback.ErrUnavailable
		}
		b.raiseError(err)
	}

	return cmd
}

// transport handles the playback keys shared by the now playing and queue views.
func (b *statefulBubble) transport(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case bubblesKey.Matches(msg, b.keymap.playPause):
		return b.playPause(), true
	case bubblesKey.Matches(msg, b.keymap.next):
		return b.next(), true
	case bubblesKey.Matches(msg, b.keymap.prev):
		return b.prev(), true
	case bubblesKey.Matches(msg, b.keymap.mute):
		return b.toggleMute(), true
	case bubblesKey.Matches(msg, b.keymap.volumeUp):
		return b.changeVolume(b.options.VolumeStep), true
	case bubblesKey.Matches(msg, b.keymap.volumeDown):
		return b.changeVolume(-b.options.VolumeStep), true
	}

	return nil, false
}

func (b *statefulBubble) updateNowPlaying(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	if cmd, handled := b.transport(keyMsg); handled {
		return cmd
	}

	switch {
	case bubblesKey.Matches(keyMsg, b.keymap.quit):
		return tea.Quit
	case bubblesKey.Matches(keyMsg, b.keymap.seekBackward):
		return b.seek(-b.options.SeekStep)
	case bubblesKey.Matches(keyMsg, b.keymap.seekForward):
		return b.seek(b.options.SeekStep)
	case bubblesKey.Matches(keyMsg, b.keymap.openCover):
		return b.openCover()
	case bubblesKey.Matches(keyMsg, b.keymap.toggleQueue):
		b.newState(queueState)
		b.selectCurrent()
	case bubblesKey.Matches(keyMsg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	}

	return nil
}

func (b *statefulBubble) updateQueue(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && b.queueC.FilterState() != list.Filtering {
		if cmd, handled := b.transport(msg); handled {
			return cmd
		}

		switch {
		case bubblesKey.Matches(msg, b.keymap.play):
			return b.playSelected()
		case bubblesKey.Matches(msg, b.keymap.toggleQueue):
			b.previousState()
			return nil
		case bubblesKey.Matches(msg, b.keymap.back):
			if b.queueC.FilterState() == list.Unfiltered {
				b.previousState()
				return nil
			}
		}
	}

	b.queueC, cmd = b.queueC.Update(msg)
	return cmd
}

func (b *statefulBubble) updateError(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case bubblesKey.Matches(keyMsg, b.keymap.quit):
		return tea.Quit
	case bubblesKey.Matches(keyMsg, b.keymap.back):
		// the player is gone for good, there is nothing to go back to
		if b.app.Unavailable {
			return nil
		}
		b.lastError = nil
		b.previousState()
	}

	return nil
}

// selectCurrent moves the queue cursor to the current item.
func (b *statefulBubble) selectCurrent() {
	if b.queueC.FilterState() != list.Unfiltered {
		return
	}
	if position, ok := b.app.Queue.Position.Get(); ok {
		b.queueC.Select(position)
	}
}
