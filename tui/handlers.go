package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sonora-player/sonora/icon"
	"github.com/sonora-player/sonora/internal/ui"
	"github.com/sonora-player/sonora/log"
	"github.com/sonora-player/sonora/open"
	"github.com/sonora-player/sonora/playback"
	"github.com/sonora-player/sonora/util"
)

// stateMsg carries a published AppState into the update loop.
type stateMsg playback.AppState

// run executes action off the update loop. Failures become notifications.
func (b *statefulBubble) run(what string, action func() error) tea.Cmd {
	return func() tea.Msg {
		if err := action(); err != nil {
			log.Warnf("tui: %s: %s", what, err)
			return ui.NotificationMsg(fmt.Sprintf("%s %s failed: %s", icon.Get(icon.Fail), what, err))
		}
		return nil
	}
}

func (b *statefulBubble) refreshState() tea.Cmd {
	return func() tea.Msg {
		return stateMsg(b.controls.GetState())
	}
}

func (b *statefulBubble) playPause() tea.Cmd {
	return b.run("play/pause", b.controls.PlayPause)
}

func (b *statefulBubble) next() tea.Cmd {
	return b.run("next", b.controls.Next)
}

func (b *statefulBubble) prev() tea.Cmd {
	return b.run("previous", b.controls.Prev)
}

// seek jumps by delta from the last known position, staying inside the track.
func (b *statefulBubble) seek(delta time.Duration) tea.Cmd {
	elapsed, ok := b.app.Player.Elapsed().Get()
	if !ok {
		return nil
	}

	target := elapsed + delta
	if target < 0 {
		target = 0
	}
	if duration, ok := b.duration(); ok && target > duration {
		target = duration
	}

	return b.run("seek", func() error {
		return b.controls.SeekTo(target)
	})
}

func (b *statefulBubble) changeVolume(delta float64) tea.Cmd {
	volume := util.Clamp(b.app.Player.Volume+delta, 0, 1)
	return tea.Batch(
		b.run("volume", func() error {
			return b.controls.SetVolume(volume)
		}),
		ui.Notify(fmt.Sprintf("%s %.0f%%", icon.Get(icon.Volume), volume*100)),
	)
}

func (b *statefulBubble) toggleMute() tea.Cmd {
	if b.app.Player.Muted {
		return b.run("unmute", b.controls.Unmute)
	}
	return b.run("mute", b.controls.Mute)
}

func (b *statefulBubble) openCover() tea.Cmd {
	np, ok := b.app.NowPlaying.Get()
	if !ok {
		return nil
	}

	cover, ok := np.CoverArt.Get()
	if !ok {
		return ui.Notify("No cover art")
	}

	return b.run("open cover", func() error {
		return open.Start(cover, b.options.ImageViewer)
	})
}

func (b *statefulBubble) playSelected() tea.Cmd {
	item, ok := b.queueC.SelectedItem().(*listItem)
	if !ok {
		return nil
	}

	b.newState(nowPlayingState)
	return b.run("play", func() error {
		return b.controls.PlayPosition(item.index)
	})
}

// duration prefers the length reported by the player over the catalog's.
func (b *statefulBubble) duration() (time.Duration, bool) {
	if src, ok := b.app.Player.Source.Get(); ok {
		if d, ok := src.Duration.Get(); ok && d > 0 {
			return d, true
		}
	}

	if np, ok := b.app.NowPlaying.Get(); ok && np.Track.Duration > 0 {
		return np.Track.Duration, true
	}

	return 0, false
}
