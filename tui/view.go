package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wrap"
	"github.com/sonora-player/sonora/color"
	"github.com/sonora-player/sonora/icon"
	"github.com/sonora-player/sonora/player"
	"github.com/sonora-player/sonora/playback"
	"github.com/sonora-player/sonora/style"
	"github.com/sonora-player/sonora/util"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case nowPlayingState:
		output = b.viewNowPlaying()
	case queueState:
		output = b.viewQueue()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewNowPlaying() string {
	lines := []string{style.Title("Now Playing"), ""}

	np, ok := b.app.NowPlaying.Get()
	if !ok {
		lines = append(lines, style.Faint("Nothing is playing"), "")
		if n := len(b.app.Queue.Items); n > 0 {
			lines = append(lines, style.Faint(fmt.Sprintf("%d tracks queued, press space to start", n)))
		}
		return b.renderLines(true, lines)
	}

	lines = append(lines, b.viewTrack(np)...)
	lines = append(lines, "", b.viewPosition(), "", b.viewVolume())

	if download := b.viewDownload(np); download != "" {
		lines = append(lines, "", download)
	}

	if np.Err != nil {
		lines = append(lines, "", style.Fg(color.Red)(icon.Get(icon.Fail)+" "+wrap.String(np.Err.Error(), b.width)))
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewTrack(np playback.NowPlaying) []string {
	truncate := style.Truncate(b.width)
	title := np.Track.Title
	if title == "" {
		title = np.Track.ID
	}

	lines := []string{
		truncate(fmt.Sprintf("%s %s", b.statusIcon(), style.New().Bold(true).Foreground(style.AccentColor).Render(title))),
	}

	var details []string
	if np.Track.Artist != "" {
		details = append(details, np.Track.Artist)
	}
	if np.Track.Album != "" {
		details = append(details, np.Track.Album)
	}
	if len(details) > 0 {
		lines = append(lines, truncate(style.Faint(strings.Join(details, " • "))))
	}

	position := fmt.Sprintf("Track %d of %d", np.Position+1, len(b.app.Queue.Items))
	if cover, ok := np.CoverArt.Get(); ok {
		position += " • cover " + cover
	}
	lines = append(lines, truncate(style.Faint(position)))

	return lines
}

func (b *statefulBubble) statusIcon() string {
	switch b.app.Player.Status {
	case player.StatusPlaying:
		return style.Fg(style.PlayingColor)(icon.Get(icon.Play))
	case player.StatusPaused, player.StatusReady:
		return style.Fg(style.PausedColor)(icon.Get(icon.Pause))
	case player.StatusBuffering:
		return b.spinnerC.View()
	case player.StatusEndOfStream:
		return style.Fg(style.StalledColor)(icon.Get(icon.Ended))
	default:
		return style.Faint(icon.Get(icon.Stop))
	}
}

func (b *statefulBubble) viewPosition() string {
	elapsed := b.app.Player.Elapsed().OrElse(0)
	duration, ok := b.duration()
	if !ok {
		return util.FormatDuration(elapsed)
	}

	fraction := util.Clamp(float64(elapsed)/float64(duration), 0, 1)
	timing := fmt.Sprintf("%s / %s", util.FormatDuration(elapsed), util.FormatDuration(duration))
	return b.positionC.ViewAs(fraction) + "\n" + style.Faint(timing)
}

func (b *statefulBubble) viewVolume() string {
	if b.app.Player.Muted {
		return style.Fg(color.Red)(icon.Get(icon.Muted) + " muted")
	}
	return fmt.Sprintf("%s %.0f%%", icon.Get(icon.Volume), b.app.Player.Volume*100)
}

// viewDownload is empty unless the current song is still being fetched.
func (b *statefulBubble) viewDownload(np playback.NowPlaying) string {
	if np.Resolved() {
		return ""
	}

	progress, ok := np.Download.Get()
	if !ok {
		return style.Faint(b.spinnerC.View() + " Resolving...")
	}

	label := fmt.Sprintf("%s %s / %s", icon.Get(icon.Download), humanize.Bytes(uint64(progress.Received)), humanize.Bytes(uint64(progress.Total)))
	if progress.Total <= 0 {
		label = fmt.Sprintf("%s %s", icon.Get(icon.Download), humanize.Bytes(uint64(progress.Received)))
	}

	return label + "\n" + b.downloadC.ViewAs(progress.Fraction())
}

func (b *statefulBubble) viewQueue() string {
	return listExtraPaddingStyle.Render(b.queueC.View())
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	var text string
	if b.lastError != nil {
		text = b.lastError.Error()
	}

	errorMsg := wrap.String(errorStyle.Render(text), b.width)
	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " An error occurred:",
			"",
			errorMsg,
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	l := strings.Join(lines, "\n")
	h := strings.Count(l, "\n") + 1
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
