package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sonora-player/sonora/internal/ui"
	"github.com/sonora-player/sonora/playback"
	"github.com/sonora-player/sonora/style"
	"github.com/sonora-player/sonora/util"
)

const (
	defaultSeekStep   = 10 * time.Second
	defaultVolumeStep = 0.05
)

// statefulBubble holds the view state. The published AppState is only read here, every
// change goes through Controls.
type statefulBubble struct {
	state    state
	previous state

	keymap   *statefulKeymap
	controls Controls

	app           playback.AppState
	queueRevision uint64

	// components
	queueC    list.Model
	positionC progress.Model
	downloadC progress.Model
	spinnerC  spinner.Model
	helpC     help.Model

	lastError     error
	width, height int
	notifier      *ui.Model

	options *Options
}

// raiseError dispatches a terminal error and transitions the application to the failure view.
func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

// setState performs a synchronous transition of both the application workflow and its associated keymap.
func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState transitions to s and remembers the state it came from.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	b.previous = b.state
	b.setState(s)
}

// previousState restores the state the last transition came from.
func (b *statefulBubble) previousState() {
	s := b.previous
	if s == errorState || s == b.state {
		s = nowPlayingState
	}
	b.previous = b.state
	b.setState(s)
}

// resize propagates terminal dimension changes to all child component models.
func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	styledWidth := width - x
	styledHeight := height - y

	listWidth := width - xx
	listHeight := height - yy

	b.queueC.SetSize(listWidth, listHeight)
	b.queueC.Help.Width = listWidth

	b.positionC.Width = styledWidth
	b.downloadC.Width = styledWidth

	b.width = styledWidth
	b.height = styledHeight
	b.helpC.Width = listWidth
}

// setApp stores a newer published state and refreshes the queue items when the queue changed.
func (b *statefulBubble) setApp(app playback.AppState) tea.Cmd {
	b.app = app

	if app.Queue.Revision == b.queueRevision && len(b.queueC.Items()) == len(app.Queue.Items) {
		return nil
	}

	b.queueRevision = app.Queue.Revision
	return b.queueC.SetItems(queueItems(app.Queue))
}

func newBubble(controls Controls, options *Options) *statefulBubble {
	if options.SeekStep <= 0 {
		options.SeekStep = defaultSeekStep
	}
	if options.VolumeStep <= 0 {
		options.VolumeStep = defaultVolumeStep
	}

	keymap := newStatefulKeymap()
	bubble := statefulBubble{
		keymap:   keymap,
		controls: controls,
		notifier: &ui.Model{},
		options:  options,
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(style.AccentColor).
		Foreground(style.AccentColor).
		Padding(0, 0, 0, 1)
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("7"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

	bubble.queueC = list.New([]list.Item{}, delegate, 0, 0)
	bubble.queueC.KeyMap = keymap.forList()
	bubble.queueC.AdditionalShortHelpKeys = keymap.ShortHelp
	bubble.queueC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
		return keymap.FullHelp()[0]
	}
	bubble.queueC.Title = "Queue"
	bubble.queueC.Styles.Title = lipgloss.NewStyle().Foreground(style.Base).Background(style.QueuedColor).Padding(0, 1)
	bubble.queueC.Styles.NoItems = paddingStyle
	bubble.queueC.Filter = fuzzyFilter
	bubble.queueC.SetStatusBarItemName("track", "tracks")
	bubble.queueC.SetShowPagination(false)

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bubble.positionC = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bubble.downloadC = progress.New(progress.WithSolidFill(string(style.DownloadColor)))

	bubble.setApp(controls.GetState())

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return &bubble
}
