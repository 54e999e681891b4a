package tui

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/sonora-player/sonora/internal/ui"
	"github.com/sonora-player/sonora/playback"
	"github.com/sonora-player/sonora/player"
	"github.com/sonora-player/sonora/queue"
	"github.com/sonora-player/sonora/track"
)

type fakeControls struct {
	mu    sync.Mutex
	state playback.AppState
	calls []string
	err   error
}

func (f *fakeControls) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeControls) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeControls) GetState() playback.AppState { return f.state }
func (f *fakeControls) Subscribe(playback.Listener) uuid.UUID { return uuid.New() }
func (f *fakeControls) Unsubscribe(uuid.UUID) bool { return true }
func (f *fakeControls) PlayPause() error { return f.record("playpause") }
func (f *fakeControls) Next() error { return f.record("next") }
func (f *fakeControls) Prev() error { return f.record("prev") }
func (f *fakeControls) Mute() error { return f.record("mute") }
func (f *fakeControls) Unmute() error { return f.record("unmute") }
func (f *fakeControls) SeekTo(p time.Duration) error { return f.record("seek:" + p.String()) }
func (f *fakeControls) SetVolume(v float64) error { return f.record(fmt.Sprintf("volume:%.2f", v)) }
func (f *fakeControls) PlayPosition(i int) error { return f.record(fmt.Sprintf("position:%d", i)) }

// drain runs cmd and every command batched inside it, collecting the produced messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, drain(c)...)
		}
		return msgs
	}

	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(b *statefulBubble, msg tea.Msg) []tea.Msg {
	_, cmd := b.Update(msg)
	return drain(cmd)
}

func playingState() playback.AppState {
	tracks := []track.Track{
		{ID: "1", Title: "Intro", Artist: "Band", Album: "First", Duration: 3 * time.Minute},
		{ID: "2", Title: "Second Song", Artist: "Band"},
		{ID: "3", Title: "Outro", Artist: "Other"},
	}

	items := make([]queue.Item, len(tracks))
	for i, t := range tracks {
		items[i] = queue.Item{Track: t, IsCurrent: i == 0}
	}

	return playback.AppState{
		NowPlaying: mo.Some(playback.NowPlaying{Track: tracks[0]}),
		Player: player.State{
			Status: player.StatusPlaying,
			Volume: 0.5,
			Source: mo.Some(player.Source{
				URI:      "file:///cache/1.mp3",
				Position: mo.Some(2*time.Minute + 55*time.Second),
				Duration: mo.Some(3 * time.Minute),
			}),
		},
		Queue:    queue.State{Items: items, Position: mo.Some(0), Revision: 1},
		Revision: 5,
	}
}

func TestBubble(t *testing.T) {
	Convey("Given a bubble over a playing queue", t, func() {
		controls := &fakeControls{state: playingState()}
		b := newBubble(controls, &Options{SeekStep: 10 * time.Second, VolumeStep: 0.05})
		b.resize(80, 24)

		So(b.state, ShouldEqual, nowPlayingState)
		So(b.queueC.Items(), ShouldHaveLength, 3)

		Convey("It renders the current track", func() {
			view := b.View()
			So(view, ShouldContainSubstring, "Intro")
			So(view, ShouldContainSubstring, "Band • First")
			So(view, ShouldContainSubstring, "2:55 / 3:00")
			So(view, ShouldContainSubstring, "Track 1 of 3")
		})

		Convey("Transport keys call the controls", func() {
			press(b, tea.KeyMsg{Type: tea.KeySpace})
			press(b, runes("n"))
			press(b, runes("p"))
			press(b, runes("m"))
			So(controls.Calls(), ShouldResemble, []string{"playpause", "next", "prev", "mute"})
		})

		Convey("Seeking forward stops at the end of the track", func() {
			press(b, tea.KeyMsg{Type: tea.KeyRight})
			So(controls.Calls(), ShouldResemble, []string{"seek:3m0s"})
		})

		Convey("Seeking backward is relative to the last position", func() {
			press(b, tea.KeyMsg{Type: tea.KeyLeft})
			So(controls.Calls(), ShouldResemble, []string{"seek:2m45s"})
		})

		Convey("Volume keys step the linear volume and notify", func() {
			msgs := press(b, runes("+"))
			So(controls.Calls(), ShouldResemble, []string{"volume:0.55"})
			So(msgs, ShouldHaveLength, 1)
			notification, ok := msgs[0].(ui.NotificationMsg)
			So(ok, ShouldBeTrue)
			So(string(notification), ShouldEndWith, "55%")
		})

		Convey("Opening missing cover art only notifies", func() {
			msgs := press(b, runes("o"))
			So(msgs, ShouldResemble, []tea.Msg{ui.NotificationMsg("No cover art")})
			So(controls.Calls(), ShouldBeEmpty)
		})

		Convey("A failing command becomes a notification", func() {
			controls.err = playback.ErrUnavailable
			msgs := press(b, runes("n"))
			So(msgs, ShouldHaveLength, 1)
			So(fmt.Sprint(msgs[0]), ShouldContainSubstring, "next failed: playback unavailable")
		})

		Convey("Older snapshots are dropped", func() {
			older := playingState()
			older.Revision = 4
			older.Player.Volume = 0.1
			press(b, stateMsg(older))
			So(b.app.Player.Volume, ShouldEqual, 0.5)

			newer := playingState()
			newer.Revision = 6
			newer.Player.Volume = 0.9
			press(b, stateMsg(newer))
			So(b.app.Player.Volume, ShouldEqual, 0.9)
		})

		Convey("Queue changes refresh the list", func() {
			next := playingState()
			next.Revision = 6
			next.Queue.Revision = 2
			next.Queue.Items = next.Queue.Items[:2]
			press(b, stateMsg(next))
			So(b.queueC.Items(), ShouldHaveLength, 2)
		})

		Convey("A dead player switches to the error view", func() {
			dead := playingState()
			dead.Revision = 6
			dead.Unavailable = true
			dead.Fatal = errors.New("mpv exited")
			press(b, stateMsg(dead))
			So(b.state, ShouldEqual, errorState)
			So(b.View(), ShouldContainSubstring, "mpv exited")

			Convey("and stays there", func() {
				press(b, tea.KeyMsg{Type: tea.KeyEsc})
				So(b.state, ShouldEqual, errorState)
			})
		})

		Convey("The queue view plays the selected item", func() {
			press(b, tea.KeyMsg{Type: tea.KeyTab})
			So(b.state, ShouldEqual, queueState)
			So(b.queueC.Index(), ShouldEqual, 0)

			press(b, tea.KeyMsg{Type: tea.KeyDown})
			press(b, tea.KeyMsg{Type: tea.KeyEnter})
			So(controls.Calls(), ShouldResemble, []string{"position:1"})
			So(b.state, ShouldEqual, nowPlayingState)
		})

		Convey("Escape leaves the queue view", func() {
			press(b, tea.KeyMsg{Type: tea.KeyTab})
			press(b, tea.KeyMsg{Type: tea.KeyEsc})
			So(b.state, ShouldEqual, nowPlayingState)
		})
	})

	Convey("Given nothing playing", t, func() {
		b := newBubble(&fakeControls{}, &Options{})

		Convey("It uses the default steps", func() {
			So(b.options.SeekStep, ShouldEqual, defaultSeekStep)
			So(b.options.VolumeStep, ShouldEqual, defaultVolumeStep)
		})

		Convey("It says so", func() {
			So(b.View(), ShouldContainSubstring, "Nothing is playing")
		})

		Convey("Seeking without a position is a no-op", func() {
			So(press(b, tea.KeyMsg{Type: tea.KeyRight}), ShouldBeEmpty)
		})
	})
}

func TestFuzzyFilter(t *testing.T) {
	Convey("Fuzzy filter keeps matches, closest first", t, func() {
		ranks := fuzzyFilter("intro", []string{"Outro Other", "Intro Band First", "Introduction Long Name"})
		So(ranks, ShouldHaveLength, 2)
		So(ranks[0].Index, ShouldEqual, 1)
		So(ranks[1].Index, ShouldEqual, 2)
	})
}
