package inline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/sonora-player/sonora/internal/cache"
	"github.com/sonora-player/sonora/playback"
	"github.com/sonora-player/sonora/player"
	"github.com/sonora-player/sonora/queue"
	"github.com/sonora-player/sonora/track"
)

type fakeControls struct {
	mu       sync.Mutex
	state    playback.AppState
	listener playback.Listener
	ready    chan struct{}
}

func newFakeControls(initial playback.AppState) *fakeControls {
	return &fakeControls{state: initial, ready: make(chan struct{})}
}

func (f *fakeControls) GetState() playback.AppState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeControls) Subscribe(fn playback.Listener) uuid.UUID {
	f.mu.Lock()
	f.listener = fn
	f.mu.Unlock()
	close(f.ready)
	return uuid.New()
}

func (f *fakeControls) Unsubscribe(uuid.UUID) bool { return true }

func (f *fakeControls) publish(s playback.AppState) {
	f.mu.Lock()
	f.state = s
	fn := f.listener
	f.mu.Unlock()
	fn(s)
}

var tracks = []track.Track{
	{ID: "1", Title: "Intro", Artist: "Band"},
	{ID: "2", Title: "Outro", Artist: "Band"},
}

func stateAt(revision uint64, position int, status player.Status) playback.AppState {
	items := make([]queue.Item, len(tracks))
	for i, t := range tracks {
		items[i] = queue.Item{Track: t, IsCurrent: i == position}
	}

	return playback.AppState{
		NowPlaying: mo.Some(playback.NowPlaying{
			Track:    tracks[position],
			Position: position,
			Cache:    mo.Some(cache.Result{Path: "/cache/" + tracks[position].ID + ".mp3"}),
		}),
		Player:   player.State{Status: status, Volume: 1},
		Queue:    queue.State{Items: items, Position: mo.Some(position), Revision: revision},
		Revision: revision,
	}
}

func TestRun(t *testing.T) {
	Convey("Given a queue of two tracks", t, func() {
		controls := newFakeControls(stateAt(1, 0, player.StatusPlaying))
		out := &bytes.Buffer{}
		done := make(chan error, 1)

		Convey("Text mode prints transitions until the last track ends", func() {
			go func() {
				done <- Run(context.Background(), controls, &Options{Out: out})
			}()
			<-controls.ready

			tick := stateAt(2, 0, player.StatusPlaying)
			tick.Player.Source = mo.Some(player.Source{Position: mo.Some(time.Second)})
			controls.publish(tick)
			controls.publish(stateAt(3, 1, player.StatusPlaying))
			controls.publish(stateAt(4, 1, player.StatusEndOfStream))

			So(<-done, ShouldBeNil)
			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			So(lines, ShouldResemble, []string{
				"[Playing] 1/2 Band - Intro",
				"[Playing] 2/2 Band - Outro",
				"[EndOfStream] 2/2 Band - Outro",
			})
		})

		Convey("A last track that cannot be downloaded ends the run", func() {
			go func() {
				done <- Run(context.Background(), controls, &Options{Out: out})
			}()
			<-controls.ready

			failed := stateAt(2, 1, player.StatusInit)
			np := failed.NowPlaying.MustGet()
			np.Cache = mo.None[cache.Result]()
			np.Err = cache.ErrBadStatus
			failed.NowPlaying = mo.Some(np)
			controls.publish(failed)

			So(<-done, ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "2/2 Band - Outro (error: "+cache.ErrBadStatus.Error()+")")
		})

		Convey("A failure before the last track keeps the run going", func() {
			ctx, cancel := context.WithCancel(context.Background())
			go func() {
				done <- Run(ctx, controls, &Options{Out: out})
			}()
			<-controls.ready

			failed := stateAt(2, 0, player.StatusInit)
			np := failed.NowPlaying.MustGet()
			np.Cache = mo.None[cache.Result]()
			np.Err = cache.ErrBadStatus
			failed.NowPlaying = mo.Some(np)
			controls.publish(failed)

			select {
			case <-done:
				So("run ended", ShouldBeEmpty)
			case <-time.After(50 * time.Millisecond):
			}
			cancel()
			So(<-done, ShouldBeNil)
		})

		Convey("JSON mode writes one event per line", func() {
			go func() {
				done <- Run(context.Background(), controls, &Options{Out: out, Json: true})
			}()
			<-controls.ready
			controls.publish(stateAt(2, 1, player.StatusEndOfStream))
			So(<-done, ShouldBeNil)

			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			So(lines, ShouldHaveLength, 2)

			var e Event
			So(json.Unmarshal([]byte(lines[1]), &e), ShouldBeNil)
			So(e.Status, ShouldEqual, "EndOfStream")
			So(e.Position, ShouldEqual, 1)
			So(e.Track.ID, ShouldEqual, "2")
			So(e.Path, ShouldEqual, "/cache/2.mp3")
		})

		Convey("A dead player ends the run with its error", func() {
			go func() {
				done <- Run(context.Background(), controls, &Options{Out: out})
			}()
			<-controls.ready

			dead := stateAt(2, 0, player.StatusPlaying)
			dead.Unavailable = true
			dead.Fatal = errors.New("mpv exited")
			controls.publish(dead)

			So(<-done, ShouldBeError, "mpv exited")
			So(out.String(), ShouldContainSubstring, "(error: mpv exited)")
		})

		Convey("Cancelling the context stops the run", func() {
			ctx, cancel := context.WithCancel(context.Background())
			go func() {
				done <- Run(ctx, controls, &Options{Out: out})
			}()
			<-controls.ready
			cancel()
			So(<-done, ShouldBeNil)
		})
	})
}

func TestParseStart(t *testing.T) {
	Convey("ParseStart resolves selectors", t, func() {
		cases := map[string]int{"": 0, "first": 0, "last": 1, "2": 1, "@outro@": 1, "@BAND@": 0}
		for description, want := range cases {
			got, err := ParseStart(description, tracks)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
		}

		for _, bad := range []string{"0", "3", "x", "@nope@"} {
			_, err := ParseStart(bad, tracks)
			So(err, ShouldNotBeNil)
		}

		_, err := ParseStart("first", nil)
		So(err, ShouldNotBeNil)
	})
}
