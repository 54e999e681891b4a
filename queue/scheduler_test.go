package queue

import (
	"fmt"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/sonora-player/sonora/track"
)

type fakeTransport struct {
	elapsed mo.Option[time.Duration]
	seeks   []time.Duration
}

func (f *fakeTransport) Elapsed() mo.Option[time.Duration] {
	return f.elapsed
}

func (f *fakeTransport) SeekTo(position time.Duration) error {
	f.seeks = append(f.seeks, position)
	return nil
}

func tracks(ids ...string) []track.Track {
	return lo.Map(ids, func(id string, _ int) track.Track {
		return track.Track{ID: id, Title: "Track " + id}
	})
}

func ids(s State) []string {
	return lo.Map(s.Items, func(item Item, _ int) string {
		return item.Track.ID
	})
}

func userQueued(s State) []string {
	return lo.FilterMap(s.Items, func(item Item, _ int) (string, bool) {
		return item.Track.ID, item.IsUserQueued
	})
}

func TestScheduler(t *testing.T) {
	Convey("Given a scheduler", t, func() {
		transport := &fakeTransport{}
		var intents []Intent
		var snapshots []State
		s := New(transport, func(i Intent) { intents = append(intents, i) }, Options{})
		s.Subscribe(func(state State) { snapshots = append(snapshots, state) })

		Convey("ReplaceQueue sets items and position for every valid start", func() {
			q := tracks("a", "b", "c")
			for p := range q {
				s.ReplaceQueue(q, mo.Some(p))
				state := s.State()
				So(state.Tracks(), ShouldResemble, q)
				So(state.Position, ShouldResemble, mo.Some(p))
				So(state.Current().MustGet().IsCurrent, ShouldBeTrue)
			}
			So(intents, ShouldBeEmpty)
		})

		Convey("ReplaceQueue always notifies", func() {
			s.ReplaceQueue(nil, mo.None[int]())
			s.ReplaceQueue(nil, mo.None[int]())
			So(snapshots, ShouldHaveLength, 2)
			So(snapshots[1].Revision, ShouldBeGreaterThan, snapshots[0].Revision)
		})

		Convey("ReplaceQueue with an invalid start leaves no pointer", func() {
			s.ReplaceQueue(tracks("a"), mo.Some(3))
			So(s.State().Position.IsAbsent(), ShouldBeTrue)
			So(s.State().Items, ShouldHaveLength, 1)
		})

		Convey("With a queue of three tracks at the first one", func() {
			s.ReplaceQueue(tracks("a", "b", "c"), mo.Some(0))

			Convey("PlayPosition emits an intent for that track", func() {
				s.PlayPosition(2)
				So(intents, ShouldHaveLength, 1)
				So(intents[0].Track.ID, ShouldEqual, "c")
				So(intents[0].Position, ShouldEqual, 2)
				So(s.State().Position.MustGet(), ShouldEqual, 2)
				So(s.State().Items[0].IsCurrent, ShouldBeFalse)
				So(s.State().Items[2].IsCurrent, ShouldBeTrue)
			})

			Convey("PlayPosition out of range is ignored", func() {
				s.PlayPosition(3)
				s.PlayPosition(-1)
				So(intents, ShouldBeEmpty)
				So(s.State().Position.MustGet(), ShouldEqual, 0)
			})

			Convey("AttemptPlayNext advances by one", func() {
				s.AttemptPlayNext()
				So(s.State().Position.MustGet(), ShouldEqual, 1)
				So(intents[0].Track.ID, ShouldEqual, "b")
			})

			Convey("AttemptPlayNext at the last index changes nothing", func() {
				s.PlayPosition(2)
				before := s.State()
				s.AttemptPlayNext()
				So(s.State().Position, ShouldResemble, before.Position)
				So(s.State().Revision, ShouldEqual, before.Revision)
				So(intents, ShouldHaveLength, 1)
			})

			Convey("OnEndOfStream advances like next", func() {
				s.OnEndOfStream()
				s.OnEndOfStream()
				s.OnEndOfStream()
				So(s.State().Position.MustGet(), ShouldEqual, 2)
				So(intents, ShouldHaveLength, 2)
			})

			Convey("Intents carry increasing revisions", func() {
				s.AttemptPlayNext()
				s.AttemptPlayNext()
				So(intents[1].Revision, ShouldBeGreaterThan, intents[0].Revision)
				So(intents[1].Revision, ShouldEqual, s.State().Revision)
			})

			Convey("AttemptPlayPrev", func() {
				s.PlayPosition(1)
				intents = nil

				Convey("restarts the current track after the threshold", func() {
					transport.elapsed = mo.Some(RestartThreshold)
					s.AttemptPlayPrev()
					So(transport.seeks, ShouldResemble, []time.Duration{0})
					So(s.State().Position.MustGet(), ShouldEqual, 1)
					So(intents, ShouldBeEmpty)
				})

				Convey("moves back before the threshold", func() {
					transport.elapsed = mo.Some(RestartThreshold - time.Millisecond)
					s.AttemptPlayPrev()
					So(transport.seeks, ShouldBeEmpty)
					So(s.State().Position.MustGet(), ShouldEqual, 0)
					So(intents[0].Track.ID, ShouldEqual, "a")
				})

				Convey("moves back when nothing was reported", func() {
					s.AttemptPlayPrev()
					So(s.State().Position.MustGet(), ShouldEqual, 0)
				})

				Convey("seeks to zero at the first position instead of underflowing", func() {
					s.AttemptPlayPrev()
					intents = nil
					transport.elapsed = mo.Some(time.Second)
					s.AttemptPlayPrev()
					So(transport.seeks, ShouldResemble, []time.Duration{0})
					So(s.State().Position.MustGet(), ShouldEqual, 0)
					So(intents, ShouldBeEmpty)
				})
			})

			Convey("Enqueue inserts right after the pointer", func() {
				s.Enqueue(track.Track{ID: "x"})
				state := s.State()
				So(ids(state), ShouldResemble, []string{"a", "x", "b", "c"})
				So(userQueued(state), ShouldResemble, []string{"x"})
				So(state.Position.MustGet(), ShouldEqual, 0)
				So(intents, ShouldBeEmpty)

				Convey("and a second Enqueue goes before the first", func() {
					s.Enqueue(track.Track{ID: "y"})
					So(ids(s.State()), ShouldResemble, []string{"a", "y", "x", "b", "c"})
					So(userQueued(s.State()), ShouldResemble, []string{"y", "x"})
				})

				Convey("and EnqueueLast goes after the user-queued run", func() {
					s.EnqueueLast(track.Track{ID: "z"})
					So(ids(s.State()), ShouldResemble, []string{"a", "x", "z", "b", "c"})
					So(userQueued(s.State()), ShouldResemble, []string{"x", "z"})
				})

				Convey("and playing the queued item clears its flag", func() {
					s.AttemptPlayNext()
					state := s.State()
					So(state.Current().MustGet().Track.ID, ShouldEqual, "x")
					So(state.Current().MustGet().IsUserQueued, ShouldBeFalse)
					So(userQueued(state), ShouldBeEmpty)
				})

				Convey("and jumping past the run demotes the skipped items", func() {
					s.PlayPosition(3)
					So(userQueued(s.State()), ShouldBeEmpty)
					So(ids(s.State()), ShouldResemble, []string{"a", "x", "b", "c"})
				})
			})

			Convey("EnqueueLast without user-queued items behaves like Enqueue", func() {
				s.EnqueueLast(track.Track{ID: "z"})
				viaLast := s.State()

				other := New(transport, nil, Options{})
				other.ReplaceQueue(tracks("a", "b", "c"), mo.Some(0))
				other.Enqueue(track.Track{ID: "z"})

				So(viaLast.Items, ShouldResemble, other.State().Items)
			})
		})

		Convey("Enqueue on a queue that never played inserts at the front", func() {
			s.ReplaceQueue(tracks("a"), mo.None[int]())
			s.Enqueue(track.Track{ID: "x"})
			So(ids(s.State()), ShouldResemble, []string{"x", "a"})
			So(s.State().Position.IsAbsent(), ShouldBeTrue)

			Convey("and next starts from the front", func() {
				s.AttemptPlayNext()
				So(intents[0].Track.ID, ShouldEqual, "x")
			})
		})

		Convey("A custom restart threshold is honored", func() {
			custom := New(transport, nil, Options{RestartThreshold: time.Second})
			custom.ReplaceQueue(tracks("a", "b"), mo.Some(1))
			transport.elapsed = mo.Some(2 * time.Second)
			custom.AttemptPlayPrev()
			So(transport.seeks, ShouldHaveLength, 1)
			So(custom.State().Position.MustGet(), ShouldEqual, 1)
		})

		Convey("Snapshots are not affected by later mutations", func() {
			s.ReplaceQueue(tracks("a", "b"), mo.Some(0))
			before := s.State()
			s.Enqueue(track.Track{ID: "x"})
			So(before.Items, ShouldHaveLength, 2)
		})

		Convey("Unsubscribed listeners stop receiving snapshots", func() {
			calls := 0
			unsubscribe := s.Subscribe(func(State) { calls++ })
			s.ReplaceQueue(tracks("a"), mo.None[int]())
			unsubscribe()
			s.ReplaceQueue(tracks("a"), mo.None[int]())
			So(calls, ShouldEqual, 1)
		})
	})
}

func TestIntentString(t *testing.T) {
	Convey("An intent renders its position and track", t, func() {
		i := Intent{Position: 3, Track: track.Track{Title: "Song", Artist: "Band"}}
		So(i.String(), ShouldEqual, fmt.Sprintf("#%d %s", 3, "Band - Song"))
	})
}
