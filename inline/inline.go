// Package inline implements the non-interactive play mode: the queue plays without a user
// interface and every transition is written as one line of text or JSON.
package inline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/sonora-player/sonora/log"
	"github.com/sonora-player/sonora/playback"
	"github.com/sonora-player/sonora/player"
)

const mailboxSize = 256

// Controls is the orchestrator surface the headless mode observes.
type Controls interface {
	GetState() playback.AppState
	Subscribe(fn playback.Listener) uuid.UUID
	Unsubscribe(id uuid.UUID) bool
}

// Run reports state transitions until the last queued track ends, the player dies or ctx is done.
func Run(ctx context.Context, controls Controls, options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	states := make(chan playback.AppState, mailboxSize)
	id := controls.Subscribe(func(s playback.AppState) {
		select {
		case states <- s:
		default:
			log.Debugf("inline: dropped state %d", s.Revision)
		}
	})
	defer controls.Unsubscribe(id)

	last := mo.None[Event]()
	report := func(s playback.AppState) error {
		e := eventOf(s)
		if prev, ok := last.Get(); ok && !changed(prev, e) {
			return nil
		}
		last = mo.Some(e)
		return write(options.Out, e, options.Json)
	}

	current := controls.GetState()
	if err := report(current); err != nil {
		return err
	}

	for {
		if finished(current) {
			return nil
		}
		if current.Unavailable {
			return fatal(current)
		}

		select {
		case <-ctx.Done():
			return nil
		case s := <-states:
			if s.Revision < current.Revision {
				continue
			}
			current = s
			if err := report(current); err != nil {
				return err
			}
		}
	}
}

// changed ignores position and download ticks that do not cross a visible boundary.
func changed(prev, next Event) bool {
	switch {
	case prev.Status != next.Status, prev.Position != next.Position, prev.Queued != next.Queued:
		return true
	case prev.Path != next.Path, prev.Error != next.Error:
		return true
	case prev.Muted != next.Muted, prev.Volume != next.Volume:
		return true
	case (prev.Download == nil) != (next.Download == nil):
		return true
	default:
		return false
	}
}

// finished reports the end of the last queued track, or its failure to load.
func finished(s playback.AppState) bool {
	position, ok := s.Queue.Position.Get()
	if !ok || position != len(s.Queue.Items)-1 {
		return false
	}
	if s.Player.Status == player.StatusEndOfStream {
		return true
	}

	np, ok := s.NowPlaying.Get()
	return ok && np.Position == position && np.Err != nil && !np.Resolved()
}

func fatal(s playback.AppState) error {
	if s.Fatal != nil {
		return s.Fatal
	}
	return playback.ErrUnavailable
}

func write(out io.Writer, e Event, asJSON bool) error {
	if asJSON {
		data, err := asJson(e)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	_, err := fmt.Fprintln(out, line(e))
	return err
}

func line(e Event) string {
	if e.Track == nil {
		return fmt.Sprintf("[%s] nothing playing, %d queued", e.Status, e.Queued)
	}

	title := e.Track.Title
	if e.Track.Artist != "" {
		title = e.Track.Artist + " - " + title
	}

	s := fmt.Sprintf("[%s] %d/%d %s", e.Status, e.Position+1, e.Queued, title)
	switch {
	case e.Error != "":
		s += " (error: " + e.Error + ")"
	case e.Download != nil:
		s += " (downloading)"
	}
	return s
}
