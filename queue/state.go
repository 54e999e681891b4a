package queue

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/sonora-player/sonora/track"
)

// Item is one queue entry.
type Item struct {
	Track track.Track

	// IsCurrent marks the item under the pointer.
	IsCurrent bool

	// IsUserQueued marks items added by "play next" or "play last".
	IsUserQueued bool
}

// State is an immutable snapshot of the queue.
type State struct {
	Items    []Item
	Position mo.Option[int]
	Revision uint64
}

// Current returns the item under the pointer.
func (s State) Current() mo.Option[Item] {
	i, ok := s.Position.Get()
	if !ok || i < 0 || i >= len(s.Items) {
		return mo.None[Item]()
	}
	return mo.Some(s.Items[i])
}

// Tracks returns the queued tracks in order.
func (s State) Tracks() []track.Track {
	return lo.Map(s.Items, func(item Item, _ int) track.Track {
		return item.Track
	})
}

func (s State) clone() State {
	items := make([]Item, len(s.Items))
	copy(items, s.Items)
	s.Items = items
	return s
}

// Intent names the track that should become the active source.
type Intent struct {
	Position int
	Track    track.Track

	// Revision is the queue revision that produced the intent. Later intents have higher revisions.
	Revision uint64
}

func (i Intent) String() string {
	return fmt.Sprintf("#%d %s", i.Position, i.Track)
}
