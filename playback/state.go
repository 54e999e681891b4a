package playback

import (
	"github.com/samber/mo"
	"github.com/sonora-player/sonora/internal/cache"
	"github.com/sonora-player/sonora/player"
	"github.com/sonora-player/sonora/queue"
	"github.com/sonora-player/sonora/track"
)

// NowPlaying describes the track the queue last asked for.
type NowPlaying struct {
	Track    track.Track
	Position int

	// Cache is set once the track is resolved to a local file.
	Cache mo.Option[cache.Result]

	// Download is the latest transfer progress while the song is fetched.
	Download mo.Option[cache.Progress]

	// CoverArt is the path of the cached cover art image.
	CoverArt mo.Option[string]

	// Err is the last resolution failure of this track.
	Err error

	intent uint64
}

// Resolved reports whether the track was handed to the player.
func (n NowPlaying) Resolved() bool {
	return n.Cache.IsPresent()
}

// AppState is the single snapshot published to listeners. It is replaced as a whole on every change.
type AppState struct {
	NowPlaying mo.Option[NowPlaying]
	Player     player.State
	Queue      queue.State

	// Unavailable is set once the player loop has died. Commands then fail with ErrUnavailable.
	Unavailable bool
	Fatal       error

	Revision uint64
}
