package cache

import (
	"context"

	"github.com/sonora-player/sonora/track"
)

// SongRequest identifies one song on one server and where to stream it from.
type SongRequest struct {
	ServerID string
	ID       string
	URL      string
	Suffix   string

	// ExpectedSize seeds the progress estimate, 0 when unknown.
	ExpectedSize int64
}

// SongRequestFor builds the request for a remote track.
func SongRequestFor(t track.Track) SongRequest {
	return SongRequest{
		ServerID:     t.ServerID,
		ID:           t.ID,
		URL:          t.URI,
		Suffix:       t.Suffix,
		ExpectedSize: t.Size,
	}
}

// SongCache holds audio files.
type SongCache struct {
	store *store
}

func NewSongCache(opts Options) *SongCache {
	return &SongCache{store: newStore(KindSongs, opts)}
}

// Path returns where the song is or would be stored.
func (c *SongCache) Path(req SongRequest) string {
	return Path(c.store.root, req.ServerID, KindSongs, req.ID, req.Suffix)
}

// Cached reports whether the song is on disk without fetching it.
func (c *SongCache) Cached(req SongRequest) bool {
	_, ok := c.store.lookup(c.Path(req))
	return ok
}

// Get returns the cached song, downloading it first when missing. progress, which may be nil,
// receives the transfer progress of the download this call waits on.
func (c *SongCache) Get(ctx context.Context, req SongRequest, progress ProgressFunc) (Result, error) {
	return c.store.get(ctx, fetchRequest{
		path:         c.Path(req),
		url:          req.URL,
		expectedSize: req.ExpectedSize,
	}, progress)
}
