// Package track defines the catalog track model shared by the queue, the caches and the orchestrator.
package track

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Track is one playable item from the catalog server or the local disk.
type Track struct {
	ID       string        `json:"id"`
	ServerID string        `json:"server_id"`
	Title    string        `json:"title"`
	Artist   string        `json:"artist"`
	Album    string        `json:"album"`
	Duration time.Duration `json:"duration"`

	// URI is either a file: URI or an http(s) stream URL.
	URI string `json:"uri"`

	// Suffix is the file extension used when the track is cached.
	Suffix string `json:"suffix"`

	// Size is the expected byte size of the stream, 0 when unknown.
	Size int64 `json:"size"`

	CoverArtID  string `json:"cover_art_id"`
	CoverArtURL string `json:"cover_art_url"`
}

func (t Track) String() string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}

// IsLocal reports whether the track is read directly from disk and bypasses the cache.
func (t Track) IsLocal() bool {
	return strings.HasPrefix(strings.ToLower(t.URI), "file:")
}

// LocalPath returns the filesystem path of a file: track.
func (t Track) LocalPath() string {
	u, err := url.Parse(t.URI)
	if err != nil || u.Path == "" {
		return strings.TrimPrefix(t.URI, "file:")
	}
	return u.Path
}

// FromArg builds a track from a command line argument, which may be a stream URL or a local path.
// Remote tracks take their id from an "id" query parameter when present, otherwise from a hash of the URL.
func FromArg(serverID, arg string) Track {
	if u, err := url.Parse(arg); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		id := u.Query().Get("id")
		if id == "" {
			sum := sha256.Sum256([]byte(arg))
			id = hex.EncodeToString(sum[:8])
		}
		suffix := strings.TrimPrefix(filepath.Ext(u.Path), ".")
		if suffix == "" {
			suffix = u.Query().Get("format")
		}
		if suffix == "" {
			suffix = "mp3"
		}
		t := Track{
			ID:       id,
			ServerID: serverID,
			Title:    filepath.Base(u.Path),
			URI:      arg,
			Suffix:   suffix,
		}
		if cover, ok := coverArtURL(u, id); ok {
			t.CoverArtID = id
			t.CoverArtURL = cover
		}
		return t
	}

	abs, err := filepath.Abs(arg)
	if err != nil {
		abs = arg
	}
	return Track{
		ID:     abs,
		Title:  strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)),
		URI:    (&url.URL{Scheme: "file", Path: abs}).String(),
		Suffix: strings.TrimPrefix(filepath.Ext(abs), "."),
	}
}

// coverArtURL derives the cover art endpoint of a Subsonic style stream URL, keeping its query
// since it carries the credentials.
func coverArtURL(stream *url.URL, id string) (string, bool) {
	dir, endpoint := path.Split(stream.Path)
	if !strings.HasSuffix(dir, "/rest/") {
		return "", false
	}

	var cover string
	switch endpoint {
	case "stream", "download":
		cover = "getCoverArt"
	case "stream.view", "download.view":
		cover = "getCoverArt.view"
	default:
		return "", false
	}

	u := *stream
	u.Path = dir + cover
	query := u.Query()
	query.Del("format")
	query.Del("maxBitRate")
	query.Set("id", id)
	u.RawQuery = query.Encode()
	return u.String(), true
}
