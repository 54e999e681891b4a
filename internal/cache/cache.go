// Package cache stores song and thumbnail bytes fetched from the catalog server on disk.
//
// Entries live at a sharded path derived from their id and are written to a temporary sibling first,
// then renamed into place, so a final path never holds a partial artifact. Concurrent requests for the
// same entry share one fetch and every cache instance bounds its number of parallel fetches.
// Entries are never expired.
package cache

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
)

var (
	// ErrBadStatus is returned when the server answers with a non-200 status.
	ErrBadStatus = errors.New("unexpected response status")

	// ErrInvalidContentType is returned for xml, html and json bodies, which are server errors rather than media.
	ErrInvalidContentType = errors.New("invalid content type")

	// ErrEmptyBody is returned when the server sends no bytes.
	ErrEmptyBody = errors.New("empty response body")
)

// FetchError is shared by every waiter of a failed fetch.
type FetchError struct {
	Key string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Result locates a cached entry.
type Result struct {
	Path string

	// Hit is true when the entry was already on disk and nothing was fetched.
	Hit bool

	Size int64
}

// URI returns the file: URI of the entry, suitable for a pipeline source.
func (r Result) URI() string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(r.Path)}).String()
}

// Progress reports a running transfer. Total is an estimate that grows when Received exceeds it;
// the final report always has Total == Received.
type Progress struct {
	Total    int64
	Received int64
}

// Done reports whether this is the final report of a successful transfer.
func (p Progress) Done() bool {
	return p.Total > 0 && p.Total == p.Received
}

// Fraction returns Received/Total in [0, 1], or 0 while the total is unknown.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Received) / float64(p.Total)
}

// ProgressFunc receives transfer progress on the fetching goroutine.
type ProgressFunc func(Progress)
