package cache

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/sonora-player/sonora/filesystem"
	"github.com/sonora-player/sonora/log"
	"github.com/sonora-player/sonora/network"
	"github.com/spf13/afero"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// DefaultConcurrency is the number of parallel fetches a cache allows when not configured.
const DefaultConcurrency = 2

const copyBufferSize = 32 * 1024

// Options configure one cache instance.
type Options struct {
	// Fs defaults to the shared filesystem backend.
	Fs afero.Fs
	// Client defaults to network.Client.
	Client *http.Client
	Root   string
	// Concurrency bounds parallel fetches, DefaultConcurrency when not positive.
	Concurrency int64
}

type fetchRequest struct {
	path         string
	url          string
	expectedSize int64
}

type watcher struct {
	id uint64
	fn ProgressFunc
}

// store implements the lookup, coalescing and atomic write shared by both caches.
// Keys are final paths, so coalescing is per server, kind and id.
type store struct {
	fs     afero.Afero
	client *http.Client
	root   string
	kind   Kind
	sem    *semaphore.Weighted
	group  singleflight.Group

	mu       sync.Mutex
	watchers map[string][]watcher
	nextID   uint64
}

func newStore(kind Kind, opts Options) *store {
	if opts.Fs == nil {
		opts.Fs = filesystem.API().Fs
	}
	if opts.Client == nil {
		opts.Client = network.Client
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	return &store{
		fs:       afero.Afero{Fs: opts.Fs},
		client:   opts.Client,
		root:     opts.Root,
		kind:     kind,
		sem:      semaphore.NewWeighted(opts.Concurrency),
		watchers: make(map[string][]watcher),
	}
}

// lookup reports a usable final file. Directories and empty files at the final path are removed.
func (s *store) lookup(path string) (Result, bool) {
	info, err := s.fs.Stat(path)
	if err != nil {
		return Result{}, false
	}
	if info.IsDir() || info.Size() == 0 {
		log.Warnf("cache: removing unusable entry %s", path)
		if err := s.fs.RemoveAll(path); err != nil {
			log.Warnf("cache: remove %s: %v", path, err)
		}
		return Result{}, false
	}
	return Result{Path: path, Hit: true, Size: info.Size()}, true
}

// get returns the entry for req, fetching it once for all concurrent callers. A caller whose ctx ends
// stops waiting but the shared fetch runs to completion for the others.
func (s *store) get(ctx context.Context, req fetchRequest, progress ProgressFunc) (Result, error) {
	if result, ok := s.lookup(req.path); ok {
		return result, nil
	}

	if progress != nil {
		defer s.watch(req.path, progress)()
	}

	ch := s.group.DoChan(req.path, func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx), req)
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return Result{}, r.Err
		}
		return r.Val.(Result), nil
	}
}

func (s *store) fetch(ctx context.Context, req fetchRequest) (Result, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return Result{}, &FetchError{Key: req.path, Err: err}
	}
	defer s.sem.Release(1)

	// written by a fetch that completed while this one waited for a permit
	if result, ok := s.lookup(req.path); ok {
		s.report(req.path, Progress{Total: result.Size, Received: result.Size})
		return result, nil
	}

	size, err := s.download(ctx, req)
	if err != nil {
		log.WithFields(log.Fields{"kind": s.kind, "path": req.path, "url": req.url}).Error(err)
		return Result{}, &FetchError{Key: req.path, Err: err}
	}

	log.WithFields(log.Fields{"kind": s.kind, "path": req.path, "size": size}).Debug("cache: stored")
	return Result{Path: req.path, Size: size}, nil
}

// download streams the body into a temporary sibling and renames it into place.
func (s *store) download(ctx context.Context, req fetchRequest) (int64, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, req.url, nil)
	if err != nil {
		return 0, err
	}

	response, err := s.client.Do(request)
	if err != nil {
		return 0, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %s", ErrBadStatus, response.Status)
	}
	if contentType := response.Header.Get("Content-Type"); !isMedia(contentType) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidContentType, contentType)
	}

	if err := s.fs.MkdirAll(filepath.Dir(req.path), os.ModePerm); err != nil {
		return 0, fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := req.path + tmpSuffix
	file, err := s.fs.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create temporary file: %w", err)
	}

	total := req.expectedSize
	if total <= 0 {
		total = response.ContentLength
	}

	written, err := s.copy(file, response.Body, req.path, total)
	closeErr := file.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("close temporary file: %w", closeErr)
	}
	if err == nil && written == 0 {
		err = ErrEmptyBody
	}
	if err == nil {
		if err = s.fs.Rename(tmpPath, req.path); err != nil {
			err = fmt.Errorf("rename into place: %w", err)
		}
	}
	if err != nil {
		_ = s.fs.Remove(tmpPath)
		return 0, err
	}

	s.report(req.path, Progress{Total: written, Received: written})
	return written, nil
}

func (s *store) copy(dst io.Writer, src io.Reader, key string, total int64) (int64, error) {
	buf := make([]byte, copyBufferSize)
	var written int64

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, fmt.Errorf("write temporary file: %w", err)
			}
			written += int64(n)
			total = max(total, written)
			s.report(key, Progress{Total: total, Received: written})
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, fmt.Errorf("read body: %w", readErr)
		}
	}
}

// watch registers fn for progress reports of key and returns its removal.
func (s *store) watch(key string, fn ProgressFunc) (unwatch func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.watchers[key] = append(s.watchers[key], watcher{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		remaining := lo.Reject(s.watchers[key], func(w watcher, _ int) bool {
			return w.id == id
		})
		if len(remaining) == 0 {
			delete(s.watchers, key)
			return
		}
		s.watchers[key] = remaining
	}
}

func (s *store) report(key string, p Progress) {
	s.mu.Lock()
	watchers := make([]watcher, len(s.watchers[key]))
	copy(watchers, s.watchers[key])
	s.mu.Unlock()

	for _, w := range watchers {
		w.fn(p)
	}
}

// isMedia rejects bodies that can only be an error page or an API error.
func isMedia(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	mediaType = strings.ToLower(mediaType)
	return !lo.SomeBy([]string{"xml", "html", "json"}, func(bad string) bool {
		return strings.Contains(mediaType, bad)
	})
}
