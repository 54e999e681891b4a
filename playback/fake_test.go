package playback

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/sonora-player/sonora/internal/cache"
	"github.com/sonora-player/sonora/player"
)

// fakePlayer records commands and lets tests publish player states.
type fakePlayer struct {
	mu        sync.Mutex
	state     player.State
	calls     []string
	listeners map[int]player.Listener
	nextID    int
	done      chan struct{}
	doneOnce  sync.Once
	err       error
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{
		state:     player.State{Volume: 1},
		listeners: make(map[int]player.Listener),
		done:      make(chan struct{}),
	}
}

func (f *fakePlayer) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakePlayer) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Sources returns the uris handed to SetSource, in order.
func (f *fakePlayer) Sources() []string {
	return lo.FilterMap(f.Calls(), func(call string, _ int) (string, bool) {
		return strings.TrimPrefix(call, "source:"), strings.HasPrefix(call, "source:")
	})
}

func (f *fakePlayer) emit(mutate func(*player.State)) {
	f.mu.Lock()
	mutate(&f.state)
	f.state.Revision++
	state := f.state
	listeners := lo.Values(f.listeners)
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

func (f *fakePlayer) die(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
	f.doneOnce.Do(func() { close(f.done) })
}

func (f *fakePlayer) State() player.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakePlayer) Elapsed() mo.Option[time.Duration] {
	return f.State().Elapsed()
}

func (f *fakePlayer) Subscribe(fn player.Listener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

func (f *fakePlayer) Done() <-chan struct{} { return f.done }

func (f *fakePlayer) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakePlayer) SetSource(uri string, _ bool) error {
	f.record("source:" + uri)
	return nil
}

func (f *fakePlayer) Play() error {
	f.record("play")
	return nil
}

func (f *fakePlayer) Pause() error {
	f.record("pause")
	return nil
}

func (f *fakePlayer) SeekTo(position time.Duration) error {
	f.record(fmt.Sprintf("seek:%s", position))
	return nil
}

func (f *fakePlayer) SetVolume(linear float64) error {
	f.record(fmt.Sprintf("volume:%.2f", linear))
	return nil
}

func (f *fakePlayer) SetMute(muted bool) error {
	f.record(fmt.Sprintf("mute:%t", muted))
	return nil
}

func (f *fakePlayer) Quit() error {
	f.record("quit")
	f.die(nil)
	return nil
}

// gatedSongs blocks every Get on the gate of its song id.
type gatedSongs struct {
	mu    sync.Mutex
	gates map[string]chan error
}

func newGatedSongs() *gatedSongs {
	return &gatedSongs{gates: make(map[string]chan error)}
}

func (g *gatedSongs) gate(id string) chan error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.gates[id]; !ok {
		g.gates[id] = make(chan error, 1)
	}
	return g.gates[id]
}

func (g *gatedSongs) Get(ctx context.Context, req cache.SongRequest, _ cache.ProgressFunc) (cache.Result, error) {
	select {
	case <-ctx.Done():
		return cache.Result{}, ctx.Err()
	case err := <-g.gate(req.ID):
		if err != nil {
			return cache.Result{}, err
		}
		return cache.Result{Path: "/cache/" + req.ID + "." + req.Suffix}, nil
	}
}

type fakeThumbnails struct{}

func (fakeThumbnails) Load(_ context.Context, req cache.ThumbnailRequest) (string, error) {
	return "/thumbs/" + req.ID + ".jpg", nil
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
