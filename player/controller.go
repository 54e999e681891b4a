// Package player drives one media pipeline and republishes its bus messages as a typed player state.
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/mo"
	"github.com/sonora-player/sonora/log"
	"github.com/sonora-player/sonora/pipeline"
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultQuitTimeout  = 2 * time.Second
)

var (
	// ErrStopped is returned by commands issued after the run loop has ended.
	ErrStopped = errors.New("player loop is not running")

	// ErrQuitTimeout is returned by Quit when the run loop did not stop in time.
	ErrQuitTimeout = errors.New("timed out waiting for the player loop to stop")
)

// FatalError wraps the pipeline error that terminated the run loop.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("playback unavailable: %v", e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Listener receives every committed state snapshot.
type Listener func(State)

// Options tune the controller.
type Options struct {
	// PollInterval is the position polling period while playing.
	PollInterval time.Duration
	// QuitTimeout bounds how long Quit waits for the run loop.
	QuitTimeout time.Duration
	// Now is the clock used for PlaybackStartedAt.
	Now func() time.Time
}

type listenerEntry struct {
	id uint64
	fn Listener
}

// Controller owns one pipeline. All state mutations go through update, listeners are called
// synchronously after each commit, in registration order, on the goroutine that produced the change.
type Controller struct {
	pipe pipeline.Pipeline
	opts Options

	mu     sync.Mutex
	state  State
	resume Status // status to restore when buffering completes

	listenersMu sync.RWMutex
	listeners   []listenerEntry
	nextID      uint64

	done     chan struct{}
	quit     chan struct{}
	quitOnce sync.Once
	quitErr  error

	errMu sync.Mutex
	err   error
}

// New takes ownership of pipe and starts the run loop and the position poller.
func New(pipe pipeline.Pipeline, opts Options) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.QuitTimeout <= 0 {
		opts.QuitTimeout = DefaultQuitTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Controller{
		pipe: pipe,
		opts: opts,
		done: make(chan struct{}),
		quit: make(chan struct{}),
	}

	c.state.Volume = 1
	if v, err := pipe.Volume(); err == nil {
		c.state.Volume = CubicToLinearVolume(v)
	}
	if muted, err := pipe.Mute(); err == nil {
		c.state.Muted = muted
	}

	go c.run()
	go c.poll()
	return c
}

// State returns the latest committed snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Elapsed returns the last reported position of the current source.
func (c *Controller) Elapsed() mo.Option[time.Duration] {
	return c.State().Elapsed()
}

// Subscribe registers fn and returns a function removing it again.
func (c *Controller) Subscribe(fn Listener) (unsubscribe func()) {
	c.listenersMu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners = append(c.listeners, listenerEntry{id: id, fn: fn})
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		for i, l := range c.listeners {
			if l.id == id {
				c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// Done is closed when the run loop has ended.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Alive reports whether the run loop is still processing pipeline messages.
func (c *Controller) Alive() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Err returns the *FatalError that ended the run loop, if any.
func (c *Controller) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

// SetSource replaces the pipeline's source and starts it paused or playing.
func (c *Controller) SetSource(uri string, startPlaying bool) error {
	if !c.Alive() {
		return ErrStopped
	}

	if err := c.pipe.SetState(pipeline.StateNull); err != nil {
		return fmt.Errorf("reset pipeline: %w", err)
	}
	if err := c.pipe.SetURI(uri); err != nil {
		return fmt.Errorf("set uri: %w", err)
	}

	c.update(func(s *State) bool {
		s.Status = StatusInit
		s.PlaybackStartedAt = mo.None[time.Time]()
		s.Source = mo.Some(Source{URI: uri})
		return true
	})

	target := pipeline.StatePaused
	if startPlaying {
		target = pipeline.StatePlaying
	}
	if err := c.pipe.SetState(target); err != nil {
		return fmt.Errorf("start source: %w", err)
	}
	return nil
}

// Play resumes playback. A stream that reached its end is rewound first, since the pipeline
// will not leave end-of-stream otherwise.
func (c *Controller) Play() error {
	if !c.Alive() {
		return ErrStopped
	}

	if c.State().Status == StatusEndOfStream {
		if err := c.pipe.Seek(0, pipeline.SeekFlush|pipeline.SeekAccurate); err != nil {
			return fmt.Errorf("rewind: %w", err)
		}
		c.setPosition(0)
	}
	return c.pipe.SetState(pipeline.StatePlaying)
}

func (c *Controller) Pause() error {
	if !c.Alive() {
		return ErrStopped
	}
	return c.pipe.SetState(pipeline.StatePaused)
}

// SeekTo moves the playback position. The new position is reported right away.
func (c *Controller) SeekTo(position time.Duration) error {
	if !c.Alive() {
		return ErrStopped
	}
	if position < 0 {
		position = 0
	}

	if err := c.pipe.Seek(position, pipeline.SeekFlush|pipeline.SeekAccurate); err != nil {
		return err
	}
	c.setPosition(position)
	return nil
}

// SetVolume sets a linear 0..1 volume. State follows once the pipeline reports the change.
func (c *Controller) SetVolume(linear float64) error {
	if !c.Alive() {
		return ErrStopped
	}
	return c.pipe.SetVolume(ToVolumeCubic(linear))
}

func (c *Controller) SetMute(muted bool) error {
	if !c.Alive() {
		return ErrStopped
	}
	return c.pipe.SetMute(muted)
}

// WaitUntilReady blocks until the pipeline has finished its pending state transition.
// Seeks issued before that may be ignored by the pipeline.
func (c *Controller) WaitUntilReady(ctx context.Context) error {
	if !c.Alive() {
		return ErrStopped
	}
	return c.pipe.WaitAsync(ctx)
}

// Quit stops the pipeline and joins the run loop, waiting at most QuitTimeout. It is idempotent.
func (c *Controller) Quit() error {
	c.quitOnce.Do(func() {
		close(c.quit)

		if err := c.pipe.SetState(pipeline.StateNull); err != nil {
			log.Debugf("player: reset on quit: %v", err)
		}
		if err := c.pipe.Close(); err != nil {
			log.Warnf("player: close pipeline: %v", err)
		}

		select {
		case <-c.done:
		case <-time.After(c.opts.QuitTimeout):
			c.quitErr = ErrQuitTimeout
		}
	})
	return c.quitErr
}

func (c *Controller) run() {
	defer close(c.done)

	bus := c.pipe.Bus()
	for {
		select {
		case <-c.quit:
			return
		case msg, ok := <-bus:
			if !ok {
				log.Info("player: pipeline bus closed")
				return
			}
			if !c.handle(msg) {
				return
			}
		}
	}
}

// handle applies one bus message. It returns false when the loop must end.
func (c *Controller) handle(msg pipeline.Message) bool {
	switch m := msg.(type) {
	case pipeline.EOS:
		c.update(func(s *State) bool {
			s.Status = StatusEndOfStream
			return true
		})
		if err := c.pipe.SetState(pipeline.StatePaused); err != nil {
			log.Warnf("player: pause after end of stream: %v", err)
		}
	case pipeline.Error:
		fatal := &FatalError{Err: m.Err}
		c.errMu.Lock()
		c.err = fatal
		c.errMu.Unlock()
		log.Error(fatal)
		return false
	case pipeline.StateChanged:
		if m.Source != c.pipe.Name() {
			return true
		}
		c.applyPipelineState(m.New)
	case pipeline.Buffering:
		c.update(func(s *State) bool {
			if m.Percent < 100 {
				if s.Status == StatusBuffering {
					return false
				}
				c.resume = s.Status
				s.Status = StatusBuffering
				return true
			}
			if s.Status != StatusBuffering {
				return false
			}
			s.Status = c.resume
			return true
		})
		c.refresh()
	case pipeline.StreamStart, pipeline.DurationChanged, pipeline.AsyncDone:
		c.refresh()
	case pipeline.VolumeChanged:
		c.update(func(s *State) bool {
			s.Volume = CubicToLinearVolume(m.Volume)
			return true
		})
	case pipeline.MuteChanged:
		c.update(func(s *State) bool {
			if s.Muted == m.Muted {
				return false
			}
			s.Muted = m.Muted
			return true
		})
	}
	return true
}

func (c *Controller) applyPipelineState(ps pipeline.State) {
	var next Status
	switch ps {
	case pipeline.StateNull, pipeline.StateVoidPending:
		next = StatusInit
	case pipeline.StateReady:
		next = StatusReady
	case pipeline.StatePaused:
		next = StatusPaused
	case pipeline.StatePlaying:
		next = StatusPlaying
	default:
		return
	}

	c.update(func(s *State) bool {
		// The pause issued after end of stream must not hide it.
		if s.Status == StatusEndOfStream && next == StatusPaused {
			return false
		}
		if s.Status == next {
			return false
		}
		s.Status = next
		if next == StatusPlaying && s.PlaybackStartedAt.IsAbsent() {
			s.PlaybackStartedAt = mo.Some(c.opts.Now())
		}
		return true
	})
}

// refresh queries duration and position. Missing values are not an error.
func (c *Controller) refresh() {
	duration, hasDuration := c.pipe.QueryDuration()
	position, hasPosition := c.pipe.QueryPosition()
	if !hasDuration && !hasPosition {
		return
	}

	c.update(func(s *State) bool {
		src, ok := s.Source.Get()
		if !ok {
			return false
		}
		if hasDuration {
			src.Duration = mo.Some(duration)
		}
		if hasPosition {
			src.Position = mo.Some(position)
		}
		s.Source = mo.Some(src)
		return true
	})
}

func (c *Controller) setPosition(position time.Duration) {
	c.update(func(s *State) bool {
		src, ok := s.Source.Get()
		if !ok {
			return false
		}
		if p, ok := src.Position.Get(); ok && p == position {
			return false
		}
		src.Position = mo.Some(position)
		s.Source = mo.Some(src)
		return true
	})
}

// poll re-queries the position while playing. It ends with the run loop.
func (c *Controller) poll() {
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if c.State().Status != StatusPlaying {
				continue
			}
			if position, ok := c.pipe.QueryPosition(); ok {
				c.setPosition(position)
			}
		}
	}
}

// update commits a mutation of a copy of the state and notifies listeners when mutate reports a change.
func (c *Controller) update(mutate func(*State) bool) {
	c.mu.Lock()
	next := c.state
	if !mutate(&next) {
		c.mu.Unlock()
		return
	}
	next.Revision = c.state.Revision + 1
	c.state = next
	c.mu.Unlock()

	c.listenersMu.RLock()
	listeners := make([]listenerEntry, len(c.listeners))
	copy(listeners, c.listeners)
	c.listenersMu.RUnlock()

	for _, l := range listeners {
		l.fn(next)
	}
}
