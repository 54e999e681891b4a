// Package playback wires the queue, the song cache and the player together and publishes one
// application state to any number of listeners.
package playback

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/sonora-player/sonora/internal/cache"
	"github.com/sonora-player/sonora/log"
	"github.com/sonora-player/sonora/player"
	"github.com/sonora-player/sonora/queue"
	"github.com/sonora-player/sonora/track"
	"github.com/sonora-player/sonora/util"
)

// ErrUnavailable is returned by commands once the player loop has died.
var ErrUnavailable = errors.New("playback unavailable")

// Player is the controller surface the orchestrator drives.
type Player interface {
	State() player.State
	Elapsed() mo.Option[time.Duration]
	Subscribe(fn player.Listener) (unsubscribe func())
	Done() <-chan struct{}
	Err() error
	SetSource(uri string, startPlaying bool) error
	Play() error
	Pause() error
	SeekTo(position time.Duration) error
	SetVolume(linear float64) error
	SetMute(muted bool) error
	Quit() error
}

// Songs resolves remote tracks to local files.
type Songs interface {
	Get(ctx context.Context, req cache.SongRequest, progress cache.ProgressFunc) (cache.Result, error)
}

// Thumbnails resolves cover art to local files.
type Thumbnails interface {
	Load(ctx context.Context, req cache.ThumbnailRequest) (string, error)
}

type Options struct {
	// Thumbnails, when set, prefetches the cover art of every track that becomes current.
	Thumbnails Thumbnails

	// Preferences, when set, restores volume and mute at start and saves their changes.
	Preferences *PreferenceStore

	// SkipOnFetchError advances the queue when a track cannot be fetched.
	SkipOnFetchError bool

	RestartThreshold time.Duration
}

// Orchestrator is the command surface consumed by the user interface.
type Orchestrator struct {
	player     Player
	songs      Songs
	thumbnails Thumbnails
	prefs      *PreferenceStore
	skip       bool

	queue    *queue.Scheduler
	registry *Registry

	state atomic.Pointer[AppState]

	// latest is the revision of the newest play-intent. Older resolutions are discarded.
	latest   atomic.Uint64
	sourceMu sync.Mutex

	ctx       context.Context
	cancel    context.CancelFunc
	unsubs    []func()
	closeOnce sync.Once
	closeErr  error
}

func New(p Player, songs Songs, opts Options) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		player:     p,
		songs:      songs,
		thumbnails: opts.Thumbnails,
		prefs:      opts.Preferences,
		skip:       opts.SkipOnFetchError,
		registry:   NewRegistry(),
		ctx:        ctx,
		cancel:     cancel,
	}

	o.queue = queue.New(p, o.onIntent, queue.Options{RestartThreshold: opts.RestartThreshold})
	o.state.Store(&AppState{Player: p.State(), Queue: o.queue.State()})

	o.unsubs = append(o.unsubs,
		p.Subscribe(o.onPlayerState),
		o.queue.Subscribe(o.onQueueState),
	)

	o.restorePreferences()
	go o.watch()
	return o
}

// GetState returns the latest published snapshot.
func (o *Orchestrator) GetState() AppState {
	return *o.state.Load()
}

// Queue returns the current queue snapshot.
func (o *Orchestrator) Queue() queue.State {
	return o.queue.State()
}

func (o *Orchestrator) Subscribe(fn Listener) uuid.UUID {
	return o.registry.Add(fn)
}

// Unsubscribe reports whether id was subscribed.
func (o *Orchestrator) Unsubscribe(id uuid.UUID) bool {
	return o.registry.Remove(id)
}

// Play resumes the player. With nothing resolved yet it starts the queue instead.
func (o *Orchestrator) Play() error {
	if err := o.available(); err != nil {
		return err
	}

	if o.GetState().NowPlaying.IsAbsent() {
		q := o.queue.State()
		if len(q.Items) > 0 {
			o.queue.PlayPosition(q.Position.OrElse(0))
			return nil
		}
	}
	return o.player.Play()
}

func (o *Orchestrator) Pause() error {
	if err := o.available(); err != nil {
		return err
	}
	return o.player.Pause()
}

// PlayPause pauses while playing or buffering and plays otherwise.
func (o *Orchestrator) PlayPause() error {
	switch o.GetState().Player.Status {
	case player.StatusPlaying, player.StatusBuffering:
		return o.Pause()
	default:
		return o.Play()
	}
}

func (o *Orchestrator) Next() error {
	if err := o.available(); err != nil {
		return err
	}
	o.queue.AttemptPlayNext()
	return nil
}

func (o *Orchestrator) Prev() error {
	if err := o.available(); err != nil {
		return err
	}
	o.queue.AttemptPlayPrev()
	return nil
}

func (o *Orchestrator) SeekTo(position time.Duration) error {
	if err := o.available(); err != nil {
		return err
	}
	return o.player.SeekTo(position)
}

// SetVolume sets a linear volume, clamped to [0, 1].
func (o *Orchestrator) SetVolume(linear float64) error {
	if err := o.available(); err != nil {
		return err
	}
	return o.player.SetVolume(util.Clamp(linear, 0, 1))
}

func (o *Orchestrator) Mute() error {
	if err := o.available(); err != nil {
		return err
	}
	return o.player.SetMute(true)
}

func (o *Orchestrator) Unmute() error {
	if err := o.available(); err != nil {
		return err
	}
	return o.player.SetMute(false)
}

// Enqueue plays t after the current track.
func (o *Orchestrator) Enqueue(t track.Track) {
	o.queue.Enqueue(t)
}

// EnqueueLast plays t after every track queued by the user.
func (o *Orchestrator) EnqueueLast(t track.Track) {
	o.queue.EnqueueLast(t)
}

func (o *Orchestrator) PlayPosition(i int) error {
	if err := o.available(); err != nil {
		return err
	}
	o.queue.PlayPosition(i)
	return nil
}

// PlayQueue replaces the queue and starts playing at start.
func (o *Orchestrator) PlayQueue(tracks []track.Track, start int) error {
	if err := o.available(); err != nil {
		return err
	}
	o.queue.ReplaceQueue(tracks, mo.Some(start))
	o.queue.PlayPosition(start)
	return nil
}

// Close detaches from the player and quits it. Fetches already started run to completion.
func (o *Orchestrator) Close() error {
	o.closeOnce.Do(func() {
		for _, unsubscribe := range o.unsubs {
			unsubscribe()
		}
		o.cancel()
		o.closeErr = o.player.Quit()
	})
	return o.closeErr
}

func (o *Orchestrator) available() error {
	if o.GetState().Unavailable {
		return ErrUnavailable
	}
	return nil
}

// update is the only writer of the published state. mutate may run several times and must not
// have side effects. It returns the replaced and the new state when mutate reported a change.
func (o *Orchestrator) update(mutate func(*AppState) bool) (prev, next AppState, changed bool) {
	for {
		current := o.state.Load()
		next = *current
		if !mutate(&next) {
			return *current, *current, false
		}
		next.Revision = current.Revision + 1
		if o.state.CompareAndSwap(current, &next) {
			o.registry.Notify(next)
			return *current, next, true
		}
	}
}

// updateNowPlaying applies mutate only while the track of the given intent is still current.
func (o *Orchestrator) updateNowPlaying(intent uint64, mutate func(*NowPlaying)) {
	o.update(func(s *AppState) bool {
		np, ok := s.NowPlaying.Get()
		if !ok || np.intent != intent {
			return false
		}
		mutate(&np)
		s.NowPlaying = mo.Some(np)
		return true
	})
}

func (o *Orchestrator) onPlayerState(ps player.State) {
	prev, next, changed := o.update(func(s *AppState) bool {
		if ps.Revision <= s.Player.Revision {
			return false
		}
		s.Player = ps
		return true
	})
	if !changed {
		return
	}

	if prev.Player.Status != player.StatusEndOfStream && next.Player.Status == player.StatusEndOfStream {
		log.Debugf("playback: end of stream, advancing the queue")
		go o.queue.OnEndOfStream()
	}

	if prev.Player.Volume != next.Player.Volume || prev.Player.Muted != next.Player.Muted {
		o.savePreferences(next.Player)
	}
}

func (o *Orchestrator) onQueueState(qs queue.State) {
	o.update(func(s *AppState) bool {
		if qs.Revision <= s.Queue.Revision {
			return false
		}
		s.Queue = qs
		return true
	})
}

// onIntent runs on the goroutine that moved the queue pointer.
func (o *Orchestrator) onIntent(intent queue.Intent) {
	for {
		latest := o.latest.Load()
		if intent.Revision <= latest {
			log.Debugf("playback: dropping stale intent %s", intent)
			return
		}
		if o.latest.CompareAndSwap(latest, intent.Revision) {
			break
		}
	}

	// a newer intent may have claimed latest and written its track in between
	_, _, changed := o.update(func(s *AppState) bool {
		if o.latest.Load() != intent.Revision {
			return false
		}
		if np, ok := s.NowPlaying.Get(); ok && np.intent > intent.Revision {
			return false
		}
		s.NowPlaying = mo.Some(NowPlaying{
			Track:    intent.Track,
			Position: intent.Position,
			intent:   intent.Revision,
		})
		return true
	})
	if !changed {
		log.Debugf("playback: dropping superseded intent %s", intent)
		return
	}

	if o.thumbnails != nil && intent.Track.CoverArtURL != "" {
		go o.loadCoverArt(intent)
	}

	if intent.Track.IsLocal() {
		o.handOff(intent, cache.Result{Path: intent.Track.LocalPath(), Hit: true}, intent.Track.URI)
		return
	}
	go o.resolve(intent)
}

func (o *Orchestrator) resolve(intent queue.Intent) {
	t := intent.Track
	result, err := o.songs.Get(o.ctx, cache.SongRequestFor(t), func(p cache.Progress) {
		o.updateNowPlaying(intent.Revision, func(np *NowPlaying) {
			np.Download = mo.Some(p)
		})
	})

	if o.latest.Load() != intent.Revision {
		log.Debugf("playback: discarding resolution of %s", intent)
		return
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.WithFields(log.Fields{"track": t.ID, "position": intent.Position}).Errorf("playback: resolve: %v", err)
		o.updateNowPlaying(intent.Revision, func(np *NowPlaying) {
			np.Err = err
		})
		if o.skip {
			o.queue.AttemptPlayNext()
		}
		return
	}

	o.handOff(intent, result, result.URI())
}

// handOff gives the resolved source to the player unless a newer intent has arrived meanwhile.
func (o *Orchestrator) handOff(intent queue.Intent, result cache.Result, uri string) {
	o.sourceMu.Lock()
	defer o.sourceMu.Unlock()

	if o.latest.Load() != intent.Revision {
		log.Debugf("playback: discarding hand-off of %s", intent)
		return
	}

	o.updateNowPlaying(intent.Revision, func(np *NowPlaying) {
		np.Cache = mo.Some(result)
		np.Err = nil
	})

	log.WithFields(log.Fields{"track": intent.Track.ID, "hit": result.Hit, "uri": uri}).Info("playback: set source")
	if err := o.player.SetSource(uri, true); err != nil {
		log.Errorf("playback: set source: %v", err)
		o.updateNowPlaying(intent.Revision, func(np *NowPlaying) {
			np.Err = err
		})
	}
}

func (o *Orchestrator) loadCoverArt(intent queue.Intent) {
	t := intent.Track
	path, err := o.thumbnails.Load(o.ctx, cache.ThumbnailRequest{
		ServerID: t.ServerID,
		ID:       t.CoverArtID,
		URL:      t.CoverArtURL,
	})
	if err != nil {
		log.Warnf("playback: cover art of %s: %v", t.ID, err)
		return
	}
	o.updateNowPlaying(intent.Revision, func(np *NowPlaying) {
		np.CoverArt = mo.Some(path)
	})
}

// watch marks the state unavailable once the player loop ends.
func (o *Orchestrator) watch() {
	<-o.player.Done()

	fatal := o.player.Err()
	if fatal != nil {
		log.Errorf("playback: %v", fatal)
	}
	o.update(func(s *AppState) bool {
		if s.Unavailable {
			return false
		}
		s.Unavailable = true
		s.Fatal = fatal
		return true
	})
}

func (o *Orchestrator) restorePreferences() {
	if o.prefs == nil {
		return
	}

	prefs, ok := o.prefs.Load().Get()
	if !ok {
		return
	}
	if err := o.player.SetVolume(prefs.Volume); err != nil {
		log.Warnf("playback: restore volume: %v", err)
	}
	if err := o.player.SetMute(prefs.Muted); err != nil {
		log.Warnf("playback: restore mute: %v", err)
	}
}

func (o *Orchestrator) savePreferences(ps player.State) {
	if o.prefs == nil {
		return
	}
	if err := o.prefs.Save(Preferences{Volume: ps.Volume, Muted: ps.Muted}); err != nil {
		log.Warnf("playback: save preferences: %v", err)
	}
}
