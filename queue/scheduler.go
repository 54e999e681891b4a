// Package queue keeps the ordered play queue and decides what plays next.
package queue

import (
	"errors"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/sonora-player/sonora/log"
	"github.com/sonora-player/sonora/track"
)

// RestartThreshold is the elapsed time from which "previous" restarts the current track instead.
const RestartThreshold = 4 * time.Second

// ErrOutOfBounds is logged when navigation targets a position outside the queue.
var ErrOutOfBounds = errors.New("queue position out of bounds")

// Transport is the part of the player the scheduler needs for the restart-current policy.
type Transport interface {
	Elapsed() mo.Option[time.Duration]
	SeekTo(position time.Duration) error
}

// IntentFunc receives play-intents. Intents carry the revision of the state that produced them.
type IntentFunc func(Intent)

// Listener receives every committed queue snapshot.
type Listener func(State)

type Options struct {
	// RestartThreshold overrides the package default when positive.
	RestartThreshold time.Duration
}

type listenerEntry struct {
	id uint64
	fn Listener
}

// Scheduler serializes queue mutations. Intents and notifications are delivered after the
// mutation is committed, outside the lock, on the calling goroutine.
type Scheduler struct {
	transport        Transport
	onIntent         IntentFunc
	restartThreshold time.Duration

	mu    sync.Mutex
	state State

	listenersMu sync.RWMutex
	listeners   []listenerEntry
	nextID      uint64
}

func New(transport Transport, onIntent IntentFunc, opts Options) *Scheduler {
	if opts.RestartThreshold <= 0 {
		opts.RestartThreshold = RestartThreshold
	}
	if onIntent == nil {
		onIntent = func(Intent) {}
	}

	return &Scheduler{
		transport:        transport,
		onIntent:         onIntent,
		restartThreshold: opts.RestartThreshold,
	}
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn and returns a function removing it again.
func (s *Scheduler) Subscribe(fn Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		s.listeners = lo.Reject(s.listeners, func(l listenerEntry, _ int) bool {
			return l.id == id
		})
	}
}

// ReplaceQueue swaps the queue contents and pointer. It always notifies and never emits an intent.
// An invalid start leaves the pointer unset.
func (s *Scheduler) ReplaceQueue(tracks []track.Track, start mo.Option[int]) {
	items := lo.Map(tracks, func(t track.Track, _ int) Item {
		return Item{Track: t}
	})

	position := mo.None[int]()
	if p, ok := start.Get(); ok {
		if p >= 0 && p < len(items) {
			items[p].IsCurrent = true
			position = mo.Some(p)
		} else {
			log.WithFields(log.Fields{"position": p, "length": len(items)}).Warn(ErrOutOfBounds)
		}
	}

	s.mu.Lock()
	s.state.Items = items
	s.state.Position = position
	snapshot := s.commit()
	s.mu.Unlock()

	s.notify(snapshot)
}

// PlayPosition moves the pointer to i and emits an intent. Out of range positions are logged and ignored.
func (s *Scheduler) PlayPosition(i int) {
	s.mu.Lock()
	if i < 0 || i >= len(s.state.Items) {
		length := len(s.state.Items)
		s.mu.Unlock()
		log.WithFields(log.Fields{"position": i, "length": length}).Warn(ErrOutOfBounds)
		return
	}
	intent, snapshot := s.moveTo(i)
	s.mu.Unlock()

	s.emit(intent, snapshot)
}

// AttemptPlayNext advances the pointer. It does nothing at the end of the queue.
func (s *Scheduler) AttemptPlayNext() {
	s.mu.Lock()
	next := 0
	if p, ok := s.state.Position.Get(); ok {
		next = p + 1
	}
	if next >= len(s.state.Items) {
		s.mu.Unlock()
		log.Debugf("queue: no track after position %d", next-1)
		return
	}
	intent, snapshot := s.moveTo(next)
	s.mu.Unlock()

	s.emit(intent, snapshot)
}

// AttemptPlayPrev restarts the current track once it has played for RestartThreshold or when the
// pointer is at the start. Otherwise it moves the pointer back.
func (s *Scheduler) AttemptPlayPrev() {
	if elapsed, ok := s.transport.Elapsed().Get(); ok && elapsed >= s.restartThreshold {
		s.restart()
		return
	}

	s.mu.Lock()
	p, ok := s.state.Position.Get()
	if !ok {
		s.mu.Unlock()
		log.Debugf("queue: previous without a current track")
		return
	}
	if p == 0 {
		s.mu.Unlock()
		s.restart()
		return
	}
	intent, snapshot := s.moveTo(p - 1)
	s.mu.Unlock()

	s.emit(intent, snapshot)
}

// Enqueue inserts t right after the pointer as a user-queued item ("play next").
func (s *Scheduler) Enqueue(t track.Track) {
	s.mu.Lock()
	s.insert(s.afterPointer(), t)
	snapshot := s.commit()
	s.mu.Unlock()

	s.notify(snapshot)
}

// EnqueueLast inserts t after the run of user-queued items that follows the pointer ("play last").
func (s *Scheduler) EnqueueLast(t track.Track) {
	s.mu.Lock()
	at := s.afterPointer()
	for at < len(s.state.Items) && s.state.Items[at].IsUserQueued {
		at++
	}
	s.insert(at, t)
	snapshot := s.commit()
	s.mu.Unlock()

	s.notify(snapshot)
}

// OnEndOfStream is the only automatic advance of the queue.
func (s *Scheduler) OnEndOfStream() {
	s.AttemptPlayNext()
}

func (s *Scheduler) restart() {
	if err := s.transport.SeekTo(0); err != nil {
		log.Warnf("queue: restart current track: %v", err)
	}
}

func (s *Scheduler) afterPointer() int {
	if p, ok := s.state.Position.Get(); ok {
		return p + 1
	}
	return 0
}

func (s *Scheduler) insert(at int, t track.Track) {
	s.state.Items = lo.Splice(s.state.Items, at, Item{Track: t, IsUserQueued: true})
}

// moveTo sets the pointer to i. The new current item stops being user-queued, and user-queued items
// outside the run right after the pointer become ordinary items in place.
func (s *Scheduler) moveTo(i int) (Intent, State) {
	items := s.state.Items
	items[i].IsUserQueued = false

	runEnd := i + 1
	for runEnd < len(items) && items[runEnd].IsUserQueued {
		runEnd++
	}
	for j := range items {
		items[j].IsCurrent = j == i
		if j <= i || j >= runEnd {
			items[j].IsUserQueued = false
		}
	}

	s.state.Position = mo.Some(i)
	snapshot := s.commit()
	return Intent{Position: i, Track: items[i].Track, Revision: snapshot.Revision}, snapshot
}

// commit bumps the revision and returns a copy safe to hand out.
func (s *Scheduler) commit() State {
	s.state.Revision++
	return s.state.clone()
}

func (s *Scheduler) emit(intent Intent, snapshot State) {
	log.WithFields(log.Fields{
		"position": intent.Position,
		"track":    intent.Track.ID,
		"revision": intent.Revision,
	}).Debug("queue: play intent")

	s.notify(snapshot)
	s.onIntent(intent)
}

func (s *Scheduler) notify(snapshot State) {
	s.listenersMu.RLock()
	listeners := make([]listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.RUnlock()

	for _, l := range listeners {
		l.fn(snapshot)
	}
}
