package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sonora-player/sonora/pipeline"
)

// fakePipeline records commands and lets tests push bus messages.
type fakePipeline struct {
	mu          sync.Mutex
	bus         chan pipeline.Message
	calls       []string
	volume      float64
	muted       bool
	position    time.Duration
	hasPosition bool
	duration    time.Duration
	hasDuration bool
	closeOnce   sync.Once
}

func newFakePipeline() *fakePipeline {
	return &fakePipeline{bus: make(chan pipeline.Message, 16), volume: 1}
}

func (f *fakePipeline) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakePipeline) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakePipeline) Name() string { return "fake" }

func (f *fakePipeline) SetURI(uri string) error {
	f.record("uri:" + uri)
	return nil
}

func (f *fakePipeline) SetState(state pipeline.State) error {
	f.record("state:" + state.String())
	return nil
}

func (f *fakePipeline) Seek(position time.Duration, _ pipeline.SeekFlags) error {
	f.record(fmt.Sprintf("seek:%s", position))
	return nil
}

func (f *fakePipeline) Volume() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume, nil
}

func (f *fakePipeline) SetVolume(volume float64) error {
	f.mu.Lock()
	f.volume = volume
	f.mu.Unlock()
	f.record(fmt.Sprintf("volume:%.3f", volume))
	return nil
}

func (f *fakePipeline) Mute() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.muted, nil
}

func (f *fakePipeline) SetMute(muted bool) error {
	f.record(fmt.Sprintf("mute:%t", muted))
	return nil
}

func (f *fakePipeline) setPosition(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position, f.hasPosition = d, true
}

func (f *fakePipeline) setDuration(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.duration, f.hasDuration = d, true
}

func (f *fakePipeline) QueryPosition() (time.Duration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position, f.hasPosition
}

func (f *fakePipeline) QueryDuration() (time.Duration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration, f.hasDuration
}

func (f *fakePipeline) WaitAsync(context.Context) error {
	f.record("wait")
	return nil
}

func (f *fakePipeline) Bus() <-chan pipeline.Message { return f.bus }

func (f *fakePipeline) Close() error {
	f.closeOnce.Do(func() { close(f.bus) })
	return nil
}

func (f *fakePipeline) emit(msg pipeline.Message) {
	f.bus <- msg
}

// eventually polls cond until it holds or a second has passed.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func indexOf(calls []string, call string) int {
	for i, c := range calls {
		if c == call {
			return i
		}
	}
	return -1
}
