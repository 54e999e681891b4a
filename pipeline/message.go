package pipeline

import "fmt"

// Message is one decoded bus message. The set of variants is closed.
type Message interface {
	message()
}

// EOS reports that the current stream has played to its end.
type EOS struct{}

// Error reports a fatal pipeline failure.
type Error struct {
	Err error
}

// StateChanged reports a state transition of Source, which is either the pipeline itself or one of its elements.
type StateChanged struct {
	Source  string
	Old     State
	New     State
	Pending State
}

// Buffering reports stream buffer fill, 100 meaning buffering finished.
type Buffering struct {
	Percent int
}

// DurationChanged hints that the stream duration should be queried again.
type DurationChanged struct{}

// AsyncDone reports completion of an asynchronous state change or seek.
type AsyncDone struct{}

// StreamStart reports that a new stream began flowing.
type StreamStart struct{}

// VolumeChanged carries the pipeline's native volume after it changed.
type VolumeChanged struct {
	Volume float64
}

// MuteChanged carries the pipeline's mute flag after it changed.
type MuteChanged struct {
	Muted bool
}

func (EOS) message()             {}
func (Error) message()           {}
func (StateChanged) message()    {}
func (Buffering) message()       {}
func (DurationChanged) message() {}
func (AsyncDone) message()       {}
func (StreamStart) message()     {}
func (VolumeChanged) message()   {}
func (MuteChanged) message()     {}

func (e Error) Error() string {
	return fmt.Sprintf("pipeline error: %v", e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}
