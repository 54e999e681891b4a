// Package pipeline defines the boundary to the external media pipeline that decodes and outputs audio.
//
// The pipeline speaks in asynchronous bus messages. They are decoded once, at this boundary,
// into the Message variants below so the player state machine can switch over them exhaustively.
package pipeline

import (
	"context"
	"time"
)

// State is the pipeline's own notion of its state.
type State int

const (
	StateVoidPending State = iota
	StateNull
	StateReady
	StatePaused
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateVoidPending:
		return "VoidPending"
	case StateNull:
		return "Null"
	case StateReady:
		return "Ready"
	case StatePaused:
		return "Paused"
	case StatePlaying:
		return "Playing"
	default:
		return "Unknown"
	}
}

// SeekFlags modify how a seek is performed.
type SeekFlags int

const (
	SeekFlush SeekFlags = 1 << iota
	SeekAccurate
)

// Pipeline is the command surface of one media pipeline instance.
// Volume values are in the pipeline's native, perceptual scale.
type Pipeline interface {
	// Name identifies the pipeline as the source of its own StateChanged messages.
	Name() string

	SetURI(uri string) error
	SetState(state State) error
	Seek(position time.Duration, flags SeekFlags) error

	Volume() (float64, error)
	SetVolume(volume float64) error
	Mute() (bool, error)
	SetMute(muted bool) error

	// QueryPosition and QueryDuration report false when no value is available yet.
	QueryPosition() (time.Duration, bool)
	QueryDuration() (time.Duration, bool)

	// WaitAsync blocks until a pending state transition has completed.
	WaitAsync(ctx context.Context) error

	// Bus delivers decoded messages. It is closed once the pipeline is torn down.
	Bus() <-chan Message

	Close() error
}
