package player

import (
	"time"

	"github.com/samber/mo"
)

// Status is the player-level state derived from pipeline messages.
type Status int

const (
	StatusInit Status = iota
	StatusBuffering
	StatusReady
	StatusPaused
	StatusPlaying
	StatusEndOfStream
)

func (s Status) String() string {
	switch s {
	case StatusInit:
		return "Init"
	case StatusBuffering:
		return "Buffering"
	case StatusReady:
		return "Ready"
	case StatusPaused:
		return "Paused"
	case StatusPlaying:
		return "Playing"
	case StatusEndOfStream:
		return "EndOfStream"
	default:
		return "Unknown"
	}
}

// Source is the media currently handed to the pipeline.
type Source struct {
	URI      string
	Position mo.Option[time.Duration]
	Duration mo.Option[time.Duration]
}

// State is an immutable snapshot of the player. Revision grows with every committed change.
type State struct {
	Status            Status
	Volume            float64
	Muted             bool
	PlaybackStartedAt mo.Option[time.Time]
	Source            mo.Option[Source]
	Revision          uint64
}

// Elapsed returns the last reported position of the current source.
func (s State) Elapsed() mo.Option[time.Duration] {
	src, ok := s.Source.Get()
	if !ok {
		return mo.None[time.Duration]()
	}
	return src.Position
}
