package tui

type state int

const (
	nowPlayingState state = iota
	queueState
	errorState
)

func (s state) String() string {
	switch s {
	case nowPlayingState:
		return "now playing"
	case queueState:
		return "queue"
	case errorState:
		return "error"
	default:
		return "unknown"
	}
}
