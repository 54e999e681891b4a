package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"

	"github.com/sonora-player/sonora/log"
)

// observed lists the properties whose changes become bus messages.
var observed = []string{
	"pause",
	"idle-active",
	"eof-reached",
	"duration",
	"paused-for-cache",
	"cache-buffering-state",
	"volume",
	"mute",
}

// mpvEvent is one line of mpv's event stream.
type mpvEvent struct {
	Event     string          `json:"event"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	Reason    string          `json:"reason"`
	FileError string          `json:"file_error"`
}

// listen opens the persistent event connection, subscribes to property changes and starts the read loop.
func (m *MPV) listen() error {
	conn, err := net.Dial("unix", m.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range observed {
		if err := writeCommand(conn, []interface{}{"observe_property", i + 1, name}); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	m.events = conn
	go m.readLoop(conn)
	return nil
}

// readLoop decodes the newline-delimited event stream until the connection drops.
func (m *MPV) readLoop(conn net.Conn) {
	defer close(m.bus)

	t := newTranslator(m.Name())
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, readBufSize), 1<<20)

	for scanner.Scan() {
		var ev mpvEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		if ev.Event == "shutdown" {
			return
		}

		for _, msg := range t.translate(ev) {
			if !m.publish(msg) {
				return
			}
		}
	}

	select {
	case <-m.done:
	default:
		err := scanner.Err()
		if err == nil {
			err = fmt.Errorf("mpv closed the event connection")
		}
		log.Warnf("mpv event loop ended: %v", err)
		m.publish(Error{Err: err})
	}
}

func (m *MPV) publish(msg Message) bool {
	select {
	case m.bus <- msg:
		return true
	case <-m.done:
		return false
	}
}

// translator turns mpv's property-change model into bus messages. It is owned by the read loop.
type translator struct {
	source       string
	state        State
	loaded       bool
	paused       bool
	buffering    bool
	cachePercent int
}

func newTranslator(source string) *translator {
	return &translator{source: source, state: StateNull, paused: true}
}

func (t *translator) transition(to State) []Message {
	if to == t.state {
		return nil
	}
	msg := StateChanged{Source: t.source, Old: t.state, New: to, Pending: StateVoidPending}
	t.state = to
	return []Message{msg}
}

func (t *translator) playState() State {
	if t.paused {
		return StatePaused
	}
	return StatePlaying
}

func (t *translator) translate(ev mpvEvent) []Message {
	switch ev.Event {
	case "file-loaded":
		t.loaded = true
		msgs := []Message{StreamStart{}}
		msgs = append(msgs, t.transition(t.playState())...)
		return append(msgs, DurationChanged{})
	case "playback-restart":
		return []Message{AsyncDone{}}
	case "end-file":
		t.loaded = false
		if ev.Reason == "error" {
			return []Message{Error{Err: fmt.Errorf("mpv: %s", ev.FileError)}}
		}
		return nil
	case "property-change":
		return t.property(ev.Name, ev.Data)
	default:
		return nil
	}
}

func (t *translator) property(name string, data json.RawMessage) []Message {
	switch name {
	case "pause":
		var paused bool
		if json.Unmarshal(data, &paused) != nil {
			return nil
		}
		t.paused = paused
		if !t.loaded {
			return nil
		}
		return t.transition(t.playState())
	case "idle-active":
		var idle bool
		if json.Unmarshal(data, &idle) != nil || !idle {
			return nil
		}
		t.loaded = false
		return t.transition(StateNull)
	case "eof-reached":
		var eof bool
		if json.Unmarshal(data, &eof) != nil || !eof {
			return nil
		}
		return []Message{EOS{}}
	case "duration":
		return []Message{DurationChanged{}}
	case "paused-for-cache":
		var waiting bool
		if json.Unmarshal(data, &waiting) != nil {
			return nil
		}
		t.buffering = waiting
		if waiting {
			return []Message{Buffering{Percent: t.cachePercent}}
		}
		return []Message{Buffering{Percent: 100}}
	case "cache-buffering-state":
		var percent int
		if json.Unmarshal(data, &percent) != nil {
			return nil
		}
		t.cachePercent = percent
		if !t.buffering {
			return nil
		}
		return []Message{Buffering{Percent: percent}}
	case "volume":
		var volume float64
		if json.Unmarshal(data, &volume) != nil {
			return nil
		}
		return []Message{VolumeChanged{Volume: volume / mpvVolumeScale}}
	case "mute":
		var muted bool
		if json.Unmarshal(data, &muted) != nil {
			return nil
		}
		return []Message{MuteChanged{Muted: muted}}
	default:
		return nil
	}
}
