package pipeline

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sonora-player/sonora/log"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	waitAsyncInterval = 20 * time.Millisecond
	busBufferSize     = 64
	mpvVolumeScale    = 100.0
)

// ErrNotStarted is returned by commands issued before Start.
var ErrNotStarted = errors.New("mpv is not running")

// Options configure the spawned mpv process.
type Options struct {
	// Path to the mpv executable.
	Path string
	// SocketDir holds the JSON-IPC socket. Defaults to os.TempDir().
	SocketDir string
	// ExtraArgs are appended to the mpv command line.
	ExtraArgs []string
}

// MPV implements Pipeline on top of an audio-only mpv process driven over JSON-IPC.
type MPV struct {
	opts       Options
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when the mpv process exits
	done       chan struct{} // closed by Close
	bus        chan Message
	events     net.Conn
	mu         sync.Mutex // protects socket writes
	closeOnce  sync.Once

	uriMu      sync.Mutex
	pendingURI string
}

// NewMPV creates a new MPV pipeline. The process is spawned by Start.
func NewMPV(opts Options) *MPV {
	if opts.Path == "" {
		opts.Path = "mpv"
	}
	if opts.SocketDir == "" {
		opts.SocketDir = os.TempDir()
	}
	return &MPV{
		opts:   opts,
		exited: make(chan struct{}),
		done:   make(chan struct{}),
		bus:    make(chan Message, busBufferSize),
	}
}

// Start spawns mpv in idle mode and begins decoding its event stream onto the bus.
func (m *MPV) Start() error {
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	m.socketPath = filepath.Join(m.opts.SocketDir, fmt.Sprintf("sonora-%x.sock", randomBytes))

	// keep-open leaves the finished file loaded and paused at its end, so playback
	// can resume after a seek to zero.
	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--no-video",
		"--idle=yes",
		"--keep-open=yes",
		"--pause=yes",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
	}
	args = append(args, m.opts.ExtraArgs...)

	m.cmd = exec.Command(m.opts.Path, args...)
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	if err := m.listen(); err != nil {
		_ = m.Close()
		return err
	}

	log.Infof("mpv pipeline started on %s", m.socketPath)
	return nil
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

func (m *MPV) Name() string {
	return "mpv"
}

func (m *MPV) Bus() <-chan Message {
	return m.bus
}

// SetURI records the source to load on the next transition to Paused or Playing.
func (m *MPV) SetURI(uri string) error {
	target, err := sanitizeMediaTarget(uri)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	m.uriMu.Lock()
	m.pendingURI = target
	m.uriMu.Unlock()
	return nil
}

func (m *MPV) SetState(state State) error {
	switch state {
	case StatePaused, StatePlaying:
		if err := m.set("pause", state == StatePaused); err != nil {
			return err
		}

		m.uriMu.Lock()
		uri := m.pendingURI
		m.pendingURI = ""
		m.uriMu.Unlock()

		if uri != "" {
			_, err := m.sendCommand([]interface{}{"loadfile", uri, "replace"})
			return err
		}
		return nil
	default:
		_, err := m.sendCommand([]interface{}{"stop"})
		return err
	}
}

func (m *MPV) Seek(position time.Duration, flags SeekFlags) error {
	mode := "absolute"
	if flags&SeekAccurate != 0 {
		mode = "absolute+exact"
	}
	_, err := m.sendCommand([]interface{}{"seek", position.Seconds(), mode})
	return err
}

// Volume returns mpv's volume mapped onto the native 0..1 scale.
func (m *MPV) Volume() (float64, error) {
	v, err := m.getFloatProperty("volume")
	if err != nil {
		return 0, err
	}
	return v / mpvVolumeScale, nil
}

func (m *MPV) SetVolume(volume float64) error {
	return m.set("volume", volume*mpvVolumeScale)
}

func (m *MPV) Mute() (bool, error) {
	data, err := m.sendCommand([]interface{}{"get_property", "mute"})
	if err != nil {
		return false, err
	}
	muted, _ := data.(bool)
	return muted, nil
}

func (m *MPV) SetMute(muted bool) error {
	return m.set("mute", muted)
}

func (m *MPV) QueryPosition() (time.Duration, bool) {
	return m.queryDuration("time-pos")
}

func (m *MPV) QueryDuration() (time.Duration, bool) {
	return m.queryDuration("duration")
}

// WaitAsync blocks while mpv is still seeking or loading.
func (m *MPV) WaitAsync(ctx context.Context) error {
	ticker := time.NewTicker(waitAsyncInterval)
	defer ticker.Stop()

	for {
		data, err := m.sendCommand([]interface{}{"get_property", "seeking"})
		if err != nil {
			// Nothing loaded: there is no transition to wait for.
			if strings.Contains(err.Error(), "property unavailable") {
				return nil
			}
			return err
		}
		if seeking, _ := data.(bool); !seeking {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.exited:
			return ErrNotStarted
		case <-ticker.C:
		}
	}
}

// Close shuts down the mpv process and closes the bus.
func (m *MPV) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)

		if m.socketPath == "" {
			close(m.bus)
			return
		}

		_, _ = m.sendCommand([]interface{}{"quit"})

		select {
		case <-m.exited:
		case <-time.After(3 * time.Second):
			_ = killProcess(m.cmd)
		}

		if m.events != nil {
			_ = m.events.Close()
		} else {
			close(m.bus)
		}
		_ = os.Remove(m.socketPath)
	})
	return nil
}

func (m *MPV) set(property string, value interface{}) error {
	_, err := m.sendCommand([]interface{}{"set_property", property, value})
	return err
}

func (m *MPV) queryDuration(property string) (time.Duration, bool) {
	secs, err := m.getFloatProperty(property)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand([]interface{}{"get_property", name})
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

// sanitizeMediaTarget validates that a URI is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URI")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URI")
	}

	// URIs must not look like flags
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("uri must not start with '-'")
	}

	if !strings.Contains(l, ":") {
		return filepath.Clean(l), nil
	}

	u, err := url.Parse(l)
	if err != nil {
		return "", fmt.Errorf("invalid URI: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return l, nil
	case "file":
		return u.Path, nil
	default:
		return "", fmt.Errorf("unsupported URI scheme: %s", u.Scheme)
	}
}
