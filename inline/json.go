package inline

import (
	"encoding/json"

	"github.com/sonora-player/sonora/playback"
)

type Track struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
}

type Download struct {
	Received int64 `json:"received"`
	Total    int64 `json:"total"`
}

// Event is one line of the headless output.
type Event struct {
	Revision uint64    `json:"revision"`
	Status   string    `json:"status"`
	Position int       `json:"position"`
	Queued   int       `json:"queued"`
	Track    *Track    `json:"track,omitempty"`
	Path     string    `json:"path,omitempty"`
	Download *Download `json:"download,omitempty"`
	Volume   float64   `json:"volume"`
	Muted    bool      `json:"muted"`
	Error    string    `json:"error,omitempty"`
}

func eventOf(s playback.AppState) Event {
	e := Event{
		Revision: s.Revision,
		Status:   s.Player.Status.String(),
		Position: -1,
		Queued:   len(s.Queue.Items),
		Volume:   s.Player.Volume,
		Muted:    s.Player.Muted,
	}

	if np, ok := s.NowPlaying.Get(); ok {
		e.Position = np.Position
		e.Track = &Track{
			ID:     np.Track.ID,
			Title:  np.Track.Title,
			Artist: np.Track.Artist,
			Album:  np.Track.Album,
		}
		if result, ok := np.Cache.Get(); ok {
			e.Path = result.Path
		}
		if p, ok := np.Download.Get(); ok && !np.Resolved() {
			e.Download = &Download{Received: p.Received, Total: p.Total}
		}
		if np.Err != nil {
			e.Error = np.Err.Error()
		}
	}

	if s.Fatal != nil {
		e.Error = s.Fatal.Error()
	}

	return e
}

func asJson(e Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
