package inline

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/sonora-player/sonora/track"
)

type Options struct {
	Out  io.Writer
	Json bool
}

// ParseStart resolves a start selector against the queue.
// Format: "first", "last", a 1-based position or "@text@" for the first title containing text.
func ParseStart(description string, tracks []track.Track) (int, error) {
	if len(tracks) == 0 {
		return 0, fmt.Errorf("empty queue")
	}

	switch description {
	case "", "first":
		return 0, nil
	case "last":
		return len(tracks) - 1, nil
	}

	if strings.HasPrefix(description, "@") && strings.HasSuffix(description, "@") && len(description) > 1 {
		sub := strings.ToLower(description[1 : len(description)-1])
		_, i, ok := lo.FindIndexOf(tracks, func(t track.Track) bool {
			return strings.Contains(strings.ToLower(t.String()), sub)
		})
		if !ok {
			return 0, fmt.Errorf("no track matches %q", sub)
		}
		return i, nil
	}

	n, err := strconv.Atoi(description)
	if err != nil {
		return 0, fmt.Errorf("invalid start: %s", description)
	}
	if n < 1 || n > len(tracks) {
		return 0, fmt.Errorf("start must be between 1 and %d", len(tracks))
	}
	return n - 1, nil
}
