package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/sonora-player/sonora/icon"
	"github.com/sonora-player/sonora/queue"
	"github.com/sonora-player/sonora/style"
	"github.com/sonora-player/sonora/util"
)

// listItem implements the list.Item interface for one queue entry.
type listItem struct {
	item  queue.Item
	index int
}

func (t *listItem) getMark() string {
	switch {
	case t.item.IsCurrent:
		return lipgloss.NewStyle().Bold(true).Foreground(style.CurrentColor).Render(icon.Get(icon.Current))
	case t.item.IsUserQueued:
		return lipgloss.NewStyle().Foreground(style.QueuedColor).Render(icon.Get(icon.Queued))
	default:
		return ""
	}
}

// Title retrieves the primary display text for the list item.
func (t *listItem) Title() string {
	title := t.item.Track.Title
	if title == "" {
		title = t.item.Track.ID
	}

	title = fmt.Sprintf("%d. %s", t.index+1, title)
	if mark := t.getMark(); mark != "" {
		title = fmt.Sprintf("%s %s", title, mark)
	}

	return title
}

// Description lists artist, album and length, skipping the unknown ones.
func (t *listItem) Description() string {
	tr := t.item.Track

	var parts []string
	if tr.Artist != "" {
		parts = append(parts, tr.Artist)
	}
	if tr.Album != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(style.FaintColor).Render(tr.Album))
	}
	if tr.Duration > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(style.FaintColor).Render(util.FormatDuration(tr.Duration)))
	}

	return strings.Join(parts, " • ")
}

// FilterValue returns the string used for real-time list filtering and searching.
func (t *listItem) FilterValue() string {
	tr := t.item.Track
	return strings.Join(lo.Compact([]string{tr.Title, tr.Artist, tr.Album}), " ")
}

// queueItems wraps a queue snapshot for the list component.
func queueItems(q queue.State) []list.Item {
	return lo.Map(q.Items, func(item queue.Item, i int) list.Item {
		return &listItem{item: item, index: i}
	})
}

// fuzzyFilter ranks targets by fuzzy match distance, closest first.
func fuzzyFilter(term string, targets []string) []list.Rank {
	ranks := fuzzy.RankFindNormalizedFold(term, targets)
	sort.Stable(ranks)

	return lo.Map(ranks, func(r fuzzy.Rank, _ int) list.Rank {
		return list.Rank{Index: r.OriginalIndex}
	})
}
