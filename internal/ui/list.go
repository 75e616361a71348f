package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/sonic57/internal/models"
)

var (
	_ list.Item = trackItem{}
	_ list.Item = genreItem{}
)

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track   models.Track
	saved   bool
	current bool
}

func (i trackItem) FilterValue() string { return i.track.Title + " " + i.track.Artist }
func (i trackItem) Title() string {
	title := i.track.Title
	if i.current {
		title = "▶ " + title
	}
	if i.saved {
		title += " ♥"
	}
	return title
}

func (i trackItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	if i.track.Duration != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Duration)
	}
	return fmt.Sprintf("%s • %s", desc, i.track.Genre)
}

// genreItem is one row of the genre picker.
type genreItem struct {
	name  string
	count int
}

func (i genreItem) FilterValue() string { return i.name }
func (i genreItem) Title() string       { return i.name }
func (i genreItem) Description() string { return fmt.Sprintf("%d tracks", i.count) }

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	return l
}
