package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/sonic57/internal/models"
)

const (
	fieldTitle = iota
	fieldArtist
	fieldAlbum
	fieldGenre
	fieldDuration
	fieldCover
	fieldAudio
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Artist", "Album", "Genre", "Duration", "Cover", "Audio"}

// ingestForm collects a draft. Cover and audio accept a URL, a data URI, or
// a local file path.
type ingestForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
}

func newIngestForm() ingestForm {
	placeholders := [fieldCount]string{
		"Track title (required)",
		"Artist (required)",
		"Album",
		"Genre",
		"mm:ss, read from the file when blank",
		"https://… or ./cover.jpg (required)",
		"https://… or ./track.mp3 (required)",
	}

	var f ingestForm
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.Prompt = "› "
		in.CharLimit = 2048
		f.inputs[i] = in
	}
	return f
}

func (f *ingestForm) Focus() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	return f.inputs[f.focus].Focus()
}

// move shifts focus by delta, wrapping.
func (f *ingestForm) move(delta int) tea.Cmd {
	f.focus = ((f.focus+delta)%fieldCount + fieldCount) % fieldCount
	return f.Focus()
}

func (f *ingestForm) last() bool { return f.focus == fieldCount-1 }

func (f *ingestForm) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *ingestForm) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

// Draft builds the ingestion input from the current field values.
func (f *ingestForm) Draft() models.TrackDraft {
	return models.TrackDraft{
		Title:    f.value(fieldTitle),
		Artist:   f.value(fieldArtist),
		Album:    f.value(fieldAlbum),
		Genre:    f.value(fieldGenre),
		Duration: f.value(fieldDuration),
		Cover:    models.ParseMediaRef(f.value(fieldCover)),
		Audio:    models.ParseMediaRef(f.value(fieldAudio)),
	}
}

func (f *ingestForm) Reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	f.focus = 0
}

func (f *ingestForm) View() string {
	var b strings.Builder
	for i, in := range f.inputs {
		label := fieldLabels[i]
		if i == f.focus {
			label = styles.ok.Render(label)
		} else {
			label = styles.help.Render(label)
		}
		b.WriteString(label + "\n" + in.View() + "\n")
	}
	return b.String()
}
