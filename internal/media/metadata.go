package media

import (
	"bytes"
	"time"

	"github.com/dhowden/tag"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/shared"
)

// Metadata is what could be read from an audio payload. Empty fields were
// not present.
type Metadata struct {
	Title    string
	Artist   string
	Album    string
	Genre    string
	Duration time.Duration
	Format   string
}

// Extract reads embedded tags and decodes the stream length. Missing tags
// are not an error; an undecodable payload only leaves Duration zero.
func Extract(data []byte) Metadata {
	var md Metadata

	if m, err := tag.ReadFrom(bytes.NewReader(data)); err == nil {
		md.Title = m.Title()
		md.Artist = m.Artist()
		md.Album = m.Album()
		md.Genre = m.Genre()
		md.Format = string(m.FileType())
	}

	if streamer, format, err := Decode(data); err == nil {
		md.Duration = format.SampleRate.D(streamer.Len())
		streamer.Close()
		if md.Format == "" {
			md.Format = sniffFormat(data).String()
		}
	}

	return md
}

// Fill copies metadata into the draft's empty optional fields.
// Fields the user supplied always win.
func (m Metadata) Fill(d *models.TrackDraft) {
	if d.Album == "" {
		d.Album = m.Album
	}
	if d.Genre == "" {
		d.Genre = m.Genre
	}
	if d.Duration == "" && m.Duration > 0 {
		d.Duration = shared.FormatDuration(m.Duration)
	}
}
