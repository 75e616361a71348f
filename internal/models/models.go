package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/sonic57/internal/shared"
)

// UnknownGenre is stored when a track is created without a genre.
const UnknownGenre = "Unknown"

// Track is a catalog entry as the client sees it.
//
// Tracks are never mutated in place; the library stores copies taken at add time.
type Track struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Cover    string `json:"cover"`
	AudioURL string `json:"audioUrl"`
	Duration string `json:"duration"`
	Genre    string `json:"genre"`
}

// Clone returns a snapshot copy of t.
func (t Track) Clone() Track { return t }

// Label formats the track for list rows and logs.
func (t Track) Label() string {
	return fmt.Sprintf("%s · %s", t.Title, t.Artist)
}

// TrackRow is the wire and table shape of a catalog record.
// The API names the audio column audio_src; the client calls it audioUrl.
type TrackRow struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Duration string `json:"duration"`
	Cover    string `json:"cover"`
	AudioSrc string `json:"audio_src"`
	Genre    string `json:"genre"`
}

// Track maps a row onto the client-facing record.
func (r TrackRow) Track() Track {
	genre := r.Genre
	if genre == "" {
		genre = UnknownGenre
	}
	return Track{
		ID:       strconv.FormatInt(r.ID, 10),
		Title:    r.Title,
		Artist:   r.Artist,
		Album:    r.Album,
		Cover:    r.Cover,
		AudioURL: r.AudioSrc,
		Duration: r.Duration,
		Genre:    genre,
	}
}

// TracksFromRows maps rows in order.
func TracksFromRows(rows []TrackRow) []Track {
	tracks := make([]Track, len(rows))
	for i, r := range rows {
		tracks[i] = r.Track()
	}
	return tracks
}

// CreateTrackRequest is the POST /api/tracks body.
type CreateTrackRequest struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Duration string `json:"duration"`
	Cover    string `json:"cover"`
	AudioURL string `json:"audioUrl"`
	Genre    string `json:"genre"`
}

// Validate checks the fields the catalog table requires.
func (r CreateTrackRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return &FieldError{Field: "title", Err: shared.ErrMissingArgument}
	}
	if strings.TrimSpace(r.Artist) == "" {
		return &FieldError{Field: "artist", Err: shared.ErrMissingArgument}
	}
	return nil
}

// WithDefaults fills optional fields the way the catalog stores them.
func (r CreateTrackRequest) WithDefaults() CreateTrackRequest {
	if r.Genre == "" {
		r.Genre = UnknownGenre
	}
	return r
}

// FieldError reports a validation failure on a single input field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
