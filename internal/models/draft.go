package models

import (
	"strings"

	"github.com/desertthunder/sonic57/internal/shared"
)

// TrackDraft is an ingestion input: every Track field except the id, with
// cover and audio given as media refs.
type TrackDraft struct {
	Title    string
	Artist   string
	Album    string
	Duration string
	Genre    string
	Cover    MediaRef
	Audio    MediaRef
}

// Validate rejects drafts missing required text fields or either media ref.
// It runs before anything is written.
func (d TrackDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &FieldError{Field: "title", Err: shared.ErrMissingArgument}
	}
	if strings.TrimSpace(d.Artist) == "" {
		return &FieldError{Field: "artist", Err: shared.ErrMissingArgument}
	}
	if d.Cover.IsZero() {
		return &FieldError{Field: "cover", Err: shared.ErrMissingMedia}
	}
	if d.Audio.IsZero() {
		return &FieldError{Field: "audio", Err: shared.ErrMissingMedia}
	}
	return nil
}

// Request builds the create body once both refs resolve to storable strings.
// Title and artist go out exactly as entered.
func (d TrackDraft) Request(cover, audio string) CreateTrackRequest {
	return CreateTrackRequest{
		Title:    d.Title,
		Artist:   d.Artist,
		Album:    strings.TrimSpace(d.Album),
		Duration: strings.TrimSpace(d.Duration),
		Cover:    cover,
		AudioURL: audio,
		Genre:    strings.TrimSpace(d.Genre),
	}
}
