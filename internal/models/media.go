package models

import (
	"path/filepath"
	"strings"
)

// MediaKind classifies where a media reference points.
type MediaKind int

const (
	MediaNone MediaKind = iota
	MediaURL
	MediaDataURI
	MediaFile
	MediaBinary
)

func (k MediaKind) String() string {
	switch k {
	case MediaNone:
		return "none"
	case MediaURL:
		return "url"
	case MediaDataURI:
		return "data-uri"
	case MediaFile:
		return "file"
	case MediaBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// MediaRef is a cover or audio source supplied at ingestion: either a link
// or an opaque binary (a data URI, a local file, or bytes already in memory).
type MediaRef struct {
	Kind        MediaKind
	Value       string
	Data        []byte
	ContentType string
}

// ParseMediaRef classifies s. An empty string yields the zero ref.
func ParseMediaRef(s string) MediaRef {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	switch {
	case s == "":
		return MediaRef{}
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return MediaRef{Kind: MediaURL, Value: s}
	case strings.HasPrefix(lower, "data:"):
		return MediaRef{Kind: MediaDataURI, Value: s}
	default:
		return MediaRef{Kind: MediaFile, Value: s}
	}
}

// BinaryRef wraps in-memory bytes, such as an uploaded file.
func BinaryRef(name, contentType string, data []byte) MediaRef {
	return MediaRef{Kind: MediaBinary, Value: name, Data: data, ContentType: contentType}
}

// IsZero reports whether no media was supplied.
func (m MediaRef) IsZero() bool {
	return m.Kind == MediaNone
}

// IsBinary reports whether the ref carries bytes rather than a link.
func (m MediaRef) IsBinary() bool {
	return m.Kind == MediaDataURI || m.Kind == MediaFile || m.Kind == MediaBinary
}

// Name is a human label for the ref (file base name or URL).
func (m MediaRef) Name() string {
	switch m.Kind {
	case MediaFile, MediaBinary:
		return filepath.Base(m.Value)
	case MediaDataURI:
		return "embedded"
	default:
		return m.Value
	}
}
