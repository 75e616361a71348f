package media

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/desertthunder/sonic57/internal/shared"
)

// EncodeDataURI embeds data as a base64 data URI.
func EncodeDataURI(contentType string, data []byte) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a data URI into its media type and payload.
// Both base64 and percent-encoded payloads are accepted.
func DecodeDataURI(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		rest, ok = strings.CutPrefix(s, "DATA:")
	}
	if !ok {
		return "", nil, fmt.Errorf("%w: not a data URI", shared.ErrInvalidInput)
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: data URI has no payload", shared.ErrInvalidInput)
	}

	isBase64 := false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		meta, isBase64 = m, true
	}
	contentType := meta
	if contentType == "" {
		contentType = "text/plain;charset=US-ASCII"
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: bad base64 payload: %v", shared.ErrInvalidInput, err)
		}
		return contentType, data, nil
	}

	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: bad data URI payload: %v", shared.ErrInvalidInput, err)
	}
	return contentType, []byte(decoded), nil
}

// SniffContentType guesses a media type from audio magic bytes, then the
// file extension, then generic content sniffing.
func SniffContentType(name string, data []byte) string {
	switch sniffFormat(data) {
	case formatMP3:
		return "audio/mpeg"
	case formatWAV:
		return "audio/wav"
	case formatFLAC:
		return "audio/flac"
	}
	if ext := filepath.Ext(name); ext != "" {
		if ct := mime.TypeByExtension(strings.ToLower(ext)); ct != "" {
			return ct
		}
	}
	return http.DetectContentType(data)
}

// ExtensionFor returns a file extension for contentType, or "" when unknown.
func ExtensionFor(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	switch strings.TrimSpace(base) {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/flac", "audio/x-flac":
		return ".flac"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	if exts, err := mime.ExtensionsByType(base); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
