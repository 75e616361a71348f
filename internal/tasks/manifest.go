package tasks

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/shared"
)

// ManifestColumns are the recognized header names of an import manifest.
// Columns may appear in any order; title, artist, cover and audio are required.
var ManifestColumns = []string{"title", "artist", "album", "genre", "duration", "cover", "audio"}

// ParseManifest reads a CSV manifest with a header row into drafts. Relative
// file paths in the cover and audio columns are resolved against baseDir.
func ParseManifest(r io.Reader, baseDir string) ([]models.TrackDraft, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: manifest is empty", shared.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	cols := make(map[string]int, len(header))
	for idx, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = idx
	}
	for _, req := range []string{"title", "artist", "cover", "audio"} {
		if _, ok := cols[req]; !ok {
			return nil, fmt.Errorf("%w: manifest missing %q column", shared.ErrInvalidInput, req)
		}
	}

	field := func(rec []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}

	var drafts []models.TrackDraft
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", shared.ErrInvalidInput, line, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}

		drafts = append(drafts, models.TrackDraft{
			Title:    field(rec, "title"),
			Artist:   field(rec, "artist"),
			Album:    field(rec, "album"),
			Genre:    field(rec, "genre"),
			Duration: field(rec, "duration"),
			Cover:    manifestRef(field(rec, "cover"), baseDir),
			Audio:    manifestRef(field(rec, "audio"), baseDir),
		})
	}
	return drafts, nil
}

// ParseManifestFile opens path and parses it relative to its directory.
func ParseManifestFile(path string) ([]models.TrackDraft, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	return ParseManifest(f, filepath.Dir(path))
}

func manifestRef(s, baseDir string) models.MediaRef {
	ref := models.ParseMediaRef(s)
	if ref.Kind == models.MediaFile && baseDir != "" && !filepath.IsAbs(ref.Value) {
		ref.Value = filepath.Join(baseDir, ref.Value)
	}
	return ref
}
