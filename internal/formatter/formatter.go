// package formatter exports track lists to CSV, Markdown, plain text, and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/shared"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// Formats lists the accepted values of [ParseFormat].
var Formats = []Format{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// ParseFormat accepts a format name or common alias ("md", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// Ext is the file extension written for f.
func (f Format) Ext() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return ".json"
	}
}

// Export is a named list of tracks, such as the catalog or the library.
type Export struct {
	Name   string         `json:"name"`
	Tracks []models.Track `json:"tracks"`
}

// ExportToCSV converts an Export to CSV with columns: ID, Title, Artist, Album, Duration, Genre, Cover, Audio
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Duration", "Genre", "Cover", "Audio"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range export.Tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			track.Album,
			track.Duration,
			track.Genre,
			linkOrEmbedded(track.Cover),
			linkOrEmbedded(track.AudioURL),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a track table followed by a per-genre count.
func ExportToMarkdown(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Name)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(export.Tracks))

	if len(export.Tracks) == 0 {
		buf.WriteString("_No tracks._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Title | Artist | Album | Genre | Duration |\n")
	buf.WriteString("|---|-------|--------|-------|-------|----------|\n")
	for i, track := range export.Tracks {
		fmt.Fprintf(&buf, "| %d | %s | %s | %s | %s | %s |\n",
			i+1,
			mdEscape(track.Title),
			mdEscape(track.Artist),
			mdEscape(track.Album),
			mdEscape(track.Genre),
			track.Duration,
		)
	}

	buf.WriteString("\n## Genres\n\n")
	for _, gc := range GenreCounts(export.Tracks) {
		fmt.Fprintf(&buf, "- %s: %d\n", gc.Genre, gc.Count)
	}

	return buf.Bytes(), nil
}

// ExportToText converts an Export to plain text format
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", export.Name)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(export.Tracks))

	for i, track := range export.Tracks {
		line := fmt.Sprintf("%d. %s - %s", i+1, track.Artist, track.Title)
		if track.Duration != "" {
			line += fmt.Sprintf(" [%s]", track.Duration)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// ExportToJSON encodes the export with indentation.
func ExportToJSON(export *Export) ([]byte, error) {
	if export.Tracks == nil {
		export = &Export{Name: export.Name, Tracks: []models.Track{}}
	}
	return shared.MarshalJSON(export, true)
}

// Encode renders export in format.
func Encode(export *Export, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	case FormatJSON:
		return ExportToJSON(export)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// Write renders export to w.
func Write(w io.Writer, export *Export, format Format) error {
	data, err := Encode(export, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// WriteExport renders export to path, creating parent directories.
//
// Defaults to {name}{ext} in the working directory when path is empty.
func WriteExport(export *Export, format Format, path string) (string, error) {
	if path == "" {
		path = slug(export.Name) + format.Ext()
	}

	data, err := Encode(export, format)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// GenreCount is one row of a genre summary.
type GenreCount struct {
	Genre string
	Count int
}

// GenreCounts tallies tracks per genre in first-seen order.
func GenreCounts(tracks []models.Track) []GenreCount {
	var out []GenreCount
	idx := map[string]int{}
	for _, t := range tracks {
		g := t.Genre
		if g == "" {
			g = models.UnknownGenre
		}
		if i, ok := idx[g]; ok {
			out[i].Count++
			continue
		}
		idx[g] = len(out)
		out = append(out, GenreCount{Genre: g, Count: 1})
	}
	return out
}

// linkOrEmbedded keeps links and replaces data URIs with a short marker.
func linkOrEmbedded(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "data:") {
		meta, _, _ := strings.Cut(s[len("data:"):], ",")
		ct, _, _ := strings.Cut(meta, ";")
		return "embedded:" + ct
	}
	return s
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "tracks"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}
