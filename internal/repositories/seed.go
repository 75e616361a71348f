package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/sonic57/internal/models"
)

const (
	coverBase = "https://images.unsplash.com/photo-"
	coverOpts = "?auto=format&fit=crop&q=80&w=800"
	audioBase = "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-"
)

// SeedResult describes what [TrackRepository.Seed] did.
type SeedResult struct {
	Seeded bool
	Count  int
}

// DefaultCatalog returns the fixed starter set used to seed an empty catalog.
func DefaultCatalog() []models.CreateTrackRequest {
	type entry struct {
		title, artist, album, duration, genre, photo string
	}

	entries := []entry{
		{"SILVER VOID", "Chrome Echo", "Reflections", "06:12", "Techno", "1614613535308-eb5fbd3d2c17"},
		{"NEON DUST", "Digital Noir", "Lost Cities", "07:05", "Synthwave", "1557683316-973673baf926"},
		{"BRUTALIST BEAT", "Concrete Jungle", "Structure", "05:40", "IDM", "1470225620780-dba8ba36b745"},
		{"MONOCHROME", "Void Walker", "Atmosphere", "02:58", "Ambient", "1493225255756-d9584f8606e9"},
		{"KINETIC FLOW", "Prism", "Velocity", "04:10", "Techno", "1511379938547-c1f69419868d"},
		{"ORBITAL", "Luna", "Tides", "03:55", "Deep House", "1451187580459-43490279c0fa"},
		{"STATIC DREAMS", "Glitch Mobius", "Error Code", "04:40", "Experimental", "1508700115892-45ecd05ae2ad"},
		{"ECHO CHAMBER", "Resonance", "Acoustics", "06:15", "Minimal", "1534723452862-4c874018d66d"},
		{"PULSE WIDTH", "Oscillator", "Synthesize", "03:20", "IDM", "1516280440614-37939bbacd81"},
		{"WHITE NOISE", "Null Set", "Zero", "07:05", "Noise", "1550684848-fac1c5b4e853"},
	}

	catalog := make([]models.CreateTrackRequest, len(entries))
	for i, e := range entries {
		catalog[i] = models.CreateTrackRequest{
			Title:    e.title,
			Artist:   e.artist,
			Album:    e.album,
			Duration: e.duration,
			Cover:    coverBase + e.photo + coverOpts,
			AudioURL: fmt.Sprintf("%s%d.mp3", audioBase, i%3+1),
			Genre:    e.genre,
		}
	}
	return catalog
}

// Seed inserts [DefaultCatalog] when the tracks table is empty.
// A non-empty table is left untouched and its current count is reported.
func (r *TrackRepository) Seed(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks`).Scan(&result.Count); err != nil {
			return storageErr("failed to count tracks", err)
		}
		if result.Count > 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO tracks (title, artist, album, duration, cover, audio_src, genre)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return storageErr("failed to prepare seed insert", err)
		}
		defer stmt.Close()

		for _, t := range DefaultCatalog() {
			if _, err := stmt.ExecContext(ctx, t.Title, t.Artist, t.Album, t.Duration, t.Cover, t.AudioURL, t.Genre); err != nil {
				return storageErr("failed to insert seed track "+t.Title, err)
			}
		}

		result.Seeded = true
		result.Count = len(DefaultCatalog())
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
