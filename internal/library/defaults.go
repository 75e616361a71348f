package library

import (
	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/repositories"
)

// FirstRunSize is how many starter tracks a brand new library receives.
const FirstRunSize = 3

// DefaultTracks returns the first n starter tracks with ids "1".."n", the
// same ids a freshly seeded catalog assigns them.
func DefaultTracks(n int) []models.Track {
	catalog := repositories.DefaultCatalog()
	n = max(0, min(n, len(catalog)))

	tracks := make([]models.Track, n)
	for i := range n {
		row := models.TrackRow{
			ID:       int64(i + 1),
			Title:    catalog[i].Title,
			Artist:   catalog[i].Artist,
			Album:    catalog[i].Album,
			Duration: catalog[i].Duration,
			Cover:    catalog[i].Cover,
			AudioSrc: catalog[i].AudioURL,
			Genre:    catalog[i].Genre,
		}
		tracks[i] = row.Track()
	}
	return tracks
}
