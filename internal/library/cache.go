package library

import (
	"context"
	"slices"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/storage"
)

// CatalogCache remembers the last catalog fetched from the API so the client
// has something to show when the server is unreachable.
type CatalogCache struct {
	kv storage.Store
}

func NewCatalogCache(kv storage.Store) *CatalogCache {
	return &CatalogCache{kv: kv}
}

// Load returns the cached catalog, or an empty slice if nothing was cached.
func (c *CatalogCache) Load(ctx context.Context) ([]models.Track, error) {
	return readTracks(ctx, c.kv, CatalogKey)
}

// Save replaces the cached catalog.
func (c *CatalogCache) Save(ctx context.Context, tracks []models.Track) error {
	if tracks == nil {
		tracks = []models.Track{}
	}
	return writeTracks(ctx, c.kv, CatalogKey, slices.Clone(tracks))
}
