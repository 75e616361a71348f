// Package library implements the durable personal collection ("vault") of track
// snapshots and the client-side catalog cache, both kept in a [storage.Store].
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/shared"
	"github.com/desertthunder/sonic57/internal/storage"
)

// KeyVersion suffixes every persisted key. Changing the on-disk format means
// bumping it so old documents are ignored rather than misread.
const KeyVersion = "v1"

const (
	LibraryKey = "sonic57.library." + KeyVersion
	CatalogKey = "sonic57.catalog." + KeyVersion
)

// Store is the persistent library. Entries are full [models.Track] copies,
// most recently added first, with at most one entry per id.
//
// All operations serialize on a mutex so concurrent Add calls for the same id
// can never both insert.
type Store struct {
	mu       sync.Mutex
	kv       storage.Store
	defaults []models.Track
	logger   *log.Logger
}

// Options configures a [Store].
type Options struct {
	// Defaults seed the library on first run. Nil leaves a new library empty.
	Defaults []models.Track
	Logger   *log.Logger
}

// NewStore binds a library to kv.
func NewStore(kv storage.Store, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{
		kv:       kv,
		defaults: slices.Clone(opts.Defaults),
		logger:   logger.With("component", "library"),
	}
}

// Initialize ensures the library document exists, seeding defaults the first
// time. Calling it again is a no-op.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.kv.Get(ctx, LibraryKey)
	if err == nil {
		return nil
	}
	if !errors.Is(err, shared.ErrKeyNotFound) {
		return err
	}

	seed := s.defaults
	if seed == nil {
		seed = []models.Track{}
	}
	s.logger.Info("initializing library", "seeded", len(seed))
	return s.write(ctx, seed)
}

// List returns a snapshot of the library, newest first.
func (s *Store) List(ctx context.Context) ([]models.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read(ctx)
}

// Contains reports whether id is in the library.
func (s *Store) Contains(ctx context.Context, id string) (bool, error) {
	tracks, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(tracks, id) >= 0, nil
}

// Add stores a copy of track at the front unless its id is already present,
// in which case the existing entry keeps its position. It reports whether
// anything was inserted.
func (s *Store) Add(ctx context.Context, track models.Track) (bool, error) {
	if track.ID == "" {
		return false, &models.FieldError{Field: "id", Err: shared.ErrMissingArgument}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tracks, err := s.read(ctx)
	if err != nil {
		return false, err
	}
	if indexOf(tracks, track.ID) >= 0 {
		return false, nil
	}

	next := make([]models.Track, 0, len(tracks)+1)
	next = append(next, track.Clone())
	next = append(next, tracks...)
	if err := s.write(ctx, next); err != nil {
		return false, err
	}

	s.logger.Debug("added to library", "id", track.ID, "title", track.Title)
	return true, nil
}

// Remove deletes the entry for id. An absent id leaves the stored document
// untouched and is not an error.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracks, err := s.read(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(tracks, id)
	if i < 0 {
		return false, nil
	}

	if err := s.write(ctx, slices.Delete(tracks, i, i+1)); err != nil {
		return false, err
	}

	s.logger.Debug("removed from library", "id", id)
	return true, nil
}

// read loads the document. A missing document reads as empty. Callers hold mu.
func (s *Store) read(ctx context.Context) ([]models.Track, error) {
	return readTracks(ctx, s.kv, LibraryKey)
}

// write replaces the document. Callers hold mu.
func (s *Store) write(ctx context.Context, tracks []models.Track) error {
	return writeTracks(ctx, s.kv, LibraryKey, tracks)
}

func readTracks(ctx context.Context, kv storage.Store, key string) ([]models.Track, error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, shared.ErrKeyNotFound) {
		return []models.Track{}, nil
	}
	if err != nil {
		return nil, err
	}

	var tracks []models.Track
	if err := json.Unmarshal(raw, &tracks); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", shared.ErrStorage, key, err)
	}
	if tracks == nil {
		tracks = []models.Track{}
	}
	return tracks, nil
}

func writeTracks(ctx context.Context, kv storage.Store, key string, tracks []models.Track) error {
	raw, err := json.Marshal(tracks)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", shared.ErrStorage, key, err)
	}
	if err := kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func indexOf(tracks []models.Track, id string) int {
	return slices.IndexFunc(tracks, func(t models.Track) bool { return t.ID == id })
}
