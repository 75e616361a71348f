package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/sonic57/internal/library"
	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/playback"
	"github.com/desertthunder/sonic57/internal/shared"
	"github.com/desertthunder/sonic57/internal/tasks"
)

// CatalogSource is the remote catalog. [catalog.Client] implements it.
type CatalogSource interface {
	List(ctx context.Context) ([]models.Track, error)
	Create(ctx context.Context, req models.CreateTrackRequest) (*models.Track, error)
	Delete(ctx context.Context, id string) error
	Seed(ctx context.Context) (*models.MessageResponse, error)
}

// Options wires an [App]. Cache and Resolver are optional: without a cache
// a failed fetch starts with an empty catalog, and without a resolver
// ingestion reports [shared.ErrServiceUnavailable].
type Options struct {
	Catalog       CatalogSource
	Library       *library.Store
	Cache         *library.CatalogCache
	Transport     *playback.Transport
	Resolver      tasks.MediaResolver
	Meter         func(field string, ref models.MediaRef) io.Writer
	PruneOnDelete bool
	Logger        *log.Logger
}

// App holds the in-memory catalog (newest first) and a snapshot of the
// library alongside the stores they came from.
type App struct {
	catalog   CatalogSource
	library   *library.Store
	cache     *library.CatalogCache
	transport *playback.Transport
	ingestor  *tasks.Ingestor
	prune     bool
	logger    *log.Logger

	mu     sync.RWMutex
	tracks []models.Track
	lib    []models.Track
}

func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	a := &App{
		catalog:   opts.Catalog,
		library:   opts.Library,
		cache:     opts.Cache,
		transport: opts.Transport,
		prune:     opts.PruneOnDelete,
		logger:    logger.With("component", "app"),
		tracks:    []models.Track{},
		lib:       []models.Track{},
	}

	a.ingestor = tasks.NewIngestor(tasks.IngestorOptions{
		Creator:  opts.Catalog,
		Resolver: opts.Resolver,
		Meter:    opts.Meter,
		Logger:   logger,
	})
	return a
}

// Start loads the catalog and the library concurrently and returns once both
// are in memory.
//
// A failed catalog fetch is not fatal. The cached catalog is used instead and
// the fetch error is returned wrapped in [shared.ErrSyncFailed] so the caller
// can surface it while carrying on. A library failure is fatal.
//
// The first catalog track is cued, paused, once loading finishes.
func (a *App) Start(ctx context.Context) error {
	if err := a.library.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize library: %w", err)
	}

	var (
		remote   []models.Track
		lib      []models.Track
		fetchErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tracks, err := a.catalog.List(gctx)
		if err != nil {
			fetchErr = err
			return nil
		}
		remote = tracks
		return nil
	})
	g.Go(func() error {
		tracks, err := a.library.List(gctx)
		if err != nil {
			return fmt.Errorf("load library: %w", err)
		}
		lib = tracks
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	var syncErr error
	if fetchErr != nil {
		syncErr = syncFailed(fetchErr)
		a.logger.Warn("catalog fetch failed, using cache", "err", fetchErr)
		remote = a.loadCache(ctx)
	} else {
		a.saveCache(ctx, remote)
	}

	a.mu.Lock()
	a.tracks = nonNil(remote)
	a.lib = nonNil(lib)
	tracks := slices.Clone(a.tracks)
	a.mu.Unlock()

	a.transport.SetCatalog(tracks)
	if len(tracks) > 0 {
		a.transport.Cue(tracks[0])
	}

	a.logger.Info("started", "tracks", len(tracks), "library", len(lib))
	return syncErr
}

// Refresh refetches the catalog. On failure the in-memory catalog is kept.
func (a *App) Refresh(ctx context.Context) error {
	tracks, err := a.catalog.List(ctx)
	if err != nil {
		return syncFailed(err)
	}
	a.setTracks(ctx, tracks)
	return nil
}

// Tracks returns a snapshot of the catalog, newest first.
func (a *App) Tracks() []models.Track {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.tracks)
}

// Library returns a snapshot of the library as last loaded or changed.
func (a *App) Library() []models.Track {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.lib)
}

// InLibrary reports whether id is in the library snapshot.
func (a *App) InLibrary(id string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.ContainsFunc(a.lib, func(t models.Track) bool { return t.ID == id })
}

// Find returns the catalog track with id, falling back to the library.
func (a *App) Find(id string) (models.Track, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, set := range [][]models.Track{a.tracks, a.lib} {
		if i := slices.IndexFunc(set, func(t models.Track) bool { return t.ID == id }); i >= 0 {
			return set[i], true
		}
	}
	return models.Track{}, false
}

// Featured returns the newest catalog track.
func (a *App) Featured() (models.Track, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if len(a.tracks) == 0 {
		return models.Track{}, false
	}
	return a.tracks[0], true
}

// Genres lists distinct catalog genres in first-seen order.
func (a *App) Genres() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	seen := map[string]bool{}
	genres := []string{}
	for _, t := range a.tracks {
		if !seen[t.Genre] {
			seen[t.Genre] = true
			genres = append(genres, t.Genre)
		}
	}
	return genres
}

// TracksByGenre filters the catalog, keeping its order.
func (a *App) TracksByGenre(genre string) []models.Track {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := []models.Track{}
	for _, t := range a.tracks {
		if t.Genre == genre {
			out = append(out, t)
		}
	}
	return out
}

// Transport exposes the playback transport for controls beyond Select.
func (a *App) Transport() *playback.Transport { return a.transport }

// Select starts track playing.
func (a *App) Select(ctx context.Context, track models.Track) error {
	return a.transport.Select(ctx, track)
}

// AddToLibrary stores a copy of track. Adding a track already present is a no-op.
func (a *App) AddToLibrary(ctx context.Context, track models.Track) (bool, error) {
	added, err := a.library.Add(ctx, track)
	if err != nil {
		return false, err
	}
	if added {
		a.reloadLibrary(ctx)
	}
	return added, nil
}

// RemoveFromLibrary drops id from the library.
func (a *App) RemoveFromLibrary(ctx context.Context, id string) (bool, error) {
	removed, err := a.library.Remove(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		a.reloadLibrary(ctx)
	}
	return removed, nil
}

// Ingest creates a track from draft, puts it at the front of the catalog,
// and adds it to the library. When the library write fails the created
// track is still returned alongside the error.
func (a *App) Ingest(ctx context.Context, draft models.TrackDraft, progress chan<- tasks.ProgressUpdate) (*models.Track, error) {
	tr, err := a.ingestor.Ingest(ctx, draft, progress)
	if err != nil {
		return nil, err
	}

	a.prepend(ctx, *tr)
	if _, err := a.AddToLibrary(ctx, *tr); err != nil {
		return tr, fmt.Errorf("track %s created but not added to library: %w", tr.ID, err)
	}
	return tr, nil
}

// Import ingests drafts in bulk. Each created track is prepended in input
// order and added to the library.
func (a *App) Import(
	ctx context.Context,
	progress chan<- tasks.ProgressUpdate,
	drafts []models.TrackDraft,
	opts tasks.BulkImportOpts,
) (*tasks.BulkImportResult, error) {
	res, err := a.ingestor.BulkImport(ctx, progress, drafts, opts)
	if res == nil {
		return nil, err
	}

	var libErrs []error
	for _, r := range res.Results {
		if r.Track == nil {
			continue
		}
		a.prepend(ctx, *r.Track)
		if _, addErr := a.library.Add(ctx, *r.Track); addErr != nil {
			libErrs = append(libErrs, addErr)
		}
	}
	a.reloadLibrary(ctx)

	if len(libErrs) > 0 {
		return res, errors.Join(append([]error{err}, libErrs...)...)
	}
	return res, err
}

// DeleteTrack removes id from the remote catalog, then from memory. Playback
// stops when the deleted track is current. With pruning enabled it also
// leaves the library.
func (a *App) DeleteTrack(ctx context.Context, id string) error {
	if err := a.catalog.Delete(ctx, id); err != nil {
		return err
	}

	a.mu.Lock()
	a.tracks = slices.DeleteFunc(a.tracks, func(t models.Track) bool { return t.ID == id })
	tracks := slices.Clone(a.tracks)
	a.mu.Unlock()

	a.transport.SetCatalog(tracks)
	if snap := a.transport.Snapshot(); snap.Track != nil && snap.Track.ID == id {
		a.transport.Stop()
	}
	a.saveCache(ctx, tracks)

	if a.prune {
		if _, err := a.RemoveFromLibrary(ctx, id); err != nil {
			return fmt.Errorf("track %s deleted but still in library: %w", id, err)
		}
	}

	a.logger.Info("deleted track", "id", id)
	return nil
}

// Seed asks the service to seed an empty catalog and then refetches it.
func (a *App) Seed(ctx context.Context) (*models.MessageResponse, error) {
	msg, err := a.catalog.Seed(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.Refresh(ctx); err != nil {
		return msg, err
	}
	return msg, nil
}

// Close stops playback.
func (a *App) Close() error {
	return a.transport.Close()
}

func (a *App) setTracks(ctx context.Context, tracks []models.Track) {
	tracks = nonNil(tracks)

	a.mu.Lock()
	a.tracks = slices.Clone(tracks)
	a.mu.Unlock()

	a.transport.SetCatalog(tracks)
	a.saveCache(ctx, tracks)
}

func (a *App) prepend(ctx context.Context, tr models.Track) {
	a.mu.Lock()
	rest := slices.DeleteFunc(a.tracks, func(t models.Track) bool { return t.ID == tr.ID })
	a.tracks = append([]models.Track{tr}, rest...)
	tracks := slices.Clone(a.tracks)
	a.mu.Unlock()

	a.transport.SetCatalog(tracks)
	a.saveCache(ctx, tracks)
}

func (a *App) reloadLibrary(ctx context.Context) {
	lib, err := a.library.List(ctx)
	if err != nil {
		a.logger.Warn("failed to reload library", "err", err)
		return
	}
	a.mu.Lock()
	a.lib = lib
	a.mu.Unlock()
}

func (a *App) loadCache(ctx context.Context) []models.Track {
	if a.cache == nil {
		return nil
	}
	tracks, err := a.cache.Load(ctx)
	if err != nil {
		a.logger.Warn("failed to read catalog cache", "err", err)
		return nil
	}
	return tracks
}

func (a *App) saveCache(ctx context.Context, tracks []models.Track) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Save(ctx, tracks); err != nil {
		a.logger.Warn("failed to write catalog cache", "err", err)
	}
}

func syncFailed(err error) error {
	if errors.Is(err, shared.ErrSyncFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", shared.ErrSyncFailed, err)
}

func nonNil(tracks []models.Track) []models.Track {
	if tracks == nil {
		return []models.Track{}
	}
	return tracks
}
