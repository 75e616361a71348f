package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/sonic57/internal/library"
	"github.com/desertthunder/sonic57/internal/media"
	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/playback"
	"github.com/desertthunder/sonic57/internal/repositories"
	"github.com/desertthunder/sonic57/internal/shared"
	"github.com/desertthunder/sonic57/internal/storage"
	"github.com/desertthunder/sonic57/internal/tasks"
	testutils "github.com/desertthunder/sonic57/internal/testing"
)

func track(id, genre string) models.Track {
	return models.Track{
		ID:       id,
		Title:    "Track " + id,
		Artist:   "Artist",
		Genre:    genre,
		AudioURL: "https://cdn.example.com/" + id + ".mp3",
	}
}

type fixture struct {
	app     *App
	catalog *testutils.FakeCatalog
	backend *playback.MockBackend
	kv      storage.Store
	lib     *library.Store
	cache   *library.CatalogCache
}

func newFixture(t *testing.T, cat *testutils.FakeCatalog, defaults []models.Track, mutate ...func(*Options)) *fixture {
	t.Helper()

	kv := storage.NewMemoryStore()
	backend := playback.NewMockBackend()
	f := &fixture{
		catalog: cat,
		backend: backend,
		kv:      kv,
		lib:     library.NewStore(kv, library.Options{Defaults: defaults}),
		cache:   library.NewCatalogCache(kv),
	}

	opts := Options{
		Catalog:   cat,
		Library:   f.lib,
		Cache:     f.cache,
		Transport: playback.NewTransport(backend, playback.Options{Volume: playback.DefaultVolume}),
		Resolver:  media.NewResolver(media.ResolverOptions{}),
	}
	for _, m := range mutate {
		m(&opts)
	}
	f.app = New(opts)
	t.Cleanup(func() { f.app.Close() })
	return f
}

func TestStart(t *testing.T) {
	ctx := context.Background()

	t.Run("joins catalog and library and cues the newest track", func(t *testing.T) {
		cat := testutils.NewFakeCatalog(track("3", "Techno"), track("2", "IDM"), track("1", "Techno"))
		f := newFixture(t, cat, library.DefaultTracks(library.FirstRunSize))

		require.NoError(t, f.app.Start(ctx))

		assert.Len(t, f.app.Tracks(), 3)
		assert.Len(t, f.app.Library(), 3)

		snap := f.app.Transport().Snapshot()
		require.NotNil(t, snap.Track)
		assert.Equal(t, "3", snap.Track.ID)
		assert.Equal(t, playback.LoadedPaused, snap.State)
		assert.Empty(t, f.backend.Opened(), "cue must not load")

		cached, err := f.cache.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, cached, 3)
	})

	t.Run("fetch failure falls back to cache", func(t *testing.T) {
		cat := testutils.NewFakeCatalog()
		cat.ListErr = fmt.Errorf("%w: connection refused", shared.ErrTimeout)
		f := newFixture(t, cat, nil)
		require.NoError(t, f.cache.Save(ctx, []models.Track{track("9", "Ambient")}))

		err := f.app.Start(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrSyncFailed)
		assert.ErrorIs(t, err, shared.ErrTimeout)

		tracks := f.app.Tracks()
		require.Len(t, tracks, 1)
		assert.Equal(t, "9", tracks[0].ID)
	})

	t.Run("fetch failure with no cache leaves an empty catalog", func(t *testing.T) {
		cat := testutils.NewFakeCatalog()
		cat.ListErr = shared.ErrSyncFailed
		f := newFixture(t, cat, nil)

		err := f.app.Start(ctx)
		assert.ErrorIs(t, err, shared.ErrSyncFailed)
		assert.NotNil(t, f.app.Tracks())
		assert.Empty(t, f.app.Tracks())
		assert.Equal(t, playback.Idle, f.app.Transport().Snapshot().State)

		_, ok := f.app.Featured()
		assert.False(t, ok)
	})

	t.Run("library failure is fatal", func(t *testing.T) {
		kv := testutils.NewFlakyStore()
		kv.FailWrites(shared.ErrStorage)
		a := New(Options{
			Catalog:   testutils.NewFakeCatalog(),
			Library:   library.NewStore(kv, library.Options{}),
			Transport: playback.NewTransport(playback.NewMockBackend(), playback.Options{}),
		})

		err := a.Start(ctx)
		assert.ErrorIs(t, err, shared.ErrStorage)
	})
}

func TestGenres(t *testing.T) {
	cat := testutils.NewFakeCatalog(
		track("5", "IDM"),
		track("4", "Techno"),
		track("3", "IDM"),
		track("2", "Ambient"),
		track("1", "Techno"),
	)
	f := newFixture(t, cat, nil)
	require.NoError(t, f.app.Start(context.Background()))

	assert.Equal(t, []string{"IDM", "Techno", "Ambient"}, f.app.Genres())

	idm := f.app.TracksByGenre("IDM")
	require.Len(t, idm, 2)
	assert.Equal(t, "5", idm[0].ID)
	assert.Equal(t, "3", idm[1].ID)

	assert.Empty(t, f.app.TracksByGenre("Polka"))

	featured, ok := f.app.Featured()
	require.True(t, ok)
	assert.Equal(t, "5", featured.ID)
}

func TestLibraryOps(t *testing.T) {
	ctx := context.Background()
	cat := testutils.NewFakeCatalog(track("2", "IDM"), track("1", "IDM"))
	f := newFixture(t, cat, nil)
	require.NoError(t, f.app.Start(ctx))

	added, err := f.app.AddToLibrary(ctx, track("1", "IDM"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = f.app.AddToLibrary(ctx, track("1", "IDM"))
	require.NoError(t, err)
	assert.False(t, added)

	assert.True(t, f.app.InLibrary("1"))
	assert.Len(t, f.app.Library(), 1)

	removed, err := f.app.RemoveFromLibrary(ctx, "1")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, f.app.InLibrary("1"))

	removed, err = f.app.RemoveFromLibrary(ctx, "1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestConcurrentAdd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutils.NewFakeCatalog(track("1", "IDM")), nil)
	require.NoError(t, f.app.Start(ctx))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.app.AddToLibrary(ctx, track("1", "IDM"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	lib, err := f.lib.List(ctx)
	require.NoError(t, err)
	assert.Len(t, lib, 1)
}

func TestIngest(t *testing.T) {
	ctx := context.Background()

	draft := models.TrackDraft{
		Title:  "New Signal",
		Artist: "Transmitter",
		Genre:  "Drone",
		Cover:  models.ParseMediaRef("https://img.example.com/c.jpg"),
		Audio:  models.ParseMediaRef("https://cdn.example.com/n.mp3"),
	}

	t.Run("created track leads the catalog and joins the library", func(t *testing.T) {
		cat := testutils.NewFakeCatalog(track("1", "IDM"))
		f := newFixture(t, cat, nil)
		require.NoError(t, f.app.Start(ctx))

		tr, err := f.app.Ingest(ctx, draft, nil)
		require.NoError(t, err)
		assert.Equal(t, "2", tr.ID)

		tracks := f.app.Tracks()
		require.Len(t, tracks, 2)
		assert.Equal(t, "2", tracks[0].ID)
		assert.True(t, f.app.InLibrary("2"))

		cached, err := f.cache.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "2", cached[0].ID)
	})

	t.Run("missing media never reaches the catalog", func(t *testing.T) {
		cat := testutils.NewFakeCatalog()
		f := newFixture(t, cat, nil)
		require.NoError(t, f.app.Start(ctx))

		bad := draft
		bad.Cover = models.MediaRef{}
		_, err := f.app.Ingest(ctx, bad, nil)
		assert.ErrorIs(t, err, shared.ErrMissingMedia)
		assert.Zero(t, cat.Creates)
		assert.Empty(t, f.app.Tracks())
		assert.Empty(t, f.app.Library())
	})

	t.Run("create failure leaves state untouched", func(t *testing.T) {
		cat := testutils.NewFakeCatalog(track("1", "IDM"))
		cat.CreateErr = shared.ErrServiceUnavailable
		f := newFixture(t, cat, nil)
		require.NoError(t, f.app.Start(ctx))

		_, err := f.app.Ingest(ctx, draft, nil)
		assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
		assert.Len(t, f.app.Tracks(), 1)
		assert.Empty(t, f.app.Library())
	})

	t.Run("no resolver", func(t *testing.T) {
		f := newFixture(t, testutils.NewFakeCatalog(), nil, func(o *Options) { o.Resolver = nil })
		_, err := f.app.Ingest(ctx, draft, nil)
		assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	})
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	cat := testutils.NewFakeCatalog()
	f := newFixture(t, cat, nil)
	require.NoError(t, f.app.Start(ctx))

	drafts := make([]models.TrackDraft, 3)
	for i := range drafts {
		drafts[i] = models.TrackDraft{
			Title:  fmt.Sprintf("Import %d", i),
			Artist: "Batch",
			Cover:  models.ParseMediaRef("https://img.example.com/c.jpg"),
			Audio:  models.ParseMediaRef("https://cdn.example.com/a.mp3"),
		}
	}
	drafts[1].Artist = ""

	res, err := f.app.Import(ctx, nil, drafts, tasks.BulkImportOpts{NumWorkers: 2, RateLimit: 100})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Successful)
	assert.Equal(t, 1, res.Failed)

	tracks := f.app.Tracks()
	require.Len(t, tracks, 2)
	assert.Equal(t, "Import 2", tracks[0].Title)
	assert.Equal(t, "Import 0", tracks[1].Title)
	assert.Len(t, f.app.Library(), 2)
}

func TestDeleteTrack(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting the current track stops playback", func(t *testing.T) {
		cat := testutils.NewFakeCatalog(track("2", "IDM"), track("1", "IDM"))
		f := newFixture(t, cat, nil)
		require.NoError(t, f.app.Start(ctx))

		cur, ok := f.app.Find("2")
		require.True(t, ok)
		require.NoError(t, f.app.Select(ctx, cur))
		require.Equal(t, playback.LoadedPlaying, f.app.Transport().Snapshot().State)

		require.NoError(t, f.app.DeleteTrack(ctx, "2"))

		assert.Equal(t, []string{"2"}, cat.Deletes)
		assert.Equal(t, playback.Idle, f.app.Transport().Snapshot().State)
		assert.Zero(t, f.backend.Active())
		require.Len(t, f.app.Tracks(), 1)
		assert.Equal(t, "1", f.app.Tracks()[0].ID)
	})

	t.Run("deleting another track keeps playing", func(t *testing.T) {
		cat := testutils.NewFakeCatalog(track("2", "IDM"), track("1", "IDM"))
		f := newFixture(t, cat, nil)
		require.NoError(t, f.app.Start(ctx))
		require.NoError(t, f.app.Select(ctx, track("2", "IDM")))

		require.NoError(t, f.app.DeleteTrack(ctx, "1"))
		assert.Equal(t, playback.LoadedPlaying, f.app.Transport().Snapshot().State)

		// the deleted track is gone from navigation
		require.NoError(t, f.app.Transport().Next(ctx))
		assert.Equal(t, "2", f.app.Transport().Snapshot().Track.ID)
	})

	t.Run("library keeps its copy unless pruning", func(t *testing.T) {
		cat := testutils.NewFakeCatalog(track("1", "IDM"))
		f := newFixture(t, cat, nil)
		require.NoError(t, f.app.Start(ctx))
		_, err := f.app.AddToLibrary(ctx, track("1", "IDM"))
		require.NoError(t, err)

		require.NoError(t, f.app.DeleteTrack(ctx, "1"))
		assert.True(t, f.app.InLibrary("1"))

		cat2 := testutils.NewFakeCatalog(track("1", "IDM"))
		g := newFixture(t, cat2, nil, func(o *Options) { o.PruneOnDelete = true })
		require.NoError(t, g.app.Start(ctx))
		_, err = g.app.AddToLibrary(ctx, track("1", "IDM"))
		require.NoError(t, err)

		require.NoError(t, g.app.DeleteTrack(ctx, "1"))
		assert.False(t, g.app.InLibrary("1"))
	})

	t.Run("remote failure changes nothing", func(t *testing.T) {
		cat := testutils.NewFakeCatalog(track("1", "IDM"))
		cat.DeleteErr = shared.ErrUnauthorized
		f := newFixture(t, cat, nil)
		require.NoError(t, f.app.Start(ctx))

		err := f.app.DeleteTrack(ctx, "1")
		assert.True(t, errors.Is(err, shared.ErrUnauthorized))
		assert.Len(t, f.app.Tracks(), 1)
	})
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	cat := testutils.NewFakeCatalog()
	cat.SeedWith = repositories.DefaultCatalog()
	f := newFixture(t, cat, nil)
	require.NoError(t, f.app.Start(ctx))
	require.Empty(t, f.app.Tracks())

	msg, err := f.app.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.MsgSeeded, msg.Message)

	tracks := f.app.Tracks()
	require.Len(t, tracks, 10)
	assert.Equal(t, "WHITE NOISE", tracks[0].Title)

	msg, err = f.app.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.MsgAlreadySeeded, msg.Message)
	assert.Equal(t, 10, msg.Count)
	assert.Len(t, f.app.Tracks(), 10)
}

func TestRefreshFailureKeepsCatalog(t *testing.T) {
	ctx := context.Background()
	cat := testutils.NewFakeCatalog(track("1", "IDM"))
	f := newFixture(t, cat, nil)
	require.NoError(t, f.app.Start(ctx))

	cat.ListErr = errors.New("boom")
	err := f.app.Refresh(ctx)
	assert.ErrorIs(t, err, shared.ErrSyncFailed)
	assert.Len(t, f.app.Tracks(), 1)
}
