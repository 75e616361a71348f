package playback

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/shared"
)

func catalog(n int) []models.Track {
	ids := []string{"a", "b", "c", "d", "e"}
	out := make([]models.Track, 0, n)
	for _, id := range ids[:n] {
		out = append(out, models.Track{ID: id, Title: "Track " + id, AudioURL: "mem://" + id})
	}
	return out
}

func newTransport(t *testing.T, autoAdvance bool) (*Transport, *MockBackend) {
	t.Helper()
	backend := NewMockBackend()
	tr := NewTransport(backend, Options{Volume: DefaultVolume, AutoAdvance: autoAdvance})
	t.Cleanup(func() { tr.Close() })
	return tr, backend
}

func TestTransport(t *testing.T) {
	ctx := context.Background()

	t.Run("starts idle", func(t *testing.T) {
		tr, _ := newTransport(t, false)
		snap := tr.Snapshot()
		assert.Equal(t, Idle, snap.State)
		assert.Nil(t, snap.Track)
		assert.False(t, snap.Playing)
		assert.InDelta(t, 0.8, snap.Volume, 1e-9)
	})

	t.Run("select loads and plays", func(t *testing.T) {
		tr, backend := newTransport(t, false)
		tracks := catalog(3)
		tr.SetCatalog(tracks)

		require.NoError(t, tr.Select(ctx, tracks[1]))

		snap := tr.Snapshot()
		assert.Equal(t, LoadedPlaying, snap.State)
		assert.Equal(t, "b", snap.Track.ID)
		assert.False(t, snap.Loading)
		require.NotNil(t, backend.Last())
		assert.True(t, backend.Last().Playing())
		assert.InDelta(t, 0.8, backend.Last().Volume(), 1e-9)
	})

	t.Run("reselecting the loaded track does not reopen it", func(t *testing.T) {
		tr, backend := newTransport(t, false)
		tracks := catalog(2)

		require.NoError(t, tr.Select(ctx, tracks[0]))
		require.NoError(t, tr.TogglePlay(ctx))
		require.NoError(t, tr.Select(ctx, tracks[0]))

		assert.Len(t, backend.Opened(), 1)
		assert.True(t, tr.Snapshot().Playing)
	})

	t.Run("only one stream stays open", func(t *testing.T) {
		tr, backend := newTransport(t, false)
		tracks := catalog(3)

		require.NoError(t, tr.Select(ctx, tracks[0]))
		require.NoError(t, tr.Select(ctx, tracks[1]))
		require.NoError(t, tr.Select(ctx, tracks[2]))

		assert.Equal(t, 1, backend.Active())
		assert.Equal(t, "mem://c", backend.Last().Src)
	})

	t.Run("stale load is discarded", func(t *testing.T) {
		tr, backend := newTransport(t, false)
		tracks := catalog(2)
		backend.Hold("mem://a")

		errs := make(chan error, 1)
		go func() { errs <- tr.Select(ctx, tracks[0]) }()
		require.Eventually(t, func() bool { return len(backend.Opened()) == 1 }, time.Second, 5*time.Millisecond)

		require.NoError(t, tr.Select(ctx, tracks[1]))
		backend.Release("mem://a")

		err := <-errs
		assert.ErrorIs(t, err, shared.ErrSuperseded)

		snap := tr.Snapshot()
		assert.Equal(t, "b", snap.Track.ID)
		assert.True(t, snap.Playing)
		assert.Equal(t, 1, backend.Active())
		for _, s := range backend.Streams() {
			if s.Src == "mem://a" {
				assert.True(t, s.Closed())
			}
		}
	})

	t.Run("load failure leaves track paused", func(t *testing.T) {
		tr, backend := newTransport(t, false)
		tracks := catalog(1)
		backend.Errs["mem://a"] = errors.New("boom")

		err := tr.Select(ctx, tracks[0])
		require.Error(t, err)

		snap := tr.Snapshot()
		assert.False(t, snap.Playing)
		assert.Equal(t, LoadedPaused, snap.State)
		assert.Equal(t, "a", snap.Track.ID)
	})

	t.Run("toggle without a track is a no-op", func(t *testing.T) {
		tr, backend := newTransport(t, false)
		require.NoError(t, tr.TogglePlay(ctx))
		assert.Equal(t, Idle, tr.Snapshot().State)
		assert.Empty(t, backend.Opened())
	})

	t.Run("toggle pauses and resumes", func(t *testing.T) {
		tr, backend := newTransport(t, false)
		tracks := catalog(1)
		require.NoError(t, tr.Select(ctx, tracks[0]))

		require.NoError(t, tr.TogglePlay(ctx))
		assert.Equal(t, LoadedPaused, tr.Snapshot().State)
		assert.False(t, backend.Last().Playing())

		require.NoError(t, tr.TogglePlay(ctx))
		assert.Equal(t, LoadedPlaying, tr.Snapshot().State)
		assert.True(t, backend.Last().Playing())
	})

	t.Run("cued track loads on first toggle", func(t *testing.T) {
		tr, backend := newTransport(t, false)
		tracks := catalog(2)
		tr.Cue(tracks[0])

		snap := tr.Snapshot()
		assert.Equal(t, LoadedPaused, snap.State)
		assert.Empty(t, backend.Opened())

		require.NoError(t, tr.TogglePlay(ctx))
		assert.Equal(t, []string{"mem://a"}, backend.Opened())
		assert.True(t, tr.Snapshot().Playing)
	})

	t.Run("stop clears the session", func(t *testing.T) {
		tr, backend := newTransport(t, false)
		require.NoError(t, tr.Select(ctx, catalog(1)[0]))
		tr.Stop()

		assert.Equal(t, Idle, tr.Snapshot().State)
		assert.Equal(t, 0, backend.Active())
	})

	t.Run("closed transport rejects commands", func(t *testing.T) {
		tr, _ := newTransport(t, false)
		require.NoError(t, tr.Close())
		assert.ErrorIs(t, tr.Select(ctx, catalog(1)[0]), shared.ErrTransportClosed)
		assert.ErrorIs(t, tr.TogglePlay(ctx), shared.ErrTransportClosed)
	})
}

func TestTransportNavigation(t *testing.T) {
	ctx := context.Background()

	t.Run("next wraps to the first track", func(t *testing.T) {
		tr, _ := newTransport(t, false)
		tracks := catalog(3)
		tr.SetCatalog(tracks)
		require.NoError(t, tr.Select(ctx, tracks[2]))

		require.NoError(t, tr.Next(ctx))
		assert.Equal(t, "a", tr.Snapshot().Track.ID)
	})

	t.Run("previous wraps to the last track", func(t *testing.T) {
		tr, _ := newTransport(t, false)
		tracks := catalog(3)
		tr.SetCatalog(tracks)
		require.NoError(t, tr.Select(ctx, tracks[0]))

		require.NoError(t, tr.Previous(ctx))
		assert.Equal(t, "c", tr.Snapshot().Track.ID)
	})

	t.Run("n nexts return to the start", func(t *testing.T) {
		tr, backend := newTransport(t, false)
		tracks := catalog(5)
		tr.SetCatalog(tracks)
		require.NoError(t, tr.Select(ctx, tracks[1]))

		for range tracks {
			require.NoError(t, tr.Next(ctx))
		}
		assert.Equal(t, "b", tr.Snapshot().Track.ID)
		assert.Equal(t, 1, backend.Active())
	})

	t.Run("next after pause plays", func(t *testing.T) {
		tr, _ := newTransport(t, false)
		tracks := catalog(2)
		tr.SetCatalog(tracks)
		require.NoError(t, tr.Select(ctx, tracks[0]))
		require.NoError(t, tr.TogglePlay(ctx))

		require.NoError(t, tr.Next(ctx))
		assert.Equal(t, LoadedPlaying, tr.Snapshot().State)
	})

	t.Run("navigation is a no-op without a track or catalog", func(t *testing.T) {
		tr, backend := newTransport(t, false)
		require.NoError(t, tr.Next(ctx))
		require.NoError(t, tr.Previous(ctx))
		assert.Empty(t, backend.Opened())

		require.NoError(t, tr.Select(ctx, catalog(1)[0]))
		require.NoError(t, tr.Next(ctx))
		assert.Equal(t, "a", tr.Snapshot().Track.ID)
		assert.Len(t, backend.Opened(), 1)
	})

	t.Run("current track missing from catalog", func(t *testing.T) {
		tr, _ := newTransport(t, false)
		tracks := catalog(3)
		tr.SetCatalog(tracks)
		require.NoError(t, tr.Select(ctx, models.Track{ID: "zz", AudioURL: "mem://zz"}))

		require.NoError(t, tr.Next(ctx))
		assert.Equal(t, "a", tr.Snapshot().Track.ID)

		require.NoError(t, tr.Select(ctx, models.Track{ID: "zz", AudioURL: "mem://zz"}))
		require.NoError(t, tr.Previous(ctx))
		assert.Equal(t, "c", tr.Snapshot().Track.ID)
	})

	t.Run("end of media advances", func(t *testing.T) {
		tr, backend := newTransport(t, true)
		tracks := catalog(3)
		tr.SetCatalog(tracks)
		require.NoError(t, tr.Select(ctx, tracks[2]))

		backend.Last().End()

		snap := tr.Snapshot()
		assert.Equal(t, "a", snap.Track.ID)
		assert.True(t, snap.Playing)
	})

	t.Run("end of media pauses without auto-advance", func(t *testing.T) {
		tr, backend := newTransport(t, false)
		tracks := catalog(3)
		tr.SetCatalog(tracks)
		require.NoError(t, tr.Select(ctx, tracks[0]))

		backend.Last().End()

		snap := tr.Snapshot()
		assert.Equal(t, "a", snap.Track.ID)
		assert.False(t, snap.Playing)
		assert.Equal(t, LoadedPaused, snap.State)
	})

	t.Run("toggle after the end replays from the start", func(t *testing.T) {
		tr, backend := newTransport(t, false)
		tracks := catalog(3)
		tr.SetCatalog(tracks)
		require.NoError(t, tr.Select(ctx, tracks[0]))
		stream := backend.Last()

		stream.End()
		require.Equal(t, LoadedPaused, tr.Snapshot().State)
		assert.Equal(t, stream.Duration(), stream.Position())

		require.NoError(t, tr.TogglePlay(ctx))
		assert.Len(t, backend.Opened(), 1)
		assert.True(t, stream.Playing())
		assert.Equal(t, time.Duration(0), stream.Position())
		assert.Equal(t, LoadedPlaying, tr.Snapshot().State)

		stream.End()
		snap := tr.Snapshot()
		assert.Equal(t, "a", snap.Track.ID)
		assert.Equal(t, LoadedPaused, snap.State)
	})

	t.Run("reselecting a finished track replays it", func(t *testing.T) {
		tr, backend := newTransport(t, false)
		tracks := catalog(1)
		require.NoError(t, tr.Select(ctx, tracks[0]))
		stream := backend.Last()
		stream.End()

		require.NoError(t, tr.Select(ctx, tracks[0]))
		assert.Len(t, backend.Opened(), 1)
		assert.True(t, stream.Playing())
		assert.Equal(t, time.Duration(0), stream.Position())
	})

	t.Run("end of a replaced stream is ignored", func(t *testing.T) {
		tr, backend := newTransport(t, true)
		tracks := catalog(3)
		tr.SetCatalog(tracks)
		require.NoError(t, tr.Select(ctx, tracks[0]))
		first := backend.Last()
		require.NoError(t, tr.Select(ctx, tracks[1]))

		first.End()
		assert.Equal(t, "b", tr.Snapshot().Track.ID)
	})
}

func TestTransportSeekAndVolume(t *testing.T) {
	ctx := context.Background()

	t.Run("seek clamps to duration", func(t *testing.T) {
		tr, backend := newTransport(t, false)
		require.NoError(t, tr.Select(ctx, catalog(1)[0]))
		stream := backend.Last()

		require.NoError(t, tr.Seek(time.Hour))
		assert.Equal(t, 3*time.Minute, stream.Position())

		require.NoError(t, tr.Seek(-time.Second))
		assert.Equal(t, time.Duration(0), stream.Position())

		require.NoError(t, tr.SeekFraction(0.5))
		assert.Equal(t, 90*time.Second, stream.Position())

		require.NoError(t, tr.SeekBy(15*time.Second))
		assert.Equal(t, 105*time.Second, stream.Position())

		assert.InDelta(t, 105.0/180.0, tr.Snapshot().Progress(), 1e-9)
	})

	t.Run("seek before duration is known is ignored", func(t *testing.T) {
		tr, backend := newTransport(t, false)
		backend.Duration = 0
		require.NoError(t, tr.Select(ctx, catalog(1)[0]))

		require.NoError(t, tr.Seek(30*time.Second))
		require.NoError(t, tr.SeekFraction(0.5))
		assert.Equal(t, time.Duration(0), backend.Last().Position())
		assert.Zero(t, tr.Snapshot().Progress())
	})

	t.Run("seek without a stream is ignored", func(t *testing.T) {
		tr, _ := newTransport(t, false)
		assert.NoError(t, tr.Seek(time.Second))
	})

	t.Run("volume clamps", func(t *testing.T) {
		tr, backend := newTransport(t, false)
		require.NoError(t, tr.Select(ctx, catalog(1)[0]))

		tests := []struct {
			in, want float64
		}{
			{0.5, 0.5},
			{1.5, 1},
			{-0.2, 0},
			{math.NaN(), 0},
			{1, 1},
		}
		for _, tt := range tests {
			assert.InDelta(t, tt.want, tr.SetVolume(tt.in), 1e-9)
			assert.InDelta(t, tt.want, backend.Last().Volume(), 1e-9)
		}
	})

	t.Run("volume carries to the next stream", func(t *testing.T) {
		tr, backend := newTransport(t, false)
		tracks := catalog(2)
		tr.SetVolume(0.3)
		require.NoError(t, tr.Select(ctx, tracks[0]))
		assert.InDelta(t, 0.3, backend.Last().Volume(), 1e-9)
	})
}

func TestLevelToVolume(t *testing.T) {
	assert.Equal(t, -10.0, levelToVolume(0))
	assert.Equal(t, 0.0, levelToVolume(1))
	assert.InDelta(t, -1.0, levelToVolume(0.5), 1e-9)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Idle", Idle.String())
	assert.Equal(t, "Paused", LoadedPaused.String())
	assert.Equal(t, "Playing", LoadedPlaying.String())
	assert.Equal(t, "Unknown", State(9).String())
}
