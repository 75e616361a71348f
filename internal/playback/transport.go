package playback

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/shared"
)

// DefaultVolume is the level a new transport starts at.
const DefaultVolume = 0.8

// Options configures a [Transport].
type Options struct {
	Volume      float64
	AutoAdvance bool
	LoadTimeout time.Duration
	Logger      *log.Logger
}

// Transport owns the current track and at most one open [Stream].
//
// Every track switch bumps a generation counter and cancels the previous
// load. A load that completes under an older generation closes its stream
// and reports [shared.ErrSuperseded], so the latest selection always wins.
type Transport struct {
	backend     Backend
	logger      *log.Logger
	autoAdvance bool
	loadTimeout time.Duration

	mu      sync.Mutex
	catalog []models.Track
	current *models.Track
	playing bool
	volume  float64
	stream  Stream
	gen     uint64
	cancel  context.CancelFunc
	closed  bool
}

func NewTransport(backend Backend, opts Options) *Transport {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	timeout := opts.LoadTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Transport{
		backend:     backend,
		logger:      logger.With("component", "transport"),
		autoAdvance: opts.AutoAdvance,
		loadTimeout: timeout,
		volume:      clampVolume(opts.Volume),
	}
}

// SetCatalog replaces the ordering used by Next and Previous.
func (t *Transport) SetCatalog(tracks []models.Track) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.catalog = slices.Clone(tracks)
}

// Select makes track current and starts it playing, releasing any other
// loaded stream first. Reselecting the loaded track resumes it in place.
//
// A load failure leaves the track current but paused; the error is logged
// and returned.
func (t *Transport) Select(ctx context.Context, track models.Track) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return shared.ErrTransportClosed
	}

	if t.stream != nil && t.current != nil && t.current.ID == track.ID && t.current.AudioURL == track.AudioURL {
		t.playing = true
		err := t.stream.Play()
		t.mu.Unlock()
		return err
	}

	cur := track.Clone()
	t.current = &cur
	t.playing = true
	gen, loadCtx := t.beginLoadLocked(ctx)
	t.mu.Unlock()

	return t.finishLoad(loadCtx, gen, cur)
}

// Cue makes track current without loading or playing it. The first
// TogglePlay loads it.
func (t *Transport) Cue(track models.Track) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	t.gen++
	t.releaseLocked()
	cur := track.Clone()
	t.current = &cur
	t.playing = false
}

// TogglePlay flips between playing and paused. With no current track it does
// nothing. A cued track with no stream is loaded on the way to playing.
func (t *Transport) TogglePlay(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return shared.ErrTransportClosed
	}
	if t.current == nil {
		t.mu.Unlock()
		return nil
	}

	if t.playing {
		t.playing = false
		var err error
		if t.stream != nil {
			err = t.stream.Pause()
		}
		t.mu.Unlock()
		return err
	}

	t.playing = true
	if t.stream != nil {
		err := t.stream.Play()
		t.mu.Unlock()
		return err
	}
	if t.cancel != nil {
		// a load is in flight and will honor playing when it lands
		t.mu.Unlock()
		return nil
	}

	cur := *t.current
	gen, loadCtx := t.beginLoadLocked(ctx)
	t.mu.Unlock()
	return t.finishLoad(loadCtx, gen, cur)
}

// Next selects the catalog entry after the current one, wrapping to the
// start. It is a no-op with an empty catalog or no current track.
func (t *Transport) Next(ctx context.Context) error {
	return t.step(ctx, 1, nil)
}

// Previous selects the catalog entry before the current one, wrapping to the end.
func (t *Transport) Previous(ctx context.Context) error {
	return t.step(ctx, -1, nil)
}

func (t *Transport) step(ctx context.Context, delta int, onlyGen *uint64) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return shared.ErrTransportClosed
	}
	if onlyGen != nil && *onlyGen != t.gen {
		t.mu.Unlock()
		return nil
	}

	n := len(t.catalog)
	if n == 0 || t.current == nil {
		t.mu.Unlock()
		return nil
	}

	idx := slices.IndexFunc(t.catalog, func(tr models.Track) bool { return tr.ID == t.current.ID })
	switch {
	case idx >= 0:
		idx = ((idx+delta)%n + n) % n
	case delta > 0:
		idx = 0
	default:
		idx = n - 1
	}

	cur := t.catalog[idx].Clone()
	t.current = &cur
	t.playing = true
	gen, loadCtx := t.beginLoadLocked(ctx)
	t.mu.Unlock()

	return t.finishLoad(loadCtx, gen, cur)
}

// Seek moves to pos clamped to [0, duration]. Before the duration is known
// it does nothing.
func (t *Transport) Seek(pos time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stream == nil {
		return nil
	}
	d := t.stream.Duration()
	if d <= 0 {
		return nil
	}
	return t.stream.Seek(min(max(pos, 0), d))
}

// SeekFraction seeks to f of the duration, f clamped to [0,1].
func (t *Transport) SeekFraction(f float64) error {
	t.mu.Lock()
	if t.stream == nil {
		t.mu.Unlock()
		return nil
	}
	d := t.stream.Duration()
	t.mu.Unlock()

	if d <= 0 || math.IsNaN(f) {
		return nil
	}
	f = min(max(f, 0), 1)
	return t.Seek(time.Duration(f * float64(d)))
}

// SeekBy moves relative to the current position.
func (t *Transport) SeekBy(delta time.Duration) error {
	t.mu.Lock()
	if t.stream == nil {
		t.mu.Unlock()
		return nil
	}
	pos := t.stream.Position()
	t.mu.Unlock()

	return t.Seek(pos + delta)
}

// SetVolume clamps v to [0,1], applies it to the open stream, and keeps it
// for streams opened later.
func (t *Transport) SetVolume(v float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.volume = clampVolume(v)
	if t.stream != nil {
		t.stream.SetVolume(t.volume)
	}
	return t.volume
}

// Volume returns the retained volume level.
func (t *Transport) Volume() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.volume
}

// Stop releases the stream and clears the current track.
func (t *Transport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	t.releaseLocked()
	t.current = nil
	t.playing = false
}

// Close stops playback permanently.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	t.gen++
	t.releaseLocked()
	t.current = nil
	t.playing = false
	return nil
}

// Snapshot returns the current session state.
func (t *Transport) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		Playing: t.playing,
		Loading: t.cancel != nil,
		Volume:  t.volume,
		State:   Idle,
	}
	if t.current != nil {
		cur := *t.current
		s.Track = &cur
		s.State = LoadedPaused
		if t.playing {
			s.State = LoadedPlaying
		}
	}
	if t.stream != nil {
		s.Position = t.stream.Position()
		s.Duration = t.stream.Duration()
	}
	return s
}

// beginLoadLocked starts a new generation and returns its load context.
// Callers hold mu.
func (t *Transport) beginLoadLocked(ctx context.Context) (uint64, context.Context) {
	t.gen++
	t.releaseLocked()

	loadCtx, cancel := context.WithTimeout(ctx, t.loadTimeout)
	t.cancel = cancel
	return t.gen, loadCtx
}

// finishLoad opens track outside the lock and installs the stream if gen is
// still current.
func (t *Transport) finishLoad(ctx context.Context, gen uint64, track models.Track) error {
	stream, err := t.backend.Open(ctx, track.AudioURL)

	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.gen || t.closed {
		if stream != nil {
			stream.Close()
		}
		t.logger.Debug("discarding stale load", "id", track.ID)
		return shared.ErrSuperseded
	}

	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}

	if err != nil {
		t.playing = false
		t.logger.Error("failed to load track", "id", track.ID, "title", track.Title, "err", err)
		return fmt.Errorf("load %s: %w", track.ID, err)
	}

	stream.SetVolume(t.volume)
	stream.OnEnd(func() { t.handleEnd(gen) })
	t.stream = stream

	if t.playing {
		if err := stream.Play(); err != nil {
			t.playing = false
			t.logger.Error("failed to start playback", "id", track.ID, "err", err)
			return fmt.Errorf("play %s: %w", track.ID, err)
		}
	}

	t.logger.Debug("loaded track", "id", track.ID, "title", track.Title, "playing", t.playing)
	return nil
}

// handleEnd runs when the stream for gen reaches end of media.
func (t *Transport) handleEnd(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.closed {
		t.mu.Unlock()
		return
	}

	if t.autoAdvance && len(t.catalog) > 0 {
		t.mu.Unlock()
		if err := t.step(context.Background(), 1, &gen); err != nil {
			t.logger.Warn("auto-advance failed", "err", err)
		}
		return
	}

	t.playing = false
	if t.stream != nil {
		t.stream.Pause()
	}
	t.mu.Unlock()
}

// releaseLocked cancels any in-flight load and closes the open stream.
// Callers hold mu.
func (t *Transport) releaseLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.stream != nil {
		if err := t.stream.Close(); err != nil {
			t.logger.Warn("failed to close stream", "err", err)
		}
		t.stream = nil
	}
}

func clampVolume(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return min(max(v, 0), 1)
}
