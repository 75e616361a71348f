package playback

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/desertthunder/sonic57/internal/media"
)

// SpeakerRate is the sample rate the output device is opened at. Sources at
// other rates are resampled.
const SpeakerRate beep.SampleRate = 44100

var (
	speakerOnce sync.Once
	speakerErr  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(SpeakerRate, SpeakerRate.N(time.Second/10))
	})
	return speakerErr
}

// BeepBackend decodes fetched audio and plays it on the system speaker.
type BeepBackend struct {
	fetcher *media.Fetcher
}

func NewBeepBackend(fetcher *media.Fetcher) *BeepBackend {
	return &BeepBackend{fetcher: fetcher}
}

// Open fetches src fully, decodes it, and returns a paused stream.
func (b *BeepBackend) Open(ctx context.Context, src string) (Stream, error) {
	if err := initSpeaker(); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}

	blob, err := b.fetcher.Fetch(ctx, src, nil)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	streamer, format, err := media.Decode(blob.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", blob.Name, err)
	}

	var out beep.Streamer = streamer
	if format.SampleRate != SpeakerRate {
		out = beep.Resample(4, format.SampleRate, SpeakerRate, streamer)
	}

	vol := &effects.Volume{Streamer: out, Base: 2}
	s := &beepStream{
		source:   streamer,
		format:   format,
		volume:   vol,
		ctrl:     &beep.Ctrl{Streamer: vol, Paused: true},
		duration: format.SampleRate.D(streamer.Len()),
	}
	return s, nil
}

type beepStream struct {
	source   beep.StreamSeekCloser
	format   beep.Format
	volume   *effects.Volume
	ctrl     *beep.Ctrl
	duration time.Duration

	mu      sync.Mutex
	started bool
	drained bool
	closed  bool
	onEnd   func()
}

func (s *beepStream) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("play: stream closed")
	}

	speaker.Lock()
	// the mixer drops a streamer once it runs dry, so a finished stream is
	// rewound and queued again
	if s.source.Position() >= s.source.Len() {
		if err := s.source.Seek(0); err != nil {
			speaker.Unlock()
			return fmt.Errorf("rewind: %w", err)
		}
	}
	s.ctrl.Paused = false
	speaker.Unlock()

	if !s.started || s.drained {
		s.started = true
		s.drained = false
		speaker.Play(beep.Seq(s.ctrl, beep.Callback(s.ended)))
	}
	return nil
}

func (s *beepStream) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
	return nil
}

func (s *beepStream) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}

	speaker.Lock()
	pos := s.format.SampleRate.D(s.source.Position())
	speaker.Unlock()
	return pos
}

func (s *beepStream) Duration() time.Duration { return s.duration }

func (s *beepStream) Seek(pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	n := min(max(s.format.SampleRate.N(pos), 0), s.source.Len())
	speaker.Lock()
	defer speaker.Unlock()
	return s.source.Seek(n)
}

func (s *beepStream) SetVolume(v float64) {
	speaker.Lock()
	s.volume.Volume = levelToVolume(v)
	s.volume.Silent = v <= 0
	speaker.Unlock()
}

func (s *beepStream) OnEnd(fn func()) {
	s.mu.Lock()
	s.onEnd = fn
	s.mu.Unlock()
}

// Close detaches the stream from the mixer and releases the decoder.
func (s *beepStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	speaker.Lock()
	s.ctrl.Paused = true
	s.ctrl.Streamer = nil
	speaker.Unlock()

	return s.source.Close()
}

// ended runs on the speaker goroutine, so the callback is handed off.
func (s *beepStream) ended() {
	go func() {
		s.mu.Lock()
		s.drained = true
		fn := s.onEnd
		closed := s.closed
		s.mu.Unlock()
		if fn != nil && !closed {
			fn()
		}
	}()
}

// levelToVolume maps a linear 0..1 level onto beep's base-2 gain.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
